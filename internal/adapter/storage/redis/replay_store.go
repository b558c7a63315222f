package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// ReplayStore implements ports.ReplayGuard using Redis SET NX. It rejects
// replayed payout webhook deliveries without a database round trip; the
// payout_webhook_events table remains the durable backstop when Redis has
// restarted and lost the key.
type ReplayStore struct {
	client *goredis.Client
	prefix string
}

// NewReplayStore creates a new Redis-backed webhook replay guard.
func NewReplayStore(client *goredis.Client) *ReplayStore {
	return &ReplayStore{
		client: client,
		prefix: "payout-event:",
	}
}

// Seen reports whether the event id was already recorded, without touching
// the key.
func (s *ReplayStore) Seen(ctx context.Context, eventID string) (bool, error) {
	n, err := s.client.Exists(ctx, s.prefix+eventID).Result()
	if err != nil {
		return false, fmt.Errorf("redis replay lookup: %w", err)
	}
	return n > 0, nil
}

// CheckAndSet atomically checks if an event id was seen, recording it if not.
// Returns true if the event is new, false if it was already delivered.
func (s *ReplayStore) CheckAndSet(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	key := s.prefix + eventID
	result, err := s.client.SetArgs(ctx, key, 1, goredis.SetArgs{
		Mode: "NX",
		TTL:  ttl,
	}).Result()
	if err != nil {
		if err == goredis.Nil {
			// Key already exists — event was already delivered
			return false, nil
		}
		return false, fmt.Errorf("redis replay check: %w", err)
	}
	return result == "OK", nil
}
