package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplayStore_CheckAndSet_NewEvent(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	store := NewReplayStore(client)
	ctx := context.Background()

	ok, err := store.CheckAndSet(ctx, "evt_abc123", 48*time.Hour)
	require.NoError(t, err)
	assert.True(t, ok, "new event id should return true")
}

func TestReplayStore_CheckAndSet_ReplayedEvent(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	store := NewReplayStore(client)
	ctx := context.Background()

	// First delivery
	ok, err := store.CheckAndSet(ctx, "evt_xyz789", 48*time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	// Replay
	ok, err = store.CheckAndSet(ctx, "evt_xyz789", 48*time.Hour)
	require.NoError(t, err)
	assert.False(t, ok, "replayed event id should return false")
}

func TestReplayStore_Seen(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	store := NewReplayStore(client)
	ctx := context.Background()

	seen, err := store.Seen(ctx, "evt_lookup")
	require.NoError(t, err)
	assert.False(t, seen)

	// A pure lookup must not record the id.
	seen, err = store.Seen(ctx, "evt_lookup")
	require.NoError(t, err)
	assert.False(t, seen)

	ok, err := store.CheckAndSet(ctx, "evt_lookup", 48*time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	seen, err = store.Seen(ctx, "evt_lookup")
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestReplayStore_CheckAndSet_ExpiredEvent(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	store := NewReplayStore(client)
	ctx := context.Background()

	ok, err := store.CheckAndSet(ctx, "evt_old", 1*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	s.FastForward(2 * time.Second)

	// After the Redis key expires the durable webhook event table still
	// rejects the replay; the guard just stops being the fast path.
	ok, err = store.CheckAndSet(ctx, "evt_old", 1*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}
