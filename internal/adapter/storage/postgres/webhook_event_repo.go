package postgres

import (
	"context"
	"fmt"

	"wallet-remittance-engine/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// WebhookEventRepo implements ports.WebhookEventRepository. The primary key
// on event_id plus ON CONFLICT DO NOTHING gives insert-once semantics: the
// durable half of replay protection, surviving Redis restarts.
type WebhookEventRepo struct {
	pool Pool
}

// NewWebhookEventRepo creates a new WebhookEventRepo.
func NewWebhookEventRepo(pool Pool) *WebhookEventRepo {
	return &WebhookEventRepo{pool: pool}
}

// Insert records the event. Returns false when the event id was already
// present (replayed delivery).
func (r *WebhookEventRepo) Insert(ctx context.Context, tx pgx.Tx, e *domain.WebhookEvent) (bool, error) {
	query := `INSERT INTO payout_webhook_events (event_id, batch_id, event_type, received_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (event_id) DO NOTHING`

	tag, err := tx.Exec(ctx, query, e.EventID, e.BatchID, e.EventType, e.ReceivedAt)
	if err != nil {
		return false, fmt.Errorf("insert webhook event: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Exists reports whether the event id was already processed.
func (r *WebhookEventRepo) Exists(ctx context.Context, eventID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM payout_webhook_events WHERE event_id = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, eventID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check webhook event exists: %w", err)
	}
	return exists, nil
}
