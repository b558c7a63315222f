package postgres

import (
	"context"
	"errors"
	"fmt"

	"wallet-remittance-engine/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// BatchRepo implements ports.RemittanceBatchRepository.
type BatchRepo struct {
	pool Pool
}

// NewBatchRepo creates a new BatchRepo.
func NewBatchRepo(pool Pool) *BatchRepo {
	return &BatchRepo{pool: pool}
}

// Create inserts a remittance batch within a database transaction.
func (r *BatchRepo) Create(ctx context.Context, tx pgx.Tx, b *domain.RemittanceBatch) error {
	query := `INSERT INTO remittance_batches
		(id, tenant_id, shipment_ids, gross_cod, shipping_deductions, platform_fee, net_payable, status, needs_review, triggered_by, payout_reference, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := tx.Exec(ctx, query,
		b.ID, b.TenantID, b.ShipmentIDs,
		b.Financials.GrossCOD, b.Financials.ShippingDeductions, b.Financials.PlatformFee, b.Financials.NetPayable,
		b.Status, b.NeedsReview, b.TriggeredBy, b.PayoutReference, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert remittance batch: %w", err)
	}
	return nil
}

// GetByID fetches a batch by its UUID.
func (r *BatchRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.RemittanceBatch, error) {
	query := `SELECT id, tenant_id, shipment_ids, gross_cod, shipping_deductions, platform_fee, net_payable, status, needs_review, triggered_by, payout_reference, created_at, updated_at
		FROM remittance_batches WHERE id = $1`

	return r.scanBatch(r.pool.QueryRow(ctx, query, id))
}

// UpdateStatus records a batch status transition. The expected current
// status rides the WHERE clause, so of two concurrent writers only one can
// match the row. payoutReference is kept when nil is passed so a failure
// webhook does not erase the reference set at initiation.
func (r *BatchRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, from, to domain.BatchStatus, payoutReference *string) (bool, error) {
	query := `UPDATE remittance_batches
		SET status = $1, payout_reference = COALESCE($2, payout_reference), updated_at = NOW()
		WHERE id = $3 AND status = $4`

	tag, err := tx.Exec(ctx, query, to, payoutReference, id, from)
	if err != nil {
		return false, fmt.Errorf("update batch status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// ListByTenant fetches the most recent batches for a tenant.
func (r *BatchRepo) ListByTenant(ctx context.Context, tenantID string, limit int) ([]domain.RemittanceBatch, error) {
	query := `SELECT id, tenant_id, shipment_ids, gross_cod, shipping_deductions, platform_fee, net_payable, status, needs_review, triggered_by, payout_reference, created_at, updated_at
		FROM remittance_batches WHERE tenant_id = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("list remittance batches: %w", err)
	}
	defer rows.Close()

	var batches []domain.RemittanceBatch
	for rows.Next() {
		b := domain.RemittanceBatch{}
		err := rows.Scan(
			&b.ID, &b.TenantID, &b.ShipmentIDs,
			&b.Financials.GrossCOD, &b.Financials.ShippingDeductions, &b.Financials.PlatformFee, &b.Financials.NetPayable,
			&b.Status, &b.NeedsReview, &b.TriggeredBy, &b.PayoutReference, &b.CreatedAt, &b.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan remittance batch row: %w", err)
		}
		batches = append(batches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate remittance batch rows: %w", err)
	}
	return batches, nil
}

func (r *BatchRepo) scanBatch(row pgx.Row) (*domain.RemittanceBatch, error) {
	b := &domain.RemittanceBatch{}
	err := row.Scan(
		&b.ID, &b.TenantID, &b.ShipmentIDs,
		&b.Financials.GrossCOD, &b.Financials.ShippingDeductions, &b.Financials.PlatformFee, &b.Financials.NetPayable,
		&b.Status, &b.NeedsReview, &b.TriggeredBy, &b.PayoutReference, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan remittance batch: %w", err)
	}
	return b, nil
}
