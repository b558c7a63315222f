package postgres

import (
	"context"
	"fmt"
	"time"

	"wallet-remittance-engine/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ShipmentRepo implements ports.ShipmentRepository over the settlement-owned
// columns of the shipments table. The claim is a single conditional bulk
// update guarded by remittance_included = FALSE, so two concurrent batch
// builders can never claim overlapping shipment sets.
type ShipmentRepo struct {
	pool Pool
}

// NewShipmentRepo creates a new ShipmentRepo.
func NewShipmentRepo(pool Pool) *ShipmentRepo {
	return &ShipmentRepo{pool: pool}
}

// SelectEligibleForUpdate returns claimable COD shipments, row-locked for the
// claiming transaction. SKIP LOCKED lets a concurrent builder proceed with
// the rows the first one did not take instead of blocking on them.
func (r *ShipmentRepo) SelectEligibleForUpdate(ctx context.Context, tx pgx.Tx, tenantID string, asOf time.Time) ([]domain.Shipment, error) {
	query := `SELECT shipment_id, tenant_id, cod_amount, shipping_cost_charged, payment_mode, current_status, delivered_at, remittance_included, remittance_batch_id
		FROM shipments
		WHERE tenant_id = $1
		  AND payment_mode = $2
		  AND current_status = $3
		  AND delivered_at <= $4
		  AND remittance_included = FALSE
		ORDER BY delivered_at
		FOR UPDATE SKIP LOCKED`

	rows, err := tx.Query(ctx, query, tenantID, domain.PaymentModeCOD, domain.ShipmentStatusDelivered, asOf)
	if err != nil {
		return nil, fmt.Errorf("select eligible shipments: %w", err)
	}
	defer rows.Close()

	var shipments []domain.Shipment
	for rows.Next() {
		s := domain.Shipment{}
		err := rows.Scan(
			&s.ShipmentID, &s.TenantID, &s.CODAmount, &s.ShippingCostCharged,
			&s.PaymentMode, &s.CurrentStatus, &s.DeliveredAt, &s.RemittanceIncluded, &s.RemittanceBatchID,
		)
		if err != nil {
			return nil, fmt.Errorf("scan shipment row: %w", err)
		}
		shipments = append(shipments, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shipment rows: %w", err)
	}
	return shipments, nil
}

// Claim flags the shipments as included in batchID and returns the ids that
// were actually claimed. The remittance_included = FALSE guard makes the flag
// a one-way, claim-exactly-once transition.
func (r *ShipmentRepo) Claim(ctx context.Context, tx pgx.Tx, tenantID string, batchID uuid.UUID, shipmentIDs []string) ([]string, error) {
	query := `UPDATE shipments
		SET remittance_included = TRUE, remittance_batch_id = $1
		WHERE tenant_id = $2 AND shipment_id = ANY($3) AND remittance_included = FALSE
		RETURNING shipment_id`

	rows, err := tx.Query(ctx, query, batchID, tenantID, shipmentIDs)
	if err != nil {
		return nil, fmt.Errorf("claim shipments: %w", err)
	}
	defer rows.Close()

	var claimed []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan claimed shipment id: %w", err)
		}
		claimed = append(claimed, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate claimed shipment ids: %w", err)
	}
	return claimed, nil
}

// ListTenantsWithEligible returns tenants with at least one claimable COD
// shipment as of asOf. Used by the remittance scheduler.
func (r *ShipmentRepo) ListTenantsWithEligible(ctx context.Context, asOf time.Time) ([]string, error) {
	query := `SELECT DISTINCT tenant_id FROM shipments
		WHERE payment_mode = $1
		  AND current_status = $2
		  AND delivered_at <= $3
		  AND remittance_included = FALSE`

	rows, err := r.pool.Query(ctx, query, domain.PaymentModeCOD, domain.ShipmentStatusDelivered, asOf)
	if err != nil {
		return nil, fmt.Errorf("list tenants with eligible shipments: %w", err)
	}
	defer rows.Close()

	var tenants []string
	for rows.Next() {
		var tenantID string
		if err := rows.Scan(&tenantID); err != nil {
			return nil, fmt.Errorf("scan tenant id: %w", err)
		}
		tenants = append(tenants, tenantID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tenant ids: %w", err)
	}
	return tenants, nil
}
