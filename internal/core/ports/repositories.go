package ports

import (
	"context"
	"time"

	"wallet-remittance-engine/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// WalletRepository defines persistence operations for wallet accounts.
// Balance mutations are single conditional UPDATE statements so the
// non-negative invariant is enforced by the storage layer, not by
// read-then-write application code.
type WalletRepository interface {
	Create(ctx context.Context, account *domain.WalletAccount) error
	GetByTenantID(ctx context.Context, tenantID string) (*domain.WalletAccount, error)
	// AddBalance atomically increments the balance and returns the new value.
	// Returns (zero, false, nil) when no active account matches the tenant.
	AddBalance(ctx context.Context, tx pgx.Tx, tenantID string, amount decimal.Decimal) (decimal.Decimal, bool, error)
	// SubtractBalance atomically decrements the balance, guarded by
	// balance >= amount, and returns the new value. Returns
	// (zero, false, nil) when no row matched — either the account does not
	// exist or the balance is insufficient; the caller disambiguates.
	SubtractBalance(ctx context.Context, tx pgx.Tx, tenantID string, amount decimal.Decimal) (decimal.Decimal, bool, error)
	Deactivate(ctx context.Context, tenantID string) error
}

// LedgerRepository defines persistence for the append-only transaction log.
type LedgerRepository interface {
	Create(ctx context.Context, tx pgx.Tx, entry *domain.LedgerEntry) error
	// GetByReference looks up an entry by its idempotency tuple.
	GetByReference(ctx context.Context, tenantID string, direction domain.EntryDirection, ref domain.Reference) (*domain.LedgerEntry, error)
	List(ctx context.Context, params LedgerListParams) ([]domain.LedgerEntry, int64, error)
}

// LedgerListParams holds filter + pagination for transaction history.
type LedgerListParams struct {
	TenantID string
	Reason   *domain.EntryReason
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}

// ShipmentRepository exposes the settlement-owned slice of shipment state.
type ShipmentRepository interface {
	// SelectEligibleForUpdate returns COD shipments that are delivered on or
	// before asOf and not yet remitted, row-locked for the claiming
	// transaction. Concurrent builders skip rows locked by each other.
	SelectEligibleForUpdate(ctx context.Context, tx pgx.Tx, tenantID string, asOf time.Time) ([]domain.Shipment, error)
	// Claim flags the shipments as included in batchID, guarded by
	// remittance_included = false, and returns the ids actually claimed.
	Claim(ctx context.Context, tx pgx.Tx, tenantID string, batchID uuid.UUID, shipmentIDs []string) ([]string, error)
	// ListTenantsWithEligible returns tenants that have at least one
	// eligible shipment as of asOf; used by the remittance scheduler.
	ListTenantsWithEligible(ctx context.Context, asOf time.Time) ([]string, error)
}

// RemittanceBatchRepository defines persistence for settlement batches.
type RemittanceBatchRepository interface {
	Create(ctx context.Context, tx pgx.Tx, batch *domain.RemittanceBatch) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.RemittanceBatch, error)
	// UpdateStatus records a status transition guarded by the expected
	// current status; payoutReference may be nil. Returns false, leaving the
	// row untouched, when the batch is no longer in the from status.
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, from, to domain.BatchStatus, payoutReference *string) (bool, error)
	ListByTenant(ctx context.Context, tenantID string, limit int) ([]domain.RemittanceBatch, error)
}

// WebhookEventRepository is the durable replay log for inbound payout
// webhooks.
type WebhookEventRepository interface {
	// Insert records the event id with insert-once semantics. Returns false
	// when the event was already recorded (replay).
	Insert(ctx context.Context, tx pgx.Tx, event *domain.WebhookEvent) (bool, error)
	Exists(ctx context.Context, eventID string) (bool, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
