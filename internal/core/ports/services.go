package ports

import (
	"context"
	"time"

	"wallet-remittance-engine/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SignatureService handles HMAC-SHA256 signing and verification over raw
// payload bytes.
type SignatureService interface {
	Sign(secretKey string, payload []byte) string
	Verify(secretKey string, payload []byte, signature string) bool
}

// IdempotencyCache is the Redis-layer idempotency check for ledger calls
// (fast path in front of the DB unique constraint).
type IdempotencyCache interface {
	Get(ctx context.Context, key string) ([]byte, error) // Returns cached response JSON or nil
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// ReplayGuard tracks processed webhook event ids for replay rejection.
// Ids are marked only after the event's effect is durable; marking earlier
// would let a transient failure eat the provider's retry.
type ReplayGuard interface {
	// Seen reports whether the event id was already recorded, without
	// recording anything.
	Seen(ctx context.Context, eventID string) (bool, error)
	// CheckAndSet atomically records the event id. Returns true if the id is
	// new, false if it was already seen.
	CheckAndSet(ctx context.Context, eventID string, ttl time.Duration) (bool, error)
}

// --- Service Ports (Business Logic) ---

// LedgerService is the credit/debit API over a tenant's wallet.
type LedgerService interface {
	CreateAccount(ctx context.Context, tenantID, currency string) (*domain.WalletAccount, error)
	GetBalance(ctx context.Context, tenantID string) (*domain.WalletAccount, error)
	Credit(ctx context.Context, req LedgerRequest) (*domain.LedgerEntry, error)
	Debit(ctx context.Context, req LedgerRequest) (*domain.LedgerEntry, error)
	GetTransactionHistory(ctx context.Context, params LedgerListParams) ([]domain.LedgerEntry, int64, error)
}

// LedgerRequest holds validated input for a credit or debit.
type LedgerRequest struct {
	TenantID  string
	Amount    decimal.Decimal
	Reason    domain.EntryReason
	Reference domain.Reference
	Actor     string
}

// RemittanceService builds COD settlement batches and drives payouts.
type RemittanceService interface {
	// CreateBatch claims eligible shipments, computes financials, persists
	// the batch, credits the wallet, and attempts payout initiation.
	CreateBatch(ctx context.Context, tenantID, triggeredBy string, asOf time.Time) (*domain.RemittanceBatch, error)
	// InitiatePayout (re)tries payout initiation for a draft batch.
	InitiatePayout(ctx context.Context, batchID uuid.UUID) (*domain.RemittanceBatch, error)
	GetBatch(ctx context.Context, batchID uuid.UUID) (*domain.RemittanceBatch, error)
	ListBatches(ctx context.Context, tenantID string, limit int) ([]domain.RemittanceBatch, error)
}

// WebhookService consumes signed payout provider callbacks.
type WebhookService interface {
	// ProcessPayoutEvent verifies the signature over the raw body, rejects
	// replays, and applies the batch status transition. A replayed event id
	// is acknowledged without any mutation (duplicate=true).
	ProcessPayoutEvent(ctx context.Context, rawBody []byte, signatureHeader, eventID string) (duplicate bool, err error)
}

// --- Payout Gateway (external money movement provider) ---

// BankAccountValidation is the provider's verdict on a settlement account.
type BankAccountValidation struct {
	Valid  bool
	Reason string
}

// PayeeRegistration holds the bank details registered with the provider
// before any payout can target them.
type PayeeRegistration struct {
	TenantID      string
	AccountHolder string
	AccountNumber string
	IFSC          string
}

// PayoutInitiation is the provider's acknowledgement of a transfer request.
type PayoutInitiation struct {
	PayoutReference string
	Status          string
}

// PayoutGateway abstracts the external payout provider. InitiatePayout must
// be idempotent with respect to the batch id: a retried call for the same
// batch never double-pays.
type PayoutGateway interface {
	ValidateBankAccount(ctx context.Context, accountNumber, ifsc string) (*BankAccountValidation, error)
	RegisterPayee(ctx context.Context, reg PayeeRegistration) (string, error)
	InitiatePayout(ctx context.Context, batch *domain.RemittanceBatch) (*PayoutInitiation, error)
	// VerifyWebhookSignature checks the HMAC over the raw, unparsed payload.
	// Fails closed on any mismatch.
	VerifyWebhookSignature(rawPayload []byte, signatureHeader string) bool
	// IsReplay reports whether the event id was already processed.
	IsReplay(ctx context.Context, eventID string) (bool, error)
}
