package integration

import (
	"context"
	"sort"
	"sync"
	"time"

	"wallet-remittance-engine/internal/core/domain"
	"wallet-remittance-engine/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// In-memory repos mirror the conditional-UPDATE semantics of the postgres
// layer: balance guards and claim guards are evaluated under one mutex, so
// the same atomicity the SQL gives is preserved for concurrency tests.

// --- In-Memory Wallet Repo ---

type inMemoryWalletRepo struct {
	mu       sync.Mutex
	accounts map[string]*domain.WalletAccount
}

func newInMemoryWalletRepo() *inMemoryWalletRepo {
	return &inMemoryWalletRepo{accounts: make(map[string]*domain.WalletAccount)}
}

func (r *inMemoryWalletRepo) Create(ctx context.Context, account *domain.WalletAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[account.TenantID]; ok {
		return &pgconn.PgError{Code: "23505"}
	}
	cp := *account
	r.accounts[account.TenantID] = &cp
	return nil
}

func (r *inMemoryWalletRepo) GetByTenantID(ctx context.Context, tenantID string) (*domain.WalletAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[tenantID]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *inMemoryWalletRepo) AddBalance(ctx context.Context, tx pgx.Tx, tenantID string, amount decimal.Decimal) (decimal.Decimal, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[tenantID]
	if !ok || !a.Active {
		return decimal.Zero, false, nil
	}
	a.Balance = a.Balance.Add(amount)
	a.UpdatedAt = time.Now().UTC()
	return a.Balance, true, nil
}

func (r *inMemoryWalletRepo) SubtractBalance(ctx context.Context, tx pgx.Tx, tenantID string, amount decimal.Decimal) (decimal.Decimal, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[tenantID]
	if !ok || !a.Active || a.Balance.LessThan(amount) {
		return decimal.Zero, false, nil
	}
	a.Balance = a.Balance.Sub(amount)
	a.UpdatedAt = time.Now().UTC()
	return a.Balance, true, nil
}

func (r *inMemoryWalletRepo) Deactivate(ctx context.Context, tenantID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[tenantID]
	if !ok {
		return pgx.ErrNoRows
	}
	a.Active = false
	return nil
}

// --- In-Memory Ledger Repo ---

type inMemoryLedgerRepo struct {
	mu      sync.Mutex
	entries []domain.LedgerEntry
	byRef   map[string]int // idempotency tuple -> index into entries
}

func newInMemoryLedgerRepo() *inMemoryLedgerRepo {
	return &inMemoryLedgerRepo{byRef: make(map[string]int)}
}

func refKey(tenantID string, direction domain.EntryDirection, ref domain.Reference) string {
	return domain.LedgerIdempotencyKey(tenantID, direction, ref)
}

func (r *inMemoryLedgerRepo) Create(ctx context.Context, tx pgx.Tx, entry *domain.LedgerEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := refKey(entry.TenantID, entry.Direction, entry.Reference)
	if _, ok := r.byRef[key]; ok {
		return &pgconn.PgError{Code: "23505", ConstraintName: "ledger_entries_reference_uniq"}
	}
	r.entries = append(r.entries, *entry)
	r.byRef[key] = len(r.entries) - 1
	return nil
}

func (r *inMemoryLedgerRepo) GetByReference(ctx context.Context, tenantID string, direction domain.EntryDirection, ref domain.Reference) (*domain.LedgerEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx, ok := r.byRef[refKey(tenantID, direction, ref)]
	if !ok {
		return nil, nil
	}
	cp := r.entries[idx]
	return &cp, nil
}

func (r *inMemoryLedgerRepo) List(ctx context.Context, params ports.LedgerListParams) ([]domain.LedgerEntry, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var filtered []domain.LedgerEntry
	for _, e := range r.entries {
		if e.TenantID != params.TenantID {
			continue
		}
		if params.Reason != nil && e.Reason != *params.Reason {
			continue
		}
		if params.From != nil && e.CreatedAt.Before(*params.From) {
			continue
		}
		if params.To != nil && e.CreatedAt.After(*params.To) {
			continue
		}
		filtered = append(filtered, e)
	}

	// Newest first, matching the storage layer's ordering.
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})

	total := int64(len(filtered))
	start := (params.Page - 1) * params.PageSize
	if start >= len(filtered) {
		return nil, total, nil
	}
	end := start + params.PageSize
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[start:end], total, nil
}

// allEntries snapshots the full log for conservation checks.
func (r *inMemoryLedgerRepo) allEntries(tenantID string) []domain.LedgerEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.LedgerEntry
	for _, e := range r.entries {
		if e.TenantID == tenantID {
			out = append(out, e)
		}
	}
	return out
}

// --- In-Memory Shipment Repo ---

type inMemoryShipmentRepo struct {
	mu        sync.Mutex
	shipments map[string]*domain.Shipment
}

func newInMemoryShipmentRepo() *inMemoryShipmentRepo {
	return &inMemoryShipmentRepo{shipments: make(map[string]*domain.Shipment)}
}

func (r *inMemoryShipmentRepo) add(s domain.Shipment) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := s
	r.shipments[s.ShipmentID] = &cp
}

func (r *inMemoryShipmentRepo) get(shipmentID string) (domain.Shipment, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.shipments[shipmentID]
	if !ok {
		return domain.Shipment{}, false
	}
	return *s, true
}

func (r *inMemoryShipmentRepo) eligible(s *domain.Shipment, tenantID string, asOf time.Time) bool {
	return s.TenantID == tenantID &&
		s.PaymentMode == domain.PaymentModeCOD &&
		s.CurrentStatus == domain.ShipmentStatusDelivered &&
		s.DeliveredAt != nil && !s.DeliveredAt.After(asOf) &&
		!s.RemittanceIncluded
}

func (r *inMemoryShipmentRepo) SelectEligibleForUpdate(ctx context.Context, tx pgx.Tx, tenantID string, asOf time.Time) ([]domain.Shipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Shipment
	for _, s := range r.shipments {
		if r.eligible(s, tenantID, asOf) {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ShipmentID < out[j].ShipmentID })
	return out, nil
}

func (r *inMemoryShipmentRepo) Claim(ctx context.Context, tx pgx.Tx, tenantID string, batchID uuid.UUID, shipmentIDs []string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var claimed []string
	for _, id := range shipmentIDs {
		s, ok := r.shipments[id]
		if !ok || s.TenantID != tenantID || s.RemittanceIncluded {
			continue
		}
		s.RemittanceIncluded = true
		bid := batchID
		s.RemittanceBatchID = &bid
		claimed = append(claimed, id)
	}
	return claimed, nil
}

func (r *inMemoryShipmentRepo) ListTenantsWithEligible(ctx context.Context, asOf time.Time) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]bool)
	var out []string
	for _, s := range r.shipments {
		if s.PaymentMode == domain.PaymentModeCOD &&
			s.CurrentStatus == domain.ShipmentStatusDelivered &&
			s.DeliveredAt != nil && !s.DeliveredAt.After(asOf) &&
			!s.RemittanceIncluded && !seen[s.TenantID] {
			seen[s.TenantID] = true
			out = append(out, s.TenantID)
		}
	}
	sort.Strings(out)
	return out, nil
}

// --- In-Memory Batch Repo ---

type inMemoryBatchRepo struct {
	mu      sync.Mutex
	batches map[uuid.UUID]*domain.RemittanceBatch
}

func newInMemoryBatchRepo() *inMemoryBatchRepo {
	return &inMemoryBatchRepo{batches: make(map[uuid.UUID]*domain.RemittanceBatch)}
}

func (r *inMemoryBatchRepo) Create(ctx context.Context, tx pgx.Tx, batch *domain.RemittanceBatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *batch
	cp.ShipmentIDs = append([]string(nil), batch.ShipmentIDs...)
	r.batches[batch.ID] = &cp
	return nil
}

func (r *inMemoryBatchRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.RemittanceBatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.batches[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	cp.ShipmentIDs = append([]string(nil), b.ShipmentIDs...)
	return &cp, nil
}

func (r *inMemoryBatchRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, from, to domain.BatchStatus, payoutReference *string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.batches[id]
	if !ok || b.Status != from {
		return false, nil
	}
	b.Status = to
	if payoutReference != nil {
		b.PayoutReference = payoutReference
	}
	b.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (r *inMemoryBatchRepo) ListByTenant(ctx context.Context, tenantID string, limit int) ([]domain.RemittanceBatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.RemittanceBatch
	for _, b := range r.batches {
		if b.TenantID == tenantID {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// --- In-Memory Webhook Event Repo ---

type inMemoryWebhookEventRepo struct {
	mu     sync.Mutex
	events map[string]*domain.WebhookEvent
}

func newInMemoryWebhookEventRepo() *inMemoryWebhookEventRepo {
	return &inMemoryWebhookEventRepo{events: make(map[string]*domain.WebhookEvent)}
}

func (r *inMemoryWebhookEventRepo) Insert(ctx context.Context, tx pgx.Tx, event *domain.WebhookEvent) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[event.EventID]; ok {
		return false, nil
	}
	cp := *event
	r.events[event.EventID] = &cp
	return true, nil
}

func (r *inMemoryWebhookEventRepo) Exists(ctx context.Context, eventID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.events[eventID]
	return ok, nil
}

// --- In-Memory Transactor (no-op tx) ---

type inMemoryTransactor struct{}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return &noopTx{}, nil
}

// noopTx is a no-op pgx.Tx implementation for in-memory testing.
type noopTx struct{}

func (t *noopTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *noopTx) Commit(ctx context.Context) error          { return nil }
func (t *noopTx) Rollback(ctx context.Context) error        { return nil }
func (t *noopTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *noopTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *noopTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *noopTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *noopTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *noopTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *noopTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *noopTx) Conn() *pgx.Conn { return nil }
