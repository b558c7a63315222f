package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"wallet-remittance-engine/internal/core/domain"
	"wallet-remittance-engine/internal/core/ports"

	"github.com/jackc/pgx/v5"
)

// LedgerRepo implements ports.LedgerRepository over the append-only
// wallet_transactions table. Rows are only ever inserted; the unique index on
// (tenant_id, reference_type, reference_id, direction) enforces the
// idempotency tuple.
type LedgerRepo struct {
	pool Pool
}

// NewLedgerRepo creates a new LedgerRepo.
func NewLedgerRepo(pool Pool) *LedgerRepo {
	return &LedgerRepo{pool: pool}
}

// Create appends a ledger entry within a database transaction.
func (r *LedgerRepo) Create(ctx context.Context, tx pgx.Tx, e *domain.LedgerEntry) error {
	query := `INSERT INTO wallet_transactions
		(id, tenant_id, direction, amount, reason, reference_type, reference_id, balance_after, actor, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := tx.Exec(ctx, query,
		e.ID, e.TenantID, e.Direction, e.Amount, e.Reason,
		e.Reference.Type, e.Reference.ID, e.BalanceAfter, e.Actor, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

// GetByReference fetches an entry by its idempotency tuple.
func (r *LedgerRepo) GetByReference(ctx context.Context, tenantID string, direction domain.EntryDirection, ref domain.Reference) (*domain.LedgerEntry, error) {
	query := `SELECT id, tenant_id, direction, amount, reason, reference_type, reference_id, balance_after, actor, created_at
		FROM wallet_transactions
		WHERE tenant_id = $1 AND direction = $2 AND reference_type = $3 AND reference_id = $4`

	return r.scanEntry(r.pool.QueryRow(ctx, query, tenantID, direction, ref.Type, ref.ID))
}

// List fetches ledger entries with filtering and pagination, newest first.
// Ordering ties on created_at are broken by id so pages are stable.
func (r *LedgerRepo) List(ctx context.Context, params ports.LedgerListParams) ([]domain.LedgerEntry, int64, error) {
	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, fmt.Sprintf("tenant_id = $%d", argIdx))
	args = append(args, params.TenantID)
	argIdx++

	if params.Reason != nil {
		conditions = append(conditions, fmt.Sprintf("reason = $%d", argIdx))
		args = append(args, *params.Reason)
		argIdx++
	}
	if params.From != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", argIdx))
		args = append(args, *params.From)
		argIdx++
	}
	if params.To != nil {
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", argIdx))
		args = append(args, *params.To)
		argIdx++
	}

	where := "WHERE " + strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM wallet_transactions %s", where)
	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count ledger entries: %w", err)
	}

	offset := (params.Page - 1) * params.PageSize
	dataQuery := fmt.Sprintf(`SELECT id, tenant_id, direction, amount, reason, reference_type, reference_id, balance_after, actor, created_at
		FROM wallet_transactions %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`, where, argIdx, argIdx+1)
	args = append(args, params.PageSize, offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		e := domain.LedgerEntry{}
		err := rows.Scan(
			&e.ID, &e.TenantID, &e.Direction, &e.Amount, &e.Reason,
			&e.Reference.Type, &e.Reference.ID, &e.BalanceAfter, &e.Actor, &e.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan ledger entry row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate ledger entry rows: %w", err)
	}
	return entries, total, nil
}

func (r *LedgerRepo) scanEntry(row pgx.Row) (*domain.LedgerEntry, error) {
	e := &domain.LedgerEntry{}
	err := row.Scan(
		&e.ID, &e.TenantID, &e.Direction, &e.Amount, &e.Reason,
		&e.Reference.Type, &e.Reference.ID, &e.BalanceAfter, &e.Actor, &e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan ledger entry: %w", err)
	}
	return e, nil
}
