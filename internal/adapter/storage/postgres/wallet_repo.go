package postgres

import (
	"context"
	"errors"
	"fmt"

	"wallet-remittance-engine/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// WalletRepo implements ports.WalletRepository. Balance mutations are single
// conditional UPDATE statements: the database row is the serialization point,
// so the non-negative invariant holds across service instances without
// application-level locks.
type WalletRepo struct {
	pool Pool
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

// Create inserts a new wallet account.
func (r *WalletRepo) Create(ctx context.Context, a *domain.WalletAccount) error {
	query := `INSERT INTO wallet_accounts (id, tenant_id, balance, currency, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		a.ID, a.TenantID, a.Balance, a.Currency, a.Active, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert wallet account: %w", err)
	}
	return nil
}

// GetByTenantID fetches the account for a tenant (non-locking read).
func (r *WalletRepo) GetByTenantID(ctx context.Context, tenantID string) (*domain.WalletAccount, error) {
	query := `SELECT id, tenant_id, balance, currency, active, created_at, updated_at
		FROM wallet_accounts WHERE tenant_id = $1`

	a := &domain.WalletAccount{}
	err := r.pool.QueryRow(ctx, query, tenantID).Scan(
		&a.ID, &a.TenantID, &a.Balance, &a.Currency, &a.Active, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet account: %w", err)
	}
	return a, nil
}

// AddBalance atomically increments the balance and returns the new value.
// Returns matched=false when no active account exists for the tenant.
func (r *WalletRepo) AddBalance(ctx context.Context, tx pgx.Tx, tenantID string, amount decimal.Decimal) (decimal.Decimal, bool, error) {
	query := `UPDATE wallet_accounts
		SET balance = balance + $1, updated_at = NOW()
		WHERE tenant_id = $2 AND active
		RETURNING balance`

	var newBalance decimal.Decimal
	err := tx.QueryRow(ctx, query, amount, tenantID).Scan(&newBalance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, fmt.Errorf("add balance: %w", err)
	}
	return newBalance, true, nil
}

// SubtractBalance atomically decrements the balance, guarded by
// balance >= amount. Returns matched=false when no row qualified — the
// caller disambiguates "account missing" from "insufficient balance".
func (r *WalletRepo) SubtractBalance(ctx context.Context, tx pgx.Tx, tenantID string, amount decimal.Decimal) (decimal.Decimal, bool, error) {
	query := `UPDATE wallet_accounts
		SET balance = balance - $1, updated_at = NOW()
		WHERE tenant_id = $2 AND active AND balance >= $1
		RETURNING balance`

	var newBalance decimal.Decimal
	err := tx.QueryRow(ctx, query, amount, tenantID).Scan(&newBalance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, fmt.Errorf("subtract balance: %w", err)
	}
	return newBalance, true, nil
}

// Deactivate marks an account inactive. Accounts are never deleted.
func (r *WalletRepo) Deactivate(ctx context.Context, tenantID string) error {
	query := `UPDATE wallet_accounts SET active = FALSE, updated_at = NOW() WHERE tenant_id = $1`

	tag, err := r.pool.Exec(ctx, query, tenantID)
	if err != nil {
		return fmt.Errorf("deactivate wallet account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("wallet account not found: %s", tenantID)
	}
	return nil
}
