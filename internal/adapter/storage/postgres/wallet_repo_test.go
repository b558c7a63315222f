package postgres

import (
	"context"
	"testing"
	"time"

	"wallet-remittance-engine/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAccount(tenantID string) *domain.WalletAccount {
	return &domain.WalletAccount{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Balance:   decimal.RequireFromString("500.00"),
		Currency:  "INR",
		Active:    true,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
		UpdatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func accountColumns() []string {
	return []string{"id", "tenant_id", "balance", "currency", "active", "created_at", "updated_at"}
}

func accountRow(a *domain.WalletAccount) *pgxmock.Rows {
	return pgxmock.NewRows(accountColumns()).AddRow(
		a.ID, a.TenantID, a.Balance, a.Currency, a.Active, a.CreatedAt, a.UpdatedAt,
	)
}

func TestWalletRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	a := newTestAccount("tenant-1")

	mock.ExpectExec("INSERT INTO wallet_accounts").
		WithArgs(a.ID, a.TenantID, a.Balance, a.Currency, a.Active, a.CreatedAt, a.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Create(context.Background(), a)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_GetByTenantID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	a := newTestAccount("tenant-1")

	mock.ExpectQuery("FROM wallet_accounts WHERE tenant_id").
		WithArgs("tenant-1").
		WillReturnRows(accountRow(a))

	result, err := repo.GetByTenantID(context.Background(), "tenant-1")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, a.ID, result.ID)
	assert.True(t, a.Balance.Equal(result.Balance))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_GetByTenantID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)

	mock.ExpectQuery("FROM wallet_accounts WHERE tenant_id").
		WithArgs("ghost").
		WillReturnRows(pgxmock.NewRows(accountColumns()))

	result, err := repo.GetByTenantID(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_AddBalance(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	amount := decimal.RequireFromString("100.00")

	mock.ExpectBegin()
	mock.ExpectQuery(`SET balance = balance \+ \$1`).
		WithArgs(amount, "tenant-1").
		WillReturnRows(pgxmock.NewRows([]string{"balance"}).AddRow(decimal.RequireFromString("600.00")))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	newBalance, matched, err := repo.AddBalance(context.Background(), tx, "tenant-1", amount)
	require.NoError(t, err)
	assert.True(t, matched)
	assert.True(t, newBalance.Equal(decimal.RequireFromString("600.00")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_SubtractBalance_Guarded(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	amount := decimal.RequireFromString("150.00")

	mock.ExpectBegin()
	mock.ExpectQuery(`AND active AND balance >= \$1`).
		WithArgs(amount, "tenant-1").
		WillReturnRows(pgxmock.NewRows([]string{"balance"}).AddRow(decimal.RequireFromString("350.00")))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	newBalance, matched, err := repo.SubtractBalance(context.Background(), tx, "tenant-1", amount)
	require.NoError(t, err)
	assert.True(t, matched)
	assert.True(t, newBalance.Equal(decimal.RequireFromString("350.00")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_SubtractBalance_NoRowMatched(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)
	amount := decimal.RequireFromString("1000.00")

	mock.ExpectBegin()
	mock.ExpectQuery(`SET balance = balance - \$1`).
		WithArgs(amount, "tenant-1").
		WillReturnRows(pgxmock.NewRows([]string{"balance"}))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	_, matched, err := repo.SubtractBalance(context.Background(), tx, "tenant-1", amount)
	require.NoError(t, err)
	assert.False(t, matched, "insufficient balance must not match any row")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_Deactivate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)

	mock.ExpectExec("UPDATE wallet_accounts SET active = FALSE").
		WithArgs("tenant-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	assert.NoError(t, repo.Deactivate(context.Background(), "tenant-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletRepo_Deactivate_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletRepo(mock)

	mock.ExpectExec("UPDATE wallet_accounts SET active = FALSE").
		WithArgs("ghost").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	assert.Error(t, repo.Deactivate(context.Background(), "ghost"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
