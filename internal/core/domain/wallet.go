package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WalletAccount holds a tenant's prepaid balance. One account per tenant,
// balance is never negative and is mutated only through the ledger service.
type WalletAccount struct {
	ID        uuid.UUID       `json:"id"`
	TenantID  string          `json:"tenant_id"`
	Balance   decimal.Decimal `json:"balance"` // 2-decimal fixed point
	Currency  string          `json:"currency"`
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewWalletAccount creates an account with a zero opening balance.
// Accounts are deactivated, never deleted.
func NewWalletAccount(tenantID, currency string) *WalletAccount {
	now := time.Now().UTC()
	return &WalletAccount{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Balance:   decimal.Zero,
		Currency:  currency,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
