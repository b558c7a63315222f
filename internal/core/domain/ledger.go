package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryDirection is the side of a ledger entry.
type EntryDirection string

const (
	DirectionCredit EntryDirection = "credit"
	DirectionDebit  EntryDirection = "debit"
)

// EntryReason categorises a balance mutation.
type EntryReason string

const (
	ReasonRecharge      EntryReason = "recharge"
	ReasonShippingCost  EntryReason = "shipping_cost"
	ReasonCODRemittance EntryReason = "cod_remittance"
	ReasonWeightDispute EntryReason = "weight_dispute"
	ReasonRefund        EntryReason = "refund"
	ReasonAdjustment    EntryReason = "adjustment"
)

// ValidReason reports whether r is a known entry reason.
func ValidReason(r EntryReason) bool {
	switch r {
	case ReasonRecharge, ReasonShippingCost, ReasonCODRemittance,
		ReasonWeightDispute, ReasonRefund, ReasonAdjustment:
		return true
	}
	return false
}

// Reference ties a ledger entry to the business object that caused it.
// The (Type, ID) tuple doubles as the idempotency key for retried calls.
type Reference struct {
	Type string `json:"reference_type"` // e.g. "order", "shipment", "remittance_batch"
	ID   string `json:"reference_id"`
}

// LedgerEntry is an immutable record of a single balance mutation.
// BalanceAfter snapshots the account balance after the mutation so the log
// can be reconciled against the live balance.
type LedgerEntry struct {
	ID           uuid.UUID       `json:"id"`
	TenantID     string          `json:"tenant_id"`
	Direction    EntryDirection  `json:"direction"`
	Amount       decimal.Decimal `json:"amount"` // always > 0
	Reason       EntryReason     `json:"reason"`
	Reference    Reference       `json:"reference"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	Actor        string          `json:"actor"` // system/user attribution
	CreatedAt    time.Time       `json:"created_at"`
}

// LedgerIdempotencyKey builds the cache key for a credit/debit request so a
// retried call with the same reference tuple returns the recorded entry.
func LedgerIdempotencyKey(tenantID string, direction EntryDirection, ref Reference) string {
	return tenantID + ":" + string(direction) + ":" + ref.Type + ":" + ref.ID
}
