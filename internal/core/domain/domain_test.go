package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeFinancials_ThreeShipments(t *testing.T) {
	shipments := []Shipment{
		{ShipmentID: "s1", CODAmount: d("1000"), ShippingCostCharged: d("150")},
		{ShipmentID: "s2", CODAmount: d("2000"), ShippingCostCharged: d("200")},
		{ShipmentID: "s3", CODAmount: d("1500"), ShippingCostCharged: d("175")},
	}

	fin, review := ComputeFinancials(shipments, d("0.005"))

	require.False(t, review)
	assert.True(t, fin.GrossCOD.Equal(d("4500")), "gross = %s", fin.GrossCOD)
	assert.True(t, fin.ShippingDeductions.Equal(d("525")), "deductions = %s", fin.ShippingDeductions)
	assert.True(t, fin.PlatformFee.Equal(d("22.5")), "fee = %s", fin.PlatformFee)
	assert.True(t, fin.NetPayable.Equal(d("3952.5")), "net = %s", fin.NetPayable)
}

func TestComputeFinancials_NegativeNetClampsToZero(t *testing.T) {
	// Shipping charged exceeds the COD collected.
	shipments := []Shipment{
		{ShipmentID: "s1", CODAmount: d("100"), ShippingCostCharged: d("250")},
	}

	fin, review := ComputeFinancials(shipments, d("0.005"))

	assert.True(t, review, "negative net payable must be flagged for manual review")
	assert.True(t, fin.NetPayable.IsZero(), "net clamped to zero, got %s", fin.NetPayable)
	assert.True(t, fin.GrossCOD.Equal(d("100")))
	assert.True(t, fin.ShippingDeductions.Equal(d("250")))
}

func TestComputeFinancials_FeeRounding(t *testing.T) {
	shipments := []Shipment{
		{ShipmentID: "s1", CODAmount: d("333.33"), ShippingCostCharged: d("10")},
	}

	fin, _ := ComputeFinancials(shipments, d("0.005"))

	// 333.33 * 0.005 = 1.66665 -> 1.67 at 2 decimals
	assert.True(t, fin.PlatformFee.Equal(d("1.67")), "fee = %s", fin.PlatformFee)
	assert.True(t, fin.NetPayable.Equal(d("321.66")), "net = %s", fin.NetPayable)
}

func TestComputeFinancials_Empty(t *testing.T) {
	fin, review := ComputeFinancials(nil, d("0.005"))
	assert.False(t, review)
	assert.True(t, fin.GrossCOD.IsZero())
	assert.True(t, fin.NetPayable.IsZero())
}

func TestBatchStatus_CanTransition(t *testing.T) {
	tests := []struct {
		from    BatchStatus
		to      BatchStatus
		allowed bool
	}{
		{BatchStatusDraft, BatchStatusPayoutInitiated, true},
		{BatchStatusPayoutInitiated, BatchStatusPayoutCompleted, true},
		{BatchStatusPayoutInitiated, BatchStatusPayoutFailed, true},
		{BatchStatusDraft, BatchStatusPayoutCompleted, false},
		{BatchStatusPayoutCompleted, BatchStatusPayoutFailed, false},
		{BatchStatusPayoutFailed, BatchStatusPayoutInitiated, false},
		{BatchStatusPayoutFailed, BatchStatusDraft, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransition(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestLedgerIdempotencyKey(t *testing.T) {
	key := LedgerIdempotencyKey("tenant-1", DirectionDebit, Reference{Type: "order", ID: "ORD-42"})
	assert.Equal(t, "tenant-1:debit:order:ORD-42", key)

	// Direction is part of the key: a credit and a debit with the same
	// reference are distinct operations.
	other := LedgerIdempotencyKey("tenant-1", DirectionCredit, Reference{Type: "order", ID: "ORD-42"})
	assert.NotEqual(t, key, other)
}

func TestValidReason(t *testing.T) {
	assert.True(t, ValidReason(ReasonRecharge))
	assert.True(t, ValidReason(ReasonCODRemittance))
	assert.False(t, ValidReason(EntryReason("gift_card")))
}

func TestNewWalletAccount(t *testing.T) {
	acct := NewWalletAccount("tenant-1", "INR")
	assert.Equal(t, "tenant-1", acct.TenantID)
	assert.Equal(t, "INR", acct.Currency)
	assert.True(t, acct.Balance.IsZero())
	assert.True(t, acct.Active)
	assert.NotEqual(t, acct.ID.String(), "00000000-0000-0000-0000-000000000000")
}
