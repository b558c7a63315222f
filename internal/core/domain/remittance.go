package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BatchStatus is the lifecycle state of a remittance batch.
type BatchStatus string

const (
	BatchStatusDraft           BatchStatus = "draft"
	BatchStatusPayoutInitiated BatchStatus = "payout_initiated"
	BatchStatusPayoutCompleted BatchStatus = "payout_completed"
	BatchStatusPayoutFailed    BatchStatus = "payout_failed"
)

// CanTransition reports whether a batch may move from its current status to
// next. payout_failed is terminal for the automated flow; a failed payout is
// never auto-retried to avoid duplicate transfers.
func (s BatchStatus) CanTransition(next BatchStatus) bool {
	switch s {
	case BatchStatusDraft:
		return next == BatchStatusPayoutInitiated
	case BatchStatusPayoutInitiated:
		return next == BatchStatusPayoutCompleted || next == BatchStatusPayoutFailed
	}
	return false
}

// BatchFinancials is the money breakdown of one settlement unit.
// NetPayable = GrossCOD - ShippingDeductions - PlatformFee, floored at zero.
type BatchFinancials struct {
	GrossCOD           decimal.Decimal `json:"gross_cod"`
	ShippingDeductions decimal.Decimal `json:"shipping_deductions"`
	PlatformFee        decimal.Decimal `json:"platform_fee"`
	NetPayable         decimal.Decimal `json:"net_payable"`
}

// RemittanceBatch aggregates delivered COD shipments into one net payout.
// Its shipment set is disjoint from every other batch's set for the tenant.
type RemittanceBatch struct {
	ID              uuid.UUID       `json:"id"`
	TenantID        string          `json:"tenant_id"`
	ShipmentIDs     []string        `json:"shipment_ids"`
	Financials      BatchFinancials `json:"financials"`
	Status          BatchStatus     `json:"status"`
	NeedsReview     bool            `json:"needs_review"` // set when fees exceeded collected COD
	TriggeredBy     string          `json:"triggered_by"`
	PayoutReference *string         `json:"payout_reference,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ComputeFinancials derives the batch money breakdown from the claimed
// shipments. The platform fee is grossCOD * feeRate rounded to 2 decimals.
// A negative net payable is clamped to zero and flagged for manual review
// instead of producing a negative credit.
func ComputeFinancials(shipments []Shipment, feeRate decimal.Decimal) (BatchFinancials, bool) {
	gross := decimal.Zero
	deductions := decimal.Zero
	for _, s := range shipments {
		gross = gross.Add(s.CODAmount)
		deductions = deductions.Add(s.ShippingCostCharged)
	}

	fee := gross.Mul(feeRate).Round(2)
	net := gross.Sub(deductions).Sub(fee)

	needsReview := false
	if net.IsNegative() {
		net = decimal.Zero
		needsReview = true
	}

	return BatchFinancials{
		GrossCOD:           gross,
		ShippingDeductions: deductions,
		PlatformFee:        fee,
		NetPayable:         net,
	}, needsReview
}

// PayoutEvent is the parsed payload of an inbound payout provider webhook.
type PayoutEvent struct {
	EventID         string    `json:"event_id"`
	EventType       string    `json:"event_type"` // payout.completed | payout.failed
	BatchID         uuid.UUID `json:"batch_id"`
	PayoutReference string    `json:"payout_reference"`
	FailureReason   string    `json:"failure_reason,omitempty"`
}

// Payout event types delivered by the provider.
const (
	EventPayoutCompleted = "payout.completed"
	EventPayoutFailed    = "payout.failed"
)

// WebhookEvent is the durable record of a processed webhook delivery.
// Insert-once semantics on EventID give replay protection across restarts.
type WebhookEvent struct {
	EventID    string    `json:"event_id"`
	BatchID    uuid.UUID `json:"batch_id"`
	EventType  string    `json:"event_type"`
	ReceivedAt time.Time `json:"received_at"`
}
