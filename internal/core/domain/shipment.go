package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment modes and shipment statuses relevant to settlement. The wider
// shipment lifecycle lives outside this service; only the COD settlement
// slice of shipment state is owned here.
const (
	PaymentModeCOD     = "COD"
	PaymentModePrepaid = "prepaid"

	ShipmentStatusDelivered = "delivered"
)

// Shipment is the settlement-owned view of a shipment: the COD money it
// carries and whether it has been claimed by a remittance batch.
// RemittanceIncluded flips to true exactly once, when a batch claims the
// shipment; it is never reset.
type Shipment struct {
	ShipmentID          string          `json:"shipment_id"`
	TenantID            string          `json:"tenant_id"`
	CODAmount           decimal.Decimal `json:"cod_amount"`
	ShippingCostCharged decimal.Decimal `json:"shipping_cost_charged"`
	PaymentMode         string          `json:"payment_mode"`
	CurrentStatus       string          `json:"current_status"`
	DeliveredAt         *time.Time      `json:"delivered_at,omitempty"`
	RemittanceIncluded  bool            `json:"remittance_included"`
	RemittanceBatchID   *uuid.UUID      `json:"remittance_batch_id,omitempty"`
}
