package dto

// CreateAccountRequest is the request body for opening a tenant wallet.
type CreateAccountRequest struct {
	TenantID string `json:"tenant_id" binding:"required,max=64,safe_id"`
	Currency string `json:"currency" binding:"omitempty,len=3"`
}

// LedgerOpRequest is the request body for a wallet credit or debit.
// Amount travels as a decimal string so values like "10.01" survive the
// trip without float rounding.
type LedgerOpRequest struct {
	Amount        string  `json:"amount" binding:"required,max=32"`
	Reason        string  `json:"reason" binding:"required,max=50"`
	ReferenceType string  `json:"reference_type" binding:"required,max=50,safe_id"`
	ReferenceID   string  `json:"reference_id" binding:"required,max=100,safe_id"`
	Actor         *string `json:"actor,omitempty"`
}

// AccountResponse is the response body for balance and account queries.
type AccountResponse struct {
	TenantID  string `json:"tenant_id"`
	Balance   string `json:"balance"`
	Currency  string `json:"currency"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
}

// LedgerEntryResponse is the response body for a recorded ledger entry.
type LedgerEntryResponse struct {
	ID            string `json:"id"`
	TenantID      string `json:"tenant_id"`
	Direction     string `json:"direction"`
	Amount        string `json:"amount"`
	Reason        string `json:"reason"`
	ReferenceType string `json:"reference_type"`
	ReferenceID   string `json:"reference_id"`
	BalanceAfter  string `json:"balance_after"`
	Actor         string `json:"actor,omitempty"`
	CreatedAt     string `json:"created_at"`
}

// LedgerListResponse wraps a paginated transaction history.
type LedgerListResponse struct {
	Items      []LedgerEntryResponse `json:"items"`
	Total      int64                 `json:"total"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"page_size"`
	TotalPages int                   `json:"total_pages"`
}

// CreateBatchRequest is the request body for building a remittance batch.
// AsOf bounds shipment eligibility; it defaults to the current time.
type CreateBatchRequest struct {
	TenantID string  `json:"tenant_id" binding:"required,max=64,safe_id"`
	AsOf     *string `json:"as_of,omitempty"` // RFC 3339
}

// BatchResponse is the response body for a remittance batch.
type BatchResponse struct {
	ID                 string   `json:"id"`
	TenantID           string   `json:"tenant_id"`
	ShipmentIDs        []string `json:"shipment_ids"`
	GrossCOD           string   `json:"gross_cod"`
	ShippingDeductions string   `json:"shipping_deductions"`
	PlatformFee        string   `json:"platform_fee"`
	NetPayable         string   `json:"net_payable"`
	Status             string   `json:"status"`
	NeedsReview        bool     `json:"needs_review"`
	TriggeredBy        string   `json:"triggered_by"`
	PayoutReference    *string  `json:"payout_reference,omitempty"`
	CreatedAt          string   `json:"created_at"`
	UpdatedAt          string   `json:"updated_at"`
}

// BatchListResponse wraps a tenant's recent batches.
type BatchListResponse struct {
	Items []BatchResponse `json:"items"`
	Count int             `json:"count"`
}

// WebhookAckResponse acknowledges a payout provider delivery. Duplicate is
// true when the event id was already processed and nothing changed.
type WebhookAckResponse struct {
	Received  bool `json:"received"`
	Duplicate bool `json:"duplicate"`
}
