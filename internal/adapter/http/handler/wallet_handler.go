package handler

import (
	"context"
	"strconv"
	"time"

	"wallet-remittance-engine/internal/adapter/http/dto"
	"wallet-remittance-engine/internal/core/domain"
	"wallet-remittance-engine/internal/core/ports"
	"wallet-remittance-engine/pkg/apperror"
	"wallet-remittance-engine/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// WalletHandler handles wallet account and ledger endpoints.
type WalletHandler struct {
	ledgerSvc       ports.LedgerService
	defaultCurrency string
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(ledgerSvc ports.LedgerService, defaultCurrency string) *WalletHandler {
	return &WalletHandler{ledgerSvc: ledgerSvc, defaultCurrency: defaultCurrency}
}

// CreateAccount handles POST /api/v1/wallets.
func (h *WalletHandler) CreateAccount(c *gin.Context) {
	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	currency := req.Currency
	if currency == "" {
		currency = h.defaultCurrency
	}

	account, err := h.ledgerSvc.CreateAccount(c.Request.Context(), req.TenantID, currency)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toAccountResponse(account))
}

// GetBalance handles GET /api/v1/wallets/:tenant_id/balance.
func (h *WalletHandler) GetBalance(c *gin.Context) {
	account, err := h.ledgerSvc.GetBalance(c.Request.Context(), c.Param("tenant_id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toAccountResponse(account))
}

// Credit handles POST /api/v1/wallets/:tenant_id/credit.
func (h *WalletHandler) Credit(c *gin.Context) {
	h.applyLedgerOp(c, h.ledgerSvc.Credit)
}

// Debit handles POST /api/v1/wallets/:tenant_id/debit.
func (h *WalletHandler) Debit(c *gin.Context) {
	h.applyLedgerOp(c, h.ledgerSvc.Debit)
}

func (h *WalletHandler) applyLedgerOp(
	c *gin.Context,
	op func(ctx context.Context, req ports.LedgerRequest) (*domain.LedgerEntry, error),
) {
	var req dto.LedgerOpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		response.Error(c, apperror.ErrInvalidAmount("amount must be a decimal number"))
		return
	}

	actor := "api"
	if req.Actor != nil && *req.Actor != "" {
		actor = *req.Actor
	}

	entry, err := op(c.Request.Context(), ports.LedgerRequest{
		TenantID:  c.Param("tenant_id"),
		Amount:    amount,
		Reason:    domain.EntryReason(req.Reason),
		Reference: domain.Reference{Type: req.ReferenceType, ID: req.ReferenceID},
		Actor:     actor,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toLedgerEntryResponse(entry))
}

// GetTransactionHistory handles GET /api/v1/wallets/:tenant_id/transactions.
func (h *WalletHandler) GetTransactionHistory(c *gin.Context) {
	params := ports.LedgerListParams{
		TenantID: c.Param("tenant_id"),
		Page:     intQuery(c, "page", 1),
		PageSize: intQuery(c, "page_size", 20),
	}
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > 100 {
		params.PageSize = 20
	}

	if reason := c.Query("reason"); reason != "" {
		r := domain.EntryReason(reason)
		if !domain.ValidReason(r) {
			response.Error(c, apperror.Validation("unknown reason filter"))
			return
		}
		params.Reason = &r
	}
	if from, ok := timeQuery(c, "from"); ok {
		params.From = &from
	} else if c.Query("from") != "" {
		response.Error(c, apperror.Validation("from must be RFC 3339"))
		return
	}
	if to, ok := timeQuery(c, "to"); ok {
		params.To = &to
	} else if c.Query("to") != "" {
		response.Error(c, apperror.Validation("to must be RFC 3339"))
		return
	}

	entries, total, err := h.ledgerSvc.GetTransactionHistory(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.LedgerEntryResponse, 0, len(entries))
	for i := range entries {
		items = append(items, toLedgerEntryResponse(&entries[i]))
	}

	totalPages := int((total + int64(params.PageSize) - 1) / int64(params.PageSize))
	response.OK(c, dto.LedgerListResponse{
		Items:      items,
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: totalPages,
	})
}

// intQuery parses an integer query parameter, falling back to def on
// absence or garbage.
func intQuery(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// timeQuery parses an RFC 3339 query parameter. ok is false when the
// parameter is absent or unparsable.
func timeQuery(c *gin.Context, name string) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func toAccountResponse(a *domain.WalletAccount) dto.AccountResponse {
	return dto.AccountResponse{
		TenantID:  a.TenantID,
		Balance:   a.Balance.StringFixed(2),
		Currency:  a.Currency,
		Active:    a.Active,
		CreatedAt: a.CreatedAt.Format(time.RFC3339),
	}
}

func toLedgerEntryResponse(e *domain.LedgerEntry) dto.LedgerEntryResponse {
	return dto.LedgerEntryResponse{
		ID:            e.ID.String(),
		TenantID:      e.TenantID,
		Direction:     string(e.Direction),
		Amount:        e.Amount.StringFixed(2),
		Reason:        string(e.Reason),
		ReferenceType: e.Reference.Type,
		ReferenceID:   e.Reference.ID,
		BalanceAfter:  e.BalanceAfter.StringFixed(2),
		Actor:         e.Actor,
		CreatedAt:     e.CreatedAt.Format(time.RFC3339),
	}
}
