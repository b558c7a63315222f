package handler

import (
	"time"

	"wallet-remittance-engine/internal/adapter/http/dto"
	"wallet-remittance-engine/internal/core/domain"
	"wallet-remittance-engine/internal/core/ports"
	"wallet-remittance-engine/pkg/apperror"
	"wallet-remittance-engine/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RemittanceHandler handles remittance batch endpoints.
type RemittanceHandler struct {
	remittanceSvc ports.RemittanceService
}

// NewRemittanceHandler creates a new RemittanceHandler.
func NewRemittanceHandler(remittanceSvc ports.RemittanceService) *RemittanceHandler {
	return &RemittanceHandler{remittanceSvc: remittanceSvc}
}

// CreateBatch handles POST /api/v1/remittances.
func (h *RemittanceHandler) CreateBatch(c *gin.Context) {
	var req dto.CreateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	asOf := time.Now().UTC()
	if req.AsOf != nil && *req.AsOf != "" {
		parsed, err := time.Parse(time.RFC3339, *req.AsOf)
		if err != nil {
			response.Error(c, apperror.Validation("as_of must be RFC 3339"))
			return
		}
		asOf = parsed
	}

	batch, err := h.remittanceSvc.CreateBatch(c.Request.Context(), req.TenantID, "api", asOf)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toBatchResponse(batch))
}

// InitiatePayout handles POST /api/v1/remittances/:batch_id/payout.
// It retries payout initiation for a batch stuck in draft.
func (h *RemittanceHandler) InitiatePayout(c *gin.Context) {
	batchID, err := uuid.Parse(c.Param("batch_id"))
	if err != nil {
		response.Error(c, apperror.Validation("batch_id must be a UUID"))
		return
	}

	batch, err := h.remittanceSvc.InitiatePayout(c.Request.Context(), batchID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toBatchResponse(batch))
}

// GetBatch handles GET /api/v1/remittances/:batch_id.
func (h *RemittanceHandler) GetBatch(c *gin.Context) {
	batchID, err := uuid.Parse(c.Param("batch_id"))
	if err != nil {
		response.Error(c, apperror.Validation("batch_id must be a UUID"))
		return
	}

	batch, err := h.remittanceSvc.GetBatch(c.Request.Context(), batchID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toBatchResponse(batch))
}

// ListBatches handles GET /api/v1/remittances?tenant_id=...&limit=...
func (h *RemittanceHandler) ListBatches(c *gin.Context) {
	tenantID := c.Query("tenant_id")
	if tenantID == "" {
		response.Error(c, apperror.Validation("tenant_id query parameter is required"))
		return
	}

	batches, err := h.remittanceSvc.ListBatches(c.Request.Context(), tenantID, intQuery(c, "limit", 20))
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.BatchResponse, 0, len(batches))
	for i := range batches {
		items = append(items, toBatchResponse(&batches[i]))
	}

	response.OK(c, dto.BatchListResponse{Items: items, Count: len(items)})
}

func toBatchResponse(b *domain.RemittanceBatch) dto.BatchResponse {
	return dto.BatchResponse{
		ID:                 b.ID.String(),
		TenantID:           b.TenantID,
		ShipmentIDs:        b.ShipmentIDs,
		GrossCOD:           b.Financials.GrossCOD.StringFixed(2),
		ShippingDeductions: b.Financials.ShippingDeductions.StringFixed(2),
		PlatformFee:        b.Financials.PlatformFee.StringFixed(2),
		NetPayable:         b.Financials.NetPayable.StringFixed(2),
		Status:             string(b.Status),
		NeedsReview:        b.NeedsReview,
		TriggeredBy:        b.TriggeredBy,
		PayoutReference:    b.PayoutReference,
		CreatedAt:          b.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          b.UpdatedAt.Format(time.RFC3339),
	}
}
