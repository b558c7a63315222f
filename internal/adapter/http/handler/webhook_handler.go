package handler

import (
	"io"

	"wallet-remittance-engine/internal/adapter/http/dto"
	"wallet-remittance-engine/internal/core/ports"
	"wallet-remittance-engine/pkg/apperror"
	"wallet-remittance-engine/pkg/response"

	"github.com/gin-gonic/gin"
)

// Header names used by the payout provider on webhook deliveries.
const (
	HeaderPayoutSignature = "X-Payout-Signature"
	HeaderPayoutEventID   = "X-Payout-Event-Id"
)

// WebhookHandler receives payout provider callbacks.
type WebhookHandler struct {
	webhookSvc ports.WebhookService
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(webhookSvc ports.WebhookService) *WebhookHandler {
	return &WebhookHandler{webhookSvc: webhookSvc}
}

// HandlePayoutEvent handles POST /api/v1/webhooks/payout.
// The body is read raw and passed through untouched: the HMAC is computed
// over the exact bytes the provider signed, so no binding or sanitising
// happens before verification.
func (h *WebhookHandler) HandlePayoutEvent(c *gin.Context) {
	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Error(c, apperror.Validation("cannot read request body"))
		return
	}

	duplicate, err := h.webhookSvc.ProcessPayoutEvent(
		c.Request.Context(),
		rawBody,
		c.GetHeader(HeaderPayoutSignature),
		c.GetHeader(HeaderPayoutEventID),
	)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.WebhookAckResponse{Received: true, Duplicate: duplicate})
}
