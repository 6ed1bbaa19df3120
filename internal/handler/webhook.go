package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taxipro/internal/service"
)

// WebhookHandler receives payment gateway callbacks.
type WebhookHandler struct {
	paymentService *service.PaymentService
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(paymentService *service.PaymentService) *WebhookHandler {
	return &WebhookHandler{paymentService: paymentService}
}

// WebhookBody is the request body for POST /v1/webhooks/payment.
type WebhookBody struct {
	Type          string `json:"type" binding:"required"`
	TransactionID string `json:"transaction_id" binding:"required"`
}

// HandlePaymentEvent handles POST /v1/webhooks/payment. Gateways retry
// on non-2xx, so unknown events and transactions are acknowledged.
func (h *WebhookHandler) HandlePaymentEvent(c *gin.Context) {
	var body WebhookBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	err := h.paymentService.ApplyWebhookEvent(c.Request.Context(), service.WebhookEvent{
		Type:          body.Type,
		TransactionID: body.TransactionID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"received": true})
}
