package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taxipro/internal/service"
)

// CancellationHandler handles trip cancellations and no-show reports.
type CancellationHandler struct {
	cancellationService *service.CancellationService
}

// NewCancellationHandler creates a new CancellationHandler.
func NewCancellationHandler(cancellationService *service.CancellationService) *CancellationHandler {
	return &CancellationHandler{cancellationService: cancellationService}
}

// CancelResponse is the HTTP response for cancellation operations.
type CancelResponse struct {
	Trip           TripResponse `json:"trip"`
	PenaltyApplied bool         `json:"penalty_applied"`
	SettlementPath string       `json:"settlement_path,omitempty"`
}

// CancelTrip handles POST /v1/trips/:id/cancel
func (h *CancellationHandler) CancelTrip(c *gin.Context) {
	result, err := h.cancellationService.CancelTrip(c.Request.Context(), c.Param("id"), actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, CancelResponse{
		Trip:           tripToResponse(result.Trip),
		PenaltyApplied: result.PenaltyApplied,
		SettlementPath: string(result.SettlementPath),
	})
}

// MarkAsNoShow handles POST /v1/trips/:id/no-show
func (h *CancellationHandler) MarkAsNoShow(c *gin.Context) {
	result, err := h.cancellationService.MarkAsNoShow(c.Request.Context(), c.Param("id"), actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, CancelResponse{
		Trip:           tripToResponse(result.Trip),
		PenaltyApplied: result.PenaltyApplied,
		SettlementPath: string(result.SettlementPath),
	})
}
