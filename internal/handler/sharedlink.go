package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"taxipro/internal/service"
)

// SharedLinkHandler handles follow-along link endpoints. ViewLink is
// public; create and revoke require an authenticated actor.
type SharedLinkHandler struct {
	linkService *service.SharedLinkService
}

// NewSharedLinkHandler creates a new SharedLinkHandler.
func NewSharedLinkHandler(linkService *service.SharedLinkService) *SharedLinkHandler {
	return &SharedLinkHandler{linkService: linkService}
}

// CreateLink handles POST /v1/trips/:id/share
func (h *SharedLinkHandler) CreateLink(c *gin.Context) {
	link, err := h.linkService.CreateLink(c.Request.Context(), c.Param("id"), actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusCreated, gin.H{
		"token":      link.Token,
		"trip_id":    link.TripID,
		"expires_at": link.ExpiresAt.Format(time.RFC3339),
	})
}

// RevokeLink handles DELETE /v1/shared/:token
func (h *SharedLinkHandler) RevokeLink(c *gin.Context) {
	if err := h.linkService.RevokeLink(c.Request.Context(), c.Param("token"), actorFrom(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ViewLink handles GET /v1/shared/:token
func (h *SharedLinkHandler) ViewLink(c *gin.Context) {
	view, err := h.linkService.ViewLink(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := gin.H{
		"trip_id":     view.TripID,
		"status":      string(view.Status),
		"origin":      LatLngPayload{Lat: view.Origin.Lat, Lng: view.Origin.Lng},
		"destination": LatLngPayload{Lat: view.Destination.Lat, Lng: view.Destination.Lng},
	}
	if view.DriverPosition != nil {
		resp["driver_position"] = LatLngPayload{Lat: view.DriverPosition.Lat, Lng: view.DriverPosition.Lng}
	}
	respondJSON(c, http.StatusOK, resp)
}
