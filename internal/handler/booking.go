package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taxipro/internal/domain"
	"taxipro/internal/service"
)

// BookingHandler handles trip creation and driver assignment.
type BookingHandler struct {
	bookingService *service.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(bookingService *service.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// RequestTripBody is the request body for POST /v1/trips. Coordinate
// fields are pointers so `required` checks presence without rejecting
// zero values.
type RequestTripBody struct {
	Origin              *LatLngPayload `json:"origin" binding:"required"`
	OriginAddress       string         `json:"origin_address"`
	Destination         *LatLngPayload `json:"destination" binding:"required"`
	DestinationAddress  string         `json:"destination_address"`
	EstimatedDistanceKm float64        `json:"estimated_distance_km"`
	EstimatedTimeS      int64          `json:"estimated_time_s"`
	IsPhoneRequest      bool           `json:"is_phone_request"`
}

// RequestTrip handles POST /v1/trips
func (h *BookingHandler) RequestTrip(c *gin.Context) {
	var body RequestTripBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := h.bookingService.RequestTrip(c.Request.Context(), actorFrom(c), service.RequestTripRequest{
		Origin:              domain.LatLng{Lat: body.Origin.Lat, Lng: body.Origin.Lng},
		OriginAddress:       body.OriginAddress,
		Destination:         domain.LatLng{Lat: body.Destination.Lat, Lng: body.Destination.Lng},
		DestinationAddress:  body.DestinationAddress,
		EstimatedDistanceKm: body.EstimatedDistanceKm,
		EstimatedTimeS:      body.EstimatedTimeS,
		IsPhoneRequest:      body.IsPhoneRequest,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	resp := tripToResponse(result.Trip)
	respondJSON(c, http.StatusCreated, gin.H{
		"trip":        resp,
		"quoted_fare": result.TotalFare,
	})
}

// AcceptTrip handles POST /v1/trips/:id/accept
func (h *BookingHandler) AcceptTrip(c *gin.Context) {
	trip, err := h.bookingService.AcceptTrip(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, tripToResponse(trip))
}

// DriverArrivedBody is the request body for POST /v1/trips/:id/arrived.
type DriverArrivedBody struct {
	Location *LatLngPayload `json:"location" binding:"required"`
}

// DriverArrived handles POST /v1/trips/:id/arrived
func (h *BookingHandler) DriverArrived(c *gin.Context) {
	var body DriverArrivedBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	trip, err := h.bookingService.DriverArrived(c.Request.Context(), actorFrom(c), c.Param("id"),
		domain.LatLng{Lat: body.Location.Lat, Lng: body.Location.Lng})
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, tripToResponse(trip))
}
