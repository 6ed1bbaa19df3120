package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"taxipro/internal/domain"
	"taxipro/internal/middleware"
	"taxipro/internal/service"
)

// TripHandler handles HTTP requests for trips.
type TripHandler struct {
	tripService *service.TripService
	safety      *service.SafetyService
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(tripService *service.TripService, safety *service.SafetyService) *TripHandler {
	return &TripHandler{tripService: tripService, safety: safety}
}

// actorFrom returns the actor resolved by the auth middleware.
func actorFrom(c *gin.Context) domain.Actor {
	v, _ := c.Get(middleware.ActorContextKey)
	actor, _ := v.(domain.Actor)
	return actor
}

// LatLngPayload is a coordinate pair in request/response bodies. No
// binding tags: `required` rejects legitimate zero coordinates on the
// equator or prime meridian, and the service layer range-checks values.
type LatLngPayload struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// FareResponse is the fare breakdown in trip responses, in minor units.
type FareResponse struct {
	Base       int64  `json:"base"`
	Distance   int64  `json:"distance"`
	Time       int64  `json:"time"`
	Stops      int64  `json:"stops,omitempty"`
	Surcharges int64  `json:"surcharges,omitempty"`
	Penalty    int64  `json:"penalty,omitempty"`
	Total      int64  `json:"total"`
	Currency   string `json:"currency"`
}

// TripResponse is the HTTP response for trip operations.
type TripResponse struct {
	TripID             string         `json:"trip_id"`
	PassengerID        string         `json:"passenger_id"`
	DriverID           string         `json:"driver_id,omitempty"`
	Status             string         `json:"status"`
	Origin             LatLngPayload  `json:"origin"`
	OriginAddress      string         `json:"origin_address,omitempty"`
	Destination        LatLngPayload  `json:"destination"`
	DestinationAddress string         `json:"destination_address,omitempty"`
	TravelledDistanceM float64        `json:"travelled_distance_m"`
	TravelledTimeS     int64          `json:"travelled_time_s"`
	LastLocation       *LatLngPayload `json:"last_location,omitempty"`
	Fare               FareResponse   `json:"fare"`
	PaymentMethod      string         `json:"payment_method,omitempty"`
	Rating             int            `json:"rating,omitempty"`
	CreatedAt          string         `json:"created_at"`
	StartedAt          string         `json:"started_at,omitempty"`
	CompletedAt        string         `json:"completed_at,omitempty"`
}

func tripToResponse(t *domain.Trip) TripResponse {
	resp := TripResponse{
		TripID:             t.ID,
		PassengerID:        t.PassengerID,
		DriverID:           t.DriverID,
		Status:             string(t.Status),
		Origin:             LatLngPayload{Lat: t.Origin.Lat, Lng: t.Origin.Lng},
		OriginAddress:      t.OriginAddress,
		Destination:        LatLngPayload{Lat: t.Destination.Lat, Lng: t.Destination.Lng},
		DestinationAddress: t.DestinationAddress,
		TravelledDistanceM: t.TravelledDistanceM,
		TravelledTimeS:     t.TravelledTimeS,
		Fare: FareResponse{
			Base:       t.Fare.Base,
			Distance:   t.Fare.Distance,
			Time:       t.Fare.Time,
			Stops:      t.Fare.Stops,
			Surcharges: t.Fare.Surcharges,
			Penalty:    t.Fare.Penalty,
			Total:      t.Fare.Total,
			Currency:   t.Fare.Currency,
		},
		PaymentMethod: string(t.Payment.Method),
		Rating:        t.Rating,
		CreatedAt:     t.CreatedAt.Format(time.RFC3339),
	}
	if t.LastLocation != nil {
		resp.LastLocation = &LatLngPayload{Lat: t.LastLocation.Lat, Lng: t.LastLocation.Lng}
	}
	if !t.StartedAt.IsZero() {
		resp.StartedAt = t.StartedAt.Format(time.RFC3339)
	}
	if !t.CompletedAt.IsZero() {
		resp.CompletedAt = t.CompletedAt.Format(time.RFC3339)
	}
	return resp
}

// UpdateTripBody is the request body for PATCH /v1/trips/:id.
type UpdateTripBody struct {
	Status          *string        `json:"status"`
	CurrentLocation *LatLngPayload `json:"current_location"`
	NewDestination  *struct {
		Location LatLngPayload `json:"location"`
		Address  string        `json:"address"`
	} `json:"new_destination"`
	NewStop *struct {
		Location LatLngPayload `json:"location"`
		Address  string        `json:"address"`
	} `json:"new_stop"`
}

// UpdateTrip handles PATCH /v1/trips/:id
func (h *TripHandler) UpdateTrip(c *gin.Context) {
	var body UpdateTripBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	req := service.UpdateTripRequest{}
	if body.Status != nil {
		status := domain.TripStatus(*body.Status)
		req.NewStatus = &status
	}
	if body.CurrentLocation != nil {
		req.CurrentLocation = &domain.LatLng{Lat: body.CurrentLocation.Lat, Lng: body.CurrentLocation.Lng}
	}
	if body.NewDestination != nil {
		req.NewDestination = &service.DestinationChange{
			Location: domain.LatLng{Lat: body.NewDestination.Location.Lat, Lng: body.NewDestination.Location.Lng},
			Address:  body.NewDestination.Address,
		}
	}
	if body.NewStop != nil {
		req.NewStop = &service.StopRequest{
			Location: domain.LatLng{Lat: body.NewStop.Location.Lat, Lng: body.NewStop.Location.Lng},
			Address:  body.NewStop.Address,
		}
	}

	trip, err := h.tripService.UpdateTrip(c.Request.Context(), c.Param("id"), actorFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, tripToResponse(trip))
}

// GetTrip handles GET /v1/trips/:id
func (h *TripHandler) GetTrip(c *gin.Context) {
	trip, err := h.tripService.GetTrip(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, tripToResponse(trip))
}

// RateTripBody is the request body for POST /v1/trips/:id/rating.
type RateTripBody struct {
	Stars   int    `json:"stars" binding:"required"`
	Comment string `json:"comment"`
}

// RateTrip handles POST /v1/trips/:id/rating
func (h *TripHandler) RateTrip(c *gin.Context) {
	var body RateTripBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	trip, err := h.tripService.RateTrip(c.Request.Context(), c.Param("id"), actorFrom(c), body.Stars, body.Comment)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, tripToResponse(trip))
}

// SendMessageBody is the request body for POST /v1/trips/:id/messages.
type SendMessageBody struct {
	Body string `json:"body" binding:"required"`
}

// SendMessage handles POST /v1/trips/:id/messages
func (h *TripHandler) SendMessage(c *gin.Context) {
	var body SendMessageBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	msg, err := h.tripService.SendMessage(c.Request.Context(), c.Param("id"), actorFrom(c), body.Body)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusCreated, gin.H{
		"message_id": msg.ID,
		"trip_id":    msg.TripID,
		"sent_at":    msg.CreatedAt.Format(time.RFC3339),
	})
}

// TriggerSafetyAlert handles POST /v1/trips/:id/safety-alert
func (h *TripHandler) TriggerSafetyAlert(c *gin.Context) {
	if err := h.safety.TriggerSafetyAlert(c.Request.Context(), c.Param("id"), actorFrom(c)); err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusAccepted, gin.H{"status": "alert raised"})
}
