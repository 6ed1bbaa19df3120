package domain

import "time"

// TripStatus represents the current status of a trip.
type TripStatus string

const (
	TripStatusPending              TripStatus = "pending"
	TripStatusAssigned             TripStatus = "assigned"
	TripStatusArrived              TripStatus = "arrived"
	TripStatusActive               TripStatus = "active"
	TripStatusCompleted            TripStatus = "completed"
	TripStatusCancelled            TripStatus = "cancelled"
	TripStatusCancelledByPassenger TripStatus = "cancelled_by_passenger"
	TripStatusCancelledByDriver    TripStatus = "cancelled_by_driver"
	TripStatusCancelledWithPenalty TripStatus = "cancelled_with_penalty"
	TripStatusNoShow               TripStatus = "no_show"
	TripStatusDisconnected         TripStatus = "disconnected"
	TripStatusPendingReview        TripStatus = "pending_review"
	TripStatusPaymentFailed        TripStatus = "payment_failed"
	TripStatusRefunded             TripStatus = "refunded"
)

// ActorRole identifies who performed a mutation on a trip.
type ActorRole string

const (
	ActorSystem    ActorRole = "system"
	ActorDriver    ActorRole = "driver"
	ActorPassenger ActorRole = "passenger"
	ActorAdmin     ActorRole = "admin"
)

// Actor is the authenticated identity behind a request.
type Actor struct {
	ID   string
	Role ActorRole
}

// PaymentMethod represents how a trip is settled.
type PaymentMethod string

const (
	PaymentMethodStripe         PaymentMethod = "stripe"
	PaymentMethodCash           PaymentMethod = "cash"
	PaymentMethodPendingBalance PaymentMethod = "pending_balance"
)

// LatLng is a WGS84 coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Stop is an extra stop added to a trip while underway.
type Stop struct {
	Location LatLng    `json:"location"`
	Address  string    `json:"address"`
	AddedAt  time.Time `json:"added_at"`
}

// Fare is the monetary breakdown of a trip. All amounts are integer
// minor units (cents/centavos) of Currency.
type Fare struct {
	Base       int64
	Distance   int64
	Time       int64
	Stops      int64
	Surcharges int64
	Penalty    int64
	Total      int64
	Currency   string
}

// Payment holds the settlement state of a trip.
type Payment struct {
	Method        PaymentMethod
	TransactionID string
	Settled       bool
}

// Trip is the central aggregate, one row per ride.
//
// Travelled distance/time accrue only while Status is active. Fare.Total
// is authoritative only once Status is completed and is immutable from
// then on.
type Trip struct {
	ID          string
	PassengerID string
	DriverID    string

	Status TripStatus

	Origin             LatLng
	OriginAddress      string
	Destination        LatLng
	DestinationAddress string
	Stops              []Stop

	PlannedDistanceM   float64
	TravelledDistanceM float64
	PlannedTimeS       int64
	TravelledTimeS     int64
	LastLocation       *LatLng

	IsPhoneRequest bool

	Fare    Fare
	Payment Payment

	Rating        int
	RatingComment string

	CreatedAt   time.Time
	UpdatedAt   time.Time
	AssignedAt  time.Time
	ArrivedAt   time.Time
	StartedAt   time.Time
	CompletedAt time.Time

	// Audit fields are overwritten on every mutation, not accumulated.
	LastActor  ActorRole
	LastAction string
}

// IsTerminal reports whether the trip can no longer progress. completed
// is not terminal: payment outcomes (payment_failed, refunded) can still
// move it.
func (t *Trip) IsTerminal() bool {
	return len(AllowedTransitions[t.Status]) == 0
}

// IsCancellation reports whether a status is one of the cancellation
// outcomes that close a trip without completion.
func IsCancellation(s TripStatus) bool {
	switch s {
	case TripStatusCancelled, TripStatusCancelledByPassenger,
		TripStatusCancelledByDriver, TripStatusCancelledWithPenalty,
		TripStatusNoShow:
		return true
	}
	return false
}

// ClosesTrip reports whether entering this status stamps CompletedAt and
// deactivates any shared trip links.
func ClosesTrip(s TripStatus) bool {
	return s == TripStatusCompleted || IsCancellation(s)
}
