package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"taxipro/internal/domain"
	"taxipro/internal/fare"
	"taxipro/internal/geo"
	"taxipro/internal/redis"
	"taxipro/internal/repository"
	"taxipro/internal/triperr"
)

// lateChangeProgressThreshold is the travelled/planned distance ratio
// past which a destination change incurs the anti-abuse surcharge.
const lateChangeProgressThreshold = 0.6

// TripService is the trip status orchestrator. Every update is
// re-validated against the persisted trip and committed as one atomic
// unit; an illegal request mutates nothing.
type TripService struct {
	uow           repository.UnitOfWork
	tripRepo      repository.TripRepository
	tariffRepo    repository.TariffRepository
	messageRepo   repository.MessageRepository
	payments      *PaymentService
	audit         *AuditLogger
	notifier      Notifier
	locationStore redis.LocationStoreInterface

	arrivalRadiusM float64
}

// NewTripService creates a new TripService.
func NewTripService(
	uow repository.UnitOfWork,
	tripRepo repository.TripRepository,
	tariffRepo repository.TariffRepository,
	messageRepo repository.MessageRepository,
	payments *PaymentService,
	audit *AuditLogger,
	notifier Notifier,
	locationStore redis.LocationStoreInterface,
	arrivalRadiusM float64,
) *TripService {
	if arrivalRadiusM <= 0 {
		arrivalRadiusM = geo.DefaultArrivalRadiusM
	}
	return &TripService{
		uow:            uow,
		tripRepo:       tripRepo,
		tariffRepo:     tariffRepo,
		messageRepo:    messageRepo,
		payments:       payments,
		audit:          audit,
		notifier:       notifier,
		locationStore:  locationStore,
		arrivalRadiusM: arrivalRadiusM,
	}
}

// DestinationChange replaces the trip's destination mid-ride.
type DestinationChange struct {
	Location domain.LatLng
	Address  string
}

// StopRequest appends an extra stop to the trip.
type StopRequest struct {
	Location domain.LatLng
	Address  string
}

// UpdateTripRequest contains the optional mutations of one update call.
type UpdateTripRequest struct {
	NewStatus       *domain.TripStatus
	CurrentLocation *domain.LatLng
	NewDestination  *DestinationChange
	NewStop         *StopRequest
}

// UpdateTrip applies an update request to one trip. All resulting writes
// commit atomically; validation failures are raised before any write.
func (s *TripService) UpdateTrip(ctx context.Context, tripID string, actor domain.Actor, req UpdateTripRequest) (*domain.Trip, error) {
	if tripID == "" {
		return nil, triperr.New(triperr.InvalidArgument, "trip id is required")
	}
	if req.NewStatus != nil && !domain.ValidStatus(*req.NewStatus) {
		return nil, triperr.Newf(triperr.InvalidArgument, "unknown status %q", *req.NewStatus)
	}

	// The tariff is needed for surcharges, stop charges and settlement.
	var tariff *domain.Tariff
	if req.NewDestination != nil || req.NewStop != nil ||
		(req.NewStatus != nil && *req.NewStatus == domain.TripStatusCompleted) {
		var err error
		tariff, err = s.tariffRepo.GetActive(ctx)
		if err != nil {
			return nil, triperr.Wrap(triperr.FailedPrecondition, "no active tariff", err)
		}
	}

	var updated *domain.Trip
	err := s.uow.Execute(ctx, func(tx repository.RepoSet) error {
		trip, err := tx.Trips.GetForUpdate(ctx, tripID)
		if err != nil {
			return translateRepoErr(err, "trip not found")
		}

		if err := requireParty(actor, trip); err != nil {
			return err
		}

		// Geofence gates: activating requires presence at the origin,
		// completing requires presence at the destination.
		if req.NewStatus != nil {
			switch *req.NewStatus {
			case domain.TripStatusActive:
				if !geo.WithinGeofence(req.CurrentLocation, trip.Origin, s.arrivalRadiusM) {
					return triperr.New(triperr.FailedPrecondition, "Driver is not within the origin geofence")
				}
			case domain.TripStatusCompleted:
				if !geo.WithinGeofence(req.CurrentLocation, trip.Destination, s.arrivalRadiusM) {
					return triperr.New(triperr.FailedPrecondition, "Driver is not within the destination geofence")
				}
			}
		}

		now := time.Now()
		var actions []string

		if req.NewDestination != nil {
			progress := 0.0
			if trip.PlannedDistanceM > 0 {
				progress = trip.TravelledDistanceM / trip.PlannedDistanceM
			}
			trip.Destination = req.NewDestination.Location
			trip.DestinationAddress = req.NewDestination.Address
			if progress > lateChangeProgressThreshold {
				trip.Fare.Surcharges += tariff.DestinationChangeSurcharge
				actions = append(actions, "changed destination (late-change surcharge)")
			} else {
				actions = append(actions, "changed destination")
			}
		}

		if req.NewStop != nil {
			trip.Stops = append(trip.Stops, domain.Stop{
				Location: req.NewStop.Location,
				Address:  req.NewStop.Address,
				AddedAt:  now,
			})
			trip.Fare.Stops += tariff.StopCharge
			actions = append(actions, "added stop")
		}

		// Live taxi-meter tick: accrue distance from the last known
		// location while the trip is underway.
		if req.CurrentLocation != nil && trip.Status == domain.TripStatusActive {
			if trip.LastLocation != nil {
				trip.TravelledDistanceM += geo.DistanceMeters(*trip.LastLocation, *req.CurrentLocation)
			}
			loc := *req.CurrentLocation
			trip.LastLocation = &loc
			if !trip.StartedAt.IsZero() {
				trip.TravelledTimeS = int64(now.Sub(trip.StartedAt).Seconds())
			}
			actions = append(actions, "meter tick")
		}

		if req.NewStatus != nil {
			newStatus := *req.NewStatus
			if !domain.CanTransition(trip.Status, newStatus) {
				return triperr.Newf(triperr.FailedPrecondition,
					"illegal transition from %s to %s", trip.Status, newStatus)
			}

			if newStatus == domain.TripStatusActive && trip.StartedAt.IsZero() {
				trip.StartedAt = now
			}

			if domain.ClosesTrip(newStatus) {
				trip.CompletedAt = now
				if err := tx.Links.DeactivateByTripID(ctx, trip.ID); err != nil {
					return triperr.Wrap(triperr.Internal, "deactivating shared links failed", err)
				}
			}

			if newStatus == domain.TripStatusCompleted {
				s.settle(trip, tariff)
			}

			trip.Status = newStatus
			actions = append(actions, "status changed to "+string(newStatus))
		}

		trip.UpdatedAt = now
		trip.LastActor = actor.Role
		if len(actions) > 0 {
			trip.LastAction = strings.Join(actions, "; ")
		} else {
			trip.LastAction = "no-op update"
		}

		if err := tx.Trips.Update(ctx, trip); err != nil {
			return translateRepoErr(err, "trip not found")
		}

		updated = trip
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Post-commit side effects are best-effort and never fail the update.
	s.audit.Log(ctx, updated.ID, actor, updated.LastAction)

	if req.CurrentLocation != nil && updated.DriverID != "" && s.locationStore != nil {
		if err := s.locationStore.UpdateLocation(ctx, updated.DriverID, *req.CurrentLocation); err != nil {
			log.Printf("location mirror failed for trip %s: %v", updated.ID, err)
		}
	}

	if req.NewStatus != nil && *req.NewStatus == domain.TripStatusCompleted {
		s.captureFare(ctx, updated)
		if s.notifier != nil {
			_ = s.notifier.Notify(ctx, updated.PassengerID, "Trip Completed",
				fmt.Sprintf("Your trip has ended. Total fare: %s",
					notifyFare(updated.Fare.Total, updated.Fare.Currency)))
		}
	}

	return updated, nil
}

// settle recomputes the final fare from the actual travelled distance
// and elapsed time. Called exactly once, at the transition into completed.
func (s *TripService) settle(trip *domain.Trip, tariff *domain.Tariff) {
	elapsed := trip.CompletedAt.Sub(trip.StartedAt)
	trip.TravelledTimeS = int64(elapsed.Seconds())

	settlement := fare.Settle(tariff, trip.TravelledDistanceM, elapsed,
		trip.IsPhoneRequest, trip.StartedAt,
		trip.Fare.Stops, trip.Fare.Surcharges, trip.Fare.Penalty)

	trip.Fare.Base = settlement.Base
	trip.Fare.Time = settlement.Time
	trip.Fare.Distance = settlement.Distance
	trip.Fare.Total = settlement.Total
	trip.Fare.Currency = tariff.Currency
}

// captureFare attempts to charge the settled fare against the
// passenger's stored card. Failures are left for the webhook path and
// never fail the completion.
func (s *TripService) captureFare(ctx context.Context, trip *domain.Trip) {
	if s.payments == nil {
		return
	}

	intent, err := s.payments.ChargeTripFare(ctx, trip)
	if err != nil {
		log.Printf("fare capture failed for trip %s: %v", trip.ID, err)
		return
	}
	if intent == nil {
		return
	}

	err = s.uow.Execute(ctx, func(tx repository.RepoSet) error {
		fresh, err := tx.Trips.GetForUpdate(ctx, trip.ID)
		if err != nil {
			return err
		}
		fresh.Payment.Method = domain.PaymentMethodStripe
		fresh.Payment.TransactionID = intent.ID
		fresh.Payment.Settled = intent.Status == IntentStatusSucceeded
		fresh.UpdatedAt = time.Now()
		fresh.LastActor = domain.ActorSystem
		fresh.LastAction = "fare capture " + string(intent.Status)
		return tx.Trips.Update(ctx, fresh)
	})
	if err != nil {
		log.Printf("recording fare capture failed for trip %s: %v", trip.ID, err)
	}

	trip.Payment.Method = domain.PaymentMethodStripe
	trip.Payment.TransactionID = intent.ID
	trip.Payment.Settled = intent.Status == IntentStatusSucceeded
}

// GetTrip retrieves a trip by ID.
func (s *TripService) GetTrip(ctx context.Context, tripID string) (*domain.Trip, error) {
	if tripID == "" {
		return nil, triperr.New(triperr.InvalidArgument, "trip id is required")
	}

	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, translateRepoErr(err, "trip not found")
	}
	return trip, nil
}

// RateTrip records the passenger's rating for a completed trip.
func (s *TripService) RateTrip(ctx context.Context, tripID string, actor domain.Actor, stars int, comment string) (*domain.Trip, error) {
	if stars < 1 || stars > 5 {
		return nil, triperr.New(triperr.InvalidArgument, "rating must be between 1 and 5")
	}

	var updated *domain.Trip
	err := s.uow.Execute(ctx, func(tx repository.RepoSet) error {
		trip, err := tx.Trips.GetForUpdate(ctx, tripID)
		if err != nil {
			return translateRepoErr(err, "trip not found")
		}

		if actor.Role != domain.ActorPassenger || actor.ID != trip.PassengerID {
			return triperr.New(triperr.PermissionDenied, "only the trip's passenger may rate it")
		}
		if trip.Status != domain.TripStatusCompleted {
			return triperr.New(triperr.FailedPrecondition, "trip is not completed")
		}
		if trip.Rating != 0 {
			return triperr.New(triperr.AlreadyExists, "trip already rated")
		}

		trip.Rating = stars
		trip.RatingComment = comment
		trip.UpdatedAt = time.Now()
		trip.LastActor = actor.Role
		trip.LastAction = fmt.Sprintf("rated %d stars", stars)

		updated = trip
		return tx.Trips.Update(ctx, trip)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Log(ctx, updated.ID, actor, updated.LastAction)
	return updated, nil
}

// SendMessage records an in-trip chat message. Driver messages after
// arrival are the anti-fraud signal required for no-show penalties.
func (s *TripService) SendMessage(ctx context.Context, tripID string, actor domain.Actor, body string) (*domain.Message, error) {
	if strings.TrimSpace(body) == "" {
		return nil, triperr.New(triperr.InvalidArgument, "message body is required")
	}

	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, translateRepoErr(err, "trip not found")
	}
	if err := requireParty(actor, trip); err != nil {
		return nil, err
	}

	msg := &domain.Message{
		ID:        uuid.New().String(),
		TripID:    trip.ID,
		SenderID:  actor.ID,
		Role:      actor.Role,
		Body:      body,
		CreatedAt: time.Now(),
	}
	if err := s.messageRepo.Create(ctx, msg); err != nil {
		return nil, triperr.Wrap(triperr.Internal, "storing message failed", err)
	}

	return msg, nil
}

// requireParty rejects actors that are not a party to the trip. System
// and admin actors are always allowed.
func requireParty(actor domain.Actor, trip *domain.Trip) error {
	switch actor.Role {
	case domain.ActorSystem, domain.ActorAdmin:
		return nil
	case domain.ActorPassenger:
		if actor.ID == trip.PassengerID {
			return nil
		}
	case domain.ActorDriver:
		if trip.DriverID != "" && actor.ID == trip.DriverID {
			return nil
		}
	}
	return triperr.New(triperr.PermissionDenied, "actor is not a party to this trip")
}
