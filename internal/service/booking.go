package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"taxipro/internal/domain"
	"taxipro/internal/fare"
	"taxipro/internal/geo"
	"taxipro/internal/repository"
	"taxipro/internal/triperr"
)

// BookingService handles trip creation and the driver-side acceptance
// and arrival steps.
type BookingService struct {
	uow        repository.UnitOfWork
	tripRepo   repository.TripRepository
	tariffRepo repository.TariffRepository
	driverRepo repository.DriverRepository
	audit      *AuditLogger
	notifier   Notifier

	arrivalRadiusM float64
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	uow repository.UnitOfWork,
	tripRepo repository.TripRepository,
	tariffRepo repository.TariffRepository,
	driverRepo repository.DriverRepository,
	audit *AuditLogger,
	notifier Notifier,
	arrivalRadiusM float64,
) *BookingService {
	if arrivalRadiusM <= 0 {
		arrivalRadiusM = geo.DefaultArrivalRadiusM
	}
	return &BookingService{
		uow:            uow,
		tripRepo:       tripRepo,
		tariffRepo:     tariffRepo,
		driverRepo:     driverRepo,
		audit:          audit,
		notifier:       notifier,
		arrivalRadiusM: arrivalRadiusM,
	}
}

// RequestTripRequest contains the parameters for requesting a trip.
type RequestTripRequest struct {
	Origin              domain.LatLng
	OriginAddress       string
	Destination         domain.LatLng
	DestinationAddress  string
	EstimatedDistanceKm float64
	EstimatedTimeS      int64
	IsPhoneRequest      bool
}

// RequestTripResponse contains the created trip and its quoted fare.
type RequestTripResponse struct {
	Trip      *domain.Trip
	TotalFare int64
}

// RequestTrip creates a new trip in pending status with a fare quote.
// App requests are quoted with the stepped advance model; phone requests
// use the flat per-km path.
func (s *BookingService) RequestTrip(ctx context.Context, passenger domain.Actor, req RequestTripRequest) (*RequestTripResponse, error) {
	if passenger.Role != domain.ActorPassenger {
		return nil, triperr.New(triperr.PermissionDenied, "only passengers may request trips")
	}
	if err := validateCoordinates(req.Origin); err != nil {
		return nil, triperr.Wrap(triperr.InvalidArgument, "invalid origin", err)
	}
	if err := validateCoordinates(req.Destination); err != nil {
		return nil, triperr.Wrap(triperr.InvalidArgument, "invalid destination", err)
	}
	if req.EstimatedDistanceKm <= 0 {
		return nil, triperr.New(triperr.InvalidArgument, "estimated distance must be positive")
	}

	open, err := s.tripRepo.GetOpenByPassengerID(ctx, passenger.ID)
	if err != nil {
		return nil, triperr.Wrap(triperr.Internal, "open trip lookup failed", err)
	}
	if open != nil {
		return nil, triperr.New(triperr.FailedPrecondition, "passenger already has a trip in progress")
	}

	tariff, err := s.tariffRepo.GetActive(ctx)
	if err != nil {
		return nil, triperr.Wrap(triperr.FailedPrecondition, "no active tariff", err)
	}

	now := time.Now()
	distanceM := req.EstimatedDistanceKm * 1000
	duration := time.Duration(req.EstimatedTimeS) * time.Second

	var quote int64
	if req.IsPhoneRequest {
		quote = fare.FlatPerKmFare(tariff, req.EstimatedDistanceKm, true, now)
	} else {
		quote = fare.SteppedAdvanceFare(tariff, distanceM, duration, false, now)
	}

	trip := &domain.Trip{
		ID:                 uuid.New().String(),
		PassengerID:        passenger.ID,
		Status:             domain.TripStatusPending,
		Origin:             req.Origin,
		OriginAddress:      req.OriginAddress,
		Destination:        req.Destination,
		DestinationAddress: req.DestinationAddress,
		PlannedDistanceM:   distanceM,
		PlannedTimeS:       req.EstimatedTimeS,
		IsPhoneRequest:     req.IsPhoneRequest,
		Fare: domain.Fare{
			Total:    quote,
			Currency: tariff.Currency,
		},
		CreatedAt:  now,
		UpdatedAt:  now,
		LastActor:  passenger.Role,
		LastAction: "trip requested",
	}

	if err := s.tripRepo.Create(ctx, trip); err != nil {
		return nil, triperr.Wrap(triperr.Internal, "creating trip failed", err)
	}

	s.audit.Log(ctx, trip.ID, passenger, "trip requested")

	return &RequestTripResponse{Trip: trip, TotalFare: quote}, nil
}

// AcceptTrip assigns a driver to a pending trip. The driver must hold an
// active or trial subscription.
func (s *BookingService) AcceptTrip(ctx context.Context, driver domain.Actor, tripID string) (*domain.Trip, error) {
	if driver.Role != domain.ActorDriver {
		return nil, triperr.New(triperr.PermissionDenied, "only drivers may accept trips")
	}

	d, err := s.driverRepo.GetByID(ctx, driver.ID)
	if err != nil {
		return nil, translateRepoErr(err, "driver not found")
	}
	if !d.CanAcceptTrips() {
		return nil, triperr.New(triperr.FailedPrecondition, "driver subscription is not active")
	}

	var updated *domain.Trip
	err = s.uow.Execute(ctx, func(tx repository.RepoSet) error {
		trip, err := tx.Trips.GetForUpdate(ctx, tripID)
		if err != nil {
			return translateRepoErr(err, "trip not found")
		}

		if !domain.CanTransition(trip.Status, domain.TripStatusAssigned) {
			return triperr.Newf(triperr.FailedPrecondition,
				"trip cannot be accepted from status %s", trip.Status)
		}

		now := time.Now()
		trip.DriverID = driver.ID
		trip.Status = domain.TripStatusAssigned
		trip.AssignedAt = now
		trip.UpdatedAt = now
		trip.LastActor = driver.Role
		trip.LastAction = "trip accepted"

		updated = trip
		return tx.Trips.Update(ctx, trip)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Log(ctx, updated.ID, driver, "trip accepted")
	if s.notifier != nil {
		_ = s.notifier.Notify(ctx, updated.PassengerID, "Driver Assigned",
			"A driver has been assigned to your trip")
	}

	return updated, nil
}

// DriverArrived marks the assigned driver as arrived at the origin.
// The reported location must be inside the arrival geofence.
func (s *BookingService) DriverArrived(ctx context.Context, driver domain.Actor, tripID string, location domain.LatLng) (*domain.Trip, error) {
	if driver.Role != domain.ActorDriver {
		return nil, triperr.New(triperr.PermissionDenied, "only drivers may report arrival")
	}

	var updated *domain.Trip
	err := s.uow.Execute(ctx, func(tx repository.RepoSet) error {
		trip, err := tx.Trips.GetForUpdate(ctx, tripID)
		if err != nil {
			return translateRepoErr(err, "trip not found")
		}

		if trip.DriverID != driver.ID {
			return triperr.New(triperr.PermissionDenied, "driver is not assigned to this trip")
		}
		if !domain.CanTransition(trip.Status, domain.TripStatusArrived) {
			return triperr.Newf(triperr.FailedPrecondition,
				"arrival cannot be reported from status %s", trip.Status)
		}
		if !geo.WithinGeofence(&location, trip.Origin, s.arrivalRadiusM) {
			return triperr.New(triperr.FailedPrecondition, "Driver is not within the origin geofence")
		}

		now := time.Now()
		trip.Status = domain.TripStatusArrived
		trip.ArrivedAt = now
		loc := location
		trip.LastLocation = &loc
		trip.UpdatedAt = now
		trip.LastActor = driver.Role
		trip.LastAction = "driver arrived"

		updated = trip
		return tx.Trips.Update(ctx, trip)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Log(ctx, updated.ID, driver, "driver arrived")
	if s.notifier != nil {
		_ = s.notifier.Notify(ctx, updated.PassengerID, "Driver Arrived",
			"Your driver is waiting at the pickup point")
	}

	return updated, nil
}

func validateCoordinates(p domain.LatLng) error {
	if p.Lat < -90 || p.Lat > 90 {
		return triperr.Newf(triperr.InvalidArgument, "latitude %f out of range", p.Lat)
	}
	if p.Lng < -180 || p.Lng > 180 {
		return triperr.Newf(triperr.InvalidArgument, "longitude %f out of range", p.Lng)
	}
	return nil
}
