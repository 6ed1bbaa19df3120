package tests

import (
	"context"
	"testing"
	"time"

	"taxipro/internal/domain"
	"taxipro/internal/service"
	"taxipro/internal/triperr"
)

var (
	originLoc      = domain.LatLng{Lat: 52.5200, Lng: 13.4050}
	destinationLoc = domain.LatLng{Lat: 52.5300, Lng: 13.4050}
	// ~78m from the origin, inside the default 150m geofence.
	nearOrigin = domain.LatLng{Lat: 52.5207, Lng: 13.4050}
	// ~560m from the origin, outside the geofence.
	farFromOrigin = domain.LatLng{Lat: 52.5250, Lng: 13.4050}
)

// tripFixture bundles a TripService wired over in-memory mocks.
type tripFixture struct {
	uow       *MockUnitOfWork
	tariffs   *MockTariffRepository
	messages  *MockMessageRepository
	auditRepo *MockAuditRepository
	notifier  *MockNotifier
	locations *MockLocationStore
	gateway   *MockPaymentGateway
	payments  *service.PaymentService
	svc       *service.TripService
}

func newTripFixture() *tripFixture {
	f := &tripFixture{
		uow:       NewMockUnitOfWork(),
		tariffs:   NewMockTariffRepository(),
		messages:  NewMockMessageRepository(),
		auditRepo: NewMockAuditRepository(),
		notifier:  NewMockNotifier(),
		locations: NewMockLocationStore(),
		gateway:   NewMockPaymentGateway(),
	}
	audit := service.NewAuditLogger(f.auditRepo)
	f.payments = service.NewPaymentService(f.uow, f.uow.Passengers, f.gateway, audit)
	f.svc = service.NewTripService(f.uow, f.uow.Trips, f.tariffs, f.messages,
		f.payments, audit, f.notifier, f.locations, 150)
	return f
}

func seedTrip(f *tripFixture, status domain.TripStatus) *domain.Trip {
	trip := &domain.Trip{
		ID:               "trip-1",
		PassengerID:      "passenger-1",
		DriverID:         "driver-1",
		Status:           status,
		Origin:           originLoc,
		Destination:      destinationLoc,
		PlannedDistanceM: 10000,
		CreatedAt:        time.Now().Add(-time.Hour),
		UpdatedAt:        time.Now().Add(-time.Minute),
	}
	if status == domain.TripStatusActive || status == domain.TripStatusCompleted {
		trip.StartedAt = time.Now().Add(-20 * time.Minute)
		loc := originLoc
		trip.LastLocation = &loc
	}
	f.uow.Trips.AddTrip(trip)
	return trip
}

func statusPtr(s domain.TripStatus) *domain.TripStatus { return &s }

func TestActivationRequiresOriginGeofence(t *testing.T) {
	f := newTripFixture()
	seedTrip(f, domain.TripStatusArrived)
	ctx := context.Background()
	driver := domain.Actor{ID: "driver-1", Role: domain.ActorDriver}

	_, err := f.svc.UpdateTrip(ctx, "trip-1", driver, service.UpdateTripRequest{
		NewStatus:       statusPtr(domain.TripStatusActive),
		CurrentLocation: &farFromOrigin,
	})
	if triperr.KindOf(err) != triperr.FailedPrecondition {
		t.Fatalf("expected failed-precondition, got %v", err)
	}
	if got := f.uow.Trips.GetTrip("trip-1").Status; got != domain.TripStatusArrived {
		t.Errorf("status mutated on rejected update: %s", got)
	}

	// Missing telemetry must behave like being outside the fence.
	_, err = f.svc.UpdateTrip(ctx, "trip-1", driver, service.UpdateTripRequest{
		NewStatus: statusPtr(domain.TripStatusActive),
	})
	if triperr.KindOf(err) != triperr.FailedPrecondition {
		t.Fatalf("expected failed-precondition for missing location, got %v", err)
	}

	trip, err := f.svc.UpdateTrip(ctx, "trip-1", driver, service.UpdateTripRequest{
		NewStatus:       statusPtr(domain.TripStatusActive),
		CurrentLocation: &nearOrigin,
	})
	if err != nil {
		t.Fatalf("activation within geofence failed: %v", err)
	}
	if trip.Status != domain.TripStatusActive {
		t.Errorf("status = %s, want active", trip.Status)
	}
	if trip.StartedAt.IsZero() {
		t.Error("StartedAt not stamped on activation")
	}
}

func TestIllegalTransitionRejected(t *testing.T) {
	f := newTripFixture()
	seedTrip(f, domain.TripStatusPending)
	ctx := context.Background()

	_, err := f.svc.UpdateTrip(ctx, "trip-1", domain.Actor{ID: "driver-1", Role: domain.ActorDriver},
		service.UpdateTripRequest{
			NewStatus:       statusPtr(domain.TripStatusActive),
			CurrentLocation: &nearOrigin,
		})
	if triperr.KindOf(err) != triperr.FailedPrecondition {
		t.Fatalf("expected failed-precondition, got %v", err)
	}
	if got := f.uow.Trips.GetTrip("trip-1").Status; got != domain.TripStatusPending {
		t.Errorf("status mutated on illegal transition: %s", got)
	}
}

func TestUnknownStatusRejected(t *testing.T) {
	f := newTripFixture()
	seedTrip(f, domain.TripStatusActive)

	_, err := f.svc.UpdateTrip(context.Background(), "trip-1",
		domain.Actor{ID: "driver-1", Role: domain.ActorDriver},
		service.UpdateTripRequest{NewStatus: statusPtr("warp")})
	if triperr.KindOf(err) != triperr.InvalidArgument {
		t.Fatalf("expected invalid-argument, got %v", err)
	}
}

func TestNonPartyActorRejected(t *testing.T) {
	f := newTripFixture()
	seedTrip(f, domain.TripStatusActive)

	_, err := f.svc.UpdateTrip(context.Background(), "trip-1",
		domain.Actor{ID: "driver-99", Role: domain.ActorDriver},
		service.UpdateTripRequest{CurrentLocation: &nearOrigin})
	if triperr.KindOf(err) != triperr.PermissionDenied {
		t.Fatalf("expected permission-denied, got %v", err)
	}
}

func TestMeterAccruesDistanceAndMirrorsLocation(t *testing.T) {
	f := newTripFixture()
	seedTrip(f, domain.TripStatusActive)
	ctx := context.Background()
	driver := domain.Actor{ID: "driver-1", Role: domain.ActorDriver}

	trip, err := f.svc.UpdateTrip(ctx, "trip-1", driver, service.UpdateTripRequest{
		CurrentLocation: &nearOrigin,
	})
	if err != nil {
		t.Fatalf("meter tick failed: %v", err)
	}
	if trip.TravelledDistanceM < 70 || trip.TravelledDistanceM > 90 {
		t.Errorf("TravelledDistanceM = %.1f, want ~78", trip.TravelledDistanceM)
	}
	if trip.LastLocation == nil || trip.LastLocation.Lat != nearOrigin.Lat {
		t.Error("LastLocation not advanced")
	}

	mirrored, _ := f.locations.GetLocation(ctx, "driver-1")
	if mirrored == nil || mirrored.Lat != nearOrigin.Lat {
		t.Error("driver position not mirrored to location store")
	}

	// A second tick from the same point accrues nothing.
	trip2, err := f.svc.UpdateTrip(ctx, "trip-1", driver, service.UpdateTripRequest{
		CurrentLocation: &nearOrigin,
	})
	if err != nil {
		t.Fatalf("second tick failed: %v", err)
	}
	if trip2.TravelledDistanceM-trip.TravelledDistanceM > 0.5 {
		t.Errorf("distance accrued without movement: %.2f", trip2.TravelledDistanceM-trip.TravelledDistanceM)
	}
}

func TestMeterDoesNotAccrueOutsideActive(t *testing.T) {
	f := newTripFixture()
	seedTrip(f, domain.TripStatusAssigned)

	trip, err := f.svc.UpdateTrip(context.Background(), "trip-1",
		domain.Actor{ID: "driver-1", Role: domain.ActorDriver},
		service.UpdateTripRequest{CurrentLocation: &nearOrigin})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if trip.TravelledDistanceM != 0 {
		t.Errorf("distance accrued while assigned: %.1f", trip.TravelledDistanceM)
	}
}

func TestCompletionSettlesFareAndCharges(t *testing.T) {
	f := newTripFixture()
	trip := seedTrip(f, domain.TripStatusActive)
	trip.TravelledDistanceM = 10000
	f.uow.Passengers.AddPassenger(&domain.Passenger{
		ID:                   "passenger-1",
		StripeCustomerID:     "cus_1",
		DefaultPaymentMethod: "pm_1",
	})
	ctx := context.Background()

	atDest := destinationLoc
	updated, err := f.svc.UpdateTrip(ctx, "trip-1",
		domain.Actor{ID: "driver-1", Role: domain.ActorDriver},
		service.UpdateTripRequest{
			NewStatus:       statusPtr(domain.TripStatusCompleted),
			CurrentLocation: &atDest,
		})
	if err != nil {
		t.Fatalf("completion failed: %v", err)
	}

	if updated.Status != domain.TripStatusCompleted {
		t.Fatalf("status = %s, want completed", updated.Status)
	}
	if updated.CompletedAt.IsZero() {
		t.Error("CompletedAt not stamped")
	}

	// base 5000 + ~1200s*(200/60)=~4000. The completing update also ticks
	// the meter from the origin to the destination (~1112m), so the
	// distance component covers ~11.1km at 1500/km.
	if updated.Fare.Base != 5000 {
		t.Errorf("Base = %d, want 5000", updated.Fare.Base)
	}
	if updated.Fare.Time < 3990 || updated.Fare.Time > 4020 {
		t.Errorf("Time = %d, want ~4000", updated.Fare.Time)
	}
	if updated.Fare.Distance < 16500 || updated.Fare.Distance > 16800 {
		t.Errorf("Distance = %d, want ~16670", updated.Fare.Distance)
	}
	wantTotal := updated.Fare.Base + updated.Fare.Time + updated.Fare.Distance
	if updated.Fare.Total != wantTotal {
		t.Errorf("Total = %d, want %d", updated.Fare.Total, wantTotal)
	}

	// Post-commit capture against the stored card.
	if got := f.gateway.CreateIntentCallCount; got != 1 {
		t.Errorf("gateway calls = %d, want 1", got)
	}
	intents := f.gateway.Intents()
	if len(intents) == 1 && intents[0].IdempotencyKey != "trip:trip-1" {
		t.Errorf("idempotency key = %s, want trip:trip-1", intents[0].IdempotencyKey)
	}
	stored := f.uow.Trips.GetTrip("trip-1")
	if stored.Payment.Method != domain.PaymentMethodStripe || !stored.Payment.Settled {
		t.Errorf("payment not recorded: %+v", stored.Payment)
	}

	if len(f.notifier.Sent()) == 0 {
		t.Error("completion notification not sent")
	}
	if len(f.auditRepo.Entries()) == 0 {
		t.Error("audit entry not appended")
	}
}

func TestCompletionRequiresDestinationGeofence(t *testing.T) {
	f := newTripFixture()
	seedTrip(f, domain.TripStatusActive)

	_, err := f.svc.UpdateTrip(context.Background(), "trip-1",
		domain.Actor{ID: "driver-1", Role: domain.ActorDriver},
		service.UpdateTripRequest{
			NewStatus:       statusPtr(domain.TripStatusCompleted),
			CurrentLocation: &nearOrigin,
		})
	if triperr.KindOf(err) != triperr.FailedPrecondition {
		t.Fatalf("expected failed-precondition, got %v", err)
	}
}

func TestCompletionWithoutCardIsCashSettlement(t *testing.T) {
	f := newTripFixture()
	trip := seedTrip(f, domain.TripStatusActive)
	trip.TravelledDistanceM = 5000
	f.uow.Passengers.AddPassenger(&domain.Passenger{ID: "passenger-1"})

	atDest := destinationLoc
	_, err := f.svc.UpdateTrip(context.Background(), "trip-1",
		domain.Actor{ID: "driver-1", Role: domain.ActorDriver},
		service.UpdateTripRequest{
			NewStatus:       statusPtr(domain.TripStatusCompleted),
			CurrentLocation: &atDest,
		})
	if err != nil {
		t.Fatalf("completion failed: %v", err)
	}
	if got := f.gateway.CreateIntentCallCount; got != 0 {
		t.Errorf("gateway called %d times for cardless passenger", got)
	}
}

func TestDestinationChangeSurcharge(t *testing.T) {
	f := newTripFixture()
	trip := seedTrip(f, domain.TripStatusActive)
	trip.TravelledDistanceM = 7000 // 70% of planned, past the threshold
	ctx := context.Background()
	driver := domain.Actor{ID: "driver-1", Role: domain.ActorDriver}

	newDest := domain.LatLng{Lat: 52.5400, Lng: 13.4200}
	updated, err := f.svc.UpdateTrip(ctx, "trip-1", driver, service.UpdateTripRequest{
		NewDestination: &service.DestinationChange{Location: newDest, Address: "New Place 1"},
	})
	if err != nil {
		t.Fatalf("destination change failed: %v", err)
	}
	if updated.Fare.Surcharges != 2000 {
		t.Errorf("Surcharges = %d, want 2000", updated.Fare.Surcharges)
	}
	if updated.Destination.Lat != newDest.Lat {
		t.Error("destination not replaced")
	}
}

func TestEarlyDestinationChangeIsFree(t *testing.T) {
	f := newTripFixture()
	trip := seedTrip(f, domain.TripStatusActive)
	trip.TravelledDistanceM = 2000 // 20% of planned

	updated, err := f.svc.UpdateTrip(context.Background(), "trip-1",
		domain.Actor{ID: "passenger-1", Role: domain.ActorPassenger},
		service.UpdateTripRequest{
			NewDestination: &service.DestinationChange{
				Location: domain.LatLng{Lat: 52.5400, Lng: 13.4200},
			},
		})
	if err != nil {
		t.Fatalf("destination change failed: %v", err)
	}
	if updated.Fare.Surcharges != 0 {
		t.Errorf("Surcharges = %d, want 0", updated.Fare.Surcharges)
	}
}

func TestAddStopChargesStopFare(t *testing.T) {
	f := newTripFixture()
	seedTrip(f, domain.TripStatusActive)

	updated, err := f.svc.UpdateTrip(context.Background(), "trip-1",
		domain.Actor{ID: "passenger-1", Role: domain.ActorPassenger},
		service.UpdateTripRequest{
			NewStop: &service.StopRequest{
				Location: domain.LatLng{Lat: 52.5250, Lng: 13.4100},
				Address:  "Bakery",
			},
		})
	if err != nil {
		t.Fatalf("adding stop failed: %v", err)
	}
	if len(updated.Stops) != 1 {
		t.Fatalf("stops = %d, want 1", len(updated.Stops))
	}
	if updated.Fare.Stops != 1000 {
		t.Errorf("stop fare = %d, want 1000", updated.Fare.Stops)
	}
}

func TestCompletionDeactivatesSharedLinks(t *testing.T) {
	f := newTripFixture()
	trip := seedTrip(f, domain.TripStatusActive)
	trip.TravelledDistanceM = 1000
	f.uow.Links.AddLink(&domain.SharedTripLink{
		Token:     "tok-1",
		TripID:    "trip-1",
		Active:    true,
		ExpiresAt: time.Now().Add(time.Hour),
	})

	atDest := destinationLoc
	_, err := f.svc.UpdateTrip(context.Background(), "trip-1",
		domain.Actor{ID: "driver-1", Role: domain.ActorDriver},
		service.UpdateTripRequest{
			NewStatus:       statusPtr(domain.TripStatusCompleted),
			CurrentLocation: &atDest,
		})
	if err != nil {
		t.Fatalf("completion failed: %v", err)
	}
	if f.uow.Links.GetLink("tok-1").Active {
		t.Error("shared link still active after trip closed")
	}
}

func TestRateTrip(t *testing.T) {
	f := newTripFixture()
	seedTrip(f, domain.TripStatusCompleted)
	ctx := context.Background()
	passenger := domain.Actor{ID: "passenger-1", Role: domain.ActorPassenger}

	trip, err := f.svc.RateTrip(ctx, "trip-1", passenger, 4, "smooth ride")
	if err != nil {
		t.Fatalf("rating failed: %v", err)
	}
	if trip.Rating != 4 || trip.RatingComment != "smooth ride" {
		t.Errorf("rating not stored: %d %q", trip.Rating, trip.RatingComment)
	}

	// Rating twice conflicts.
	_, err = f.svc.RateTrip(ctx, "trip-1", passenger, 5, "")
	if triperr.KindOf(err) != triperr.AlreadyExists {
		t.Fatalf("expected already-exists, got %v", err)
	}
}

func TestRateTripValidation(t *testing.T) {
	f := newTripFixture()
	seedTrip(f, domain.TripStatusCompleted)
	ctx := context.Background()

	if _, err := f.svc.RateTrip(ctx, "trip-1", domain.Actor{ID: "passenger-1", Role: domain.ActorPassenger}, 6, ""); triperr.KindOf(err) != triperr.InvalidArgument {
		t.Errorf("stars=6: expected invalid-argument, got %v", err)
	}
	if _, err := f.svc.RateTrip(ctx, "trip-1", domain.Actor{ID: "driver-1", Role: domain.ActorDriver}, 3, ""); triperr.KindOf(err) != triperr.PermissionDenied {
		t.Errorf("driver rating: expected permission-denied, got %v", err)
	}
}

func TestRateTripRequiresCompletion(t *testing.T) {
	f := newTripFixture()
	seedTrip(f, domain.TripStatusActive)

	_, err := f.svc.RateTrip(context.Background(), "trip-1",
		domain.Actor{ID: "passenger-1", Role: domain.ActorPassenger}, 5, "")
	if triperr.KindOf(err) != triperr.FailedPrecondition {
		t.Fatalf("expected failed-precondition, got %v", err)
	}
}

func TestSendMessage(t *testing.T) {
	f := newTripFixture()
	trip := seedTrip(f, domain.TripStatusArrived)
	trip.ArrivedAt = time.Now().Add(-time.Minute)
	ctx := context.Background()

	msg, err := f.svc.SendMessage(ctx, "trip-1",
		domain.Actor{ID: "driver-1", Role: domain.ActorDriver}, "I am at the entrance")
	if err != nil {
		t.Fatalf("sending message failed: %v", err)
	}
	if msg.TripID != "trip-1" || msg.Role != domain.ActorDriver {
		t.Errorf("message misattributed: %+v", msg)
	}

	has, err := f.messages.HasDriverMessageSince(ctx, "trip-1", "driver-1", trip.ArrivedAt)
	if err != nil || !has {
		t.Errorf("driver message not recorded as anti-fraud signal: %v %v", has, err)
	}

	if _, err := f.svc.SendMessage(ctx, "trip-1", domain.Actor{ID: "stranger", Role: domain.ActorPassenger}, "hi"); triperr.KindOf(err) != triperr.PermissionDenied {
		t.Errorf("non-party message: expected permission-denied, got %v", err)
	}
}

func TestGetTripNotFound(t *testing.T) {
	f := newTripFixture()

	_, err := f.svc.GetTrip(context.Background(), "missing")
	if triperr.KindOf(err) != triperr.NotFound {
		t.Fatalf("expected not-found, got %v", err)
	}
}
