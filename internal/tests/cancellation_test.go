package tests

import (
	"context"
	"testing"
	"time"

	"taxipro/internal/domain"
	"taxipro/internal/service"
	"taxipro/internal/triperr"
)

// cancelFixture bundles a CancellationService wired over in-memory mocks.
type cancelFixture struct {
	uow      *MockUnitOfWork
	tariffs  *MockTariffRepository
	messages *MockMessageRepository
	gateway  *MockPaymentGateway
	notifier *MockNotifier
	svc      *service.CancellationService
}

func newCancelFixture() *cancelFixture {
	f := &cancelFixture{
		uow:      NewMockUnitOfWork(),
		tariffs:  NewMockTariffRepository(),
		messages: NewMockMessageRepository(),
		gateway:  NewMockPaymentGateway(),
		notifier: NewMockNotifier(),
	}
	audit := service.NewAuditLogger(NewMockAuditRepository())
	payments := service.NewPaymentService(f.uow, f.uow.Passengers, f.gateway, audit)
	f.svc = service.NewCancellationService(f.uow, f.tariffs, f.messages,
		payments, audit, f.notifier, 5*time.Minute)
	return f
}

func seedArrivedTrip(f *cancelFixture, arrivedAgo time.Duration) *domain.Trip {
	trip := &domain.Trip{
		ID:          "trip-1",
		PassengerID: "passenger-1",
		DriverID:    "driver-1",
		Status:      domain.TripStatusArrived,
		ArrivedAt:   time.Now().Add(-arrivedAgo),
		UpdatedAt:   time.Now().Add(-arrivedAgo),
	}
	f.uow.Trips.AddTrip(trip)
	f.uow.Passengers.AddPassenger(&domain.Passenger{
		ID:                   "passenger-1",
		StripeCustomerID:     "cus_1",
		DefaultPaymentMethod: "pm_1",
	})
	return trip
}

func TestCancelWithinGraceIsFree(t *testing.T) {
	f := newCancelFixture()
	seedArrivedTrip(f, 2*time.Minute)

	result, err := f.svc.CancelTrip(context.Background(), "trip-1",
		domain.Actor{ID: "passenger-1", Role: domain.ActorPassenger})
	if err != nil {
		t.Fatalf("cancellation failed: %v", err)
	}
	if result.PenaltyApplied {
		t.Error("penalty applied within grace period")
	}
	if result.Trip.Status != domain.TripStatusCancelledByPassenger {
		t.Errorf("status = %s, want cancelled_by_passenger", result.Trip.Status)
	}
	if got := f.gateway.CreateIntentCallCount; got != 0 {
		t.Errorf("gateway called %d times for free cancellation", got)
	}
}

func TestCancelAfterGraceChargesPenalty(t *testing.T) {
	f := newCancelFixture()
	seedArrivedTrip(f, 10*time.Minute)

	result, err := f.svc.CancelTrip(context.Background(), "trip-1",
		domain.Actor{ID: "passenger-1", Role: domain.ActorPassenger})
	if err != nil {
		t.Fatalf("cancellation failed: %v", err)
	}
	if !result.PenaltyApplied {
		t.Fatal("penalty not applied after grace period")
	}
	if result.Trip.Status != domain.TripStatusCancelledWithPenalty {
		t.Errorf("status = %s, want cancelled_with_penalty", result.Trip.Status)
	}
	if result.Trip.Fare.Penalty != 4000 || result.Trip.Fare.Total != 4000 {
		t.Errorf("penalty fare = %d/%d, want 4000/4000", result.Trip.Fare.Penalty, result.Trip.Fare.Total)
	}
	if result.SettlementPath != domain.PaymentMethodStripe {
		t.Errorf("settlement path = %s, want stripe", result.SettlementPath)
	}
	if !result.Trip.Payment.Settled {
		t.Error("penalty charge not marked settled")
	}

	intents := f.gateway.Intents()
	if len(intents) != 1 || intents[0].IdempotencyKey != "penalty:trip-1" {
		t.Errorf("unexpected gateway intents: %+v", intents)
	}
	if len(f.notifier.Sent()) == 0 {
		t.Error("penalty notification not sent")
	}
}

func TestPenaltyFallsBackToPendingBalance(t *testing.T) {
	f := newCancelFixture()
	seedArrivedTrip(f, 10*time.Minute)
	f.gateway.DeclineNext = true

	result, err := f.svc.CancelTrip(context.Background(), "trip-1",
		domain.Actor{ID: "passenger-1", Role: domain.ActorPassenger})
	if err != nil {
		t.Fatalf("cancellation must not fail on charge failure: %v", err)
	}
	if result.SettlementPath != domain.PaymentMethodPendingBalance {
		t.Errorf("settlement path = %s, want pending_balance", result.SettlementPath)
	}
	if result.Trip.Payment.Settled {
		t.Error("fallback settlement marked as settled")
	}
	if got := f.uow.Passengers.GetPassenger("passenger-1").PendingBalance; got != 4000 {
		t.Errorf("pending balance = %d, want 4000", got)
	}
}

func TestPenaltyWithoutStoredCardGoesToPendingBalance(t *testing.T) {
	f := newCancelFixture()
	trip := seedArrivedTrip(f, 10*time.Minute)
	f.uow.Passengers.AddPassenger(&domain.Passenger{ID: trip.PassengerID}) // no card

	result, err := f.svc.CancelTrip(context.Background(), "trip-1",
		domain.Actor{ID: "passenger-1", Role: domain.ActorPassenger})
	if err != nil {
		t.Fatalf("cancellation failed: %v", err)
	}
	if result.SettlementPath != domain.PaymentMethodPendingBalance {
		t.Errorf("settlement path = %s, want pending_balance", result.SettlementPath)
	}
	if got := f.gateway.CreateIntentCallCount; got != 0 {
		t.Errorf("gateway called %d times without a stored card", got)
	}
}

func TestCancelPendingTripByDriver(t *testing.T) {
	f := newCancelFixture()
	f.uow.Trips.AddTrip(&domain.Trip{
		ID:          "trip-1",
		PassengerID: "passenger-1",
		DriverID:    "driver-1",
		Status:      domain.TripStatusAssigned,
	})

	result, err := f.svc.CancelTrip(context.Background(), "trip-1",
		domain.Actor{ID: "driver-1", Role: domain.ActorDriver})
	if err != nil {
		t.Fatalf("cancellation failed: %v", err)
	}
	if result.Trip.Status != domain.TripStatusCancelledByDriver {
		t.Errorf("status = %s, want cancelled_by_driver", result.Trip.Status)
	}
	if result.PenaltyApplied {
		t.Error("penalty applied outside arrived status")
	}
}

func TestDriverCancelAfterGraceIsStillFree(t *testing.T) {
	f := newCancelFixture()
	seedArrivedTrip(f, 10*time.Minute)

	// The driver route to a penalty is MarkAsNoShow with its message
	// evidence; a plain driver cancellation never charges the passenger.
	result, err := f.svc.CancelTrip(context.Background(), "trip-1",
		domain.Actor{ID: "driver-1", Role: domain.ActorDriver})
	if err != nil {
		t.Fatalf("cancellation failed: %v", err)
	}
	if result.Trip.Status != domain.TripStatusCancelledByDriver {
		t.Errorf("status = %s, want cancelled_by_driver", result.Trip.Status)
	}
	if result.PenaltyApplied || result.Trip.Fare.Penalty != 0 {
		t.Error("driver cancellation charged the passenger")
	}
	if f.gateway.CreateIntentCallCount != 0 {
		t.Errorf("gateway calls = %d, want 0", f.gateway.CreateIntentCallCount)
	}
}

func TestCancelClosedTripRejected(t *testing.T) {
	f := newCancelFixture()
	f.uow.Trips.AddTrip(&domain.Trip{
		ID:          "trip-1",
		PassengerID: "passenger-1",
		Status:      domain.TripStatusCancelled,
	})

	_, err := f.svc.CancelTrip(context.Background(), "trip-1",
		domain.Actor{ID: "passenger-1", Role: domain.ActorPassenger})
	if triperr.KindOf(err) != triperr.FailedPrecondition {
		t.Fatalf("expected failed-precondition, got %v", err)
	}
}

func TestNoShowWithAllConditionsChargesPenalty(t *testing.T) {
	f := newCancelFixture()
	trip := seedArrivedTrip(f, 10*time.Minute)
	f.messages.Create(context.Background(), &domain.Message{
		ID:        "msg-1",
		TripID:    trip.ID,
		SenderID:  "driver-1",
		Role:      domain.ActorDriver,
		Body:      "I am outside",
		CreatedAt: trip.ArrivedAt.Add(time.Minute),
	})

	result, err := f.svc.MarkAsNoShow(context.Background(), "trip-1",
		domain.Actor{ID: "driver-1", Role: domain.ActorDriver})
	if err != nil {
		t.Fatalf("no-show failed: %v", err)
	}
	if result.Trip.Status != domain.TripStatusCancelledWithPenalty {
		t.Errorf("status = %s, want cancelled_with_penalty", result.Trip.Status)
	}
	if !result.PenaltyApplied {
		t.Error("penalty not applied with all conditions met")
	}
}

func TestNoShowWithoutDriverMessageIsFree(t *testing.T) {
	f := newCancelFixture()
	seedArrivedTrip(f, 10*time.Minute)

	result, err := f.svc.MarkAsNoShow(context.Background(), "trip-1",
		domain.Actor{ID: "driver-1", Role: domain.ActorDriver})
	if err != nil {
		t.Fatalf("no-show failed: %v", err)
	}
	if result.Trip.Status != domain.TripStatusNoShow {
		t.Errorf("status = %s, want no_show", result.Trip.Status)
	}
	if result.PenaltyApplied {
		t.Error("penalty applied without driver message")
	}
	if got := f.gateway.CreateIntentCallCount; got != 0 {
		t.Errorf("gateway called %d times for free no-show", got)
	}
}

func TestNoShowBeforeGraceIsFree(t *testing.T) {
	f := newCancelFixture()
	trip := seedArrivedTrip(f, 2*time.Minute)
	f.messages.Create(context.Background(), &domain.Message{
		ID:        "msg-1",
		TripID:    trip.ID,
		SenderID:  "driver-1",
		Role:      domain.ActorDriver,
		Body:      "here",
		CreatedAt: time.Now(),
	})

	result, err := f.svc.MarkAsNoShow(context.Background(), "trip-1",
		domain.Actor{ID: "driver-1", Role: domain.ActorDriver})
	if err != nil {
		t.Fatalf("no-show failed: %v", err)
	}
	if result.PenaltyApplied {
		t.Error("penalty applied before grace period elapsed")
	}
}

func TestNoShowByUnassignedDriverRejected(t *testing.T) {
	f := newCancelFixture()
	seedArrivedTrip(f, 10*time.Minute)

	_, err := f.svc.MarkAsNoShow(context.Background(), "trip-1",
		domain.Actor{ID: "driver-99", Role: domain.ActorDriver})
	if triperr.KindOf(err) != triperr.PermissionDenied {
		t.Fatalf("expected permission-denied, got %v", err)
	}
}

func TestNoShowRequiresArrivedStatus(t *testing.T) {
	f := newCancelFixture()
	f.uow.Trips.AddTrip(&domain.Trip{
		ID:          "trip-1",
		PassengerID: "passenger-1",
		DriverID:    "driver-1",
		Status:      domain.TripStatusAssigned,
	})

	_, err := f.svc.MarkAsNoShow(context.Background(), "trip-1",
		domain.Actor{ID: "driver-1", Role: domain.ActorDriver})
	if triperr.KindOf(err) != triperr.FailedPrecondition {
		t.Fatalf("expected failed-precondition, got %v", err)
	}
}
