package service

import (
	"context"
	"errors"
	"log"
	"time"

	"taxipro/internal/domain"
	"taxipro/internal/repository"
	"taxipro/internal/triperr"
)

// PaymentIntentStatus mirrors the gateway's asynchronous intent states.
type PaymentIntentStatus string

const (
	IntentStatusSucceeded      PaymentIntentStatus = "succeeded"
	IntentStatusProcessing     PaymentIntentStatus = "processing"
	IntentStatusRequiresAction PaymentIntentStatus = "requires_action"
	IntentStatusFailed         PaymentIntentStatus = "failed"
)

// ErrChargeDeclined is returned when the gateway accepts the request
// but the charge itself does not go through.
var ErrChargeDeclined = errors.New("charge declined by gateway")

// PaymentIntent is the gateway's handle for a charge attempt.
type PaymentIntent struct {
	ID     string
	Status PaymentIntentStatus
}

// CreateIntentRequest contains the parameters for a gateway charge.
type CreateIntentRequest struct {
	AmountCents     int64
	Currency        string
	CustomerID      string
	PaymentMethodID string
	OffSession      bool
	IdempotencyKey  string
}

// PaymentGateway is the boundary to the card payment provider.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, req CreateIntentRequest) (*PaymentIntent, error)
}

// WebhookEvent is the narrow slice of a gateway webhook delivery the
// core depends on.
type WebhookEvent struct {
	Type          string
	TransactionID string
}

// Gateway event types handled by the webhook path.
const (
	eventPaymentFailed = "payment_intent.payment_failed"
	eventRefunded      = "charge.refunded"
)

// PaymentService drives gateway charges and applies asynchronous
// payment outcomes back onto trips.
type PaymentService struct {
	uow           repository.UnitOfWork
	passengerRepo repository.PassengerRepository
	gateway       PaymentGateway
	audit         *AuditLogger
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(uow repository.UnitOfWork, passengerRepo repository.PassengerRepository, gateway PaymentGateway, audit *AuditLogger) *PaymentService {
	return &PaymentService{uow: uow, passengerRepo: passengerRepo, gateway: gateway, audit: audit}
}

// ChargeTripFare charges a completed trip's settled fare against the
// passenger's stored card. Returns a nil intent without error when the
// passenger has no card on file (cash settlement).
func (s *PaymentService) ChargeTripFare(ctx context.Context, trip *domain.Trip) (*PaymentIntent, error) {
	if trip.Fare.Total <= 0 {
		return nil, nil
	}

	passenger, err := s.passengerRepo.GetByID(ctx, trip.PassengerID)
	if err != nil {
		return nil, translateRepoErr(err, "passenger not found")
	}
	if passenger.StripeCustomerID == "" || passenger.DefaultPaymentMethod == "" {
		return nil, nil
	}

	return s.ChargeOffSession(ctx, passenger.StripeCustomerID, passenger.DefaultPaymentMethod,
		trip.Fare.Total, trip.Fare.Currency, "trip:"+trip.ID)
}

// ChargeOffSession attempts an immediate charge against a stored
// customer and payment method.
func (s *PaymentService) ChargeOffSession(ctx context.Context, customerID, paymentMethodID string, amountCents int64, currency, idempotencyKey string) (*PaymentIntent, error) {
	if customerID == "" || paymentMethodID == "" {
		return nil, triperr.New(triperr.FailedPrecondition, "no stored payment method")
	}

	return s.gateway.CreateIntent(ctx, CreateIntentRequest{
		AmountCents:     amountCents,
		Currency:        currency,
		CustomerID:      customerID,
		PaymentMethodID: paymentMethodID,
		OffSession:      true,
		IdempotencyKey:  idempotencyKey,
	})
}

// ApplyWebhookEvent updates the trip matching the event's transaction id.
// Unrecognized event types are logged and ignored; they are not errors.
func (s *PaymentService) ApplyWebhookEvent(ctx context.Context, event WebhookEvent) error {
	var target domain.TripStatus
	switch event.Type {
	case eventPaymentFailed:
		target = domain.TripStatusPaymentFailed
	case eventRefunded:
		target = domain.TripStatusRefunded
	default:
		log.Printf("ignoring webhook event type %q", event.Type)
		return nil
	}

	if event.TransactionID == "" {
		return triperr.New(triperr.InvalidArgument, "webhook event missing transaction id")
	}

	var tripID string
	err := s.uow.Execute(ctx, func(tx repository.RepoSet) error {
		trip, err := tx.Trips.GetByTransactionID(ctx, event.TransactionID)
		if err != nil {
			return triperr.Wrap(triperr.Internal, "transaction lookup failed", err)
		}
		if trip == nil {
			log.Printf("webhook event %s references unknown transaction %s", event.Type, event.TransactionID)
			return nil
		}
		tripID = trip.ID

		if !domain.CanTransition(trip.Status, target) {
			return triperr.Newf(triperr.FailedPrecondition,
				"trip %s cannot move from %s to %s", trip.ID, trip.Status, target)
		}

		now := time.Now()
		trip.Status = target
		trip.UpdatedAt = now
		if target == domain.TripStatusPaymentFailed {
			trip.Payment.Settled = false
		}
		trip.LastActor = domain.ActorSystem
		trip.LastAction = "payment webhook: " + event.Type

		return tx.Trips.Update(ctx, trip)
	})
	if err != nil {
		return err
	}

	if tripID != "" {
		s.audit.Log(ctx, tripID, domain.Actor{ID: "payment-webhook", Role: domain.ActorSystem},
			"applied gateway event "+event.Type)
	}
	return nil
}

// MockGateway is a PaymentGateway for development and tests.
type MockGateway struct{}

// NewMockGateway creates a new MockGateway.
func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

// CreateIntent simulates a gateway charge. Always succeeds.
func (g *MockGateway) CreateIntent(ctx context.Context, req CreateIntentRequest) (*PaymentIntent, error) {
	return &PaymentIntent{ID: "pi_mock_" + req.IdempotencyKey, Status: IntentStatusSucceeded}, nil
}
