package service

import (
	"context"
	"log"
	"time"

	"taxipro/internal/domain"
	"taxipro/internal/repository"
	"taxipro/internal/triperr"
)

// DefaultGracePeriod is the window after driver arrival during which a
// passenger cancellation stays penalty-free.
const DefaultGracePeriod = 5 * time.Minute

// CancellationService decides whether a cancellation is free or
// penalized and drives the penalty settlement. The cancellation itself
// always succeeds; only the settlement path differs.
type CancellationService struct {
	uow         repository.UnitOfWork
	tariffRepo  repository.TariffRepository
	messageRepo repository.MessageRepository
	payments    *PaymentService
	audit       *AuditLogger
	notifier    Notifier

	gracePeriod time.Duration
}

// NewCancellationService creates a new CancellationService.
func NewCancellationService(
	uow repository.UnitOfWork,
	tariffRepo repository.TariffRepository,
	messageRepo repository.MessageRepository,
	payments *PaymentService,
	audit *AuditLogger,
	notifier Notifier,
	gracePeriod time.Duration,
) *CancellationService {
	if gracePeriod <= 0 {
		gracePeriod = DefaultGracePeriod
	}
	return &CancellationService{
		uow:         uow,
		tariffRepo:  tariffRepo,
		messageRepo: messageRepo,
		payments:    payments,
		audit:       audit,
		notifier:    notifier,
		gracePeriod: gracePeriod,
	}
}

// CancelResult reports the outcome of a cancellation.
type CancelResult struct {
	Trip           *domain.Trip
	PenaltyApplied bool
	// SettlementPath records how a penalty was settled: stripe for an
	// immediate charge, pending_balance for the ledger fallback. Empty
	// when no penalty applied.
	SettlementPath domain.PaymentMethod
}

// CancelTrip cancels a trip on behalf of the initiating actor. A penalty
// applies only when the passenger cancels an arrived trip after the
// grace period; driver-initiated cancellations are always penalty-free.
// Drivers seeking a penalty go through MarkAsNoShow, which demands
// message evidence.
func (s *CancellationService) CancelTrip(ctx context.Context, tripID string, actor domain.Actor) (*CancelResult, error) {
	tariff, err := s.tariffRepo.GetActive(ctx)
	if err != nil {
		return nil, triperr.Wrap(triperr.FailedPrecondition, "no active tariff", err)
	}

	result := &CancelResult{}
	err = s.uow.Execute(ctx, func(tx repository.RepoSet) error {
		trip, err := tx.Trips.GetForUpdate(ctx, tripID)
		if err != nil {
			return translateRepoErr(err, "trip not found")
		}
		if err := requireParty(actor, trip); err != nil {
			return err
		}

		now := time.Now()
		penalty := actor.Role == domain.ActorPassenger &&
			trip.Status == domain.TripStatusArrived &&
			!trip.ArrivedAt.IsZero() &&
			now.Sub(trip.ArrivedAt) > s.gracePeriod

		target := cancellationStatus(actor.Role, penalty)
		if !domain.CanTransition(trip.Status, target) {
			return triperr.Newf(triperr.FailedPrecondition,
				"trip cannot be cancelled from status %s", trip.Status)
		}

		if penalty {
			trip.Fare.Penalty = tariff.PenaltyFare
			trip.Fare.Total = tariff.PenaltyFare
			trip.Fare.Currency = tariff.Currency
			s.settlePenalty(ctx, tx, trip, tariff.PenaltyFare, tariff.Currency)
			result.PenaltyApplied = true
			result.SettlementPath = trip.Payment.Method
		}

		trip.Status = target
		trip.CompletedAt = now
		trip.UpdatedAt = now
		trip.LastActor = actor.Role
		trip.LastAction = "cancelled (" + string(target) + ")"

		if err := tx.Links.DeactivateByTripID(ctx, trip.ID); err != nil {
			return triperr.Wrap(triperr.Internal, "deactivating shared links failed", err)
		}

		result.Trip = trip
		return tx.Trips.Update(ctx, trip)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Log(ctx, result.Trip.ID, actor, result.Trip.LastAction)
	if result.PenaltyApplied && s.notifier != nil {
		_ = s.notifier.Notify(ctx, result.Trip.PassengerID, "Cancellation Fee",
			"A cancellation fee of "+notifyFare(result.Trip.Fare.Penalty, result.Trip.Fare.Currency)+" was applied")
	}

	return result, nil
}

// MarkAsNoShow closes a trip whose passenger never showed up. A penalty
// charge requires all of: the caller is the assigned driver, the trip is
// in arrived status, the driver messaged the passenger since arriving,
// and the grace period has elapsed. Otherwise the trip closes as a
// penalty-free no-show.
func (s *CancellationService) MarkAsNoShow(ctx context.Context, tripID string, driver domain.Actor) (*CancelResult, error) {
	if driver.Role != domain.ActorDriver {
		return nil, triperr.New(triperr.PermissionDenied, "only drivers may report a no-show")
	}

	tariff, err := s.tariffRepo.GetActive(ctx)
	if err != nil {
		return nil, triperr.Wrap(triperr.FailedPrecondition, "no active tariff", err)
	}

	result := &CancelResult{}
	err = s.uow.Execute(ctx, func(tx repository.RepoSet) error {
		trip, err := tx.Trips.GetForUpdate(ctx, tripID)
		if err != nil {
			return translateRepoErr(err, "trip not found")
		}

		if trip.DriverID != driver.ID {
			return triperr.New(triperr.PermissionDenied, "driver is not assigned to this trip")
		}
		if trip.Status != domain.TripStatusArrived {
			return triperr.Newf(triperr.FailedPrecondition,
				"no-show cannot be reported from status %s", trip.Status)
		}

		now := time.Now()
		graceElapsed := !trip.ArrivedAt.IsZero() && now.Sub(trip.ArrivedAt) > s.gracePeriod

		messaged := false
		if graceElapsed {
			messaged, err = s.messageRepo.HasDriverMessageSince(ctx, trip.ID, driver.ID, trip.ArrivedAt)
			if err != nil {
				return triperr.Wrap(triperr.Internal, "message lookup failed", err)
			}
		}

		// All four anti-fraud conditions must hold for a penalty:
		// assigned driver, arrived status, driver message since arrival,
		// grace period elapsed.
		penalty := graceElapsed && messaged

		target := domain.TripStatusNoShow
		if penalty {
			target = domain.TripStatusCancelledWithPenalty
			trip.Fare.Penalty = tariff.PenaltyFare
			trip.Fare.Total = tariff.PenaltyFare
			trip.Fare.Currency = tariff.Currency
			s.settlePenalty(ctx, tx, trip, tariff.PenaltyFare, tariff.Currency)
			result.PenaltyApplied = true
			result.SettlementPath = trip.Payment.Method
		}

		trip.Status = target
		trip.CompletedAt = now
		trip.UpdatedAt = now
		trip.LastActor = driver.Role
		trip.LastAction = "marked as no-show (" + string(target) + ")"

		if err := tx.Links.DeactivateByTripID(ctx, trip.ID); err != nil {
			return triperr.Wrap(triperr.Internal, "deactivating shared links failed", err)
		}

		result.Trip = trip
		return tx.Trips.Update(ctx, trip)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Log(ctx, result.Trip.ID, driver, result.Trip.LastAction)
	return result, nil
}

// settlePenalty charges the penalty against the passenger's stored card,
// falling back to the pending-balance ledger on any failure. It never
// returns an error: the cancellation must succeed regardless of which
// settlement path was taken.
func (s *CancellationService) settlePenalty(ctx context.Context, tx repository.RepoSet, trip *domain.Trip, amount int64, currency string) {
	passenger, err := tx.Passengers.GetByID(ctx, trip.PassengerID)
	if err == nil && passenger.StripeCustomerID != "" && passenger.DefaultPaymentMethod != "" {
		intent, chargeErr := s.payments.ChargeOffSession(ctx,
			passenger.StripeCustomerID, passenger.DefaultPaymentMethod,
			amount, currency, "penalty:"+trip.ID)
		if chargeErr == nil && intent != nil && intent.Status == IntentStatusSucceeded {
			trip.Payment.Method = domain.PaymentMethodStripe
			trip.Payment.TransactionID = intent.ID
			trip.Payment.Settled = true
			return
		}
		if chargeErr != nil {
			log.Printf("penalty charge failed for trip %s: %v", trip.ID, chargeErr)
		}
	} else if err != nil {
		log.Printf("passenger lookup failed for trip %s: %v", trip.ID, err)
	}

	// Fallback: accrue the amount on the passenger's pending balance.
	if err := tx.Passengers.IncrementPendingBalance(ctx, trip.PassengerID, amount); err != nil {
		log.Printf("pending balance accrual failed for trip %s: %v", trip.ID, err)
	}
	trip.Payment.Method = domain.PaymentMethodPendingBalance
	trip.Payment.Settled = false
}

// cancellationStatus maps the initiating role to the resulting status.
func cancellationStatus(role domain.ActorRole, penalty bool) domain.TripStatus {
	if penalty {
		return domain.TripStatusCancelledWithPenalty
	}
	switch role {
	case domain.ActorPassenger:
		return domain.TripStatusCancelledByPassenger
	case domain.ActorDriver:
		return domain.TripStatusCancelledByDriver
	default:
		return domain.TripStatusCancelled
	}
}
