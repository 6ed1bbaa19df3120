package service

import (
	"context"
	"time"

	"taxipro/internal/domain"
	"taxipro/internal/redis"
	"taxipro/internal/repository"
	"taxipro/internal/triperr"
)

// safetyAlertWindow throttles repeat alerts for the same trip.
const safetyAlertWindow = 1 * time.Minute

// SafetyService raises in-trip safety alerts to the operations team.
type SafetyService struct {
	tripRepo repository.TripRepository
	throttle redis.ThrottleStoreInterface
	notifier Notifier
	audit    *AuditLogger

	// opsRecipientID is the notification target for raised alerts.
	opsRecipientID string
}

// NewSafetyService creates a new SafetyService.
func NewSafetyService(tripRepo repository.TripRepository, throttle redis.ThrottleStoreInterface, notifier Notifier, audit *AuditLogger, opsRecipientID string) *SafetyService {
	return &SafetyService{
		tripRepo:       tripRepo,
		throttle:       throttle,
		notifier:       notifier,
		audit:          audit,
		opsRecipientID: opsRecipientID,
	}
}

// TriggerSafetyAlert raises an alert for an in-progress trip. Either
// party may trigger one; repeat alerts within the throttle window are
// rejected with a resource-exhausted error.
func (s *SafetyService) TriggerSafetyAlert(ctx context.Context, tripID string, actor domain.Actor) error {
	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return translateRepoErr(err, "trip not found")
	}
	if err := requireParty(actor, trip); err != nil {
		return err
	}
	if trip.IsTerminal() {
		return triperr.New(triperr.FailedPrecondition, "trip is already closed")
	}

	allowed, err := s.throttle.Allow(ctx, "safety_alert", tripID, safetyAlertWindow)
	if err != nil {
		return triperr.Wrap(triperr.Internal, "alert throttle check failed", err)
	}
	if !allowed {
		return triperr.New(triperr.ResourceExhausted, "a safety alert was already raised for this trip")
	}

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, s.opsRecipientID, "Safety Alert",
			"Safety alert raised on trip "+tripID+" by "+string(actor.Role)+" "+actor.ID); err != nil {
			return triperr.Wrap(triperr.Internal, "alert delivery failed", err)
		}
	}

	s.audit.Log(ctx, tripID, actor, "safety alert raised")
	return nil
}
