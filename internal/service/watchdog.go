package service

import (
	"context"
	"log"
	"time"

	"taxipro/internal/domain"
	"taxipro/internal/repository"
)

// Watchdog timing defaults.
const (
	DefaultWatchdogInterval  = 1 * time.Minute
	DefaultDisconnectTimeout = 5 * time.Minute
	DefaultReviewTimeout     = 60 * time.Minute
)

// WatchdogService demotes trips whose location feed went silent. An
// active trip without an update for the disconnect timeout becomes
// disconnected; a disconnected trip that stays silent for the review
// timeout is parked in pending_review for manual resolution.
type WatchdogService struct {
	tripRepo repository.TripRepository
	linkRepo repository.SharedLinkRepository

	interval          time.Duration
	disconnectTimeout time.Duration
	reviewTimeout     time.Duration
}

// NewWatchdogService creates a new WatchdogService. Zero durations fall
// back to the defaults.
func NewWatchdogService(tripRepo repository.TripRepository, linkRepo repository.SharedLinkRepository, interval, disconnectTimeout, reviewTimeout time.Duration) *WatchdogService {
	if interval <= 0 {
		interval = DefaultWatchdogInterval
	}
	if disconnectTimeout <= 0 {
		disconnectTimeout = DefaultDisconnectTimeout
	}
	if reviewTimeout <= 0 {
		reviewTimeout = DefaultReviewTimeout
	}
	return &WatchdogService{
		tripRepo:          tripRepo,
		linkRepo:          linkRepo,
		interval:          interval,
		disconnectTimeout: disconnectTimeout,
		reviewTimeout:     reviewTimeout,
	}
}

// Run sweeps on a fixed interval until the context is cancelled.
func (s *WatchdogService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Sweep(ctx, time.Now()); err != nil {
				log.Printf("watchdog sweep failed: %v", err)
			}
		}
	}
}

// Sweep performs one pass of demotions and expired-link cleanup.
func (s *WatchdogService) Sweep(ctx context.Context, now time.Time) error {
	disconnected, err := s.tripRepo.DemoteStale(ctx,
		domain.TripStatusActive, domain.TripStatusDisconnected,
		now.Add(-s.disconnectTimeout))
	if err != nil {
		return err
	}
	if disconnected > 0 {
		log.Printf("watchdog: demoted %d active trip(s) to disconnected", disconnected)
	}

	parked, err := s.tripRepo.DemoteStale(ctx,
		domain.TripStatusDisconnected, domain.TripStatusPendingReview,
		now.Add(-s.reviewTimeout))
	if err != nil {
		return err
	}
	if parked > 0 {
		log.Printf("watchdog: parked %d disconnected trip(s) for review", parked)
	}

	removed, err := s.linkRepo.DeleteExpired(ctx, now)
	if err != nil {
		return err
	}
	if removed > 0 {
		log.Printf("watchdog: removed %d expired shared link(s)", removed)
	}
	return nil
}
