package repository

import (
	"context"
	"time"

	"taxipro/internal/domain"
)

// SharedLinkRepository defines the persistence operations for shared
// trip links.
type SharedLinkRepository interface {
	// Create persists a new link.
	Create(ctx context.Context, link *domain.SharedTripLink) error

	// GetByToken retrieves a link by its token.
	GetByToken(ctx context.Context, token string) (*domain.SharedTripLink, error)

	// GetActiveByTripID retrieves the active links referencing a trip.
	GetActiveByTripID(ctx context.Context, tripID string) ([]*domain.SharedTripLink, error)

	// DeactivateByTripID marks every active link for the trip inactive.
	DeactivateByTripID(ctx context.Context, tripID string) error

	// Deactivate marks a single link inactive.
	Deactivate(ctx context.Context, token string) error

	// DeleteExpired removes links whose expiry is before cutoff,
	// returning the number removed.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}
