package redis

import (
	"context"
	"time"

	"taxipro/internal/domain"
)

// LocationStoreInterface defines the interface for live driver positions.
type LocationStoreInterface interface {
	UpdateLocation(ctx context.Context, driverID string, loc domain.LatLng) error
	GetLocation(ctx context.Context, driverID string) (*domain.LatLng, error)
	RemoveLocation(ctx context.Context, driverID string) error
}

// ThrottleStoreInterface defines the interface for per-trip rate limiting.
type ThrottleStoreInterface interface {
	Allow(ctx context.Context, action, tripID string, window time.Duration) (bool, error)
}

// Ensure concrete types implement interfaces.
var (
	_ LocationStoreInterface = (*LocationStore)(nil)
	_ ThrottleStoreInterface = (*ThrottleStore)(nil)
)
