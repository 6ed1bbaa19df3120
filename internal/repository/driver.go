package repository

import (
	"context"
	"time"

	"taxipro/internal/domain"
)

// DriverRepository defines the persistence operations for drivers.
type DriverRepository interface {
	// Create persists a new driver.
	Create(ctx context.Context, driver *domain.Driver) error

	// GetByID retrieves a driver by ID.
	GetByID(ctx context.Context, id string) (*domain.Driver, error)

	// ListDueForBilling retrieves drivers with a billable subscription
	// (active or expired, never trial) whose last charge predates the
	// cutoff.
	ListDueForBilling(ctx context.Context, cutoff time.Time) ([]*domain.Driver, error)

	// MarkBilled records a successful subscription charge.
	MarkBilled(ctx context.Context, id string, at time.Time) error

	// UpdateSubscription sets the driver's subscription status.
	UpdateSubscription(ctx context.Context, id string, status domain.SubscriptionStatus) error
}
