package repository

import (
	"context"
	"time"

	"taxipro/internal/domain"
)

// TripRepository defines the persistence operations for trips.
type TripRepository interface {
	// Create persists a new trip.
	Create(ctx context.Context, trip *domain.Trip) error

	// GetByID retrieves a trip by ID.
	GetByID(ctx context.Context, id string) (*domain.Trip, error)

	// GetForUpdate retrieves a trip by ID locking the row for the
	// duration of the surrounding transaction.
	GetForUpdate(ctx context.Context, id string) (*domain.Trip, error)

	// Update persists all mutable fields of an existing trip.
	Update(ctx context.Context, trip *domain.Trip) error

	// GetOpenByPassengerID retrieves the passenger's trip currently in
	// pending, assigned, arrived or active status. Returns nil when the
	// passenger has no open trip.
	GetOpenByPassengerID(ctx context.Context, passengerID string) (*domain.Trip, error)

	// GetByTransactionID retrieves the trip whose payment transaction id
	// matches. Returns nil when no trip matches.
	GetByTransactionID(ctx context.Context, transactionID string) (*domain.Trip, error)

	// DemoteStale moves every trip in `from` whose updated_at is older
	// than `cutoff` to `to` in a single batched update, returning the
	// number of trips moved.
	DemoteStale(ctx context.Context, from, to domain.TripStatus, cutoff time.Time) (int64, error)
}
