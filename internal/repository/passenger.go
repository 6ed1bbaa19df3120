package repository

import (
	"context"

	"taxipro/internal/domain"
)

// PassengerRepository defines the persistence operations for passengers.
type PassengerRepository interface {
	// Create persists a new passenger.
	Create(ctx context.Context, passenger *domain.Passenger) error

	// GetByID retrieves a passenger by ID.
	GetByID(ctx context.Context, id string) (*domain.Passenger, error)

	// IncrementPendingBalance atomically adds amount (minor units) to
	// the passenger's pending-balance ledger.
	IncrementPendingBalance(ctx context.Context, id string, amount int64) error
}
