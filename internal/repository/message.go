package repository

import (
	"context"
	"time"

	"taxipro/internal/domain"
)

// MessageRepository defines the persistence operations for in-trip messages.
type MessageRepository interface {
	// Create persists a new message.
	Create(ctx context.Context, msg *domain.Message) error

	// HasDriverMessageSince reports whether the driver sent at least one
	// message on the trip at or after since.
	HasDriverMessageSince(ctx context.Context, tripID, driverID string, since time.Time) (bool, error)
}
