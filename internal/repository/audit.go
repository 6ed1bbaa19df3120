package repository

import (
	"context"

	"taxipro/internal/domain"
)

// AuditRepository defines the persistence operations for trip audit logs.
type AuditRepository interface {
	// Append adds an entry to the trip's audit sub-log.
	Append(ctx context.Context, entry *domain.AuditEntry) error

	// ListByTripID retrieves the audit entries for a trip, oldest first.
	ListByTripID(ctx context.Context, tripID string) ([]*domain.AuditEntry, error)
}
