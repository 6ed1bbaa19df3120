package postgres

import (
	"context"
	"database/sql"

	"taxipro/internal/domain"
	"taxipro/internal/repository"
)

// AuditRepository is a PostgreSQL implementation of
// repository.AuditRepository.
type AuditRepository struct {
	q Querier
}

// NewAuditRepository creates a new PostgreSQL audit repository.
func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{q: db}
}

// Append adds an entry to the trip's audit sub-log.
func (r *AuditRepository) Append(ctx context.Context, entry *domain.AuditEntry) error {
	query := `
		INSERT INTO trip_audit_log (id, trip_id, actor_id, actor_role, action, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.q.ExecContext(ctx, query,
		entry.ID, entry.TripID, entry.ActorID, entry.ActorRole, entry.Action, entry.CreatedAt)
	return err
}

// ListByTripID retrieves the audit entries for a trip, oldest first.
func (r *AuditRepository) ListByTripID(ctx context.Context, tripID string) ([]*domain.AuditEntry, error) {
	query := `
		SELECT id, trip_id, actor_id, actor_role, action, created_at
		FROM trip_audit_log
		WHERE trip_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.q.QueryContext(ctx, query, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		if err := rows.Scan(&e.ID, &e.TripID, &e.ActorID, &e.ActorRole, &e.Action, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}

	return entries, rows.Err()
}

// Ensure AuditRepository implements repository.AuditRepository.
var _ repository.AuditRepository = (*AuditRepository)(nil)
