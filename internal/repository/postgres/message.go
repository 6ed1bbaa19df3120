package postgres

import (
	"context"
	"database/sql"
	"time"

	"taxipro/internal/domain"
	"taxipro/internal/repository"
)

// MessageRepository is a PostgreSQL implementation of
// repository.MessageRepository.
type MessageRepository struct {
	q Querier
}

// NewMessageRepository creates a new PostgreSQL message repository.
func NewMessageRepository(db *sql.DB) *MessageRepository {
	return &MessageRepository{q: db}
}

// Create persists a new message.
func (r *MessageRepository) Create(ctx context.Context, msg *domain.Message) error {
	query := `
		INSERT INTO messages (id, trip_id, sender_id, role, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.q.ExecContext(ctx, query,
		msg.ID, msg.TripID, msg.SenderID, msg.Role, msg.Body, msg.CreatedAt)
	return err
}

// HasDriverMessageSince reports whether the driver sent at least one
// message on the trip at or after since.
func (r *MessageRepository) HasDriverMessageSince(ctx context.Context, tripID, driverID string, since time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM messages
			WHERE trip_id = $1 AND sender_id = $2 AND role = $3 AND created_at >= $4
		)
	`

	var exists bool
	err := r.q.QueryRowContext(ctx, query, tripID, driverID, domain.ActorDriver, since).Scan(&exists)
	if err != nil {
		return false, err
	}

	return exists, nil
}

// Ensure MessageRepository implements repository.MessageRepository.
var _ repository.MessageRepository = (*MessageRepository)(nil)
