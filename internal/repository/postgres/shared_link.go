package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"taxipro/internal/domain"
	"taxipro/internal/repository"
)

// SharedLinkRepository is a PostgreSQL implementation of
// repository.SharedLinkRepository.
type SharedLinkRepository struct {
	q Querier
}

// NewSharedLinkRepository creates a new PostgreSQL shared-link repository.
func NewSharedLinkRepository(db *sql.DB) *SharedLinkRepository {
	return &SharedLinkRepository{q: db}
}

// NewSharedLinkRepositoryWithTx creates a shared-link repository using a
// transaction.
func NewSharedLinkRepositoryWithTx(tx *sql.Tx) *SharedLinkRepository {
	return &SharedLinkRepository{q: tx}
}

// Create persists a new link.
func (r *SharedLinkRepository) Create(ctx context.Context, link *domain.SharedTripLink) error {
	query := `
		INSERT INTO shared_trips (token, trip_id, active, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.q.ExecContext(ctx, query,
		link.Token, link.TripID, link.Active, link.CreatedAt, link.ExpiresAt)
	return err
}

// GetByToken retrieves a link by its token.
func (r *SharedLinkRepository) GetByToken(ctx context.Context, token string) (*domain.SharedTripLink, error) {
	query := `
		SELECT token, trip_id, active, created_at, expires_at
		FROM shared_trips WHERE token = $1
	`

	var link domain.SharedTripLink
	err := r.q.QueryRowContext(ctx, query, token).Scan(
		&link.Token, &link.TripID, &link.Active, &link.CreatedAt, &link.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &link, nil
}

// GetActiveByTripID retrieves the active links referencing a trip.
func (r *SharedLinkRepository) GetActiveByTripID(ctx context.Context, tripID string) ([]*domain.SharedTripLink, error) {
	query := `
		SELECT token, trip_id, active, created_at, expires_at
		FROM shared_trips WHERE trip_id = $1 AND active = TRUE
	`

	rows, err := r.q.QueryContext(ctx, query, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []*domain.SharedTripLink
	for rows.Next() {
		var link domain.SharedTripLink
		if err := rows.Scan(&link.Token, &link.TripID, &link.Active, &link.CreatedAt, &link.ExpiresAt); err != nil {
			return nil, err
		}
		links = append(links, &link)
	}

	return links, rows.Err()
}

// DeactivateByTripID marks every active link for the trip inactive.
func (r *SharedLinkRepository) DeactivateByTripID(ctx context.Context, tripID string) error {
	query := `UPDATE shared_trips SET active = FALSE WHERE trip_id = $1 AND active = TRUE`
	_, err := r.q.ExecContext(ctx, query, tripID)
	return err
}

// Deactivate marks a single link inactive.
func (r *SharedLinkRepository) Deactivate(ctx context.Context, token string) error {
	query := `UPDATE shared_trips SET active = FALSE WHERE token = $1`

	result, err := r.q.ExecContext(ctx, query, token)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// DeleteExpired removes links whose expiry is before cutoff.
func (r *SharedLinkRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM shared_trips WHERE expires_at < $1`

	result, err := r.q.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

// Ensure SharedLinkRepository implements repository.SharedLinkRepository.
var _ repository.SharedLinkRepository = (*SharedLinkRepository)(nil)
