package postgres

import (
	"context"
	"database/sql"
	"errors"

	"taxipro/internal/domain"
	"taxipro/internal/repository"
)

// PassengerRepository is a PostgreSQL implementation of
// repository.PassengerRepository.
type PassengerRepository struct {
	q Querier
}

// NewPassengerRepository creates a new PostgreSQL passenger repository.
func NewPassengerRepository(db *sql.DB) *PassengerRepository {
	return &PassengerRepository{q: db}
}

// NewPassengerRepositoryWithTx creates a passenger repository using a
// transaction.
func NewPassengerRepositoryWithTx(tx *sql.Tx) *PassengerRepository {
	return &PassengerRepository{q: tx}
}

// Create persists a new passenger.
func (r *PassengerRepository) Create(ctx context.Context, passenger *domain.Passenger) error {
	query := `
		INSERT INTO passengers (id, name, phone, stripe_customer_id, default_payment_method, pending_balance, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.q.ExecContext(ctx, query,
		passenger.ID, passenger.Name, passenger.Phone,
		nullString(passenger.StripeCustomerID), nullString(passenger.DefaultPaymentMethod),
		passenger.PendingBalance, passenger.CreatedAt,
	)
	return err
}

// GetByID retrieves a passenger by ID.
func (r *PassengerRepository) GetByID(ctx context.Context, id string) (*domain.Passenger, error) {
	query := `
		SELECT id, name, phone, stripe_customer_id, default_payment_method, pending_balance, created_at
		FROM passengers WHERE id = $1
	`

	var p domain.Passenger
	var customerID, paymentMethod sql.NullString

	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Phone, &customerID, &paymentMethod, &p.PendingBalance, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	p.StripeCustomerID = customerID.String
	p.DefaultPaymentMethod = paymentMethod.String

	return &p, nil
}

// IncrementPendingBalance atomically adds amount to the passenger's
// pending-balance ledger.
func (r *PassengerRepository) IncrementPendingBalance(ctx context.Context, id string, amount int64) error {
	query := `UPDATE passengers SET pending_balance = pending_balance + $1 WHERE id = $2`

	result, err := r.q.ExecContext(ctx, query, amount, id)
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

// Ensure PassengerRepository implements repository.PassengerRepository.
var _ repository.PassengerRepository = (*PassengerRepository)(nil)
