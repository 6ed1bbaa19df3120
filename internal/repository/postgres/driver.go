package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"taxipro/internal/domain"
	"taxipro/internal/repository"
)

// DriverRepository is a PostgreSQL implementation of
// repository.DriverRepository.
type DriverRepository struct {
	q Querier
}

// NewDriverRepository creates a new PostgreSQL driver repository.
func NewDriverRepository(db *sql.DB) *DriverRepository {
	return &DriverRepository{q: db}
}

// NewDriverRepositoryWithTx creates a driver repository using a transaction.
func NewDriverRepositoryWithTx(tx *sql.Tx) *DriverRepository {
	return &DriverRepository{q: tx}
}

const driverColumns = `
	id, name, phone, subscription, subscription_fee,
	stripe_customer_id, default_payment_method, last_billed_at, created_at`

// Create persists a new driver.
func (r *DriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	query := `
		INSERT INTO drivers (` + driverColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.q.ExecContext(ctx, query,
		driver.ID, driver.Name, driver.Phone, driver.Subscription, driver.SubscriptionFee,
		nullString(driver.StripeCustomerID), nullString(driver.DefaultPaymentMethod),
		nullTime(driver.LastBilledAt), driver.CreatedAt,
	)
	return err
}

// GetByID retrieves a driver by ID.
func (r *DriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE id = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// ListDueForBilling retrieves drivers not billed since cutoff. Expired
// drivers are included so a failed charge is retried on the next sweep;
// trial drivers are never billed.
func (r *DriverRepository) ListDueForBilling(ctx context.Context, cutoff time.Time) ([]*domain.Driver, error) {
	query := `
		SELECT ` + driverColumns + `
		FROM drivers
		WHERE subscription IN ($1, $2) AND (last_billed_at IS NULL OR last_billed_at < $3)
	`

	rows, err := r.q.QueryContext(ctx, query, domain.SubscriptionActive, domain.SubscriptionExpired, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drivers []*domain.Driver
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, err
		}
		drivers = append(drivers, d)
	}

	return drivers, rows.Err()
}

// MarkBilled records a successful subscription charge.
func (r *DriverRepository) MarkBilled(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE drivers SET last_billed_at = $1 WHERE id = $2`
	return r.exec(ctx, query, at, id)
}

// UpdateSubscription sets the driver's subscription status.
func (r *DriverRepository) UpdateSubscription(ctx context.Context, id string, status domain.SubscriptionStatus) error {
	query := `UPDATE drivers SET subscription = $1 WHERE id = $2`
	return r.exec(ctx, query, status, id)
}

func (r *DriverRepository) exec(ctx context.Context, query string, args ...any) error {
	result, err := r.q.ExecContext(ctx, query, args...)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *DriverRepository) scanOne(row *sql.Row) (*domain.Driver, error) {
	d, err := scanDriver(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return d, nil
}

func scanDriver(row rowScanner) (*domain.Driver, error) {
	var d domain.Driver
	var customerID, paymentMethod sql.NullString
	var lastBilledAt sql.NullTime

	err := row.Scan(
		&d.ID, &d.Name, &d.Phone, &d.Subscription, &d.SubscriptionFee,
		&customerID, &paymentMethod, &lastBilledAt, &d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	d.StripeCustomerID = customerID.String
	d.DefaultPaymentMethod = paymentMethod.String
	if lastBilledAt.Valid {
		d.LastBilledAt = lastBilledAt.Time
	}

	return &d, nil
}

// Ensure DriverRepository implements repository.DriverRepository.
var _ repository.DriverRepository = (*DriverRepository)(nil)
