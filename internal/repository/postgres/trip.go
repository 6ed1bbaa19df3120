package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"taxipro/internal/domain"
	"taxipro/internal/repository"
)

// TripRepository is a PostgreSQL implementation of repository.TripRepository.
type TripRepository struct {
	q Querier
}

// NewTripRepository creates a new PostgreSQL trip repository.
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{q: db}
}

// NewTripRepositoryWithTx creates a trip repository using a transaction.
func NewTripRepositoryWithTx(tx *sql.Tx) *TripRepository {
	return &TripRepository{q: tx}
}

const tripColumns = `
	id, passenger_id, driver_id, status,
	origin_lat, origin_lng, origin_address,
	dest_lat, dest_lng, dest_address, stops,
	planned_distance_m, travelled_distance_m, planned_time_s, travelled_time_s,
	last_lat, last_lng, is_phone_request,
	fare_base, fare_distance, fare_time, fare_stops, fare_surcharges, fare_penalty, fare_total, currency,
	payment_method, transaction_id, settled,
	rating, rating_comment,
	created_at, updated_at, assigned_at, arrived_at, started_at, completed_at,
	last_actor, last_action`

// Create persists a new trip.
func (r *TripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	query := `
		INSERT INTO trips (` + tripColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29,
			$30, $31, $32, $33, $34, $35, $36, $37, $38, $39)
	`

	stops, err := json.Marshal(trip.Stops)
	if err != nil {
		return err
	}

	var lastLat, lastLng sql.NullFloat64
	if trip.LastLocation != nil {
		lastLat = sql.NullFloat64{Float64: trip.LastLocation.Lat, Valid: true}
		lastLng = sql.NullFloat64{Float64: trip.LastLocation.Lng, Valid: true}
	}

	_, err = r.q.ExecContext(ctx, query,
		trip.ID, trip.PassengerID, nullString(trip.DriverID), trip.Status,
		trip.Origin.Lat, trip.Origin.Lng, trip.OriginAddress,
		trip.Destination.Lat, trip.Destination.Lng, trip.DestinationAddress, stops,
		trip.PlannedDistanceM, trip.TravelledDistanceM, trip.PlannedTimeS, trip.TravelledTimeS,
		lastLat, lastLng, trip.IsPhoneRequest,
		trip.Fare.Base, trip.Fare.Distance, trip.Fare.Time, trip.Fare.Stops,
		trip.Fare.Surcharges, trip.Fare.Penalty, trip.Fare.Total, trip.Fare.Currency,
		nullString(string(trip.Payment.Method)), nullString(trip.Payment.TransactionID), trip.Payment.Settled,
		trip.Rating, trip.RatingComment,
		trip.CreatedAt, trip.UpdatedAt,
		nullTime(trip.AssignedAt), nullTime(trip.ArrivedAt), nullTime(trip.StartedAt), nullTime(trip.CompletedAt),
		trip.LastActor, trip.LastAction,
	)

	return err
}

// GetByID retrieves a trip by ID.
func (r *TripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// GetForUpdate retrieves a trip by ID locking the row until the
// surrounding transaction ends.
func (r *TripRepository) GetForUpdate(ctx context.Context, id string) (*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1 FOR UPDATE`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// GetOpenByPassengerID retrieves the passenger's trip currently in an
// open (pre-completion) status. Returns nil if none exists.
func (r *TripRepository) GetOpenByPassengerID(ctx context.Context, passengerID string) (*domain.Trip, error) {
	query := `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE passenger_id = $1 AND status IN ($2, $3, $4, $5)
		LIMIT 1
	`

	trip, err := r.scanOne(r.q.QueryRowContext(ctx, query, passengerID,
		domain.TripStatusPending, domain.TripStatusAssigned, domain.TripStatusArrived, domain.TripStatusActive))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return trip, err
}

// GetByTransactionID retrieves the trip whose payment transaction id
// matches. Returns nil if none exists.
func (r *TripRepository) GetByTransactionID(ctx context.Context, transactionID string) (*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE transaction_id = $1 LIMIT 1`

	trip, err := r.scanOne(r.q.QueryRowContext(ctx, query, transactionID))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return trip, err
}

// Update persists all mutable fields of an existing trip.
func (r *TripRepository) Update(ctx context.Context, trip *domain.Trip) error {
	query := `
		UPDATE trips SET
			driver_id = $1, status = $2,
			dest_lat = $3, dest_lng = $4, dest_address = $5, stops = $6,
			planned_distance_m = $7, travelled_distance_m = $8,
			planned_time_s = $9, travelled_time_s = $10,
			last_lat = $11, last_lng = $12,
			fare_base = $13, fare_distance = $14, fare_time = $15, fare_stops = $16,
			fare_surcharges = $17, fare_penalty = $18, fare_total = $19, currency = $20,
			payment_method = $21, transaction_id = $22, settled = $23,
			rating = $24, rating_comment = $25,
			updated_at = $26, assigned_at = $27, arrived_at = $28, started_at = $29, completed_at = $30,
			last_actor = $31, last_action = $32
		WHERE id = $33
	`

	stops, err := json.Marshal(trip.Stops)
	if err != nil {
		return err
	}

	var lastLat, lastLng sql.NullFloat64
	if trip.LastLocation != nil {
		lastLat = sql.NullFloat64{Float64: trip.LastLocation.Lat, Valid: true}
		lastLng = sql.NullFloat64{Float64: trip.LastLocation.Lng, Valid: true}
	}

	result, err := r.q.ExecContext(ctx, query,
		nullString(trip.DriverID), trip.Status,
		trip.Destination.Lat, trip.Destination.Lng, trip.DestinationAddress, stops,
		trip.PlannedDistanceM, trip.TravelledDistanceM, trip.PlannedTimeS, trip.TravelledTimeS,
		lastLat, lastLng,
		trip.Fare.Base, trip.Fare.Distance, trip.Fare.Time, trip.Fare.Stops,
		trip.Fare.Surcharges, trip.Fare.Penalty, trip.Fare.Total, trip.Fare.Currency,
		nullString(string(trip.Payment.Method)), nullString(trip.Payment.TransactionID), trip.Payment.Settled,
		trip.Rating, trip.RatingComment,
		trip.UpdatedAt,
		nullTime(trip.AssignedAt), nullTime(trip.ArrivedAt), nullTime(trip.StartedAt), nullTime(trip.CompletedAt),
		trip.LastActor, trip.LastAction,
		trip.ID,
	)
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

// DemoteStale moves every trip in `from` whose updated_at is older than
// cutoff to `to` in a single batched update.
func (r *TripRepository) DemoteStale(ctx context.Context, from, to domain.TripStatus, cutoff time.Time) (int64, error) {
	query := `
		UPDATE trips
		SET status = $1, updated_at = NOW(), last_actor = $2, last_action = $3
		WHERE status = $4 AND updated_at < $5
	`

	result, err := r.q.ExecContext(ctx, query,
		to, domain.ActorSystem, "demoted to "+string(to)+" by watchdog",
		from, cutoff,
	)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

// scanOne scans a single trip row.
func (r *TripRepository) scanOne(row *sql.Row) (*domain.Trip, error) {
	var trip domain.Trip
	var driverID, paymentMethod, transactionID sql.NullString
	var stops []byte
	var lastLat, lastLng sql.NullFloat64
	var assignedAt, arrivedAt, startedAt, completedAt sql.NullTime

	err := row.Scan(
		&trip.ID, &trip.PassengerID, &driverID, &trip.Status,
		&trip.Origin.Lat, &trip.Origin.Lng, &trip.OriginAddress,
		&trip.Destination.Lat, &trip.Destination.Lng, &trip.DestinationAddress, &stops,
		&trip.PlannedDistanceM, &trip.TravelledDistanceM, &trip.PlannedTimeS, &trip.TravelledTimeS,
		&lastLat, &lastLng, &trip.IsPhoneRequest,
		&trip.Fare.Base, &trip.Fare.Distance, &trip.Fare.Time, &trip.Fare.Stops,
		&trip.Fare.Surcharges, &trip.Fare.Penalty, &trip.Fare.Total, &trip.Fare.Currency,
		&paymentMethod, &transactionID, &trip.Payment.Settled,
		&trip.Rating, &trip.RatingComment,
		&trip.CreatedAt, &trip.UpdatedAt, &assignedAt, &arrivedAt, &startedAt, &completedAt,
		&trip.LastActor, &trip.LastAction,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	trip.DriverID = driverID.String
	trip.Payment.Method = domain.PaymentMethod(paymentMethod.String)
	trip.Payment.TransactionID = transactionID.String

	if len(stops) > 0 {
		if err := json.Unmarshal(stops, &trip.Stops); err != nil {
			return nil, err
		}
	}
	if lastLat.Valid && lastLng.Valid {
		trip.LastLocation = &domain.LatLng{Lat: lastLat.Float64, Lng: lastLng.Float64}
	}
	if assignedAt.Valid {
		trip.AssignedAt = assignedAt.Time
	}
	if arrivedAt.Valid {
		trip.ArrivedAt = arrivedAt.Time
	}
	if startedAt.Valid {
		trip.StartedAt = startedAt.Time
	}
	if completedAt.Valid {
		trip.CompletedAt = completedAt.Time
	}

	return &trip, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

// Ensure TripRepository implements repository.TripRepository.
var _ repository.TripRepository = (*TripRepository)(nil)
