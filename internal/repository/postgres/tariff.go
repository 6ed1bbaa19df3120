package postgres

import (
	"context"
	"database/sql"
	"errors"

	"taxipro/internal/domain"
	"taxipro/internal/repository"
)

// TariffRepository is a PostgreSQL implementation of
// repository.TariffRepository.
type TariffRepository struct {
	q Querier
}

// NewTariffRepository creates a new PostgreSQL tariff repository.
func NewTariffRepository(db *sql.DB) *TariffRepository {
	return &TariffRepository{q: db}
}

// GetActive retrieves the currently active tariff. When several versions
// are flagged active the newest wins.
func (r *TariffRepository) GetActive(ctx context.Context) (*domain.Tariff, error) {
	query := `
		SELECT id, version, active, currency,
			base_fare_day, base_fare_night, phone_base_fare_day, phone_base_fare_night,
			per_km, per_minute,
			advance_meters, advance_seconds, advance_price,
			stop_charge, destination_change_surcharge, penalty_fare,
			created_at
		FROM tariffs
		WHERE active = TRUE
		ORDER BY version DESC
		LIMIT 1
	`

	var t domain.Tariff
	err := r.q.QueryRowContext(ctx, query).Scan(
		&t.ID, &t.Version, &t.Active, &t.Currency,
		&t.BaseFareDay, &t.BaseFareNight, &t.PhoneBaseFareDay, &t.PhoneBaseFareNight,
		&t.PerKm, &t.PerMinute,
		&t.AdvanceMeters, &t.AdvanceSeconds, &t.AdvancePrice,
		&t.StopCharge, &t.DestinationChangeSurcharge, &t.PenaltyFare,
		&t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &t, nil
}

// Ensure TariffRepository implements repository.TariffRepository.
var _ repository.TariffRepository = (*TariffRepository)(nil)
