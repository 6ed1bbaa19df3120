package repository

import (
	"context"

	"taxipro/internal/domain"
)

// TariffRepository provides read access to the tariff schedule.
type TariffRepository interface {
	// GetActive retrieves the currently active tariff.
	GetActive(ctx context.Context) (*domain.Tariff, error)
}
