package redis

import (
	"context"

	"github.com/redis/go-redis/v9"

	"taxipro/internal/domain"
)

const driverLocationKey = "drivers:locations"

// LocationStore mirrors the last reported driver position of each active
// trip into a Redis geo index. Shared-trip-link viewers read from here so
// live positions never hit the trips table.
type LocationStore struct {
	client *redis.Client
}

// NewLocationStore creates a new LocationStore.
func NewLocationStore(client *redis.Client) *LocationStore {
	return &LocationStore{client: client}
}

// UpdateLocation stores a driver's position using GEOADD.
func (s *LocationStore) UpdateLocation(ctx context.Context, driverID string, loc domain.LatLng) error {
	return s.client.GeoAdd(ctx, driverLocationKey, &redis.GeoLocation{
		Name:      driverID,
		Longitude: loc.Lng,
		Latitude:  loc.Lat,
	}).Err()
}

// GetLocation retrieves a driver's last stored position. Returns nil when
// the driver has no position on record.
func (s *LocationStore) GetLocation(ctx context.Context, driverID string) (*domain.LatLng, error) {
	positions, err := s.client.GeoPos(ctx, driverLocationKey, driverID).Result()
	if err != nil {
		return nil, err
	}
	if len(positions) == 0 || positions[0] == nil {
		return nil, nil
	}

	return &domain.LatLng{Lat: positions[0].Latitude, Lng: positions[0].Longitude}, nil
}

// RemoveLocation removes a driver's position from the geo index.
func (s *LocationStore) RemoveLocation(ctx context.Context, driverID string) error {
	return s.client.ZRem(ctx, driverLocationKey, driverID).Err()
}
