package geo

import (
	"math"

	"taxipro/internal/domain"
)

// earthRadiusM is the mean Earth radius in meters.
const earthRadiusM = 6371000.0

// DefaultArrivalRadiusM is the default geofence radius for arrival and
// activation gates.
const DefaultArrivalRadiusM = 150.0

// DistanceMeters returns the great-circle distance between two points
// using the haversine formula.
func DistanceMeters(a, b domain.LatLng) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)

	return earthRadiusM * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// WithinGeofence reports whether current lies within radiusM meters of
// target. Missing telemetry (nil current) is treated as "not present".
func WithinGeofence(current *domain.LatLng, target domain.LatLng, radiusM float64) bool {
	if current == nil {
		return false
	}
	return DistanceMeters(*current, target) <= radiusM
}
