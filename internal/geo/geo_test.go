package geo

import (
	"math"
	"testing"

	"taxipro/internal/domain"
)

func TestDistanceMeters(t *testing.T) {
	cases := []struct {
		name string
		a, b domain.LatLng
		want float64
		tol  float64
	}{
		{
			name: "same point",
			a:    domain.LatLng{Lat: 52.52, Lng: 13.405},
			b:    domain.LatLng{Lat: 52.52, Lng: 13.405},
			want: 0,
			tol:  0.001,
		},
		{
			name: "one degree of latitude",
			a:    domain.LatLng{Lat: 0, Lng: 0},
			b:    domain.LatLng{Lat: 1, Lng: 0},
			want: 111195,
			tol:  100,
		},
		{
			name: "berlin alexanderplatz to brandenburg gate",
			a:    domain.LatLng{Lat: 52.5219, Lng: 13.4132},
			b:    domain.LatLng{Lat: 52.5163, Lng: 13.3777},
			want: 2480,
			tol:  50,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DistanceMeters(tc.a, tc.b)
			if math.Abs(got-tc.want) > tc.tol {
				t.Errorf("DistanceMeters = %.1f, want %.1f (±%.1f)", got, tc.want, tc.tol)
			}
		})
	}
}

func TestDistanceMetersSymmetric(t *testing.T) {
	a := domain.LatLng{Lat: 40.7128, Lng: -74.0060}
	b := domain.LatLng{Lat: 40.7580, Lng: -73.9855}

	if d1, d2 := DistanceMeters(a, b), DistanceMeters(b, a); math.Abs(d1-d2) > 0.0001 {
		t.Errorf("distance not symmetric: %f vs %f", d1, d2)
	}
}

func TestWithinGeofence(t *testing.T) {
	target := domain.LatLng{Lat: 52.5200, Lng: 13.4050}

	// ~78m north of the target.
	near := domain.LatLng{Lat: 52.5207, Lng: 13.4050}
	if !WithinGeofence(&near, target, DefaultArrivalRadiusM) {
		t.Error("point within radius reported outside")
	}

	// ~556m north of the target.
	far := domain.LatLng{Lat: 52.5250, Lng: 13.4050}
	if WithinGeofence(&far, target, DefaultArrivalRadiusM) {
		t.Error("point outside radius reported inside")
	}
}

func TestWithinGeofenceNilLocation(t *testing.T) {
	target := domain.LatLng{Lat: 52.52, Lng: 13.405}
	if WithinGeofence(nil, target, DefaultArrivalRadiusM) {
		t.Error("missing telemetry must never satisfy the geofence")
	}
}
