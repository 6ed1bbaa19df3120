package fare

import (
	"testing"
	"time"

	"taxipro/internal/domain"
)

func testTariff() *domain.Tariff {
	return &domain.Tariff{
		ID:                 "tariff-1",
		Active:             true,
		Currency:           "eur",
		BaseFareDay:        5000,
		BaseFareNight:      6000,
		PhoneBaseFareDay:   5500,
		PhoneBaseFareNight: 6500,
		PerKm:              1500,
		PerMinute:          200,
		AdvanceMeters:      100,
		AdvanceSeconds:     30,
		AdvancePrice:       150,
	}
}

func TestIsDaytime(t *testing.T) {
	cases := []struct {
		hour int
		want bool
	}{
		{0, false},
		{5, false},
		{6, true},
		{12, true},
		{20, true},
		{21, false},
		{23, false},
	}

	for _, tc := range cases {
		at := time.Date(2025, 3, 10, tc.hour, 30, 0, 0, time.UTC)
		if got := IsDaytime(at); got != tc.want {
			t.Errorf("IsDaytime(hour=%d) = %v, want %v", tc.hour, got, tc.want)
		}
	}
}

func TestBaseFareSelection(t *testing.T) {
	tariff := testTariff()
	day := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	night := time.Date(2025, 3, 10, 23, 0, 0, 0, time.UTC)

	cases := []struct {
		name  string
		phone bool
		at    time.Time
		want  int64
	}{
		{"app day", false, day, 5000},
		{"app night", false, night, 6000},
		{"phone day", true, day, 5500},
		{"phone night", true, night, 6500},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := BaseFare(tariff, tc.phone, tc.at); got != tc.want {
				t.Errorf("BaseFare = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestSteppedAdvanceFare(t *testing.T) {
	tariff := testTariff()
	day := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	// 1000m / 100m = 10 advances by distance; 120s / 30s = 4 by time.
	// Distance dominates: 5000 + 10*150 = 6500.
	got := SteppedAdvanceFare(tariff, 1000, 2*time.Minute, false, day)
	if got != 6500 {
		t.Errorf("distance-dominated quote = %d, want 6500", got)
	}

	// 200m / 100m = 2 by distance; 300s / 30s = 10 by time.
	// Time dominates: 5000 + 10*150 = 6500.
	got = SteppedAdvanceFare(tariff, 200, 5*time.Minute, false, day)
	if got != 6500 {
		t.Errorf("time-dominated quote = %d, want 6500", got)
	}

	// Partial advances round up: 150m -> 2 advances.
	got = SteppedAdvanceFare(tariff, 150, 10*time.Second, false, day)
	if got != 5300 {
		t.Errorf("partial advance quote = %d, want 5300", got)
	}
}

func TestFlatPerKmFare(t *testing.T) {
	tariff := testTariff()
	day := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	// 5000 + 7.5km * 1500 = 16250.
	if got := FlatPerKmFare(tariff, 7.5, false, day); got != 16250 {
		t.Errorf("flat quote = %d, want 16250", got)
	}
}

func TestSettle(t *testing.T) {
	tariff := testTariff()
	started := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	// base 5000 + 1200s*(200/60)=4000 + 10km*1500=15000 = 24000.
	s := Settle(tariff, 10000, 20*time.Minute, false, started, 0, 0, 0)

	if s.Base != 5000 {
		t.Errorf("Base = %d, want 5000", s.Base)
	}
	if s.Time != 4000 {
		t.Errorf("Time = %d, want 4000", s.Time)
	}
	if s.Distance != 15000 {
		t.Errorf("Distance = %d, want 15000", s.Distance)
	}
	if s.Total != 24000 {
		t.Errorf("Total = %d, want 24000", s.Total)
	}
}

func TestSettleWithExtras(t *testing.T) {
	tariff := testTariff()
	started := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	s := Settle(tariff, 10000, 20*time.Minute, false, started, 1000, 2000, 4000)
	if s.Total != 31000 {
		t.Errorf("Total with extras = %d, want 31000", s.Total)
	}
}

func TestSettleNightBase(t *testing.T) {
	tariff := testTariff()
	started := time.Date(2025, 3, 10, 23, 30, 0, 0, time.UTC)

	s := Settle(tariff, 0, 0, false, started, 0, 0, 0)
	if s.Base != 6000 {
		t.Errorf("night Base = %d, want 6000", s.Base)
	}
}
