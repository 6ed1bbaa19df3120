// Package fare computes trip pricing against a tariff schedule.
//
// Two quoting strategies coexist on purpose and must not be merged:
// SteppedAdvanceFare is authoritative for live in-app trip requests,
// FlatPerKmFare is the simplified path used for phone/offline quoting.
package fare

import (
	"math"
	"time"

	"taxipro/internal/domain"
)

// Day window boundary: 06:00-20:59 local is day, everything else night.
// The legacy 23:00-05:59 night window was retired in favor of this rule.
const (
	dayStartHour = 6
	dayEndHour   = 20
)

// IsDaytime reports whether t falls inside the day tariff window.
func IsDaytime(t time.Time) bool {
	h := t.Hour()
	return h >= dayStartHour && h <= dayEndHour
}

// BaseFare selects the base fare from the tariff for the request channel
// and time of day.
func BaseFare(tariff *domain.Tariff, phoneRequest bool, at time.Time) int64 {
	day := IsDaytime(at)
	if phoneRequest {
		if day {
			return tariff.PhoneBaseFareDay
		}
		return tariff.PhoneBaseFareNight
	}
	if day {
		return tariff.BaseFareDay
	}
	return tariff.BaseFareNight
}

// SteppedAdvanceFare quotes a trip using the stepped advance model:
// one advance is consumed every AdvanceMeters travelled or AdvanceSeconds
// elapsed, whichever accrues faster.
func SteppedAdvanceFare(tariff *domain.Tariff, distanceM float64, duration time.Duration, phoneRequest bool, at time.Time) int64 {
	byDistance := distanceM / tariff.AdvanceMeters
	byTime := duration.Seconds() / tariff.AdvanceSeconds
	advances := int64(math.Ceil(math.Max(byDistance, byTime)))

	return BaseFare(tariff, phoneRequest, at) + advances*tariff.AdvancePrice
}

// FlatPerKmFare quotes a trip with a flat per-kilometer rate. Kept as a
// distinct path for phone/offline quoting; do not use for settlement.
func FlatPerKmFare(tariff *domain.Tariff, distanceKm float64, phoneRequest bool, at time.Time) int64 {
	return BaseFare(tariff, phoneRequest, at) + roundCents(distanceKm*float64(tariff.PerKm))
}

// Settlement is the final fare breakdown computed on completion from the
// actual travelled distance and elapsed time.
type Settlement struct {
	Base     int64
	Time     int64
	Distance int64
	Total    int64
}

// Settle recomputes the fare at completion:
//
//	total = base + travelledSeconds*(perMinute/60) + travelledKm*perKm
//	        + stopsFare + surcharges + penalty
//
// Each component is rounded to the currency's minor unit.
func Settle(tariff *domain.Tariff, travelledM float64, travelled time.Duration, phoneRequest bool, startedAt time.Time, stopsFare, surcharges, penalty int64) Settlement {
	base := BaseFare(tariff, phoneRequest, startedAt)
	timeFare := roundCents(travelled.Seconds() * float64(tariff.PerMinute) / 60)
	distanceFare := roundCents(travelledM / 1000 * float64(tariff.PerKm))

	return Settlement{
		Base:     base,
		Time:     timeFare,
		Distance: distanceFare,
		Total:    base + timeFare + distanceFare + stopsFare + surcharges + penalty,
	}
}

func roundCents(v float64) int64 {
	return int64(math.Round(v))
}
