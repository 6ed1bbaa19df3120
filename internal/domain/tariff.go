package domain

import "time"

// Tariff is a versioned pricing schedule. Only an active tariff may be
// used for quoting or settlement. All amounts are integer minor units.
type Tariff struct {
	ID      string
	Version int
	Active  bool

	Currency string

	// Base fares, split by day/night and by request channel.
	BaseFareDay        int64
	BaseFareNight      int64
	PhoneBaseFareDay   int64
	PhoneBaseFareNight int64

	// Flat quoting model.
	PerKm int64

	// Settlement time rate, per minute.
	PerMinute int64

	// Stepped "advance" model: one advance is consumed every
	// AdvanceMeters travelled or AdvanceSeconds elapsed, whichever
	// accrues faster.
	AdvanceMeters  float64
	AdvanceSeconds float64
	AdvancePrice   int64

	// Fixed charges.
	StopCharge                 int64
	DestinationChangeSurcharge int64
	PenaltyFare                int64

	CreatedAt time.Time
}
