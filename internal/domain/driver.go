package domain

import "time"

// SubscriptionStatus represents a driver's membership state.
type SubscriptionStatus string

const (
	SubscriptionActive  SubscriptionStatus = "active"
	SubscriptionTrial   SubscriptionStatus = "trial"
	SubscriptionExpired SubscriptionStatus = "expired"
)

// Driver represents a driver in the system.
type Driver struct {
	ID    string
	Name  string
	Phone string

	Subscription         SubscriptionStatus
	SubscriptionFee      int64 // minor units, charged by the daily billing sweep
	StripeCustomerID     string
	DefaultPaymentMethod string
	LastBilledAt         time.Time

	CreatedAt time.Time
}

// CanAcceptTrips reports whether the driver's membership allows taking
// new trips.
func (d *Driver) CanAcceptTrips() bool {
	return d.Subscription == SubscriptionActive || d.Subscription == SubscriptionTrial
}
