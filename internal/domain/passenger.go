package domain

import "time"

// Passenger represents a rider in the system.
type Passenger struct {
	ID    string
	Name  string
	Phone string

	// Stored payment profile; empty when the passenger has no card on
	// file, in which case penalty charges fall back to PendingBalance.
	StripeCustomerID     string
	DefaultPaymentMethod string

	// PendingBalance is a ledger of amounts (minor units) owed that
	// could not be charged immediately.
	PendingBalance int64

	CreatedAt time.Time
}
