package domain

import "time"

// Message is an in-trip chat message between driver and passenger.
// Driver messages after arrival double as the anti-fraud signal required
// before a no-show penalty may be charged.
type Message struct {
	ID        string
	TripID    string
	SenderID  string
	Role      ActorRole
	Body      string
	CreatedAt time.Time
}
