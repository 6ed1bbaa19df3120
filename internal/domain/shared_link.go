package domain

import "time"

// SharedTripLink is a revocable, time-limited public token exposing
// minimal live trip status to third parties. Links become inactive when
// the underlying trip closes or when revoked by the passenger, and are
// garbage-collected after expiry.
type SharedTripLink struct {
	Token     string
	TripID    string
	Active    bool
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Usable reports whether the link may still be served.
func (l *SharedTripLink) Usable(now time.Time) bool {
	return l.Active && now.Before(l.ExpiresAt)
}
