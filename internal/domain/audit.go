package domain

import "time"

// AuditEntry is one row of a trip's audit sub-log. Entries are appended
// best-effort after a successful update and never block the update itself.
type AuditEntry struct {
	ID        string
	TripID    string
	ActorID   string
	ActorRole ActorRole
	Action    string
	CreatedAt time.Time
}
