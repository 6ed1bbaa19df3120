package repository

import "context"

// RepoSet bundles the transaction-scoped repositories handed to a unit
// of work.
type RepoSet struct {
	Trips      TripRepository
	Links      SharedLinkRepository
	Passengers PassengerRepository
	Drivers    DriverRepository
}

// UnitOfWork runs a function inside one atomic commit. Either every
// write made through the supplied RepoSet is applied, or none is.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(tx RepoSet) error) error
}
