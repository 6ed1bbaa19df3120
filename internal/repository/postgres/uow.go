package postgres

import (
	"context"
	"database/sql"

	"taxipro/internal/repository"
)

// UnitOfWork is a PostgreSQL implementation of repository.UnitOfWork
// backed by a single transaction per Execute call.
type UnitOfWork struct {
	db *sql.DB
}

// NewUnitOfWork creates a new PostgreSQL unit of work.
func NewUnitOfWork(db *sql.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

// Execute begins a transaction, hands transaction-scoped repositories to
// fn and commits when fn returns nil. Any error rolls everything back.
func (u *UnitOfWork) Execute(ctx context.Context, fn func(tx repository.RepoSet) error) error {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	repos := repository.RepoSet{
		Trips:      NewTripRepositoryWithTx(tx),
		Links:      NewSharedLinkRepositoryWithTx(tx),
		Passengers: NewPassengerRepositoryWithTx(tx),
		Drivers:    NewDriverRepositoryWithTx(tx),
	}

	if err := fn(repos); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

// Ensure UnitOfWork implements repository.UnitOfWork.
var _ repository.UnitOfWork = (*UnitOfWork)(nil)
