package ports

import (
	"context"
)

// UnitOfWorkFactory creates a UnitOfWork per command.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork is one business transaction. Repositories it hands out are bound to
// the transaction started by Begin.
type UnitOfWork interface {
	// Begin starts the transaction and applies the configured lock timeout.
	Begin(ctx context.Context) error

	// Commit commits the current transaction.
	// Returns error if no active transaction or commit fails.
	Commit(ctx context.Context) error

	// Rollback rolls back the current transaction.
	// Returns error if no active transaction or rollback fails.
	Rollback(ctx context.Context) error

	// Writes returns how many rows the transaction inserted, updated or deleted so far.
	Writes() int

	// TransportLotRepository returns the lot repository bound to the transaction.
	TransportLotRepository() TransportLotRepository

	// SeparationControlRepository returns the control repository bound to the transaction.
	SeparationControlRepository() SeparationControlRepository
}
