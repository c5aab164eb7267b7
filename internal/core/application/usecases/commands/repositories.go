// Package commands contains the operations that change separation state.
// Every command runs in one unit of work: validation, row locks, domain call,
// persistence, commit. Any failure rolls the whole transaction back.
package commands

import (
	"context"

	"expedition/internal/core/ports"
)

// Unit of Work interfaces narrowed to what each handler needs.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// WriteCounter reports rows written inside the transaction.
	WriteCounter interface {
		Writes() int
	}

	// LotRepoFactory provides the lot repository bound to the transaction.
	LotRepoFactory interface {
		TransportLotRepository() ports.TransportLotRepository
	}

	// ControlRepoFactory provides the control repository bound to the transaction.
	ControlRepoFactory interface {
		SeparationControlRepository() ports.SeparationControlRepository
	}

	// SyncUoW is the unit of work of a lot synchronization: it reads and locks the
	// lot, then reads, locks and writes its control.
	//
	// Example:
	//   uow := factory.Create()
	//   if err := uow.Begin(ctx); err != nil {
	//       return err
	//   }
	//   defer func() { _ = uow.Rollback(ctx) }()
	//
	//   lot, err := uow.TransportLotRepository().GetForUpdate(ctx, lotID)
	//   control, err := uow.SeparationControlRepository().GetByLotForUpdate(ctx, lotID)
	//   // ... reconcile and write
	//
	//   err = uow.Commit(ctx)
	SyncUoW interface {
		TxManager
		WriteCounter
		LotRepoFactory
		ControlRepoFactory
	}

	// SyncUoWFactory creates synchronization units of work.
	SyncUoWFactory interface {
		Create() SyncUoW
	}

	// ControlUoW manages transactions for lifecycle operations on one control.
	ControlUoW interface {
		TxManager
		ControlRepoFactory
	}

	// ControlUoWFactory creates control units of work.
	ControlUoWFactory interface {
		Create() ControlUoW
	}
)
