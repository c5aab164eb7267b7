package commands

import (
	"errors"

	"expedition/internal/pkg/errs"
	"expedition/internal/pkg/guard"
)

const maxSettleBatch = 1000

var ErrSettleCompletedControlsCommandIsNotConstructed = errors.New(
	"SettleCompletedControlsCommand must be created via NewSettleCompletedControlsCommand constructor",
)

// SettleCompletedControlsCommand completes controls left InProgress although every
// record is Completed. The cascade normally prevents this state; rows written by
// other tools or older releases can still carry it.
type SettleCompletedControlsCommand struct {
	batch int

	guard guard.ConstructorGuard
}

// NewSettleCompletedControlsCommand creates the command for at most batch controls.
func NewSettleCompletedControlsCommand(batch int) (SettleCompletedControlsCommand, error) {
	if batch < 1 || batch > maxSettleBatch {
		return SettleCompletedControlsCommand{}, errs.NewValueIsOutOfRangeError("batch", batch, 1, maxSettleBatch)
	}
	return SettleCompletedControlsCommand{batch: batch, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the command was created through the constructor.
func (c SettleCompletedControlsCommand) Validate() error {
	return c.guard.Validate(ErrSettleCompletedControlsCommandIsNotConstructed)
}

// Batch returns how many controls one run looks at.
func (c SettleCompletedControlsCommand) Batch() int {
	return c.batch
}
