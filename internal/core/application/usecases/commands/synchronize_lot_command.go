package commands

import (
	"errors"

	"expedition/internal/core/domain/model/kernel"
	"expedition/internal/pkg/guard"
)

var ErrSynchronizeLotCommandIsNotConstructed = errors.New(
	"SynchronizeLotCommand must be created via NewSynchronizeLotCommand constructor",
)

// SynchronizeLotCommand asks for the separation state of one transport lot to be
// aligned with the lot. It is issued once per lot change notification.
//
// Example:
//
//	cmd, err := NewSynchronizeLotCommand(lotID)
//	if err != nil {
//	    return err
//	}
//	report, err := handler.Handle(ctx, cmd)
type SynchronizeLotCommand struct {
	lotID kernel.UUID

	guard guard.ConstructorGuard
}

// NewSynchronizeLotCommand creates the command for a lot.
func NewSynchronizeLotCommand(lotID kernel.UUID) (SynchronizeLotCommand, error) {
	if err := lotID.Validate(); err != nil {
		return SynchronizeLotCommand{}, err
	}
	return SynchronizeLotCommand{lotID: lotID, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the command was created through the constructor.
func (c SynchronizeLotCommand) Validate() error {
	return c.guard.Validate(ErrSynchronizeLotCommandIsNotConstructed)
}

// LotID returns the lot to synchronize.
func (c SynchronizeLotCommand) LotID() kernel.UUID {
	return c.lotID
}
