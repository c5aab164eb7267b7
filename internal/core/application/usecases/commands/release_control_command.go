package commands

import (
	"errors"

	"expedition/internal/core/domain/model/kernel"
	"expedition/internal/pkg/guard"
)

var ErrReleaseControlCommandIsNotConstructed = errors.New(
	"ReleaseControlCommand must be created via NewReleaseControlCommand constructor",
)

// ReleaseControlCommand queues the separation control of a lot for separation work.
type ReleaseControlCommand struct {
	controlID kernel.UUID

	guard guard.ConstructorGuard
}

// NewReleaseControlCommand creates the command for a control.
func NewReleaseControlCommand(controlID kernel.UUID) (ReleaseControlCommand, error) {
	if err := controlID.Validate(); err != nil {
		return ReleaseControlCommand{}, err
	}
	return ReleaseControlCommand{controlID: controlID, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the command was created through the constructor.
func (c ReleaseControlCommand) Validate() error {
	return c.guard.Validate(ErrReleaseControlCommandIsNotConstructed)
}

// ControlID returns the control to release.
func (c ReleaseControlCommand) ControlID() kernel.UUID {
	return c.controlID
}
