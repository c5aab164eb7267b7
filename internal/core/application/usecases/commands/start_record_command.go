package commands

import (
	"errors"

	"expedition/internal/core/domain/model/kernel"
	"expedition/internal/pkg/guard"
)

var ErrStartRecordCommandIsNotConstructed = errors.New(
	"StartRecordCommand must be created via NewStartRecordCommand constructor",
)

// StartRecordCommand starts separating one cargo record.
type StartRecordCommand struct {
	recordID kernel.UUID

	guard guard.ConstructorGuard
}

// NewStartRecordCommand creates the command for a record.
func NewStartRecordCommand(recordID kernel.UUID) (StartRecordCommand, error) {
	if err := recordID.Validate(); err != nil {
		return StartRecordCommand{}, err
	}
	return StartRecordCommand{recordID: recordID, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the command was created through the constructor.
func (c StartRecordCommand) Validate() error {
	return c.guard.Validate(ErrStartRecordCommandIsNotConstructed)
}

// RecordID returns the record to start.
func (c StartRecordCommand) RecordID() kernel.UUID {
	return c.recordID
}
