package commands

import (
	"errors"

	"expedition/internal/core/domain/model/kernel"
	"expedition/internal/pkg/guard"
)

var ErrCompleteRecordCommandIsNotConstructed = errors.New(
	"CompleteRecordCommand must be created via NewCompleteRecordCommand constructor",
)

// CompleteRecordCommand finishes separating one cargo record.
type CompleteRecordCommand struct {
	recordID kernel.UUID

	guard guard.ConstructorGuard
}

// NewCompleteRecordCommand creates the command for a record.
func NewCompleteRecordCommand(recordID kernel.UUID) (CompleteRecordCommand, error) {
	if err := recordID.Validate(); err != nil {
		return CompleteRecordCommand{}, err
	}
	return CompleteRecordCommand{recordID: recordID, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the command was created through the constructor.
func (c CompleteRecordCommand) Validate() error {
	return c.guard.Validate(ErrCompleteRecordCommandIsNotConstructed)
}

// RecordID returns the record to complete.
func (c CompleteRecordCommand) RecordID() kernel.UUID {
	return c.recordID
}
