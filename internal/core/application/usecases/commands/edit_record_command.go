package commands

import (
	"errors"

	"expedition/internal/core/domain/model/kernel"
	"expedition/internal/core/domain/model/separation"
	"expedition/internal/pkg/guard"
)

var (
	ErrEditRecordCommandIsNotConstructed = errors.New(
		"EditRecordCommand must be created via NewEditRecordCommand constructor",
	)
	ErrEditIsEmpty = errors.New("edit changes no field")
)

// EditRecordCommand changes operational fields of a cargo record: checker, pickers,
// transport order, dock box and document flags. It never changes status.
type EditRecordCommand struct {
	recordID kernel.UUID
	edit     separation.RecordEdit

	guard guard.ConstructorGuard
}

// NewEditRecordCommand creates the command. At least one field must be set.
func NewEditRecordCommand(recordID kernel.UUID, edit separation.RecordEdit) (EditRecordCommand, error) {
	if err := recordID.Validate(); err != nil {
		return EditRecordCommand{}, err
	}
	if edit == (separation.RecordEdit{}) {
		return EditRecordCommand{}, ErrEditIsEmpty
	}
	return EditRecordCommand{recordID: recordID, edit: edit, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the command was created through the constructor.
func (c EditRecordCommand) Validate() error {
	return c.guard.Validate(ErrEditRecordCommandIsNotConstructed)
}

// RecordID returns the record to edit.
func (c EditRecordCommand) RecordID() kernel.UUID {
	return c.recordID
}

// Edit returns the requested field changes.
func (c EditRecordCommand) Edit() separation.RecordEdit {
	return c.edit
}
