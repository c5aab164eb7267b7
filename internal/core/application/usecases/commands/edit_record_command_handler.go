package commands

import (
	"context"
)

// EditRecordCommandHandler applies field edits under the row lock of the owning control.
type EditRecordCommandHandler struct {
	uowFactory ControlUoWFactory
}

// NewEditRecordCommandHandler creates the handler.
func NewEditRecordCommandHandler(uowFactory ControlUoWFactory) EditRecordCommandHandler {
	return EditRecordCommandHandler{uowFactory: uowFactory}
}

// Handle applies the edit and reports whether any field changed.
func (h EditRecordCommandHandler) Handle(ctx context.Context, command EditRecordCommand) (bool, error) {
	if err := command.Validate(); err != nil {
		return false, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.SeparationControlRepository()
	control, err := repo.GetByRecordForUpdate(ctx, command.RecordID())
	if err != nil {
		return false, err
	}

	changed, err := control.EditRecord(command.RecordID(), command.Edit())
	if err != nil || !changed {
		return false, err
	}

	if err = repo.Update(ctx, control); err != nil {
		return false, err
	}
	if err = uow.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}
