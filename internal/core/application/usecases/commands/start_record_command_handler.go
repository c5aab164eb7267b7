package commands

import (
	"context"

	"expedition/internal/core/domain/model/kernel"
	"expedition/internal/core/domain/model/separation"
	"expedition/internal/core/ports"
)

// StartRecordCommandHandler starts a record under the row lock of its control.
// The control moves to InProgress in the same transaction when it was waiting.
type StartRecordCommandHandler struct {
	uowFactory ControlUoWFactory
	clock      kernel.Clock
	metrics    ports.MetricsRecorder
}

// NewStartRecordCommandHandler creates the handler.
func NewStartRecordCommandHandler(uowFactory ControlUoWFactory, clock kernel.Clock, metrics ports.MetricsRecorder) StartRecordCommandHandler {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return StartRecordCommandHandler{uowFactory: uowFactory, clock: clock, metrics: metrics}
}

// Handle processes the start command.
func (h StartRecordCommandHandler) Handle(ctx context.Context, command StartRecordCommand) (LifecycleResult, error) {
	if err := command.Validate(); err != nil {
		return LifecycleResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return LifecycleResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.SeparationControlRepository()
	recordID := command.RecordID()
	control, err := repo.GetByRecordForUpdate(ctx, recordID)
	if err != nil {
		return LifecycleResult{}, err
	}

	outcome, err := control.StartRecord(recordID, h.clock.Now())
	if err != nil {
		h.metrics.Transition("record", separation.ActionStart.String(), "rejected")
		return LifecycleResult{}, err
	}

	if err = repo.Update(ctx, control); err != nil {
		return LifecycleResult{}, err
	}
	if err = uow.Commit(ctx); err != nil {
		return LifecycleResult{}, err
	}

	h.metrics.Transition("record", separation.ActionStart.String(), outcome.String())
	return lifecycleResult(outcome, control, &recordID), nil
}
