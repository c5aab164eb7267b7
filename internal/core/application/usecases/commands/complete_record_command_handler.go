package commands

import (
	"context"

	"expedition/internal/core/domain/model/kernel"
	"expedition/internal/core/domain/model/separation"
	"expedition/internal/core/ports"
)

// CompleteRecordCommandHandler completes a record under the row lock of its control.
// When the record was the last unfinished one, the control completes in the same
// transaction. Completing a completed record commits nothing and reports
// separation.OutcomeAlreadyCompleted.
type CompleteRecordCommandHandler struct {
	uowFactory ControlUoWFactory
	clock      kernel.Clock
	metrics    ports.MetricsRecorder
}

// NewCompleteRecordCommandHandler creates the handler.
func NewCompleteRecordCommandHandler(uowFactory ControlUoWFactory, clock kernel.Clock, metrics ports.MetricsRecorder) CompleteRecordCommandHandler {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return CompleteRecordCommandHandler{uowFactory: uowFactory, clock: clock, metrics: metrics}
}

// Handle processes the complete command.
func (h CompleteRecordCommandHandler) Handle(ctx context.Context, command CompleteRecordCommand) (LifecycleResult, error) {
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

	before := control.Status()
	outcome, err := control.CompleteRecord(recordID, h.clock.Now())
	if err != nil {
		h.metrics.Transition("record", separation.ActionComplete.String(), "rejected")
		return LifecycleResult{}, err
	}

	if outcome.Changed() {
		if err = repo.Update(ctx, control); err != nil {
			return LifecycleResult{}, err
		}
		if err = uow.Commit(ctx); err != nil {
			return LifecycleResult{}, err
		}
	}

	h.metrics.Transition("record", separation.ActionComplete.String(), outcome.String())
	if before != separation.Completed && control.Status() == separation.Completed {
		h.metrics.Transition("control", separation.ActionComplete.String(), separation.OutcomeApplied.String())
	}
	return lifecycleResult(outcome, control, &recordID), nil
}
