package commands

import (
	"context"
	"errors"

	"expedition/internal/core/domain/model/kernel"
	"expedition/internal/core/ports"
	"expedition/internal/pkg/errs"
)

// SettleCompletedControlsCommandHandler finds settleable controls and completes each
// one in its own transaction through the domain cascade. A control that changed in
// the meantime is re-evaluated under its lock and skipped when no longer due. A
// control removed in between by a blocked-lot synchronization is skipped as well.
type SettleCompletedControlsCommandHandler struct {
	uowFactory ControlUoWFactory
	metrics    ports.MetricsRecorder
}

// NewSettleCompletedControlsCommandHandler creates the handler.
func NewSettleCompletedControlsCommandHandler(uowFactory ControlUoWFactory, metrics ports.MetricsRecorder) SettleCompletedControlsCommandHandler {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return SettleCompletedControlsCommandHandler{uowFactory: uowFactory, metrics: metrics}
}

// Handle returns how many controls were completed. Failures on single controls do not
// stop the run; they are joined into the returned error.
func (h SettleCompletedControlsCommandHandler) Handle(ctx context.Context, command SettleCompletedControlsCommand) (int, error) {
	if err := command.Validate(); err != nil {
		return 0, err
	}

	ids, err := h.uowFactory.Create().SeparationControlRepository().FindSettleable(ctx, command.Batch())
	if err != nil {
		return 0, err
	}

	settled := 0
	var failures []error
	for _, id := range ids {
		done, err := h.settle(ctx, id)
		if err != nil {
			failures = append(failures, err)
			continue
		}
		if done {
			settled++
		}
	}

	if settled > 0 {
		h.metrics.ControlsSettled(settled)
	}
	return settled, errors.Join(failures...)
}

func (h SettleCompletedControlsCommandHandler) settle(ctx context.Context, id kernel.UUID) (bool, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.SeparationControlRepository()
	control, err := repo.GetForUpdate(ctx, id)
	if errors.Is(err, errs.ErrObjectNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	done, err := control.SettleCompletion()
	if err != nil || !done {
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
