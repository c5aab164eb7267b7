package commands

import (
	"context"

	"expedition/internal/core/domain/model/separation"
	"expedition/internal/core/ports"
)

// ReleaseControlCommandHandler releases a control under its row lock.
// Releasing an already released control commits nothing and reports
// separation.OutcomeAlreadyReleased.
type ReleaseControlCommandHandler struct {
	uowFactory ControlUoWFactory
	metrics    ports.MetricsRecorder
}

// NewReleaseControlCommandHandler creates the handler.
func NewReleaseControlCommandHandler(uowFactory ControlUoWFactory, metrics ports.MetricsRecorder) ReleaseControlCommandHandler {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return ReleaseControlCommandHandler{uowFactory: uowFactory, metrics: metrics}
}

// Handle processes the release command.
func (h ReleaseControlCommandHandler) Handle(ctx context.Context, command ReleaseControlCommand) (LifecycleResult, error) {
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
	control, err := repo.GetForUpdate(ctx, command.ControlID())
	if err != nil {
		return LifecycleResult{}, err
	}

	outcome, err := control.Release()
	if err != nil {
		h.metrics.Transition("control", separation.ActionRelease.String(), "rejected")
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

	h.metrics.Transition("control", separation.ActionRelease.String(), outcome.String())
	return lifecycleResult(outcome, control, nil), nil
}
