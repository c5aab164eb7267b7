package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"expedition/internal/core/domain/model/kernel"
	"expedition/internal/core/domain/services"
	"expedition/internal/core/ports"
	"expedition/internal/pkg/errs"
)

const (
	defaultSyncAttempts = 3
	syncRetryBackoff    = 50 * time.Millisecond
)

// SyncReport describes a finished synchronization.
type SyncReport struct {
	Action services.SyncAction
	// ControlID is nil when the lot ends up without a control.
	ControlID *kernel.UUID
	Records   int
	Writes    int
	Attempts  int
}

// SyncOption configures a SynchronizeLotCommandHandler.
type SyncOption func(*SynchronizeLotCommandHandler)

// WithMaxAttempts bounds how often a conflicting synchronization is retried.
func WithMaxAttempts(n int) SyncOption {
	return func(h *SynchronizeLotCommandHandler) {
		if n > 0 {
			h.maxAttempts = n
		}
	}
}

// SynchronizeLotCommandHandler runs a lot synchronization in one transaction:
// lock the lot row, lock the control row, reconcile, write the difference, commit.
// A transaction that loses a lock race or a serialization check is retried from
// scratch, so every notification still yields exactly one applied synchronization.
//
// Example:
//
//	handler := NewSynchronizeLotCommandHandler(uowFactory, kernel.SystemClock{}, metrics, logger)
//	report, err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, errs.ErrObjectNotFound):
//	    // unknown lot
//	case err != nil:
//	    // transaction rolled back
//	default:
//	    log.Printf("lot synchronized: %s, %d rows written", report.Action, report.Writes)
//	}
type SynchronizeLotCommandHandler struct {
	uowFactory   SyncUoWFactory
	clock        kernel.Clock
	metrics      ports.MetricsRecorder
	logger       *slog.Logger
	synchronizer services.LotSynchronizer
	maxAttempts  int
}

// NewSynchronizeLotCommandHandler creates the handler. A nil metrics recorder discards
// measurements.
func NewSynchronizeLotCommandHandler(
	uowFactory SyncUoWFactory,
	clock kernel.Clock,
	metrics ports.MetricsRecorder,
	logger *slog.Logger,
	opts ...SyncOption,
) SynchronizeLotCommandHandler {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	h := SynchronizeLotCommandHandler{
		uowFactory:   uowFactory,
		clock:        clock,
		metrics:      metrics,
		logger:       logger.With("component", "lot-synchronizer"),
		synchronizer: services.NewLotSynchronizer(),
		maxAttempts:  defaultSyncAttempts,
	}
	for _, opt := range opts {
		opt(&h)
	}
	return h
}

// Handle synchronizes the lot named by the command.
func (h SynchronizeLotCommandHandler) Handle(ctx context.Context, command SynchronizeLotCommand) (SyncReport, error) {
	if err := command.Validate(); err != nil {
		return SyncReport{}, err
	}

	started := time.Now()
	var (
		report SyncReport
		err    error
	)
	for attempt := 1; attempt <= h.maxAttempts; attempt++ {
		report, err = h.attempt(ctx, command.LotID())
		report.Attempts = attempt
		if err == nil || !errors.Is(err, errs.ErrSynchronizationConflict) || attempt == h.maxAttempts {
			break
		}

		h.metrics.SyncRetried()
		h.logger.WarnContext(ctx, "synchronization conflict, retrying",
			"lot_id", command.LotID().String(), "attempt", attempt, "error", err)
		if waitErr := sleepCtx(ctx, time.Duration(attempt)*syncRetryBackoff); waitErr != nil {
			err = waitErr
			break
		}
	}

	if err != nil {
		h.metrics.SyncFinished("error", time.Since(started), 0)
		h.logger.ErrorContext(ctx, "lot synchronization failed",
			"lot_id", command.LotID().String(), "attempts", report.Attempts, "error", err)
		return report, err
	}

	h.metrics.SyncFinished(report.Action.String(), time.Since(started), report.Writes)
	h.logger.InfoContext(ctx, "lot synchronized",
		"lot_id", command.LotID().String(),
		"action", report.Action.String(),
		"records", report.Records,
		"writes", report.Writes,
		"attempts", report.Attempts)
	return report, nil
}

func (h SynchronizeLotCommandHandler) attempt(ctx context.Context, lotID kernel.UUID) (SyncReport, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return SyncReport{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	lot, err := uow.TransportLotRepository().GetForUpdate(ctx, lotID)
	if err != nil {
		return SyncReport{}, err
	}

	controls := uow.SeparationControlRepository()
	existing, err := controls.GetByLotForUpdate(ctx, lotID)
	if errors.Is(err, errs.ErrObjectNotFound) {
		existing, err = nil, nil
	}
	if err != nil {
		return SyncReport{}, err
	}

	result, err := h.synchronizer.Synchronize(lot, existing, h.clock.Now())
	if err != nil {
		return SyncReport{}, err
	}

	switch result.Action {
	case services.SyncDeleted:
		err = controls.Delete(ctx, existing.ID())
	case services.SyncCreated:
		err = controls.Add(ctx, result.Control)
	case services.SyncUpdated:
		err = controls.Update(ctx, result.Control)
	case services.SyncUnchanged:
	}
	if err != nil {
		return SyncReport{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return SyncReport{}, err
	}

	report := SyncReport{Action: result.Action, Writes: uow.Writes()}
	if result.Control != nil {
		id := result.Control.ID()
		report.ControlID = &id
		report.Records = len(result.Control.Records())
	}
	return report, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
