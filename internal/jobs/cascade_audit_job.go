package jobs

import (
	"context"
	"log/slog"

	"expedition/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// DefaultCascadeAuditBatch bounds how many controls one audit run settles.
const DefaultCascadeAuditBatch = 100

// SettleHandler settles controls whose records are all completed.
type SettleHandler interface {
	Handle(ctx context.Context, command commands.SettleCompletedControlsCommand) (int, error)
}

// CascadeAuditJob periodically completes controls that were left InProgress although
// every record is Completed.
type CascadeAuditJob struct {
	handler  SettleHandler
	schedule string
	batch    int
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewCascadeAuditJob creates the job. schedule is a six-field cron expression with seconds.
func NewCascadeAuditJob(handler SettleHandler, schedule string, batch int, logger *slog.Logger) *CascadeAuditJob {
	if batch <= 0 {
		batch = DefaultCascadeAuditBatch
	}
	return &CascadeAuditJob{
		handler:  handler,
		schedule: schedule,
		batch:    batch,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger.With("component", "cascade_audit_job"),
	}
}

// Start schedules the audit.
func (j *CascadeAuditJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() { j.RunOnce(context.Background()) }); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Cascade audit job started", "schedule", j.schedule, "batch", j.batch)
	return nil
}

// RunOnce performs one audit pass and returns how many controls were settled.
func (j *CascadeAuditJob) RunOnce(ctx context.Context) int {
	cmd, err := commands.NewSettleCompletedControlsCommand(j.batch)
	if err != nil {
		j.logger.ErrorContext(ctx, "Cascade audit misconfigured", "error", err)
		return 0
	}

	settled, err := j.handler.Handle(ctx, cmd)
	if err != nil {
		j.logger.ErrorContext(ctx, "Cascade audit failed", "settled", settled, "error", err)
	}
	if settled > 0 {
		j.logger.WarnContext(ctx, "Cascade audit completed stale controls", "settled", settled)
	}
	return settled
}

// Stop stops the scheduler and waits for a running pass to finish.
func (j *CascadeAuditJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Cascade audit job stopped")
}
