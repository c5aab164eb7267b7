package jobs

import (
	"fmt"
	"log/slog"
)

// Job is a scheduled background task.
type Job interface {
	Start() error
	Stop()
}

// JobManager coordinates all scheduled jobs in the application.
type JobManager struct {
	jobs   []namedJob
	logger *slog.Logger
}

type namedJob struct {
	name string
	job  Job
}

// NewJobManager creates a job manager. The cascade audit is only scheduled when
// auditSchedule is not empty.
func NewJobManager(settle SettleHandler, auditSchedule string, auditBatch int, logger *slog.Logger) *JobManager {
	jm := &JobManager{logger: logger.With("component", "job_manager")}
	if auditSchedule != "" {
		jm.jobs = append(jm.jobs, namedJob{
			name: "cascade audit",
			job:  NewCascadeAuditJob(settle, auditSchedule, auditBatch, logger),
		})
	}
	return jm
}

// StartAll starts all scheduled jobs. When one fails to start, the ones already
// started are stopped again.
func (jm *JobManager) StartAll() error {
	for i, nj := range jm.jobs {
		if err := nj.job.Start(); err != nil {
			for _, started := range jm.jobs[:i] {
				started.job.Stop()
			}
			return fmt.Errorf("failed to start %s job: %w", nj.name, err)
		}
	}
	if len(jm.jobs) == 0 {
		jm.logger.Info("No background jobs scheduled")
	}
	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	for _, nj := range jm.jobs {
		nj.job.Stop()
	}
}
