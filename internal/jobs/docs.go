// Package jobs provides scheduled background tasks for the expedition service.
//
// Jobs are cron-based (github.com/robfig/cron/v3, six-field expressions with seconds).
//
// # Available Jobs
//
// CascadeAuditJob completes separation controls that are still InProgress although
// every cargo record is Completed. The record completion cascade normally prevents
// this state; rows written by other tools can still carry it. The audit goes through
// the same domain cascade and never moves a status backward.
//
// # Usage
//
//	jobManager := jobs.NewJobManager(settleHandler, "0 */5 * * * *", 100, logger)
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// An empty schedule disables the audit.
package jobs
