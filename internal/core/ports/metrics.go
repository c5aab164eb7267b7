package ports

import "time"

// MetricsRecorder receives operational measurements from the use cases.
type MetricsRecorder interface {
	// SyncFinished records one synchronization attempt chain with its final result
	// ("created", "updated", "deleted", "unchanged" or "error").
	SyncFinished(result string, elapsed time.Duration, writes int)

	// SyncRetried records a synchronization retried after a conflict.
	SyncRetried()

	// Transition records a lifecycle call on a control or record.
	Transition(subject, action, outcome string)

	// ControlsSettled records controls completed by the cascade audit.
	ControlsSettled(n int)
}

// NopMetrics discards every measurement.
type NopMetrics struct{}

func (NopMetrics) SyncFinished(string, time.Duration, int) {}
func (NopMetrics) SyncRetried()                            {}
func (NopMetrics) Transition(string, string, string)       {}
func (NopMetrics) ControlsSettled(int)                     {}
