package commands

import (
	"expedition/internal/core/domain/model/kernel"
	"expedition/internal/core/domain/model/separation"
)

// LifecycleResult reports a release, start or complete call.
type LifecycleResult struct {
	Outcome       separation.Outcome
	ControlID     kernel.UUID
	ControlStatus separation.Status
	RecordStatus  separation.Status
}

func lifecycleResult(outcome separation.Outcome, control *separation.Control, recordID *kernel.UUID) LifecycleResult {
	res := LifecycleResult{
		Outcome:       outcome,
		ControlID:     control.ID(),
		ControlStatus: control.Status(),
	}
	if recordID != nil {
		if r, err := control.Record(*recordID); err == nil {
			res.RecordStatus = r.Status()
		}
	}
	return res
}
