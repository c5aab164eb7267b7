package separation

import (
	"fmt"

	"expedition/internal/pkg/errs"
)

// Status is the lifecycle state shared by separation controls and cargo records.
//
// Control lifecycle:
//
//	Pending ──release──> AwaitingRelease ──begin──> InProgress ──complete──> Completed
//
// Record lifecycle:
//
//	Pending ──start──> InProgress ──complete──> Completed
//	   └──────────────complete──────────────────────┘
//
// AwaitingRelease is a control-only state. Legality of every move is decided by the
// transition tables below, never by ad-hoc field assignment.
type Status int

const (
	// Unknown catches uninitialized values.
	Unknown Status = iota
	// Pending is the initial state of controls and records.
	Pending
	// AwaitingRelease marks a released control whose records have not started yet.
	AwaitingRelease
	// InProgress marks active separation work.
	InProgress
	// Completed is final. Nothing leaves it.
	Completed
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:         "Unknown",
		Pending:         "Pending",
		AwaitingRelease: "AwaitingRelease",
		InProgress:      "InProgress",
		Completed:       "Completed",
	}
}

// String implements fmt.Stringer. Invalid values read as "Unknown".
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// ParseStatus maps a status name back to its value.
func ParseStatus(name string) (Status, error) {
	for status, str := range getStatusStrings() {
		if status != Unknown && str == name {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", name))
}

// ValidateForControl accepts the four control states.
func (s Status) ValidateForControl() error {
	switch s {
	case Pending, AwaitingRelease, InProgress, Completed:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("control status", fmt.Errorf("%d is not a valid control status", s))
	}
}

// ValidateForRecord accepts the three record states.
func (s Status) ValidateForRecord() error {
	switch s {
	case Pending, InProgress, Completed:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("record status", fmt.Errorf("%d is not a valid record status", s))
	}
}

// Action is a lifecycle verb applied to a control or a record.
type Action int

const (
	// ActionRelease queues a control for separation work.
	ActionRelease Action = iota + 1
	// ActionBegin moves a control into InProgress when its first record starts.
	ActionBegin
	// ActionStart starts separating a cargo record.
	ActionStart
	// ActionComplete finishes a record, or a control through cascade.
	ActionComplete
)

// String returns the verb used in error messages.
func (a Action) String() string {
	switch a {
	case ActionRelease:
		return "release"
	case ActionBegin:
		return "begin"
	case ActionStart:
		return "start"
	case ActionComplete:
		return "complete"
	default:
		return "unknown action"
	}
}

// transitionTable maps state × action to the next state. Missing entries are rejections.
type transitionTable map[Status]map[Action]Status

//nolint:exhaustive // absent states and actions are rejected
var controlTransitions = transitionTable{
	Pending:         {ActionRelease: AwaitingRelease},
	AwaitingRelease: {ActionBegin: InProgress},
	InProgress:      {ActionBegin: InProgress, ActionComplete: Completed},
}

//nolint:exhaustive // absent states and actions are rejected
var recordTransitions = transitionTable{
	Pending:    {ActionStart: InProgress, ActionComplete: Completed},
	InProgress: {ActionComplete: Completed},
}

func (t transitionTable) next(subject string, from Status, action Action) (Status, error) {
	if to, ok := t[from][action]; ok {
		return to, nil
	}
	return Unknown, errs.NewIllegalTransitionError(subject, from.String(), action.String())
}

// ControlTransition returns the state a control reaches from "from" by "action",
// or an IllegalTransitionError.
func ControlTransition(from Status, action Action) (Status, error) {
	return controlTransitions.next(controlSubject, from, action)
}

// RecordTransition returns the state a cargo record reaches from "from" by "action",
// or an IllegalTransitionError.
func RecordTransition(from Status, action Action) (Status, error) {
	return recordTransitions.next(recordSubject, from, action)
}
