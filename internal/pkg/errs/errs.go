package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. Every structured error in this package unwraps to one of them,
// so callers classify failures with errors.Is.
var (
	ErrValueIsRequired         = errors.New("value is required")
	ErrValueIsInvalid          = errors.New("value is invalid")
	ErrValueIsOutOfRange       = errors.New("value is out of range")
	ErrObjectNotFound          = errors.New("object not found")
	ErrDuplicateAggregate      = errors.New("duplicate aggregate")
	ErrDuplicateSequence       = errors.New("duplicate sequence")
	ErrIllegalTransition       = errors.New("illegal transition")
	ErrSynchronizationConflict = errors.New("synchronization conflict")
)

// ValueIsRequiredError reports a missing mandatory value.
type ValueIsRequiredError struct {
	ParamName string
	Cause     error
}

// NewValueIsRequiredError creates a ValueIsRequiredError for paramName.
func NewValueIsRequiredError(paramName string) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName}
}

// NewValueIsRequiredErrorWithCause creates a ValueIsRequiredError that carries the underlying cause.
func NewValueIsRequiredErrorWithCause(paramName string, cause error) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsRequiredError) Error() string {
	return withCause(fmt.Sprintf("%s: %s", ErrValueIsRequired, e.ParamName), e.Cause)
}

func (e *ValueIsRequiredError) Unwrap() error {
	return ErrValueIsRequired
}

// ValueIsInvalidError reports a value that is present but unacceptable.
type ValueIsInvalidError struct {
	ParamName string
	Cause     error
}

// NewValueIsInvalidError creates a ValueIsInvalidError for paramName.
func NewValueIsInvalidError(paramName string) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName}
}

// NewValueIsInvalidErrorWithCause creates a ValueIsInvalidError that carries the underlying cause.
func NewValueIsInvalidErrorWithCause(paramName string, cause error) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsInvalidError) Error() string {
	return withCause(fmt.Sprintf("%s: %s", ErrValueIsInvalid, e.ParamName), e.Cause)
}

func (e *ValueIsInvalidError) Unwrap() error {
	return ErrValueIsInvalid
}

// ValueIsOutOfRangeError reports a value outside [Min, Max].
type ValueIsOutOfRangeError struct {
	ParamName string
	Value     any
	Min       any
	Max       any
	Cause     error
}

// NewValueIsOutOfRangeError creates a ValueIsOutOfRangeError.
func NewValueIsOutOfRangeError(paramName string, value, minValue, maxValue any) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{ParamName: paramName, Value: value, Min: minValue, Max: maxValue}
}

// NewValueIsOutOfRangeErrorWithCause creates a ValueIsOutOfRangeError that carries the underlying cause.
func NewValueIsOutOfRangeErrorWithCause(
	paramName string,
	value, minValue, maxValue any,
	cause error,
) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{ParamName: paramName, Value: value, Min: minValue, Max: maxValue, Cause: cause}
}

func (e *ValueIsOutOfRangeError) Error() string {
	msg := fmt.Sprintf("%s: %v is %s, min value is %v, max value is %v",
		ErrValueIsInvalid, sanitize(e.Value), e.ParamName, e.Min, e.Max)
	return withCause(msg, e.Cause)
}

func (e *ValueIsOutOfRangeError) Unwrap() error {
	return ErrValueIsOutOfRange
}

// ObjectNotFoundError reports that an addressed object does not exist.
type ObjectNotFoundError struct {
	ParamName string
	ID        any
	Cause     error
}

// NewObjectNotFoundError creates an ObjectNotFoundError for the object kind paramName.
func NewObjectNotFoundError(paramName string, id any) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id}
}

// NewObjectNotFoundErrorWithCause creates an ObjectNotFoundError that carries the underlying cause.
func NewObjectNotFoundErrorWithCause(paramName string, id any, cause error) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id, Cause: cause}
}

func (e *ObjectNotFoundError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: param is: %s, ID is: %s (cause: %v)", ErrObjectNotFound, e.ParamName, e.ID, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrObjectNotFound, e.ID)
}

func (e *ObjectNotFoundError) Unwrap() error {
	return ErrObjectNotFound
}

// DuplicateAggregateError reports a second aggregate for an owner that already has one,
// e.g. a second separation control for the same transport lot.
type DuplicateAggregateError struct {
	Aggregate string
	OwnerID   any
	Cause     error
}

// NewDuplicateAggregateError creates a DuplicateAggregateError.
func NewDuplicateAggregateError(aggregate string, ownerID any) *DuplicateAggregateError {
	return &DuplicateAggregateError{Aggregate: aggregate, OwnerID: ownerID}
}

// NewDuplicateAggregateErrorWithCause creates a DuplicateAggregateError that carries the underlying cause.
func NewDuplicateAggregateErrorWithCause(aggregate string, ownerID any, cause error) *DuplicateAggregateError {
	return &DuplicateAggregateError{Aggregate: aggregate, OwnerID: ownerID, Cause: cause}
}

func (e *DuplicateAggregateError) Error() string {
	return withCause(fmt.Sprintf("%s: %s already exists for %v", ErrDuplicateAggregate, e.Aggregate, e.OwnerID), e.Cause)
}

func (e *DuplicateAggregateError) Unwrap() error {
	return ErrDuplicateAggregate
}

// DuplicateSequenceError reports two child records sharing a sequence number under one owner.
type DuplicateSequenceError struct {
	OwnerID  any
	Sequence int
	Cause    error
}

// NewDuplicateSequenceError creates a DuplicateSequenceError.
func NewDuplicateSequenceError(ownerID any, sequence int) *DuplicateSequenceError {
	return &DuplicateSequenceError{OwnerID: ownerID, Sequence: sequence}
}

// NewDuplicateSequenceErrorWithCause creates a DuplicateSequenceError that carries the underlying cause.
// A zero sequence means the offending number is unknown (e.g. reported by the store).
func NewDuplicateSequenceErrorWithCause(ownerID any, sequence int, cause error) *DuplicateSequenceError {
	return &DuplicateSequenceError{OwnerID: ownerID, Sequence: sequence, Cause: cause}
}

func (e *DuplicateSequenceError) Error() string {
	msg := fmt.Sprintf("%s: sequence %d is used twice in %v", ErrDuplicateSequence, e.Sequence, e.OwnerID)
	if e.Sequence == 0 {
		msg = fmt.Sprintf("%s: sequence is used twice in %v", ErrDuplicateSequence, e.OwnerID)
	}
	return withCause(msg, e.Cause)
}

func (e *DuplicateSequenceError) Unwrap() error {
	return ErrDuplicateSequence
}

// IllegalTransitionError reports a lifecycle action issued from a state that does not permit it.
type IllegalTransitionError struct {
	Subject string
	From    string
	Action  string
	Cause   error
}

// NewIllegalTransitionError creates an IllegalTransitionError.
func NewIllegalTransitionError(subject, from, action string) *IllegalTransitionError {
	return &IllegalTransitionError{Subject: subject, From: from, Action: action}
}

// NewIllegalTransitionErrorWithCause creates an IllegalTransitionError that carries the underlying cause.
func NewIllegalTransitionErrorWithCause(subject, from, action string, cause error) *IllegalTransitionError {
	return &IllegalTransitionError{Subject: subject, From: from, Action: action, Cause: cause}
}

func (e *IllegalTransitionError) Error() string {
	return withCause(fmt.Sprintf("%s: cannot %s %s in status %s", ErrIllegalTransition, e.Action, e.Subject, e.From), e.Cause)
}

func (e *IllegalTransitionError) Unwrap() error {
	return ErrIllegalTransition
}

// SynchronizationConflictError reports that a concurrent call on the same aggregate
// blocked or aborted this one.
type SynchronizationConflictError struct {
	Subject string
	ID      any
	Cause   error
}

// NewSynchronizationConflictError creates a SynchronizationConflictError.
func NewSynchronizationConflictError(subject string, id any) *SynchronizationConflictError {
	return &SynchronizationConflictError{Subject: subject, ID: id}
}

// NewSynchronizationConflictErrorWithCause creates a SynchronizationConflictError that carries the underlying cause.
func NewSynchronizationConflictErrorWithCause(subject string, id any, cause error) *SynchronizationConflictError {
	return &SynchronizationConflictError{Subject: subject, ID: id, Cause: cause}
}

func (e *SynchronizationConflictError) Error() string {
	return withCause(fmt.Sprintf("%s: %s %v", ErrSynchronizationConflict, e.Subject, e.ID), e.Cause)
}

func (e *SynchronizationConflictError) Unwrap() error {
	return ErrSynchronizationConflict
}

func withCause(msg string, cause error) string {
	if cause == nil {
		return msg
	}
	return fmt.Sprintf("%s (cause: %v)", msg, cause)
}

// sanitize keeps user supplied values on a single log line.
func sanitize(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	return strings.NewReplacer("\n", " ", "\r", " ").Replace(s)
}
