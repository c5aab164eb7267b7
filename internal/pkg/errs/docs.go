// Package errs provides the error types shared by the separation service.
//
// Validation failures:
//   - ValueIsRequiredError, ValueIsInvalidError, ValueIsOutOfRangeError
//
// Lookup failures:
//   - ObjectNotFoundError: a control, record or transport lot that does not exist
//
// Lifecycle and consistency failures:
//   - DuplicateAggregateError: a second separation control for a lot that already owns one
//   - DuplicateSequenceError: two records under one control sharing a sequence number
//   - IllegalTransitionError: a lifecycle action issued from a state that forbids it
//   - SynchronizationConflictError: a concurrent call on the same lot or control won the lock
//
// Each type has a sentinel (ErrValueIsRequired, ErrIllegalTransition, ...), a constructor
// with and without a cause, and an Unwrap method returning the sentinel, so callers
// classify errors with errors.Is and inspect details with errors.As.
package errs
