package ports

import (
	"context"

	"expedition/internal/core/domain/model/kernel"
	"expedition/internal/core/domain/model/separation"
)

// SeparationControlRepository persists separation controls together with their
// cargo records.
//
// Store-level rules surface as domain errors:
//   - a second control for a lot is errs.DuplicateAggregateError
//   - a repeated (control, seq) pair is errs.DuplicateSequenceError
//   - lock timeouts, deadlocks and serialization failures are errs.SynchronizationConflictError
type SeparationControlRepository interface {
	// Add inserts a new control and all of its records.
	Add(ctx context.Context, control *separation.Control) error

	// Update writes exactly the rows listed by control.Changes(): stale records are
	// deleted first, then changed records updated, then new records inserted.
	// Nothing is written when the changes are empty.
	Update(ctx context.Context, control *separation.Control) error

	// Delete removes a control and its records.
	Delete(ctx context.Context, id kernel.UUID) error

	// Get returns a control with its records, without locking.
	Get(ctx context.Context, id kernel.UUID) (*separation.Control, error)

	// GetForUpdate returns a control with its records and locks the control row.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*separation.Control, error)

	// GetByLotForUpdate returns the control of a lot and locks its row.
	// Returns errs.ObjectNotFoundError when the lot has no control.
	GetByLotForUpdate(ctx context.Context, lotID kernel.UUID) (*separation.Control, error)

	// GetByRecordForUpdate returns the control owning a record and locks the control row.
	GetByRecordForUpdate(ctx context.Context, recordID kernel.UUID) (*separation.Control, error)

	// FindSettleable lists ids of InProgress controls whose records are all Completed.
	FindSettleable(ctx context.Context, limit int) ([]kernel.UUID, error)
}
