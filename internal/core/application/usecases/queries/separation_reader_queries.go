package queries

import (
	"errors"

	"expedition/internal/core/domain/model/kernel"
	"expedition/internal/pkg/guard"
)

var (
	ErrGetControlQueryIsNotConstructed = errors.New(
		"GetControlQuery must be created via NewGetControlQuery constructor",
	)
	ErrListControlRecordsQueryIsNotConstructed = errors.New(
		"ListControlRecordsQuery must be created via NewListControlRecordsQuery constructor",
	)
	ErrGetRecordQueryIsNotConstructed = errors.New(
		"GetRecordQuery must be created via NewGetRecordQuery constructor",
	)
)

// GetControlQuery reads one control with its lot data.
type GetControlQuery struct {
	controlID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetControlQuery creates the query.
func NewGetControlQuery(controlID kernel.UUID) (GetControlQuery, error) {
	if err := controlID.Validate(); err != nil {
		return GetControlQuery{}, err
	}
	return GetControlQuery{controlID: controlID, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetControlQuery) Validate() error {
	return q.guard.Validate(ErrGetControlQueryIsNotConstructed)
}

// ControlID returns the requested control.
func (q GetControlQuery) ControlID() kernel.UUID {
	return q.controlID
}

// ListControlRecordsQuery reads the records of one control in loading order.
type ListControlRecordsQuery struct {
	controlID kernel.UUID

	guard guard.ConstructorGuard
}

// NewListControlRecordsQuery creates the query.
func NewListControlRecordsQuery(controlID kernel.UUID) (ListControlRecordsQuery, error) {
	if err := controlID.Validate(); err != nil {
		return ListControlRecordsQuery{}, err
	}
	return ListControlRecordsQuery{controlID: controlID, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q ListControlRecordsQuery) Validate() error {
	return q.guard.Validate(ErrListControlRecordsQueryIsNotConstructed)
}

// ControlID returns the control whose records are listed.
func (q ListControlRecordsQuery) ControlID() kernel.UUID {
	return q.controlID
}

// GetRecordQuery reads one cargo record.
type GetRecordQuery struct {
	recordID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetRecordQuery creates the query.
func NewGetRecordQuery(recordID kernel.UUID) (GetRecordQuery, error) {
	if err := recordID.Validate(); err != nil {
		return GetRecordQuery{}, err
	}
	return GetRecordQuery{recordID: recordID, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetRecordQuery) Validate() error {
	return q.guard.Validate(ErrGetRecordQueryIsNotConstructed)
}

// RecordID returns the requested record.
func (q GetRecordQuery) RecordID() kernel.UUID {
	return q.recordID
}
