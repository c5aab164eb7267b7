package transport

import (
	"fmt"

	"expedition/internal/pkg/errs"
)

// BlockState tells whether a lot may be worked on by the warehouse.
type BlockState string

const (
	// Released lots carry an active separation.
	Released BlockState = "RELEASED"
	// Blocked lots have no active separation.
	Blocked BlockState = "BLOCKED"
)

// Validate rejects anything but RELEASED and BLOCKED.
func (s BlockState) Validate() error {
	switch s {
	case Released, Blocked:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("block state", fmt.Errorf("%q is not a valid block state", string(s)))
	}
}

// String implements fmt.Stringer.
func (s BlockState) String() string {
	return string(s)
}
