// Package guard provides ConstructorGuard, a marker embedded in value objects, entities
// and commands to tell a constructor-built value from a zero value.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when no specific error is supplied.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard records whether the enclosing value was built by its constructor.
// The zero value reports "not constructed".
//
// Example:
//
//	var ErrReleaseCommandIsNotConstructed = errors.New("ReleaseControlCommand must be created via NewReleaseControlCommand")
//
//	type ReleaseControlCommand struct {
//	    controlID kernel.UUID
//	    guard     guard.ConstructorGuard
//	}
//
//	func (c ReleaseControlCommand) Validate() error {
//	    return c.guard.Validate(ErrReleaseCommandIsNotConstructed)
//	}
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard returns a guard marked as constructed.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns nil for a constructed guard. Otherwise it returns validationError,
// or ErrDefaultConstructorGuard when validationError is nil.
func (g ConstructorGuard) Validate(validationError error) error {
	if validationError == nil {
		validationError = ErrDefaultConstructorGuard
	}
	if !g.isConstructed {
		return validationError
	}
	return nil
}
