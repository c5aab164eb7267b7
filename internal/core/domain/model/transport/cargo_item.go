package transport

import (
	"errors"
	"strings"

	"expedition/internal/core/domain/model/kernel"
	"expedition/internal/pkg/errs"
	"expedition/internal/pkg/guard"
)

const (
	// defaultMode is the mode code the transport subsystem uses when none is given.
	defaultMode = "-"
	// maxSequence bounds sequence numbers the way the transport forms do.
	maxSequence = 999
)

var (
	// ErrCargoItemIsNotConstructed is returned when a CargoItem was not built by RestoreCargoItem.
	ErrCargoItemIsNotConstructed = errors.New("CargoItem must be created via RestoreCargoItem")
	// ErrCargoNumberIsRequired is returned for a blank cargo number.
	ErrCargoNumberIsRequired = errs.NewValueIsRequiredError("cargo number")
)

// CargoItem is one shipment line of a transport lot.
type CargoItem struct {
	id          kernel.UUID
	cargoNumber string
	seq         int
	deliveries  int
	mode        string
	guard       guard.ConstructorGuard
}

// RestoreCargoItem rebuilds a cargo item from the transport store.
//
// Rules:
//   - id must be valid
//   - cargoNumber must not be blank
//   - seq must be within 1..999
//   - deliveries below 1 are stored as 1
//   - an empty mode is stored as "-"
func RestoreCargoItem(id kernel.UUID, cargoNumber string, seq, deliveries int, mode string) (*CargoItem, error) {
	item := &CargoItem{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		item.setID(id),
		item.setCargoNumber(cargoNumber),
		item.setSeq(seq),
	); err != nil {
		return nil, err
	}

	item.deliveries = max(deliveries, 1)
	item.mode = strings.TrimSpace(mode)
	if item.mode == "" {
		item.mode = defaultMode
	}

	return item, nil
}

// Validate reports whether the item was built by RestoreCargoItem.
func (c *CargoItem) Validate() error {
	if c == nil {
		return ErrCargoItemIsNotConstructed
	}
	return c.guard.Validate(ErrCargoItemIsNotConstructed)
}

// ID returns the cargo item identifier.
func (c *CargoItem) ID() kernel.UUID {
	return c.id
}

// CargoNumber returns the cargo ("carga") number.
func (c *CargoItem) CargoNumber() string {
	return c.cargoNumber
}

// Seq returns the loading sequence within the lot.
func (c *CargoItem) Seq() int {
	return c.seq
}

// Deliveries returns the number of deliveries in this cargo.
func (c *CargoItem) Deliveries() int {
	return c.deliveries
}

// Mode returns the mode code.
func (c *CargoItem) Mode() string {
	return c.mode
}

func (c *CargoItem) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.id = id
	return nil
}

func (c *CargoItem) setCargoNumber(number string) error {
	number = strings.TrimSpace(number)
	if number == "" {
		return ErrCargoNumberIsRequired
	}
	c.cargoNumber = number
	return nil
}

func (c *CargoItem) setSeq(seq int) error {
	if seq < 1 || seq > maxSequence {
		return errs.NewValueIsOutOfRangeError("seq", seq, 1, maxSequence)
	}
	c.seq = seq
	return nil
}
