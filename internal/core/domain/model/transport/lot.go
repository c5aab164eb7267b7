package transport

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"expedition/internal/core/domain/model/kernel"
	"expedition/internal/pkg/errs"
	"expedition/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var (
	// ErrLotIsNotConstructed is returned when a Lot was not built by RestoreLot.
	ErrLotIsNotConstructed = errors.New("Lot must be created via RestoreLot")
	// ErrLotCodeIsRequired is returned for a blank external code.
	ErrLotCodeIsRequired = errs.NewValueIsRequiredError("lot code")
	// ErrDestinationIsRequired is returned for a blank destination.
	ErrDestinationIsRequired = errs.NewValueIsRequiredError("destination")
	// ErrDateIsRequired is returned for a zero lot date.
	ErrDateIsRequired = errs.NewValueIsRequiredError("date")
)

// LotDetails carries the descriptive attributes of a lot. They are not used by
// the synchronization rules, only mirrored into listings and reports.
type LotDetails struct {
	Destination string
	State       string
	Weight      decimal.Decimal
	Volume      decimal.Decimal
	Date        time.Time
	Note        string
	Vehicle     VehicleType
}

// Lot is a transport lot: one truck load carrying one or more cargo items.
//
// Invariants:
//   - code and destination are not blank
//   - weight and volume are not negative
//   - cargo numbers and sequence numbers are unique within the lot
type Lot struct {
	id         kernel.UUID
	code       string
	details    LotDetails
	blockState BlockState
	items      []*CargoItem
	guard      guard.ConstructorGuard
}

// RestoreLot rebuilds a lot snapshot from the transport store. Errors of the lot fields
// are joined. Cargo items are checked in order and the first bad item stops the check:
// a repeated cargo number is a ValueIsInvalidError, a repeated seq a DuplicateSequenceError.
func RestoreLot(
	id kernel.UUID,
	code string,
	details LotDetails,
	blockState BlockState,
	items []*CargoItem,
) (*Lot, error) {
	lot := &Lot{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		lot.setID(id),
		lot.setCode(code),
		lot.setDetails(details),
		lot.setBlockState(blockState),
		lot.setItems(items),
	); err != nil {
		return nil, err
	}

	return lot, nil
}

// Validate reports whether the lot was built by RestoreLot.
func (l *Lot) Validate() error {
	if l == nil {
		return ErrLotIsNotConstructed
	}
	return l.guard.Validate(ErrLotIsNotConstructed)
}

// ID returns the lot identifier.
func (l *Lot) ID() kernel.UUID {
	return l.id
}

// Code returns the external lot code.
func (l *Lot) Code() string {
	return l.code
}

// Details returns the descriptive attributes.
func (l *Lot) Details() LotDetails {
	return l.details
}

// BlockState returns RELEASED or BLOCKED.
func (l *Lot) BlockState() BlockState {
	return l.blockState
}

// IsBlocked reports whether the lot is BLOCKED.
func (l *Lot) IsBlocked() bool {
	return l.blockState == Blocked
}

// Items returns a copy of the cargo items.
func (l *Lot) Items() []*CargoItem {
	out := make([]*CargoItem, len(l.items))
	copy(out, l.items)
	return out
}

func (l *Lot) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	l.id = id
	return nil
}

func (l *Lot) setCode(code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return ErrLotCodeIsRequired
	}
	l.code = code
	return nil
}

func (l *Lot) setDetails(d LotDetails) error {
	d.Destination = strings.TrimSpace(d.Destination)
	d.State = strings.ToUpper(strings.TrimSpace(d.State))

	var problems []error
	if d.Destination == "" {
		problems = append(problems, ErrDestinationIsRequired)
	}
	if d.State != "" && len(d.State) != 2 {
		problems = append(problems, errs.NewValueIsInvalidErrorWithCause("state", fmt.Errorf("%q is not a two letter state", d.State)))
	}
	if d.Weight.IsNegative() {
		problems = append(problems, errs.NewValueIsInvalidErrorWithCause("weight", fmt.Errorf("%s is negative", d.Weight)))
	}
	if d.Volume.IsNegative() {
		problems = append(problems, errs.NewValueIsInvalidErrorWithCause("volume", fmt.Errorf("%s is negative", d.Volume)))
	}
	if d.Date.IsZero() {
		problems = append(problems, ErrDateIsRequired)
	}
	if len(problems) > 0 {
		return errors.Join(problems...)
	}

	d.Vehicle = normalizeVehicle(d.Vehicle)
	l.details = d
	return nil
}

func (l *Lot) setBlockState(s BlockState) error {
	if err := s.Validate(); err != nil {
		return err
	}
	l.blockState = s
	return nil
}

func (l *Lot) setItems(items []*CargoItem) error {
	numbers := make(map[string]struct{}, len(items))
	seqs := make(map[int]struct{}, len(items))

	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
		if _, dup := numbers[item.CargoNumber()]; dup {
			return errs.NewValueIsInvalidErrorWithCause("cargo number",
				fmt.Errorf("%s appears twice in lot %s", item.CargoNumber(), l.code))
		}
		if _, dup := seqs[item.Seq()]; dup {
			return errs.NewDuplicateSequenceError(l.code, item.Seq())
		}
		numbers[item.CargoNumber()] = struct{}{}
		seqs[item.Seq()] = struct{}{}
	}

	l.items = make([]*CargoItem, len(items))
	copy(l.items, items)
	return nil
}
