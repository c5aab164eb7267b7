package separation

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"expedition/internal/core/domain/model/kernel"
	"expedition/internal/pkg/errs"
	"expedition/internal/pkg/guard"
)

// NotInformed is stored in free-text operational fields that were edited to an empty value.
const NotInformed = "Não informado"

const (
	recordSubject = "cargo record"

	maxCheckerLength        = 100
	maxPickersLength        = 255
	maxTransportOrderLength = 10
	maxDockBoxLength        = 3
)

var (
	// ErrCargoRecordIsNotConstructed is returned when a CargoRecord was not built by the
	// control or by RestoreCargoRecord.
	ErrCargoRecordIsNotConstructed = errors.New("CargoRecord must be created via its control or RestoreCargoRecord")
)

// Documents holds the four paperwork flags tracked for a cargo record.
type Documents struct {
	ConferenceSummary bool
	DriverSummary     bool
	CDLabels          bool
	LoadGenerated     bool
}

// CargoMirror carries the cargo item fields a record mirrors.
type CargoMirror struct {
	CargoItemID kernel.UUID
	CargoNumber string
	Seq         int
	Deliveries  int
	Mode        string
}

// RecordSnapshot is the full persisted state of a cargo record.
type RecordSnapshot struct {
	ID             kernel.UUID
	CargoItemID    kernel.UUID
	CargoNumber    string
	Seq            int
	Deliveries     int
	Mode           string
	Status         Status
	Assigned       bool
	Finalized      bool
	Checker        string
	Pickers        string
	TransportOrder string
	DockBox        string
	Documents      Documents
	StartedAt      *time.Time
}

// RecordEdit is a partial update of the operational fields of a cargo record.
// Nil fields are left untouched. Blank text is stored as NotInformed, except the
// transport order which is stored empty.
type RecordEdit struct {
	Checker           *string
	Pickers           *string
	TransportOrder    *string
	DockBox           *string
	ConferenceSummary *bool
	DriverSummary     *bool
	CDLabels          *bool
	LoadGenerated     *bool
}

// CargoRecord is the separation record of one cargo item. It is an entity inside the
// Control aggregate and is only mutated through the control.
type CargoRecord struct {
	id          kernel.UUID
	cargoItemID kernel.UUID
	cargoNumber string
	seq         int
	deliveries  int
	mode        string

	status    Status
	assigned  bool
	finalized bool
	startedAt *time.Time

	checker        string
	pickers        string
	transportOrder string
	dockBox        string
	documents      Documents

	guard guard.ConstructorGuard
}

func newCargoRecord(m CargoMirror) (*CargoRecord, error) {
	r := &CargoRecord{
		id:             kernel.NewUUID(),
		status:         Pending,
		checker:        NotInformed,
		pickers:        NotInformed,
		dockBox:        NotInformed,
		transportOrder: "",
		guard:          guard.NewConstructorGuard(),
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	r.applyMirror(m)
	return r, nil
}

// RestoreCargoRecord rebuilds a record from storage.
//
// Rules:
//   - ids must be valid and the mirrored fields well-formed
//   - status must be a record status
//   - finalized is set exactly when status is Completed
//   - an InProgress record is assigned
func RestoreCargoRecord(s RecordSnapshot) (*CargoRecord, error) {
	m := CargoMirror{
		CargoItemID: s.CargoItemID,
		CargoNumber: s.CargoNumber,
		Seq:         s.Seq,
		Deliveries:  s.Deliveries,
		Mode:        s.Mode,
	}
	if err := errors.Join(s.ID.Validate(), m.validate(), s.Status.ValidateForRecord()); err != nil {
		return nil, err
	}
	if s.Finalized != (s.Status == Completed) {
		return nil, errs.NewValueIsInvalidErrorWithCause("finalized",
			fmt.Errorf("finalized=%t does not match status %s", s.Finalized, s.Status))
	}
	if s.Status == InProgress && !s.Assigned {
		return nil, errs.NewValueIsInvalidErrorWithCause("assigned",
			fmt.Errorf("record %s is in progress but not assigned", s.ID))
	}

	r := &CargoRecord{
		id:             s.ID,
		status:         s.Status,
		assigned:       s.Assigned,
		finalized:      s.Finalized,
		checker:        s.Checker,
		pickers:        s.Pickers,
		transportOrder: s.TransportOrder,
		dockBox:        s.DockBox,
		documents:      s.Documents,
		guard:          guard.NewConstructorGuard(),
	}
	if s.StartedAt != nil {
		t := s.StartedAt.UTC()
		r.startedAt = &t
	}
	r.applyMirror(m)
	return r, nil
}

// Validate reports whether the record was properly constructed.
func (r *CargoRecord) Validate() error {
	if r == nil {
		return ErrCargoRecordIsNotConstructed
	}
	return r.guard.Validate(ErrCargoRecordIsNotConstructed)
}

func (r *CargoRecord) ID() kernel.UUID          { return r.id }
func (r *CargoRecord) CargoItemID() kernel.UUID { return r.cargoItemID }
func (r *CargoRecord) CargoNumber() string      { return r.cargoNumber }
func (r *CargoRecord) Seq() int                 { return r.seq }
func (r *CargoRecord) Deliveries() int          { return r.deliveries }
func (r *CargoRecord) Mode() string             { return r.mode }
func (r *CargoRecord) Status() Status           { return r.status }
func (r *CargoRecord) IsAssigned() bool         { return r.assigned }
func (r *CargoRecord) IsFinalized() bool        { return r.finalized }
func (r *CargoRecord) Checker() string          { return r.checker }
func (r *CargoRecord) Pickers() string          { return r.pickers }
func (r *CargoRecord) TransportOrder() string   { return r.transportOrder }
func (r *CargoRecord) DockBox() string          { return r.dockBox }
func (r *CargoRecord) Documents() Documents     { return r.documents }

// StartedAt returns when separation of this cargo began, or nil.
func (r *CargoRecord) StartedAt() *time.Time {
	if r.startedAt == nil {
		return nil
	}
	t := *r.startedAt
	return &t
}

// Snapshot returns the full state for persistence.
func (r *CargoRecord) Snapshot() RecordSnapshot {
	return RecordSnapshot{
		ID:             r.id,
		CargoItemID:    r.cargoItemID,
		CargoNumber:    r.cargoNumber,
		Seq:            r.seq,
		Deliveries:     r.deliveries,
		Mode:           r.mode,
		Status:         r.status,
		Assigned:       r.assigned,
		Finalized:      r.finalized,
		Checker:        r.checker,
		Pickers:        r.pickers,
		TransportOrder: r.transportOrder,
		DockBox:        r.dockBox,
		Documents:      r.documents,
		StartedAt:      r.StartedAt(),
	}
}

// mirror copies the cargo item fields and reports whether anything differed.
// Operational fields and status are never touched.
func (r *CargoRecord) mirror(m CargoMirror) (bool, error) {
	if err := m.validate(); err != nil {
		return false, err
	}
	changed := r.cargoNumber != m.CargoNumber ||
		r.seq != m.Seq ||
		r.deliveries != m.Deliveries ||
		r.mode != m.Mode
	r.applyMirror(m)
	return changed, nil
}

func (r *CargoRecord) applyMirror(m CargoMirror) {
	r.cargoItemID = m.CargoItemID
	r.cargoNumber = m.CargoNumber
	r.seq = m.Seq
	r.deliveries = m.Deliveries
	r.mode = m.Mode
}

func (r *CargoRecord) start(now time.Time) error {
	next, err := RecordTransition(r.status, ActionStart)
	if err != nil {
		return err
	}
	r.status = next
	r.assigned = true
	if r.startedAt == nil {
		t := now.UTC()
		r.startedAt = &t
	}
	return nil
}

func (r *CargoRecord) complete() error {
	next, err := RecordTransition(r.status, ActionComplete)
	if err != nil {
		return err
	}
	r.status = next
	r.finalized = true
	return nil
}

func (r *CargoRecord) apply(e RecordEdit) (bool, error) {
	checker, err := editText("checker", e.Checker, r.checker, maxCheckerLength, NotInformed)
	if err != nil {
		return false, err
	}
	pickers, err := editText("pickers", e.Pickers, r.pickers, maxPickersLength, NotInformed)
	if err != nil {
		return false, err
	}
	order, err := editText("transport order", e.TransportOrder, r.transportOrder, maxTransportOrderLength, "")
	if err != nil {
		return false, err
	}
	dock, err := editText("dock box", e.DockBox, r.dockBox, maxDockBoxLength, NotInformed)
	if err != nil {
		return false, err
	}

	docs := r.documents
	editFlag(&docs.ConferenceSummary, e.ConferenceSummary)
	editFlag(&docs.DriverSummary, e.DriverSummary)
	editFlag(&docs.CDLabels, e.CDLabels)
	editFlag(&docs.LoadGenerated, e.LoadGenerated)

	changed := checker != r.checker ||
		pickers != r.pickers ||
		order != r.transportOrder ||
		dock != r.dockBox ||
		docs != r.documents

	r.checker, r.pickers, r.transportOrder, r.dockBox, r.documents = checker, pickers, order, dock, docs
	return changed, nil
}

// editText returns the new value of a text field. The placeholder is exempt from the
// length limit since the dock box is shorter than it.
func editText(name string, value *string, current string, maxLen int, placeholder string) (string, error) {
	if value == nil {
		return current, nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return placeholder, nil
	}
	if n := utf8.RuneCountInString(v); n > maxLen {
		return "", errs.NewValueIsOutOfRangeError(name+" length", n, 0, maxLen)
	}
	return v, nil
}

func editFlag(dst *bool, value *bool) {
	if value != nil {
		*dst = *value
	}
}

func (m CargoMirror) validate() error {
	var problems []error
	if err := m.CargoItemID.Validate(); err != nil {
		problems = append(problems, err)
	}
	if strings.TrimSpace(m.CargoNumber) == "" {
		problems = append(problems, errs.NewValueIsRequiredError("cargo number"))
	}
	if m.Seq < 1 {
		problems = append(problems, errs.NewValueIsOutOfRangeError("seq", m.Seq, 1, "unbounded"))
	}
	if m.Deliveries < 0 {
		problems = append(problems, errs.NewValueIsOutOfRangeError("deliveries", m.Deliveries, 0, "unbounded"))
	}
	return errors.Join(problems...)
}
