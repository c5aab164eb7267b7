package separation

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"expedition/internal/core/domain/model/kernel"
	"expedition/internal/pkg/errs"
	"expedition/internal/pkg/guard"
)

const controlSubject = "separation control"

var (
	// ErrControlIsNotConstructed is returned when a Control was not built by NewControl
	// or RestoreControl.
	ErrControlIsNotConstructed = errors.New("Control must be created via NewControl or RestoreControl")
)

// ControlSnapshot is the persisted state of a control without its records.
type ControlSnapshot struct {
	ID        kernel.UUID
	LotID     kernel.UUID
	Status    Status
	Released  bool
	StartedAt *time.Time
	Completed bool
	CreatedAt time.Time
}

// Changes lists what a unit of work must write for a loaded control.
type Changes struct {
	// ControlChanged is set when the control row itself differs from storage.
	ControlChanged bool
	// Added records are not stored yet.
	Added []*CargoRecord
	// Updated records are stored and differ from storage.
	Updated []*CargoRecord
	// Removed holds ids of stored records that must be deleted.
	Removed []kernel.UUID
}

// IsEmpty reports whether nothing needs to be written.
func (c Changes) IsEmpty() bool {
	return !c.ControlChanged && len(c.Added) == 0 && len(c.Updated) == 0 && len(c.Removed) == 0
}

// Control is the separation control aggregate of one transport lot. It owns the
// cargo records of the lot and is the only way to change them.
//
// Invariants:
//   - released is set exactly when status is AwaitingRelease, InProgress or Completed
//   - completed is set exactly when status is Completed
//   - record sequence numbers and cargo items are unique within the control
//   - the control completes in the same step that completes its last pending record;
//     a control without records never completes
//   - no transition leaves Completed
type Control struct {
	id        kernel.UUID
	lotID     kernel.UUID
	status    Status
	released  bool
	startedAt *time.Time
	completed bool
	createdAt time.Time

	// records are kept ordered by seq.
	records []*CargoRecord

	isNew   bool
	dirty   bool
	added   map[kernel.UUID]struct{}
	updated map[kernel.UUID]struct{}
	removed []kernel.UUID

	guard guard.ConstructorGuard
}

// NewControl creates an empty Pending control for a lot.
//
// The control is reported as new by IsNew until it is marked persisted, so a unit of
// work inserts it instead of updating it.
func NewControl(id, lotID kernel.UUID, now time.Time) (*Control, error) {
	if err := errors.Join(id.Validate(), lotID.Validate()); err != nil {
		return nil, err
	}
	if now.IsZero() {
		return nil, errs.NewValueIsRequiredError("created at")
	}

	c := &Control{
		id:        id,
		lotID:     lotID,
		status:    Pending,
		createdAt: now.UTC(),
		isNew:     true,
		guard:     guard.NewConstructorGuard(),
	}
	c.resetChanges()
	return c, nil
}

// RestoreControl rebuilds a control and its records from storage.
//
// A control that is InProgress while every record is Completed is accepted: the
// next cascade evaluation settles it. A Completed control with unfinished records
// is rejected.
func RestoreControl(s ControlSnapshot, records []*CargoRecord) (*Control, error) {
	if err := errors.Join(s.ID.Validate(), s.LotID.Validate(), s.Status.ValidateForControl()); err != nil {
		return nil, err
	}
	if s.CreatedAt.IsZero() {
		return nil, errs.NewValueIsRequiredError("created at")
	}
	if want := s.Status != Pending; s.Released != want {
		return nil, errs.NewValueIsInvalidErrorWithCause("released",
			fmt.Errorf("released=%t does not match status %s", s.Released, s.Status))
	}
	if s.Completed != (s.Status == Completed) {
		return nil, errs.NewValueIsInvalidErrorWithCause("completed",
			fmt.Errorf("completed=%t does not match status %s", s.Completed, s.Status))
	}

	c := &Control{
		id:        s.ID,
		lotID:     s.LotID,
		status:    s.Status,
		released:  s.Released,
		completed: s.Completed,
		createdAt: s.CreatedAt.UTC(),
		guard:     guard.NewConstructorGuard(),
	}
	if s.StartedAt != nil {
		t := s.StartedAt.UTC()
		c.startedAt = &t
	}

	for _, r := range records {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		if c.status == Completed && r.status != Completed {
			return nil, errs.NewValueIsInvalidErrorWithCause("records",
				fmt.Errorf("control %s is completed but record %s is %s", c.id, r.id, r.status))
		}
	}
	c.records = slices.Clone(records)
	c.sortRecords()
	if err := c.checkUniqueness(); err != nil {
		return nil, err
	}

	c.resetChanges()
	return c, nil
}

// Validate reports whether the control was properly constructed.
func (c *Control) Validate() error {
	if c == nil {
		return ErrControlIsNotConstructed
	}
	return c.guard.Validate(ErrControlIsNotConstructed)
}

// ID returns the control identifier.
func (c *Control) ID() kernel.UUID {
	return c.id
}

// LotID returns the transport lot this control belongs to.
func (c *Control) LotID() kernel.UUID {
	return c.lotID
}

// Status returns the lifecycle state.
func (c *Control) Status() Status {
	return c.status
}

// IsReleased reports whether the control was released for separation.
func (c *Control) IsReleased() bool {
	return c.released
}

// IsCompleted reports whether every record was separated.
func (c *Control) IsCompleted() bool {
	return c.completed
}

// StartedAt returns when the first record started, or nil.
func (c *Control) StartedAt() *time.Time {
	if c.startedAt == nil {
		return nil
	}
	t := *c.startedAt
	return &t
}

// CreatedAt returns the creation time.
func (c *Control) CreatedAt() time.Time {
	return c.createdAt
}

// Records returns the records ordered by seq.
func (c *Control) Records() []*CargoRecord {
	return slices.Clone(c.records)
}

// Record finds a record by id.
func (c *Control) Record(recordID kernel.UUID) (*CargoRecord, error) {
	for _, r := range c.records {
		if r.id.IsEqual(recordID) {
			return r, nil
		}
	}
	return nil, errs.NewObjectNotFoundError(recordSubject, recordID)
}

// Snapshot returns the control row state.
func (c *Control) Snapshot() ControlSnapshot {
	return ControlSnapshot{
		ID:        c.id,
		LotID:     c.lotID,
		Status:    c.status,
		Released:  c.released,
		StartedAt: c.StartedAt(),
		Completed: c.completed,
		CreatedAt: c.createdAt,
	}
}

// IsNew reports whether the control has never been stored.
func (c *Control) IsNew() bool {
	return c.isNew
}

// Changes returns the pending writes since the control was loaded or last persisted.
// For a new control every record is listed as added.
func (c *Control) Changes() Changes {
	ch := Changes{ControlChanged: c.dirty || c.isNew}
	for _, r := range c.records {
		if _, ok := c.added[r.id]; ok || c.isNew {
			ch.Added = append(ch.Added, r)
			continue
		}
		if _, ok := c.updated[r.id]; ok {
			ch.Updated = append(ch.Updated, r)
		}
	}
	ch.Removed = slices.Clone(c.removed)
	return ch
}

// MarkPersisted clears change tracking after a successful write.
func (c *Control) MarkPersisted() {
	c.isNew = false
	c.resetChanges()
}

// Reconcile makes the record set mirror the given cargo items: one record per item,
// mirrored fields refreshed, records of vanished items dropped. Status and
// operational data of surviving records are kept. Completion is re-evaluated
// afterwards since dropping the last unfinished record may finish the control.
//
// Adding cargo to a Completed control is an IllegalTransition.
func (c *Control) Reconcile(items []CargoMirror) error {
	if err := checkMirrors(c.id, items); err != nil {
		return err
	}

	existing := make(map[kernel.UUID]*CargoRecord, len(c.records))
	for _, r := range c.records {
		existing[r.cargoItemID] = r
	}
	if c.status == Completed {
		for _, m := range items {
			if _, ok := existing[m.CargoItemID]; !ok {
				return errs.NewIllegalTransitionErrorWithCause(controlSubject, c.status.String(), "add cargo to",
					fmt.Errorf("cargo %s arrived after separation was completed", m.CargoNumber))
			}
		}
	}

	next := make([]*CargoRecord, 0, len(items))
	seen := make(map[kernel.UUID]struct{}, len(items))
	for _, m := range items {
		seen[m.CargoItemID] = struct{}{}

		if r, ok := existing[m.CargoItemID]; ok {
			changed, err := r.mirror(m)
			if err != nil {
				return err
			}
			if changed {
				c.markUpdated(r.id)
			}
			next = append(next, r)
			continue
		}

		r, err := newCargoRecord(m)
		if err != nil {
			return err
		}
		c.added[r.id] = struct{}{}
		next = append(next, r)
	}

	for _, r := range c.records {
		if _, ok := seen[r.cargoItemID]; ok {
			continue
		}
		if _, ok := c.added[r.id]; ok {
			delete(c.added, r.id)
			continue
		}
		delete(c.updated, r.id)
		c.removed = append(c.removed, r.id)
	}

	c.records = next
	c.sortRecords()
	return c.settle()
}

// Release queues the control for separation. Releasing twice is reported, not rejected.
func (c *Control) Release() (Outcome, error) {
	if c.released {
		return OutcomeAlreadyReleased, nil
	}
	next, err := ControlTransition(c.status, ActionRelease)
	if err != nil {
		return 0, err
	}
	c.status = next
	c.released = true
	c.dirty = true
	return OutcomeApplied, nil
}

// StartRecord starts separation of one record and moves the control into
// InProgress when it was AwaitingRelease. Only Pending records start, and only
// on a released control.
func (c *Control) StartRecord(recordID kernel.UUID, now time.Time) (Outcome, error) {
	r, err := c.Record(recordID)
	if err != nil {
		return 0, err
	}
	if !c.released {
		return 0, errs.NewIllegalTransitionErrorWithCause(recordSubject, r.status.String(), ActionStart.String(),
			fmt.Errorf("%s %s is not released", controlSubject, c.id))
	}
	if err := r.start(now); err != nil {
		return 0, err
	}
	c.markUpdated(r.id)

	if err := c.begin(now); err != nil {
		return 0, err
	}
	return OutcomeApplied, nil
}

// CompleteRecord finishes one record. When it was the last unfinished record the
// control completes as well. Completing a completed record is reported, not rejected.
func (c *Control) CompleteRecord(recordID kernel.UUID, now time.Time) (Outcome, error) {
	r, err := c.Record(recordID)
	if err != nil {
		return 0, err
	}
	if r.status == Completed {
		return OutcomeAlreadyCompleted, nil
	}
	if !c.released {
		return 0, errs.NewIllegalTransitionErrorWithCause(recordSubject, r.status.String(), ActionComplete.String(),
			fmt.Errorf("%s %s is not released", controlSubject, c.id))
	}
	if err := r.complete(); err != nil {
		return 0, err
	}
	c.markUpdated(r.id)

	if err := c.begin(now); err != nil {
		return 0, err
	}
	if err := c.settle(); err != nil {
		return 0, err
	}
	return OutcomeApplied, nil
}

// EditRecord changes operational fields of a record. Status is never affected.
func (c *Control) EditRecord(recordID kernel.UUID, edit RecordEdit) (bool, error) {
	r, err := c.Record(recordID)
	if err != nil {
		return false, err
	}
	changed, err := r.apply(edit)
	if err != nil {
		return false, err
	}
	if changed {
		c.markUpdated(r.id)
	}
	return changed, nil
}

// SettleCompletion re-evaluates the cascade on current record states and completes
// the control when it is due. It reports whether the control completed.
func (c *Control) SettleCompletion() (bool, error) {
	before := c.status
	if err := c.settle(); err != nil {
		return false, err
	}
	return before != Completed && c.status == Completed, nil
}

// IsSettleable reports whether every record is completed while the control is not.
func (c *Control) IsSettleable() bool {
	return c.status == InProgress && c.allRecordsCompleted()
}

func (c *Control) begin(now time.Time) error {
	if c.status == InProgress && c.startedAt != nil {
		return nil
	}
	next, err := ControlTransition(c.status, ActionBegin)
	if err != nil {
		return err
	}
	c.status = next
	if c.startedAt == nil {
		t := now.UTC()
		c.startedAt = &t
	}
	c.dirty = true
	return nil
}

func (c *Control) settle() error {
	if !c.IsSettleable() {
		return nil
	}
	return c.complete()
}

func (c *Control) complete() error {
	next, err := ControlTransition(c.status, ActionComplete)
	if err != nil {
		return err
	}
	c.status = next
	c.completed = true
	c.dirty = true
	return nil
}

func (c *Control) allRecordsCompleted() bool {
	if len(c.records) == 0 {
		return false
	}
	for _, r := range c.records {
		if r.status != Completed {
			return false
		}
	}
	return true
}

func (c *Control) markUpdated(recordID kernel.UUID) {
	if _, ok := c.added[recordID]; ok {
		return
	}
	c.updated[recordID] = struct{}{}
}

func (c *Control) resetChanges() {
	c.dirty = false
	c.added = make(map[kernel.UUID]struct{})
	c.updated = make(map[kernel.UUID]struct{})
	c.removed = nil
}

func (c *Control) sortRecords() {
	slices.SortFunc(c.records, func(a, b *CargoRecord) int {
		return a.seq - b.seq
	})
}

func (c *Control) checkUniqueness() error {
	seqs := make(map[int]struct{}, len(c.records))
	items := make(map[kernel.UUID]struct{}, len(c.records))
	for _, r := range c.records {
		if _, ok := seqs[r.seq]; ok {
			return errs.NewDuplicateSequenceError(c.id, r.seq)
		}
		seqs[r.seq] = struct{}{}
		if _, ok := items[r.cargoItemID]; ok {
			return errs.NewValueIsInvalidErrorWithCause("records",
				fmt.Errorf("cargo item %s has two records in control %s", r.cargoItemID, c.id))
		}
		items[r.cargoItemID] = struct{}{}
	}
	return nil
}

func checkMirrors(controlID kernel.UUID, items []CargoMirror) error {
	seqs := make(map[int]struct{}, len(items))
	ids := make(map[kernel.UUID]struct{}, len(items))
	for _, m := range items {
		if err := m.validate(); err != nil {
			return err
		}
		if _, ok := seqs[m.Seq]; ok {
			return errs.NewDuplicateSequenceError(controlID, m.Seq)
		}
		seqs[m.Seq] = struct{}{}
		if _, ok := ids[m.CargoItemID]; ok {
			return errs.NewValueIsInvalidErrorWithCause("cargo items",
				fmt.Errorf("cargo item %s listed twice", m.CargoItemID))
		}
		ids[m.CargoItemID] = struct{}{}
	}
	return nil
}
