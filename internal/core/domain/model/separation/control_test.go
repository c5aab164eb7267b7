package separation_test

import (
	"testing"
	"time"

	"expedition/internal/core/domain/model/kernel"
	"expedition/internal/core/domain/model/separation"
	"expedition/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	t0 = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	t1 = t0.Add(15 * time.Minute)
	t2 = t0.Add(40 * time.Minute)
)

func mirror(id kernel.UUID, number string, seq int) separation.CargoMirror {
	return separation.CargoMirror{CargoItemID: id, CargoNumber: number, Seq: seq, Deliveries: 3, Mode: "F"}
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

// newSyncedControl builds a stored control with records for the given cargo numbers, seq 1..n.
func newSyncedControl(t *testing.T, numbers ...string) (*separation.Control, []kernel.UUID) {
	t.Helper()
	c, err := separation.NewControl(kernel.NewUUID(), kernel.NewUUID(), t0)
	require.NoError(t, err)

	items := make([]kernel.UUID, len(numbers))
	mirrors := make([]separation.CargoMirror, len(numbers))
	for i, n := range numbers {
		items[i] = kernel.NewUUID()
		mirrors[i] = mirror(items[i], n, i+1)
	}
	require.NoError(t, c.Reconcile(mirrors))
	c.MarkPersisted()
	return c, items
}

func recordFor(t *testing.T, c *separation.Control, cargoItemID kernel.UUID) *separation.CargoRecord {
	t.Helper()
	for _, r := range c.Records() {
		if r.CargoItemID().IsEqual(cargoItemID) {
			return r
		}
	}
	t.Fatalf("no record for cargo item %s", cargoItemID)
	return nil
}

func TestNewControl(t *testing.T) {
	t.Run("should create pending control", func(t *testing.T) {
		id, lotID := kernel.NewUUID(), kernel.NewUUID()

		c, err := separation.NewControl(id, lotID, t0)

		require.NoError(t, err)
		require.NoError(t, c.Validate())
		assert.True(t, c.ID().IsEqual(id))
		assert.True(t, c.LotID().IsEqual(lotID))
		assert.Equal(t, separation.Pending, c.Status())
		assert.False(t, c.IsReleased())
		assert.False(t, c.IsCompleted())
		assert.Nil(t, c.StartedAt())
		assert.Equal(t, t0, c.CreatedAt())
		assert.True(t, c.IsNew())
		assert.True(t, c.Changes().ControlChanged)
	})

	t.Run("should reject zero ids", func(t *testing.T) {
		_, err := separation.NewControl(kernel.UUID{}, kernel.NewUUID(), t0)
		require.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
	})

	t.Run("should reject zero time", func(t *testing.T) {
		_, err := separation.NewControl(kernel.NewUUID(), kernel.NewUUID(), time.Time{})
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("zero value is not constructed", func(t *testing.T) {
		var c separation.Control
		require.ErrorIs(t, c.Validate(), separation.ErrControlIsNotConstructed)
	})
}

func TestControl_Reconcile(t *testing.T) {
	t.Run("creates pending records ordered by seq", func(t *testing.T) {
		c, err := separation.NewControl(kernel.NewUUID(), kernel.NewUUID(), t0)
		require.NoError(t, err)
		c1, c2 := kernel.NewUUID(), kernel.NewUUID()

		require.NoError(t, c.Reconcile([]separation.CargoMirror{mirror(c2, "C2", 2), mirror(c1, "C1", 1)}))

		records := c.Records()
		require.Len(t, records, 2)
		assert.Equal(t, "C1", records[0].CargoNumber())
		assert.Equal(t, 1, records[0].Seq())
		assert.Equal(t, "C2", records[1].CargoNumber())
		for _, r := range records {
			assert.Equal(t, separation.Pending, r.Status())
			assert.False(t, r.IsAssigned())
			assert.False(t, r.IsFinalized())
			assert.Equal(t, separation.Documents{}, r.Documents())
			assert.Equal(t, separation.NotInformed, r.Checker())
		}
		assert.Equal(t, separation.Pending, c.Status())

		ch := c.Changes()
		assert.Len(t, ch.Added, 2)
		assert.Empty(t, ch.Updated)
		assert.Empty(t, ch.Removed)
	})

	t.Run("unchanged items produce no changes", func(t *testing.T) {
		c, items := newSyncedControl(t, "C1", "C2")

		require.NoError(t, c.Reconcile([]separation.CargoMirror{mirror(items[0], "C1", 1), mirror(items[1], "C2", 2)}))

		assert.True(t, c.Changes().IsEmpty())
		assert.False(t, c.IsNew())
	})

	t.Run("mirrored field change marks record updated", func(t *testing.T) {
		c, items := newSyncedControl(t, "C1", "C2")
		m := mirror(items[1], "C2", 2)
		m.Deliveries = 9

		require.NoError(t, c.Reconcile([]separation.CargoMirror{mirror(items[0], "C1", 1), m}))

		ch := c.Changes()
		require.Len(t, ch.Updated, 1)
		assert.Equal(t, 9, ch.Updated[0].Deliveries())
		assert.False(t, ch.ControlChanged)
	})

	t.Run("replaced item keeps survivor data and drops stale record", func(t *testing.T) {
		c, items := newSyncedControl(t, "C1", "C2")
		_, err := c.Release()
		require.NoError(t, err)
		survivor := recordFor(t, c, items[0])
		stale := recordFor(t, c, items[1])
		_, err = c.EditRecord(survivor.ID(), separation.RecordEdit{Checker: strPtr("Ana"), CDLabels: boolPtr(true)})
		require.NoError(t, err)
		_, err = c.StartRecord(survivor.ID(), t1)
		require.NoError(t, err)
		c.MarkPersisted()

		c3 := kernel.NewUUID()
		require.NoError(t, c.Reconcile([]separation.CargoMirror{mirror(items[0], "C1", 1), mirror(c3, "C3", 2)}))

		records := c.Records()
		require.Len(t, records, 2)
		kept := recordFor(t, c, items[0])
		assert.True(t, kept.ID().IsEqual(survivor.ID()))
		assert.Equal(t, separation.InProgress, kept.Status())
		assert.Equal(t, "Ana", kept.Checker())
		assert.True(t, kept.Documents().CDLabels)
		added := recordFor(t, c, c3)
		assert.Equal(t, separation.Pending, added.Status())

		ch := c.Changes()
		require.Len(t, ch.Added, 1)
		assert.True(t, ch.Added[0].ID().IsEqual(added.ID()))
		assert.Empty(t, ch.Updated)
		require.Len(t, ch.Removed, 1)
		assert.True(t, ch.Removed[0].IsEqual(stale.ID()))
	})

	t.Run("sequence swap is accepted", func(t *testing.T) {
		c, items := newSyncedControl(t, "C1", "C2")

		require.NoError(t, c.Reconcile([]separation.CargoMirror{mirror(items[0], "C1", 2), mirror(items[1], "C2", 1)}))

		records := c.Records()
		assert.Equal(t, "C2", records[0].CargoNumber())
		assert.Len(t, c.Changes().Updated, 2)
	})

	t.Run("duplicate sequence is rejected", func(t *testing.T) {
		c, _ := newSyncedControl(t)

		err := c.Reconcile([]separation.CargoMirror{mirror(kernel.NewUUID(), "C1", 1), mirror(kernel.NewUUID(), "C2", 1)})

		require.ErrorIs(t, err, errs.ErrDuplicateSequence)
		assert.Empty(t, c.Records())
	})

	t.Run("duplicate cargo item is rejected", func(t *testing.T) {
		c, _ := newSyncedControl(t)
		id := kernel.NewUUID()

		err := c.Reconcile([]separation.CargoMirror{mirror(id, "C1", 1), mirror(id, "C1", 2)})

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("removing the last unfinished record completes the control", func(t *testing.T) {
		c, items := newSyncedControl(t, "C1", "C2")
		_, err := c.Release()
		require.NoError(t, err)
		_, err = c.CompleteRecord(recordFor(t, c, items[0]).ID(), t1)
		require.NoError(t, err)
		require.Equal(t, separation.InProgress, c.Status())

		require.NoError(t, c.Reconcile([]separation.CargoMirror{mirror(items[0], "C1", 1)}))

		assert.Equal(t, separation.Completed, c.Status())
		assert.True(t, c.IsCompleted())
	})

	t.Run("removing every record never completes the control", func(t *testing.T) {
		c, items := newSyncedControl(t, "C1")
		_, err := c.Release()
		require.NoError(t, err)
		_, err = c.StartRecord(recordFor(t, c, items[0]).ID(), t1)
		require.NoError(t, err)

		require.NoError(t, c.Reconcile(nil))

		assert.Equal(t, separation.InProgress, c.Status())
		assert.Empty(t, c.Records())
	})

	t.Run("new cargo on a completed control is rejected", func(t *testing.T) {
		c, items := newSyncedControl(t, "C1")
		_, err := c.Release()
		require.NoError(t, err)
		_, err = c.CompleteRecord(recordFor(t, c, items[0]).ID(), t1)
		require.NoError(t, err)
		require.Equal(t, separation.Completed, c.Status())

		err = c.Reconcile([]separation.CargoMirror{mirror(items[0], "C1", 1), mirror(kernel.NewUUID(), "C9", 2)})

		require.ErrorIs(t, err, errs.ErrIllegalTransition)
		assert.Len(t, c.Records(), 1)
	})
}

func TestControl_Lifecycle(t *testing.T) {
	t.Run("release moves pending to awaiting release once", func(t *testing.T) {
		c, _ := newSyncedControl(t, "C1", "C2")

		outcome, err := c.Release()
		require.NoError(t, err)
		assert.Equal(t, separation.OutcomeApplied, outcome)
		assert.Equal(t, separation.AwaitingRelease, c.Status())
		assert.True(t, c.IsReleased())
		assert.True(t, c.Changes().ControlChanged)

		c.MarkPersisted()
		outcome, err = c.Release()
		require.NoError(t, err)
		assert.Equal(t, separation.OutcomeAlreadyReleased, outcome)
		assert.Equal(t, separation.AwaitingRelease, c.Status())
		assert.True(t, c.Changes().IsEmpty())
	})

	t.Run("start advances the control and stamps both start times", func(t *testing.T) {
		c, items := newSyncedControl(t, "C1", "C2")
		_, err := c.Release()
		require.NoError(t, err)
		r := recordFor(t, c, items[0])

		outcome, err := c.StartRecord(r.ID(), t1)

		require.NoError(t, err)
		assert.Equal(t, separation.OutcomeApplied, outcome)
		assert.Equal(t, separation.InProgress, r.Status())
		assert.True(t, r.IsAssigned())
		require.NotNil(t, r.StartedAt())
		assert.Equal(t, t1, *r.StartedAt())
		assert.Equal(t, separation.InProgress, c.Status())
		require.NotNil(t, c.StartedAt())
		assert.Equal(t, t1, *c.StartedAt())

		_, err = c.StartRecord(recordFor(t, c, items[1]).ID(), t2)
		require.NoError(t, err)
		assert.Equal(t, t1, *c.StartedAt())
	})

	t.Run("start on an unreleased control is illegal", func(t *testing.T) {
		c, items := newSyncedControl(t, "C1")

		_, err := c.StartRecord(recordFor(t, c, items[0]).ID(), t1)

		require.ErrorIs(t, err, errs.ErrIllegalTransition)
		assert.Equal(t, separation.Pending, c.Status())
		assert.True(t, c.Changes().IsEmpty())
	})

	t.Run("start twice is illegal", func(t *testing.T) {
		c, items := newSyncedControl(t, "C1")
		_, err := c.Release()
		require.NoError(t, err)
		id := recordFor(t, c, items[0]).ID()
		_, err = c.StartRecord(id, t1)
		require.NoError(t, err)

		_, err = c.StartRecord(id, t2)

		require.ErrorIs(t, err, errs.ErrIllegalTransition)
	})

	t.Run("unknown record is not found", func(t *testing.T) {
		c, _ := newSyncedControl(t, "C1")
		_, err := c.Release()
		require.NoError(t, err)

		_, err = c.StartRecord(kernel.NewUUID(), t1)
		require.ErrorIs(t, err, errs.ErrObjectNotFound)
		_, err = c.CompleteRecord(kernel.NewUUID(), t1)
		require.ErrorIs(t, err, errs.ErrObjectNotFound)
	})

	t.Run("completing every record cascades", func(t *testing.T) {
		c, items := newSyncedControl(t, "C1", "C2")
		_, err := c.Release()
		require.NoError(t, err)
		_, err = c.StartRecord(recordFor(t, c, items[0]).ID(), t1)
		require.NoError(t, err)

		_, err = c.CompleteRecord(recordFor(t, c, items[0]).ID(), t1)
		require.NoError(t, err)
		assert.Equal(t, separation.InProgress, c.Status())
		assert.False(t, c.IsCompleted())

		outcome, err := c.CompleteRecord(recordFor(t, c, items[1]).ID(), t2)
		require.NoError(t, err)
		assert.Equal(t, separation.OutcomeApplied, outcome)
		assert.Equal(t, separation.Completed, c.Status())
		assert.True(t, c.IsCompleted())
		assert.True(t, recordFor(t, c, items[1]).IsFinalized())
	})

	t.Run("complete straight from pending advances the control", func(t *testing.T) {
		c, items := newSyncedControl(t, "C1", "C2")
		_, err := c.Release()
		require.NoError(t, err)

		_, err = c.CompleteRecord(recordFor(t, c, items[0]).ID(), t1)

		require.NoError(t, err)
		assert.Equal(t, separation.InProgress, c.Status())
		require.NotNil(t, c.StartedAt())
	})

	t.Run("complete twice is benign", func(t *testing.T) {
		c, items := newSyncedControl(t, "C1", "C2")
		_, err := c.Release()
		require.NoError(t, err)
		id := recordFor(t, c, items[0]).ID()
		_, err = c.CompleteRecord(id, t1)
		require.NoError(t, err)
		c.MarkPersisted()

		outcome, err := c.CompleteRecord(id, t2)

		require.NoError(t, err)
		assert.Equal(t, separation.OutcomeAlreadyCompleted, outcome)
		assert.True(t, c.Changes().IsEmpty())
	})

	t.Run("complete on an unreleased control is illegal", func(t *testing.T) {
		c, items := newSyncedControl(t, "C1")

		_, err := c.CompleteRecord(recordFor(t, c, items[0]).ID(), t1)

		require.ErrorIs(t, err, errs.ErrIllegalTransition)
	})

	t.Run("release after completion reports already released", func(t *testing.T) {
		c, items := newSyncedControl(t, "C1")
		_, err := c.Release()
		require.NoError(t, err)
		_, err = c.CompleteRecord(recordFor(t, c, items[0]).ID(), t1)
		require.NoError(t, err)

		outcome, err := c.Release()

		require.NoError(t, err)
		assert.Equal(t, separation.OutcomeAlreadyReleased, outcome)
		assert.Equal(t, separation.Completed, c.Status())
	})
}

func TestControl_EditRecord(t *testing.T) {
	t.Run("edits fields without touching status", func(t *testing.T) {
		c, items := newSyncedControl(t, "C1")
		id := recordFor(t, c, items[0]).ID()

		changed, err := c.EditRecord(id, separation.RecordEdit{
			Checker:           strPtr(" Bruno "),
			Pickers:           strPtr("Carla, Davi"),
			TransportOrder:    strPtr("OT-991"),
			DockBox:           strPtr("B12"),
			ConferenceSummary: boolPtr(true),
			LoadGenerated:     boolPtr(true),
		})

		require.NoError(t, err)
		assert.True(t, changed)
		r := recordFor(t, c, items[0])
		assert.Equal(t, "Bruno", r.Checker())
		assert.Equal(t, "Carla, Davi", r.Pickers())
		assert.Equal(t, "OT-991", r.TransportOrder())
		assert.Equal(t, "B12", r.DockBox())
		assert.Equal(t, separation.Documents{ConferenceSummary: true, LoadGenerated: true}, r.Documents())
		assert.Equal(t, separation.Pending, r.Status())
		assert.Len(t, c.Changes().Updated, 1)
	})

	t.Run("blank text falls back to the placeholder", func(t *testing.T) {
		c, items := newSyncedControl(t, "C1")
		id := recordFor(t, c, items[0]).ID()
		_, err := c.EditRecord(id, separation.RecordEdit{Checker: strPtr("Bruno")})
		require.NoError(t, err)

		_, err = c.EditRecord(id, separation.RecordEdit{Checker: strPtr("  "), DockBox: strPtr("")})

		require.NoError(t, err)
		r := recordFor(t, c, items[0])
		assert.Equal(t, separation.NotInformed, r.Checker())
		assert.Equal(t, separation.NotInformed, r.DockBox())
	})

	t.Run("same values are not a change", func(t *testing.T) {
		c, items := newSyncedControl(t, "C1")

		changed, err := c.EditRecord(recordFor(t, c, items[0]).ID(), separation.RecordEdit{Checker: strPtr("")})

		require.NoError(t, err)
		assert.False(t, changed)
		assert.True(t, c.Changes().IsEmpty())
	})

	t.Run("too long value is rejected", func(t *testing.T) {
		c, items := newSyncedControl(t, "C1")

		_, err := c.EditRecord(recordFor(t, c, items[0]).ID(), separation.RecordEdit{DockBox: strPtr("B1234")})

		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})
}

func TestRestoreControl(t *testing.T) {
	base := separation.ControlSnapshot{
		ID:        kernel.NewUUID(),
		LotID:     kernel.NewUUID(),
		Status:    separation.InProgress,
		Released:  true,
		StartedAt: &t1,
		CreatedAt: t0,
	}
	record := func(status separation.Status, seq int) *separation.CargoRecord {
		r, err := separation.RestoreCargoRecord(separation.RecordSnapshot{
			ID:          kernel.NewUUID(),
			CargoItemID: kernel.NewUUID(),
			CargoNumber: "C" + string(rune('0'+seq)),
			Seq:         seq,
			Deliveries:  1,
			Mode:        "-",
			Status:      status,
			Assigned:    status != separation.Pending,
			Finalized:   status == separation.Completed,
		})
		require.NoError(t, err)
		return r
	}

	t.Run("restores a consistent control", func(t *testing.T) {
		c, err := separation.RestoreControl(base, []*separation.CargoRecord{record(separation.Pending, 2), record(separation.InProgress, 1)})

		require.NoError(t, err)
		assert.False(t, c.IsNew())
		assert.True(t, c.Changes().IsEmpty())
		assert.Equal(t, 1, c.Records()[0].Seq())
	})

	t.Run("settles an in-progress control whose records are all completed", func(t *testing.T) {
		c, err := separation.RestoreControl(base, []*separation.CargoRecord{record(separation.Completed, 1)})
		require.NoError(t, err)
		assert.True(t, c.IsSettleable())

		done, err := c.SettleCompletion()

		require.NoError(t, err)
		assert.True(t, done)
		assert.Equal(t, separation.Completed, c.Status())
		assert.True(t, c.Changes().ControlChanged)
	})

	t.Run("rejects flags that disagree with status", func(t *testing.T) {
		s := base
		s.Released = false
		_, err := separation.RestoreControl(s, nil)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)

		s = base
		s.Completed = true
		_, err = separation.RestoreControl(s, nil)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("rejects a completed control with unfinished records", func(t *testing.T) {
		s := base
		s.Status, s.Completed = separation.Completed, true

		_, err := separation.RestoreControl(s, []*separation.CargoRecord{record(separation.Pending, 1)})

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("rejects duplicate sequences", func(t *testing.T) {
		_, err := separation.RestoreControl(base, []*separation.CargoRecord{record(separation.Pending, 1), record(separation.Pending, 1)})

		require.ErrorIs(t, err, errs.ErrDuplicateSequence)
	})
}

func TestRestoreCargoRecord(t *testing.T) {
	valid := separation.RecordSnapshot{
		ID:          kernel.NewUUID(),
		CargoItemID: kernel.NewUUID(),
		CargoNumber: "C1",
		Seq:         1,
		Deliveries:  2,
		Mode:        "F",
		Status:      separation.Completed,
		Assigned:    true,
		Finalized:   true,
		Checker:     "Ana",
		StartedAt:   &t1,
	}

	t.Run("round trips through Snapshot", func(t *testing.T) {
		r, err := separation.RestoreCargoRecord(valid)

		require.NoError(t, err)
		require.NoError(t, r.Validate())
		assert.Equal(t, valid, r.Snapshot())
	})

	t.Run("rejects finalized without completion", func(t *testing.T) {
		s := valid
		s.Status = separation.InProgress

		_, err := separation.RestoreCargoRecord(s)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("rejects awaiting release", func(t *testing.T) {
		s := valid
		s.Status, s.Finalized = separation.AwaitingRelease, false

		_, err := separation.RestoreCargoRecord(s)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("rejects a non-positive seq", func(t *testing.T) {
		s := valid
		s.Seq = 0

		_, err := separation.RestoreCargoRecord(s)

		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})
}
