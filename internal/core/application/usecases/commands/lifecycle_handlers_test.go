package commands_test

import (
	"errors"
	"testing"

	"expedition/internal/core/application/usecases/commands"
	"expedition/internal/core/domain/model/kernel"
	"expedition/internal/core/domain/model/separation"
	"expedition/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type controlMocks struct {
	factory  *MockControlUoWFactory
	uow      *MockUoW
	controls *MockControlRepository
	metrics  *MockMetrics
}

func newControlMocks() controlMocks {
	m := controlMocks{
		factory:  new(MockControlUoWFactory),
		uow:      new(MockUoW),
		controls: new(MockControlRepository),
		metrics:  new(MockMetrics),
	}
	m.factory.On("Create").Return(m.uow)
	m.uow.On("SeparationControlRepository").Return(m.controls)
	m.uow.On("Rollback", mock.Anything).Return(nil)
	return m
}

func (m controlMocks) assert(t *testing.T) {
	m.uow.AssertExpectations(t)
	m.controls.AssertExpectations(t)
	m.metrics.AssertExpectations(t)
}

func TestLifecycleCommands_RejectZeroIDs(t *testing.T) {
	_, err := commands.NewReleaseControlCommand(kernel.UUID{})
	require.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
	_, err = commands.NewStartRecordCommand(kernel.UUID{})
	require.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
	_, err = commands.NewCompleteRecordCommand(kernel.UUID{})
	require.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)

	var release commands.ReleaseControlCommand
	require.ErrorIs(t, release.Validate(), commands.ErrReleaseControlCommandIsNotConstructed)
}

func TestReleaseControlCommandHandler_Applied(t *testing.T) {
	ctx := t.Context()
	control := storedControl(t, kernel.NewUUID(), kernel.NewUUID())
	m := newControlMocks()

	mock.InOrder(
		m.uow.On("Begin", ctx).Return(nil).Once(),
		m.controls.On("GetForUpdate", ctx, control.ID()).Return(control, nil).Once(),
		m.controls.On("Update", ctx, control).Return(nil).Once(),
		m.uow.On("Commit", ctx).Return(nil).Once(),
	)
	m.metrics.On("Transition", "control", "release", "applied").Once()

	cmd, err := commands.NewReleaseControlCommand(control.ID())
	require.NoError(t, err)
	res, err := commands.NewReleaseControlCommandHandler(m.factory, m.metrics).Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, separation.OutcomeApplied, res.Outcome)
	assert.Equal(t, separation.AwaitingRelease, res.ControlStatus)
	m.assert(t)
}

func TestReleaseControlCommandHandler_AlreadyReleasedCommitsNothing(t *testing.T) {
	ctx := t.Context()
	control := releasedControl(t, kernel.NewUUID())
	m := newControlMocks()

	m.uow.On("Begin", ctx).Return(nil).Once()
	m.controls.On("GetForUpdate", ctx, control.ID()).Return(control, nil).Once()
	m.metrics.On("Transition", "control", "release", "already_released").Once()

	cmd, _ := commands.NewReleaseControlCommand(control.ID())
	res, err := commands.NewReleaseControlCommandHandler(m.factory, m.metrics).Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, separation.OutcomeAlreadyReleased, res.Outcome)
	m.controls.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	m.uow.AssertNotCalled(t, "Commit", mock.Anything)
	m.assert(t)
}

func TestReleaseControlCommandHandler_NotFound(t *testing.T) {
	ctx := t.Context()
	id := kernel.NewUUID()
	m := newControlMocks()

	m.uow.On("Begin", ctx).Return(nil).Once()
	m.controls.On("GetForUpdate", ctx, id).Return(nil, errs.NewObjectNotFoundError("separation control", id)).Once()

	cmd, _ := commands.NewReleaseControlCommand(id)
	_, err := commands.NewReleaseControlCommandHandler(m.factory, nil).Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrObjectNotFound)
	m.assert(t)
}

func TestStartRecordCommandHandler_MovesControlInProgress(t *testing.T) {
	ctx := t.Context()
	control := releasedControl(t, kernel.NewUUID(), kernel.NewUUID())
	recordID := control.Records()[0].ID()
	m := newControlMocks()

	mock.InOrder(
		m.uow.On("Begin", ctx).Return(nil).Once(),
		m.controls.On("GetByRecordForUpdate", ctx, recordID).Return(control, nil).Once(),
		m.controls.On("Update", ctx, control).Return(nil).Once(),
		m.uow.On("Commit", ctx).Return(nil).Once(),
	)
	m.metrics.On("Transition", "record", "start", "applied").Once()

	cmd, _ := commands.NewStartRecordCommand(recordID)
	res, err := commands.NewStartRecordCommandHandler(m.factory, fixedClock, m.metrics).Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, separation.InProgress, res.ControlStatus)
	assert.Equal(t, separation.InProgress, res.RecordStatus)
	require.NotNil(t, control.StartedAt())
	assert.True(t, fixedNow.Equal(*control.StartedAt()))
	m.assert(t)
}

func TestStartRecordCommandHandler_UnreleasedControlIsIllegal(t *testing.T) {
	ctx := t.Context()
	control := storedControl(t, kernel.NewUUID(), kernel.NewUUID())
	recordID := control.Records()[0].ID()
	m := newControlMocks()

	m.uow.On("Begin", ctx).Return(nil).Once()
	m.controls.On("GetByRecordForUpdate", ctx, recordID).Return(control, nil).Once()
	m.metrics.On("Transition", "record", "start", "rejected").Once()

	cmd, _ := commands.NewStartRecordCommand(recordID)
	_, err := commands.NewStartRecordCommandHandler(m.factory, fixedClock, m.metrics).Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrIllegalTransition)
	m.uow.AssertNotCalled(t, "Commit", mock.Anything)
	m.assert(t)
}

func TestStartRecordCommandHandler_CommitFailure(t *testing.T) {
	ctx := t.Context()
	control := releasedControl(t, kernel.NewUUID())
	recordID := control.Records()[0].ID()
	m := newControlMocks()
	conflict := errs.NewSynchronizationConflictError("separation control", control.ID())

	m.uow.On("Begin", ctx).Return(nil).Once()
	m.controls.On("GetByRecordForUpdate", ctx, recordID).Return(control, nil).Once()
	m.controls.On("Update", ctx, control).Return(nil).Once()
	m.uow.On("Commit", ctx).Return(conflict).Once()

	cmd, _ := commands.NewStartRecordCommand(recordID)
	_, err := commands.NewStartRecordCommandHandler(m.factory, fixedClock, m.metrics).Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrSynchronizationConflict)
	m.metrics.AssertNotCalled(t, "Transition", mock.Anything, mock.Anything, mock.Anything)
	m.assert(t)
}

func TestCompleteRecordCommandHandler_LastRecordCompletesControl(t *testing.T) {
	ctx := t.Context()
	control := releasedControl(t, kernel.NewUUID())
	recordID := control.Records()[0].ID()
	m := newControlMocks()

	mock.InOrder(
		m.uow.On("Begin", ctx).Return(nil).Once(),
		m.controls.On("GetByRecordForUpdate", ctx, recordID).Return(control, nil).Once(),
		m.controls.On("Update", ctx, control).Return(nil).Once(),
		m.uow.On("Commit", ctx).Return(nil).Once(),
	)
	m.metrics.On("Transition", "record", "complete", "applied").Once()
	m.metrics.On("Transition", "control", "complete", "applied").Once()

	cmd, _ := commands.NewCompleteRecordCommand(recordID)
	res, err := commands.NewCompleteRecordCommandHandler(m.factory, fixedClock, m.metrics).Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, separation.OutcomeApplied, res.Outcome)
	assert.Equal(t, separation.Completed, res.RecordStatus)
	assert.Equal(t, separation.Completed, res.ControlStatus)
	m.assert(t)
}

func TestCompleteRecordCommandHandler_OtherRecordsKeepControlInProgress(t *testing.T) {
	ctx := t.Context()
	control := releasedControl(t, kernel.NewUUID(), kernel.NewUUID())
	recordID := control.Records()[0].ID()
	m := newControlMocks()

	m.uow.On("Begin", ctx).Return(nil).Once()
	m.controls.On("GetByRecordForUpdate", ctx, recordID).Return(control, nil).Once()
	m.controls.On("Update", ctx, control).Return(nil).Once()
	m.uow.On("Commit", ctx).Return(nil).Once()
	m.metrics.On("Transition", "record", "complete", "applied").Once()

	cmd, _ := commands.NewCompleteRecordCommand(recordID)
	res, err := commands.NewCompleteRecordCommandHandler(m.factory, fixedClock, m.metrics).Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, separation.InProgress, res.ControlStatus)
	m.assert(t)
}

func TestCompleteRecordCommandHandler_AlreadyCompleted(t *testing.T) {
	ctx := t.Context()
	control := releasedControl(t, kernel.NewUUID(), kernel.NewUUID())
	recordID := control.Records()[0].ID()
	_, err := control.CompleteRecord(recordID, fixedNow)
	require.NoError(t, err)
	control.MarkPersisted()
	m := newControlMocks()

	m.uow.On("Begin", ctx).Return(nil).Once()
	m.controls.On("GetByRecordForUpdate", ctx, recordID).Return(control, nil).Once()
	m.metrics.On("Transition", "record", "complete", "already_completed").Once()

	cmd, _ := commands.NewCompleteRecordCommand(recordID)
	res, err := commands.NewCompleteRecordCommandHandler(m.factory, fixedClock, m.metrics).Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, separation.OutcomeAlreadyCompleted, res.Outcome)
	m.uow.AssertNotCalled(t, "Commit", mock.Anything)
	m.assert(t)
}

func TestNewEditRecordCommand_RequiresAField(t *testing.T) {
	_, err := commands.NewEditRecordCommand(kernel.NewUUID(), separation.RecordEdit{})
	require.ErrorIs(t, err, commands.ErrEditIsEmpty)
}

func TestEditRecordCommandHandler_Changed(t *testing.T) {
	ctx := t.Context()
	control := storedControl(t, kernel.NewUUID(), kernel.NewUUID())
	recordID := control.Records()[0].ID()
	checker := "Marta"
	m := newControlMocks()

	mock.InOrder(
		m.uow.On("Begin", ctx).Return(nil).Once(),
		m.controls.On("GetByRecordForUpdate", ctx, recordID).Return(control, nil).Once(),
		m.controls.On("Update", ctx, mock.MatchedBy(func(c *separation.Control) bool {
			return len(c.Changes().Updated) == 1
		})).Return(nil).Once(),
		m.uow.On("Commit", ctx).Return(nil).Once(),
	)

	cmd, err := commands.NewEditRecordCommand(recordID, separation.RecordEdit{Checker: &checker})
	require.NoError(t, err)
	changed, err := commands.NewEditRecordCommandHandler(m.factory).Handle(ctx, cmd)

	require.NoError(t, err)
	assert.True(t, changed)
	m.assert(t)
}

func TestEditRecordCommandHandler_SameValueWritesNothing(t *testing.T) {
	ctx := t.Context()
	control := storedControl(t, kernel.NewUUID(), kernel.NewUUID())
	recordID := control.Records()[0].ID()
	blank := "  "
	m := newControlMocks()

	m.uow.On("Begin", ctx).Return(nil).Once()
	m.controls.On("GetByRecordForUpdate", ctx, recordID).Return(control, nil).Once()

	cmd, _ := commands.NewEditRecordCommand(recordID, separation.RecordEdit{Checker: &blank})
	changed, err := commands.NewEditRecordCommandHandler(m.factory).Handle(ctx, cmd)

	require.NoError(t, err)
	assert.False(t, changed)
	m.controls.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	m.assert(t)
}

func TestEditRecordCommandHandler_TooLong(t *testing.T) {
	ctx := t.Context()
	control := storedControl(t, kernel.NewUUID(), kernel.NewUUID())
	recordID := control.Records()[0].ID()
	box := "A123"
	m := newControlMocks()

	m.uow.On("Begin", ctx).Return(nil).Once()
	m.controls.On("GetByRecordForUpdate", ctx, recordID).Return(control, nil).Once()

	cmd, _ := commands.NewEditRecordCommand(recordID, separation.RecordEdit{DockBox: &box})
	_, err := commands.NewEditRecordCommandHandler(m.factory).Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	m.assert(t)
}

func TestNewSettleCompletedControlsCommand_BatchBounds(t *testing.T) {
	_, err := commands.NewSettleCompletedControlsCommand(0)
	require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	_, err = commands.NewSettleCompletedControlsCommand(1001)
	require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)

	cmd, err := commands.NewSettleCompletedControlsCommand(50)
	require.NoError(t, err)
	assert.Equal(t, 50, cmd.Batch())
}

func TestSettleCompletedControlsCommandHandler(t *testing.T) {
	ctx := t.Context()

	due, err := separation.RestoreControl(separation.ControlSnapshot{
		ID: kernel.NewUUID(), LotID: kernel.NewUUID(), Status: separation.InProgress,
		Released: true, StartedAt: &fixedNow, CreatedAt: fixedNow,
	}, []*separation.CargoRecord{completedRecord(t)})
	require.NoError(t, err)
	notDue := releasedControl(t, kernel.NewUUID())
	missing := kernel.NewUUID()
	vanished := kernel.NewUUID()
	boom := errors.New("lock lost")

	m := newControlMocks()
	m.controls.On("FindSettleable", ctx, 10).Return([]kernel.UUID{due.ID(), notDue.ID(), missing, vanished}, nil).Once()
	m.uow.On("Begin", ctx).Return(nil).Times(4)
	m.controls.On("GetForUpdate", ctx, due.ID()).Return(due, nil).Once()
	m.controls.On("GetForUpdate", ctx, notDue.ID()).Return(notDue, nil).Once()
	m.controls.On("GetForUpdate", ctx, missing).Return(nil, boom).Once()
	m.controls.On("GetForUpdate", ctx, vanished).Return(nil, errs.NewObjectNotFoundError("separation control", vanished)).Once()
	m.controls.On("Update", ctx, due).Return(nil).Once()
	m.uow.On("Commit", ctx).Return(nil).Once()
	m.metrics.On("ControlsSettled", 1).Once()

	cmd, _ := commands.NewSettleCompletedControlsCommand(10)
	settled, err := commands.NewSettleCompletedControlsCommandHandler(m.factory, m.metrics).Handle(ctx, cmd)

	require.ErrorIs(t, err, boom)
	require.NotErrorIs(t, err, errs.ErrObjectNotFound, "a control deleted after the scan is skipped")
	assert.Equal(t, 1, settled)
	assert.Equal(t, separation.Completed, due.Status())
	assert.Equal(t, separation.AwaitingRelease, notDue.Status())
	m.assert(t)
}

func completedRecord(t *testing.T) *separation.CargoRecord {
	t.Helper()
	r, err := separation.RestoreCargoRecord(separation.RecordSnapshot{
		ID: kernel.NewUUID(), CargoItemID: kernel.NewUUID(), CargoNumber: "C1", Seq: 1, Deliveries: 1, Mode: "F",
		Status: separation.Completed, Assigned: true, Finalized: true, StartedAt: &fixedNow,
		Checker: separation.NotInformed, Pickers: separation.NotInformed, DockBox: separation.NotInformed,
	})
	require.NoError(t, err)
	return r
}
