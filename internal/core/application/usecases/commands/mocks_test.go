package commands_test

import (
	"context"
	"time"

	"expedition/internal/core/application/usecases/commands"
	"expedition/internal/core/domain/model/kernel"
	"expedition/internal/core/domain/model/separation"
	"expedition/internal/core/domain/model/transport"
	"expedition/internal/core/ports"

	"github.com/stretchr/testify/mock"
)

type MockLotRepository struct{ mock.Mock }

func (m *MockLotRepository) Get(ctx context.Context, id kernel.UUID) (*transport.Lot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transport.Lot), args.Error(1)
}

func (m *MockLotRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*transport.Lot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transport.Lot), args.Error(1)
}

type MockControlRepository struct{ mock.Mock }

func (m *MockControlRepository) Add(ctx context.Context, c *separation.Control) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockControlRepository) Update(ctx context.Context, c *separation.Control) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockControlRepository) Delete(ctx context.Context, id kernel.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockControlRepository) control(args mock.Arguments) (*separation.Control, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*separation.Control), args.Error(1)
}

func (m *MockControlRepository) Get(ctx context.Context, id kernel.UUID) (*separation.Control, error) {
	return m.control(m.Called(ctx, id))
}

func (m *MockControlRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*separation.Control, error) {
	return m.control(m.Called(ctx, id))
}

func (m *MockControlRepository) GetByLotForUpdate(ctx context.Context, lotID kernel.UUID) (*separation.Control, error) {
	return m.control(m.Called(ctx, lotID))
}

func (m *MockControlRepository) GetByRecordForUpdate(ctx context.Context, recordID kernel.UUID) (*separation.Control, error) {
	return m.control(m.Called(ctx, recordID))
}

func (m *MockControlRepository) FindSettleable(ctx context.Context, limit int) ([]kernel.UUID, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]kernel.UUID), args.Error(1)
}

type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error    { return m.Called(ctx).Error(0) }
func (m *MockUoW) Commit(ctx context.Context) error   { return m.Called(ctx).Error(0) }
func (m *MockUoW) Rollback(ctx context.Context) error { return m.Called(ctx).Error(0) }
func (m *MockUoW) Writes() int                        { return m.Called().Int(0) }

func (m *MockUoW) TransportLotRepository() ports.TransportLotRepository {
	return m.Called().Get(0).(ports.TransportLotRepository)
}

func (m *MockUoW) SeparationControlRepository() ports.SeparationControlRepository {
	return m.Called().Get(0).(ports.SeparationControlRepository)
}

type MockSyncUoWFactory struct{ mock.Mock }

func (m *MockSyncUoWFactory) Create() commands.SyncUoW {
	return m.Called().Get(0).(commands.SyncUoW)
}

type MockControlUoWFactory struct{ mock.Mock }

func (m *MockControlUoWFactory) Create() commands.ControlUoW {
	return m.Called().Get(0).(commands.ControlUoW)
}

type MockMetrics struct{ mock.Mock }

func (m *MockMetrics) SyncFinished(result string, elapsed time.Duration, writes int) {
	m.Called(result, elapsed, writes)
}
func (m *MockMetrics) SyncRetried()                               { m.Called() }
func (m *MockMetrics) Transition(subject, action, outcome string) { m.Called(subject, action, outcome) }
func (m *MockMetrics) ControlsSettled(n int)                      { m.Called(n) }
