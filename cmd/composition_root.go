package cmd

import (
	"log/slog"

	httpin "expedition/internal/adapters/in/http"
	"expedition/internal/adapters/out/postgres"
	"expedition/internal/core/application/usecases/commands"
	"expedition/internal/core/application/usecases/queries"
	"expedition/internal/core/domain/model/kernel"
	"expedition/internal/core/ports"
	"expedition/internal/jobs"

	"gorm.io/gorm"
)

type CompositionRoot struct {
	cfg        Config
	gormDB     *gorm.DB
	logger     *slog.Logger
	clock      kernel.Clock
	metrics    ports.MetricsRecorder
	uowFactory *postgres.GormUnitOfWorkFactory
}

// NewCompositionRoot wires the use cases over gormDB. A nil recorder discards metrics.
func NewCompositionRoot(cfg Config, gormDB *gorm.DB, recorder ports.MetricsRecorder, logger *slog.Logger) CompositionRoot {
	if recorder == nil {
		recorder = ports.NopMetrics{}
	}
	return CompositionRoot{
		cfg:        cfg,
		gormDB:     gormDB,
		logger:     logger,
		clock:      kernel.SystemClock{},
		metrics:    recorder,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB, postgres.WithLockTimeout(cfg.DBLockTimeout)),
	}
}

func (c *CompositionRoot) syncUoWFactory() commands.SyncUoWFactory {
	return FuncSyncUoWFactory(func() commands.SyncUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) controlUoWFactory() commands.ControlUoWFactory {
	return FuncControlUoWFactory(func() commands.ControlUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateSynchronizeLotCommandHandler() commands.SynchronizeLotCommandHandler {
	return commands.NewSynchronizeLotCommandHandler(
		c.syncUoWFactory(), c.clock, c.metrics, c.logger,
		commands.WithMaxAttempts(c.cfg.SyncMaxAttempts),
	)
}

func (c *CompositionRoot) CreateReleaseControlCommandHandler() commands.ReleaseControlCommandHandler {
	return commands.NewReleaseControlCommandHandler(c.controlUoWFactory(), c.metrics)
}

func (c *CompositionRoot) CreateStartRecordCommandHandler() commands.StartRecordCommandHandler {
	return commands.NewStartRecordCommandHandler(c.controlUoWFactory(), c.clock, c.metrics)
}

func (c *CompositionRoot) CreateCompleteRecordCommandHandler() commands.CompleteRecordCommandHandler {
	return commands.NewCompleteRecordCommandHandler(c.controlUoWFactory(), c.clock, c.metrics)
}

func (c *CompositionRoot) CreateEditRecordCommandHandler() commands.EditRecordCommandHandler {
	return commands.NewEditRecordCommandHandler(c.controlUoWFactory())
}

func (c *CompositionRoot) CreateSettleCompletedControlsCommandHandler() commands.SettleCompletedControlsCommandHandler {
	return commands.NewSettleCompletedControlsCommandHandler(c.controlUoWFactory(), c.metrics)
}

func (c *CompositionRoot) CreateListControlsQueryHandler() queries.ListControlsQueryHandler {
	return queries.NewListControlsQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetSeparationSummaryQueryHandler() queries.GetSeparationSummaryQueryHandler {
	return queries.NewGetSeparationSummaryQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateSeparationReader() queries.SeparationReader {
	return queries.NewSeparationReader(c.gormDB)
}

// CreateServer assembles the HTTP adapter over every use case.
func (c *CompositionRoot) CreateServer() *httpin.Server {
	return httpin.NewServer(httpin.Handlers{
		SynchronizeLot: c.CreateSynchronizeLotCommandHandler(),
		ReleaseControl: c.CreateReleaseControlCommandHandler(),
		StartRecord:    c.CreateStartRecordCommandHandler(),
		CompleteRecord: c.CreateCompleteRecordCommandHandler(),
		EditRecord:     c.CreateEditRecordCommandHandler(),
		ListControls:   c.CreateListControlsQueryHandler(),
		Summary:        c.CreateGetSeparationSummaryQueryHandler(),
		Reader:         c.CreateSeparationReader(),
	})
}

// CreateJobManager returns the background jobs. An empty audit schedule yields none.
func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(
		c.CreateSettleCompletedControlsCommandHandler(),
		c.cfg.CascadeAuditSchedule,
		c.cfg.CascadeAuditBatch,
		c.logger,
	)
}

type FuncSyncUoWFactory func() commands.SyncUoW

func (f FuncSyncUoWFactory) Create() commands.SyncUoW {
	return f()
}

type FuncControlUoWFactory func() commands.ControlUoW

func (f FuncControlUoWFactory) Create() commands.ControlUoW {
	return f()
}
