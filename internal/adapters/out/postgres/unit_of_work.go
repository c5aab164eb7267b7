// Package postgres provides the GORM-based Unit of Work of the separation service.
// The Unit of Work maintains one database transaction per business operation and
// hands out repositories bound to it.
//
// Key Features:
//   - Transaction management across the lot and control repositories
//   - Optional per-transaction lock timeout (SET LOCAL lock_timeout)
//   - Write accounting: every inserted, updated or deleted row is counted
//   - Commit-time constraint violations translated to domain errors
//
// Usage:
//
//	factory := NewGormUnitOfWorkFactory(db, WithLockTimeout(5*time.Second))
//	uow := factory.Create()
//
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer func() {
//	    _ = uow.Rollback(ctx)
//	}()
//
//	lot, err := uow.TransportLotRepository().GetForUpdate(ctx, lotID)
//	if err != nil {
//	    return err
//	}
//	// ...
//	return uow.Commit(ctx)
//
// Concurrency Considerations:
//   - Each UnitOfWork instance provides an isolated transaction
//   - Multiple goroutines must use separate UnitOfWork instances
//   - Row locks taken through GetForUpdate are held until Commit or Rollback
package postgres

import (
	"context"
	"fmt"
	"time"

	"expedition/internal/adapters/out/postgres/controlrepo"
	"expedition/internal/adapters/out/postgres/lotrepo"
	"expedition/internal/adapters/out/postgres/pgerr"
	"expedition/internal/core/ports"

	"gorm.io/gorm"
)

// Option configures a GormUnitOfWorkFactory.
type Option func(*GormUnitOfWorkFactory)

// WithLockTimeout bounds how long a transaction waits for a row lock. Zero waits forever.
func WithLockTimeout(d time.Duration) Option {
	return func(f *GormUnitOfWorkFactory) {
		f.lockTimeout = d
	}
}

// GormUnitOfWorkFactory creates UnitOfWork instances using GORM database connections.
// Each business operation gets a fresh unit of work.
//
// Example:
//
//	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
//	if err != nil {
//	    log.Fatal("failed to connect database")
//	}
//	factory := NewGormUnitOfWorkFactory(db)
type GormUnitOfWorkFactory struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

// NewGormUnitOfWorkFactory creates a factory for GORM-based unit of work instances.
func NewGormUnitOfWorkFactory(db *gorm.DB, opts ...Option) *GormUnitOfWorkFactory {
	f := &GormUnitOfWorkFactory{db: db}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create produces a new UnitOfWork with its own transaction state and write count.
func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{
		db:          f.db,
		lockTimeout: f.lockTimeout,
	}
}

// GormUnitOfWork coordinates one database transaction and counts the rows written
// inside it. Repositories report their writes through TrackWrites.
type GormUnitOfWork struct {
	db          *gorm.DB
	tx          *gorm.DB
	lockTimeout time.Duration
	writes      int
}

// Begin starts a transaction. Calling it again while a transaction is open is a no-op.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	tx := uow.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}

	if uow.lockTimeout > 0 {
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", uow.lockTimeout.Milliseconds())
		if err := tx.Exec(stmt).Error; err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	uow.tx = tx
	uow.writes = 0
	return nil
}

// Commit finalizes the transaction. Deferred constraint violations surface here and
// are translated like repository errors.
func (uow *GormUnitOfWork) Commit(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Commit().Error
	uow.tx = nil
	return pgerr.Translate(err, "transaction", nil)
}

// Rollback discards the transaction. It returns gorm.ErrInvalidTransaction when no
// transaction is open, which callers deferring it after Commit ignore.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	return err
}

// Writes returns how many rows were written since Begin.
func (uow *GormUnitOfWork) Writes() int {
	return uow.writes
}

// TrackWrites adds rows to the write count. Repositories call it after each statement.
func (uow *GormUnitOfWork) TrackWrites(rows int64) {
	uow.writes += int(rows)
}

// TransportLotRepository returns the lot repository bound to the current transaction,
// or to the plain connection when none is open.
func (uow *GormUnitOfWork) TransportLotRepository() ports.TransportLotRepository {
	return lotrepo.NewGormLotRepository(uow.conn())
}

// SeparationControlRepository returns the control repository bound to the current
// transaction, or to the plain connection when none is open.
func (uow *GormUnitOfWork) SeparationControlRepository() ports.SeparationControlRepository {
	return controlrepo.NewGormControlRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) conn() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}
