// Package pgtest starts a disposable PostgreSQL for integration tests and seeds
// transport lots the way the transport subsystem stores them.
package pgtest

import (
	"context"
	"time"

	postgres_adapter "expedition/internal/adapters/out/postgres"
	"expedition/internal/adapters/out/postgres/lotrepo"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database is a migrated PostgreSQL container with an open GORM connection.
type Database struct {
	Container *postgres.PostgresContainer
	DB        *gorm.DB
}

// Start runs postgres:15-alpine, connects GORM and applies the migrations.
func Start(ctx context.Context) (*Database, error) {
	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2)),
	)
	if err != nil {
		return nil, err
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}

	if err := postgres_adapter.Migrate(ctx, db); err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}

	return &Database{Container: container, DB: db}, nil
}

// Truncate empties every table.
func (d *Database) Truncate() error {
	return d.DB.Exec("TRUNCATE TABLE separation_cargo_records, separation_controls, cargo_items, transport_lots").Error
}

// Terminate stops the container.
func (d *Database) Terminate(ctx context.Context) error {
	return d.Container.Terminate(ctx)
}

// Cargo describes one cargo item to seed.
type Cargo struct {
	ID     uuid.UUID
	Number string
	Seq    int
}

// LotSeed describes a lot to seed. Zero fields get workable defaults.
type LotSeed struct {
	ID          uuid.UUID
	Code        string
	Destination string
	Vehicle     string
	Date        time.Time
	Weight      decimal.Decimal
	Volume      decimal.Decimal
	Blocked     bool
	Cargo       []Cargo
}

// SeedLot inserts a lot with its cargo items and returns the stored row.
func (d *Database) SeedLot(ctx context.Context, seed LotSeed) (lotrepo.LotDTO, error) {
	dto := lotrepo.LotDTO{
		ID:          seed.ID,
		Code:        seed.Code,
		Destination: seed.Destination,
		State:       "SP",
		Weight:      seed.Weight,
		Volume:      seed.Volume,
		Date:        seed.Date,
		Vehicle:     seed.Vehicle,
		BlockState:  "RELEASED",
	}
	if dto.ID == uuid.Nil {
		dto.ID = uuid.New()
	}
	if dto.Code == "" {
		dto.Code = "LOT-" + dto.ID.String()[:8]
	}
	if dto.Destination == "" {
		dto.Destination = "Campinas"
	}
	if dto.Date.IsZero() {
		dto.Date = time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)
	}
	if seed.Blocked {
		dto.BlockState = "BLOCKED"
	}
	for _, c := range seed.Cargo {
		id := c.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		dto.Items = append(dto.Items, lotrepo.CargoItemDTO{
			ID:          id,
			LotID:       dto.ID,
			CargoNumber: c.Number,
			Seq:         c.Seq,
			Deliveries:  1,
			Mode:        "F",
		})
	}

	if err := d.DB.WithContext(ctx).Create(&dto).Error; err != nil {
		return lotrepo.LotDTO{}, err
	}
	return dto, nil
}

// SetCargo replaces the cargo items of a lot, as a transport edit would.
func (d *Database) SetCargo(ctx context.Context, lotID uuid.UUID, cargo []Cargo) error {
	return d.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		keep := make([]uuid.UUID, 0, len(cargo))
		for _, c := range cargo {
			if c.ID != uuid.Nil {
				keep = append(keep, c.ID)
			}
		}
		del := tx.Where("lot_id = ?", lotID)
		if len(keep) > 0 {
			del = del.Where("id NOT IN ?", keep)
		}
		if err := del.Delete(&lotrepo.CargoItemDTO{}).Error; err != nil {
			return err
		}
		for _, c := range cargo {
			item := lotrepo.CargoItemDTO{ID: c.ID, LotID: lotID, CargoNumber: c.Number, Seq: c.Seq, Deliveries: 1, Mode: "F"}
			if item.ID == uuid.Nil {
				item.ID = uuid.New()
			}
			if err := tx.Save(&item).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// SetBlocked changes the block state of a lot.
func (d *Database) SetBlocked(ctx context.Context, lotID uuid.UUID, blocked bool) error {
	state := "RELEASED"
	if blocked {
		state = "BLOCKED"
	}
	return d.DB.WithContext(ctx).Model(&lotrepo.LotDTO{}).Where("id = ?", lotID).Update("block_state", state).Error
}
