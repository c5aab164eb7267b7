package postgres

import (
	"context"

	"expedition/internal/adapters/out/postgres/controlrepo"
	"expedition/internal/adapters/out/postgres/lotrepo"

	"gorm.io/gorm"
)

// constraintStatements add the store-level uniqueness and reference rules GORM tags
// cannot express. The (control, seq) constraint is deferred to commit so a
// synchronization can swap sequence numbers between records.
var constraintStatements = []string{
	`DO $$ BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'uq_separation_controls_lot') THEN
			ALTER TABLE separation_controls
				ADD CONSTRAINT uq_separation_controls_lot UNIQUE (lot_id);
		END IF;
	END $$`,
	`DO $$ BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'fk_separation_controls_lot') THEN
			ALTER TABLE separation_controls
				ADD CONSTRAINT fk_separation_controls_lot FOREIGN KEY (lot_id)
				REFERENCES transport_lots (id) ON DELETE CASCADE;
		END IF;
	END $$`,
	`DO $$ BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'uq_separation_records_control_seq') THEN
			ALTER TABLE separation_cargo_records
				ADD CONSTRAINT uq_separation_records_control_seq UNIQUE (control_id, seq)
				DEFERRABLE INITIALLY DEFERRED;
		END IF;
	END $$`,
	`DO $$ BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'uq_separation_records_control_item') THEN
			ALTER TABLE separation_cargo_records
				ADD CONSTRAINT uq_separation_records_control_item UNIQUE (control_id, cargo_item_id);
		END IF;
	END $$`,
	`DO $$ BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'fk_separation_records_cargo_item') THEN
			ALTER TABLE separation_cargo_records
				ADD CONSTRAINT fk_separation_records_cargo_item FOREIGN KEY (cargo_item_id)
				REFERENCES cargo_items (id) ON DELETE CASCADE;
		END IF;
	END $$`,
}

// Migrate creates or updates the lot, control and record tables and their constraints.
// It is safe to run on every start.
func Migrate(ctx context.Context, db *gorm.DB) error {
	db = db.WithContext(ctx)

	if err := db.AutoMigrate(
		&lotrepo.LotDTO{},
		&lotrepo.CargoItemDTO{},
		&controlrepo.ControlDTO{},
		&controlrepo.RecordDTO{},
	); err != nil {
		return err
	}

	for _, stmt := range constraintStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
