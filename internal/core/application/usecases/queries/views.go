// Package queries contains the read side of separation: control and record listings
// and the daily summary. Handlers read straight from the tables with SQL and never load
// aggregates.
package queries

import (
	"time"

	"expedition/internal/core/domain/model/kernel"
	"expedition/internal/core/domain/model/separation"
	"expedition/internal/core/domain/model/transport"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ControlView is a separation control joined with its lot.
type ControlView struct {
	ID               kernel.UUID
	LotID            kernel.UUID
	LotCode          string
	Destination      string
	Vehicle          transport.VehicleType
	LotDate          time.Time
	Weight           decimal.Decimal
	Volume           decimal.Decimal
	Note             string
	Status           separation.Status
	Released         bool
	Completed        bool
	StartedAt        *time.Time
	CreatedAt        time.Time
	Records          int
	CompletedRecords int
}

// RecordView is a cargo record as shown on the separation floor.
type RecordView struct {
	ID             kernel.UUID
	ControlID      kernel.UUID
	CargoItemID    kernel.UUID
	CargoNumber    string
	Seq            int
	Deliveries     int
	Mode           string
	Status         separation.Status
	Assigned       bool
	Finalized      bool
	Checker        string
	Pickers        string
	TransportOrder string
	DockBox        string
	Documents      separation.Documents
	StartedAt      *time.Time
}

const controlColumns = `
	c.id, c.lot_id, l.code, l.destination, l.vehicle, l.date, l.weight, l.volume, l.note,
	c.status, c.released, c.completed, c.started_at, c.created_at,
	(SELECT COUNT(*) FROM separation_cargo_records r WHERE r.control_id = c.id),
	(SELECT COUNT(*) FROM separation_cargo_records r WHERE r.control_id = c.id AND r.finalized)`

const controlFrom = `
	FROM separation_controls c
	JOIN transport_lots l ON l.id = c.lot_id`

const recordColumns = `
	r.id, r.control_id, r.cargo_item_id, r.cargo_number, r.seq, r.deliveries, r.mode,
	r.status, r.assigned, r.finalized, r.checker, r.pickers, r.transport_order, r.dock_box,
	r.conference_summary, r.driver_summary, r.cd_labels, r.load_generated, r.started_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanControl(row scanner) (ControlView, error) {
	var (
		v              ControlView
		id, lotID      uuid.UUID
		vehicle        string
		status         int
		records, final int64
	)
	if err := row.Scan(
		&id, &lotID, &v.LotCode, &v.Destination, &vehicle, &v.LotDate, &v.Weight, &v.Volume, &v.Note,
		&status, &v.Released, &v.Completed, &v.StartedAt, &v.CreatedAt,
		&records, &final,
	); err != nil {
		return ControlView{}, err
	}

	var err error
	if v.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
		return ControlView{}, err
	}
	if v.LotID, err = kernel.UUIDFromBytes(lotID[:]); err != nil {
		return ControlView{}, err
	}
	v.Vehicle = transport.VehicleType(vehicle)
	if v.Vehicle == "" {
		v.Vehicle = transport.VehicleNotInformed
	}
	v.Status = separation.Status(status)
	v.Records = int(records)
	v.CompletedRecords = int(final)
	return v, nil
}

func scanRecord(row scanner) (RecordView, error) {
	var (
		v                    RecordView
		id, controlID, cargo uuid.UUID
		status               int
	)
	if err := row.Scan(
		&id, &controlID, &cargo, &v.CargoNumber, &v.Seq, &v.Deliveries, &v.Mode,
		&status, &v.Assigned, &v.Finalized, &v.Checker, &v.Pickers, &v.TransportOrder, &v.DockBox,
		&v.Documents.ConferenceSummary, &v.Documents.DriverSummary, &v.Documents.CDLabels, &v.Documents.LoadGenerated,
		&v.StartedAt,
	); err != nil {
		return RecordView{}, err
	}

	var err error
	if v.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
		return RecordView{}, err
	}
	if v.ControlID, err = kernel.UUIDFromBytes(controlID[:]); err != nil {
		return RecordView{}, err
	}
	if v.CargoItemID, err = kernel.UUIDFromBytes(cargo[:]); err != nil {
		return RecordView{}, err
	}
	v.Status = separation.Status(status)
	return v, nil
}
