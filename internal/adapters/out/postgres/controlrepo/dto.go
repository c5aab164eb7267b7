// Package controlrepo persists separation controls and their cargo records.
package controlrepo

import (
	"time"

	"expedition/internal/core/domain/model/kernel"
	"expedition/internal/core/domain/model/separation"

	"github.com/google/uuid"
)

// ControlDTO is a row of separation_controls.
type ControlDTO struct {
	ID        uuid.UUID   `gorm:"type:uuid;primaryKey"`
	LotID     uuid.UUID   `gorm:"type:uuid;not null"`
	Status    int         `gorm:"type:smallint;not null;index"`
	Released  bool        `gorm:"not null;default:false"`
	StartedAt *time.Time  `gorm:"type:timestamptz"`
	Completed bool        `gorm:"not null;default:false"`
	CreatedAt time.Time   `gorm:"type:timestamptz;not null;autoCreateTime:false"`
	Records   []RecordDTO `gorm:"foreignKey:ControlID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table for separation controls.
func (ControlDTO) TableName() string {
	return "separation_controls"
}

// RecordDTO is a row of separation_cargo_records.
type RecordDTO struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ControlID         uuid.UUID  `gorm:"type:uuid;not null;index"`
	CargoItemID       uuid.UUID  `gorm:"type:uuid;not null"`
	CargoNumber       string     `gorm:"type:varchar(20);not null"`
	Seq               int        `gorm:"type:int;not null"`
	Deliveries        int        `gorm:"type:int;not null"`
	Mode              string     `gorm:"type:varchar(10);not null"`
	Status            int        `gorm:"type:smallint;not null;index"`
	Assigned          bool       `gorm:"not null;default:false"`
	Finalized         bool       `gorm:"not null;default:false"`
	Checker           string     `gorm:"type:varchar(100);not null"`
	Pickers           string     `gorm:"type:varchar(255);not null"`
	TransportOrder    string     `gorm:"type:varchar(10);not null"`
	DockBox           string     `gorm:"type:varchar(20);not null"`
	ConferenceSummary bool       `gorm:"not null;default:false"`
	DriverSummary     bool       `gorm:"not null;default:false"`
	CDLabels          bool       `gorm:"column:cd_labels;not null;default:false"`
	LoadGenerated     bool       `gorm:"not null;default:false"`
	StartedAt         *time.Time `gorm:"type:timestamptz"`
}

// TableName specifies the table for cargo records.
func (RecordDTO) TableName() string {
	return "separation_cargo_records"
}

func fromDomain(c *separation.Control) ControlDTO {
	s := c.Snapshot()
	dto := ControlDTO{
		ID:        s.ID.Bytes(),
		LotID:     s.LotID.Bytes(),
		Status:    int(s.Status),
		Released:  s.Released,
		StartedAt: s.StartedAt,
		Completed: s.Completed,
		CreatedAt: s.CreatedAt,
	}
	for _, r := range c.Records() {
		dto.Records = append(dto.Records, recordFromDomain(dto.ID, r))
	}
	return dto
}

func recordFromDomain(controlID uuid.UUID, r *separation.CargoRecord) RecordDTO {
	s := r.Snapshot()
	return RecordDTO{
		ID:                s.ID.Bytes(),
		ControlID:         controlID,
		CargoItemID:       s.CargoItemID.Bytes(),
		CargoNumber:       s.CargoNumber,
		Seq:               s.Seq,
		Deliveries:        s.Deliveries,
		Mode:              s.Mode,
		Status:            int(s.Status),
		Assigned:          s.Assigned,
		Finalized:         s.Finalized,
		Checker:           s.Checker,
		Pickers:           s.Pickers,
		TransportOrder:    s.TransportOrder,
		DockBox:           s.DockBox,
		ConferenceSummary: s.Documents.ConferenceSummary,
		DriverSummary:     s.Documents.DriverSummary,
		CDLabels:          s.Documents.CDLabels,
		LoadGenerated:     s.Documents.LoadGenerated,
		StartedAt:         s.StartedAt,
	}
}

// controlColumns are the mutable columns of a control row.
func controlColumns(dto ControlDTO) map[string]any {
	return map[string]any{
		"status":     dto.Status,
		"released":   dto.Released,
		"started_at": dto.StartedAt,
		"completed":  dto.Completed,
	}
}

// recordColumns are the mutable columns of a record row.
func recordColumns(dto RecordDTO) map[string]any {
	return map[string]any{
		"cargo_number":       dto.CargoNumber,
		"seq":                dto.Seq,
		"deliveries":         dto.Deliveries,
		"mode":               dto.Mode,
		"status":             dto.Status,
		"assigned":           dto.Assigned,
		"finalized":          dto.Finalized,
		"checker":            dto.Checker,
		"pickers":            dto.Pickers,
		"transport_order":    dto.TransportOrder,
		"dock_box":           dto.DockBox,
		"conference_summary": dto.ConferenceSummary,
		"driver_summary":     dto.DriverSummary,
		"cd_labels":          dto.CDLabels,
		"load_generated":     dto.LoadGenerated,
		"started_at":         dto.StartedAt,
	}
}

func toDomain(dto ControlDTO) (*separation.Control, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	lotID, err := kernel.UUIDFromBytes(dto.LotID[:])
	if err != nil {
		return nil, err
	}

	records := make([]*separation.CargoRecord, 0, len(dto.Records))
	for _, rd := range dto.Records {
		r, err := recordToDomain(rd)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}

	return separation.RestoreControl(separation.ControlSnapshot{
		ID:        id,
		LotID:     lotID,
		Status:    separation.Status(dto.Status),
		Released:  dto.Released,
		StartedAt: dto.StartedAt,
		Completed: dto.Completed,
		CreatedAt: dto.CreatedAt,
	}, records)
}

func recordToDomain(dto RecordDTO) (*separation.CargoRecord, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	itemID, err := kernel.UUIDFromBytes(dto.CargoItemID[:])
	if err != nil {
		return nil, err
	}

	return separation.RestoreCargoRecord(separation.RecordSnapshot{
		ID:             id,
		CargoItemID:    itemID,
		CargoNumber:    dto.CargoNumber,
		Seq:            dto.Seq,
		Deliveries:     dto.Deliveries,
		Mode:           dto.Mode,
		Status:         separation.Status(dto.Status),
		Assigned:       dto.Assigned,
		Finalized:      dto.Finalized,
		Checker:        dto.Checker,
		Pickers:        dto.Pickers,
		TransportOrder: dto.TransportOrder,
		DockBox:        dto.DockBox,
		Documents: separation.Documents{
			ConferenceSummary: dto.ConferenceSummary,
			DriverSummary:     dto.DriverSummary,
			CDLabels:          dto.CDLabels,
			LoadGenerated:     dto.LoadGenerated,
		},
		StartedAt: dto.StartedAt,
	})
}
