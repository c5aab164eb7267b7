// Package lotrepo reads transport lots and their cargo items from the tables owned
// by the transport subsystem.
package lotrepo

import (
	"time"

	"expedition/internal/core/domain/model/kernel"
	"expedition/internal/core/domain/model/transport"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LotDTO is a row of transport_lots.
type LotDTO struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Code        string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Destination string          `gorm:"type:varchar(100);not null"`
	State       string          `gorm:"type:varchar(2);not null;default:''"`
	Weight      decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	Volume      decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	Date        time.Time       `gorm:"type:date;not null;index"`
	Note        string          `gorm:"type:text;not null;default:''"`
	Vehicle     string          `gorm:"type:varchar(20);not null;default:''"`
	BlockState  string          `gorm:"type:varchar(10);not null;default:'RELEASED'"`
	Items       []CargoItemDTO  `gorm:"foreignKey:LotID;constraint:OnDelete:CASCADE"`
}

// TableName pins the table name shared with the transport subsystem.
func (LotDTO) TableName() string {
	return "transport_lots"
}

// CargoItemDTO is a row of cargo_items.
type CargoItemDTO struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	LotID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_cargo_items_lot_number;uniqueIndex:uq_cargo_items_lot_seq"`
	CargoNumber string    `gorm:"type:varchar(20);not null;uniqueIndex:uq_cargo_items_lot_number"`
	Seq         int       `gorm:"type:int;not null;uniqueIndex:uq_cargo_items_lot_seq"`
	Deliveries  int       `gorm:"type:int;not null;default:1"`
	Mode        string    `gorm:"type:varchar(10);not null;default:'-'"`
}

// TableName pins the table name shared with the transport subsystem.
func (CargoItemDTO) TableName() string {
	return "cargo_items"
}

func toDomain(dto LotDTO) (*transport.Lot, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	items := make([]*transport.CargoItem, 0, len(dto.Items))
	for _, it := range dto.Items {
		itemID, err := kernel.UUIDFromBytes(it.ID[:])
		if err != nil {
			return nil, err
		}
		item, err := transport.RestoreCargoItem(itemID, it.CargoNumber, it.Seq, it.Deliveries, it.Mode)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return transport.RestoreLot(id, dto.Code, transport.LotDetails{
		Destination: dto.Destination,
		State:       dto.State,
		Weight:      dto.Weight,
		Volume:      dto.Volume,
		Date:        dto.Date,
		Note:        dto.Note,
		Vehicle:     transport.VehicleType(dto.Vehicle),
	}, transport.BlockState(dto.BlockState), items)
}
