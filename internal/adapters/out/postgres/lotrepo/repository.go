package lotrepo

import (
	"context"
	"errors"

	"expedition/internal/adapters/out/postgres/pgerr"
	"expedition/internal/core/domain/model/kernel"
	"expedition/internal/core/domain/model/transport"
	"expedition/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const lotSubject = "transport lot"

// GormLotRepository implements ports.TransportLotRepository using GORM.
type GormLotRepository struct {
	db *gorm.DB
}

// NewGormLotRepository creates a lot repository on db, usually a transaction.
func NewGormLotRepository(db *gorm.DB) *GormLotRepository {
	return &GormLotRepository{db: db}
}

// Get retrieves a lot with its cargo items.
func (r *GormLotRepository) Get(ctx context.Context, id kernel.UUID) (*transport.Lot, error) {
	return r.get(ctx, id, false)
}

// GetForUpdate retrieves a lot and holds a row lock on it until the transaction ends.
func (r *GormLotRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*transport.Lot, error) {
	return r.get(ctx, id, true)
}

func (r *GormLotRepository) get(ctx context.Context, id kernel.UUID, lock bool) (*transport.Lot, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	q := r.db.WithContext(ctx)
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var dto LotDTO
	if err := q.First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError(lotSubject, id.String())
		}
		return nil, pgerr.Translate(err, lotSubject, id)
	}

	if err := r.db.WithContext(ctx).
		Where("lot_id = ?", dto.ID).
		Order("seq").
		Find(&dto.Items).Error; err != nil {
		return nil, pgerr.Translate(err, lotSubject, id)
	}

	return toDomain(dto)
}
