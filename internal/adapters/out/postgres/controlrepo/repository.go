package controlrepo

import (
	"context"
	"errors"

	"expedition/internal/adapters/out/postgres/pgerr"
	"expedition/internal/core/domain/model/kernel"
	"expedition/internal/core/domain/model/separation"
	"expedition/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	controlSubject = "separation control"
	recordSubject  = "cargo record"
)

// writeTracker counts rows written inside the current unit of work.
type writeTracker interface {
	TrackWrites(rows int64)
}

// GormControlRepository implements ports.SeparationControlRepository using GORM.
type GormControlRepository struct {
	db      *gorm.DB
	tracker writeTracker
}

// NewGormControlRepository creates a control repository on db, usually a transaction.
func NewGormControlRepository(db *gorm.DB, tracker writeTracker) *GormControlRepository {
	return &GormControlRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add inserts the control row and then its records.
func (r *GormControlRepository) Add(ctx context.Context, control *separation.Control) error {
	if err := control.Validate(); err != nil {
		return err
	}

	dto := fromDomain(control)
	records := dto.Records
	dto.Records = nil

	db := r.db.WithContext(ctx)
	result := db.Omit(clause.Associations).Create(&dto)
	if result.Error != nil {
		return pgerr.Translate(result.Error, controlSubject, control.LotID())
	}
	r.tracker.TrackWrites(result.RowsAffected)

	if len(records) > 0 {
		result = db.Create(&records)
		if result.Error != nil {
			return pgerr.Translate(result.Error, controlSubject, control.ID())
		}
		r.tracker.TrackWrites(result.RowsAffected)
	}

	control.MarkPersisted()
	return nil
}

// Update writes the pending changes of a stored control: stale records are deleted
// first, then changed rows are updated, then new records are inserted.
func (r *GormControlRepository) Update(ctx context.Context, control *separation.Control) error {
	if err := control.Validate(); err != nil {
		return err
	}

	changes := control.Changes()
	if changes.IsEmpty() {
		return nil
	}

	db := r.db.WithContext(ctx)
	controlID := control.ID().Bytes()

	if len(changes.Removed) > 0 {
		ids := make([]uuid.UUID, 0, len(changes.Removed))
		for _, id := range changes.Removed {
			ids = append(ids, id.Bytes())
		}
		result := db.Where("control_id = ? AND id IN ?", controlID, ids).Delete(&RecordDTO{})
		if result.Error != nil {
			return pgerr.Translate(result.Error, controlSubject, control.ID())
		}
		r.tracker.TrackWrites(result.RowsAffected)
	}

	if changes.ControlChanged {
		dto := fromDomain(control)
		result := db.Model(&ControlDTO{}).Where("id = ?", controlID).Updates(controlColumns(dto))
		if result.Error != nil {
			return pgerr.Translate(result.Error, controlSubject, control.ID())
		}
		if result.RowsAffected == 0 {
			return errs.NewObjectNotFoundError(controlSubject, control.ID().String())
		}
		r.tracker.TrackWrites(result.RowsAffected)
	}

	for _, rec := range changes.Updated {
		dto := recordFromDomain(controlID, rec)
		result := db.Model(&RecordDTO{}).
			Where("id = ? AND control_id = ?", dto.ID, controlID).
			Updates(recordColumns(dto))
		if result.Error != nil {
			return pgerr.Translate(result.Error, controlSubject, control.ID())
		}
		if result.RowsAffected == 0 {
			return errs.NewObjectNotFoundError(recordSubject, rec.ID().String())
		}
		r.tracker.TrackWrites(result.RowsAffected)
	}

	if len(changes.Added) > 0 {
		dtos := make([]RecordDTO, 0, len(changes.Added))
		for _, rec := range changes.Added {
			dtos = append(dtos, recordFromDomain(controlID, rec))
		}
		result := db.Create(&dtos)
		if result.Error != nil {
			return pgerr.Translate(result.Error, controlSubject, control.ID())
		}
		r.tracker.TrackWrites(result.RowsAffected)
	}

	control.MarkPersisted()
	return nil
}

// Delete removes a control and its records.
func (r *GormControlRepository) Delete(ctx context.Context, id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	db := r.db.WithContext(ctx)
	result := db.Where("control_id = ?", id.Bytes()).Delete(&RecordDTO{})
	if result.Error != nil {
		return pgerr.Translate(result.Error, controlSubject, id)
	}
	r.tracker.TrackWrites(result.RowsAffected)

	result = db.Where("id = ?", id.Bytes()).Delete(&ControlDTO{})
	if result.Error != nil {
		return pgerr.Translate(result.Error, controlSubject, id)
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError(controlSubject, id.String())
	}
	r.tracker.TrackWrites(result.RowsAffected)
	return nil
}

// Get retrieves a control with its records ordered by seq.
func (r *GormControlRepository) Get(ctx context.Context, id kernel.UUID) (*separation.Control, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	return r.load(ctx, false, id, "id = ?", id.Bytes())
}

// GetForUpdate retrieves a control and locks its row.
func (r *GormControlRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*separation.Control, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	return r.load(ctx, true, id, "id = ?", id.Bytes())
}

// GetByLotForUpdate retrieves the control of a lot and locks its row.
func (r *GormControlRepository) GetByLotForUpdate(ctx context.Context, lotID kernel.UUID) (*separation.Control, error) {
	if err := lotID.Validate(); err != nil {
		return nil, err
	}
	return r.load(ctx, true, lotID, "lot_id = ?", lotID.Bytes())
}

// GetByRecordForUpdate resolves the control owning a record and locks the control row.
// The record is checked again under the lock since a concurrent synchronization may
// have removed it in between.
func (r *GormControlRepository) GetByRecordForUpdate(ctx context.Context, recordID kernel.UUID) (*separation.Control, error) {
	if err := recordID.Validate(); err != nil {
		return nil, err
	}

	var rec RecordDTO
	err := r.db.WithContext(ctx).Select("control_id").First(&rec, "id = ?", recordID.Bytes()).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NewObjectNotFoundError(recordSubject, recordID.String())
	}
	if err != nil {
		return nil, pgerr.Translate(err, recordSubject, recordID)
	}

	control, err := r.load(ctx, true, recordID, "id = ?", rec.ControlID)
	if errors.Is(err, errs.ErrObjectNotFound) {
		return nil, errs.NewObjectNotFoundError(recordSubject, recordID.String())
	}
	if err != nil {
		return nil, err
	}
	if _, err := control.Record(recordID); err != nil {
		return nil, err
	}
	return control, nil
}

// FindSettleable lists InProgress controls that have records and no unfinished one,
// oldest first.
func (r *GormControlRepository) FindSettleable(ctx context.Context, limit int) ([]kernel.UUID, error) {
	var rows []uuid.UUID
	err := r.db.WithContext(ctx).Raw(`
		SELECT c.id
		FROM separation_controls c
		WHERE c.status = ?
		  AND EXISTS (SELECT 1 FROM separation_cargo_records r WHERE r.control_id = c.id)
		  AND NOT EXISTS (
		      SELECT 1 FROM separation_cargo_records r
		      WHERE r.control_id = c.id AND r.status <> ?
		  )
		ORDER BY c.created_at
		LIMIT ?`,
		int(separation.InProgress), int(separation.Completed), limit,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	ids := make([]kernel.UUID, 0, len(rows))
	for _, raw := range rows {
		id, err := kernel.UUIDFromBytes(raw[:])
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *GormControlRepository) load(ctx context.Context, lock bool, key kernel.UUID, query string, args ...any) (*separation.Control, error) {
	q := r.db.WithContext(ctx)
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var dto ControlDTO
	if err := q.Where(query, args...).First(&dto).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError(controlSubject, key.String())
		}
		return nil, pgerr.Translate(err, controlSubject, key)
	}

	if err := r.db.WithContext(ctx).
		Where("control_id = ?", dto.ID).
		Order("seq").
		Find(&dto.Records).Error; err != nil {
		return nil, pgerr.Translate(err, controlSubject, key)
	}

	return toDomain(dto)
}
