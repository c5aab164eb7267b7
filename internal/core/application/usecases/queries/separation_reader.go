package queries

import (
	"context"
	"database/sql"
	"errors"

	"expedition/internal/pkg/errs"

	"gorm.io/gorm"
)

const (
	controlSubject = "separation control"
	recordSubject  = "cargo record"
)

// SeparationReader answers the single-item and per-control queries.
type SeparationReader struct {
	db *gorm.DB
}

// NewSeparationReader creates a reader on db.
func NewSeparationReader(db *gorm.DB) SeparationReader {
	return SeparationReader{db: db}
}

// GetControl returns one control or an ObjectNotFoundError.
func (h SeparationReader) GetControl(ctx context.Context, query GetControlQuery) (ControlView, error) {
	if err := query.Validate(); err != nil {
		return ControlView{}, err
	}

	row := h.db.WithContext(ctx).Raw(
		"SELECT"+controlColumns+controlFrom+" WHERE c.id = ?",
		query.ControlID().Bytes(),
	).Row()
	v, err := scanControl(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ControlView{}, errs.NewObjectNotFoundError(controlSubject, query.ControlID().String())
	}
	return v, err
}

// ListControlRecords returns the records of a control by seq. A missing control is an
// ObjectNotFoundError; a control without records yields an empty slice.
func (h SeparationReader) ListControlRecords(ctx context.Context, query ListControlRecordsQuery) ([]RecordView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	db := h.db.WithContext(ctx)
	var exists bool
	if err := db.Raw(
		"SELECT EXISTS (SELECT 1 FROM separation_controls WHERE id = ?)", query.ControlID().Bytes(),
	).Scan(&exists).Error; err != nil {
		return nil, err
	}
	if !exists {
		return nil, errs.NewObjectNotFoundError(controlSubject, query.ControlID().String())
	}

	rows, err := db.Raw(
		"SELECT"+recordColumns+" FROM separation_cargo_records r WHERE r.control_id = ? ORDER BY r.seq",
		query.ControlID().Bytes(),
	).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]RecordView, 0)
	for rows.Next() {
		v, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, v)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// GetRecord returns one record or an ObjectNotFoundError.
func (h SeparationReader) GetRecord(ctx context.Context, query GetRecordQuery) (RecordView, error) {
	if err := query.Validate(); err != nil {
		return RecordView{}, err
	}

	row := h.db.WithContext(ctx).Raw(
		"SELECT"+recordColumns+" FROM separation_cargo_records r WHERE r.id = ?",
		query.RecordID().Bytes(),
	).Row()
	v, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RecordView{}, errs.NewObjectNotFoundError(recordSubject, query.RecordID().String())
	}
	return v, err
}
