package queries

import (
	"context"

	"gorm.io/gorm"
)

// ListControlsQueryHandler lists controls from the database.
type ListControlsQueryHandler struct {
	db *gorm.DB
}

// NewListControlsQueryHandler creates the handler.
func NewListControlsQueryHandler(db *gorm.DB) ListControlsQueryHandler {
	return ListControlsQueryHandler{db: db}
}

// Handle returns the matching controls. An empty result is an empty slice.
func (h ListControlsQueryHandler) Handle(ctx context.Context, query ListControlsQuery) ([]ControlView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	where, args := query.Filter().where()
	rows, err := h.db.WithContext(ctx).Raw(
		"SELECT"+controlColumns+controlFrom+" WHERE "+where+" ORDER BY l.date DESC, l.code",
		args...,
	).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	controls := make([]ControlView, 0)
	for rows.Next() {
		v, err := scanControl(rows)
		if err != nil {
			return nil, err
		}
		controls = append(controls, v)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return controls, nil
}
