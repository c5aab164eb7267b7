package queries

import (
	"context"
	"database/sql"

	"expedition/internal/core/domain/model/separation"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GetSeparationSummaryQueryHandler computes the daily summary in three statements
// inside one read-only REPEATABLE READ transaction, so lot, control and record
// counts come from the same snapshot.
type GetSeparationSummaryQueryHandler struct {
	db *gorm.DB
}

// NewGetSeparationSummaryQueryHandler creates the handler.
func NewGetSeparationSummaryQueryHandler(db *gorm.DB) GetSeparationSummaryQueryHandler {
	return GetSeparationSummaryQueryHandler{db: db}
}

type statusCount struct {
	Status int
	Total  int
}

// Handle returns the summary. Every control and record status is present in the maps,
// with zero when nothing matches.
func (h GetSeparationSummaryQueryHandler) Handle(ctx context.Context, query GetSeparationSummaryQuery) (SeparationSummary, error) {
	if err := query.Validate(); err != nil {
		return SeparationSummary{}, err
	}

	summary := SeparationSummary{
		Date:             query.Date(),
		Weight:           decimal.Zero,
		Volume:           decimal.Zero,
		ControlsByStatus: emptyStatusCounts(),
		RecordsByStatus:  emptyStatusCounts(),
	}

	err := h.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		var lots struct {
			Lots    int
			Blocked int
			Weight  decimal.Decimal
			Volume  decimal.Decimal
		}
		if err := db.Raw(`
			SELECT
				COUNT(*) AS lots,
				COUNT(*) FILTER (WHERE block_state = 'BLOCKED') AS blocked,
				COALESCE(SUM(weight) FILTER (WHERE block_state <> 'BLOCKED'), 0) AS weight,
				COALESCE(SUM(volume) FILTER (WHERE block_state <> 'BLOCKED'), 0) AS volume
			FROM transport_lots
			WHERE date = ?`, query.Date()).Scan(&lots).Error; err != nil {
			return err
		}
		summary.Lots = lots.Lots
		summary.BlockedLots = lots.Blocked
		summary.Weight = lots.Weight
		summary.Volume = lots.Volume

		var controls []statusCount
		if err := db.Raw(`
			SELECT c.status AS status, COUNT(*) AS total
			FROM separation_controls c
			JOIN transport_lots l ON l.id = c.lot_id
			WHERE l.date = ?
			GROUP BY c.status`, query.Date()).Scan(&controls).Error; err != nil {
			return err
		}
		for _, c := range controls {
			summary.ControlsByStatus[separation.Status(c.Status)] = c.Total
		}

		var records []statusCount
		if err := db.Raw(`
			SELECT r.status AS status, COUNT(*) AS total
			FROM separation_cargo_records r
			JOIN separation_controls c ON c.id = r.control_id
			JOIN transport_lots l ON l.id = c.lot_id
			WHERE l.date = ?
			GROUP BY r.status`, query.Date()).Scan(&records).Error; err != nil {
			return err
		}
		for _, r := range records {
			summary.RecordsByStatus[separation.Status(r.Status)] = r.Total
		}
		return nil
	}, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return SeparationSummary{}, err
	}
	return summary, nil
}

func emptyStatusCounts() map[separation.Status]int {
	return map[separation.Status]int{
		separation.Pending:         0,
		separation.AwaitingRelease: 0,
		separation.InProgress:      0,
		separation.Completed:       0,
	}
}
