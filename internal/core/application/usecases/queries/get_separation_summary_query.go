package queries

import (
	"errors"
	"time"

	"expedition/internal/core/domain/model/separation"
	"expedition/internal/pkg/errs"
	"expedition/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var ErrGetSeparationSummaryQueryIsNotConstructed = errors.New(
	"GetSeparationSummaryQuery must be created via NewGetSeparationSummaryQuery constructor",
)

// GetSeparationSummaryQuery builds the daily expedition dashboard for one lot date.
type GetSeparationSummaryQuery struct {
	date time.Time

	guard guard.ConstructorGuard
}

// NewGetSeparationSummaryQuery creates the query. Only the calendar day of date counts.
func NewGetSeparationSummaryQuery(date time.Time) (GetSeparationSummaryQuery, error) {
	if date.IsZero() {
		return GetSeparationSummaryQuery{}, errs.NewValueIsRequiredError("date")
	}
	return GetSeparationSummaryQuery{date: dateOnly(date), guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetSeparationSummaryQuery) Validate() error {
	return q.guard.Validate(ErrGetSeparationSummaryQueryIsNotConstructed)
}

// Date returns the summarized day.
func (q GetSeparationSummaryQuery) Date() time.Time {
	return q.date
}

// SeparationSummary aggregates one day of lots. Blocked lots count in Lots and
// BlockedLots but not in the weight and volume sums.
type SeparationSummary struct {
	Date             time.Time
	Lots             int
	BlockedLots      int
	Weight           decimal.Decimal
	Volume           decimal.Decimal
	ControlsByStatus map[separation.Status]int
	RecordsByStatus  map[separation.Status]int
}
