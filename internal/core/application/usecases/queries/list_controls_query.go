package queries

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"expedition/internal/core/domain/model/separation"
	"expedition/internal/core/domain/model/transport"
	"expedition/internal/pkg/errs"
	"expedition/internal/pkg/guard"
)

var ErrListControlsQueryIsNotConstructed = errors.New(
	"ListControlsQuery must be created via NewListControlsQuery constructor",
)

// ControlFilter narrows a control listing. Zero fields do not filter. Text filters
// match case-insensitive substrings; Day, Month and Year match parts of the lot date.
type ControlFilter struct {
	Status      *separation.Status
	LotCode     string
	Destination string
	Vehicle     transport.VehicleType
	CargoNumber string
	Date        *time.Time
	Day         int
	Month       int
	Year        int
}

// ListControlsQuery lists separation controls with their lot data, newest lot date first.
//
// Example:
//
//	status := separation.Completed
//	query, err := NewListControlsQuery(ControlFilter{Status: &status, Month: 5, Year: 2026})
//	if err != nil {
//	    return err
//	}
//	controls, err := handler.Handle(ctx, query)
type ListControlsQuery struct {
	filter ControlFilter

	guard guard.ConstructorGuard
}

// NewListControlsQuery validates the filter and creates the query.
func NewListControlsQuery(filter ControlFilter) (ListControlsQuery, error) {
	var problems []error
	if filter.Status != nil {
		problems = append(problems, filter.Status.ValidateForControl())
	}
	if filter.Day != 0 && (filter.Day < 1 || filter.Day > 31) {
		problems = append(problems, errs.NewValueIsOutOfRangeError("day", filter.Day, 1, 31))
	}
	if filter.Month != 0 && (filter.Month < 1 || filter.Month > 12) {
		problems = append(problems, errs.NewValueIsOutOfRangeError("month", filter.Month, 1, 12))
	}
	if filter.Year != 0 && (filter.Year < 1 || filter.Year > 9999) {
		problems = append(problems, errs.NewValueIsOutOfRangeError("year", filter.Year, 1, 9999))
	}
	if err := errors.Join(problems...); err != nil {
		return ListControlsQuery{}, err
	}

	filter.LotCode = strings.TrimSpace(filter.LotCode)
	filter.Destination = strings.TrimSpace(filter.Destination)
	filter.CargoNumber = strings.TrimSpace(filter.CargoNumber)
	filter.Vehicle = transport.VehicleType(strings.TrimSpace(string(filter.Vehicle)))
	return ListControlsQuery{filter: filter, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q ListControlsQuery) Validate() error {
	return q.guard.Validate(ErrListControlsQueryIsNotConstructed)
}

// Filter returns the normalized filter.
func (q ListControlsQuery) Filter() ControlFilter {
	return q.filter
}

// where renders the filter as a SQL condition over separation_controls c joined with
// transport_lots l.
func (f ControlFilter) where() (string, []any) {
	conds := []string{"TRUE"}
	var args []any
	add := func(cond string, arg any) {
		conds = append(conds, cond)
		args = append(args, arg)
	}

	if f.Status != nil {
		add("c.status = ?", int(*f.Status))
	}
	if f.LotCode != "" {
		add(`l.code ILIKE ? ESCAPE '\'`, containsPattern(f.LotCode))
	}
	if f.Destination != "" {
		add(`l.destination ILIKE ? ESCAPE '\'`, containsPattern(f.Destination))
	}
	if f.Vehicle != "" {
		if f.Vehicle == transport.VehicleNotInformed {
			add("(l.vehicle = ? OR l.vehicle = '')", string(f.Vehicle))
		} else {
			add("l.vehicle = ?", string(f.Vehicle))
		}
	}
	if f.CargoNumber != "" {
		add(`EXISTS (SELECT 1 FROM separation_cargo_records r
			WHERE r.control_id = c.id AND r.cargo_number ILIKE ? ESCAPE '\')`, containsPattern(f.CargoNumber))
	}
	if f.Date != nil {
		add("l.date = ?", dateOnly(*f.Date))
	}
	if f.Day != 0 {
		add("EXTRACT(DAY FROM l.date) = ?", f.Day)
	}
	if f.Month != 0 {
		add("EXTRACT(MONTH FROM l.date) = ?", f.Month)
	}
	if f.Year != 0 {
		add("EXTRACT(YEAR FROM l.date) = ?", f.Year)
	}
	return strings.Join(conds, " AND "), args
}

func containsPattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return fmt.Sprintf("%%%s%%", r.Replace(s))
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
