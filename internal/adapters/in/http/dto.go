package http

import (
	"time"

	"expedition/internal/core/application/usecases/commands"
	"expedition/internal/core/application/usecases/queries"
	"expedition/internal/core/domain/model/separation"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Error is the body of every failed request.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// SyncResult is the body of a lot change notification.
type SyncResult struct {
	Action    string     `json:"action"`
	ControlID *uuid.UUID `json:"controlId"`
	Records   int        `json:"records"`
	Writes    int        `json:"writes"`
	Attempts  int        `json:"attempts"`
}

// LifecycleResult is the body of release, start and complete calls.
type LifecycleResult struct {
	Result        string    `json:"result"`
	ControlID     uuid.UUID `json:"controlId"`
	ControlStatus string    `json:"controlStatus"`
	RecordStatus  string    `json:"recordStatus,omitempty"`
}

// RecordEdit is the body of a record edit. Absent fields are left untouched.
type RecordEdit struct {
	Checker           *string `json:"checker,omitempty"`
	Pickers           *string `json:"pickers,omitempty"`
	TransportOrder    *string `json:"transportOrder,omitempty"`
	DockBox           *string `json:"dockBox,omitempty"`
	ConferenceSummary *bool   `json:"conferenceSummary,omitempty"`
	DriverSummary     *bool   `json:"driverSummary,omitempty"`
	CDLabels          *bool   `json:"cdLabels,omitempty"`
	LoadGenerated     *bool   `json:"loadGenerated,omitempty"`
}

// EditResult reports whether an edit changed the record.
type EditResult struct {
	Changed bool `json:"changed"`
}

// Control is a separation control with its lot data.
type Control struct {
	ID               uuid.UUID          `json:"id"`
	LotID            uuid.UUID          `json:"lotId"`
	LotCode          string             `json:"lotCode"`
	Destination      string             `json:"destination"`
	Vehicle          string             `json:"vehicle"`
	LotDate          openapi_types.Date `json:"lotDate"`
	Weight           string             `json:"weight"`
	Volume           string             `json:"volume"`
	Note             string             `json:"note"`
	Status           string             `json:"status"`
	Released         bool               `json:"released"`
	Completed        bool               `json:"completed"`
	StartedAt        *time.Time         `json:"startedAt"`
	CreatedAt        time.Time          `json:"createdAt"`
	Records          int                `json:"records"`
	CompletedRecords int                `json:"completedRecords"`
}

// Record is a cargo record.
type Record struct {
	ID                uuid.UUID  `json:"id"`
	ControlID         uuid.UUID  `json:"controlId"`
	CargoItemID       uuid.UUID  `json:"cargoItemId"`
	CargoNumber       string     `json:"cargoNumber"`
	Seq               int        `json:"seq"`
	Deliveries        int        `json:"deliveries"`
	Mode              string     `json:"mode"`
	Status            string     `json:"status"`
	Assigned          bool       `json:"assigned"`
	Finalized         bool       `json:"finalized"`
	Checker           string     `json:"checker"`
	Pickers           string     `json:"pickers"`
	TransportOrder    string     `json:"transportOrder"`
	DockBox           string     `json:"dockBox"`
	ConferenceSummary bool       `json:"conferenceSummary"`
	DriverSummary     bool       `json:"driverSummary"`
	CDLabels          bool       `json:"cdLabels"`
	LoadGenerated     bool       `json:"loadGenerated"`
	StartedAt         *time.Time `json:"startedAt"`
}

// Summary is the daily expedition summary.
type Summary struct {
	Date        openapi_types.Date `json:"date"`
	Lots        int                `json:"lots"`
	BlockedLots int                `json:"blockedLots"`
	Weight      string             `json:"weight"`
	Volume      string             `json:"volume"`
	Controls    map[string]int     `json:"controls"`
	Records     map[string]int     `json:"records"`
}

func toSyncResult(r commands.SyncReport) SyncResult {
	res := SyncResult{
		Action:   r.Action.String(),
		Records:  r.Records,
		Writes:   r.Writes,
		Attempts: r.Attempts,
	}
	if r.ControlID != nil {
		id := r.ControlID.Bytes()
		res.ControlID = &id
	}
	return res
}

func toLifecycleResult(r commands.LifecycleResult) LifecycleResult {
	res := LifecycleResult{
		Result:        r.Outcome.String(),
		ControlID:     r.ControlID.Bytes(),
		ControlStatus: r.ControlStatus.String(),
	}
	if r.RecordStatus != separation.Unknown {
		res.RecordStatus = r.RecordStatus.String()
	}
	return res
}

func (e RecordEdit) toDomain() separation.RecordEdit {
	return separation.RecordEdit{
		Checker:           e.Checker,
		Pickers:           e.Pickers,
		TransportOrder:    e.TransportOrder,
		DockBox:           e.DockBox,
		ConferenceSummary: e.ConferenceSummary,
		DriverSummary:     e.DriverSummary,
		CDLabels:          e.CDLabels,
		LoadGenerated:     e.LoadGenerated,
	}
}

func toControl(v queries.ControlView) Control {
	return Control{
		ID:               v.ID.Bytes(),
		LotID:            v.LotID.Bytes(),
		LotCode:          v.LotCode,
		Destination:      v.Destination,
		Vehicle:          string(v.Vehicle),
		LotDate:          openapi_types.Date{Time: v.LotDate},
		Weight:           v.Weight.StringFixed(2),
		Volume:           v.Volume.StringFixed(2),
		Note:             v.Note,
		Status:           v.Status.String(),
		Released:         v.Released,
		Completed:        v.Completed,
		StartedAt:        v.StartedAt,
		CreatedAt:        v.CreatedAt,
		Records:          v.Records,
		CompletedRecords: v.CompletedRecords,
	}
}

func toRecord(v queries.RecordView) Record {
	return Record{
		ID:                v.ID.Bytes(),
		ControlID:         v.ControlID.Bytes(),
		CargoItemID:       v.CargoItemID.Bytes(),
		CargoNumber:       v.CargoNumber,
		Seq:               v.Seq,
		Deliveries:        v.Deliveries,
		Mode:              v.Mode,
		Status:            v.Status.String(),
		Assigned:          v.Assigned,
		Finalized:         v.Finalized,
		Checker:           v.Checker,
		Pickers:           v.Pickers,
		TransportOrder:    v.TransportOrder,
		DockBox:           v.DockBox,
		ConferenceSummary: v.Documents.ConferenceSummary,
		DriverSummary:     v.Documents.DriverSummary,
		CDLabels:          v.Documents.CDLabels,
		LoadGenerated:     v.Documents.LoadGenerated,
		StartedAt:         v.StartedAt,
	}
}

func toSummary(s queries.SeparationSummary) Summary {
	out := Summary{
		Date:        openapi_types.Date{Time: s.Date},
		Lots:        s.Lots,
		BlockedLots: s.BlockedLots,
		Weight:      s.Weight.StringFixed(2),
		Volume:      s.Volume.StringFixed(2),
		Controls:    make(map[string]int, len(s.ControlsByStatus)),
		Records:     make(map[string]int, len(s.RecordsByStatus)),
	}
	for status, n := range s.ControlsByStatus {
		out.Controls[status.String()] = n
	}
	for status, n := range s.RecordsByStatus {
		out.Records[status.String()] = n
	}
	return out
}
