// Package http exposes separation over a JSON API validated against an embedded
// OpenAPI contract.
package http

import (
	"context"
	"net/http"

	"expedition/internal/core/application/usecases/commands"
	"expedition/internal/core/application/usecases/queries"
	"expedition/internal/core/domain/model/kernel"
	"expedition/internal/core/domain/model/separation"
	"expedition/internal/core/domain/model/transport"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
)

const apiPrefix = "/api/v1"

// Handler is a command or query handler as the server consumes it.
type Handler[In, Out any] interface {
	Handle(ctx context.Context, in In) (Out, error)
}

// Reader answers single-item and per-control queries.
type Reader interface {
	GetControl(ctx context.Context, query queries.GetControlQuery) (queries.ControlView, error)
	ListControlRecords(ctx context.Context, query queries.ListControlRecordsQuery) ([]queries.RecordView, error)
	GetRecord(ctx context.Context, query queries.GetRecordQuery) (queries.RecordView, error)
}

// Handlers groups the use cases behind the API.
type Handlers struct {
	SynchronizeLot Handler[commands.SynchronizeLotCommand, commands.SyncReport]
	ReleaseControl Handler[commands.ReleaseControlCommand, commands.LifecycleResult]
	StartRecord    Handler[commands.StartRecordCommand, commands.LifecycleResult]
	CompleteRecord Handler[commands.CompleteRecordCommand, commands.LifecycleResult]
	EditRecord     Handler[commands.EditRecordCommand, bool]
	ListControls   Handler[queries.ListControlsQuery, []queries.ControlView]
	Summary        Handler[queries.GetSeparationSummaryQuery, queries.SeparationSummary]
	Reader         Reader
}

// Server coordinates between HTTP requests and the separation use cases.
type Server struct {
	h Handlers
}

// NewServer creates a server for the given handlers.
func NewServer(h Handlers) *Server {
	return &Server{h: h}
}

// Register mounts the API, the contract validator, health, metrics and the swagger UI
// on e. Metrics are read from gatherer.
func (s *Server) Register(ctx context.Context, e *echo.Echo, gatherer prometheus.Gatherer) error {
	doc, err := LoadOpenAPI(ctx)
	if err != nil {
		return err
	}
	validator, err := requestValidator(doc)
	if err != nil {
		return err
	}
	if err = registerSwaggerDoc(doc); err != nil {
		return err
	}

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group(apiPrefix, validator)
	api.POST("/lots/:lotId/changed", s.NotifyLotChanged)
	api.GET("/controls", s.ListControls)
	api.GET("/controls/:controlId", s.GetControl)
	api.GET("/controls/:controlId/records", s.ListControlRecords)
	api.POST("/controls/:controlId/release", s.ReleaseControl)
	api.GET("/records/:recordId", s.GetRecord)
	api.PATCH("/records/:recordId", s.EditRecord)
	api.POST("/records/:recordId/start", s.StartRecord)
	api.POST("/records/:recordId/complete", s.CompleteRecord)
	api.GET("/reports/summary", s.GetSummary)
	return nil
}

// NotifyLotChanged handles POST /api/v1/lots/{lotId}/changed. The transport subsystem
// calls it once per lot change.
func (s *Server) NotifyLotChanged(c echo.Context) error {
	lotID, err := pathID(c, "lotId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	cmd, err := commands.NewSynchronizeLotCommand(lotID)
	if err != nil {
		return s.fail(c, err)
	}

	report, err := s.h.SynchronizeLot.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, toSyncResult(report))
}

// ReleaseControl handles POST /api/v1/controls/{controlId}/release.
func (s *Server) ReleaseControl(c echo.Context) error {
	id, err := pathID(c, "controlId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	cmd, err := commands.NewReleaseControlCommand(id)
	if err != nil {
		return s.fail(c, err)
	}
	return s.lifecycle(c, func(ctx context.Context) (commands.LifecycleResult, error) {
		return s.h.ReleaseControl.Handle(ctx, cmd)
	})
}

// StartRecord handles POST /api/v1/records/{recordId}/start.
func (s *Server) StartRecord(c echo.Context) error {
	id, err := pathID(c, "recordId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	cmd, err := commands.NewStartRecordCommand(id)
	if err != nil {
		return s.fail(c, err)
	}
	return s.lifecycle(c, func(ctx context.Context) (commands.LifecycleResult, error) {
		return s.h.StartRecord.Handle(ctx, cmd)
	})
}

// CompleteRecord handles POST /api/v1/records/{recordId}/complete.
func (s *Server) CompleteRecord(c echo.Context) error {
	id, err := pathID(c, "recordId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	cmd, err := commands.NewCompleteRecordCommand(id)
	if err != nil {
		return s.fail(c, err)
	}
	return s.lifecycle(c, func(ctx context.Context) (commands.LifecycleResult, error) {
		return s.h.CompleteRecord.Handle(ctx, cmd)
	})
}

func (s *Server) lifecycle(c echo.Context, call func(context.Context) (commands.LifecycleResult, error)) error {
	res, err := call(c.Request().Context())
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, toLifecycleResult(res))
}

// EditRecord handles PATCH /api/v1/records/{recordId}.
func (s *Server) EditRecord(c echo.Context) error {
	id, err := pathID(c, "recordId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var body RecordEdit
	if err = c.Bind(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}
	cmd, err := commands.NewEditRecordCommand(id, body.toDomain())
	if err != nil {
		return s.fail(c, err)
	}

	changed, err := s.h.EditRecord.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, EditResult{Changed: changed})
}

// ListControls handles GET /api/v1/controls.
func (s *Server) ListControls(c echo.Context) error {
	var (
		status, lot, destination, vehicle, cargo *string
		date                                     *openapi_types.Date
		day, month, year                         *int
	)
	params := c.QueryParams()
	for name, dest := range map[string]any{
		"status": &status, "lot": &lot, "destination": &destination, "vehicle": &vehicle, "cargo": &cargo,
		"date": &date, "day": &day, "month": &month, "year": &year,
	} {
		if err := runtime.BindQueryParameter("form", true, false, name, params, dest); err != nil {
			return badRequest(c, err.Error())
		}
	}

	filter := queries.ControlFilter{
		LotCode:     deref(lot),
		Destination: deref(destination),
		Vehicle:     transport.VehicleType(deref(vehicle)),
		CargoNumber: deref(cargo),
		Day:         deref(day),
		Month:       deref(month),
		Year:        deref(year),
	}
	if status != nil {
		st, err := separation.ParseStatus(*status)
		if err != nil {
			return s.fail(c, err)
		}
		filter.Status = &st
	}
	if date != nil {
		d := date.Time
		filter.Date = &d
	}

	query, err := queries.NewListControlsQuery(filter)
	if err != nil {
		return s.fail(c, err)
	}
	controls, err := s.h.ListControls.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err)
	}

	response := make([]Control, len(controls))
	for i, v := range controls {
		response[i] = toControl(v)
	}
	return c.JSON(http.StatusOK, response)
}

// GetControl handles GET /api/v1/controls/{controlId}.
func (s *Server) GetControl(c echo.Context) error {
	id, err := pathID(c, "controlId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	query, err := queries.NewGetControlQuery(id)
	if err != nil {
		return s.fail(c, err)
	}

	v, err := s.h.Reader.GetControl(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, toControl(v))
}

// ListControlRecords handles GET /api/v1/controls/{controlId}/records.
func (s *Server) ListControlRecords(c echo.Context) error {
	id, err := pathID(c, "controlId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	query, err := queries.NewListControlRecordsQuery(id)
	if err != nil {
		return s.fail(c, err)
	}

	records, err := s.h.Reader.ListControlRecords(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err)
	}
	response := make([]Record, len(records))
	for i, v := range records {
		response[i] = toRecord(v)
	}
	return c.JSON(http.StatusOK, response)
}

// GetRecord handles GET /api/v1/records/{recordId}.
func (s *Server) GetRecord(c echo.Context) error {
	id, err := pathID(c, "recordId")
	if err != nil {
		return badRequest(c, err.Error())
	}
	query, err := queries.NewGetRecordQuery(id)
	if err != nil {
		return s.fail(c, err)
	}

	v, err := s.h.Reader.GetRecord(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, toRecord(v))
}

// GetSummary handles GET /api/v1/reports/summary.
func (s *Server) GetSummary(c echo.Context) error {
	var date openapi_types.Date
	if err := runtime.BindQueryParameter("form", true, true, "date", c.QueryParams(), &date); err != nil {
		return badRequest(c, err.Error())
	}
	query, err := queries.NewGetSeparationSummaryQuery(date.Time)
	if err != nil {
		return s.fail(c, err)
	}

	summary, err := s.h.Summary.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, toSummary(summary))
}

func pathID(c echo.Context, name string) (kernel.UUID, error) {
	var id uuid.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, c.Param(name), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		return kernel.UUID{}, err
	}
	return kernel.UUIDFromBytes(id[:])
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

