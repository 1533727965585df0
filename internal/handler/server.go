// Package handler implements the HTTP handlers for the ELD logbook API.
// All handlers are methods on Server. They are split into resource files
// (driver.go, status.go, day.go, ...) and share the Server's dependencies.
package handler

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/eld-logbook/internal/domain"
	"github.com/pkordes/eld-logbook/internal/service"
)

// The servicer interfaces below are declared here, in the consumer package,
// so handler tests can inject function-field mocks instead of a database.

// DriverServicer defines the driver operations the handlers depend on.
type DriverServicer interface {
	Create(ctx context.Context, driver domain.Driver) (domain.Driver, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Driver, error)
	List(ctx context.Context) ([]domain.Driver, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// LedgerServicer records duty-status transitions.
type LedgerServicer interface {
	RecordStatusChange(ctx context.Context, req service.StatusChange) (domain.DutyChange, error)
	EndDutyPeriod(ctx context.Context, driverID uuid.UUID, at time.Time) (domain.DutyChange, error)
	CurrentStatus(ctx context.Context, driverID uuid.UUID) (service.CurrentStatus, error)
}

// DayServicer manages logbook days.
type DayServicer interface {
	GetOrCreate(ctx context.Context, driverID uuid.UUID, date time.Time) (domain.LogbookDay, error)
	Start(ctx context.Context, driverID uuid.UUID, date time.Time) (domain.LogbookDay, error)
	Close(ctx context.Context, driverID, dayID uuid.UUID, m domain.Mileage) (domain.LogbookDay, error)
	Get(ctx context.Context, driverID, dayID uuid.UUID) (domain.LogbookDay, error)
	List(ctx context.Context, driverID uuid.UUID, r domain.DayRange, p domain.PaginationParams) ([]domain.LogbookDay, int64, error)
	Delete(ctx context.Context, driverID, dayID uuid.UUID) error
}

// HoursServicer answers on-duty hour queries.
type HoursServicer interface {
	HoursToday(ctx context.Context, driverID, dayID uuid.UUID) (float64, error)
	HoursOverLastNDays(ctx context.Context, driverID uuid.UUID, n int) (float64, error)
	Summary(ctx context.Context, driverID uuid.UUID) (domain.HoursSummary, error)
}

// SheetServicer builds daily log sheets.
type SheetServicer interface {
	DaySheet(ctx context.Context, driverID, dayID uuid.UUID) (domain.DaySheet, error)
}

// StopServicer records and lists stop events.
type StopServicer interface {
	Create(ctx context.Context, driverID, dayID uuid.UUID, stop domain.StopEvent) (domain.StopEvent, error)
	List(ctx context.Context, driverID, dayID uuid.UUID) ([]domain.StopEvent, error)
}

// ExportServicer produces the flat record-of-duty-status export.
type ExportServicer interface {
	Export(ctx context.Context, driverID uuid.UUID, r domain.DayRange) ([]domain.ExportRow, error)
}

// Services groups the dependencies of Server.
type Services struct {
	Drivers DriverServicer
	Ledger  LedgerServicer
	Days    DayServicer
	Hours   HoursServicer
	Sheets  SheetServicer
	Stops   StopServicer
	Export  ExportServicer
}

// Server holds the dependencies shared by every handler.
type Server struct {
	drivers DriverServicer
	ledger  LedgerServicer
	days    DayServicer
	hours   HoursServicer
	sheets  SheetServicer
	stops   StopServicer
	export  ExportServicer
	log     *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
func NewServer(svc Services, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		drivers: svc.Drivers,
		ledger:  svc.Ledger,
		days:    svc.Days,
		hours:   svc.Hours,
		sheets:  svc.Sheets,
		stops:   svc.Stops,
		export:  svc.Export,
		log:     logger,
	}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(Services{}, nil)
}
