package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/eld-logbook/internal/domain"
	"github.com/pkordes/eld-logbook/internal/handler"
	"github.com/pkordes/eld-logbook/internal/service"
)

// The mocks below are test doubles for the handler servicer interfaces.
// Set only the method fields your test needs.

type mockDriverServicer struct {
	create  func(ctx context.Context, d domain.Driver) (domain.Driver, error)
	getByID func(ctx context.Context, id uuid.UUID) (domain.Driver, error)
	list    func(ctx context.Context) ([]domain.Driver, error)
	delete  func(ctx context.Context, id uuid.UUID) error
}

func (m *mockDriverServicer) Create(ctx context.Context, d domain.Driver) (domain.Driver, error) {
	return m.create(ctx, d)
}
func (m *mockDriverServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Driver, error) {
	return m.getByID(ctx, id)
}
func (m *mockDriverServicer) List(ctx context.Context) ([]domain.Driver, error) {
	return m.list(ctx)
}
func (m *mockDriverServicer) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

type mockLedgerServicer struct {
	record        func(ctx context.Context, req service.StatusChange) (domain.DutyChange, error)
	endDuty       func(ctx context.Context, driverID uuid.UUID, at time.Time) (domain.DutyChange, error)
	currentStatus func(ctx context.Context, driverID uuid.UUID) (service.CurrentStatus, error)
}

func (m *mockLedgerServicer) RecordStatusChange(ctx context.Context, req service.StatusChange) (domain.DutyChange, error) {
	return m.record(ctx, req)
}
func (m *mockLedgerServicer) EndDutyPeriod(ctx context.Context, driverID uuid.UUID, at time.Time) (domain.DutyChange, error) {
	return m.endDuty(ctx, driverID, at)
}
func (m *mockLedgerServicer) CurrentStatus(ctx context.Context, driverID uuid.UUID) (service.CurrentStatus, error) {
	return m.currentStatus(ctx, driverID)
}

type mockDayServicer struct {
	getOrCreate func(ctx context.Context, driverID uuid.UUID, date time.Time) (domain.LogbookDay, error)
	start       func(ctx context.Context, driverID uuid.UUID, date time.Time) (domain.LogbookDay, error)
	close       func(ctx context.Context, driverID, dayID uuid.UUID, m domain.Mileage) (domain.LogbookDay, error)
	get         func(ctx context.Context, driverID, dayID uuid.UUID) (domain.LogbookDay, error)
	list        func(ctx context.Context, driverID uuid.UUID, r domain.DayRange, p domain.PaginationParams) ([]domain.LogbookDay, int64, error)
	delete      func(ctx context.Context, driverID, dayID uuid.UUID) error
}

func (m *mockDayServicer) GetOrCreate(ctx context.Context, driverID uuid.UUID, date time.Time) (domain.LogbookDay, error) {
	return m.getOrCreate(ctx, driverID, date)
}
func (m *mockDayServicer) Start(ctx context.Context, driverID uuid.UUID, date time.Time) (domain.LogbookDay, error) {
	return m.start(ctx, driverID, date)
}
func (m *mockDayServicer) Close(ctx context.Context, driverID, dayID uuid.UUID, mi domain.Mileage) (domain.LogbookDay, error) {
	return m.close(ctx, driverID, dayID, mi)
}
func (m *mockDayServicer) Get(ctx context.Context, driverID, dayID uuid.UUID) (domain.LogbookDay, error) {
	return m.get(ctx, driverID, dayID)
}
func (m *mockDayServicer) List(ctx context.Context, driverID uuid.UUID, r domain.DayRange, p domain.PaginationParams) ([]domain.LogbookDay, int64, error) {
	return m.list(ctx, driverID, r, p)
}
func (m *mockDayServicer) Delete(ctx context.Context, driverID, dayID uuid.UUID) error {
	return m.delete(ctx, driverID, dayID)
}

type mockHoursServicer struct {
	hoursToday func(ctx context.Context, driverID, dayID uuid.UUID) (float64, error)
	overDays   func(ctx context.Context, driverID uuid.UUID, n int) (float64, error)
	summary    func(ctx context.Context, driverID uuid.UUID) (domain.HoursSummary, error)
}

func (m *mockHoursServicer) HoursToday(ctx context.Context, driverID, dayID uuid.UUID) (float64, error) {
	return m.hoursToday(ctx, driverID, dayID)
}
func (m *mockHoursServicer) HoursOverLastNDays(ctx context.Context, driverID uuid.UUID, n int) (float64, error) {
	return m.overDays(ctx, driverID, n)
}
func (m *mockHoursServicer) Summary(ctx context.Context, driverID uuid.UUID) (domain.HoursSummary, error) {
	return m.summary(ctx, driverID)
}

type mockSheetServicer struct {
	daySheet func(ctx context.Context, driverID, dayID uuid.UUID) (domain.DaySheet, error)
}

func (m *mockSheetServicer) DaySheet(ctx context.Context, driverID, dayID uuid.UUID) (domain.DaySheet, error) {
	return m.daySheet(ctx, driverID, dayID)
}

type mockStopServicer struct {
	create func(ctx context.Context, driverID, dayID uuid.UUID, stop domain.StopEvent) (domain.StopEvent, error)
	list   func(ctx context.Context, driverID, dayID uuid.UUID) ([]domain.StopEvent, error)
}

func (m *mockStopServicer) Create(ctx context.Context, driverID, dayID uuid.UUID, stop domain.StopEvent) (domain.StopEvent, error) {
	return m.create(ctx, driverID, dayID, stop)
}
func (m *mockStopServicer) List(ctx context.Context, driverID, dayID uuid.UUID) ([]domain.StopEvent, error) {
	return m.list(ctx, driverID, dayID)
}

type mockExportServicer struct {
	export func(ctx context.Context, driverID uuid.UUID, r domain.DayRange) ([]domain.ExportRow, error)
}

func (m *mockExportServicer) Export(ctx context.Context, driverID uuid.UUID, r domain.DayRange) ([]domain.ExportRow, error) {
	return m.export(ctx, driverID, r)
}

// compile-time checks: each mock must satisfy its handler interface.
var (
	_ handler.DriverServicer = (*mockDriverServicer)(nil)
	_ handler.LedgerServicer = (*mockLedgerServicer)(nil)
	_ handler.DayServicer    = (*mockDayServicer)(nil)
	_ handler.HoursServicer  = (*mockHoursServicer)(nil)
	_ handler.SheetServicer  = (*mockSheetServicer)(nil)
	_ handler.StopServicer   = (*mockStopServicer)(nil)
	_ handler.ExportServicer = (*mockExportServicer)(nil)
)

// The production services must satisfy the same interfaces.
var (
	_ handler.DriverServicer = (*service.DriverService)(nil)
	_ handler.LedgerServicer = (*service.LedgerService)(nil)
	_ handler.DayServicer    = (*service.DayService)(nil)
	_ handler.HoursServicer  = (*service.HoursService)(nil)
	_ handler.SheetServicer  = (*service.SheetService)(nil)
	_ handler.StopServicer   = (*service.StopService)(nil)
	_ handler.ExportServicer = (*service.ExportService)(nil)
)

// ---- helpers ---------------------------------------------------------------

// newHTTPHandler wires a Server with the given mocks into the chi router,
// the same way main.go does without auth or rate limits.
func newHTTPHandler(svc handler.Services) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return handler.NewServer(svc, logger).Routes(handler.RouteOptions{})
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

// errorCode returns error.code from an error response body.
func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp.Error.Code
}

func driverFixture() domain.Driver {
	return domain.Driver{
		ID:        uuid.New(),
		Name:      "Ada Hauler",
		TimeZone:  "America/Chicago",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
}

func dayFixture(driverID uuid.UUID) domain.LogbookDay {
	return domain.LogbookDay{
		ID:        uuid.New(),
		DriverID:  driverID,
		Date:      time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		IsCurrent: true,
	}
}
