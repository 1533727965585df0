package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/eld-logbook/internal/domain"
	"github.com/pkordes/eld-logbook/internal/repo"
)

// SheetService builds the daily record-of-duty-status sheet: the grid of
// intervals, per-status recap totals, stops and the hours summary.
type SheetService struct {
	repos repo.Repos
	hours *HoursService
}

// NewSheetService constructs a SheetService.
func NewSheetService(repos repo.Repos, hours *HoursService) *SheetService {
	return &SheetService{repos: repos, hours: hours}
}

// DaySheet assembles the sheet for one of the driver's days.
func (s *SheetService) DaySheet(ctx context.Context, driverID, dayID uuid.UUID) (domain.DaySheet, error) {
	driver, loc, err := driverLocation(ctx, s.repos.Drivers, driverID)
	if err != nil {
		return domain.DaySheet{}, fmt.Errorf("service.SheetService.DaySheet: %w", err)
	}
	day, err := s.repos.Days.GetByID(ctx, driverID, dayID)
	if err != nil {
		return domain.DaySheet{}, fmt.Errorf("service.SheetService.DaySheet: %w", err)
	}
	intervals, err := s.repos.Intervals.ListByDay(ctx, dayID)
	if err != nil {
		return domain.DaySheet{}, fmt.Errorf("service.SheetService.DaySheet: %w", err)
	}
	stops, err := s.repos.Stops.ListByDay(ctx, dayID)
	if err != nil {
		return domain.DaySheet{}, fmt.Errorf("service.SheetService.DaySheet: %w", err)
	}
	summary, err := s.hours.Summary(ctx, driverID)
	if err != nil {
		return domain.DaySheet{}, fmt.Errorf("service.SheetService.DaySheet: %w", err)
	}

	entries := sheetEntries(intervals, loc)
	totals, onDuty := statusTotals(intervals)
	return domain.DaySheet{
		Day:              day,
		Driver:           driver,
		Entries:          entries,
		Totals:           totals,
		Stops:            stops,
		OnDutyHoursToday: domain.Hours(onDuty),
		Summary:          summary,
	}, nil
}

// sheetEntries places each interval on its grid row with local start and
// end hours, and links it to the row of the entry that follows.
func sheetEntries(intervals []domain.DutyInterval, loc *time.Location) []domain.SheetEntry {
	entries := make([]domain.SheetEntry, len(intervals))
	for i, iv := range intervals {
		e := domain.SheetEntry{
			Interval:  iv,
			Row:       iv.Status.GridRow(),
			StartHour: iv.StartAt.In(loc).Hour(),
		}
		if iv.EndAt != nil {
			h := iv.EndAt.In(loc).Hour()
			e.EndHour = &h
		}
		entries[i] = e
	}
	for i := 0; i+1 < len(entries); i++ {
		next := entries[i+1].Row
		entries[i].NextRow = &next
	}
	return entries
}

// statusTotals sums closed time per status, one total per grid row in row
// order, and returns the unrounded on-duty total alongside.
func statusTotals(intervals []domain.DutyInterval) ([]domain.StatusTotal, time.Duration) {
	sums := make(map[domain.DutyStatus]time.Duration, len(domain.DutyStatuses))
	var onDuty time.Duration
	for _, iv := range intervals {
		d := iv.Duration()
		sums[iv.Status] += d
		if iv.Status.OnDuty() {
			onDuty += d
		}
	}

	totals := make([]domain.StatusTotal, 0, len(domain.DutyStatuses))
	for _, st := range domain.DutyStatuses {
		totals = append(totals, domain.StatusTotal{Status: st, Row: st.GridRow(), Hours: domain.Hours(sums[st])})
	}
	return totals, onDuty
}
