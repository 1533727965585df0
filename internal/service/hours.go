package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/eld-logbook/internal/clock"
	"github.com/pkordes/eld-logbook/internal/dayspan"
	"github.com/pkordes/eld-logbook/internal/domain"
	"github.com/pkordes/eld-logbook/internal/repo"
)

// HoursService aggregates on-duty time (driving plus on duty not driving)
// from closed intervals. Open intervals contribute nothing until closed.
type HoursService struct {
	repos repo.Repos
	clock clock.Clock
	cycle domain.Cycle
	cache SummaryCache
	log   *slog.Logger
}

// NewHoursService constructs an HoursService. cache may be nil.
// A zero cycle falls back to domain.DefaultCycle.
func NewHoursService(repos repo.Repos, clk clock.Clock, cycle domain.Cycle, cache SummaryCache, logger *slog.Logger) *HoursService {
	if cycle == (domain.Cycle{}) {
		cycle = domain.DefaultCycle
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HoursService{repos: repos, clock: clk, cycle: cycle, cache: cache, log: logger}
}

// HoursToday returns the on-duty hours recorded in one logbook day,
// rounded to 2 decimals. A day with no closed on-duty intervals yields 0.
func (s *HoursService) HoursToday(ctx context.Context, driverID, dayID uuid.UUID) (float64, error) {
	if _, err := s.repos.Days.GetByID(ctx, driverID, dayID); err != nil {
		return 0, fmt.Errorf("service.HoursService.HoursToday: %w", err)
	}
	d, err := s.repos.Intervals.SumOnDutyByDay(ctx, dayID)
	if err != nil {
		return 0, fmt.Errorf("service.HoursService.HoursToday: %w", err)
	}
	return domain.Hours(d), nil
}

// HoursOverLastNDays returns the on-duty hours of closed intervals that
// ended within the last n×24 hours, rounded to 2 decimals.
func (s *HoursService) HoursOverLastNDays(ctx context.Context, driverID uuid.UUID, n int) (float64, error) {
	if n < 1 {
		return 0, fmt.Errorf("service.HoursService.HoursOverLastNDays: %w: days must be at least 1", domain.ErrValidation)
	}
	if _, err := s.repos.Drivers.GetByID(ctx, driverID); err != nil {
		return 0, fmt.Errorf("service.HoursService.HoursOverLastNDays: %w", err)
	}
	d, err := s.onDutySince(ctx, driverID, s.clock.Now(), n)
	if err != nil {
		return 0, fmt.Errorf("service.HoursService.HoursOverLastNDays: %w", err)
	}
	return domain.Hours(d), nil
}

func (s *HoursService) onDutySince(ctx context.Context, driverID uuid.UUID, now time.Time, days int) (time.Duration, error) {
	since := now.Add(-time.Duration(days) * 24 * time.Hour)
	return s.repos.Intervals.SumOnDutySince(ctx, driverID, since)
}

// Summary returns today's on-duty hours, the 5, 7 and 8 day totals, and the
// usage of the configured cycle. Results are served from the cache when
// one is configured; cache errors fall through to the database.
func (s *HoursService) Summary(ctx context.Context, driverID uuid.UUID) (domain.HoursSummary, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, driverID)
		if err != nil {
			s.log.WarnContext(ctx, "hours summary cache read failed", "driver_id", driverID, "error", err)
		} else if ok {
			return cached, nil
		}
	}

	summary, err := s.computeSummary(ctx, driverID)
	if err != nil {
		return domain.HoursSummary{}, fmt.Errorf("service.HoursService.Summary: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, driverID, summary); err != nil {
			s.log.WarnContext(ctx, "hours summary cache write failed", "driver_id", driverID, "error", err)
		}
	}
	return summary, nil
}

func (s *HoursService) computeSummary(ctx context.Context, driverID uuid.UUID) (domain.HoursSummary, error) {
	_, loc, err := driverLocation(ctx, s.repos.Drivers, driverID)
	if err != nil {
		return domain.HoursSummary{}, err
	}
	now := s.clock.Now()
	summary := domain.HoursSummary{DriverID: driverID, AsOf: now}

	today, err := s.repos.Days.GetByDate(ctx, driverID, dayspan.Date(now, loc))
	switch {
	case errors.Is(err, domain.ErrNotFound):
	case err != nil:
		return domain.HoursSummary{}, fmt.Errorf("today: %w", err)
	default:
		d, err := s.repos.Intervals.SumOnDutyByDay(ctx, today.ID)
		if err != nil {
			return domain.HoursSummary{}, fmt.Errorf("today: %w", err)
		}
		summary.Today = domain.Hours(d)
	}

	windows := []struct {
		days int
		dst  *float64
	}{
		{5, &summary.LastFiveDays},
		{7, &summary.LastSevenDays},
		{8, &summary.LastEightDays},
	}
	for _, w := range windows {
		d, err := s.onDutySince(ctx, driverID, now, w.days)
		if err != nil {
			return domain.HoursSummary{}, fmt.Errorf("last %d days: %w", w.days, err)
		}
		*w.dst = domain.Hours(d)
	}

	used, err := s.onDutySince(ctx, driverID, now, s.cycle.WindowDays)
	if err != nil {
		return domain.HoursSummary{}, fmt.Errorf("cycle: %w", err)
	}
	summary.Cycle = cycleUsage(s.cycle, used)
	return summary, nil
}

// cycleUsage reports used and remaining hours of c. Available never goes
// below zero.
func cycleUsage(c domain.Cycle, used time.Duration) domain.CycleUsage {
	usedHours := domain.Hours(used)
	available := domain.Hours(time.Duration(c.LimitHours)*time.Hour - used)
	if available < 0 {
		available = 0
	}
	return domain.CycleUsage{Cycle: c, UsedHours: usedHours, AvailableHours: available}
}
