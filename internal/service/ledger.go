package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/pkordes/eld-logbook/internal/clock"
	"github.com/pkordes/eld-logbook/internal/dayspan"
	"github.com/pkordes/eld-logbook/internal/domain"
	"github.com/pkordes/eld-logbook/internal/repo"
)

// maxRemarkLen bounds the free-text remark (usually a city and state).
const maxRemarkLen = 500

// Store is the persistence surface the services depend on.
// *repo.Store satisfies it in production.
type Store interface {
	repo.Transactor
	Repos() repo.Repos
}

// EventPublisher announces committed duty-status transitions.
type EventPublisher interface {
	PublishDutyChange(ctx context.Context, change domain.DutyChange) error
}

// SummaryCache stores computed hours summaries per driver.
// Get reports a miss with ok == false and a nil error.
type SummaryCache interface {
	Get(ctx context.Context, driverID uuid.UUID) (summary domain.HoursSummary, ok bool, err error)
	Set(ctx context.Context, driverID uuid.UUID, summary domain.HoursSummary) error
	Invalidate(ctx context.Context, driverID uuid.UUID) error
}

// StatusChange is a request to put a driver into a new duty status.
// A zero At means "now" as read from the service clock.
type StatusChange struct {
	DriverID uuid.UUID
	Status   domain.DutyStatus
	Remark   string
	At       time.Time
}

// CurrentStatus is the driver's current day and open interval.
// Open is nil when the driver has no open interval.
type CurrentStatus struct {
	Driver domain.Driver
	Day    domain.LogbookDay
	Open   *domain.DutyInterval
}

// LedgerService records duty-status transitions.
//
// Every transition closes the driver's open interval (splitting it at local
// midnights) and opens the next one inside a single transaction, so a
// driver never ends up with zero or two open intervals.
type LedgerService struct {
	store  Store
	clock  clock.Clock
	events EventPublisher
	cache  SummaryCache
	log    *slog.Logger
}

// NewLedgerService constructs a LedgerService. events and cache may be nil.
func NewLedgerService(store Store, clk clock.Clock, events EventPublisher, cache SummaryCache, logger *slog.Logger) *LedgerService {
	if logger == nil {
		logger = slog.Default()
	}
	return &LedgerService{store: store, clock: clk, events: events, cache: cache, log: logger}
}

// now returns at, or the clock reading when at is zero, truncated to the
// microsecond precision Postgres stores. It is called once per operation and
// the result threaded through every step.
func (s *LedgerService) now(at time.Time) time.Time {
	if at.IsZero() {
		at = s.clock.Now()
	}
	return at.Truncate(time.Microsecond)
}

// RecordStatusChange closes the driver's open interval at the change time
// and opens a new interval for the requested status in the logbook day of
// that time. Closing when nothing is open is a no-op.
func (s *LedgerService) RecordStatusChange(ctx context.Context, req StatusChange) (domain.DutyChange, error) {
	if !req.Status.Valid() {
		return domain.DutyChange{}, fmt.Errorf("service.LedgerService.RecordStatusChange: %w: unknown duty status %q", domain.ErrValidation, req.Status)
	}
	req.Remark = strings.TrimSpace(req.Remark)
	if utf8.RuneCountInString(req.Remark) > maxRemarkLen {
		return domain.DutyChange{}, fmt.Errorf("service.LedgerService.RecordStatusChange: %w: remark exceeds %d characters", domain.ErrValidation, maxRemarkLen)
	}

	now := s.now(req.At)
	change := domain.DutyChange{DriverID: req.DriverID, OccurredAt: now}

	err := s.store.InTx(ctx, func(r repo.Repos) error {
		loc, closed, err := s.closeOpen(ctx, r, req.DriverID, now)
		if err != nil {
			return err
		}
		change.Closed = closed

		day, err := r.Days.GetOrCreate(ctx, req.DriverID, dayspan.Date(now, loc))
		if err != nil {
			return fmt.Errorf("day: %w", err)
		}
		opened, err := r.Intervals.Open(ctx, domain.DutyInterval{
			DayID:    day.ID,
			DriverID: req.DriverID,
			Status:   req.Status,
			StartAt:  now,
			Remark:   req.Remark,
		})
		if err != nil {
			return fmt.Errorf("open: %w", err)
		}
		change.Opened = &opened
		return nil
	})
	if err != nil {
		return domain.DutyChange{}, fmt.Errorf("service.LedgerService.RecordStatusChange: %w", err)
	}

	s.afterCommit(ctx, change)
	return change, nil
}

// EndDutyPeriod closes the driver's open interval without opening another.
// It is a no-op, not an error, when nothing is open. Like every transition
// it fails with ErrInvalidRange when at precedes the driver's recorded history.
func (s *LedgerService) EndDutyPeriod(ctx context.Context, driverID uuid.UUID, at time.Time) (domain.DutyChange, error) {
	now := s.now(at)
	change := domain.DutyChange{DriverID: driverID, OccurredAt: now}

	err := s.store.InTx(ctx, func(r repo.Repos) error {
		_, closed, err := s.closeOpen(ctx, r, driverID, now)
		change.Closed = closed
		return err
	})
	if err != nil {
		return domain.DutyChange{}, fmt.Errorf("service.LedgerService.EndDutyPeriod: %w", err)
	}

	if len(change.Closed) > 0 {
		s.afterCommit(ctx, change)
	}
	return change, nil
}

// closeOpen locks the driver, then closes its open interval at now through
// the day splitter. It returns the driver's location and the closed
// segments (nil when nothing was open).
func (s *LedgerService) closeOpen(ctx context.Context, r repo.Repos, driverID uuid.UUID, now time.Time) (*time.Location, []domain.DutyInterval, error) {
	driver, err := r.Drivers.GetForUpdate(ctx, driverID)
	if err != nil {
		return nil, nil, fmt.Errorf("driver: %w", err)
	}
	loc, err := driver.Location()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: driver time zone %q: %v", domain.ErrValidation, driver.TimeZone, err)
	}

	// Nothing may start before the latest end already recorded.
	latest, ok, err := r.Intervals.LatestEnd(ctx, driverID)
	if err != nil {
		return nil, nil, fmt.Errorf("latest end: %w", err)
	}
	if ok && now.Before(latest) {
		return nil, nil, fmt.Errorf("%w: change at %s is before the last recorded duty time %s",
			domain.ErrInvalidRange, now.Format(time.RFC3339), latest.Format(time.RFC3339))
	}

	open, err := r.Intervals.OpenForDriver(ctx, driverID)
	if errors.Is(err, domain.ErrNotFound) {
		return loc, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open interval: %w", err)
	}
	if now.Before(open.StartAt) {
		return nil, nil, fmt.Errorf("%w: change at %s is before the open interval started at %s",
			domain.ErrInvalidRange, now.Format(time.RFC3339), open.StartAt.Format(time.RFC3339))
	}

	closed, err := CloseInterval(ctx, r, open, now, loc)
	if err != nil {
		return nil, nil, err
	}
	return loc, closed, nil
}

// afterCommit invalidates the cached summary and publishes the change.
// Failures are logged; the transition is already committed.
func (s *LedgerService) afterCommit(ctx context.Context, change domain.DutyChange) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, change.DriverID); err != nil {
			s.log.WarnContext(ctx, "hours summary invalidation failed",
				"driver_id", change.DriverID, "error", err)
		}
	}
	if s.events != nil {
		if err := s.events.PublishDutyChange(ctx, change); err != nil {
			s.log.WarnContext(ctx, "duty change publish failed",
				"driver_id", change.DriverID, "error", err)
		}
	}
}

// CurrentStatus returns the driver's logbook day for today, creating it if
// needed, together with the open interval if any.
func (s *LedgerService) CurrentStatus(ctx context.Context, driverID uuid.UUID) (CurrentStatus, error) {
	now := s.clock.Now()

	var cur CurrentStatus
	err := s.store.InTx(ctx, func(r repo.Repos) error {
		driver, loc, err := driverLocation(ctx, r.Drivers, driverID)
		if err != nil {
			return err
		}
		cur.Driver = driver

		cur.Day, err = r.Days.GetOrCreate(ctx, driverID, dayspan.Date(now, loc))
		if err != nil {
			return fmt.Errorf("day: %w", err)
		}

		open, err := r.Intervals.OpenForDriver(ctx, driverID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
		case err != nil:
			return fmt.Errorf("open interval: %w", err)
		default:
			cur.Open = &open
		}
		return nil
	})
	if err != nil {
		return CurrentStatus{}, fmt.Errorf("service.LedgerService.CurrentStatus: %w", err)
	}
	return cur, nil
}
