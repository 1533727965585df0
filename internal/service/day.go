package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/eld-logbook/internal/clock"
	"github.com/pkordes/eld-logbook/internal/dayspan"
	"github.com/pkordes/eld-logbook/internal/domain"
	"github.com/pkordes/eld-logbook/internal/repo"
)

// DayService manages logbook days: opening them, closing them with
// mileage, and listing a driver's history.
type DayService struct {
	store Store
	clock clock.Clock
}

// NewDayService constructs a DayService.
func NewDayService(store Store, clk clock.Clock) *DayService {
	return &DayService{store: store, clock: clk}
}

// dateFor returns date truncated to a calendar day, or the driver's local
// today when date is zero.
func (s *DayService) dateFor(date time.Time, loc *time.Location) time.Time {
	if date.IsZero() {
		return dayspan.Date(s.clock.Now(), loc)
	}
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
}

// GetOrCreate returns the driver's day for date, creating it if needed.
// Calling it twice for the same date returns the same day.
func (s *DayService) GetOrCreate(ctx context.Context, driverID uuid.UUID, date time.Time) (domain.LogbookDay, error) {
	var day domain.LogbookDay
	err := s.store.InTx(ctx, func(r repo.Repos) error {
		_, loc, err := driverLocation(ctx, r.Drivers, driverID)
		if err != nil {
			return err
		}
		day, err = r.Days.GetOrCreate(ctx, driverID, s.dateFor(date, loc))
		return err
	})
	if err != nil {
		return domain.LogbookDay{}, fmt.Errorf("service.DayService.GetOrCreate: %w", err)
	}
	return day, nil
}

// Start explicitly begins a new duty day. Unlike GetOrCreate it fails with
// domain.ErrConflict when the day already exists; callers may treat that as
// "day already started".
func (s *DayService) Start(ctx context.Context, driverID uuid.UUID, date time.Time) (domain.LogbookDay, error) {
	var day domain.LogbookDay
	err := s.store.InTx(ctx, func(r repo.Repos) error {
		_, loc, err := driverLocation(ctx, r.Drivers, driverID)
		if err != nil {
			return err
		}
		day, err = r.Days.Create(ctx, driverID, s.dateFor(date, loc))
		return err
	})
	if err != nil {
		return domain.LogbookDay{}, fmt.Errorf("service.DayService.Start: %w", err)
	}
	return day, nil
}

// Close records the day's mileage and marks it done.
func (s *DayService) Close(ctx context.Context, driverID, dayID uuid.UUID, m domain.Mileage) (domain.LogbookDay, error) {
	if m.TotalMilesDrivingToday < 0 {
		return domain.LogbookDay{}, fmt.Errorf("service.DayService.Close: %w: total_miles_driving_today must not be negative", domain.ErrValidation)
	}
	if m.MileageCoveredToday != nil && *m.MileageCoveredToday < 0 {
		return domain.LogbookDay{}, fmt.Errorf("service.DayService.Close: %w: mileage_covered_today must not be negative", domain.ErrValidation)
	}

	day, err := s.store.Repos().Days.Close(ctx, driverID, dayID, m)
	if err != nil {
		return domain.LogbookDay{}, fmt.Errorf("service.DayService.Close: %w", err)
	}
	return day, nil
}

// Get returns one of the driver's days.
func (s *DayService) Get(ctx context.Context, driverID, dayID uuid.UUID) (domain.LogbookDay, error) {
	day, err := s.store.Repos().Days.GetByID(ctx, driverID, dayID)
	if err != nil {
		return domain.LogbookDay{}, fmt.Errorf("service.DayService.Get: %w", err)
	}
	return day, nil
}

// List returns a page of the driver's days within r, newest first.
func (s *DayService) List(ctx context.Context, driverID uuid.UUID, r domain.DayRange, p domain.PaginationParams) ([]domain.LogbookDay, int64, error) {
	if !r.From.IsZero() && !r.To.IsZero() && r.To.Before(r.From) {
		return nil, 0, fmt.Errorf("service.DayService.List: %w: to is before from", domain.ErrInvalidRange)
	}
	repos := s.store.Repos()
	if _, err := repos.Drivers.GetByID(ctx, driverID); err != nil {
		return nil, 0, fmt.Errorf("service.DayService.List: %w", err)
	}
	days, total, err := repos.Days.ListPaged(ctx, driverID, r, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.DayService.List: %w", err)
	}
	return days, total, nil
}

// Delete removes a day that has no duty intervals or stops.
func (s *DayService) Delete(ctx context.Context, driverID, dayID uuid.UUID) error {
	if err := s.store.Repos().Days.Delete(ctx, driverID, dayID); err != nil {
		return fmt.Errorf("service.DayService.Delete: %w", err)
	}
	return nil
}
