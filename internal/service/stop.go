package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/eld-logbook/internal/domain"
	"github.com/pkordes/eld-logbook/internal/repo"
)

// StopService implements business logic for stop events.
type StopService struct {
	days  repo.DayRepo
	stops repo.StopRepo
}

// NewStopService constructs a StopService.
func NewStopService(days repo.DayRepo, stops repo.StopRepo) *StopService {
	return &StopService{days: days, stops: stops}
}

// Create validates and records a stop event against one of the driver's days.
func (s *StopService) Create(ctx context.Context, driverID, dayID uuid.UUID, stop domain.StopEvent) (domain.StopEvent, error) {
	if err := validateStop(stop); err != nil {
		return domain.StopEvent{}, fmt.Errorf("service.StopService.Create: %w", err)
	}
	if _, err := s.days.GetByID(ctx, driverID, dayID); err != nil {
		return domain.StopEvent{}, fmt.Errorf("service.StopService.Create: %w", err)
	}

	stop.DayID = dayID
	stop.DriverID = driverID
	stop.LocationName = strings.TrimSpace(stop.LocationName)
	created, err := s.stops.Create(ctx, stop)
	if err != nil {
		return domain.StopEvent{}, fmt.Errorf("service.StopService.Create: %w", err)
	}
	return created, nil
}

// List returns every stop event of one of the driver's days.
func (s *StopService) List(ctx context.Context, driverID, dayID uuid.UUID) ([]domain.StopEvent, error) {
	if _, err := s.days.GetByID(ctx, driverID, dayID); err != nil {
		return nil, fmt.Errorf("service.StopService.List: %w", err)
	}
	stops, err := s.stops.ListByDay(ctx, dayID)
	if err != nil {
		return nil, fmt.Errorf("service.StopService.List: %w", err)
	}
	return stops, nil
}

func validateStop(stop domain.StopEvent) error {
	if !stop.Type.Valid() {
		return fmt.Errorf("%w: unknown stop type %q", domain.ErrValidation, stop.Type)
	}
	if stop.StartAt.IsZero() {
		return fmt.Errorf("%w: start_at is required", domain.ErrValidation)
	}
	if stop.EndAt != nil && stop.EndAt.Before(stop.StartAt) {
		return fmt.Errorf("%w: end_at is before start_at", domain.ErrInvalidRange)
	}
	if stop.Latitude != nil && (*stop.Latitude < -90 || *stop.Latitude > 90) {
		return fmt.Errorf("%w: latitude must be between -90 and 90", domain.ErrValidation)
	}
	if stop.Longitude != nil && (*stop.Longitude < -180 || *stop.Longitude > 180) {
		return fmt.Errorf("%w: longitude must be between -180 and 180", domain.ErrValidation)
	}
	return nil
}
