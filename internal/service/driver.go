// Package service contains the business logic for the ELD logbook.
// Services validate inputs, enforce hours-of-service rules, and orchestrate
// repo calls. No SQL lives here: services depend on repo interfaces, not
// implementations.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/eld-logbook/internal/domain"
	"github.com/pkordes/eld-logbook/internal/repo"
)

// DriverService implements business logic for Driver operations.
type DriverService struct {
	repo repo.DriverRepo
}

// NewDriverService constructs a DriverService backed by the provided DriverRepo.
func NewDriverService(r repo.DriverRepo) *DriverService {
	return &DriverService{repo: r}
}

// Create validates and persists a new driver. An empty time zone defaults
// to UTC; any other value must be a known IANA zone.
func (s *DriverService) Create(ctx context.Context, driver domain.Driver) (domain.Driver, error) {
	driver.Name = strings.TrimSpace(driver.Name)
	if driver.Name == "" {
		return domain.Driver{}, fmt.Errorf("service.DriverService.Create: %w: name is required", domain.ErrValidation)
	}
	driver.TimeZone = strings.TrimSpace(driver.TimeZone)
	if driver.TimeZone == "" {
		driver.TimeZone = "UTC"
	}
	if _, err := time.LoadLocation(driver.TimeZone); err != nil {
		return domain.Driver{}, fmt.Errorf("service.DriverService.Create: %w: unknown time zone %q", domain.ErrValidation, driver.TimeZone)
	}

	created, err := s.repo.Create(ctx, driver)
	if err != nil {
		return domain.Driver{}, fmt.Errorf("service.DriverService.Create: %w", err)
	}
	return created, nil
}

// GetByID returns a single driver by ID.
func (s *DriverService) GetByID(ctx context.Context, id uuid.UUID) (domain.Driver, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Driver{}, fmt.Errorf("service.DriverService.GetByID: %w", err)
	}
	return d, nil
}

// List returns all drivers.
func (s *DriverService) List(ctx context.Context) ([]domain.Driver, error) {
	drivers, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.DriverService.List: %w", err)
	}
	return drivers, nil
}

// Delete removes a driver that has no logbook days.
func (s *DriverService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.DriverService.Delete: %w", err)
	}
	return nil
}

// driverLocation loads a driver and resolves its time zone.
func driverLocation(ctx context.Context, drivers repo.DriverRepo, id uuid.UUID) (domain.Driver, *time.Location, error) {
	d, err := drivers.GetByID(ctx, id)
	if err != nil {
		return domain.Driver{}, nil, err
	}
	loc, err := d.Location()
	if err != nil {
		return domain.Driver{}, nil, fmt.Errorf("%w: driver time zone %q: %v", domain.ErrValidation, d.TimeZone, err)
	}
	return d, loc, nil
}
