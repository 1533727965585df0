package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/eld-logbook/internal/domain"
	"github.com/pkordes/eld-logbook/internal/repo"
)

// ExportService assembles a flat record-of-duty-status export for a driver.
type ExportService struct {
	repos repo.Repos
}

// NewExportService constructs an ExportService backed by the provided repos.
func NewExportService(repos repo.Repos) *ExportService {
	return &ExportService{repos: repos}
}

// Export returns one ExportRow per duty interval across the driver's days
// in r, oldest day first. Days with no intervals contribute one row with
// empty interval fields.
func (s *ExportService) Export(ctx context.Context, driverID uuid.UUID, r domain.DayRange) ([]domain.ExportRow, error) {
	if !r.From.IsZero() && !r.To.IsZero() && r.To.Before(r.From) {
		return nil, fmt.Errorf("service.ExportService.Export: %w: to is before from", domain.ErrInvalidRange)
	}
	if _, err := s.repos.Drivers.GetByID(ctx, driverID); err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}
	days, err := s.repos.Days.List(ctx, driverID, r)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}

	rows := []domain.ExportRow{}
	for _, day := range days {
		intervals, err := s.repos.Intervals.ListByDay(ctx, day.ID)
		if err != nil {
			return nil, fmt.Errorf("service.ExportService.Export: day %s: %w", day.DateString(), err)
		}

		base := domain.ExportRow{
			DayID:                  day.ID.String(),
			DayDate:                day.DateString(),
			TotalMilesDrivingToday: day.TotalMilesDrivingToday,
			MileageCoveredToday:    day.MileageCoveredToday,
		}
		if len(intervals) == 0 {
			rows = append(rows, base)
			continue
		}
		for _, iv := range intervals {
			row := base
			start := iv.StartAt
			row.Status = iv.Status
			row.StartAt = &start
			row.EndAt = iv.EndAt
			row.Hours = domain.Hours(iv.Duration())
			row.Remark = iv.Remark
			rows = append(rows, row)
		}
	}
	return rows, nil
}
