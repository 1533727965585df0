package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/eld-logbook/internal/domain"
)

// DayRepo defines the persistence operations for logbook days.
// Every operation is scoped by driverID to enforce ownership.
type DayRepo interface {
	// GetOrCreate returns the day for (driverID, date), creating it when absent.
	// Older current days of the driver are demoted in the same statement batch,
	// so at most one day per driver is current.
	GetOrCreate(ctx context.Context, driverID uuid.UUID, date time.Time) (domain.LogbookDay, error)

	// Create inserts a new day and fails with domain.ErrConflict if one already
	// exists for (driverID, date).
	Create(ctx context.Context, driverID uuid.UUID, date time.Time) (domain.LogbookDay, error)

	// GetByID retrieves a day by primary key, scoped to driverID.
	GetByID(ctx context.Context, driverID, dayID uuid.UUID) (domain.LogbookDay, error)

	// GetByDate retrieves the day for (driverID, date).
	GetByDate(ctx context.Context, driverID uuid.UUID, date time.Time) (domain.LogbookDay, error)

	// Current returns the driver's current day.
	// Returns domain.ErrNotFound if the driver has none.
	Current(ctx context.Context, driverID uuid.UUID) (domain.LogbookDay, error)

	// ListPaged returns one page of days whose date falls in r, newest first,
	// plus the total count matching r.
	ListPaged(ctx context.Context, driverID uuid.UUID, r domain.DayRange, p domain.PaginationParams) ([]domain.LogbookDay, int64, error)

	// List returns every day whose date falls in r, oldest first.
	List(ctx context.Context, driverID uuid.UUID, r domain.DayRange) ([]domain.LogbookDay, error)

	// Close records mileage and marks the day done and no longer current.
	// Returns domain.ErrAlreadyClosed if the day is already done.
	Close(ctx context.Context, driverID, dayID uuid.UUID, m domain.Mileage) (domain.LogbookDay, error)

	// Delete removes a day that owns no duty intervals or stop events.
	// Returns domain.ErrConflict otherwise.
	Delete(ctx context.Context, driverID, dayID uuid.UUID) error
}

// pgDayRepo is the Postgres implementation of DayRepo.
type pgDayRepo struct {
	db db
}

// NewDayRepo constructs a DayRepo backed by the provided db connection.
func NewDayRepo(db db) DayRepo {
	return &pgDayRepo{db: db}
}

const dayColumns = `id, driver_id, day_date, total_miles_driving_today,
	mileage_covered_today, is_current, is_done, created_at, updated_at`

// demoteOlder clears the current flag on every current day older than date.
func (r *pgDayRepo) demoteOlder(ctx context.Context, driverID uuid.UUID, date time.Time) error {
	const q = `
		UPDATE logbook_days
		SET is_current = false, updated_at = now()
		WHERE driver_id = @driver_id AND is_current AND day_date < @day_date`

	_, err := r.db.Exec(ctx, q, pgx.NamedArgs{"driver_id": driverID, "day_date": date})
	return err
}

// GetOrCreate is idempotent: a second call for the same date returns the
// existing row. The new row is current only when no later day exists.
func (r *pgDayRepo) GetOrCreate(ctx context.Context, driverID uuid.UUID, date time.Time) (domain.LogbookDay, error) {
	if err := r.demoteOlder(ctx, driverID, date); err != nil {
		return domain.LogbookDay{}, fmt.Errorf("repo.DayRepo.GetOrCreate: demote: %w", mapError(err))
	}

	const q = `
		INSERT INTO logbook_days (driver_id, day_date, is_current)
		VALUES (@driver_id, @day_date, NOT EXISTS (
			SELECT 1 FROM logbook_days WHERE driver_id = @driver_id AND day_date > @day_date))
		ON CONFLICT (driver_id, day_date) DO NOTHING
		RETURNING ` + dayColumns

	day, err := scanDay(r.db.QueryRow(ctx, q, pgx.NamedArgs{"driver_id": driverID, "day_date": date}))
	if errors.Is(err, domain.ErrNotFound) {
		// DO NOTHING returns no row when the day already exists.
		return r.GetByDate(ctx, driverID, date)
	}
	if err != nil {
		return domain.LogbookDay{}, fmt.Errorf("repo.DayRepo.GetOrCreate: %w", mapError(err))
	}
	return day, nil
}

// Create inserts a new day without the ON CONFLICT fallback.
func (r *pgDayRepo) Create(ctx context.Context, driverID uuid.UUID, date time.Time) (domain.LogbookDay, error) {
	if err := r.demoteOlder(ctx, driverID, date); err != nil {
		return domain.LogbookDay{}, fmt.Errorf("repo.DayRepo.Create: demote: %w", mapError(err))
	}

	const q = `
		INSERT INTO logbook_days (driver_id, day_date, is_current)
		VALUES (@driver_id, @day_date, NOT EXISTS (
			SELECT 1 FROM logbook_days WHERE driver_id = @driver_id AND day_date > @day_date))
		RETURNING ` + dayColumns

	day, err := scanDay(r.db.QueryRow(ctx, q, pgx.NamedArgs{"driver_id": driverID, "day_date": date}))
	if err != nil {
		return domain.LogbookDay{}, fmt.Errorf("repo.DayRepo.Create: %w", mapError(err))
	}
	return day, nil
}

// GetByID retrieves a day by primary key, scoped to driverID.
func (r *pgDayRepo) GetByID(ctx context.Context, driverID, dayID uuid.UUID) (domain.LogbookDay, error) {
	const q = `SELECT ` + dayColumns + ` FROM logbook_days WHERE id = @id AND driver_id = @driver_id`

	day, err := scanDay(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": dayID, "driver_id": driverID}))
	if err != nil {
		return domain.LogbookDay{}, fmt.Errorf("repo.DayRepo.GetByID: %w", mapError(err))
	}
	return day, nil
}

// GetByDate retrieves the day for (driverID, date).
func (r *pgDayRepo) GetByDate(ctx context.Context, driverID uuid.UUID, date time.Time) (domain.LogbookDay, error) {
	const q = `SELECT ` + dayColumns + ` FROM logbook_days WHERE driver_id = @driver_id AND day_date = @day_date`

	day, err := scanDay(r.db.QueryRow(ctx, q, pgx.NamedArgs{"driver_id": driverID, "day_date": date}))
	if err != nil {
		return domain.LogbookDay{}, fmt.Errorf("repo.DayRepo.GetByDate: %w", mapError(err))
	}
	return day, nil
}

// Current returns the driver's current day.
func (r *pgDayRepo) Current(ctx context.Context, driverID uuid.UUID) (domain.LogbookDay, error) {
	const q = `SELECT ` + dayColumns + ` FROM logbook_days WHERE driver_id = @driver_id AND is_current`

	day, err := scanDay(r.db.QueryRow(ctx, q, pgx.NamedArgs{"driver_id": driverID}))
	if err != nil {
		return domain.LogbookDay{}, fmt.Errorf("repo.DayRepo.Current: %w", mapError(err))
	}
	return day, nil
}

// rangeArgs binds an optional date range. A zero bound becomes NULL, which
// the queries treat as open-ended.
func rangeArgs(driverID uuid.UUID, r domain.DayRange) pgx.NamedArgs {
	args := pgx.NamedArgs{"driver_id": driverID, "from": nil, "to": nil}
	if !r.From.IsZero() {
		args["from"] = r.From
	}
	if !r.To.IsZero() {
		args["to"] = r.To
	}
	return args
}

const dayRangeFilter = `
	driver_id = @driver_id
	AND (@from::date IS NULL OR day_date >= @from::date)
	AND (@to::date IS NULL OR day_date <= @to::date)`

// ListPaged returns a page of days, newest first, and the total count.
// Two queries are issued: a COUNT for the total and a SELECT for the page.
func (r *pgDayRepo) ListPaged(ctx context.Context, driverID uuid.UUID, dr domain.DayRange, p domain.PaginationParams) ([]domain.LogbookDay, int64, error) {
	args := rangeArgs(driverID, dr)

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM logbook_days WHERE`+dayRangeFilter, args).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.DayRepo.ListPaged: count: %w", err)
	}

	args["limit"] = p.Limit
	args["offset"] = p.Offset()
	q := `SELECT ` + dayColumns + ` FROM logbook_days WHERE` + dayRangeFilter + `
		ORDER BY day_date DESC
		LIMIT @limit OFFSET @offset`

	days, err := r.queryDays(ctx, q, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.DayRepo.ListPaged: %w", err)
	}
	return days, total, nil
}

// List returns every day in the range, oldest first.
func (r *pgDayRepo) List(ctx context.Context, driverID uuid.UUID, dr domain.DayRange) ([]domain.LogbookDay, error) {
	q := `SELECT ` + dayColumns + ` FROM logbook_days WHERE` + dayRangeFilter + ` ORDER BY day_date`

	days, err := r.queryDays(ctx, q, rangeArgs(driverID, dr))
	if err != nil {
		return nil, fmt.Errorf("repo.DayRepo.List: %w", err)
	}
	return days, nil
}

func (r *pgDayRepo) queryDays(ctx context.Context, q string, args pgx.NamedArgs) ([]domain.LogbookDay, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	days := []domain.LogbookDay{}
	for rows.Next() {
		d, err := scanDay(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return days, nil
}

// Close marks a day done. A missing MileageCoveredToday defaults to the
// total miles driven.
func (r *pgDayRepo) Close(ctx context.Context, driverID, dayID uuid.UUID, m domain.Mileage) (domain.LogbookDay, error) {
	covered := m.TotalMilesDrivingToday
	if m.MileageCoveredToday != nil {
		covered = *m.MileageCoveredToday
	}

	const q = `
		UPDATE logbook_days
		SET total_miles_driving_today = @total,
		    mileage_covered_today     = @covered,
		    is_current                = false,
		    is_done                   = true,
		    updated_at                = now()
		WHERE id = @id AND driver_id = @driver_id AND NOT is_done
		RETURNING ` + dayColumns

	day, err := scanDay(r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"id":        dayID,
		"driver_id": driverID,
		"total":     m.TotalMilesDrivingToday,
		"covered":   covered,
	}))
	if errors.Is(err, domain.ErrNotFound) {
		// Either the day does not exist or it is already done.
		if _, getErr := r.GetByID(ctx, driverID, dayID); getErr != nil {
			return domain.LogbookDay{}, fmt.Errorf("repo.DayRepo.Close: %w", getErr)
		}
		return domain.LogbookDay{}, fmt.Errorf("repo.DayRepo.Close: %w", domain.ErrAlreadyClosed)
	}
	if err != nil {
		return domain.LogbookDay{}, fmt.Errorf("repo.DayRepo.Close: %w", mapError(err))
	}
	return day, nil
}

// Delete removes an empty day.
func (r *pgDayRepo) Delete(ctx context.Context, driverID, dayID uuid.UUID) error {
	const check = `
		SELECT EXISTS (SELECT 1 FROM duty_intervals WHERE day_id = @id)
		    OR EXISTS (SELECT 1 FROM stop_events WHERE day_id = @id)`

	var referenced bool
	if err := r.db.QueryRow(ctx, check, pgx.NamedArgs{"id": dayID}).Scan(&referenced); err != nil {
		return fmt.Errorf("repo.DayRepo.Delete: check: %w", err)
	}
	if referenced {
		return fmt.Errorf("repo.DayRepo.Delete: %w: day has duty intervals or stops", domain.ErrConflict)
	}

	tag, err := r.db.Exec(ctx, `DELETE FROM logbook_days WHERE id = @id AND driver_id = @driver_id`,
		pgx.NamedArgs{"id": dayID, "driver_id": driverID})
	if err != nil {
		return fmt.Errorf("repo.DayRepo.Delete: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.DayRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanDay maps a single database row into a domain.LogbookDay.
func scanDay(s scanner) (domain.LogbookDay, error) {
	var (
		d        domain.LogbookDay
		id       pgtype.UUID
		driverID pgtype.UUID
		date     pgtype.Date
	)
	err := s.Scan(&id, &driverID, &date, &d.TotalMilesDrivingToday,
		&d.MileageCoveredToday, &d.IsCurrent, &d.IsDone, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.LogbookDay{}, domain.ErrNotFound
		}
		return domain.LogbookDay{}, err
	}
	d.ID = uuid.UUID(id.Bytes)
	d.DriverID = uuid.UUID(driverID.Bytes)
	d.Date = time.Date(date.Time.Year(), date.Time.Month(), date.Time.Day(), 0, 0, 0, 0, time.UTC)
	return d, nil
}
