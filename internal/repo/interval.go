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

// IntervalRepo defines the persistence operations for duty intervals.
// Intervals are never deleted, and a closed interval is never reopened.
type IntervalRepo interface {
	// Open inserts an interval with no end time and marks it current.
	// Returns domain.ErrConflict if the driver already has an open interval.
	Open(ctx context.Context, iv domain.DutyInterval) (domain.DutyInterval, error)

	// InsertClosed inserts an interval that already has an end time.
	// Used for the per-day pieces of a span that crosses midnight.
	InsertClosed(ctx context.Context, iv domain.DutyInterval) (domain.DutyInterval, error)

	// Close sets the end time of an open interval and clears its current flag.
	// Returns domain.ErrAlreadyClosed if the interval already has an end,
	// domain.ErrInvalidRange if end is before the interval's start.
	Close(ctx context.Context, id uuid.UUID, end time.Time) (domain.DutyInterval, error)

	// GetByID retrieves an interval by primary key.
	GetByID(ctx context.Context, id uuid.UUID) (domain.DutyInterval, error)

	// OpenForDriver returns the driver's open interval.
	// Returns domain.ErrNotFound if the driver has none.
	OpenForDriver(ctx context.Context, driverID uuid.UUID) (domain.DutyInterval, error)

	// ListByDay returns every interval of a day ordered by start time.
	ListByDay(ctx context.Context, dayID uuid.UUID) ([]domain.DutyInterval, error)

	// LatestEnd returns the latest end time over the driver's closed
	// intervals. ok is false when the driver has none.
	LatestEnd(ctx context.Context, driverID uuid.UUID) (end time.Time, ok bool, err error)

	// SumOnDutyByDay totals the closed on-duty time of one day.
	SumOnDutyByDay(ctx context.Context, dayID uuid.UUID) (time.Duration, error)

	// SumOnDutySince totals the driver's closed on-duty time over intervals
	// that ended at or after since.
	SumOnDutySince(ctx context.Context, driverID uuid.UUID, since time.Time) (time.Duration, error)
}

// pgIntervalRepo is the Postgres implementation of IntervalRepo.
type pgIntervalRepo struct {
	db db
}

// NewIntervalRepo constructs an IntervalRepo backed by the provided db connection.
func NewIntervalRepo(db db) IntervalRepo {
	return &pgIntervalRepo{db: db}
}

const intervalColumns = `id, day_id, driver_id, status, start_at, end_at, remark, is_current, created_at`

// Open inserts a current interval with a NULL end. The partial unique index
// on (driver_id) WHERE is_current rejects a second open interval.
func (r *pgIntervalRepo) Open(ctx context.Context, iv domain.DutyInterval) (domain.DutyInterval, error) {
	const q = `
		INSERT INTO duty_intervals (day_id, driver_id, status, start_at, remark, is_current)
		VALUES (@day_id, @driver_id, @status, @start_at, @remark, true)
		RETURNING ` + intervalColumns

	result, err := scanInterval(r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"day_id":    iv.DayID,
		"driver_id": iv.DriverID,
		"status":    string(iv.Status),
		"start_at":  iv.StartAt,
		"remark":    iv.Remark,
	}))
	if err != nil {
		return domain.DutyInterval{}, fmt.Errorf("repo.IntervalRepo.Open: %w", mapError(err))
	}
	return result, nil
}

// InsertClosed inserts a finished interval. It is never current.
func (r *pgIntervalRepo) InsertClosed(ctx context.Context, iv domain.DutyInterval) (domain.DutyInterval, error) {
	if iv.EndAt == nil {
		return domain.DutyInterval{}, fmt.Errorf("repo.IntervalRepo.InsertClosed: %w: end time is required", domain.ErrValidation)
	}

	const q = `
		INSERT INTO duty_intervals (day_id, driver_id, status, start_at, end_at, remark, is_current)
		VALUES (@day_id, @driver_id, @status, @start_at, @end_at, @remark, false)
		RETURNING ` + intervalColumns

	result, err := scanInterval(r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"day_id":    iv.DayID,
		"driver_id": iv.DriverID,
		"status":    string(iv.Status),
		"start_at":  iv.StartAt,
		"end_at":    *iv.EndAt,
		"remark":    iv.Remark,
	}))
	if err != nil {
		return domain.DutyInterval{}, fmt.Errorf("repo.IntervalRepo.InsertClosed: %w", mapError(err))
	}
	return result, nil
}

// Close finishes an open interval.
func (r *pgIntervalRepo) Close(ctx context.Context, id uuid.UUID, end time.Time) (domain.DutyInterval, error) {
	const q = `
		UPDATE duty_intervals
		SET end_at = @end_at, is_current = false
		WHERE id = @id AND end_at IS NULL
		RETURNING ` + intervalColumns

	result, err := scanInterval(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "end_at": end}))
	if errors.Is(err, domain.ErrNotFound) {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return domain.DutyInterval{}, fmt.Errorf("repo.IntervalRepo.Close: %w", getErr)
		}
		return domain.DutyInterval{}, fmt.Errorf("repo.IntervalRepo.Close: %w", domain.ErrAlreadyClosed)
	}
	if err != nil {
		return domain.DutyInterval{}, fmt.Errorf("repo.IntervalRepo.Close: %w", mapError(err))
	}
	return result, nil
}

// GetByID retrieves an interval by primary key.
func (r *pgIntervalRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.DutyInterval, error) {
	const q = `SELECT ` + intervalColumns + ` FROM duty_intervals WHERE id = @id`

	result, err := scanInterval(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.DutyInterval{}, fmt.Errorf("repo.IntervalRepo.GetByID: %w", mapError(err))
	}
	return result, nil
}

// OpenForDriver returns the driver's open interval, row-locked for the rest
// of the surrounding transaction.
func (r *pgIntervalRepo) OpenForDriver(ctx context.Context, driverID uuid.UUID) (domain.DutyInterval, error) {
	const q = `
		SELECT ` + intervalColumns + `
		FROM duty_intervals
		WHERE driver_id = @driver_id AND is_current
		FOR UPDATE`

	result, err := scanInterval(r.db.QueryRow(ctx, q, pgx.NamedArgs{"driver_id": driverID}))
	if err != nil {
		return domain.DutyInterval{}, fmt.Errorf("repo.IntervalRepo.OpenForDriver: %w", mapError(err))
	}
	return result, nil
}

// ListByDay returns every interval of a day ordered by start time.
func (r *pgIntervalRepo) ListByDay(ctx context.Context, dayID uuid.UUID) ([]domain.DutyInterval, error) {
	const q = `
		SELECT ` + intervalColumns + `
		FROM duty_intervals
		WHERE day_id = @day_id
		ORDER BY start_at, created_at, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"day_id": dayID})
	if err != nil {
		return nil, fmt.Errorf("repo.IntervalRepo.ListByDay: %w", err)
	}
	defer rows.Close()

	intervals := []domain.DutyInterval{}
	for rows.Next() {
		iv, err := scanInterval(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.IntervalRepo.ListByDay: scan: %w", err)
		}
		intervals = append(intervals, iv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.IntervalRepo.ListByDay: rows: %w", err)
	}
	return intervals, nil
}

// onDutyStatusNames is the text[] bound to the status filter of the sums.
func onDutyStatusNames() []string {
	names := make([]string, len(domain.OnDutyStatuses))
	for i, s := range domain.OnDutyStatuses {
		names[i] = string(s)
	}
	return names
}

// SumOnDutyByDay totals closed on-duty time for one day.
func (r *pgIntervalRepo) SumOnDutyByDay(ctx context.Context, dayID uuid.UUID) (time.Duration, error) {
	const q = `
		SELECT COALESCE(SUM(EXTRACT(EPOCH FROM (end_at - start_at))), 0)::float8
		FROM duty_intervals
		WHERE day_id = @day_id AND end_at IS NOT NULL AND status = ANY(@statuses)`

	d, err := r.sumSeconds(ctx, q, pgx.NamedArgs{"day_id": dayID, "statuses": onDutyStatusNames()})
	if err != nil {
		return 0, fmt.Errorf("repo.IntervalRepo.SumOnDutyByDay: %w", err)
	}
	return d, nil
}

// LatestEnd returns max(end_at) over the driver's closed intervals.
func (r *pgIntervalRepo) LatestEnd(ctx context.Context, driverID uuid.UUID) (time.Time, bool, error) {
	const q = `SELECT max(end_at) FROM duty_intervals WHERE driver_id = @driver_id`

	var end *time.Time
	if err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"driver_id": driverID}).Scan(&end); err != nil {
		return time.Time{}, false, fmt.Errorf("repo.IntervalRepo.LatestEnd: %w", err)
	}
	if end == nil {
		return time.Time{}, false, nil
	}
	return *end, true, nil
}

// SumOnDutySince totals closed on-duty time that ended at or after since.
func (r *pgIntervalRepo) SumOnDutySince(ctx context.Context, driverID uuid.UUID, since time.Time) (time.Duration, error) {
	const q = `
		SELECT COALESCE(SUM(EXTRACT(EPOCH FROM (end_at - start_at))), 0)::float8
		FROM duty_intervals
		WHERE driver_id = @driver_id
		  AND end_at IS NOT NULL
		  AND end_at >= @since
		  AND status = ANY(@statuses)`

	d, err := r.sumSeconds(ctx, q, pgx.NamedArgs{
		"driver_id": driverID,
		"since":     since,
		"statuses":  onDutyStatusNames(),
	})
	if err != nil {
		return 0, fmt.Errorf("repo.IntervalRepo.SumOnDutySince: %w", err)
	}
	return d, nil
}

func (r *pgIntervalRepo) sumSeconds(ctx context.Context, q string, args pgx.NamedArgs) (time.Duration, error) {
	var seconds float64
	if err := r.db.QueryRow(ctx, q, args).Scan(&seconds); err != nil {
		return 0, err
	}
	return time.Duration(seconds * float64(time.Second)).Round(time.Microsecond), nil
}

// scanInterval maps a single database row into a domain.DutyInterval.
func scanInterval(s scanner) (domain.DutyInterval, error) {
	var (
		iv       domain.DutyInterval
		id       pgtype.UUID
		dayID    pgtype.UUID
		driverID pgtype.UUID
		status   string
		endAt    pgtype.Timestamptz
	)
	err := s.Scan(&id, &dayID, &driverID, &status, &iv.StartAt, &endAt, &iv.Remark, &iv.IsCurrent, &iv.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.DutyInterval{}, domain.ErrNotFound
		}
		return domain.DutyInterval{}, err
	}
	iv.ID = uuid.UUID(id.Bytes)
	iv.DayID = uuid.UUID(dayID.Bytes)
	iv.DriverID = uuid.UUID(driverID.Bytes)
	iv.Status = domain.DutyStatus(status)
	if endAt.Valid {
		t := endAt.Time
		iv.EndAt = &t
	}
	return iv, nil
}
