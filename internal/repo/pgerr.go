package repo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pkordes/eld-logbook/internal/domain"
)

// Postgres SQLSTATE codes the repos translate into domain errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// mapError translates constraint violations into the domain error taxonomy.
// Unrecognised errors are returned unchanged.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		return fmt.Errorf("%w: %s", domain.ErrConflict, constraintMessage(pgErr.ConstraintName))
	case pgForeignKeyViolation:
		return fmt.Errorf("%w: %s", domain.ErrConflict, constraintMessage(pgErr.ConstraintName))
	case pgCheckViolation:
		if isRangeCheck(pgErr.ConstraintName) {
			return fmt.Errorf("%w: %s", domain.ErrInvalidRange, constraintMessage(pgErr.ConstraintName))
		}
		return fmt.Errorf("%w: %s", domain.ErrValidation, constraintMessage(pgErr.ConstraintName))
	}
	return err
}

// isRangeCheck reports whether a CHECK constraint orders two timestamps.
// Every other CHECK guards a single column value.
func isRangeCheck(name string) bool {
	return strings.HasSuffix(name, "_end_after_start")
}

// constraintMessage turns a constraint name from the migrations into a
// message a caller can show.
func constraintMessage(name string) string {
	switch name {
	case "logbook_days_driver_date_key":
		return "a logbook day already exists for this driver and date"
	case "logbook_days_one_current_per_driver":
		return "driver already has a current logbook day"
	case "duty_intervals_one_open_per_driver":
		return "driver already has an open duty interval"
	case "duty_intervals_end_after_start", "stop_events_end_after_start":
		return "end time is before start time"
	case "drivers_name_check":
		return "name must not be blank"
	case "stop_events_latitude_check", "stop_events_longitude_check":
		return "coordinates are out of range"
	case "logbook_days_total_miles_driving_today_check", "logbook_days_mileage_covered_today_check":
		return "mileage must not be negative"
	case "logbook_days_driver_id_fkey":
		return "driver is referenced by logbook days"
	case "duty_intervals_day_id_fkey", "stop_events_day_id_fkey":
		return "logbook day is referenced"
	}
	return name
}
