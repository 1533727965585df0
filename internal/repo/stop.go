package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/eld-logbook/internal/domain"
)

// StopRepo defines the persistence operations for stop events.
// Single reads are scoped by dayID to enforce ownership.
type StopRepo interface {
	// Create inserts a new stop event and returns the persisted record.
	Create(ctx context.Context, stop domain.StopEvent) (domain.StopEvent, error)

	// GetByID retrieves a single stop event, scoped to the given dayID.
	// Returns domain.ErrNotFound if no stop with that ID exists under that day.
	GetByID(ctx context.Context, dayID, stopID uuid.UUID) (domain.StopEvent, error)

	// ListByDay returns all stop events of a day ordered by start time.
	ListByDay(ctx context.Context, dayID uuid.UUID) ([]domain.StopEvent, error)
}

// pgStopRepo is the Postgres implementation of StopRepo.
type pgStopRepo struct {
	db db
}

// NewStopRepo constructs a StopRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewStopRepo(db db) StopRepo {
	return &pgStopRepo{db: db}
}

const stopColumns = `id, day_id, driver_id, stop_type, location_name, latitude, longitude,
	start_at, end_at, notes, created_at`

func (r *pgStopRepo) Create(ctx context.Context, stop domain.StopEvent) (domain.StopEvent, error) {
	const q = `
		INSERT INTO stop_events (day_id, driver_id, stop_type, location_name, latitude, longitude, start_at, end_at, notes)
		VALUES (@day_id, @driver_id, @stop_type, @location_name, @latitude, @longitude, @start_at, @end_at, @notes)
		RETURNING ` + stopColumns

	result, err := scanStop(r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"day_id":        stop.DayID,
		"driver_id":     stop.DriverID,
		"stop_type":     string(stop.Type),
		"location_name": stop.LocationName,
		"latitude":      stop.Latitude,
		"longitude":     stop.Longitude,
		"start_at":      stop.StartAt,
		"end_at":        stop.EndAt,
		"notes":         stop.Notes,
	}))
	if err != nil {
		return domain.StopEvent{}, fmt.Errorf("repo.StopRepo.Create: %w", mapError(err))
	}
	return result, nil
}

func (r *pgStopRepo) GetByID(ctx context.Context, dayID, stopID uuid.UUID) (domain.StopEvent, error) {
	const q = `SELECT ` + stopColumns + ` FROM stop_events WHERE id = @id AND day_id = @day_id`

	result, err := scanStop(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": stopID, "day_id": dayID}))
	if err != nil {
		return domain.StopEvent{}, fmt.Errorf("repo.StopRepo.GetByID: %w", mapError(err))
	}
	return result, nil
}

func (r *pgStopRepo) ListByDay(ctx context.Context, dayID uuid.UUID) ([]domain.StopEvent, error) {
	const q = `SELECT ` + stopColumns + ` FROM stop_events WHERE day_id = @day_id ORDER BY start_at, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"day_id": dayID})
	if err != nil {
		return nil, fmt.Errorf("repo.StopRepo.ListByDay: %w", err)
	}
	defer rows.Close()

	stops := []domain.StopEvent{}
	for rows.Next() {
		s, err := scanStop(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.StopRepo.ListByDay: scan: %w", err)
		}
		stops = append(stops, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.StopRepo.ListByDay: rows: %w", err)
	}
	return stops, nil
}

// scanStop maps a single database row into a domain.StopEvent.
func scanStop(s scanner) (domain.StopEvent, error) {
	var (
		st       domain.StopEvent
		id       pgtype.UUID
		dayID    pgtype.UUID
		driverID pgtype.UUID
		stopType string
		lat, lng pgtype.Float8
		endAt    pgtype.Timestamptz
	)
	err := s.Scan(&id, &dayID, &driverID, &stopType, &st.LocationName, &lat, &lng,
		&st.StartAt, &endAt, &st.Notes, &st.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.StopEvent{}, domain.ErrNotFound
		}
		return domain.StopEvent{}, err
	}
	st.ID = uuid.UUID(id.Bytes)
	st.DayID = uuid.UUID(dayID.Bytes)
	st.DriverID = uuid.UUID(driverID.Bytes)
	st.Type = domain.StopType(stopType)
	if lat.Valid {
		v := lat.Float64
		st.Latitude = &v
	}
	if lng.Valid {
		v := lng.Float64
		st.Longitude = &v
	}
	if endAt.Valid {
		t := endAt.Time
		st.EndAt = &t
	}
	return st, nil
}
