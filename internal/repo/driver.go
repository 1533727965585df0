// Package repo contains all database access logic for the ELD logbook.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here, only SQL, constraint mapping and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/eld-logbook/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, and lets
// Store hand the same repos a live transaction.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// DriverRepo defines the persistence operations for Drivers.
type DriverRepo interface {
	// Create inserts a new driver and returns the persisted record.
	Create(ctx context.Context, driver domain.Driver) (domain.Driver, error)

	// GetByID retrieves a driver by primary key.
	// Returns domain.ErrNotFound if no driver with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Driver, error)

	// GetForUpdate retrieves a driver and row-locks it until the surrounding
	// transaction ends. Duty-status writes take this lock first so that
	// transitions for one driver run one at a time.
	GetForUpdate(ctx context.Context, id uuid.UUID) (domain.Driver, error)

	// List returns all drivers ordered by name.
	List(ctx context.Context) ([]domain.Driver, error)

	// Delete removes a driver. Returns domain.ErrConflict if the driver still
	// owns logbook days, domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgDriverRepo is the Postgres implementation of DriverRepo.
type pgDriverRepo struct {
	db db
}

// NewDriverRepo constructs a DriverRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewDriverRepo(db db) DriverRepo {
	return &pgDriverRepo{db: db}
}

const driverColumns = `id, name, time_zone, created_at, updated_at`

// Create inserts a new driver row and returns the full persisted record.
func (r *pgDriverRepo) Create(ctx context.Context, driver domain.Driver) (domain.Driver, error) {
	const q = `
		INSERT INTO drivers (name, time_zone)
		VALUES (@name, @time_zone)
		RETURNING ` + driverColumns

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"name":      driver.Name,
		"time_zone": driver.TimeZone,
	})
	result, err := scanDriver(row)
	if err != nil {
		return domain.Driver{}, fmt.Errorf("repo.DriverRepo.Create: %w", mapError(err))
	}
	return result, nil
}

// GetByID retrieves a driver by primary key.
func (r *pgDriverRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Driver, error) {
	const q = `SELECT ` + driverColumns + ` FROM drivers WHERE id = @id`

	result, err := scanDriver(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Driver{}, fmt.Errorf("repo.DriverRepo.GetByID: %w", mapError(err))
	}
	return result, nil
}

// GetForUpdate retrieves a driver with a row lock.
func (r *pgDriverRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (domain.Driver, error) {
	const q = `SELECT ` + driverColumns + ` FROM drivers WHERE id = @id FOR UPDATE`

	result, err := scanDriver(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Driver{}, fmt.Errorf("repo.DriverRepo.GetForUpdate: %w", mapError(err))
	}
	return result, nil
}

// List returns all drivers ordered by name.
func (r *pgDriverRepo) List(ctx context.Context) ([]domain.Driver, error) {
	const q = `SELECT ` + driverColumns + ` FROM drivers ORDER BY name, id`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.DriverRepo.List: %w", err)
	}
	defer rows.Close()

	drivers := []domain.Driver{}
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.DriverRepo.List: scan: %w", err)
		}
		drivers = append(drivers, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.DriverRepo.List: rows: %w", err)
	}
	return drivers, nil
}

// Delete removes a driver after checking that no logbook day references it.
// The foreign key is RESTRICT as well; the explicit check gives the caller a
// readable reason instead of a constraint name.
func (r *pgDriverRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const check = `SELECT EXISTS (SELECT 1 FROM logbook_days WHERE driver_id = @id)`

	var referenced bool
	if err := r.db.QueryRow(ctx, check, pgx.NamedArgs{"id": id}).Scan(&referenced); err != nil {
		return fmt.Errorf("repo.DriverRepo.Delete: check: %w", err)
	}
	if referenced {
		return fmt.Errorf("repo.DriverRepo.Delete: %w: driver has logbook days", domain.ErrConflict)
	}

	tag, err := r.db.Exec(ctx, `DELETE FROM drivers WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.DriverRepo.Delete: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.DriverRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan
// helpers to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanDriver maps a single database row into a domain.Driver.
func scanDriver(s scanner) (domain.Driver, error) {
	var (
		d  domain.Driver
		id pgtype.UUID
	)
	err := s.Scan(&id, &d.Name, &d.TimeZone, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Driver{}, domain.ErrNotFound
		}
		return domain.Driver{}, err
	}
	d.ID = uuid.UUID(id.Bytes)
	return d, nil
}
