package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Repos groups the repositories bound to one connection or transaction.
type Repos struct {
	Drivers   DriverRepo
	Days      DayRepo
	Intervals IntervalRepo
	Stops     StopRepo
}

// NewRepos binds every repository to db.
func NewRepos(db db) Repos {
	return Repos{
		Drivers:   NewDriverRepo(db),
		Days:      NewDayRepo(db),
		Intervals: NewIntervalRepo(db),
		Stops:     NewStopRepo(db),
	}
}

// Transactor runs fn against repositories bound to a single transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
type Transactor interface {
	InTx(ctx context.Context, fn func(Repos) error) error
}

// beginner is satisfied by *pgxpool.Pool and by pgx.Tx (which nests via a
// savepoint, letting integration tests keep their outer rollback).
type beginner interface {
	db
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store owns the connection and hands out repositories, either bound
// directly to the pool for reads or bound to a transaction for writes.
type Store struct {
	db beginner
}

// NewStore constructs a Store. In production pass *pgxpool.Pool.
func NewStore(db beginner) *Store {
	return &Store{db: db}
}

// Repos returns repositories bound to the pool, outside any transaction.
func (s *Store) Repos() Repos {
	return NewRepos(s.db)
}

// InTx runs fn in a transaction at the server's default isolation level,
// which for Postgres is READ COMMITTED. Duty-status writes lock the driver
// row first, so concurrent transitions for one driver serialise.
func (s *Store) InTx(ctx context.Context, fn func(Repos) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repo.Store.InTx: begin: %w", err)
	}

	finished := false
	defer func() {
		// Only reached with finished == false when fn panics.
		if !finished {
			_ = tx.Rollback(ctx)
		}
	}()

	if err := fn(NewRepos(tx)); err != nil {
		finished = true
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("repo.Store.InTx: %w (rollback: %v)", err, rbErr)
		}
		return fmt.Errorf("repo.Store.InTx: %w", err)
	}

	finished = true
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repo.Store.InTx: commit: %w", mapError(err))
	}
	return nil
}
