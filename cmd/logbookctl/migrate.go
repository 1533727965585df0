package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/pressly/goose/v3"

	"github.com/pkordes/eld-logbook/migrations"
)

// MigrateUpCmd applies every pending migration.
type MigrateUpCmd struct{}

// MigrateDownToCmd rolls the schema back to Version. 0 drops everything.
type MigrateDownToCmd struct {
	Version int64 `arg:"" help:"Target schema version."`
}

// MigrateStatusCmd lists each migration and whether it has been applied.
type MigrateStatusCmd struct{}

func (c *MigrateUpCmd) Run(ctx *Context) error {
	return withProvider(ctx.DatabaseURL, func(p *goose.Provider) error {
		results, err := p.Up(context.Background())
		if err != nil {
			return fmt.Errorf("migrate up: %w", err)
		}
		printResults(ctx.Out, results)
		return nil
	})
}

func (c *MigrateDownToCmd) Run(ctx *Context) error {
	if c.Version < 0 {
		return fmt.Errorf("migrate down-to: version must be >= 0, got %d", c.Version)
	}
	return withProvider(ctx.DatabaseURL, func(p *goose.Provider) error {
		results, err := p.DownTo(context.Background(), c.Version)
		if err != nil {
			return fmt.Errorf("migrate down-to %d: %w", c.Version, err)
		}
		printResults(ctx.Out, results)
		return nil
	})
}

func (c *MigrateStatusCmd) Run(ctx *Context) error {
	return withProvider(ctx.DatabaseURL, func(p *goose.Provider) error {
		statuses, err := p.Status(context.Background())
		if err != nil {
			return fmt.Errorf("migrate status: %w", err)
		}
		for _, s := range statuses {
			applied := "pending"
			if s.State == goose.StateApplied {
				applied = "applied " + s.AppliedAt.Format("2006-01-02 15:04:05")
			}
			fmt.Fprintf(ctx.Out, "%5d  %-40s %s\n", s.Source.Version, s.Source.Path, applied)
		}
		return nil
	})
}

func withProvider(dsn string, fn func(*goose.Provider) error) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	provider, err := migrations.NewProvider(db)
	if err != nil {
		return err
	}
	return fn(provider)
}

func printResults(w io.Writer, results []*goose.MigrationResult) {
	if len(results) == 0 {
		fmt.Fprintln(w, "no migrations to run")
		return
	}
	for _, r := range results {
		fmt.Fprintf(w, "%-4s %5d  %s (%s)\n", r.Direction, r.Source.Version, r.Source.Path, r.Duration)
	}
}
