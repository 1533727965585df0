package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pkordes/eld-logbook/internal/clock"
	"github.com/pkordes/eld-logbook/internal/domain"
	"github.com/pkordes/eld-logbook/internal/repo"
	"github.com/pkordes/eld-logbook/internal/service"
)

// HoursCmd prints the on-duty recap for one driver, computed directly from
// the database with no summary cache.
type HoursCmd struct {
	DriverID string `arg:"" name:"driver-id" help:"Driver UUID."`
	Cycle    string `default:"70/8" help:"HOS cycle as limit/window, e.g. 70/8 or 60/7."`
}

func (c *HoursCmd) Run(ctx *Context) error {
	driverID, err := uuid.Parse(c.DriverID)
	if err != nil {
		return fmt.Errorf("hours: bad driver id %q: %w", c.DriverID, err)
	}
	cycle, err := domain.ParseCycle(c.Cycle)
	if err != nil {
		return fmt.Errorf("hours: %w", err)
	}

	bg := context.Background()
	pool, err := pgxpool.New(bg, ctx.DatabaseURL)
	if err != nil {
		return fmt.Errorf("hours: open pool: %w", err)
	}
	defer pool.Close()

	hours := service.NewHoursService(repo.NewRepos(pool), clock.System{}, cycle, nil, slog.Default())
	summary, err := hours.Summary(bg, driverID)
	if err != nil {
		return fmt.Errorf("hours: %w", err)
	}
	printSummary(ctx.Out, summary)
	return nil
}

func printSummary(w io.Writer, s domain.HoursSummary) {
	fmt.Fprintf(w, "driver      %s\n", s.DriverID)
	fmt.Fprintf(w, "as of       %s\n", s.AsOf.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(w, "today       %6.2f h\n", s.Today)
	fmt.Fprintf(w, "last 5 days %6.2f h\n", s.LastFiveDays)
	fmt.Fprintf(w, "last 7 days %6.2f h\n", s.LastSevenDays)
	fmt.Fprintf(w, "last 8 days %6.2f h\n", s.LastEightDays)
	fmt.Fprintf(w, "cycle %-5s %6.2f used, %.2f available\n",
		s.Cycle.Cycle, s.Cycle.UsedHours, s.Cycle.AvailableHours)
}
