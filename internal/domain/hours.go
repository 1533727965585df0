package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Cycle is an HOS on-duty limit over a rolling window of days, e.g. 70/8.
type Cycle struct {
	LimitHours int
	WindowDays int
}

// DefaultCycle is the 70-hour / 8-day property-carrying cycle.
var DefaultCycle = Cycle{LimitHours: 70, WindowDays: 8}

// ParseCycle parses "70/8" or "60/7".
func ParseCycle(s string) (Cycle, error) {
	limit, window, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok {
		return Cycle{}, fmt.Errorf("%w: cycle %q must look like 70/8", ErrValidation, s)
	}
	l, err := strconv.Atoi(limit)
	if err != nil || l <= 0 {
		return Cycle{}, fmt.Errorf("%w: cycle %q has a bad hour limit", ErrValidation, s)
	}
	w, err := strconv.Atoi(window)
	if err != nil || w <= 0 {
		return Cycle{}, fmt.Errorf("%w: cycle %q has a bad day window", ErrValidation, s)
	}
	return Cycle{LimitHours: l, WindowDays: w}, nil
}

// String renders the cycle as "70/8".
func (c Cycle) String() string {
	return fmt.Sprintf("%d/%d", c.LimitHours, c.WindowDays)
}

// Hours converts an accumulated duration to hours rounded to 2 decimals.
// Rounding happens once, here, never per interval.
func Hours(d time.Duration) float64 {
	return math.Round(d.Hours()*100) / 100
}

// CycleUsage reports how much of a cycle has been consumed.
type CycleUsage struct {
	Cycle          Cycle
	UsedHours      float64
	AvailableHours float64
}

// HoursSummary is the on-duty recap shown alongside a driver's current log.
type HoursSummary struct {
	DriverID      uuid.UUID
	AsOf          time.Time
	Today         float64
	LastFiveDays  float64
	LastSevenDays float64
	LastEightDays float64
	Cycle         CycleUsage
}
