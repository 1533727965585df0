package domain

import (
	"time"

	"github.com/google/uuid"
)

// LogbookDay is one calendar day of duty record for one driver, in the
// driver's local time zone. There is at most one per (DriverID, Date).
//
// IsCurrent marks the driver's newest day that has not been closed.
// IsDone is set exactly once, when the day is closed with its mileage.
type LogbookDay struct {
	ID                     uuid.UUID
	DriverID               uuid.UUID
	Date                   time.Time // midnight UTC carrying the local calendar date
	TotalMilesDrivingToday float64
	MileageCoveredToday    float64
	IsCurrent              bool
	IsDone                 bool
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// DateString formats the day's calendar date as "2006-01-02".
func (d LogbookDay) DateString() string {
	return d.Date.Format(time.DateOnly)
}

// Mileage carries the odometer figures recorded when a day is closed.
// MileageCoveredToday includes co-driver miles; when nil it defaults to
// TotalMilesDrivingToday.
type Mileage struct {
	TotalMilesDrivingToday float64
	MileageCoveredToday    *float64
}

// DayRange bounds a listing of logbook days by calendar date, inclusive.
// Zero values leave that side open.
type DayRange struct {
	From time.Time
	To   time.Time
}
