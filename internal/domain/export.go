package domain

import "time"

// ExportRow is a single row in a record-of-duty-status export.
// It is a flat, denormalized view: one row per duty interval, with day fields
// repeated for every interval on that day. Days with no intervals yield one
// row with zero values for all interval fields.
type ExportRow struct {
	// Day fields, repeated for every interval on the day.
	DayID                  string
	DayDate                string // "2006-01-02"
	TotalMilesDrivingToday float64
	MileageCoveredToday    float64

	// Interval fields, zero values when the day has no intervals.
	Status  DutyStatus
	StartAt *time.Time
	EndAt   *time.Time
	Hours   float64
	Remark  string
}
