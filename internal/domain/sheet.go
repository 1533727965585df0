package domain

// SheetEntry is one duty interval as drawn on the daily log grid.
// StartHour and EndHour are local clock hours (0-23); EndHour is nil while
// the interval is open. NextRow is the grid row of the following entry, or
// nil for the last entry of the day.
type SheetEntry struct {
	Interval  DutyInterval
	Row       int
	StartHour int
	EndHour   *int
	NextRow   *int
}

// StatusTotal is the recap total for one duty status on one day.
type StatusTotal struct {
	Status DutyStatus
	Row    int
	Hours  float64
}

// DaySheet is the full record of duty status for one logbook day.
type DaySheet struct {
	Day              LogbookDay
	Driver           Driver
	Entries          []SheetEntry
	Totals           []StatusTotal
	Stops            []StopEvent
	OnDutyHoursToday float64
	Summary          HoursSummary
}
