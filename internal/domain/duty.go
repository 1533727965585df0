package domain

import (
	"time"

	"github.com/google/uuid"
)

// DutyStatus is one of the four record-of-duty-status lines.
type DutyStatus string

const (
	StatusOffDuty          DutyStatus = "off-duty"
	StatusSleeperBerth     DutyStatus = "sleeper-berth"
	StatusDriving          DutyStatus = "driving"
	StatusOnDutyNotDriving DutyStatus = "on-duty-not-driving"
)

// DutyStatuses lists every status in grid order.
var DutyStatuses = []DutyStatus{
	StatusOffDuty,
	StatusSleeperBerth,
	StatusDriving,
	StatusOnDutyNotDriving,
}

// OnDutyStatuses are the statuses that count toward on-duty hours.
var OnDutyStatuses = []DutyStatus{StatusDriving, StatusOnDutyNotDriving}

// Valid reports whether s is a known duty status.
func (s DutyStatus) Valid() bool {
	switch s {
	case StatusOffDuty, StatusSleeperBerth, StatusDriving, StatusOnDutyNotDriving:
		return true
	}
	return false
}

// OnDuty reports whether time in this status counts as on-duty time.
func (s DutyStatus) OnDuty() bool {
	return s == StatusDriving || s == StatusOnDutyNotDriving
}

// GridRow is the 1-based line of the paper log grid this status is drawn on:
// 1 off duty, 2 sleeper berth, 3 driving, 4 on duty (not driving).
// Returns 0 for an unknown status.
func (s DutyStatus) GridRow() int {
	for i, st := range DutyStatuses {
		if st == s {
			return i + 1
		}
	}
	return 0
}

// Label is the human-readable name printed on a log sheet.
func (s DutyStatus) Label() string {
	switch s {
	case StatusOffDuty:
		return "Off Duty"
	case StatusSleeperBerth:
		return "Sleeper Berth"
	case StatusDriving:
		return "Driving"
	case StatusOnDutyNotDriving:
		return "On Duty (not driving)"
	}
	return string(s)
}

// DutyInterval is one contiguous span of a single duty status inside one
// logbook day. EndAt is nil while the interval is open; an open interval is
// always the driver's current one.
type DutyInterval struct {
	ID        uuid.UUID
	DayID     uuid.UUID
	DriverID  uuid.UUID
	Status    DutyStatus
	StartAt   time.Time
	EndAt     *time.Time
	Remark    string
	IsCurrent bool
	CreatedAt time.Time
}

// IsOpen reports whether the interval has no end time yet.
func (i DutyInterval) IsOpen() bool {
	return i.EndAt == nil
}

// Duration returns EndAt - StartAt for a closed interval and 0 for an open one.
func (i DutyInterval) Duration() time.Duration {
	if i.EndAt == nil {
		return 0
	}
	return i.EndAt.Sub(i.StartAt)
}
