// Package dayspan does calendar arithmetic for duty days: local day bounds in
// a driver's time zone, and the per-day decomposition of a span that crosses
// local midnight.
//
// A stored day ends at 23:59:59.999 local and the next one starts at
// 00:00:00.000 local, so every piece lies within exactly one calendar date.
package dayspan

import (
	"fmt"
	"time"

	"github.com/pkordes/eld-logbook/internal/domain"
)

// dayEndGap separates the last stored instant of a day from the next midnight.
const dayEndGap = time.Millisecond

// Segment is the part of a span that falls on one local calendar date.
type Segment struct {
	Date  time.Time // calendar date as midnight UTC, see Date
	Start time.Time
	End   time.Time
}

// Duration returns End - Start.
func (s Segment) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// Date returns the calendar date of t in loc, as midnight UTC.
// That is the form pgx scans a Postgres DATE into, so dates produced here
// compare equal to dates read back from the database.
func Date(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, time.UTC)
}

// StartOfDay returns local midnight at the start of t's calendar day.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
}

// NextDay returns local midnight at the start of the day after t's.
// On days where a DST change skips midnight, time.Date normalises to the first
// valid instant of that day.
func NextDay(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day()+1, 0, 0, 0, 0, loc)
}

// EndOfDay returns 23:59:59.999 local on t's calendar day.
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	return NextDay(t, loc).Add(-dayEndGap)
}

// SameDay reports whether a and b fall on the same calendar date in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	return Date(a, loc).Equal(Date(b, loc))
}

// Split decomposes the closed span [start, end] into one segment per local
// calendar date it touches, in time order.
//
// The first segment keeps start and is truncated to EndOfDay, or to start
// itself when start lies after EndOfDay; every following
// segment starts at local midnight. Days strictly between the first and the
// last get a full-day segment. An end exactly at midnight yields a
// zero-length final segment on that new date and no empty day in between.
//
// Returns domain.ErrInvalidRange if end is before start.
func Split(start, end time.Time, loc *time.Location) ([]Segment, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("dayspan.Split: %w: end %s is before start %s",
			domain.ErrInvalidRange, end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	if SameDay(start, end, loc) {
		return []Segment{{Date: Date(start, loc), Start: start, End: end}}, nil
	}

	// A start inside the last millisecond of its day is already past
	// EndOfDay; that piece is zero-length rather than inverted.
	firstEnd := EndOfDay(start, loc)
	if firstEnd.Before(start) {
		firstEnd = start
	}
	segments := []Segment{{Date: Date(start, loc), Start: start, End: firstEnd}}

	endDate := Date(end, loc)
	t := NextDay(start, loc)
	for Date(t, loc).Before(endDate) {
		segments = append(segments, Segment{Date: Date(t, loc), Start: t, End: EndOfDay(t, loc)})
		t = NextDay(t, loc)
	}

	return append(segments, Segment{Date: Date(t, loc), Start: t, End: end}), nil
}

// DaysBetween counts calendar dates from a to b inclusive. Both arguments are
// dates as returned by Date. Returns 0 when b is before a.
func DaysBetween(a, b time.Time) int {
	if b.Before(a) {
		return 0
	}
	return int(b.Sub(a).Hours()/24) + 1
}
