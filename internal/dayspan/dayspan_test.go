package dayspan_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/eld-logbook/internal/dayspan"
	"github.com/pkordes/eld-logbook/internal/domain"
)

func mustLoad(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}

func at(loc *time.Location, y int, m time.Month, d, h, min int) time.Time {
	return time.Date(y, m, d, h, min, 0, 0, loc)
}

func sumDurations(segs []dayspan.Segment) time.Duration {
	var total time.Duration
	for _, s := range segs {
		total += s.Duration()
	}
	return total
}

func TestSplit_SameDay(t *testing.T) {
	loc := time.UTC
	start := at(loc, 2025, 6, 2, 8, 0)
	end := at(loc, 2025, 6, 2, 17, 30)

	segs, err := dayspan.Split(start, end, loc)

	require.NoError(t, err)
	require.Len(t, segs, 1)
	assert.True(t, segs[0].Start.Equal(start))
	assert.True(t, segs[0].End.Equal(end))
	assert.Equal(t, "2025-06-02", segs[0].Date.Format(time.DateOnly))
}

func TestSplit_TwoFullBoundaries(t *testing.T) {
	loc := mustLoad(t, "America/Chicago")
	start := at(loc, 2025, 6, 2, 8, 0)
	end := at(loc, 2025, 6, 4, 10, 0)

	segs, err := dayspan.Split(start, end, loc)

	require.NoError(t, err)
	require.Len(t, segs, 3)

	assert.True(t, segs[0].Start.Equal(start))
	assert.True(t, segs[0].End.Equal(time.Date(2025, 6, 2, 23, 59, 59, int(999*time.Millisecond), loc)))
	assert.Equal(t, "2025-06-02", segs[0].Date.Format(time.DateOnly))

	assert.True(t, segs[1].Start.Equal(at(loc, 2025, 6, 3, 0, 0)))
	assert.True(t, segs[1].End.Equal(time.Date(2025, 6, 3, 23, 59, 59, int(999*time.Millisecond), loc)))
	assert.Equal(t, "2025-06-03", segs[1].Date.Format(time.DateOnly))

	assert.True(t, segs[2].Start.Equal(at(loc, 2025, 6, 4, 0, 0)))
	assert.True(t, segs[2].End.Equal(end))
	assert.Equal(t, "2025-06-04", segs[2].Date.Format(time.DateOnly))
}

func TestSplit_AcrossMidnight_FourHours(t *testing.T) {
	loc := time.UTC
	start := at(loc, 2025, 6, 1, 22, 0)
	end := at(loc, 2025, 6, 2, 2, 0)

	segs, err := dayspan.Split(start, end, loc)

	require.NoError(t, err)
	require.Len(t, segs, 2)
	assert.Equal(t, 2.0, domain.Hours(segs[0].Duration()))
	assert.Equal(t, 2*time.Hour, segs[1].Duration())
}

func TestSplit_EndExactlyAtMidnight(t *testing.T) {
	loc := time.UTC
	start := at(loc, 2025, 6, 1, 8, 0)
	end := at(loc, 2025, 6, 2, 0, 0)

	segs, err := dayspan.Split(start, end, loc)

	require.NoError(t, err)
	require.Len(t, segs, 2, "no empty intermediate day")
	assert.Equal(t, "2025-06-01", segs[0].Date.Format(time.DateOnly))
	assert.Equal(t, "2025-06-02", segs[1].Date.Format(time.DateOnly))
	assert.Zero(t, segs[1].Duration())
}

func TestSplit_StartInLastMillisecondOfDay(t *testing.T) {
	loc := mustLoad(t, "America/Chicago")
	// Postgres keeps microseconds, so a start can fall after 23:59:59.999.
	start := time.Date(2025, 6, 1, 23, 59, 59, 999_500_000, loc)
	end := at(loc, 2025, 6, 2, 1, 0)

	segs, err := dayspan.Split(start, end, loc)

	require.NoError(t, err)
	require.Len(t, segs, 2)
	assert.Equal(t, "2025-06-01", segs[0].Date.Format(time.DateOnly))
	assert.True(t, segs[0].End.Equal(start), "first piece is zero-length, got end %s", segs[0].End)
	for i, seg := range segs {
		assert.False(t, seg.End.Before(seg.Start), "segment %d inverted: %s", i, seg.Duration())
	}
	assert.True(t, segs[1].Start.Equal(at(loc, 2025, 6, 2, 0, 0)))
	assert.Equal(t, time.Hour, segs[1].Duration())
}

func TestSplit_StartExactlyAtMidnight(t *testing.T) {
	loc := time.UTC
	start := at(loc, 2025, 6, 1, 0, 0)
	end := at(loc, 2025, 6, 1, 23, 0)

	segs, err := dayspan.Split(start, end, loc)

	require.NoError(t, err)
	require.Len(t, segs, 1)
}

func TestSplit_EndBeforeStart(t *testing.T) {
	start := at(time.UTC, 2025, 6, 2, 8, 0)

	_, err := dayspan.Split(start, start.Add(-time.Second), time.UTC)

	assert.ErrorIs(t, err, domain.ErrInvalidRange)
}

func TestSplit_ZeroLength(t *testing.T) {
	start := at(time.UTC, 2025, 6, 2, 8, 0)

	segs, err := dayspan.Split(start, start, time.UTC)

	require.NoError(t, err)
	require.Len(t, segs, 1)
	assert.Zero(t, segs[0].Duration())
}

func TestSplit_UsesLocalCalendar(t *testing.T) {
	// 03:00-05:00 UTC is 22:00-00:00 in Chicago during CDT: one UTC day,
	// but the span ends on the next Chicago date.
	chicago := mustLoad(t, "America/Chicago")
	start := time.Date(2025, 6, 2, 3, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 2, 5, 30, 0, 0, time.UTC)

	utcSegs, err := dayspan.Split(start, end, time.UTC)
	require.NoError(t, err)
	assert.Len(t, utcSegs, 1)

	localSegs, err := dayspan.Split(start, end, chicago)
	require.NoError(t, err)
	require.Len(t, localSegs, 2)
	assert.Equal(t, "2025-06-01", localSegs[0].Date.Format(time.DateOnly))
	assert.Equal(t, "2025-06-02", localSegs[1].Date.Format(time.DateOnly))
}

func TestSplit_SpringForwardDay(t *testing.T) {
	ny := mustLoad(t, "America/New_York")
	start := at(ny, 2025, 3, 8, 20, 0)
	end := at(ny, 2025, 3, 10, 4, 0)

	segs, err := dayspan.Split(start, end, ny)

	require.NoError(t, err)
	require.Len(t, segs, 3)
	assert.Equal(t, 23*time.Hour-time.Millisecond, segs[1].Duration(), "DST day is 23 hours long")
	assert.Equal(t, end.Sub(start), sumDurations(segs)+2*time.Millisecond)
}

func TestSplit_PreservesDurationToTheSecond(t *testing.T) {
	loc := mustLoad(t, "America/Denver")
	rng := rand.New(rand.NewSource(42))
	base := at(loc, 2025, 1, 1, 0, 0)

	for i := 0; i < 500; i++ {
		start := base.Add(time.Duration(rng.Int63n(int64(300 * 24 * time.Hour))))
		end := start.Add(time.Duration(rng.Int63n(int64(20 * 24 * time.Hour))))

		segs, err := dayspan.Split(start, end, loc)
		require.NoError(t, err)

		diff := end.Sub(start) - sumDurations(segs)
		assert.GreaterOrEqual(t, diff, time.Duration(0))
		assert.Less(t, diff, time.Second, "span %s..%s", start, end)

		for j, s := range segs {
			assert.True(t, dayspan.SameDay(s.Start, s.End, loc), "segment %d crosses midnight", j)
			if j > 0 {
				assert.True(t, s.Date.After(segs[j-1].Date))
			}
		}
	}
}

func TestDayBounds(t *testing.T) {
	loc := mustLoad(t, "America/Chicago")
	ts := at(loc, 2025, 6, 2, 15, 4)

	assert.True(t, dayspan.StartOfDay(ts, loc).Equal(at(loc, 2025, 6, 2, 0, 0)))
	assert.True(t, dayspan.NextDay(ts, loc).Equal(at(loc, 2025, 6, 3, 0, 0)))
	assert.True(t, dayspan.EndOfDay(ts, loc).Equal(at(loc, 2025, 6, 3, 0, 0).Add(-time.Millisecond)))
	assert.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), dayspan.Date(ts, loc))
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	b := time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 8, dayspan.DaysBetween(a, b))
	assert.Equal(t, 1, dayspan.DaysBetween(a, a))
	assert.Equal(t, 0, dayspan.DaysBetween(b, a))
}
