package service

import (
	"context"
	"fmt"
	"time"

	"github.com/pkordes/eld-logbook/internal/dayspan"
	"github.com/pkordes/eld-logbook/internal/domain"
	"github.com/pkordes/eld-logbook/internal/repo"
)

// CloseInterval closes the open interval iv at end. When end falls on a
// later local day than iv started, the interval is cut at each local
// midnight: iv itself is closed at 23:59:59.999 of its start day and one
// closed interval with the same status and remark is inserted for every
// further day, each in that day's logbook (created when missing).
//
// The returned segments are in time order; the first is iv. Run it inside
// a transaction so that either every segment is written or none is.
func CloseInterval(ctx context.Context, r repo.Repos, iv domain.DutyInterval, end time.Time, loc *time.Location) ([]domain.DutyInterval, error) {
	if !iv.IsOpen() {
		return nil, fmt.Errorf("service.CloseInterval: %w", domain.ErrAlreadyClosed)
	}
	segments, err := dayspan.Split(iv.StartAt, end, loc)
	if err != nil {
		return nil, fmt.Errorf("service.CloseInterval: %w", err)
	}

	first, err := r.Intervals.Close(ctx, iv.ID, segments[0].End)
	if err != nil {
		return nil, fmt.Errorf("service.CloseInterval: close original: %w", err)
	}
	closed := make([]domain.DutyInterval, 0, len(segments))
	closed = append(closed, first)

	for _, seg := range segments[1:] {
		day, err := r.Days.GetOrCreate(ctx, iv.DriverID, seg.Date)
		if err != nil {
			return nil, fmt.Errorf("service.CloseInterval: day %s: %w", seg.Date.Format(time.DateOnly), err)
		}
		segEnd := seg.End
		piece, err := r.Intervals.InsertClosed(ctx, domain.DutyInterval{
			DayID:    day.ID,
			DriverID: iv.DriverID,
			Status:   iv.Status,
			StartAt:  seg.Start,
			EndAt:    &segEnd,
			Remark:   iv.Remark,
		})
		if err != nil {
			return nil, fmt.Errorf("service.CloseInterval: segment %s: %w", seg.Date.Format(time.DateOnly), err)
		}
		closed = append(closed, piece)
	}
	return closed, nil
}
