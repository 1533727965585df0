package service_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/eld-logbook/internal/domain"
	"github.com/pkordes/eld-logbook/internal/repo"
	"github.com/pkordes/eld-logbook/internal/service"
)

// memStore is an in-memory service.Store. It enforces the same uniqueness
// rules as the Postgres schema and rolls back every change made inside a
// failed InTx, so service tests can assert atomicity without a database.
type memStore struct {
	txMu sync.Mutex // serialises transactions like the driver row lock does

	mu        sync.Mutex
	seq       int
	drivers   map[uuid.UUID]domain.Driver
	days      map[uuid.UUID]domain.LogbookDay
	intervals map[uuid.UUID]domain.DutyInterval
	stops     map[uuid.UUID]domain.StopEvent

	// failOn makes the named repo method return the error once.
	failOn map[string]error
}

var _ service.Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{
		drivers:   map[uuid.UUID]domain.Driver{},
		days:      map[uuid.UUID]domain.LogbookDay{},
		intervals: map[uuid.UUID]domain.DutyInterval{},
		stops:     map[uuid.UUID]domain.StopEvent{},
		failOn:    map[string]error{},
	}
}

func (s *memStore) Repos() repo.Repos {
	return repo.Repos{
		Drivers:   memDrivers{s},
		Days:      memDays{s},
		Intervals: memIntervals{s},
		Stops:     memStops{s},
	}
}

type memSnapshot struct {
	drivers   map[uuid.UUID]domain.Driver
	days      map[uuid.UUID]domain.LogbookDay
	intervals map[uuid.UUID]domain.DutyInterval
	stops     map[uuid.UUID]domain.StopEvent
}

func cloneMap[T any](m map[uuid.UUID]T) map[uuid.UUID]T {
	out := make(map[uuid.UUID]T, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *memStore) InTx(_ context.Context, fn func(repo.Repos) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snap := memSnapshot{cloneMap(s.drivers), cloneMap(s.days), cloneMap(s.intervals), cloneMap(s.stops)}
	s.mu.Unlock()

	if err := fn(s.Repos()); err != nil {
		s.mu.Lock()
		s.drivers, s.days, s.intervals, s.stops = snap.drivers, snap.days, snap.intervals, snap.stops
		s.mu.Unlock()
		return err
	}
	return nil
}

// fail returns the injected error for op, if any. Callers hold s.mu.
func (s *memStore) fail(op string) error {
	if err, ok := s.failOn[op]; ok {
		delete(s.failOn, op)
		return err
	}
	return nil
}

func (s *memStore) next() time.Time {
	s.seq++
	return time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(s.seq) * time.Microsecond)
}

// addDriver seeds a driver directly.
func (s *memStore) addDriver(name, tz string) domain.Driver {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.next()
	d := domain.Driver{ID: uuid.New(), Name: name, TimeZone: tz, CreatedAt: now, UpdatedAt: now}
	s.drivers[d.ID] = d
	return d
}

// openIntervals returns every interval flagged current for driverID.
func (s *memStore) openIntervals(driverID uuid.UUID) []domain.DutyInterval {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.DutyInterval
	for _, iv := range s.intervals {
		if iv.DriverID == driverID && iv.IsCurrent {
			out = append(out, iv)
		}
	}
	return out
}

// driverIntervals returns the driver's intervals ordered by start.
func (s *memStore) driverIntervals(driverID uuid.UUID) []domain.DutyInterval {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.DutyInterval
	for _, iv := range s.intervals {
		if iv.DriverID == driverID {
			out = append(out, iv)
		}
	}
	sortIntervals(out)
	return out
}

// driverDays returns the driver's days ordered by date.
func (s *memStore) driverDays(driverID uuid.UUID) []domain.LogbookDay {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.LogbookDay
	for _, d := range s.days {
		if d.DriverID == driverID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func sortIntervals(ivs []domain.DutyInterval) {
	sort.Slice(ivs, func(i, j int) bool {
		if !ivs[i].StartAt.Equal(ivs[j].StartAt) {
			return ivs[i].StartAt.Before(ivs[j].StartAt)
		}
		return ivs[i].CreatedAt.Before(ivs[j].CreatedAt)
	})
}

// ---- drivers ----

type memDrivers struct{ s *memStore }

func (r memDrivers) Create(_ context.Context, d domain.Driver) (domain.Driver, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("Drivers.Create"); err != nil {
		return domain.Driver{}, err
	}
	now := r.s.next()
	d.ID, d.CreatedAt, d.UpdatedAt = uuid.New(), now, now
	r.s.drivers[d.ID] = d
	return d, nil
}

func (r memDrivers) GetByID(_ context.Context, id uuid.UUID) (domain.Driver, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.drivers[id]
	if !ok {
		return domain.Driver{}, domain.ErrNotFound
	}
	return d, nil
}

func (r memDrivers) GetForUpdate(ctx context.Context, id uuid.UUID) (domain.Driver, error) {
	return r.GetByID(ctx, id)
}

func (r memDrivers) List(context.Context) ([]domain.Driver, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.Driver{}
	for _, d := range r.s.drivers {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r memDrivers) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, d := range r.s.days {
		if d.DriverID == id {
			return fmt.Errorf("%w: driver has logbook days", domain.ErrConflict)
		}
	}
	if _, ok := r.s.drivers[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.drivers, id)
	return nil
}

// ---- days ----

type memDays struct{ s *memStore }

func (r memDays) demoteOlder(driverID uuid.UUID, date time.Time) {
	for id, d := range r.s.days {
		if d.DriverID == driverID && d.IsCurrent && d.Date.Before(date) {
			d.IsCurrent = false
			r.s.days[id] = d
		}
	}
}

func (r memDays) find(driverID uuid.UUID, date time.Time) (domain.LogbookDay, bool) {
	for _, d := range r.s.days {
		if d.DriverID == driverID && d.Date.Equal(date) {
			return d, true
		}
	}
	return domain.LogbookDay{}, false
}

func (r memDays) insert(driverID uuid.UUID, date time.Time) (domain.LogbookDay, error) {
	if _, ok := r.s.drivers[driverID]; !ok {
		return domain.LogbookDay{}, fmt.Errorf("%w: driver missing", domain.ErrConflict)
	}
	newer := false
	for _, d := range r.s.days {
		if d.DriverID == driverID && d.Date.After(date) {
			newer = true
		}
	}
	now := r.s.next()
	day := domain.LogbookDay{ID: uuid.New(), DriverID: driverID, Date: date, IsCurrent: !newer, CreatedAt: now, UpdatedAt: now}
	r.s.days[day.ID] = day
	return day, nil
}

func (r memDays) GetOrCreate(_ context.Context, driverID uuid.UUID, date time.Time) (domain.LogbookDay, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("Days.GetOrCreate"); err != nil {
		return domain.LogbookDay{}, err
	}
	r.demoteOlder(driverID, date)
	if d, ok := r.find(driverID, date); ok {
		return d, nil
	}
	return r.insert(driverID, date)
}

func (r memDays) Create(_ context.Context, driverID uuid.UUID, date time.Time) (domain.LogbookDay, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.demoteOlder(driverID, date)
	if _, ok := r.find(driverID, date); ok {
		return domain.LogbookDay{}, fmt.Errorf("%w: a logbook day already exists for this driver and date", domain.ErrConflict)
	}
	return r.insert(driverID, date)
}

func (r memDays) GetByID(_ context.Context, driverID, dayID uuid.UUID) (domain.LogbookDay, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.days[dayID]
	if !ok || d.DriverID != driverID {
		return domain.LogbookDay{}, domain.ErrNotFound
	}
	return d, nil
}

func (r memDays) GetByDate(_ context.Context, driverID uuid.UUID, date time.Time) (domain.LogbookDay, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if d, ok := r.find(driverID, date); ok {
		return d, nil
	}
	return domain.LogbookDay{}, domain.ErrNotFound
}

func (r memDays) Current(_ context.Context, driverID uuid.UUID) (domain.LogbookDay, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, d := range r.s.days {
		if d.DriverID == driverID && d.IsCurrent {
			return d, nil
		}
	}
	return domain.LogbookDay{}, domain.ErrNotFound
}

func (r memDays) inRange(d domain.LogbookDay, driverID uuid.UUID, dr domain.DayRange) bool {
	if d.DriverID != driverID {
		return false
	}
	if !dr.From.IsZero() && d.Date.Before(dr.From) {
		return false
	}
	if !dr.To.IsZero() && d.Date.After(dr.To) {
		return false
	}
	return true
}

func (r memDays) List(_ context.Context, driverID uuid.UUID, dr domain.DayRange) ([]domain.LogbookDay, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.LogbookDay{}
	for _, d := range r.s.days {
		if r.inRange(d, driverID, dr) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r memDays) ListPaged(ctx context.Context, driverID uuid.UUID, dr domain.DayRange, p domain.PaginationParams) ([]domain.LogbookDay, int64, error) {
	all, _ := r.List(ctx, driverID, dr)
	sort.Slice(all, func(i, j int) bool { return all[i].Date.After(all[j].Date) })
	total := int64(len(all))
	start := p.Offset()
	if start > len(all) {
		start = len(all)
	}
	end := start + p.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (r memDays) Close(_ context.Context, driverID, dayID uuid.UUID, m domain.Mileage) (domain.LogbookDay, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.days[dayID]
	if !ok || d.DriverID != driverID {
		return domain.LogbookDay{}, domain.ErrNotFound
	}
	if d.IsDone {
		return domain.LogbookDay{}, domain.ErrAlreadyClosed
	}
	d.TotalMilesDrivingToday = m.TotalMilesDrivingToday
	d.MileageCoveredToday = m.TotalMilesDrivingToday
	if m.MileageCoveredToday != nil {
		d.MileageCoveredToday = *m.MileageCoveredToday
	}
	d.IsCurrent, d.IsDone = false, true
	r.s.days[dayID] = d
	return d, nil
}

func (r memDays) Delete(_ context.Context, driverID, dayID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, iv := range r.s.intervals {
		if iv.DayID == dayID {
			return fmt.Errorf("%w: day has duty intervals", domain.ErrConflict)
		}
	}
	d, ok := r.s.days[dayID]
	if !ok || d.DriverID != driverID {
		return domain.ErrNotFound
	}
	delete(r.s.days, dayID)
	return nil
}

// ---- intervals ----

type memIntervals struct{ s *memStore }

func (r memIntervals) insert(iv domain.DutyInterval) (domain.DutyInterval, error) {
	if _, ok := r.s.days[iv.DayID]; !ok {
		return domain.DutyInterval{}, fmt.Errorf("%w: day missing", domain.ErrConflict)
	}
	iv.ID = uuid.New()
	iv.CreatedAt = r.s.next()
	r.s.intervals[iv.ID] = iv
	return iv, nil
}

func (r memIntervals) Open(_ context.Context, iv domain.DutyInterval) (domain.DutyInterval, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("Intervals.Open"); err != nil {
		return domain.DutyInterval{}, err
	}
	for _, other := range r.s.intervals {
		if other.DriverID == iv.DriverID && other.IsCurrent {
			return domain.DutyInterval{}, fmt.Errorf("%w: driver already has an open duty interval", domain.ErrConflict)
		}
	}
	iv.EndAt = nil
	iv.IsCurrent = true
	return r.insert(iv)
}

func (r memIntervals) InsertClosed(_ context.Context, iv domain.DutyInterval) (domain.DutyInterval, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("Intervals.InsertClosed"); err != nil {
		return domain.DutyInterval{}, err
	}
	if iv.EndAt == nil {
		return domain.DutyInterval{}, domain.ErrValidation
	}
	if iv.EndAt.Before(iv.StartAt) {
		return domain.DutyInterval{}, domain.ErrInvalidRange
	}
	iv.IsCurrent = false
	return r.insert(iv)
}

func (r memIntervals) Close(_ context.Context, id uuid.UUID, end time.Time) (domain.DutyInterval, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	iv, ok := r.s.intervals[id]
	if !ok {
		return domain.DutyInterval{}, domain.ErrNotFound
	}
	if iv.EndAt != nil {
		return domain.DutyInterval{}, domain.ErrAlreadyClosed
	}
	if end.Before(iv.StartAt) {
		return domain.DutyInterval{}, domain.ErrInvalidRange
	}
	iv.EndAt = &end
	iv.IsCurrent = false
	r.s.intervals[id] = iv
	return iv, nil
}

func (r memIntervals) GetByID(_ context.Context, id uuid.UUID) (domain.DutyInterval, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	iv, ok := r.s.intervals[id]
	if !ok {
		return domain.DutyInterval{}, domain.ErrNotFound
	}
	return iv, nil
}

func (r memIntervals) OpenForDriver(_ context.Context, driverID uuid.UUID) (domain.DutyInterval, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, iv := range r.s.intervals {
		if iv.DriverID == driverID && iv.IsCurrent {
			return iv, nil
		}
	}
	return domain.DutyInterval{}, domain.ErrNotFound
}

func (r memIntervals) ListByDay(_ context.Context, dayID uuid.UUID) ([]domain.DutyInterval, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.DutyInterval{}
	for _, iv := range r.s.intervals {
		if iv.DayID == dayID {
			out = append(out, iv)
		}
	}
	sortIntervals(out)
	return out, nil
}

func (r memIntervals) LatestEnd(_ context.Context, driverID uuid.UUID) (time.Time, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var latest time.Time
	ok := false
	for _, iv := range r.s.intervals {
		if iv.DriverID == driverID && iv.EndAt != nil && (!ok || iv.EndAt.After(latest)) {
			latest, ok = *iv.EndAt, true
		}
	}
	return latest, ok, nil
}

func (r memIntervals) sum(match func(domain.DutyInterval) bool) time.Duration {
	var total time.Duration
	for _, iv := range r.s.intervals {
		if iv.EndAt != nil && iv.Status.OnDuty() && match(iv) {
			total += iv.EndAt.Sub(iv.StartAt)
		}
	}
	return total
}

func (r memIntervals) SumOnDutyByDay(_ context.Context, dayID uuid.UUID) (time.Duration, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.sum(func(iv domain.DutyInterval) bool { return iv.DayID == dayID }), nil
}

func (r memIntervals) SumOnDutySince(_ context.Context, driverID uuid.UUID, since time.Time) (time.Duration, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.sum(func(iv domain.DutyInterval) bool {
		return iv.DriverID == driverID && !iv.EndAt.Before(since)
	}), nil
}

// ---- stops ----

type memStops struct{ s *memStore }

func (r memStops) Create(_ context.Context, st domain.StopEvent) (domain.StopEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st.ID = uuid.New()
	st.CreatedAt = r.s.next()
	r.s.stops[st.ID] = st
	return st, nil
}

func (r memStops) GetByID(_ context.Context, dayID, stopID uuid.UUID) (domain.StopEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st, ok := r.s.stops[stopID]
	if !ok || st.DayID != dayID {
		return domain.StopEvent{}, domain.ErrNotFound
	}
	return st, nil
}

func (r memStops) ListByDay(_ context.Context, dayID uuid.UUID) ([]domain.StopEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.StopEvent{}
	for _, st := range r.s.stops {
		if st.DayID == dayID {
			out = append(out, st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartAt.Before(out[j].StartAt) })
	return out, nil
}

var (
	_ repo.DriverRepo   = memDrivers{}
	_ repo.DayRepo      = memDays{}
	_ repo.IntervalRepo = memIntervals{}
	_ repo.StopRepo     = memStops{}
)
