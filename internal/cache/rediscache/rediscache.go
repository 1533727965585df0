// Package rediscache caches per-driver hours summaries in Redis.
package rediscache

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/pkordes/eld-logbook/internal/domain"
)

const keyPrefix = "hos:summary:"

// DefaultTTL bounds how long a summary may be served after it was computed.
const DefaultTTL = time.Minute

type RedisCache struct {
	c   *redis.Client
	ttl time.Duration
}

// New connects lazily to the Redis server at addr. A ttl <= 0 uses DefaultTTL.
func New(addr string, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{
		c: redis.NewClient(&redis.Options{
			Addr: addr,
		}),
		ttl: ttl,
	}
}

func key(driverID uuid.UUID) string {
	return keyPrefix + driverID.String()
}

// summaryRecord is the stored form of a domain.HoursSummary.
type summaryRecord struct {
	DriverID      uuid.UUID `json:"driver_id"`
	AsOf          time.Time `json:"as_of"`
	Today         float64   `json:"today"`
	LastFiveDays  float64   `json:"last_five_days"`
	LastSevenDays float64   `json:"last_seven_days"`
	LastEightDays float64   `json:"last_eight_days"`
	CycleLimit    int       `json:"cycle_limit_hours"`
	CycleWindow   int       `json:"cycle_window_days"`
	CycleUsed     float64   `json:"cycle_used_hours"`
	CycleLeft     float64   `json:"cycle_available_hours"`
}

func toRecord(s domain.HoursSummary) summaryRecord {
	return summaryRecord{
		DriverID:      s.DriverID,
		AsOf:          s.AsOf,
		Today:         s.Today,
		LastFiveDays:  s.LastFiveDays,
		LastSevenDays: s.LastSevenDays,
		LastEightDays: s.LastEightDays,
		CycleLimit:    s.Cycle.Cycle.LimitHours,
		CycleWindow:   s.Cycle.Cycle.WindowDays,
		CycleUsed:     s.Cycle.UsedHours,
		CycleLeft:     s.Cycle.AvailableHours,
	}
}

func (r summaryRecord) summary() domain.HoursSummary {
	return domain.HoursSummary{
		DriverID:      r.DriverID,
		AsOf:          r.AsOf,
		Today:         r.Today,
		LastFiveDays:  r.LastFiveDays,
		LastSevenDays: r.LastSevenDays,
		LastEightDays: r.LastEightDays,
		Cycle: domain.CycleUsage{
			Cycle:          domain.Cycle{LimitHours: r.CycleLimit, WindowDays: r.CycleWindow},
			UsedHours:      r.CycleUsed,
			AvailableHours: r.CycleLeft,
		},
	}
}

// Get returns the cached summary for driverID; ok is false on a miss.
func (r *RedisCache) Get(ctx context.Context, driverID uuid.UUID) (domain.HoursSummary, bool, error) {
	val, err := r.c.Get(ctx, key(driverID)).Bytes()
	if err == redis.Nil {
		return domain.HoursSummary{}, false, nil
	}
	if err != nil {
		return domain.HoursSummary{}, false, errors.Wrap(err, "redis get")
	}
	var rec summaryRecord
	if err := json.Unmarshal(val, &rec); err != nil {
		return domain.HoursSummary{}, false, errors.Wrap(err, "decode summary")
	}
	return rec.summary(), true, nil
}

func (r *RedisCache) Set(ctx context.Context, driverID uuid.UUID, summary domain.HoursSummary) error {
	b, err := json.Marshal(toRecord(summary))
	if err != nil {
		return errors.Wrap(err, "encode summary")
	}
	if err := r.c.Set(ctx, key(driverID), b, r.ttl).Err(); err != nil {
		return errors.Wrap(err, "redis set")
	}
	return nil
}

// Invalidate drops the cached summary so the next read recomputes it.
func (r *RedisCache) Invalidate(ctx context.Context, driverID uuid.UUID) error {
	if err := r.c.Del(ctx, key(driverID)).Err(); err != nil {
		return errors.Wrap(err, "redis del")
	}
	return nil
}

// Ping checks that the server is reachable.
func (r *RedisCache) Ping(ctx context.Context) error {
	return errors.Wrap(r.c.Ping(ctx).Err(), "redis ping")
}

func (r *RedisCache) Close() error {
	return r.c.Close()
}
