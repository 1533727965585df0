package domain

import (
	"time"

	"github.com/google/uuid"
)

// StopType classifies a stop event.
type StopType string

const (
	StopFuel       StopType = "fuel"
	StopRest       StopType = "rest"
	StopPickup     StopType = "pickup"
	StopDropoff    StopType = "dropoff"
	StopInspection StopType = "inspection"
	StopOther      StopType = "other"
)

// Valid reports whether t is a known stop type.
func (t StopType) Valid() bool {
	switch t {
	case StopFuel, StopRest, StopPickup, StopDropoff, StopInspection, StopOther:
		return true
	}
	return false
}

// StopEvent is a point-in-time or bounded event recorded against a logbook
// day. It is read-only once created. EndAt is nil for point events.
type StopEvent struct {
	ID           uuid.UUID
	DayID        uuid.UUID
	DriverID     uuid.UUID
	Type         StopType
	LocationName string
	Latitude     *float64
	Longitude    *float64
	StartAt      time.Time
	EndAt        *time.Time
	Notes        string
	CreatedAt    time.Time
}
