// Package domain contains the core data types for the ELD logbook.
// This package has no dependencies on the storage or transport layers and is
// imported by every other internal package (repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Driver is the owner of a duty-status history.
// TimeZone is an IANA zone name; duty days start and end at local midnight
// in this zone.
type Driver struct {
	ID        uuid.UUID
	Name      string
	TimeZone  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Location resolves the driver's time zone.
// An empty zone resolves to UTC.
func (d Driver) Location() (*time.Location, error) {
	return time.LoadLocation(d.TimeZone)
}
