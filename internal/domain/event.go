package domain

import (
	"time"

	"github.com/google/uuid"
)

// DutyChange is the outcome of one committed duty-status transition.
// Closed holds every segment written while closing the previous interval,
// one per local day it touched, and is empty when nothing was open.
// Opened is nil when the transition ended the duty period.
type DutyChange struct {
	DriverID   uuid.UUID
	Closed     []DutyInterval
	Opened     *DutyInterval
	OccurredAt time.Time
}
