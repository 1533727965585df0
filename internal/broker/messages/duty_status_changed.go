package messages

import (
	"time"

	"github.com/goccy/go-json"

	"github.com/pkordes/eld-logbook/internal/domain"
)

// DutyStatusChanged is published once per committed transition.
type DutyStatusChanged struct {
	DriverID   string    `json:"driver_id"`
	OccurredAt time.Time `json:"occurred_at"`

	Closed []DutySegment `json:"closed,omitempty"`
	Opened *DutySegment  `json:"opened,omitempty"`
}

// DutySegment is one interval as it stood at commit time.
type DutySegment struct {
	IntervalID string     `json:"interval_id"`
	DayID      string     `json:"day_id"`
	Status     string     `json:"status"`
	StartAt    time.Time  `json:"start_at"`
	EndAt      *time.Time `json:"end_at,omitempty"`
	Remark     string     `json:"remark,omitempty"`
}

func segment(iv domain.DutyInterval) DutySegment {
	return DutySegment{
		IntervalID: iv.ID.String(),
		DayID:      iv.DayID.String(),
		Status:     string(iv.Status),
		StartAt:    iv.StartAt,
		EndAt:      iv.EndAt,
		Remark:     iv.Remark,
	}
}

func NewDutyStatusChanged(c domain.DutyChange) DutyStatusChanged {
	msg := DutyStatusChanged{
		DriverID:   c.DriverID.String(),
		OccurredAt: c.OccurredAt,
	}
	for _, iv := range c.Closed {
		msg.Closed = append(msg.Closed, segment(iv))
	}
	if c.Opened != nil {
		s := segment(*c.Opened)
		msg.Opened = &s
	}
	return msg
}

func (m DutyStatusChanged) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

func UnmarshalDutyStatusChanged(b []byte) (DutyStatusChanged, error) {
	var m DutyStatusChanged
	err := json.Unmarshal(b, &m)
	return m, err
}
