package handler

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/eld-logbook/internal/domain"
	"github.com/pkordes/eld-logbook/internal/service"
)

// --- requests ---------------------------------------------------------------

type createDriverRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	TimeZone string `json:"time_zone" validate:"omitempty,timezone"`
}

type statusChangeRequest struct {
	Status string     `json:"status" validate:"required,duty_status"`
	Remark string     `json:"remark" validate:"max=500"`
	At     *time.Time `json:"at"`
}

type endDutyRequest struct {
	At *time.Time `json:"at"`
}

type startDayRequest struct {
	Date *openapi_types.Date `json:"date"`
}

type closeDayRequest struct {
	TotalMilesDrivingToday float64  `json:"total_miles_driving_today" validate:"gte=0"`
	MileageCoveredToday    *float64 `json:"mileage_covered_today" validate:"omitempty,gte=0"`
}

type createStopRequest struct {
	Type         string     `json:"type" validate:"required,stop_type"`
	LocationName string     `json:"location_name" validate:"max=200"`
	Latitude     *float64   `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude    *float64   `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	StartAt      time.Time  `json:"start_at" validate:"required"`
	EndAt        *time.Time `json:"end_at"`
	Notes        string     `json:"notes" validate:"max=1000"`
}

// --- responses --------------------------------------------------------------

// Pagination describes one page of a listing.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

type driverResponse struct {
	ID        openapi_types.UUID `json:"id"`
	Name      string             `json:"name"`
	TimeZone  string             `json:"time_zone"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

func toDriverResponse(d domain.Driver) driverResponse {
	return driverResponse{ID: d.ID, Name: d.Name, TimeZone: d.TimeZone, CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt}
}

type dayResponse struct {
	ID                     openapi_types.UUID `json:"id"`
	DriverID               openapi_types.UUID `json:"driver_id"`
	Date                   openapi_types.Date `json:"date"`
	TotalMilesDrivingToday float64            `json:"total_miles_driving_today"`
	MileageCoveredToday    float64            `json:"mileage_covered_today"`
	IsCurrent              bool               `json:"is_current"`
	IsDone                 bool               `json:"is_done"`
	CreatedAt              time.Time          `json:"created_at"`
	UpdatedAt              time.Time          `json:"updated_at"`
}

func toDayResponse(d domain.LogbookDay) dayResponse {
	return dayResponse{
		ID:                     d.ID,
		DriverID:               d.DriverID,
		Date:                   openapi_types.Date{Time: d.Date},
		TotalMilesDrivingToday: d.TotalMilesDrivingToday,
		MileageCoveredToday:    d.MileageCoveredToday,
		IsCurrent:              d.IsCurrent,
		IsDone:                 d.IsDone,
		CreatedAt:              d.CreatedAt,
		UpdatedAt:              d.UpdatedAt,
	}
}

type intervalResponse struct {
	ID        openapi_types.UUID `json:"id"`
	DayID     openapi_types.UUID `json:"day_id"`
	Status    string             `json:"status"`
	StartAt   time.Time          `json:"start_at"`
	EndAt     *time.Time         `json:"end_at"`
	Remark    string             `json:"remark,omitempty"`
	IsCurrent bool               `json:"is_current"`
}

func toIntervalResponse(iv domain.DutyInterval) intervalResponse {
	return intervalResponse{
		ID:        iv.ID,
		DayID:     iv.DayID,
		Status:    string(iv.Status),
		StartAt:   iv.StartAt,
		EndAt:     iv.EndAt,
		Remark:    iv.Remark,
		IsCurrent: iv.IsCurrent,
	}
}

type dutyChangeResponse struct {
	DriverID   openapi_types.UUID `json:"driver_id"`
	OccurredAt time.Time          `json:"occurred_at"`
	Closed     []intervalResponse `json:"closed"`
	Opened     *intervalResponse  `json:"opened"`
}

func toDutyChangeResponse(c domain.DutyChange) dutyChangeResponse {
	resp := dutyChangeResponse{
		DriverID:   c.DriverID,
		OccurredAt: c.OccurredAt,
		Closed:     make([]intervalResponse, len(c.Closed)),
	}
	for i, iv := range c.Closed {
		resp.Closed[i] = toIntervalResponse(iv)
	}
	if c.Opened != nil {
		o := toIntervalResponse(*c.Opened)
		resp.Opened = &o
	}
	return resp
}

type currentStatusResponse struct {
	Driver driverResponse    `json:"driver"`
	Day    dayResponse       `json:"day"`
	Open   *intervalResponse `json:"open_interval"`
}

func toCurrentStatusResponse(cs service.CurrentStatus) currentStatusResponse {
	resp := currentStatusResponse{
		Driver: toDriverResponse(cs.Driver),
		Day:    toDayResponse(cs.Day),
	}
	if cs.Open != nil {
		o := toIntervalResponse(*cs.Open)
		resp.Open = &o
	}
	return resp
}

type cycleResponse struct {
	Cycle          string  `json:"cycle"`
	UsedHours      float64 `json:"used_hours"`
	AvailableHours float64 `json:"available_hours"`
}

type summaryResponse struct {
	DriverID      openapi_types.UUID `json:"driver_id"`
	AsOf          time.Time          `json:"as_of"`
	Today         float64            `json:"today"`
	LastFiveDays  float64            `json:"last_five_days"`
	LastSevenDays float64            `json:"last_seven_days"`
	LastEightDays float64            `json:"last_eight_days"`
	Cycle         cycleResponse      `json:"cycle"`
}

func toSummaryResponse(s domain.HoursSummary) summaryResponse {
	return summaryResponse{
		DriverID:      s.DriverID,
		AsOf:          s.AsOf,
		Today:         s.Today,
		LastFiveDays:  s.LastFiveDays,
		LastSevenDays: s.LastSevenDays,
		LastEightDays: s.LastEightDays,
		Cycle: cycleResponse{
			Cycle:          s.Cycle.Cycle.String(),
			UsedHours:      s.Cycle.UsedHours,
			AvailableHours: s.Cycle.AvailableHours,
		},
	}
}

type stopResponse struct {
	ID           openapi_types.UUID `json:"id"`
	DayID        openapi_types.UUID `json:"day_id"`
	Type         string             `json:"type"`
	LocationName string             `json:"location_name,omitempty"`
	Latitude     *float64           `json:"latitude,omitempty"`
	Longitude    *float64           `json:"longitude,omitempty"`
	StartAt      time.Time          `json:"start_at"`
	EndAt        *time.Time         `json:"end_at,omitempty"`
	Notes        string             `json:"notes,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
}

func toStopResponse(s domain.StopEvent) stopResponse {
	return stopResponse{
		ID:           s.ID,
		DayID:        s.DayID,
		Type:         string(s.Type),
		LocationName: s.LocationName,
		Latitude:     s.Latitude,
		Longitude:    s.Longitude,
		StartAt:      s.StartAt,
		EndAt:        s.EndAt,
		Notes:        s.Notes,
		CreatedAt:    s.CreatedAt,
	}
}

type sheetEntryResponse struct {
	Interval  intervalResponse `json:"interval"`
	Label     string           `json:"label"`
	Row       int              `json:"row"`
	StartHour int              `json:"start_hour"`
	EndHour   *int             `json:"end_hour"`
	NextRow   *int             `json:"next_row"`
}

type statusTotalResponse struct {
	Status string  `json:"status"`
	Label  string  `json:"label"`
	Row    int     `json:"row"`
	Hours  float64 `json:"hours"`
}

type sheetResponse struct {
	Day              dayResponse           `json:"day"`
	Driver           driverResponse        `json:"driver"`
	Entries          []sheetEntryResponse  `json:"entries"`
	Totals           []statusTotalResponse `json:"totals"`
	Stops            []stopResponse        `json:"stops"`
	OnDutyHoursToday float64               `json:"on_duty_hours_today"`
	Summary          summaryResponse       `json:"summary"`
}

func toSheetResponse(s domain.DaySheet) sheetResponse {
	resp := sheetResponse{
		Day:              toDayResponse(s.Day),
		Driver:           toDriverResponse(s.Driver),
		Entries:          make([]sheetEntryResponse, len(s.Entries)),
		Totals:           make([]statusTotalResponse, len(s.Totals)),
		Stops:            make([]stopResponse, len(s.Stops)),
		OnDutyHoursToday: s.OnDutyHoursToday,
		Summary:          toSummaryResponse(s.Summary),
	}
	for i, e := range s.Entries {
		resp.Entries[i] = sheetEntryResponse{
			Interval:  toIntervalResponse(e.Interval),
			Label:     e.Interval.Status.Label(),
			Row:       e.Row,
			StartHour: e.StartHour,
			EndHour:   e.EndHour,
			NextRow:   e.NextRow,
		}
	}
	for i, t := range s.Totals {
		resp.Totals[i] = statusTotalResponse{Status: string(t.Status), Label: t.Status.Label(), Row: t.Row, Hours: t.Hours}
	}
	for i, st := range s.Stops {
		resp.Stops[i] = toStopResponse(st)
	}
	return resp
}
