package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/eld-logbook/internal/domain"
)

// ListDays handles GET /drivers/{driverId}/days.
// Supports ?from= and ?to= (inclusive dates) plus ?page= and ?limit=.
func (s *Server) ListDays(w http.ResponseWriter, r *http.Request) {
	driverID, ok := pathUUID(w, r, "driverId")
	if !ok {
		return
	}
	dr, ok := queryDayRange(w, r)
	if !ok {
		return
	}
	params, ok := queryPagination(w, r)
	if !ok {
		return
	}

	days, total, err := s.days.List(r.Context(), driverID, dr, params)
	if err != nil {
		s.serviceError(w, r, err, "driver not found")
		return
	}
	data := make([]dayResponse, len(days))
	for i, d := range days {
		data[i] = toDayResponse(d)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data": data,
		"pagination": Pagination{
			Page:  params.Page,
			Limit: params.Limit,
			Total: int(total),
		},
	})
}

// StartDay handles POST /drivers/{driverId}/days.
// Unlike GetOrCreateDay it rejects a date that already has a day (409).
// A missing date means the driver's local today.
func (s *Server) StartDay(w http.ResponseWriter, r *http.Request) {
	driverID, ok := pathUUID(w, r, "driverId")
	if !ok {
		return
	}
	var body startDayRequest
	if err := decodeBody(r, &body, true); err != nil {
		bodyError(w, err)
		return
	}

	var date time.Time
	if body.Date != nil {
		date = body.Date.Time
	}
	day, err := s.days.Start(r.Context(), driverID, date)
	if err != nil {
		s.serviceError(w, r, err, "driver not found")
		return
	}
	writeJSON(w, http.StatusCreated, toDayResponse(day))
}

// GetOrCreateDay handles PUT /drivers/{driverId}/days/{date}.
// It is idempotent: repeated calls return the same day.
func (s *Server) GetOrCreateDay(w http.ResponseWriter, r *http.Request) {
	driverID, ok := pathUUID(w, r, "driverId")
	if !ok {
		return
	}
	date, ok := pathDate(w, r, "date")
	if !ok {
		return
	}
	day, err := s.days.GetOrCreate(r.Context(), driverID, date.Time)
	if err != nil {
		s.serviceError(w, r, err, "driver not found")
		return
	}
	writeJSON(w, http.StatusOK, toDayResponse(day))
}

// GetDay handles GET /drivers/{driverId}/days/{dayId}.
func (s *Server) GetDay(w http.ResponseWriter, r *http.Request) {
	driverID, dayID, ok := dayPath(w, r)
	if !ok {
		return
	}
	day, err := s.days.Get(r.Context(), driverID, dayID)
	if err != nil {
		s.serviceError(w, r, err, "logbook day not found")
		return
	}
	writeJSON(w, http.StatusOK, toDayResponse(day))
}

// CloseDay handles POST /drivers/{driverId}/days/{dayId}/close.
// mileage_covered_today defaults to total_miles_driving_today.
func (s *Server) CloseDay(w http.ResponseWriter, r *http.Request) {
	driverID, dayID, ok := dayPath(w, r)
	if !ok {
		return
	}
	var body closeDayRequest
	if err := decodeBody(r, &body, false); err != nil {
		bodyError(w, err)
		return
	}

	day, err := s.days.Close(r.Context(), driverID, dayID, domain.Mileage{
		TotalMilesDrivingToday: body.TotalMilesDrivingToday,
		MileageCoveredToday:    body.MileageCoveredToday,
	})
	if err != nil {
		s.serviceError(w, r, err, "logbook day not found")
		return
	}
	writeJSON(w, http.StatusOK, toDayResponse(day))
}

// DeleteDay handles DELETE /drivers/{driverId}/days/{dayId}.
// Only an empty day can be deleted; one holding intervals or stops is a 409.
func (s *Server) DeleteDay(w http.ResponseWriter, r *http.Request) {
	driverID, dayID, ok := dayPath(w, r)
	if !ok {
		return
	}
	if err := s.days.Delete(r.Context(), driverID, dayID); err != nil {
		s.serviceError(w, r, err, "logbook day not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// dayPath binds the {driverId} and {dayId} path parameters.
func dayPath(w http.ResponseWriter, r *http.Request) (driverID, dayID uuid.UUID, ok bool) {
	if driverID, ok = pathUUID(w, r, "driverId"); !ok {
		return
	}
	dayID, ok = pathUUID(w, r, "dayId")
	return
}
