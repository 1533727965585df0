package handler

import (
	"net/http"
)

// GetHoursToday handles GET /drivers/{driverId}/days/{dayId}/hours.
// Returns the closed on-duty time of one day, in hours rounded to 2 decimals.
func (s *Server) GetHoursToday(w http.ResponseWriter, r *http.Request) {
	driverID, dayID, ok := dayPath(w, r)
	if !ok {
		return
	}
	hours, err := s.hours.HoursToday(r.Context(), driverID, dayID)
	if err != nil {
		s.serviceError(w, r, err, "logbook day not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"day_id": dayID, "on_duty_hours": hours})
}

// GetHoursOverDays handles GET /drivers/{driverId}/hours?days=N.
// Counts intervals that ended within the last N*24 hours.
func (s *Server) GetHoursOverDays(w http.ResponseWriter, r *http.Request) {
	driverID, ok := pathUUID(w, r, "driverId")
	if !ok {
		return
	}
	days, ok := queryInt(w, r, "days")
	if !ok {
		return
	}
	if days == nil {
		requestError(w, "days is required")
		return
	}
	hours, err := s.hours.HoursOverLastNDays(r.Context(), driverID, *days)
	if err != nil {
		s.serviceError(w, r, err, "driver not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"days": *days, "on_duty_hours": hours})
}

// GetSummary handles GET /drivers/{driverId}/hos-summary.
func (s *Server) GetSummary(w http.ResponseWriter, r *http.Request) {
	driverID, ok := pathUUID(w, r, "driverId")
	if !ok {
		return
	}
	summary, err := s.hours.Summary(r.Context(), driverID)
	if err != nil {
		s.serviceError(w, r, err, "driver not found")
		return
	}
	writeJSON(w, http.StatusOK, toSummaryResponse(summary))
}
