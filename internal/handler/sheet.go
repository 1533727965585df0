package handler

import "net/http"

// GetDaySheet handles GET /drivers/{driverId}/days/{dayId}/sheet.
// The sheet carries the grid entries, per-status totals, stops and the
// driver's hours summary.
func (s *Server) GetDaySheet(w http.ResponseWriter, r *http.Request) {
	driverID, dayID, ok := dayPath(w, r)
	if !ok {
		return
	}
	sheet, err := s.sheets.DaySheet(r.Context(), driverID, dayID)
	if err != nil {
		s.serviceError(w, r, err, "logbook day not found")
		return
	}
	writeJSON(w, http.StatusOK, toSheetResponse(sheet))
}
