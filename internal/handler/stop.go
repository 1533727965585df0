package handler

import (
	"net/http"
	"strings"

	"github.com/pkordes/eld-logbook/internal/domain"
)

// CreateStop handles POST /drivers/{driverId}/days/{dayId}/stops.
func (s *Server) CreateStop(w http.ResponseWriter, r *http.Request) {
	driverID, dayID, ok := dayPath(w, r)
	if !ok {
		return
	}
	var body createStopRequest
	if err := decodeBody(r, &body, false); err != nil {
		bodyError(w, err)
		return
	}

	created, err := s.stops.Create(r.Context(), driverID, dayID, requestToStop(body))
	if err != nil {
		s.serviceError(w, r, err, "logbook day not found")
		return
	}
	writeJSON(w, http.StatusCreated, toStopResponse(created))
}

// ListStops handles GET /drivers/{driverId}/days/{dayId}/stops.
func (s *Server) ListStops(w http.ResponseWriter, r *http.Request) {
	driverID, dayID, ok := dayPath(w, r)
	if !ok {
		return
	}
	stops, err := s.stops.List(r.Context(), driverID, dayID)
	if err != nil {
		s.serviceError(w, r, err, "logbook day not found")
		return
	}
	data := make([]stopResponse, len(stops))
	for i, st := range stops {
		data[i] = toStopResponse(st)
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": data})
}

func requestToStop(body createStopRequest) domain.StopEvent {
	return domain.StopEvent{
		Type:         domain.StopType(body.Type),
		LocationName: body.LocationName,
		Latitude:     body.Latitude,
		Longitude:    body.Longitude,
		StartAt:      body.StartAt,
		EndAt:        body.EndAt,
		Notes:        strings.TrimSpace(body.Notes),
	}
}
