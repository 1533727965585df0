package handler

import (
	"net/http"

	"github.com/pkordes/eld-logbook/internal/domain"
)

// CreateDriver handles POST /drivers.
func (s *Server) CreateDriver(w http.ResponseWriter, r *http.Request) {
	var body createDriverRequest
	if err := decodeBody(r, &body, false); err != nil {
		bodyError(w, err)
		return
	}

	created, err := s.drivers.Create(r.Context(), domain.Driver{Name: body.Name, TimeZone: body.TimeZone})
	if err != nil {
		s.serviceError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusCreated, toDriverResponse(created))
}

// ListDrivers handles GET /drivers.
func (s *Server) ListDrivers(w http.ResponseWriter, r *http.Request) {
	drivers, err := s.drivers.List(r.Context())
	if err != nil {
		s.serviceError(w, r, err, "")
		return
	}
	data := make([]driverResponse, len(drivers))
	for i, d := range drivers {
		data[i] = toDriverResponse(d)
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": data})
}

// GetDriver handles GET /drivers/{driverId}.
func (s *Server) GetDriver(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "driverId")
	if !ok {
		return
	}
	driver, err := s.drivers.GetByID(r.Context(), id)
	if err != nil {
		s.serviceError(w, r, err, "driver not found")
		return
	}
	writeJSON(w, http.StatusOK, toDriverResponse(driver))
}

// DeleteDriver handles DELETE /drivers/{driverId}.
// A driver that still owns logbook days cannot be deleted (409).
func (s *Server) DeleteDriver(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "driverId")
	if !ok {
		return
	}
	if err := s.drivers.Delete(r.Context(), id); err != nil {
		s.serviceError(w, r, err, "driver not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
