package handler

import (
	"net/http"
	"time"

	"github.com/pkordes/eld-logbook/internal/domain"
	"github.com/pkordes/eld-logbook/internal/service"
)

// GetStatus handles GET /drivers/{driverId}/status.
// Despite being a GET it writes: today's logbook day is created when missing
// and any older day still flagged current is demoted. Repeated calls are
// idempotent.
func (s *Server) GetStatus(w http.ResponseWriter, r *http.Request) {
	driverID, ok := pathUUID(w, r, "driverId")
	if !ok {
		return
	}
	cs, err := s.ledger.CurrentStatus(r.Context(), driverID)
	if err != nil {
		s.serviceError(w, r, err, "driver not found")
		return
	}
	writeJSON(w, http.StatusOK, toCurrentStatusResponse(cs))
}

// RecordStatusChange handles POST /drivers/{driverId}/status.
// It closes the open interval (splitting it at local midnights) and opens a
// new one. Omitting "at" uses the server clock.
func (s *Server) RecordStatusChange(w http.ResponseWriter, r *http.Request) {
	driverID, ok := pathUUID(w, r, "driverId")
	if !ok {
		return
	}
	var body statusChangeRequest
	if err := decodeBody(r, &body, false); err != nil {
		bodyError(w, err)
		return
	}

	req := service.StatusChange{
		DriverID: driverID,
		Status:   domain.DutyStatus(body.Status),
		Remark:   body.Remark,
	}
	if body.At != nil {
		req.At = *body.At
	}
	change, err := s.ledger.RecordStatusChange(r.Context(), req)
	if err != nil {
		s.serviceError(w, r, err, "driver not found")
		return
	}
	writeJSON(w, http.StatusCreated, toDutyChangeResponse(change))
}

// EndDutyPeriod handles POST /drivers/{driverId}/duty-period/end.
// The body is optional. Ending with nothing open returns an empty change.
func (s *Server) EndDutyPeriod(w http.ResponseWriter, r *http.Request) {
	driverID, ok := pathUUID(w, r, "driverId")
	if !ok {
		return
	}
	var body endDutyRequest
	if err := decodeBody(r, &body, true); err != nil {
		bodyError(w, err)
		return
	}

	var at time.Time
	if body.At != nil {
		at = *body.At
	}
	change, err := s.ledger.EndDutyPeriod(r.Context(), driverID, at)
	if err != nil {
		s.serviceError(w, r, err, "driver not found")
		return
	}
	writeJSON(w, http.StatusOK, toDutyChangeResponse(change))
}
