package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/pkordes/eld-logbook/internal/domain"
)

// ErrorDetail is the body of every error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps ErrorDetail as {"error":{...}}.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// writeJSON encodes v with the given status. Encoding errors are ignored
// because the status line has already been sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

// requestError reports a request rejected before reaching the service layer
// (missing or malformed body, bad parameter).
func requestError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnprocessableEntity, "validation_error", message)
}

// sentinels maps each domain error to its HTTP status and error code.
// Order matters only for errors that wrap more than one sentinel.
var sentinels = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrNotFound, http.StatusNotFound, "not_found"},
	{domain.ErrAlreadyClosed, http.StatusConflict, "already_closed"},
	{domain.ErrConflict, http.StatusConflict, "conflict"},
	{domain.ErrInvalidRange, http.StatusUnprocessableEntity, "invalid_range"},
	{domain.ErrValidation, http.StatusUnprocessableEntity, "validation_error"},
}

// serviceError translates a service error into a JSON error response.
// notFound names the resource for a 404 (e.g. "driver not found").
// Unknown errors are logged and returned as 500 without detail.
func (s *Server) serviceError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	for _, m := range sentinels {
		if !errors.Is(err, m.err) {
			continue
		}
		msg := unwrapMessage(err, m.err)
		if m.err == domain.ErrNotFound && notFound != "" {
			msg = notFound
		}
		writeError(w, m.status, m.code, msg)
		return
	}
	s.log.ErrorContext(r.Context(), "request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
}

// unwrapMessage extracts the human-readable part that follows the sentinel
// in a wrapped error.
// e.g. "service.DayService.Start: repo.DayRepo.Create: conflict: logbook day already exists"
// → "logbook day already exists"
func unwrapMessage(err, sentinel error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	marker := sentinel.Error() + ": "
	if i := strings.LastIndex(msg, marker); i >= 0 {
		return msg[i+len(marker):]
	}
	return sentinel.Error()
}
