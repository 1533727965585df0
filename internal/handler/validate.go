package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/pkordes/eld-logbook/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("duty_status", func(fl validator.FieldLevel) bool {
		return domain.DutyStatus(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("stop_type", func(fl validator.FieldLevel) bool {
		return domain.StopType(fl.Field().String()).Valid()
	})
	return v
}

// decodeBody reads a JSON body into dst and validates it.
// An empty body is allowed when optional is true.
func decodeBody(r *http.Request, dst any, optional bool) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			if !optional {
				return errors.New("request body is required")
			}
		} else {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				return err
			}
			return fmt.Errorf("malformed request body: %v", err)
		}
	}
	if err := validate.Struct(dst); err != nil {
		return errors.New(formatValidationErrors(err))
	}
	return nil
}

var validationMessages = map[string]string{
	"required":    "is required",
	"max":         "must be at most %s",
	"gte":         "must be at least %s",
	"lte":         "must be at most %s",
	"timezone":    "must be an IANA time zone",
	"duty_status": "must be one of off-duty, sleeper-berth, driving, on-duty-not-driving",
	"stop_type":   "must be one of fuel, rest, pickup, dropoff, inspection, other",
}

// formatValidationErrors renders validator errors as "field message" pairs.
func formatValidationErrors(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg, ok := validationMessages[fe.Tag()]
		if !ok {
			msg = "is invalid"
		}
		if strings.Contains(msg, "%s") {
			msg = fmt.Sprintf(msg, fe.Param())
		}
		parts = append(parts, fe.Field()+" "+msg)
	}
	return strings.Join(parts, ", ")
}

// bodyError writes the response for a decodeBody failure.
func bodyError(w http.ResponseWriter, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large")
		return
	}
	requestError(w, err.Error())
}
