package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/eld-logbook/internal/domain"
)

// pathUUID binds a UUID path parameter the way generated oapi-codegen
// servers do. On failure it writes a 422 and returns false.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (openapi_types.UUID, bool) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false})
	if err != nil {
		requestError(w, "invalid "+name+": must be a UUID")
		return id, false
	}
	return id, true
}

func pathDate(w http.ResponseWriter, r *http.Request, name string) (openapi_types.Date, bool) {
	var d openapi_types.Date
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &d,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false})
	if err != nil {
		requestError(w, "invalid "+name+": must be a date (YYYY-MM-DD)")
		return d, false
	}
	return d, true
}

// queryInt binds an optional integer query parameter; nil when absent.
func queryInt(w http.ResponseWriter, r *http.Request, name string) (*int, bool) {
	var v *int
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &v); err != nil {
		requestError(w, "invalid "+name+": must be an integer")
		return nil, false
	}
	return v, true
}

// queryDate binds an optional date query parameter; nil when absent.
func queryDate(w http.ResponseWriter, r *http.Request, name string) (*openapi_types.Date, bool) {
	var d *openapi_types.Date
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), &d); err != nil {
		requestError(w, "invalid "+name+": must be a date (YYYY-MM-DD)")
		return nil, false
	}
	return d, true
}

// queryDayRange reads ?from= and ?to= into a domain.DayRange.
func queryDayRange(w http.ResponseWriter, r *http.Request) (domain.DayRange, bool) {
	from, ok := queryDate(w, r, "from")
	if !ok {
		return domain.DayRange{}, false
	}
	to, ok := queryDate(w, r, "to")
	if !ok {
		return domain.DayRange{}, false
	}
	var dr domain.DayRange
	if from != nil {
		dr.From = from.Time
	}
	if to != nil {
		dr.To = to.Time
	}
	return dr, true
}

func queryPagination(w http.ResponseWriter, r *http.Request) (domain.PaginationParams, bool) {
	page, ok := queryInt(w, r, "page")
	if !ok {
		return domain.PaginationParams{}, false
	}
	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return domain.PaginationParams{}, false
	}
	return domain.NewPaginationParams(page, limit), true
}
