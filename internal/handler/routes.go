package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RouteOptions carries the optional middleware applied to route groups.
type RouteOptions struct {
	// Authorize guards every /drivers/{driverId} route. Nil disables it.
	Authorize func(http.Handler) http.Handler
	// AdminOnly guards the driver collection routes. Nil disables it.
	AdminOnly func(http.Handler) http.Handler
	// WriteLimit wraps the mutating routes. Nil disables it.
	WriteLimit func(http.Handler) http.Handler
}

func passthrough(next http.Handler) http.Handler { return next }

func orPassthrough(mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	if mw == nil {
		return passthrough
	}
	return mw
}

// datePattern matches a calendar date path segment. It is tried before the
// plain {dayId} segment, so /days/2025-06-01 and /days/<uuid> never collide.
const datePattern = `{date:[0-9]{4}-[0-9]{2}-[0-9]{2}}`

// Routes returns the API router. Global middleware (request id, logging,
// recovery, CORS, body limits) is applied by the caller.
func (s *Server) Routes(opts RouteOptions) http.Handler {
	authorize := orPassthrough(opts.Authorize)
	adminOnly := orPassthrough(opts.AdminOnly)
	limit := orPassthrough(opts.WriteLimit)

	r := chi.NewRouter()
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Route("/drivers", func(r chi.Router) {
		r.With(adminOnly).Get("/", s.ListDrivers)
		r.With(adminOnly, limit).Post("/", s.CreateDriver)

		r.Route("/{driverId}", func(r chi.Router) {
			r.Use(authorize)

			r.Get("/", s.GetDriver)
			r.With(adminOnly, limit).Delete("/", s.DeleteDriver)

			r.Get("/status", s.GetStatus)
			r.With(limit).Post("/status", s.RecordStatusChange)
			r.With(limit).Post("/duty-period/end", s.EndDutyPeriod)

			r.Get("/hours", s.GetHoursOverDays)
			r.Get("/hos-summary", s.GetSummary)
			r.Get("/export", s.GetExport)

			r.Route("/days", func(r chi.Router) {
				r.Get("/", s.ListDays)
				r.With(limit).Post("/", s.StartDay)
				r.With(limit).Put("/"+datePattern, s.GetOrCreateDay)

				r.Route("/{dayId}", func(r chi.Router) {
					r.Get("/", s.GetDay)
					r.With(limit).Delete("/", s.DeleteDay)
					r.With(limit).Post("/close", s.CloseDay)
					r.Get("/sheet", s.GetDaySheet)
					r.Get("/hours", s.GetHoursToday)
					r.Get("/stops", s.ListStops)
					r.With(limit).Post("/stops", s.CreateStop)
				})
			})
		})
	})
	return r
}
