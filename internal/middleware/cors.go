// Package middleware provides reusable HTTP middleware for the ELD logbook API.
package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// corsMaxAge is how long, in seconds, a browser may cache a preflight result.
const corsMaxAge = 300

// NewCORSHandler returns a middleware that applies CORS headers for the given
// origins. Each origin is scheme + host with no trailing slash.
//
// Authorization is allowed so browser clients can send driver tokens, and
// Content-Disposition is exposed so they can read the CSV export filename.
func NewCORSHandler(allowedOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Request-Id"},
		ExposedHeaders: []string{"Content-Disposition", "X-Request-Id"},
		MaxAge:         corsMaxAge,
	})
	return c.Handler
}
