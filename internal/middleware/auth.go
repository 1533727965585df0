package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
)

// RoleCarrierAdmin may act on any driver's logbook.
const RoleCarrierAdmin = "carrier-admin"

// Claims are the JWT claims this API reads. Subject carries the driver id.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type claimsKey struct{}

// ClaimsFromContext returns the claims stored by Auth, if any.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*Claims)
	return c, ok
}

// Auth validates HS256 bearer tokens.
type Auth struct {
	secret []byte
	param  string
}

// NewAuth returns an Auth that checks tokens signed with secret and compares
// the subject against the driverParam chi URL parameter.
func NewAuth(secret, driverParam string) *Auth {
	return &Auth{secret: []byte(secret), param: driverParam}
}

// authenticate parses the bearer token and stores its claims in the context.
// It writes a 401 and returns false when the token is missing or invalid.
func (a *Auth) authenticate(w http.ResponseWriter, r *http.Request) (*http.Request, *Claims, bool) {
	token := bearerFromHeader(r.Header.Get("Authorization"))
	if token == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return r, nil, false
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(_ *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		writeError(w, http.StatusUnauthorized, "unauthorized", "token invalid")
		return r, nil, false
	}
	return r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)), claims, true
}

// RequireDriver admits a request when the token subject equals the driver
// id in the URL, or the token carries the carrier-admin role.
func (a *Auth) RequireDriver(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r, claims, ok := a.authenticate(w, r)
		if !ok {
			return
		}
		if claims.Role != RoleCarrierAdmin && !strings.EqualFold(claims.Subject, chi.URLParam(r, a.param)) {
			writeError(w, http.StatusForbidden, "forbidden", "token subject does not match driver")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin admits only carrier-admin tokens.
func (a *Auth) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r, claims, ok := a.authenticate(w, r)
		if !ok {
			return
		}
		if claims.Role != RoleCarrierAdmin {
			writeError(w, http.StatusForbidden, "forbidden", "carrier-admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerFromHeader(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// writeError writes the API's {"error":{"code","message"}} body.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]map[string]string{
		"error": {"code": code, "message": message},
	})
}
