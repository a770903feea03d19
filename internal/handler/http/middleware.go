package http

import (
	"net/http"
	"strings"

	"github.com/faycal55/respira/pkg/middleware"
)

// ContentTypeJSON enforces that requests carrying a body declare
// Content-Type: application/json. Bodiless POSTs (check-subscription, logout
// of every session) pass through.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength != 0 && r.Method != http.MethodGet {
			ct := r.Header.Get("Content-Type")
			if !strings.HasPrefix(ct, "application/json") {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnsupportedMediaType)
				_, _ = w.Write([]byte(`{"error":{"code":"UNSUPPORTED_MEDIA_TYPE","message":"Content-Type must be application/json"}}`))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// OptionalAuth attaches the caller's identity when a valid bearer token is
// sent and otherwise lets the request through anonymously.
func OptionalAuth(validate middleware.TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
			if found && strings.EqualFold(scheme, "bearer") {
				if claims, err := validate(strings.TrimSpace(token)); err == nil {
					r = r.WithContext(middleware.WithClaims(r.Context(), claims))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
