package api

import (
	"net/http"
	"strings"
)

// CORS returns middleware implementing the gallery's cross-origin policy: a
// configurable exact-match origin allow-list or a wildcard. Preflight
// requests short-circuit with 204 and a 24-hour cache; every response
// advertises POST/OPTIONS and the Content-Type header.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	allowed := make([]string, 0, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			allowed = append(allowed, trimmed)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			headers := w.Header()
			headers.Set("Access-Control-Allow-Origin", resolveOrigin(allowed, r.Header.Get("Origin")))
			headers.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
			headers.Set("Access-Control-Allow-Headers", "Content-Type")
			headers.Set("Access-Control-Max-Age", "86400")
			headers.Add("Vary", "Origin")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// resolveOrigin picks the origin to advertise: the wildcard when configured,
// the request origin when it matches the allow-list exactly, otherwise the
// first configured origin.
func resolveOrigin(allowed []string, origin string) string {
	if len(allowed) == 0 {
		return "*"
	}
	for _, candidate := range allowed {
		if candidate == "*" {
			return "*"
		}
	}
	for _, candidate := range allowed {
		if candidate == origin {
			return origin
		}
	}
	return allowed[0]
}
