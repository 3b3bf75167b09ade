package middleware

import (
	"net/http"
	"time"
)

type httpMetrics interface {
	HTTPRequest(method string, path string, status int, took time.Duration)
}

const unmatchedPattern = "unmatched"

// Record request count and latency labeled by the matched route pattern
// Must wrap ServeMux directly, the mux sets pattern on the request it serves
func MetricsMiddleware(m httpMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			lw := newLogWriter(w)
			next.ServeHTTP(lw, r)

			pattern := r.Pattern
			if pattern == "" {
				pattern = unmatchedPattern
			}
			m.HTTPRequest(r.Method, pattern, lw.data.responseStatus, time.Since(start))
		})
	}
}
