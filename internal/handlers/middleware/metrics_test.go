package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type httpRequestRecord struct {
	method  string
	pattern string
	status  int
}

type metricsFunc func(method string, path string, status int, took time.Duration)

func (f metricsFunc) HTTPRequest(method string, path string, status int, took time.Duration) {
	f(method, path, status, took)
}

func TestMetricsMiddleware(t *testing.T) {
	var got []httpRequestRecord
	m := metricsFunc(func(method string, path string, status int, _ time.Duration) {
		got = append(got, httpRequestRecord{method, path, status})
	})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/ubi/profile", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})
	h := MetricsMiddleware(m)(mux)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/ubi/profile?name=x", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	require.Len(t, got, 2)
	assert.Equal(t, httpRequestRecord{"GET", "GET /api/ubi/profile", http.StatusAccepted}, got[0], "labeled by pattern, not by raw path")
	assert.Equal(t, httpRequestRecord{"GET", unmatchedPattern, http.StatusNotFound}, got[1])
}
