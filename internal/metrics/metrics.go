// Package metrics exposes prometheus collectors for the service.
// All record methods are safe on a nil *Metrics so components may run without them.
package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "r6tracker"

type Metrics struct {
	gatherer prometheus.Gatherer

	upstreamRequests *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	sessionStates    *prometheus.CounterVec
	cacheLookups     *prometheus.CounterVec
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

// New creates collectors and registers them in reg.
// Every instance needs its own registry, prometheus rejects duplicate collectors.
func New(reg *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{
		gatherer: reg,
		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Requests sent to Ubisoft services by operation and response status",
		}, []string{"op", "status"}),
		upstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Latency of requests sent to Ubisoft services",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		sessionStates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_transitions_total",
			Help:      "Session manager transitions by target state",
		}, []string{"state"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by result (hit|miss)",
		}, []string{"result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Processed HTTP requests",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latency of HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}

	for _, c := range []prometheus.Collector{
		m.upstreamRequests,
		m.upstreamDuration,
		m.sessionStates,
		m.cacheLookups,
		m.httpRequests,
		m.httpDuration,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("metrics: register collector: %w", err)
		}
	}

	return m, nil
}

// Handler serves collected metrics in prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) UpstreamRequest(op string, status int, took time.Duration) {
	if m == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.upstreamRequests.WithLabelValues(op, label).Inc()
	m.upstreamDuration.WithLabelValues(op).Observe(took.Seconds())
}

func (m *Metrics) SessionTransition(state string) {
	if m == nil {
		return
	}
	m.sessionStates.WithLabelValues(state).Inc()
}

func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) HTTPRequest(method, path string, status int, took time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(took.Seconds())
}
