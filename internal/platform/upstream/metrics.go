package upstream

import (
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records upstream call counts and latencies.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the upstream collectors on reg. A nil registerer yields
// unregistered collectors, which keeps tests free of global state.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "infiniteleaf",
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Upstream API requests by method, resource and status.",
		}, []string{"method", "resource", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "infiniteleaf",
			Subsystem: "upstream",
			Name:      "request_duration_seconds",
			Help:      "Upstream API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "resource"}),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.duration)
	}
	return m
}

func (m *Metrics) observe(method, path string, status int, started time.Time) {
	if m == nil {
		return
	}
	resource := resourceLabel(path)
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.requests.WithLabelValues(method, resource, label).Inc()
	m.duration.WithLabelValues(method, resource).Observe(time.Since(started).Seconds())
}

// resourceLabel keeps the first two path segments ("api/cafetables") so ids and
// query strings never become label values.
func resourceLabel(path string) string {
	path = strings.TrimLeft(path, "/")
	if idx := strings.IndexAny(path, "?#"); idx >= 0 {
		path = path[:idx]
	}
	parts := strings.SplitN(path, "/", 3)
	if len(parts) > 2 {
		parts = parts[:2]
	}
	return strings.ToLower(strings.Join(parts, "/"))
}
