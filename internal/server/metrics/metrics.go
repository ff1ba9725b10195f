// Package metrics exposes Prometheus counters for the token request lifecycle.
//
// A nil *Metrics is valid and records nothing, so components can be built
// without a registry in tests.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "carmeet"

// Validation results.
const (
	ResultValid   = "valid"
	ResultInvalid = "invalid"
	ResultExpired = "expired"
	ResultError   = "error"
)

type Metrics struct {
	registry    *prometheus.Registry
	issued      prometheus.Counter
	throttled   prometheus.Counter
	validations *prometheus.CounterVec
	gcRuns      prometheus.Counter
	gcRemoved   prometheus.Counter
}

// New creates the counters on a fresh registry that also carries the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		issued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tokens",
			Name:      "issued_total",
			Help:      "Number of token requests issued.",
		}),
		throttled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tokens",
			Name:      "throttled_total",
			Help:      "Number of token requests rejected because a previous one is still pending.",
		}),
		validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tokens",
			Name:      "validations_total",
			Help:      "Number of token validations by result.",
		}, []string{"result"}),
		gcRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gc",
			Name:      "runs_total",
			Help:      "Number of garbage collection passes that reached the store.",
		}),
		gcRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gc",
			Name:      "removed_total",
			Help:      "Number of expired token requests removed.",
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.issued, m.throttled, m.validations, m.gcRuns, m.gcRemoved,
	)

	return m
}

func (m *Metrics) TokenIssued() {
	if m == nil {
		return
	}
	m.issued.Inc()
}

func (m *Metrics) TokenThrottled() {
	if m == nil {
		return
	}
	m.throttled.Inc()
}

func (m *Metrics) TokenValidated(result string) {
	if m == nil {
		return
	}
	m.validations.WithLabelValues(result).Inc()
}

// GarbageCollected records one pass over the store and the number of removed
// requests.
func (m *Metrics) GarbageCollected(removed int64) {
	if m == nil {
		return
	}
	m.gcRuns.Inc()
	if removed > 0 {
		m.gcRemoved.Add(float64(removed))
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
