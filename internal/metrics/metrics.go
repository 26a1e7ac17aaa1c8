package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mindgarden"

const (
	SourceClient = "client"
	SourceLive   = "live"
)

type Metrics struct {
	registry         *prometheus.Registry
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	sessionsRecorded *prometheus.CounterVec
	cyclesRecorded   prometheus.Counter
	secondsRecorded  prometheus.Counter
}

// New builds a private registry so that several servers (and tests) can
// live in one process.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		sessionsRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "breathing",
			Name:      "sessions_recorded_total",
			Help:      "Breathing sessions recorded by source.",
		}, []string{"source"}),
		cyclesRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "breathing",
			Name:      "cycles_recorded_total",
			Help:      "Completed breathing cycles across recorded sessions.",
		}),
		secondsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "breathing",
			Name:      "seconds_recorded_total",
			Help:      "Practice time across recorded sessions.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.sessionsRecorded,
		m.cyclesRecorded,
		m.secondsRecorded,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveSession(source string, cycles, seconds int) {
	if m == nil {
		return
	}
	m.sessionsRecorded.WithLabelValues(source).Inc()
	m.cyclesRecorded.Add(float64(cycles))
	m.secondsRecorded.Add(float64(seconds))
}
