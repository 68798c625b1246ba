package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics - набор коллекторов сервиса.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	RequirementsExtracted prometheus.Counter
	ExtractionFailures    prometheus.Counter
	DeadlinesImported     prometheus.Counter
	TendersClosed         *prometheus.CounterVec
	OrphanedFiles         prometheus.Counter
}

// New регистрирует коллекторы в собственном реестре.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "licitagora",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern, method and status code.",
		}, []string{"route", "method", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "licitagora",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		RequirementsExtracted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "licitagora",
			Name:      "requirements_extracted_total",
			Help:      "Requirements generated from notice documents.",
		}),
		ExtractionFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "licitagora",
			Name:      "requirement_extraction_failures_total",
			Help:      "Notice uploads whose text could not be extracted.",
		}),
		DeadlinesImported: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "licitagora",
			Name:      "deadlines_imported_total",
			Help:      "Deadlines created from tender closing dates.",
		}),
		TendersClosed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "licitagora",
			Name:      "tenders_closed_total",
			Help:      "Tenders closed, by outcome.",
		}, []string{"outcome"}),
		OrphanedFiles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "licitagora",
			Name:      "orphaned_files_total",
			Help:      "Stored files that could not be removed after their row was deleted.",
		}),
	}
	reg.MustRegister(
		m.requests,
		m.requestDuration,
		m.RequirementsExtracted,
		m.ExtractionFailures,
		m.DeadlinesImported,
		m.TendersClosed,
		m.OrphanedFiles,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler отдаёт метрики в формате Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry возвращает реестр коллекторов.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware считает запросы и их длительность по шаблону маршрута mux.
func (m *Metrics) Middleware(mux *http.ServeMux) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		_, route := mux.Handler(r)
		if route == "" {
			route = "unmatched"
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		mux.ServeHTTP(rec, r)

		m.requests.WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).Inc()
		m.requestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
