package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/timetable-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation for HTTP traffic and scheduling outcomes.
type MetricsService struct {
	registry          *prometheus.Registry
	handler           http.Handler
	requestDuration   *prometheus.HistogramVec
	requestTotal      *prometheus.CounterVec
	sessionsCreated   prometheus.Counter
	placementRejected *prometheus.CounterVec
	conflictsDetected *prometheus.GaugeVec
	cacheLookups      *prometheus.CounterVec
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	sessionsCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "timetable_sessions_created_total",
		Help: "Sessions created by the planner",
	})

	placementRejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_placements_rejected_total",
		Help: "Weekday placements rejected by the planner, by error code",
	}, []string{"code"})

	conflictsDetected := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "timetable_conflicts_detected",
		Help: "Conflicts found by the most recent scan, by kind",
	}, []string{"kind"})

	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_grid_cache_lookups_total",
		Help: "Grid cache lookups by result",
	}, []string{"result"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, sessionsCreated, placementRejected, conflictsDetected, cacheLookups, goroutines)

	return &MetricsService{
		registry:          registry,
		handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:   requestDuration,
		requestTotal:      requestTotal,
		sessionsCreated:   sessionsCreated,
		placementRejected: placementRejected,
		conflictsDetected: conflictsDetected,
		cacheLookups:      cacheLookups,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry returns the underlying registry.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveSessionsCreated counts sessions written by the planner.
func (m *MetricsService) ObserveSessionsCreated(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.sessionsCreated.Add(float64(n))
}

// ObservePlacementRejected counts one failed weekday placement.
func (m *MetricsService) ObservePlacementRejected(code string) {
	if m == nil {
		return
	}
	m.placementRejected.WithLabelValues(code).Inc()
}

// ObserveConflictsDetected records the outcome of the latest scan.
func (m *MetricsService) ObserveConflictsDetected(rooms, teachers int) {
	if m == nil {
		return
	}
	m.conflictsDetected.WithLabelValues(string(models.ConflictKindRoom)).Set(float64(rooms))
	m.conflictsDetected.WithLabelValues(string(models.ConflictKindTeacher)).Set(float64(teachers))
}

// ObserveCacheLookup counts grid cache hits and misses.
func (m *MetricsService) ObserveCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}
