package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cascaoconcurseiro/diariofinanceiro/internal/infrastructure/metrics"
)

// MetricsMiddleware records HTTP request metrics.
type MetricsMiddleware struct {
	metrics *metrics.Metrics
}

// NewMetricsMiddleware creates a new MetricsMiddleware.
func NewMetricsMiddleware(m *metrics.Metrics) *MetricsMiddleware {
	return &MetricsMiddleware{metrics: m}
}

// Wrap wraps an http.Handler with metrics recording.
func (m *MetricsMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		m.metrics.HTTPInFlight.Inc()
		defer m.metrics.HTTPInFlight.Dec()

		wrapped := &metricsRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()
		path := normalizePath(r.URL.Path)

		m.metrics.HTTPRequests.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
		m.metrics.HTTPDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

type metricsRecorder struct {
	http.ResponseWriter

	statusCode int
}

func (r *metricsRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

// normalizePath collapses entry and recurrence ids so metric label
// cardinality stays bounded.
func normalizePath(path string) string {
	const (
		entriesPrefix    = "/api/v1/entries/"
		recurrencePrefix = "/api/v1/entries/recurrence/"
	)

	switch {
	case strings.HasPrefix(path, recurrencePrefix) && len(path) > len(recurrencePrefix):
		return recurrencePrefix + ":id"
	case strings.HasPrefix(path, entriesPrefix) && len(path) > len(entriesPrefix):
		rest := path[len(entriesPrefix):]
		if rest == "batch" || strings.Contains(rest, "/") {
			return path
		}
		return entriesPrefix + ":id"
	}

	return path
}
