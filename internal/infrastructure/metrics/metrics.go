package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Mutation metrics
	MutationsProcessed *prometheus.CounterVec
	MutationsRejected  *prometheus.CounterVec
	MutationDuration   prometheus.Histogram
	MutationAmount     prometheus.Histogram

	// Propagation metrics
	PropagationRuns     prometheus.Counter
	PropagationFailures prometheus.Counter
	PropagationDays     prometheus.Histogram
	PropagationDuration prometheus.Histogram
	FullRecalculations  prometheus.Counter

	// Cache metrics
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter

	// Integrity metrics
	IntegrityChecks      prometheus.Counter
	IntegrityScore       prometheus.Gauge
	IntegrityErrors      *prometheus.CounterVec
	CorrectionsApplied   prometheus.Counter
	CorrectionsExhausted prometheus.Counter

	// API metrics
	HTTPRequests  *prometheus.CounterVec
	HTTPDuration  *prometheus.HistogramVec
	HTTPInFlight  prometheus.Gauge
	DBConnections prometheus.Gauge
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// Mutation metrics
		MutationsProcessed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "diario_mutations_processed_total",
				Help: "Total number of ledger mutations processed by operation",
			},
			[]string{"op"},
		),
		MutationsRejected: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "diario_mutations_rejected_total",
				Help: "Total number of ledger mutations rejected by validation",
			},
			[]string{"op"},
		),
		MutationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "diario_mutation_duration_seconds",
			Help:    "Duration of mutation processing including propagation",
			Buckets: prometheus.DefBuckets,
		}),
		MutationAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "diario_mutation_amount",
			Help:    "Absolute mutation deltas in currency units",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),

		// Propagation metrics
		PropagationRuns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "diario_propagation_runs_total",
			Help: "Total number of cascade propagation runs",
		}),
		PropagationFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "diario_propagation_failures_total",
			Help: "Total number of propagation runs aborted at a failing period",
		}),
		PropagationDays: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "diario_propagation_days",
			Help:    "Days recomputed per propagation run",
			Buckets: []float64{1, 7, 30, 90, 180, 365, 730},
		}),
		PropagationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "diario_propagation_duration_seconds",
			Help:    "Duration of propagation runs",
			Buckets: prometheus.DefBuckets,
		}),
		FullRecalculations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "diario_full_recalculations_total",
			Help: "Total number of forced full recalculations",
		}),

		// Cache metrics
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "diario_balance_cache_hits_total",
			Help: "Total balance cache hits",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "diario_balance_cache_misses_total",
			Help: "Total balance cache misses",
		}),

		// Integrity metrics
		IntegrityChecks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "diario_integrity_checks_total",
			Help: "Total integrity validation runs",
		}),
		IntegrityScore: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "diario_integrity_score",
			Help: "Integrity score of the last validation run (0-100)",
		}),
		IntegrityErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "diario_integrity_errors_total",
				Help: "Total integrity findings by severity",
			},
			[]string{"severity"},
		),
		CorrectionsApplied: promauto.NewCounter(prometheus.CounterOpts{
			Name: "diario_corrections_applied_total",
			Help: "Total corrective passes run by the validator",
		}),
		CorrectionsExhausted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "diario_corrections_exhausted_total",
			Help: "Total validations still failing after the corrective pass",
		}),

		// API metrics
		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "diario_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "diario_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "diario_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		}),
		DBConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "diario_db_connections",
			Help: "Current number of database connections",
		}),
	}
}
