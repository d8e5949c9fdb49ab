package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Transaction metrics
	TransactionOperations *prometheus.CounterVec
	TransactionAmount     *prometheus.HistogramVec
	TransactionErrors     *prometheus.CounterVec

	// Account metrics
	AccountOperations *prometheus.CounterVec

	// Reconciliation metrics
	Reconciliations        prometheus.Counter
	ReconciliationDuration prometheus.Histogram
	ReconciliationDrift    prometheus.Counter

	// Statistics metrics
	StatisticsDuration *prometheus.HistogramVec

	// Outbox metrics
	OutboxPublished prometheus.Counter
	OutboxErrors    prometheus.Counter

	// Authentication metrics
	AuthFailures *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits prometheus.Counter
}

// New creates all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		TransactionOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fintrack_transaction_operations_total",
				Help: "Committed transaction mutations by operation",
			},
			[]string{"operation"},
		),
		TransactionAmount: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fintrack_transaction_amount",
				Help:    "Amounts of created transactions",
				Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
			},
			[]string{"type"},
		),
		TransactionErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fintrack_transaction_errors_total",
				Help: "Failed transaction mutations by operation and error kind",
			},
			[]string{"operation", "kind"},
		),

		AccountOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fintrack_account_operations_total",
				Help: "Committed account mutations by operation",
			},
			[]string{"operation"},
		),

		Reconciliations: factory.NewCounter(prometheus.CounterOpts{
			Name: "fintrack_reconciliations_total",
			Help: "Total number of balance reconciliations",
		}),
		ReconciliationDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "fintrack_reconciliation_duration_seconds",
			Help:    "Duration of balance reconciliations",
			Buckets: prometheus.DefBuckets,
		}),
		ReconciliationDrift: factory.NewCounter(prometheus.CounterOpts{
			Name: "fintrack_reconciliation_drift_total",
			Help: "Accounts whose stored balance differed from their transactions",
		}),

		StatisticsDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fintrack_statistics_duration_seconds",
				Help:    "Duration of statistics aggregation",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"report"},
		),

		OutboxPublished: factory.NewCounter(prometheus.CounterOpts{
			Name: "fintrack_outbox_published_total",
			Help: "Outbox events delivered to subscribers",
		}),
		OutboxErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "fintrack_outbox_errors_total",
			Help: "Outbox events that failed to publish",
		}),

		AuthFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fintrack_auth_failures_total",
				Help: "Total authentication failures",
			},
			[]string{"reason"},
		),

		RateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "fintrack_rate_limit_hits_total",
			Help: "Total rate limit hits",
		}),
	}
}
