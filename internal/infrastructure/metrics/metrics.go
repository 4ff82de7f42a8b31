package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Client metrics
	ClientsCreated prometheus.Counter
	ClientsDeleted prometheus.Counter

	// Balance metrics
	BalanceMutations    *prometheus.CounterVec
	BalanceMutationTime prometheus.Histogram
	BalanceDelta        prometheus.Histogram
	MutationConflicts   prometheus.Counter
	MutationErrors      *prometheus.CounterVec

	// Invoice and transaction metrics
	InvoicesCreated     *prometheus.CounterVec
	InvoicesVoided      prometheus.Counter
	TransactionsCreated *prometheus.CounterVec
	TransactionsVoided  prometheus.Counter

	// Reconciliation metrics
	ReconciliationRuns       prometheus.Counter
	ReconciliationMismatches prometheus.Counter

	// Outbox metrics
	EventsPublished prometheus.Counter
	OutboxErrors    prometheus.Counter

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Database metrics
	DBConnections prometheus.Gauge

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec

	// Audit metrics
	AuditLogsCreated *prometheus.CounterVec
}

// New creates all metrics and registers them with reg. A nil reg falls back
// to the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Metrics{
		ClientsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "bizledger_clients_created_total",
			Help: "Total number of clients created",
		}),
		ClientsDeleted: f.NewCounter(prometheus.CounterOpts{
			Name: "bizledger_clients_deleted_total",
			Help: "Total number of clients deleted",
		}),

		BalanceMutations: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bizledger_balance_mutations_total",
				Help: "Total balance mutations by history type",
			},
			[]string{"type"},
		),
		BalanceMutationTime: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "bizledger_balance_mutation_duration_seconds",
			Help:    "Duration of units of work that mutate a client balance",
			Buckets: prometheus.DefBuckets,
		}),
		BalanceDelta: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "bizledger_balance_delta",
			Help:    "Absolute balance deltas applied",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),
		MutationConflicts: f.NewCounter(prometheus.CounterOpts{
			Name: "bizledger_balance_conflicts_total",
			Help: "Balance writes rejected by the version guard",
		}),
		MutationErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bizledger_balance_mutation_errors_total",
				Help: "Failed balance mutations by error type",
			},
			[]string{"error_type"},
		),

		InvoicesCreated: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bizledger_invoices_created_total",
				Help: "Total invoices created by type",
			},
			[]string{"type"},
		),
		InvoicesVoided: f.NewCounter(prometheus.CounterOpts{
			Name: "bizledger_invoices_voided_total",
			Help: "Total invoices voided",
		}),
		TransactionsCreated: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bizledger_transactions_created_total",
				Help: "Total transactions created by type",
			},
			[]string{"type"},
		),
		TransactionsVoided: f.NewCounter(prometheus.CounterOpts{
			Name: "bizledger_transactions_voided_total",
			Help: "Total transactions voided",
		}),

		ReconciliationRuns: f.NewCounter(prometheus.CounterOpts{
			Name: "bizledger_reconciliation_runs_total",
			Help: "Total client reconciliations performed",
		}),
		ReconciliationMismatches: f.NewCounter(prometheus.CounterOpts{
			Name: "bizledger_reconciliation_mismatches_total",
			Help: "Clients whose stored balance disagreed with the ledger",
		}),

		EventsPublished: f.NewCounter(prometheus.CounterOpts{
			Name: "bizledger_outbox_events_published_total",
			Help: "Outbox events published",
		}),
		OutboxErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "bizledger_outbox_errors_total",
			Help: "Outbox polling or publishing failures",
		}),

		HTTPRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bizledger_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bizledger_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		DBConnections: f.NewGauge(prometheus.GaugeOpts{
			Name: "bizledger_db_connections",
			Help: "Current number of acquired database connections",
		}),

		RateLimitHits: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bizledger_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"ip"},
		),

		AuditLogsCreated: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bizledger_audit_logs_total",
				Help: "Total audit logs created",
			},
			[]string{"action", "status"},
		),
	}
}
