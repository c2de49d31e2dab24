package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Settlement lifecycle counters and histograms, partitioned by fund mode
// ("native" or "token") where the distinction matters.

var (
	VaultsInitialized = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "bulkpay",
		Subsystem: "vault",
		Name:      "initialized_total",
		Help:      "Total vaults initialized",
	})

	BatchesCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bulkpay",
		Subsystem: "batch",
		Name:      "created_total",
		Help:      "Total batches created",
	}, []string{"mode"})

	BatchesExecuted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bulkpay",
		Subsystem: "batch",
		Name:      "executed_total",
		Help:      "Total batches executed",
	}, []string{"mode"})

	BatchesCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "bulkpay",
		Subsystem: "batch",
		Name:      "cancelled_total",
		Help:      "Total batches cancelled",
	})

	ExecuteErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bulkpay",
		Subsystem: "batch",
		Name:      "execute_errors_total",
		Help:      "Total failed batch executions",
	}, []string{"reason"})

	RecipientsDisbursed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bulkpay",
		Subsystem: "disbursement",
		Name:      "recipients_total",
		Help:      "Total recipients paid across executed batches",
	}, []string{"mode"})

	AmountDisbursed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bulkpay",
		Subsystem: "disbursement",
		Name:      "amount_total",
		Help:      "Total value disbursed across executed batches (base units)",
	}, []string{"mode"})

	ExecuteLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "bulkpay",
		Subsystem: "batch",
		Name:      "execute_duration_seconds",
		Help:      "Batch execution duration (DB transaction included)",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"mode"})

	EventPublishErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "bulkpay",
		Subsystem: "events",
		Name:      "publish_errors_total",
		Help:      "Total event log publish failures (post-commit, best-effort)",
	})
)

// Reconciliation and alerting.

var (
	ReconcileRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "bulkpay",
		Subsystem: "reconcile",
		Name:      "runs_total",
		Help:      "Total ledger reconciliation runs",
	})

	ReconcileMismatchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "bulkpay",
		Subsystem: "reconcile",
		Name:      "mismatches_total",
		Help:      "Total vaults found with counter drift across all runs",
	})

	ReconcileDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "bulkpay",
		Subsystem: "reconcile",
		Name:      "duration_seconds",
		Help:      "Duration of a full reconciliation run",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
	})

	AlertsSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bulkpay",
		Subsystem: "alerts",
		Name:      "sent_total",
		Help:      "Total alerts delivered, by channel and type",
	}, []string{"channel", "type"})

	AlertsCooldownSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "bulkpay",
		Subsystem: "alerts",
		Name:      "cooldown_skipped_total",
		Help:      "Total alerts suppressed by the cooldown window",
	}, []string{"channel", "type"})
)
