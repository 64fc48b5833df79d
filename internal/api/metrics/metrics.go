// Package metrics defines and registers all custom Prometheus metrics for the
// task manager API. It is the single source of truth for metric names,
// labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "taskmanager"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "failure", or "throttled"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// TokenVerificationsTotal counts bearer-token verifications performed by the
// authentication middleware.
// Label:
//   - result: "success", "missing_credential", "expired", "malformed", "wrong_token_type", "other"
var TokenVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_token_verifications_total",
		Help:      "Total number of token verifications, by result.",
	},
	[]string{"result"},
)

// PasswordHashDuration measures bcrypt verification/hashing latency. The work
// factor makes this deliberately slow; watch it when tuning BCRYPT_COST.
var PasswordHashDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "password_hash_duration_seconds",
		Help:      "Duration of bcrypt hash/verify operations.",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5},
	},
)

// ── Activity metrics ──────────────────────────────────────────────────────────

// ActivityProcessedTotal counts activity records that completed processing.
// Label:
//   - action: the recorded action ("created", "updated", "status_changed", "deleted")
var ActivityProcessedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "activity_processed_total",
		Help:      "Total number of task activity records successfully processed.",
	},
	[]string{"action"},
)

// ActivityErrorsTotal counts activity records that failed processing.
// Label:
//   - reason: short description of the failure (e.g. "insert_failed")
var ActivityErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "activity_errors_total",
		Help:      "Total number of task activity records that failed processing.",
	},
	[]string{"reason"},
)

// ActivityDedupTotal counts deduplication decisions.
// Label:
//   - result: "hit" (duplicate, skipped) or "miss" (new record, processed)
var ActivityDedupTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "activity_dedup_total",
		Help:      "Total number of deduplication checks, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// ActivityQueueDepth tracks the current number of records waiting in each
// dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var ActivityQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "activity_queue_depth",
		Help:      "Current number of activity records pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
