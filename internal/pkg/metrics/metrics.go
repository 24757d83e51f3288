// Package metrics defines and registers all custom Prometheus metrics for the
// camp enrollment API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on package
// init via promauto; the router exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "camp"

// ── Access control ────────────────────────────────────────────────────────────

// AuthRejectionsTotal counts credentials rejected by the auth guard.
// Label:
//   - reason: "missing", "malformed" or "invalid" (clients always see 401)
var AuthRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_rejections_total",
		Help:      "Total number of requests rejected by the auth guard, by reason.",
	},
	[]string{"reason"},
)

// RoleDecisionsTotal counts role gate decisions.
// Label:
//   - result: "allow" or "forbid"
var RoleDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "role_decisions_total",
		Help:      "Total number of role gate decisions, by result.",
	},
	[]string{"result"},
)

// TokensIssuedTotal counts credentials minted by the token issuer.
var TokensIssuedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_issued_total",
		Help:      "Total number of bearer credentials issued.",
	},
)

// ── Enrollment ────────────────────────────────────────────────────────────────

// EnrollmentCommitsTotal counts commit attempts by outcome.
// Label:
//   - result: "committed", "replayed", "declined", "conflict" or "failed"
var EnrollmentCommitsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "enrollment_commits_total",
		Help:      "Total number of enrollment commit attempts, by result.",
	},
	[]string{"result"},
)

// CommitCompensationsTotal counts saga compensations executed after a failed commit.
// Labels:
//   - step: the compensated step (e.g. "delete_payment", "revert_enrollment", "void_authorization")
//   - result: "ok" or "error"
var CommitCompensationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "commit_compensations_total",
		Help:      "Total number of compensating actions run for failed enrollment commits.",
	},
	[]string{"step", "result"},
)

// PaymentCapturesTotal counts gateway captures after committed enrollments.
// Label:
//   - result: "ok" or "error"
var PaymentCapturesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payment_captures_total",
		Help:      "Total number of payment authorizations captured after a commit, by result.",
	},
	[]string{"result"},
)

// CommitDuration measures a commit from lock acquisition to the final write.
var CommitDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "enrollment_commit_duration_seconds",
		Help:      "Duration of enrollment commits.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ── Classes ───────────────────────────────────────────────────────────────────

// ClassReviewsTotal counts admin review decisions.
// Label:
//   - decision: "accepted" or "denied"
var ClassReviewsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "class_reviews_total",
		Help:      "Total number of class review decisions.",
	},
	[]string{"decision"},
)

// ── Activity audit ────────────────────────────────────────────────────────────

// ActivityProcessedTotal counts audit events persisted, by kind.
var ActivityProcessedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "activity_processed_total",
		Help:      "Total number of audit events persisted.",
	},
	[]string{"kind"},
)

// ActivityErrorsTotal counts audit events that could not be persisted.
var ActivityErrorsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "activity_errors_total",
		Help:      "Total number of audit events that failed to persist.",
	},
)

// ActivityQueueDepth tracks pending events in each dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index
var ActivityQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "activity_queue_depth",
		Help:      "Current number of audit events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
