// Package metrics defines and registers all custom Prometheus metrics for the
// delivery confirmation API. It is the single source of truth for metric
// names, labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on import via
// promauto; HTTP request metrics come from the echoprometheus middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "entregas"

// ── Dashboard metrics ─────────────────────────────────────────────────────────

// DeliveriesCreatedTotal counts delivery records created by sellers.
var DeliveriesCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "deliveries_created_total",
		Help:      "Total number of delivery records created.",
	},
)

// ── Confirmation metrics ──────────────────────────────────────────────────────

// CodeVerificationsTotal counts access code checks.
// Labels:
//   - strategy: "targeted" (delivery id known) or "universal" (code only)
//   - result: "accepted" or "rejected"
var CodeVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "code_verifications_total",
		Help:      "Total number of access code verifications, by strategy and result.",
	},
	[]string{"strategy", "result"},
)

// LocationSubmissionsTotal counts location submissions.
// Label:
//   - result: "located" or the failure reason (e.g. "permission_denied", "upload_failed")
var LocationSubmissionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "location_submissions_total",
		Help:      "Total number of location submissions, by result.",
	},
	[]string{"result"},
)

// PhotoUploadsTotal counts photo uploads to the storage bucket.
var PhotoUploadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "photo_uploads_total",
		Help:      "Total number of customer photo uploads, by result.",
	},
	[]string{"result"},
)

// SubmissionDuration measures a successful submission from geolocation to
// the final record update.
var SubmissionDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "submission_duration_seconds",
		Help:      "Duration of successful location submissions.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ── Audit metrics ─────────────────────────────────────────────────────────────

// AuditQueueDepth tracks the number of audit events waiting in each worker channel.
var AuditQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "audit_queue_depth",
		Help:      "Current number of audit events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// AuditEventsErrorsTotal counts audit events that could not be persisted.
var AuditEventsErrorsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_errors_total",
		Help:      "Total number of audit events that failed to persist.",
	},
)
