// Package metrics defines and registers all custom Prometheus metrics for
// the invoicing API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register with the default Prometheus registry at package load;
// the /metrics endpoint exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "invoicing"

// ── Invoice metrics ──────────────────────────────────────────────────────────

// InvoicesCreatedTotal counts newly created invoices.
var InvoicesCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "invoices_created_total",
		Help:      "Total number of invoices created.",
	},
)

// InvoicePartialWritesTotal counts invoice writes where the parent row was
// stored but the item replacement failed.
var InvoicePartialWritesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "invoice_partial_writes_total",
		Help:      "Total number of invoice writes that left items inconsistent.",
	},
)

// ── Chat metrics ─────────────────────────────────────────────────────────────

// ChatRequestsTotal counts chat completions.
// Label:
//   - outcome: "ok" or "error"
var ChatRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "chat_requests_total",
		Help:      "Total number of chat completion requests, by outcome.",
	},
	[]string{"outcome"},
)

// ChatRequestDuration measures end-to-end chat request time, retrieval
// included.
var ChatRequestDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "chat_request_duration_seconds",
		Help:      "Duration of chat requests from retrieval to completion.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ── Exchange-rate metrics ────────────────────────────────────────────────────

// RateLookupsTotal counts exchange-rate lookups.
// Label:
//   - result: "ok", "unavailable", or "error"
var RateLookupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_lookups_total",
		Help:      "Total number of exchange-rate lookups, by result.",
	},
	[]string{"result"},
)

// ── Session metrics ──────────────────────────────────────────────────────────

// SessionRefreshTotal counts session refresh attempts.
// Label:
//   - outcome: "ok" or "error"
var SessionRefreshTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_refresh_total",
		Help:      "Total number of session refresh attempts, by outcome.",
	},
	[]string{"outcome"},
)

// SessionChangesTotal counts provider push notifications applied.
// Label:
//   - type: the notification type (signed_in, signed_out, ...)
var SessionChangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_changes_total",
		Help:      "Total number of provider session notifications applied, by type.",
	},
	[]string{"type"},
)
