// Package metrics defines and registers all custom Prometheus metrics for the
// support system. It is the single source of truth for metric names, labels,
// and help strings.
//
// All metrics register with the default Prometheus registry at package init,
// so importing this package is enough.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "support"

// ── Chat metrics ──────────────────────────────────────────────────────────────

// ChatAnswersTotal counts answered chat questions.
// Label:
//   - type: which tier produced the answer ("exact", "fuzzy", "keyword", "llm")
var ChatAnswersTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "chat_answers_total",
		Help:      "Total number of chat questions answered, by answer type.",
	},
	[]string{"type"},
)

// ChatFallbacksTotal counts questions that ended in the static fallback
// answer because every model in the LLM chain failed or returned nothing.
var ChatFallbacksTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "chat_fallbacks_total",
		Help:      "Total number of chat questions answered with the static fallback.",
	},
)

// LLMRequestDuration measures the latency of a single upstream completion call.
// Labels:
//   - model: the model requested (e.g. "gpt-4o-mini")
//   - outcome: "ok" or "error"
var LLMRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "llm_request_duration_seconds",
		Help:      "Duration of upstream LLM completion calls.",
		Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 20, 30},
	},
	[]string{"model", "outcome"},
)

// KnowledgeEntriesTotal counts entries appended to the knowledge base at
// runtime (LLM answers judged relevant enough to keep).
var KnowledgeEntriesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "knowledge_entries_total",
		Help:      "Total number of entries appended to the knowledge base at runtime.",
	},
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthRequestsTotal counts authentication operations.
// Labels:
//   - operation: "register", "login", "refresh", "logout", "reset_request", "reset"
//   - outcome: "ok" or "error"
var AuthRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_requests_total",
		Help:      "Total number of authentication operations, by operation and outcome.",
	},
	[]string{"operation", "outcome"},
)
