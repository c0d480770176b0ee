// Package metrics defines the Prometheus metrics of the POS server. All metrics
// register with the default registry when the package is imported.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pos"

// SessionTransitionsTotal counts accepted session events.
// Label:
//   - event: "login_succeeded" or "logged_out"
var SessionTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_transitions_total",
		Help:      "Total number of client session transitions, by event.",
	},
	[]string{"event"},
)

// SessionLoadsTotal counts finished session fetches.
// Label:
//   - result: "authenticated", "unauthenticated" or "cancelled"
var SessionLoadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_loads_total",
		Help:      "Total number of session loader runs, by outcome.",
	},
	[]string{"result"},
)

// RouteGuardDecisionsTotal counts guard evaluations.
// Label:
//   - decision: "guarded" or "redirecting"
var RouteGuardDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "route_guard_decisions_total",
		Help:      "Total number of route guard evaluations, by decision.",
	},
	[]string{"decision"},
)

// CORSRejectionsTotal counts requests refused because of their Origin.
var CORSRejectionsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cors_rejections_total",
		Help:      "Total number of requests rejected by the CORS allow-list.",
	},
)

// HTTPRequestsTotal counts served requests.
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests, by method and status code.",
	},
	[]string{"method", "status"},
)

// HTTPRequestDuration measures request latency by matched route.
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"route"},
)

// RealtimeClients tracks open websocket connections on the hub.
var RealtimeClients = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "realtime_clients",
		Help:      "Current number of connected realtime websocket clients.",
	},
)

// RealtimeDroppedTotal counts messages discarded because the publish queue was full.
var RealtimeDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "realtime_dropped_messages_total",
		Help:      "Realtime messages dropped because the publish queue was full.",
	},
)
