// Package metrics defines and registers all custom Prometheus metrics for
// the task tracker. It is the single source of truth for metric names,
// labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tasktracker"

// DispatchesTotal counts endpoint dispatches by outcome.
// Labels:
//   - endpoint: the endpoint name (e.g. "tasks.create")
//   - outcome: "ok", "auth_error", "validation_error", "domain_error", "fault"
var DispatchesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dispatches_total",
		Help:      "Total number of endpoint dispatches, by endpoint and outcome.",
	},
	[]string{"endpoint", "outcome"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "created" (first login), "ok" (returning user), "rejected"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// TasksCreatedTotal counts newly created tasks.
var TasksCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_created_total",
		Help:      "Total number of tasks created.",
	},
)

// UsersSweptTotal counts users deleted by the retention sweep.
var UsersSweptTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_swept_total",
		Help:      "Total number of stale users deleted by the retention sweep.",
	},
)

// SweepDuration measures how long a full retention sweep pass takes.
var SweepDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "sweep_duration_seconds",
		Help:      "Duration of a full retention sweep pass.",
		Buckets:   prometheus.DefBuckets,
	},
)
