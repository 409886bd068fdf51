// Package metrics defines the custom Prometheus metrics of the user
// management API. HTTP request metrics come from echoprometheus; these cover
// authentication and account changes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "usermgmt"

// AuthAttemptsTotal counts register, login and logout calls.
// Labels:
//   - operation: "register", "login", "logout"
//   - result: "success", "invalid_credentials", "validation_failed", "error"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of authentication attempts, by operation and result.",
	},
	[]string{"operation", "result"},
)

// GateDecisionsTotal counts access decisions made by the auth middleware.
// Label:
//   - result: "authenticated", "unauthenticated", "error" from the token check,
//     "allowed" or "forbidden" from the role check
var GateDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gate_decisions_total",
		Help:      "Total number of access decisions on protected routes.",
	},
	[]string{"result"},
)

// UserMutationsTotal counts successful account changes.
// Label:
//   - operation: "update_self", "create", "update", "delete"
var UserMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "user_mutations_total",
		Help:      "Total number of successful user account mutations.",
	},
	[]string{"operation"},
)

