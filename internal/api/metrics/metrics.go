// Package metrics defines and registers all custom Prometheus metrics for
// the auth service. It is the single source of truth for metric names,
// labels, and help strings; registration happens implicitly via promauto at
// package load.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "auth"

// LoginsTotal counts login attempts.
// Label:
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// TokenValidationsTotal counts token validation outcomes on the guard path.
// Label:
//   - result: "ok", "invalid", "revoked", "account_not_found",
//     "account_disabled", or "store_error"
var TokenValidationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_validations_total",
		Help:      "Total number of token validations, by outcome.",
	},
	[]string{"result"},
)

// AccessDecisionsTotal counts terminal guard decisions per request.
// Label:
//   - decision: "public", "allow", "unauthenticated", or "forbidden"
var AccessDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_decisions_total",
		Help:      "Total number of access decisions, by terminal outcome.",
	},
	[]string{"decision"},
)

// RevocationsTotal counts logout-time revocation writes.
// Label:
//   - result: "ok" (entry stored or nothing left to revoke) or "error"
//     (store unreachable, logout still succeeded)
var RevocationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "revocations_total",
		Help:      "Total number of token revocation attempts, by result.",
	},
	[]string{"result"},
)

// TokenValidationDuration measures the full validation chain: parse,
// revocation check, and account re-fetch.
var TokenValidationDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "token_validation_duration_seconds",
		Help:      "Duration of the token validation chain.",
		Buckets:   prometheus.DefBuckets,
	},
)
