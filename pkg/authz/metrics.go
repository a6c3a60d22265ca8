// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rolecall Contributors

package authz

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Decision outcome labels.
const (
	outcomeAllow = "allow"
	outcomeDeny  = "deny"
	outcomeError = "error"
)

var (
	// decisionDuration tracks the latency of authorization checks.
	decisionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "authz_decision_duration_seconds",
		Help:    "Histogram of authorization decision latency in seconds",
		Buckets: prometheus.DefBuckets,
	})

	// decisions counts checks by outcome.
	decisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "authz_decisions_total",
		Help: "Total number of authorization decisions",
	}, []string{"outcome"})

	// predicateErrors counts membership/condition predicate failures.
	predicateErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "authz_predicate_errors_total",
		Help: "Total number of errors raised by policy predicates",
	})

	// rolesDefined tracks the number of roles currently registered.
	rolesDefined = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "authz_roles_defined",
		Help: "Number of roles currently held in registries",
	})
)

// recordDecision records latency and outcome for a completed check.
func recordDecision(d time.Duration, outcome string) {
	decisionDuration.Observe(d.Seconds())
	decisions.WithLabelValues(outcome).Inc()
}
