// SPDX-License-Identifier: MIT
// Package: lvconnect/connect
//
// metrics.go - Prometheus metrics of connection runs.

package connect

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// connectionsInstalled counts installed connections per rule, all
	// channels and mediator edges included.
	connectionsInstalled = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lvconnect",
		Subsystem: "connect",
		Name:      "connections_installed_total",
		Help:      "Connections installed, by rule.",
	}, []string{"rule"})

	// connectionsRemoved counts connections deleted by Disconnect per rule.
	connectionsRemoved = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lvconnect",
		Subsystem: "connect",
		Name:      "connections_removed_total",
		Help:      "Connections removed by disconnect calls, by rule.",
	}, []string{"rule"})

	// connectDuration records wall time of Connect calls per rule.
	connectDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "lvconnect",
		Subsystem: "connect",
		Name:      "duration_seconds",
		Help:      "Duration of connect calls, by rule.",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
	}, []string{"rule"})

	// policyRedraws counts draws rejected by the autapse/multapse policy.
	policyRedraws = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lvconnect",
		Subsystem: "connect",
		Name:      "policy_redraws_total",
		Help:      "Draws rejected by the autapse or multapse policy, by rule.",
	}, []string{"rule"})

	// mediationFailures counts third-factor edges that were not installed.
	mediationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lvconnect",
		Subsystem: "connect",
		Name:      "mediation_failures_total",
		Help:      "Third-factor edges that could not be installed, by third rule.",
	}, []string{"rule"})

	// connectErrors counts failed connect calls by error class.
	connectErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lvconnect",
		Subsystem: "connect",
		Name:      "errors_total",
		Help:      "Failed connect calls, by error class (config, fatal).",
	}, []string{"class"})
)

func errorClass(err error) string {
	if IsConfigError(err) {
		return "config"
	}

	return "fatal"
}
