// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	backendRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stbbridge_backend_request_duration_seconds",
		Help:    "Vendor bridge request latencies per attempt",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	backendRequestRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stbbridge_backend_request_retries_total",
		Help: "Vendor bridge request attempts that were retried",
	}, []string{"method", "route"})

	backendRequestErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stbbridge_backend_request_errors_total",
		Help: "Vendor bridge request attempts that failed at transport level",
	}, []string{"method", "route"})
)

// ObserveBackendAttempt records one attempt of a vendor bridge request.
func ObserveBackendAttempt(method, route string, status int, d time.Duration, err error, retried bool) {
	statusLabel := strconv.Itoa(status)
	if status == 0 {
		statusLabel = "none"
	}
	backendRequestDuration.WithLabelValues(method, route, statusLabel).Observe(d.Seconds())
	if err != nil {
		backendRequestErrors.WithLabelValues(method, route).Inc()
	}
	if retried {
		backendRequestRetries.WithLabelValues(method, route).Inc()
	}
}

var (
	breakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "stbbridge_circuit_breaker_state",
		Help: "Circuit breaker state per component (1 for the active state)",
	}, []string{"component", "state"})

	breakerTrips = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stbbridge_circuit_breaker_trips_total",
		Help: "Circuit breaker transitions to open",
	}, []string{"component", "reason"})
)

var breakerStates = []string{"closed", "open", "half-open"}

// SetBreakerState marks state as the active state of component.
func SetBreakerState(component, state string) {
	for _, s := range breakerStates {
		v := 0.0
		if s == state {
			v = 1
		}
		breakerState.WithLabelValues(component, s).Set(v)
	}
}

func RecordBreakerTrip(component, reason string) {
	breakerTrips.WithLabelValues(component, reason).Inc()
}
