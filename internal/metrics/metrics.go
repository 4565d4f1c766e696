package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SettlementsTotal counts ledger settlements by transaction type.
var SettlementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "peerrent",
	Subsystem: "ledger",
	Name:      "settlements_total",
	Help:      "Number of ledger settlements applied, by transaction type.",
}, []string{"type"})

// SettlementFailures counts rejected settlements (insufficient balance etc).
var SettlementFailures = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "peerrent",
	Subsystem: "ledger",
	Name:      "settlement_failures_total",
	Help:      "Number of settlements rejected before applying.",
})

// BookingTransitions counts booking status transitions by target status.
var BookingTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "peerrent",
	Subsystem: "booking",
	Name:      "transitions_total",
	Help:      "Number of booking state transitions, by target status.",
}, []string{"to"})

// SweepErrors counts per-row failures inside scheduler sweeps. Sweeps log
// and continue; this is how those skips stay visible.
var SweepErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "peerrent",
	Subsystem: "scheduler",
	Name:      "sweep_errors_total",
	Help:      "Number of per-booking errors skipped during sweeps, by job.",
}, []string{"job"})

// SweepTransitions counts time-driven transitions applied by sweeps.
var SweepTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "peerrent",
	Subsystem: "scheduler",
	Name:      "sweep_transitions_total",
	Help:      "Number of time-driven transitions applied, by job.",
}, []string{"job"})
