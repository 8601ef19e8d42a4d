package services

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// Registry holds the ledger service collectors.
	Registry = prometheus.NewRegistry()

	challengesCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "contest_ledger",
			Subsystem: "challenges",
			Name:      "created_total",
			Help:      "Total number of challenges created.",
		},
	)

	challengeJoins = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "contest_ledger",
			Subsystem: "challenges",
			Name:      "joins_total",
			Help:      "Total number of participants added to challenges.",
		},
	)

	challengePayouts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "contest_ledger",
			Subsystem: "challenges",
			Name:      "payout_amount_total",
			Help:      "Total prize amount paid out to winners, by asset.",
		},
		[]string{"asset"},
	)

	challengesAwaitingWinner = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "contest_ledger",
			Subsystem: "challenges",
			Name:      "awaiting_winner",
			Help:      "Active challenges past their end date, as of the last sweep.",
		},
	)

	donationsRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "contest_ledger",
			Subsystem: "donations",
			Name:      "recorded_total",
			Help:      "Total number of donations recorded, by asset.",
		},
		[]string{"asset"},
	)

	operationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "contest_ledger",
			Subsystem: "entrypoints",
			Name:      "failures_total",
			Help:      "Entry point failures by operation and kind.",
		},
		[]string{"operation", "kind"},
	)
)

func init() {
	Registry.MustRegister(
		challengesCreated,
		challengeJoins,
		challengePayouts,
		challengesAwaitingWinner,
		donationsRecorded,
		operationFailures,
	)
}

func recordFailure(operation string, err error) {
	operationFailures.WithLabelValues(operation, string(Classify(err))).Inc()
}
