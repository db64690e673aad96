package infra

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus counters for the betting core. Registered on the default
// registry and exposed via /metrics.
var (
	CouponsPlaced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nextbet_coupons_placed_total",
		Help: "Number of coupons accepted.",
	})

	CouponsSettled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nextbet_coupons_settled_total",
		Help: "Number of coupons reaching a terminal state, by outcome.",
	}, []string{"status"})

	CashoutsExecuted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "nextbet_cashouts_total",
		Help: "Number of successful cashouts.",
	})

	LedgerEntries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nextbet_ledger_entries_total",
		Help: "Number of points ledger entries posted, by type.",
	}, []string{"type"})
)
