package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	dispatchOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_dispatch_outcomes_total",
			Help: "Total number of dispatch invocations by outcome.",
		},
		[]string{"outcome"},
	)

	pushResultsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_push_results_total",
			Help: "Total number of per-token push results by status.",
		},
		[]string{"status"},
	)

	prunedTokensTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifications_pruned_tokens_total",
		Help: "Total number of dead tokens removed from token sets.",
	})

	testTriggersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_test_triggers_total",
			Help: "Total number of manual test notifications by status.",
		},
		[]string{"status"},
	)
)
