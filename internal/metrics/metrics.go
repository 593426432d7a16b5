package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EngagementOps counts likes, comments and follows by outcome.
	EngagementOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fillog_engagement_ops_total",
		Help: "Total number of engagement operations by operation and result",
	}, []string{"op", "result"})

	// PartialFailures counts multi-entity operations left half applied.
	PartialFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fillog_partial_failures_total",
		Help: "Total number of engagement operations that could not be rolled back",
	}, []string{"op"})

	// Repairs counts reconciliation repairs by kind and result.
	Repairs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fillog_repairs_total",
		Help: "Total number of reconciliation repairs by kind and result",
	}, []string{"kind", "result"})
)
