package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ClaimsRebuildsTotal counts claims materializer invocations by outcome.
	ClaimsRebuildsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "claims_rebuilds_total",
			Help: "Total number of authorization claims rebuilds",
		},
		[]string{"trigger", "outcome"},
	)

	// ClaimsOverflowsTotal counts rebuilds whose payload exceeded the size budget.
	ClaimsOverflowsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "claims_overflows_total",
			Help: "Total number of claims payloads degraded for exceeding the size budget",
		},
	)

	// SweepOrganizationsTotal counts organizations processed by the cleanup sweep.
	SweepOrganizationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sweep_organizations_total",
			Help: "Total number of organizations processed by the cleanup sweep",
		},
		[]string{"outcome"},
	)

	// SweepRunDurationSeconds measures full sweep run durations.
	SweepRunDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sweep_run_duration_seconds",
			Help:    "Duration of cleanup sweep runs in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 14),
		},
	)
)

// LifecycleCollectors returns the collectors owned by the lifecycle core.
func LifecycleCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		ClaimsRebuildsTotal,
		ClaimsOverflowsTotal,
		SweepOrganizationsTotal,
		SweepRunDurationSeconds,
	}
}
