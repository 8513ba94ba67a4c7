package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ScreeningsProcessed counts completed screening runs by decision
var ScreeningsProcessed = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "amlguard_screenings_total",
		Help: "Total number of screening runs completed, by decision",
	},
	[]string{"decision"},
)

// ScreeningLatency records latency distribution for full screening runs
var ScreeningLatency = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "amlguard_screening_duration_seconds",
		Help:    "Latency in seconds to screen a single case",
		Buckets: prometheus.DefBuckets,
	},
)

// StageFailures counts stage-internal failures degraded under the
// soft-failure contract
var StageFailures = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "amlguard_stage_failures_total",
		Help: "Total number of stage-internal failures degraded to zero contribution",
	},
	[]string{"stage"},
)

// SARsFiled counts cases routed to automatic SAR filing
var SARsFiled = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "amlguard_sars_filed_total",
		Help: "Total number of cases that triggered SAR filing",
	},
)

func init() {
	prometheus.MustRegister(ScreeningsProcessed, ScreeningLatency)
	prometheus.MustRegister(StageFailures, SARsFiled)
}
