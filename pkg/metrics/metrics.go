package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	stitchup = "stitchup"

	// Transition metrics
	jobTransitionsTotal = "job_transitions_total"
	JobStatusCount      = "job_status_count"

	// Capacity metrics
	counterUnderflowsTotal = "tailor_counter_underflows_total"

	// Fanout metrics
	fanoutEventsTotal = "fanout_events_total"
	fanoutDropsTotal  = "fanout_drops_total"

	// Labels
	actionLabel  = "action"
	outcomeLabel = "outcome"
	statusLabel  = "status"
	counterLabel = "counter"
	kindLabel    = "kind"
)

/**
* Metrics definition
**/
var jobTransitionsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: stitchup,
		Name:      jobTransitionsTotal,
		Help:      "number of lifecycle transitions attempted, by action and outcome",
	},
	[]string{actionLabel, outcomeLabel},
)

var jobStatusCountMetric = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Subsystem: stitchup,
		Name:      JobStatusCount,
		Help:      "number of jobs in each status",
	},
	[]string{statusLabel},
)

var counterUnderflowsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: stitchup,
		Name:      counterUnderflowsTotal,
		Help:      "number of tailor counter decrements that were floored at zero",
	},
	[]string{counterLabel},
)

var fanoutEventsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: stitchup,
		Name:      fanoutEventsTotal,
		Help:      "number of events delivered to job subscribers",
	},
	[]string{kindLabel},
)

var fanoutDropsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: stitchup,
		Name:      fanoutDropsTotal,
		Help:      "number of events dropped because a subscriber buffer was full",
	},
	[]string{kindLabel},
)

func IncreaseJobTransitionsTotalMetric(action, outcome string) {
	jobTransitionsTotalMetric.With(prometheus.Labels{
		actionLabel:  action,
		outcomeLabel: outcome,
	}).Inc()
}

func UpdateJobStatusCountMetric(status string, count int) {
	jobStatusCountMetric.With(prometheus.Labels{
		statusLabel: status,
	}).Set(float64(count))
}

func IncreaseCounterUnderflowsTotalMetric(counter string) {
	counterUnderflowsTotalMetric.With(prometheus.Labels{
		counterLabel: counter,
	}).Inc()
}

func IncreaseFanoutEventsTotalMetric(kind string) {
	fanoutEventsTotalMetric.With(prometheus.Labels{kindLabel: kind}).Inc()
}

func IncreaseFanoutDropsTotalMetric(kind string) {
	fanoutDropsTotalMetric.With(prometheus.Labels{kindLabel: kind}).Inc()
}

func init() {
	registerMetrics()
}

func registerMetrics() {
	prometheus.MustRegister(jobTransitionsTotalMetric)
	prometheus.MustRegister(jobStatusCountMetric)
	prometheus.MustRegister(counterUnderflowsTotalMetric)
	prometheus.MustRegister(fanoutEventsTotalMetric)
	prometheus.MustRegister(fanoutDropsTotalMetric)
}
