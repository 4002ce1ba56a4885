package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PipelineRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediabot_pipeline_runs_total",
			Help: "Total pipeline runs by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	PipelineDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "mediabot_pipeline_duration_seconds",
			Help: "Pipeline run duration in seconds",
		},
		[]string{"kind"},
	)

	ActiveConversations = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mediabot_active_conversations",
			Help: "Number of live conversations",
		},
	)

	TransportSendFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mediabot_transport_send_failures_total",
			Help: "Outbound deliveries that failed",
		},
	)

	StaleResultsDiscarded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mediabot_stale_results_discarded_total",
			Help: "Pipeline results discarded because the conversation moved on",
		},
	)
)
