package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TriggerCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkin_trigger_total",
			Help: "Total number of check-in triggers by slot and outcome",
		},
		[]string{"slot", "outcome"}, // outcome: initiated, config_error, failed
	)

	DegradedStageCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkin_degraded_stage_total",
			Help: "Total number of pipeline stages that fell back to a default",
		},
		[]string{"stage"},
	)

	ExternalCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "checkin_external_call_duration_seconds",
			Help:    "Latency of calls to the voice platform and the LLM",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
		},
		[]string{"target", "status"},
	)
)

func RecordTrigger(slot, outcome string) {
	TriggerCount.WithLabelValues(slot, outcome).Inc()
}

func RecordDegraded(stage string) {
	DegradedStageCount.WithLabelValues(stage).Inc()
}

// RecordExternalCall observes one outbound call. status is "ok" or "error".
func RecordExternalCall(target string, err error, duration time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	ExternalCallDuration.WithLabelValues(target, status).Observe(duration.Seconds())
}
