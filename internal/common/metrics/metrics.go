package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProviderAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_provider_attempts_total",
			Help: "Provider HTTP attempts by operation and outcome code",
		},
		[]string{"operation", "code"},
	)

	ProviderLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_provider_request_duration_seconds",
			Help:    "Latency of a single provider HTTP attempt",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 90},
		},
		[]string{"operation"},
	)

	CapabilityFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_provider_capability_fallbacks_total",
			Help: "Requests retried without optional parameters after a 400/422",
		},
		[]string{"operation"},
	)

	GenerationOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_generation_outcomes_total",
			Help: "Finished generations by operation and degrade reason (none when fresh)",
		},
		[]string{"operation", "degrade_reason"},
	)

	SchemaRepairAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_schema_repair_attempts_total",
			Help: "Repair calls issued after a schema validation failure",
		},
		[]string{"operation"},
	)

	ReplayServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_replay_served_total",
			Help: "Replay records served instead of a live generation",
		},
		[]string{"operation", "mode"},
	)

	StoreWriteFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_store_write_failures_total",
			Help: "Failed writes of replay records or call log entries",
		},
		[]string{"store"},
	)

	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)
)

// DegradeLabel maps an empty degrade reason to a stable label value.
func DegradeLabel(reason string) string {
	if reason == "" {
		return "none"
	}
	return reason
}
