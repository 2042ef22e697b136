// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
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

	RankingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ranking_duration_seconds",
			Help:    "Duration of full candidate ranking runs in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	RankingCandidatesEvaluated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ranking_candidates_evaluated_total",
			Help: "Total number of candidates scored by the ranking engine",
		},
	)

	RankingCandidatesRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ranking_candidates_rejected_total",
			Help: "Total number of candidates rejected by score thresholds",
		},
	)

	EmbeddingFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "embedding_fallbacks_total",
			Help: "Total number of text similarity calls degraded to the lexical strategy",
		},
	)

	CVAnalysisCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cv_analysis_cache_total",
			Help: "CV analysis cache lookups by outcome",
		},
		[]string{"outcome"},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Total recommendation notifications sent by channel",
		},
		[]string{"channel", "status"},
	)
)
