// Package metrics provides Prometheus metrics for the ingestion pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	jobsClaimed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "eventscope",
		Subsystem: "worker",
		Name:      "jobs_claimed_total",
		Help:      "Number of ingestion jobs claimed from the job store.",
	})

	jobsFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eventscope",
		Subsystem: "worker",
		Name:      "jobs_finished_total",
		Help:      "Number of ingestion jobs reaching a terminal state.",
	}, []string{"status"})

	linesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "eventscope",
		Subsystem: "worker",
		Name:      "lines_processed_total",
		Help:      "Number of input lines successfully ingested as events.",
	})

	lineErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "eventscope",
		Subsystem: "worker",
		Name:      "line_errors_total",
		Help:      "Number of input lines rejected during parsing or validation.",
	})

	jobDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "eventscope",
		Subsystem: "worker",
		Name:      "job_duration_seconds",
		Help:      "Wall-clock time spent processing one job.",
		Buckets:   prometheus.DefBuckets,
	})
)

// RecordJobClaimed counts one successful claim.
func RecordJobClaimed() { jobsClaimed.Inc() }

// RecordJobFinished counts one job reaching the given terminal status.
func RecordJobFinished(status string) { jobsFinished.WithLabelValues(status).Inc() }

// RecordLineProcessed counts one ingested line.
func RecordLineProcessed() { linesProcessed.Inc() }

// RecordLineError counts one rejected line.
func RecordLineError() { lineErrors.Inc() }

// RecordJobDuration observes the processing time of one job in seconds.
func RecordJobDuration(seconds float64) { jobDuration.Observe(seconds) }
