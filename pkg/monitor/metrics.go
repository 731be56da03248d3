package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	submissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "modelhub_submissions_total",
		Help: "Total number of capability submissions",
	}, []string{"capability", "category"})

	failures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "modelhub_failures_total",
		Help: "Total number of failed submissions by error kind",
	}, []string{"kind"})

	staleDiscards = promauto.NewCounter(prometheus.CounterOpts{
		Name: "modelhub_stale_results_discarded_total",
		Help: "Outcomes discarded because the selection changed mid-flight",
	})

	duration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "modelhub_submission_duration_seconds",
		Help:    "Wall time of the dispatch pipeline per submission",
		Buckets: prometheus.DefBuckets,
	})
)

// CountSubmission records one accepted submission.
func CountSubmission(capability, category string) {
	submissions.WithLabelValues(capability, category).Inc()
}

// CountFailure records one failed submission by error kind
// ("transport", "decode", "configuration").
func CountFailure(kind string) {
	failures.WithLabelValues(kind).Inc()
}

// CountStaleDiscard records one discarded stale outcome.
func CountStaleDiscard() {
	staleDiscards.Inc()
}

// ObserveDuration records the pipeline wall time in seconds.
func ObserveDuration(seconds float64) {
	duration.Observe(seconds)
}
