package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"IncidentScanner/internal/domain"
)

const (
	namespace = "incident_scanner"
	subsystem = "pipeline"
)

var (
	once sync.Once

	// RunsTotal counts pipeline runs by result (success, failed, skipped).
	RunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "runs_total",
		Help:      "Total number of pipeline runs, labeled by result.",
	}, []string{"result"})

	// ArticlesTotal accumulates the per-run counters, labeled by stat name.
	ArticlesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "articles_total",
		Help:      "Articles and incidents counted at each pipeline stage.",
	}, []string{"stat"})

	// ClassificationsTotal counts classifier outcomes by path and acceptance.
	ClassificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "classifications_total",
		Help:      "Classifier results, labeled by path (ai, fallback) and outcome.",
	}, []string{"path", "outcome"})

	// ProviderRetriesTotal counts scheduled provider retries.
	ProviderRetriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "provider_retries_total",
		Help:      "Total number of classification provider retries.",
	})

	// RunDurationSeconds is the wall time of a full run.
	RunDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "run_duration_seconds",
		Help:      "Wall time of a pipeline run.",
		Buckets:   []float64{10, 30, 60, 120, 300, 600, 1200, 1800, 3600},
	})

	// LastSuccessSeconds is the unix timestamp of the last run without a run-level error.
	LastSuccessSeconds = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix timestamp (seconds) of the last successful pipeline run.",
	})
)

// Register registers pipeline metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			RunsTotal,
			ArticlesTotal,
			ClassificationsTotal,
			ProviderRetriesTotal,
			RunDurationSeconds,
			LastSuccessSeconds,
		)
	})
}

// Recorder adapts the package collectors to the pipeline observer hooks.
type Recorder struct{}

// ObserveRun records the outcome and counters of a finished run.
func (Recorder) ObserveRun(stats domain.RunStats, err error) {
	if err != nil {
		RunsTotal.WithLabelValues("failed").Inc()
	} else {
		RunsTotal.WithLabelValues("success").Inc()
		LastSuccessSeconds.Set(float64(stats.FinishedAt.Unix()))
	}

	for stat, value := range map[string]int{
		"fetched":         stats.Fetched,
		"relevant":        stats.Relevant,
		"filtered_out":    stats.FilteredOut,
		"representatives": stats.Representatives,
		"merged_pre_ai":   stats.MergedPreAI,
		"classified":      stats.Classified,
		"fallback_used":   stats.FallbackUsed,
		"rejected":        stats.Rejected,
		"duplicates":      stats.Duplicates,
		"persisted":       stats.Persisted,
		"errors":          stats.Errors,
	} {
		if value > 0 {
			ArticlesTotal.WithLabelValues(stat).Add(float64(value))
		}
	}

	if d := stats.Duration(); d > 0 {
		RunDurationSeconds.Observe(d.Seconds())
	}
}

// ObserveSkipped records a run that did not start because another one held the lock.
func (Recorder) ObserveSkipped() {
	RunsTotal.WithLabelValues("skipped").Inc()
}

// ObserveClassification records one classifier result.
func (Recorder) ObserveClassification(c domain.Classification) {
	outcome := "rejected"
	if c.Accepted() {
		outcome = "accepted"
	}
	ClassificationsTotal.WithLabelValues(string(c.Path), outcome).Inc()
}

// ObserveRetry records one provider retry.
func (Recorder) ObserveRetry(int, time.Duration, error) {
	ProviderRetriesTotal.Inc()
}
