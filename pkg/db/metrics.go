package db

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RunMetrics records per-procedure outcome counters. The CLI itself exits
// after each run, so these mostly matter when the engine is embedded in the
// platform's worker processes, which expose the default registry.
type RunMetrics struct {
	migrated *prometheus.CounterVec
	skipped  *prometheus.CounterVec
	failed   *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewRunMetrics creates and registers outcome metrics under the given
// namespace. Re-registration (e.g. in tests) is tolerated.
func NewRunMetrics(namespace string) *RunMetrics {
	m := &RunMetrics{
		migrated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entities_migrated_total",
			Help:      "Entities migrated or updated, by procedure",
		}, []string{"procedure"}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entities_skipped_total",
			Help:      "Entities skipped as already converged, by procedure",
		}, []string{"procedure"}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entities_failed_total",
			Help:      "Entities that failed and were left for the next run, by procedure",
		}, []string{"procedure"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of a full procedure run",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 12),
		}, []string{"procedure"}),
	}

	for _, c := range []prometheus.Collector{m.migrated, m.skipped, m.failed, m.duration} {
		if err := prometheus.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				// Registration failures other than duplicates are programming
				// errors; surface them loudly.
				panic(err)
			}
		}
	}

	return m
}

// ObserveRun records the counters and duration for one completed procedure run.
func (m *RunMetrics) ObserveRun(procedure string, migrated, skipped, failed int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.migrated.WithLabelValues(procedure).Add(float64(migrated))
	m.skipped.WithLabelValues(procedure).Add(float64(skipped))
	m.failed.WithLabelValues(procedure).Add(float64(failed))
	m.duration.WithLabelValues(procedure).Observe(elapsed.Seconds())
}
