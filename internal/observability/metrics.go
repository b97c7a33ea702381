package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pitchside_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pitchside_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// SweepRunsTotal counts sweeper job runs by job and result.
	SweepRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pitchside_sweeper_runs_total",
		Help: "Total number of sweeper job runs by result",
	}, []string{"job", "result"})

	// SweepAffectedTotal counts documents deleted or deactivated by the sweeper.
	SweepAffectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pitchside_sweeper_affected_total",
		Help: "Total number of documents removed or deactivated by the sweeper",
	}, []string{"job"})

	// SweepDuration records how long each sweeper job took.
	SweepDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pitchside_sweeper_duration_seconds",
		Help:    "Sweeper job duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})

	// SweepLastSuccess is the unix time of each job's last successful run.
	SweepLastSuccess = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "pitchside_sweeper_last_success_timestamp_seconds",
		Help: "Unix timestamp of the last successful sweeper run",
	}, []string{"job"})

	// CacheLookups counts cache-aside lookups by key family and outcome.
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pitchside_cache_lookups_total",
		Help: "Cache-aside lookups by key family and outcome",
	}, []string{"family", "outcome"})
)

// SweepResult labels a sweeper run outcome.
type SweepResult string

const (
	// SweepSucceeded marks a run whose statement completed.
	SweepSucceeded SweepResult = "success"
	// SweepFailed marks a run whose statement returned an error.
	SweepFailed SweepResult = "error"
)

// RecordSweep records the metrics for one sweeper run.
func RecordSweep(job string, result SweepResult, affected int64, took time.Duration, at time.Time) {
	SweepRunsTotal.WithLabelValues(job, string(result)).Inc()
	SweepDuration.WithLabelValues(job).Observe(took.Seconds())
	if result == SweepSucceeded {
		SweepAffectedTotal.WithLabelValues(job).Add(float64(affected))
		SweepLastSuccess.WithLabelValues(job).Set(float64(at.Unix()))
	}
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
