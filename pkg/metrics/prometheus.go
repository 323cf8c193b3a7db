// Package metrics provides Prometheus metrics for the hooprate ratings
// pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the pipeline.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Run-level metrics
	runsTotal   *prometheus.CounterVec
	runDuration prometheus.Histogram

	// Input metrics
	gamesLoaded      prometheus.Counter
	seasonsProcessed prometheus.Counter

	// Stage metrics
	stageDuration *prometheus.HistogramVec
	solverPasses  prometheus.Counter

	// Output metrics
	teamRowsUpserted   prometheus.Counter
	playerRowsUpserted prometheus.Counter

	// Quality metrics
	missingCoefficients *prometheus.CounterVec
	recordsDiscarded    prometheus.Counter
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "hooprate",
		subsystem:        "pipeline",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.runsTotal = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "runs_total",
			Help:      "Total pipeline runs by terminal status",
		},
		[]string{"status"},
	)

	m.runDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "run_duration_seconds",
		Help:      "End-to-end pipeline run duration in seconds",
		Buckets:   m.histogramBuckets,
	})

	m.gamesLoaded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "game_records_loaded_total",
		Help:      "Total game records read from the source store",
	})

	m.seasonsProcessed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "seasons_processed_total",
		Help:      "Total season partitions computed",
	})

	m.stageDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "stage_duration_seconds",
			Help:      "Per-stage computation duration in seconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"stage"},
	)

	m.solverPasses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "solver_passes_total",
		Help:      "Total opponent-adjustment solver passes executed",
	})

	m.teamRowsUpserted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "team_rating_rows_upserted_total",
		Help:      "Total team season rating rows written to the sink",
	})

	m.playerRowsUpserted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "player_vorp_rows_upserted_total",
		Help:      "Total player season VORP rows written to the sink",
	})

	m.missingCoefficients = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "missing_coefficients_total",
			Help:      "Model features referenced but absent from the coefficient artifact (configuration gaps)",
		},
		[]string{"feature"},
	)

	m.recordsDiscarded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "game_records_discarded_total",
		Help:      "Game records excluded before normalization (non-positive minutes)",
	})
}

// RecordRunSuccess marks one pipeline run as succeeded.
func RecordRunSuccess() {
	globalManager.runsTotal.WithLabelValues("success").Inc()
}

// RecordRunFailure marks one pipeline run as failed.
func RecordRunFailure() {
	globalManager.runsTotal.WithLabelValues("failure").Inc()
}

// RecordRunDuration records an end-to-end run duration in seconds.
func RecordRunDuration(seconds float64) {
	globalManager.runDuration.Observe(seconds)
}

// RecordGamesLoaded adds to the loaded game-record counter.
func RecordGamesLoaded(n int) {
	globalManager.gamesLoaded.Add(float64(n))
}

// RecordSeasonProcessed increments the processed-season counter.
func RecordSeasonProcessed() {
	globalManager.seasonsProcessed.Inc()
}

// RecordStageDuration records one stage's duration in seconds.
func RecordStageDuration(stage string, seconds float64) {
	globalManager.stageDuration.WithLabelValues(stage).Observe(seconds)
}

// RecordSolverPasses adds to the solver pass counter.
func RecordSolverPasses(n int) {
	globalManager.solverPasses.Add(float64(n))
}

// RecordTeamRowsUpserted adds to the team rating output counter.
func RecordTeamRowsUpserted(n int) {
	globalManager.teamRowsUpserted.Add(float64(n))
}

// RecordPlayerRowsUpserted adds to the player VORP output counter.
func RecordPlayerRowsUpserted(n int) {
	globalManager.playerRowsUpserted.Add(float64(n))
}

// RecordMissingCoefficient counts a model feature absent from the artifact.
func RecordMissingCoefficient(feature string) {
	globalManager.missingCoefficients.WithLabelValues(feature).Inc()
}

// RecordRecordsDiscarded adds to the excluded-record counter.
func RecordRecordsDiscarded(n int) {
	globalManager.recordsDiscarded.Add(float64(n))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
