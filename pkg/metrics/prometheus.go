// Package metrics provides Prometheus metrics for the shuttlerank batch jobs.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every collector used by the rating pipeline.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Engine
	matchesProcessed  *prometheus.CounterVec
	playersRated      *prometheus.GaugeVec
	dampingApplied    *prometheus.CounterVec
	partitionDuration *prometheus.HistogramVec

	// History
	snapshotsWritten   prometheus.Counter
	snapshotDuplicates prometheus.Counter
	matchesSkipped     prometheus.Counter

	// Analytics
	drawMatchups    *prometheus.CounterVec
	graphIterations *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // process metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "shuttlerank",
		subsystem:        "rating",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 5000, 30000},
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // collector table
	auto := promauto.With(m.registry)

	m.matchesProcessed = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "matches_processed_total",
		Help:        "Matches folded into a rating partition",
		ConstLabels: m.constLabels,
	}, []string{"partition"})

	m.playersRated = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "players",
		Help:        "Distinct players rated in a partition",
		ConstLabels: m.constLabels,
	}, []string{"partition"})

	m.dampingApplied = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "damping_applied_total",
		Help:        "Post-update adjustments applied by the damping policy",
		ConstLabels: m.constLabels,
	}, []string{"kind"})

	m.partitionDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "partition_duration_milliseconds",
		Help:        "Wall time spent rating one partition",
		Buckets:     m.histogramBuckets,
		ConstLabels: m.constLabels,
	}, []string{"partition"})

	m.snapshotsWritten = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "history",
		Name:        "snapshots_written_total",
		Help:        "New rating snapshots persisted",
		ConstLabels: m.constLabels,
	})

	m.snapshotDuplicates = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "history",
		Name:        "snapshots_duplicate_total",
		Help:        "Snapshot writes that hit an existing (player, match) key",
		ConstLabels: m.constLabels,
	})

	m.matchesSkipped = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "history",
		Name:        "matches_skipped_total",
		Help:        "Matches skipped on resume because they were already recorded",
		ConstLabels: m.constLabels,
	})

	m.drawMatchups = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   "draws",
		Name:        "matchups_evaluated_total",
		Help:        "Hypothetical matchups scored by the draw predictor",
		ConstLabels: m.constLabels,
	}, []string{"partition"})

	m.graphIterations = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   "graph",
		Name:        "power_iterations",
		Help:        "Power iterations needed for the graph ranking to converge",
		Buckets:     []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
		ConstLabels: m.constLabels,
	}, []string{"partition"})

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Name:        "errors_total",
		Help:        "Errors by component and type",
		ConstLabels: m.constLabels,
	}, []string{"component", "type"})
}

// RecordMatchProcessed increments the processed-match counter for partition.
func RecordMatchProcessed(partition string) {
	globalManager.matchesProcessed.WithLabelValues(partition).Inc()
}

// UpdatePlayersRated sets the number of players rated in partition.
func UpdatePlayersRated(partition string, n int) {
	globalManager.playersRated.WithLabelValues(partition).Set(float64(n))
}

// RecordDampingApplied counts a damping adjustment; kind is "mu" or "sigma".
func RecordDampingApplied(kind string) {
	globalManager.dampingApplied.WithLabelValues(kind).Inc()
}

// RecordPartitionDuration observes the time spent on a partition.
func RecordPartitionDuration(partition string, ms float64) {
	globalManager.partitionDuration.WithLabelValues(partition).Observe(ms)
}

// RecordSnapshotWritten counts a new snapshot.
func RecordSnapshotWritten() {
	globalManager.snapshotsWritten.Inc()
}

// RecordSnapshotDuplicate counts an idempotent no-op write.
func RecordSnapshotDuplicate() {
	globalManager.snapshotDuplicates.Inc()
}

// RecordMatchSkipped counts a match skipped during resume.
func RecordMatchSkipped() {
	globalManager.matchesSkipped.Inc()
}

// RecordDrawMatchups adds n evaluated matchups for partition.
func RecordDrawMatchups(partition string, n int) {
	globalManager.drawMatchups.WithLabelValues(partition).Add(float64(n))
}

// RecordGraphIterations observes the iteration count of one graph ranking.
func RecordGraphIterations(partition string, n int) {
	globalManager.graphIterations.WithLabelValues(partition).Observe(float64(n))
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the registry used by the package-level recorders.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// WriteTextfile dumps the registry in the node-exporter textfile format.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, customRegistry); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteTextfile, err)
	}
	return nil
}
