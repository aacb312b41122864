package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// EngineMetrics contains Prometheus metrics for the dedup/promotion engine.
type EngineMetrics struct {
	MarkersTotal      *prometheus.CounterVec
	BatchesTotal      prometheus.Counter
	BatchSize         prometheus.Histogram
	PromotionsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	OperationErrors   *prometheus.CounterVec
	RoomCacheTotal    *prometheus.CounterVec
	LabelLockWait     prometheus.Histogram
	registry          *prometheus.Registry
}

// NewEngineMetrics creates and registers the engine metrics.
func NewEngineMetrics(registry *prometheus.Registry) (*EngineMetrics, error) {
	m := &EngineMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register engine metrics: %w", err)
	}
	return m, nil
}

func (m *EngineMetrics) initMetrics() {
	m.MarkersTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "engine_markers_total",
		Help: "Markers processed by outcome",
	}, []string{"outcome"})

	m.BatchesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "engine_batches_total",
		Help: "Marker batches ingested",
	})

	m.BatchSize = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "engine_batch_size",
		Help:    "Number of markers per batch",
		Buckets: prometheus.ExponentialBuckets(1, 2, 8),
	})

	m.PromotionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "engine_promotions_total",
		Help: "Promotion attempts by result",
	}, []string{"result"})

	m.OperationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "engine_operation_duration_seconds",
		Help:    "Duration of engine operations",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
	}, []string{"operation"})

	m.OperationErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "engine_operation_errors_total",
		Help: "Engine operation failures by category",
	}, []string{"operation", "category"})

	m.RoomCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "engine_room_cache_total",
		Help: "Room cache lookups by result",
	}, []string{"result"})

	m.LabelLockWait = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "engine_label_lock_wait_seconds",
		Help:    "Time spent waiting for a per-label lock",
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
	})
}

// RecordMarker counts one marker outcome.
func (m *EngineMetrics) RecordMarker(outcome string) {
	m.MarkersTotal.WithLabelValues(outcome).Inc()
}

// RecordBatch counts a batch of the given size.
func (m *EngineMetrics) RecordBatch(size int) {
	m.BatchesTotal.Inc()
	m.BatchSize.Observe(float64(size))
}

// RecordPromotion counts a promotion result.
func (m *EngineMetrics) RecordPromotion(result string) {
	m.PromotionsTotal.WithLabelValues(result).Inc()
}

// RecordDuration records how long an operation took.
func (m *EngineMetrics) RecordDuration(operation string, seconds float64) {
	m.OperationDuration.WithLabelValues(operation).Observe(seconds)
}

// RecordError counts a failed operation.
func (m *EngineMetrics) RecordError(operation, category string) {
	m.OperationErrors.WithLabelValues(operation, category).Inc()
}

// RecordRoomCache counts a room cache hit or miss.
func (m *EngineMetrics) RecordRoomCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.RoomCacheTotal.WithLabelValues(result).Inc()
}

// ObserveLockWait records time spent waiting for a label lock.
func (m *EngineMetrics) ObserveLockWait(seconds float64) {
	m.LabelLockWait.Observe(seconds)
}

// Describe implements the prometheus.Collector interface.
func (m *EngineMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.MarkersTotal.Describe(ch)
	ch <- m.BatchesTotal.Desc()
	ch <- m.BatchSize.Desc()
	m.PromotionsTotal.Describe(ch)
	m.OperationDuration.Describe(ch)
	m.OperationErrors.Describe(ch)
	m.RoomCacheTotal.Describe(ch)
	ch <- m.LabelLockWait.Desc()
}

// Collect implements the prometheus.Collector interface.
func (m *EngineMetrics) Collect(ch chan<- prometheus.Metric) {
	m.MarkersTotal.Collect(ch)
	ch <- m.BatchesTotal
	ch <- m.BatchSize
	m.PromotionsTotal.Collect(ch)
	m.OperationDuration.Collect(ch)
	m.OperationErrors.Collect(ch)
	m.RoomCacheTotal.Collect(ch)
	ch <- m.LabelLockWait
}
