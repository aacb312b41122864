// Package promotion implements the detection lifecycle: deduplicating incoming
// markers into tentative detections, promoting tentative detections to
// confirmed ones, and turning confirmed detections into navigation goals.
//
// Every check-then-act sequence runs under a per-label lock and inside a single
// store transaction, so two concurrent callers reporting the same object can
// never both pass the duplicate check.
package promotion

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/JimmyVaras/ros-web-app/internal/detection"
	"github.com/JimmyVaras/ros-web-app/internal/errors"
	"github.com/JimmyVaras/ros-web-app/internal/geometry"
	"github.com/JimmyVaras/ros-web-app/internal/logging"
	"github.com/JimmyVaras/ros-web-app/internal/navigation"
	"github.com/JimmyVaras/ros-web-app/internal/observability/metrics"
)

// Engine orchestrates deduplication, room assignment and promotion on top of
// a detection.Store. It is safe for concurrent use.
type Engine struct {
	store        detection.Store
	threshold    float64
	mode         geometry.DistanceMode
	storeTimeout time.Duration
	roomCacheTTL time.Duration
	rooms        *roomCache
	locks        *labelLocks
	publisher    navigation.Publisher
	metrics      *metrics.EngineMetrics
	logger       *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithThreshold sets the duplicate distance. Defaults to geometry.DefaultThreshold.
func WithThreshold(threshold float64) Option {
	return func(e *Engine) { e.threshold = threshold }
}

// WithDistanceMode selects planar or spatial proximity checks.
func WithDistanceMode(mode geometry.DistanceMode) Option {
	return func(e *Engine) { e.mode = mode }
}

// WithStoreTimeout bounds every store operation. Zero means no extra timeout.
func WithStoreTimeout(d time.Duration) Option {
	return func(e *Engine) { e.storeTimeout = d }
}

// WithRoomCacheTTL caches the room list for d. Zero disables caching.
func WithRoomCacheTTL(d time.Duration) Option {
	return func(e *Engine) { e.roomCacheTTL = d }
}

// WithPublisher sets where Navigate sends goals.
func WithPublisher(p navigation.Publisher) Option {
	return func(e *Engine) { e.publisher = p }
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *metrics.EngineMetrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithLogger overrides the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// withLocks replaces the process-wide label locks, for tests.
func withLocks(l *labelLocks) Option {
	return func(e *Engine) { e.locks = l }
}

// New creates an Engine over store.
func New(store detection.Store, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, errors.Newf("promotion engine requires a store").
			Component("promotion").
			Category(errors.CategoryConfiguration).
			Build()
	}

	e := &Engine{
		store:     store,
		threshold: geometry.DefaultThreshold,
		mode:      geometry.DistancePlanar,
		locks:     processLabelLocks,
	}
	for _, opt := range opts {
		opt(e)
	}

	if math.IsNaN(e.threshold) || math.IsInf(e.threshold, 0) || e.threshold <= 0 {
		return nil, errors.Newf("duplicate threshold must be a positive finite number, got %v", e.threshold).
			Component("promotion").
			Category(errors.CategoryConfiguration).
			Context("threshold", e.threshold).
			Build()
	}
	if e.logger == nil {
		e.logger = logging.ForService("promotion")
	}
	e.rooms = newRoomCache(e.roomCacheTTL)

	return e, nil
}

// Threshold returns the configured duplicate distance.
func (e *Engine) Threshold() float64 { return e.threshold }

// isClose applies the configured proximity rule.
func (e *Engine) isClose(a, b geometry.Point3) bool {
	return geometry.IsCloseIn(e.mode, a, b, e.threshold)
}

// withTimeout derives the context used for one store unit of work.
func (e *Engine) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.storeTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.storeTimeout)
}

// observe records duration and failure metrics for one operation.
func (e *Engine) observe(operation string, start time.Time, err error) {
	if e.metrics == nil {
		return
	}
	e.metrics.RecordDuration(operation, time.Since(start).Seconds())
	if err != nil {
		e.metrics.RecordError(operation, errorCategory(err))
	}
}
