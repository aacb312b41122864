package promotion

import (
	"context"
	"time"

	"github.com/JimmyVaras/ros-web-app/internal/detection"
	"github.com/JimmyVaras/ros-web-app/internal/observability/metrics"
)

// DeleteTentative removes one tentative detection. A missing id yields a
// not-found error.
func (e *Engine) DeleteTentative(ctx context.Context, id uint) (err error) {
	start := time.Now()
	defer func() { e.observe(metrics.OpDeleteTentative, start, err) }()

	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	if err := e.store.DeleteTentative(ctx, id); err != nil {
		return storeError(err, "delete-tentative", "tentative_id", id)
	}
	e.logger.Info("tentative detection deleted", "tentative_id", id)
	return nil
}

// DeleteAllTentative removes every tentative detection and returns how many
// were removed. An empty store yields zero.
func (e *Engine) DeleteAllTentative(ctx context.Context) (removed int64, err error) {
	start := time.Now()
	defer func() { e.observe(metrics.OpClearTentative, start, err) }()

	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	removed, err = e.store.ClearAllTentative(ctx)
	if err != nil {
		return 0, storeError(err, "clear-tentative")
	}
	e.logger.Info("tentative detections cleared", "removed", removed)
	return removed, nil
}

// DeleteConfirmed removes one confirmed detection. A missing id yields a
// not-found error.
func (e *Engine) DeleteConfirmed(ctx context.Context, id uint) (err error) {
	start := time.Now()
	defer func() { e.observe(metrics.OpDeleteConfirmed, start, err) }()

	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	if err := e.store.DeleteDetection(ctx, id); err != nil {
		return storeError(err, "delete-detection", "detection_id", id)
	}
	e.logger.Info("detection deleted", "detection_id", id)
	return nil
}

// ListTentative returns all tentative detections.
func (e *Engine) ListTentative(ctx context.Context) ([]detection.Tentative, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	items, err := e.store.ListTentative(ctx)
	if err != nil {
		return nil, storeError(err, "list-tentative")
	}
	return items, nil
}

// ListConfirmed returns all confirmed detections.
func (e *Engine) ListConfirmed(ctx context.Context) ([]detection.Detection, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	items, err := e.store.ListDetections(ctx)
	if err != nil {
		return nil, storeError(err, "list-detections")
	}
	return items, nil
}
