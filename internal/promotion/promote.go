package promotion

import (
	"context"
	"time"

	"github.com/JimmyVaras/ros-web-app/internal/detection"
	"github.com/JimmyVaras/ros-web-app/internal/errors"
	"github.com/JimmyVaras/ros-web-app/internal/geometry"
	"github.com/JimmyVaras/ros-web-app/internal/observability/metrics"
)

// Promote turns the tentative detection id into a confirmed one.
//
// The object position is flattened to z=0 and checked again against every
// confirmed detection with the same label. If one lies within the threshold
// Promote fails with a conflict error and the tentative record is kept.
// Otherwise the confirmed detection is inserted and the tentative deleted
// in one transaction.
func (e *Engine) Promote(ctx context.Context, id uint) (promoted *detection.Detection, err error) {
	start := time.Now()
	defer func() {
		e.observe(metrics.OpPromote, start, err)
		e.recordPromotion(err)
	}()

	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	// The label is needed before the lock can be taken.
	t, err := e.store.GetTentative(ctx, id)
	if err != nil {
		return nil, storeError(err, "get-tentative", "tentative_id", id)
	}

	unlock := e.lockLabel(t.Label)
	defer unlock()

	var confirmed detection.Detection
	err = e.store.Atomically(ctx, func(repo detection.Repository) error {
		if err := repo.LockLabel(ctx, t.Label); err != nil {
			return storeError(err, "lock-label", "label", t.Label)
		}

		// Reload under the lock: another caller may have promoted or
		// deleted the record in the meantime.
		current, err := repo.GetTentative(ctx, id)
		if err != nil {
			return storeError(err, "get-tentative", "tentative_id", id)
		}

		confirmed = current.Confirm()

		existing, err := repo.FindDetectionsByLabel(ctx, confirmed.Label)
		if err != nil {
			return storeError(err, "find-detections", "label", confirmed.Label)
		}
		for i := range existing {
			if e.isClose(confirmed.ObjectPosition, existing[i].ObjectPosition) {
				return conflictError(id, existing[i].ID, confirmed.Label,
					geometry.Distance(confirmed.ObjectPosition, existing[i].ObjectPosition, e.mode), e.threshold)
			}
		}

		if err := repo.InsertDetection(ctx, &confirmed); err != nil {
			return storeError(err, "insert-detection", "label", confirmed.Label)
		}
		if err := repo.DeleteTentative(ctx, id); err != nil {
			return storeError(err, "delete-tentative", "tentative_id", id)
		}
		return nil
	})
	if err != nil {
		err = storeError(err, "promote", "tentative_id", id)
		if errors.IsConflict(err) {
			e.logger.Info("promotion rejected", "tentative_id", id, "label", t.Label, "error", err)
		} else {
			e.logger.Error("promotion failed", "tentative_id", id, "label", t.Label, "error", err)
		}
		return nil, err
	}

	e.logger.Info("tentative detection promoted",
		"tentative_id", id,
		"detection_id", confirmed.ID,
		"label", confirmed.Label,
		"room_id", confirmed.RoomID,
		"robot_id", confirmed.RobotID)
	return &confirmed, nil
}

func (e *Engine) recordPromotion(err error) {
	if e.metrics == nil {
		return
	}
	switch {
	case err == nil:
		e.metrics.RecordPromotion(metrics.PromotionPromoted)
	case errors.IsConflict(err):
		e.metrics.RecordPromotion(metrics.PromotionConflict)
	case errors.IsNotFound(err):
		e.metrics.RecordPromotion(metrics.PromotionNotFound)
	default:
		e.metrics.RecordPromotion(metrics.PromotionError)
	}
}
