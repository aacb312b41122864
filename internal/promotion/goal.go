package promotion

import (
	"context"
	"time"

	"github.com/JimmyVaras/ros-web-app/internal/errors"
	"github.com/JimmyVaras/ros-web-app/internal/navigation"
	"github.com/JimmyVaras/ros-web-app/internal/observability/metrics"
)

// BuildGoal loads the confirmed detection id and returns the pose a robot
// should drive to in order to face it.
func (e *Engine) BuildGoal(ctx context.Context, id uint) (pose navigation.Pose, err error) {
	start := time.Now()
	defer func() { e.observe(metrics.OpBuildGoal, start, err) }()

	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	d, err := e.store.GetDetection(ctx, id)
	if err != nil {
		return navigation.Pose{}, storeError(err, "get-detection", "detection_id", id)
	}
	return navigation.BuildGoal(*d), nil
}

// Navigate builds the goal for detection id and hands it to the configured
// publisher.
func (e *Engine) Navigate(ctx context.Context, id uint) (pose navigation.Pose, err error) {
	start := time.Now()
	defer func() { e.observe(metrics.OpNavigate, start, err) }()

	if e.publisher == nil {
		return navigation.Pose{}, errors.Newf("no navigation publisher configured").
			Component("promotion").
			Category(errors.CategoryState).
			Context("detection_id", id).
			Build()
	}

	pose, err = e.BuildGoal(ctx, id)
	if err != nil {
		return navigation.Pose{}, err
	}

	if err := e.publisher.PublishGoal(ctx, pose); err != nil {
		var enhanced *errors.EnhancedError
		if errors.As(err, &enhanced) {
			return navigation.Pose{}, err
		}
		return navigation.Pose{}, errors.New(err).
			Component("promotion").
			Category(errors.CategoryNavigation).
			Context("detection_id", id).
			Build()
	}

	e.logger.Info("navigation goal published",
		"detection_id", id,
		"x", pose.Position.X,
		"y", pose.Position.Y,
		"yaw", pose.Yaw())
	return pose, nil
}
