// Package navigation turns confirmed detections into navigation goals for the
// robot's motion stack.
package navigation

import (
	"context"
	"time"

	"github.com/JimmyVaras/ros-web-app/internal/detection"
	"github.com/JimmyVaras/ros-web-app/internal/geometry"
)

// DefaultFrameID is the reference frame goals are expressed in.
const DefaultFrameID = "map"

// Pose is a position on the floor plane and the heading to hold there.
type Pose struct {
	Position    geometry.Point3     `json:"position"`
	Orientation geometry.Quaternion `json:"orientation"`
}

// Yaw returns the heading encoded in the orientation.
func (p Pose) Yaw() float64 {
	return geometry.QuaternionYaw(p.Orientation)
}

// BuildGoal returns the pose from which the robot observes d: standing at the
// approach position and facing the object.
func BuildGoal(d detection.Detection) Pose {
	yaw := geometry.YawFromPoints(d.ApproachPosition, d.ObjectPosition)
	return Pose{
		Position:    d.ApproachPosition.Planar(),
		Orientation: geometry.YawToQuaternion(yaw),
	}
}

// Publisher delivers goals to the robot.
type Publisher interface {
	PublishGoal(ctx context.Context, pose Pose) error
}

// PublisherFunc adapts a function to the Publisher interface.
type PublisherFunc func(ctx context.Context, pose Pose) error

// PublishGoal calls f.
func (f PublisherFunc) PublishGoal(ctx context.Context, pose Pose) error {
	return f(ctx, pose)
}

// Header is the stamped header of a goal message.
type Header struct {
	FrameID string `json:"frame_id"`
	Stamp   Stamp  `json:"stamp"`
}

// Stamp is a seconds/nanoseconds timestamp.
type Stamp struct {
	Secs  int64 `json:"secs"`
	Nsecs int64 `json:"nsecs"`
}

// GoalMessage is the wire form of a goal, laid out like a stamped pose.
type GoalMessage struct {
	Header Header `json:"header"`
	Pose   Pose   `json:"pose"`
}

// NewGoalMessage stamps pose with frameID and t. An empty frameID uses DefaultFrameID.
func NewGoalMessage(pose Pose, frameID string, t time.Time) GoalMessage {
	if frameID == "" {
		frameID = DefaultFrameID
	}
	return GoalMessage{
		Header: Header{
			FrameID: frameID,
			Stamp:   Stamp{Secs: t.Unix(), Nsecs: int64(t.Nanosecond())},
		},
		Pose: pose,
	}
}
