package mqtt

import (
	"context"
	"encoding/json"
	"time"

	"github.com/JimmyVaras/ros-web-app/internal/conf"
	"github.com/JimmyVaras/ros-web-app/internal/errors"
	"github.com/JimmyVaras/ros-web-app/internal/navigation"
)

// GoalPublisher delivers navigation goals to robots over MQTT. It
// implements navigation.Publisher.
type GoalPublisher struct {
	client  Client
	topic   string
	frameID string
	now     func() time.Time
}

// NewGoalPublisher publishes goals through client using the goal topic and
// frame id from settings.
func NewGoalPublisher(client Client, settings *conf.Settings) *GoalPublisher {
	return &GoalPublisher{
		client:  client,
		topic:   settings.MQTT.GoalTopic,
		frameID: settings.MQTT.FrameID,
		now:     time.Now,
	}
}

// PublishGoal stamps pose and publishes it as JSON.
func (p *GoalPublisher) PublishGoal(ctx context.Context, pose navigation.Pose) error {
	msg := navigation.NewGoalMessage(pose, p.frameID, p.now())

	payload, err := json.Marshal(msg)
	if err != nil {
		return errors.New(err).
			Component("mqtt").
			Category(errors.CategoryMQTTPublish).
			Context("operation", "marshal-goal").
			Build()
	}

	if err := p.client.Publish(ctx, p.topic, string(payload)); err != nil {
		return err
	}

	mqttLogger().Info("navigation goal sent",
		"topic", p.topic,
		"frame_id", msg.Header.FrameID,
		"x", pose.Position.X,
		"y", pose.Position.Y)
	return nil
}

var _ navigation.Publisher = (*GoalPublisher)(nil)
