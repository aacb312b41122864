// client.go: paho based implementation of Client.
package mqtt

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/JimmyVaras/ros-web-app/internal/conf"
	"github.com/JimmyVaras/ros-web-app/internal/errors"
	"github.com/JimmyVaras/ros-web-app/internal/observability"
	"github.com/JimmyVaras/ros-web-app/internal/observability/metrics"
)

// client implements the Client interface.
type client struct {
	config          Config
	internalClient  paho.Client
	lastConnAttempt time.Time
	mu              sync.Mutex
	metrics         *metrics.MQTTMetrics

	subsMu        sync.Mutex
	subscriptions map[string]MessageHandler
}

// NewClient creates a new MQTT client with the provided configuration.
func NewClient(settings *conf.Settings, m *observability.Metrics) (Client, error) {
	return newClient(ConfigFromSettings(settings), m.MQTT)
}

func newClient(cfg Config, m *metrics.MQTTMetrics) (*client, error) {
	if m == nil {
		return nil, errors.Newf("mqtt client requires metrics").
			Component("mqtt").
			Category(errors.CategoryConfiguration).
			Build()
	}
	return &client{
		config:        cfg,
		metrics:       m,
		subscriptions: make(map[string]MessageHandler),
	}, nil
}

// Connect attempts to establish a connection to the MQTT broker.
// It first resolves the broker's hostname and then attempts to connect.
func (c *client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if time.Since(c.lastConnAttempt) < c.config.ReconnectCooldown {
		return errors.Newf("connection attempt too recent, last attempt was %v ago", time.Since(c.lastConnAttempt)).
			Component("mqtt").
			Category(errors.CategoryMQTTConnection).
			Build()
	}
	c.lastConnAttempt = time.Now()

	// Parse the broker URL
	u, err := url.Parse(c.config.Broker)
	if err != nil || u.Host == "" {
		return errors.Newf("invalid broker URL %q", c.config.Broker).
			Component("mqtt").
			Category(errors.CategoryConfiguration).
			Build()
	}

	host := u.Hostname()

	// Check if the host is an IP address
	if net.ParseIP(host) == nil {
		if _, err := net.DefaultResolver.LookupHost(ctx, host); err != nil {
			return errors.New(fmt.Errorf("failed to resolve hostname %s: %w", host, err)).
				Component("mqtt").
				Category(errors.CategoryNetwork).
				Context("broker", c.config.Broker).
				Build()
		}
	}

	opts := paho.NewClientOptions()
	opts.AddBroker(c.config.Broker)
	opts.SetClientID(c.config.ClientID)
	opts.SetUsername(c.config.Username)
	opts.SetPassword(c.config.Password)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectTimeout(c.config.ConnectTimeout)
	opts.SetOnConnectHandler(c.onConnect)
	opts.SetConnectionLostHandler(c.onConnectionLost)
	opts.SetReconnectingHandler(c.onReconnecting)

	c.internalClient = paho.NewClient(opts)

	token := c.internalClient.Connect()
	if !waitToken(ctx, token, c.config.ConnectTimeout) {
		c.metrics.RecordFailure(metrics.StageConnect)
		return errors.Newf("connection timeout").
			Component("mqtt").
			Category(errors.CategoryMQTTConnection).
			Context("broker", c.config.Broker).
			Build()
	}
	if err := token.Error(); err != nil {
		c.metrics.RecordFailure(metrics.StageConnect)
		return errors.New(fmt.Errorf("connection error: %w", err)).
			Component("mqtt").
			Category(errors.CategoryMQTTConnection).
			Context("broker", c.config.Broker).
			Build()
	}

	c.metrics.UpdateConnectionStatus(true)
	return nil
}

// Publish sends a message to the specified topic on the MQTT broker.
func (c *client) Publish(ctx context.Context, topic string, payload string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	mqttLogger().Debug("publishing message", "topic", topic, "bytes", len(payload))

	if !c.IsConnected() {
		return errors.Newf("not connected to MQTT broker").
			Component("mqtt").
			Category(errors.CategoryMQTTConnection).
			Context("topic", topic).
			Build()
	}

	timer := c.metrics.StartPublishTimer()
	defer timer.ObserveDuration()

	token := c.internalClient.Publish(topic, c.config.QoS, c.config.Retain, payload)
	if !waitToken(ctx, token, c.config.PublishTimeout) {
		c.metrics.RecordFailure(metrics.StagePublish)
		mqttLogger().Warn("publish timeout", "topic", topic)
		return errors.Newf("publish timeout").
			Component("mqtt").
			Category(errors.CategoryMQTTPublish).
			Context("topic", topic).
			Build()
	}
	if err := token.Error(); err != nil {
		c.metrics.RecordFailure(metrics.StagePublish)
		return errors.New(err).
			Component("mqtt").
			Category(errors.CategoryMQTTPublish).
			Context("topic", topic).
			Build()
	}

	c.metrics.RecordPublished(topic, len(payload))
	return nil
}

// Subscribe registers handler for topic and subscribes immediately when connected.
func (c *client) Subscribe(ctx context.Context, topic string, handler MessageHandler) error {
	c.subsMu.Lock()
	c.subscriptions[topic] = handler
	c.subsMu.Unlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.IsConnected() {
		// Applied by onConnect.
		return nil
	}
	return c.subscribe(ctx, c.internalClient, topic, handler)
}

// Unsubscribe forgets the handler for topic and unsubscribes when connected.
func (c *client) Unsubscribe(ctx context.Context, topic string) error {
	c.subsMu.Lock()
	delete(c.subscriptions, topic)
	c.subsMu.Unlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.IsConnected() {
		return nil
	}

	token := c.internalClient.Unsubscribe(topic)
	if !waitToken(ctx, token, c.config.PublishTimeout) {
		c.metrics.RecordFailure(metrics.StageUnsubscribe)
		return errors.Newf("unsubscribe timeout").
			Component("mqtt").
			Category(errors.CategoryMQTTConnection).
			Context("topic", topic).
			Build()
	}
	if err := token.Error(); err != nil {
		c.metrics.RecordFailure(metrics.StageUnsubscribe)
		return errors.New(err).
			Component("mqtt").
			Category(errors.CategoryMQTTConnection).
			Context("topic", topic).
			Build()
	}
	mqttLogger().Info("unsubscribed", "topic", topic)
	return nil
}

func (c *client) subscribe(ctx context.Context, pc paho.Client, topic string, handler MessageHandler) error {
	token := pc.Subscribe(topic, c.config.QoS, func(_ paho.Client, msg paho.Message) {
		c.metrics.RecordReceived(topic, len(msg.Payload()))
		handler(msg.Topic(), msg.Payload())
	})
	if !waitToken(ctx, token, c.config.PublishTimeout) {
		c.metrics.RecordFailure(metrics.StageSubscribe)
		return errors.Newf("subscribe timeout").
			Component("mqtt").
			Category(errors.CategoryMQTTConnection).
			Context("topic", topic).
			Build()
	}
	if err := token.Error(); err != nil {
		c.metrics.RecordFailure(metrics.StageSubscribe)
		return errors.New(err).
			Component("mqtt").
			Category(errors.CategoryMQTTConnection).
			Context("topic", topic).
			Build()
	}
	mqttLogger().Info("subscribed", "topic", topic)
	return nil
}

// IsConnected returns true if the client is currently connected to the MQTT broker.
func (c *client) IsConnected() bool {
	return c.internalClient != nil && c.internalClient.IsConnected()
}

// Disconnect closes the connection to the MQTT broker.
func (c *client) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.internalClient == nil {
		return
	}
	c.internalClient.Disconnect(uint(c.config.DisconnectTimeout.Milliseconds()))
	c.metrics.UpdateConnectionStatus(false)
}

// onConnect runs on the paho goroutine after every successful (re)connect.
// The session is clean, so subscriptions are sent again.
func (c *client) onConnect(pc paho.Client) {
	mqttLogger().Info("connected to MQTT broker", "broker", c.config.Broker)
	c.metrics.UpdateConnectionStatus(true)

	c.subsMu.Lock()
	subs := make(map[string]MessageHandler, len(c.subscriptions))
	for topic, handler := range c.subscriptions {
		subs[topic] = handler
	}
	c.subsMu.Unlock()

	for topic, handler := range subs {
		ctx, cancel := context.WithTimeout(context.Background(), c.config.PublishTimeout)
		if err := c.subscribe(ctx, pc, topic, handler); err != nil {
			mqttLogger().Error("failed to restore subscription", "topic", topic, "error", err)
		}
		cancel()
	}
}

func (c *client) onConnectionLost(_ paho.Client, err error) {
	mqttLogger().Warn("connection to MQTT broker lost", "broker", c.config.Broker, "error", err)
	c.metrics.UpdateConnectionStatus(false)
	c.metrics.RecordFailure(metrics.StageConnectionLost)
}

func (c *client) onReconnecting(_ paho.Client, _ *paho.ClientOptions) {
	c.metrics.RecordReconnect()
	mqttLogger().Info("reconnecting to MQTT broker", "broker", c.config.Broker)
}

// waitToken waits for token until it completes, timeout passes or ctx is done.
// It reports whether the token completed.
func waitToken(ctx context.Context, token paho.Token, timeout time.Duration) bool {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-token.Done():
		return true
	case <-timer.C:
		return false
	case <-ctx.Done():
		return false
	}
}
