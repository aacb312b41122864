package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Traffic directions for MQTTMetrics.
const (
	DirectionPublish = "publish"
	DirectionReceive = "receive"
)

// Broker interaction stages reported by RecordFailure.
const (
	StageConnect        = "connect"
	StagePublish        = "publish"
	StageSubscribe      = "subscribe"
	StageUnsubscribe    = "unsubscribe"
	StageConnectionLost = "connection_lost"
)

// MQTTMetrics tracks broker traffic of the node: marker batches coming in
// from robots and navigation goals going out.
type MQTTMetrics struct {
	Connected       prometheus.Gauge
	LastConnectTime prometheus.Gauge
	Messages        *prometheus.CounterVec
	PayloadBytes    *prometheus.HistogramVec
	Failures        *prometheus.CounterVec
	Reconnects      prometheus.Counter
	PublishLatency  prometheus.Histogram
	registry        *prometheus.Registry
}

// NewMQTTMetrics creates and registers the broker metrics.
func NewMQTTMetrics(registry *prometheus.Registry) (*MQTTMetrics, error) {
	m := &MQTTMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register MQTT metrics: %w", err)
	}
	return m, nil
}

func (m *MQTTMetrics) initMetrics() {
	m.Connected = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "mqtt_broker_connected",
		Help: "1 while the marker/goal broker session is up, 0 otherwise",
	})

	m.LastConnectTime = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "mqtt_broker_last_connect_timestamp_seconds",
		Help: "Unix time of the last successful broker (re)connect",
	})

	m.Messages = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mqtt_messages_total",
		Help: "Marker batches received and navigation goals published, by direction and topic",
	}, []string{"direction", "topic"})

	m.PayloadBytes = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mqtt_payload_bytes",
		Help:    "Size of marker batch and goal payloads",
		Buckets: prometheus.ExponentialBuckets(64, 4, 8), // 64B .. 1MiB
	}, []string{"direction"})

	m.Failures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mqtt_failures_total",
		Help: "Broker interaction failures by stage",
	}, []string{"stage"})

	m.Reconnects = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mqtt_reconnect_attempts_total",
		Help: "Automatic reconnect attempts after losing the broker",
	})

	m.PublishLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "mqtt_goal_publish_latency_seconds",
		Help:    "Time from publishing a goal to the broker acknowledging it",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	})
}

// UpdateConnectionStatus sets the connected gauge and, on connect, stamps
// the last connect time.
func (m *MQTTMetrics) UpdateConnectionStatus(connected bool) {
	if !connected {
		m.Connected.Set(0)
		return
	}
	m.Connected.Set(1)
	m.LastConnectTime.SetToCurrentTime()
}

// RecordPublished counts an acknowledged publish on topic.
func (m *MQTTMetrics) RecordPublished(topic string, size int) {
	m.Messages.WithLabelValues(DirectionPublish, topic).Inc()
	m.PayloadBytes.WithLabelValues(DirectionPublish).Observe(float64(size))
}

// RecordReceived counts a message delivered by the broker on topic.
func (m *MQTTMetrics) RecordReceived(topic string, size int) {
	m.Messages.WithLabelValues(DirectionReceive, topic).Inc()
	m.PayloadBytes.WithLabelValues(DirectionReceive).Observe(float64(size))
}

// RecordFailure counts a failure at one of the Stage* constants.
func (m *MQTTMetrics) RecordFailure(stage string) {
	m.Failures.WithLabelValues(stage).Inc()
}

// RecordReconnect counts a reconnect attempt.
func (m *MQTTMetrics) RecordReconnect() {
	m.Reconnects.Inc()
}

// StartPublishTimer starts timing a goal publish.
func (m *MQTTMetrics) StartPublishTimer() *PublishTimer {
	return &PublishTimer{start: time.Now(), metrics: m}
}

// PublishTimer measures one publish round trip.
type PublishTimer struct {
	start   time.Time
	metrics *MQTTMetrics
}

// ObserveDuration records the time elapsed since StartPublishTimer.
func (pt *PublishTimer) ObserveDuration() {
	pt.metrics.PublishLatency.Observe(time.Since(pt.start).Seconds())
}

// Collect implements the prometheus.Collector interface.
func (m *MQTTMetrics) Collect(ch chan<- prometheus.Metric) {
	ch <- m.Connected
	ch <- m.LastConnectTime
	m.Messages.Collect(ch)
	m.PayloadBytes.Collect(ch)
	m.Failures.Collect(ch)
	ch <- m.Reconnects
	ch <- m.PublishLatency
}

// Describe implements the prometheus.Collector interface.
func (m *MQTTMetrics) Describe(ch chan<- *prometheus.Desc) {
	ch <- m.Connected.Desc()
	ch <- m.LastConnectTime.Desc()
	m.Messages.Describe(ch)
	m.PayloadBytes.Describe(ch)
	m.Failures.Describe(ch)
	ch <- m.Reconnects.Desc()
	ch <- m.PublishLatency.Desc()
}
