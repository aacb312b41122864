package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/JimmyVaras/ros-web-app/internal/errors"
	"github.com/JimmyVaras/ros-web-app/internal/mqtt"
	"github.com/JimmyVaras/ros-web-app/internal/observability"
	"github.com/JimmyVaras/ros-web-app/internal/observability/metrics"
)

const (
	// queueSize bounds marker batches waiting for ingestion.
	queueSize = 64

	shutdownFlushTimeout = 2 * time.Second
)

type batchMessage struct {
	topic    string
	payload  []byte
	received time.Time
}

// Listen subscribes to the marker topic and ingests every batch through the
// engine until ctx is done. Batches are admitted at ingest.ratelimit per
// second; when the queue is full new batches are dropped. The telemetry
// endpoint runs alongside when enabled.
func (s *Service) Listen(ctx context.Context) error {
	if s.MQTT == nil {
		return errors.Newf("listener requires an MQTT connection").
			Component("service").
			Category(errors.CategoryState).
			Build()
	}

	var endpoint *observability.Endpoint
	if s.Settings.Telemetry.Enabled {
		var err error
		endpoint, err = observability.NewEndpoint(s.Settings, s.Metrics, s.Health)
		if err != nil {
			return err
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	queue := make(chan batchMessage, queueSize)

	markerTopic := s.Settings.MQTT.MarkerTopic
	err := s.MQTT.Subscribe(ctx, markerTopic, func(topic string, payload []byte) {
		if ctx.Err() != nil {
			// Listener is stopping; nobody drains the queue any more.
			return
		}
		msg := batchMessage{topic: topic, payload: payload, received: time.Now()}
		select {
		case queue <- msg:
		default:
			s.Metrics.Engine.RecordError(metrics.OpReceiveMarkers, string(errors.CategoryLimit))
			s.logger.Warn("marker queue full, dropping batch", "topic", topic, "bytes", len(payload))
		}
	})
	if err != nil {
		return err
	}
	defer s.unsubscribe(ctx, markerTopic)

	g.Go(func() error {
		return s.consume(ctx, queue, newLimiter(s.Settings.Ingest.RateLimit, s.Settings.Ingest.Burst))
	})

	if endpoint != nil {
		g.Go(func() error {
			return endpoint.Run(ctx)
		})
	}

	s.logger.Info("listening for marker batches",
		"topic", markerTopic,
		"rate_limit", s.Settings.Ingest.RateLimit,
		"burst", s.Settings.Ingest.Burst,
		"telemetry", s.Settings.Telemetry.Enabled)

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// unsubscribe drops the marker subscription once the listener has stopped.
// ctx is usually cancelled by then, so the broker round trip gets its own
// deadline.
func (s *Service) unsubscribe(ctx context.Context, topic string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownFlushTimeout)
	defer cancel()
	if err := s.MQTT.Unsubscribe(ctx, topic); err != nil {
		s.logger.Warn("failed to unsubscribe from marker topic", "topic", topic, "error", err)
	}
}

// newLimiter returns nil when rate limiting is disabled.
func newLimiter(perSecond float64, burst int) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(perSecond), max(burst, 1))
}

// consume ingests queued batches one at a time until ctx is done.
func (s *Service) consume(ctx context.Context, queue <-chan batchMessage, limiter *rate.Limiter) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-queue:
			if limiter != nil {
				if err := limiter.Wait(ctx); err != nil {
					return err
				}
			}
			s.handleBatch(ctx, msg)
		}
	}
}

// handleBatch decodes and ingests one batch. Failures are logged and do not
// stop the listener.
func (s *Service) handleBatch(ctx context.Context, msg batchMessage) {
	markers, err := mqtt.DecodeMarkerBatch(msg.payload)
	if err != nil {
		s.Metrics.Engine.RecordError(metrics.OpReceiveMarkers, string(errors.CategoryValidation))
		s.logger.Warn("discarding malformed marker batch", "topic", msg.topic, "error", err)
		return
	}

	report, err := s.Engine.IngestBatch(ctx, markers)
	if err != nil {
		s.logger.Error("marker batch partially failed",
			"topic", msg.topic,
			"batch_id", report.BatchID,
			"failed", report.Failed,
			"error", err)
		return
	}
	s.logger.Debug("marker batch handled",
		"topic", msg.topic,
		"batch_id", report.BatchID,
		"added", report.Added,
		"queued_for", time.Since(msg.received))
}
