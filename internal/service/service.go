// Package service wires configuration, storage, the promotion engine and the
// MQTT transport into one runnable unit shared by the CLI commands.
package service

import (
	"context"
	"log/slog"

	"github.com/JimmyVaras/ros-web-app/internal/conf"
	"github.com/JimmyVaras/ros-web-app/internal/datastore"
	"github.com/JimmyVaras/ros-web-app/internal/errors"
	"github.com/JimmyVaras/ros-web-app/internal/logging"
	"github.com/JimmyVaras/ros-web-app/internal/mqtt"
	"github.com/JimmyVaras/ros-web-app/internal/observability"
	"github.com/JimmyVaras/ros-web-app/internal/promotion"
	"github.com/JimmyVaras/ros-web-app/internal/telemetry"
)

// Service holds the long-lived components of one process.
type Service struct {
	Settings *conf.Settings
	Metrics  *observability.Metrics
	Store    datastore.Interface
	Engine   *promotion.Engine
	MQTT     mqtt.Client // nil unless opened with WithMQTT

	logger    *slog.Logger
	logCloser func() error
}

// Option configures Open.
type Option func(*options)

type options struct {
	mqtt bool
}

// WithMQTT connects to the broker and lets the engine publish goals.
func WithMQTT() Option {
	return func(o *options) { o.mqtt = true }
}

// Open builds a Service from settings. The caller must call Close.
func Open(ctx context.Context, settings *conf.Settings, opts ...Option) (*Service, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	s := &Service{Settings: settings, logger: logging.ForService("service")}

	if err := telemetry.InitSentry(settings); err != nil {
		// Error reporting is optional; keep going without it.
		s.logger.Warn("sentry initialization failed", "error", err)
	}

	m, err := observability.NewMetrics()
	if err != nil {
		return nil, errors.New(err).
			Component("service").
			Category(errors.CategorySystem).
			Build()
	}
	s.Metrics = m

	engineLogger := logging.ForService("promotion")
	if settings.Main.Log.Enabled {
		level := slog.LevelInfo
		if settings.Debug {
			level = slog.LevelDebug
		}
		fileLogger, closer, err := logging.NewFileLogger(settings.Main.Log.Path, "promotion", level, settings.Main.Log)
		if err != nil {
			s.logger.Warn("file logging disabled", "path", settings.Main.Log.Path, "error", err)
		} else {
			engineLogger = fileLogger
			s.logCloser = closer
		}
	}

	store := datastore.New(settings, m.Datastore)
	if err := store.Open(); err != nil {
		s.Close()
		return nil, err
	}
	s.Store = store

	engineOpts, err := promotion.OptionsFromSettings(settings)
	if err != nil {
		s.Close()
		return nil, err
	}
	engineOpts = append(engineOpts,
		promotion.WithMetrics(m.Engine),
		promotion.WithLogger(engineLogger),
	)

	if o.mqtt {
		if !settings.MQTT.Enabled {
			s.Close()
			return nil, errors.Newf("mqtt is not enabled in configuration").
				Component("service").
				Category(errors.CategoryConfiguration).
				Build()
		}
		client, err := mqtt.NewClient(settings, m)
		if err != nil {
			s.Close()
			return nil, err
		}
		if err := client.Connect(ctx); err != nil {
			s.Close()
			return nil, err
		}
		s.MQTT = client
		engineOpts = append(engineOpts, promotion.WithPublisher(mqtt.NewGoalPublisher(client, settings)))
	}

	engine, err := promotion.New(s.Store, engineOpts...)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.Engine = engine

	return s, nil
}

// Health reports whether the store answers.
func (s *Service) Health(ctx context.Context) error {
	return s.Store.Ping(ctx)
}

// Close releases everything Open acquired. It is safe to call on a
// partially opened Service.
func (s *Service) Close() {
	if s.MQTT != nil {
		s.MQTT.Disconnect()
	}
	if s.Store != nil {
		if err := s.Store.Close(); err != nil {
			s.logger.Error("failed to close datastore", "error", err)
		}
	}
	if s.logCloser != nil {
		if err := s.logCloser(); err != nil {
			s.logger.Error("failed to close log file", "error", err)
		}
	}
	telemetry.Flush(shutdownFlushTimeout)
}
