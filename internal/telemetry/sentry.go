// Package telemetry provides opt-in error reporting to Sentry.
package telemetry

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/JimmyVaras/ros-web-app/internal/buildinfo"
	"github.com/JimmyVaras/ros-web-app/internal/conf"
	"github.com/JimmyVaras/ros-web-app/internal/errors"
	"github.com/JimmyVaras/ros-web-app/internal/logging"
)

var (
	initMu      sync.Mutex
	initialized bool
)

// InitSentry initializes the Sentry SDK and routes EnhancedErrors to it.
// It does nothing unless sentry.enabled is set.
func InitSentry(settings *conf.Settings) error {
	return initSentry(settings, nil)
}

// initSentry is InitSentry with an optional transport, used by tests.
func initSentry(settings *conf.Settings, transport sentry.Transport) error {
	logger := logging.ForService("telemetry")

	if !settings.Sentry.Enabled {
		logger.Debug("sentry telemetry is disabled")
		return nil
	}

	initMu.Lock()
	defer initMu.Unlock()

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              settings.Sentry.DSN,
		SampleRate:       1.0,
		AttachStacktrace: false,
		Environment:      "production",
		ServerName:       "", // Explicitly clear server name to prevent hostname leakage
		Release:          buildinfo.Current().Release(),
		Transport:        transport,
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			return applyPrivacyFilters(event)
		},
	})
	if err != nil {
		return errors.New(fmt.Errorf("sentry initialization failed: %w", err)).
			Component("telemetry").
			Category(errors.CategoryConfiguration).
			Build()
	}

	sentry.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("node", settings.NodeName())
		scope.SetTag("os", runtime.GOOS)
		scope.SetTag("arch", runtime.GOARCH)
		scope.SetTag("go_version", runtime.Version())
	})

	errors.SetTelemetryReporter(errors.NewSentryReporter(true))
	initialized = true

	logger.Info("sentry telemetry initialized")
	return nil
}

// applyPrivacyFilters strips user and host identifying data from an event.
func applyPrivacyFilters(event *sentry.Event) *sentry.Event {
	event.User = sentry.User{}
	event.ServerName = ""

	if event.Contexts != nil {
		delete(event.Contexts, "device")
		delete(event.Contexts, "os")
		delete(event.Contexts, "runtime")
	}

	for k := range event.Extra {
		if k != "error_type" && k != "component" {
			delete(event.Extra, k)
		}
	}

	if event.Tags != nil {
		delete(event.Tags, "server_name")
		delete(event.Tags, "hostname")
	}

	return event
}

// Flush waits up to timeout for queued events and detaches the error
// reporter. Call it once on shutdown.
func Flush(timeout time.Duration) {
	initMu.Lock()
	defer initMu.Unlock()

	if !initialized {
		return
	}
	errors.SetTelemetryReporter(nil)
	sentry.Flush(timeout)
	initialized = false
}
