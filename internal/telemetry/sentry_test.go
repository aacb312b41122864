package telemetry

import (
	"testing"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JimmyVaras/ros-web-app/internal/conf"
	"github.com/JimmyVaras/ros-web-app/internal/errors"
)

func TestInitSentryDisabled(t *testing.T) {
	settings := &conf.Settings{}
	require.NoError(t, InitSentry(settings))
	assert.Nil(t, errors.GetTelemetryReporter())
}

// Not parallel: the Sentry hub and the error reporter are process globals.
func TestInitSentryReportsDatabaseErrors(t *testing.T) {
	transport := &MockTransport{}
	settings := &conf.Settings{}
	settings.Main.Name = "test-node"
	settings.Sentry.Enabled = true
	settings.Sentry.DSN = "https://public@sentry.example.com/1"

	require.NoError(t, initSentry(settings, transport))
	t.Cleanup(func() { Flush(time.Second) })

	_ = errors.Newf("expected record").
		Component("promotion").
		Category(errors.CategoryNotFound).
		Build()
	_ = errors.Newf("disk I/O error").
		Component("datastore").
		Category(errors.CategoryDatabase).
		Build()

	require.True(t, transport.WaitForEventCount(1, 2*time.Second))
	events := transport.GetEvents()
	require.Len(t, events, 1, "not-found errors are expected outcomes and not reported")
	assert.Contains(t, events[0].Message, "disk I/O error")
	assert.Equal(t, "datastore", events[0].Tags["component"])
	assert.Equal(t, "test-node", events[0].Tags["node"])
	assert.Empty(t, events[0].ServerName)
}

func TestApplyPrivacyFilters(t *testing.T) {
	t.Parallel()

	event := &sentry.Event{
		ServerName: "robot-hub.local",
		User:       sentry.User{ID: "42", IPAddress: "10.0.0.2"},
		Contexts:   map[string]sentry.Context{"os": {"name": "linux"}, "trace": {}},
		Extra:      map[string]any{"component": "mqtt", "path": "/home/robot"},
		Tags:       map[string]string{"hostname": "robot-hub", "category": "database"},
	}

	filtered := applyPrivacyFilters(event)
	assert.Empty(t, filtered.ServerName)
	assert.True(t, filtered.User.IsEmpty())
	assert.NotContains(t, filtered.Contexts, "os")
	assert.Contains(t, filtered.Contexts, "trace")
	assert.Equal(t, map[string]any{"component": "mqtt"}, filtered.Extra)
	assert.Equal(t, map[string]string{"category": "database"}, filtered.Tags)
}
