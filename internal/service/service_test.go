package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JimmyVaras/ros-web-app/internal/conf"
	"github.com/JimmyVaras/ros-web-app/internal/errors"
	"github.com/JimmyVaras/ros-web-app/internal/mqtt"
	"github.com/JimmyVaras/ros-web-app/internal/observability/metrics"
)

func testSettings(t *testing.T) *conf.Settings {
	t.Helper()
	settings := &conf.Settings{}
	settings.Main.Name = "test-node"
	settings.Dedup.Threshold = 1
	settings.Dedup.Mode = conf.DedupModePlanar
	settings.Store.Timeout = 5 * time.Second
	settings.Output.SQLite.Enabled = true
	settings.Output.SQLite.Path = filepath.Join(t.TempDir(), "service.db")
	settings.MQTT.MarkerTopic = "robots/markers"
	return settings
}

func openService(t *testing.T, settings *conf.Settings) *Service {
	t.Helper()
	svc, err := Open(context.Background(), settings)
	require.NoError(t, err)
	t.Cleanup(svc.Close)
	return svc
}

// fakeClient captures the subscription handler so tests can inject messages.
type fakeClient struct {
	mu       sync.Mutex
	handlers map[string]mqtt.MessageHandler
}

func (f *fakeClient) Connect(context.Context) error                 { return nil }
func (f *fakeClient) Publish(context.Context, string, string) error { return nil }
func (f *fakeClient) IsConnected() bool                             { return true }
func (f *fakeClient) Disconnect()                                   {}
func (f *fakeClient) Subscribe(_ context.Context, topic string, h mqtt.MessageHandler) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.handlers == nil {
		f.handlers = map[string]mqtt.MessageHandler{}
	}
	f.handlers[topic] = h
	return nil
}

func (f *fakeClient) Unsubscribe(_ context.Context, topic string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.handlers, topic)
	return nil
}

func (f *fakeClient) handler(topic string) mqtt.MessageHandler {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.handlers[topic]
}

func (f *fakeClient) deliver(topic string, payload []byte) bool {
	f.mu.Lock()
	h, ok := f.handlers[topic]
	f.mu.Unlock()
	if ok {
		h(topic, payload)
	}
	return ok
}

func TestOpenAndHealth(t *testing.T) {
	t.Parallel()
	svc := openService(t, testSettings(t))

	require.NotNil(t, svc.Engine)
	assert.Nil(t, svc.MQTT)
	require.NoError(t, svc.Health(context.Background()))
}

func TestOpenWithMQTTRequiresEnabled(t *testing.T) {
	t.Parallel()
	_, err := Open(context.Background(), testSettings(t), WithMQTT())
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
}

func TestListenWithoutMQTT(t *testing.T) {
	t.Parallel()
	svc := openService(t, testSettings(t))

	err := svc.Listen(context.Background())
	assert.True(t, errors.IsCategory(err, errors.CategoryState))
}

func TestListenIngestsBatches(t *testing.T) {
	t.Parallel()
	settings := testSettings(t)
	settings.Ingest.RateLimit = 100
	settings.Ingest.Burst = 5
	svc := openService(t, settings)
	client := &fakeClient{}
	svc.MQTT = client

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Listen(ctx) }()

	require.Eventually(t, func() bool {
		return client.deliver("robots/markers", []byte(`not json`))
	}, 2*time.Second, 10*time.Millisecond)

	client.deliver("robots/markers", []byte(`[
		{"label":"chair","position_obj":{"x":1,"y":1,"z":0.2},"confidence":90,"robot_id":1},
		{"label":"chair","position_obj":{"x":1.1,"y":1,"z":0.2},"confidence":85,"robot_id":2}
	]`))
	client.deliver("robots/markers", []byte(`{"markers":[{"label":"plant","position_obj":{"x":4,"y":0,"z":0}}]}`))

	require.Eventually(t, func() bool {
		items, err := svc.Engine.ListTentative(context.Background())
		return err == nil && len(items) == 2
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("listener did not stop")
	}
}

func TestListenUnsubscribesOnStop(t *testing.T) {
	t.Parallel()
	svc := openService(t, testSettings(t))
	client := &fakeClient{}
	svc.MQTT = client

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Listen(ctx) }()

	var h mqtt.MessageHandler
	require.Eventually(t, func() bool {
		h = client.handler("robots/markers")
		return h != nil
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("listener did not stop")
	}

	assert.False(t, client.deliver("robots/markers", []byte(`[]`)), "subscription must be gone after Listen returns")

	// A broker callback already in flight must not queue or count drops.
	for j := 0; j < queueSize+5; j++ {
		h("robots/markers", []byte(`[{"label":"chair","position_obj":{"x":1,"y":1,"z":0}}]`))
	}
	dropped := svc.Metrics.Engine.OperationErrors.WithLabelValues(metrics.OpReceiveMarkers, string(errors.CategoryLimit))
	assert.InDelta(t, 0, testutil.ToFloat64(dropped), 0)

	items, err := svc.Engine.ListTentative(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestNewLimiter(t *testing.T) {
	t.Parallel()
	assert.Nil(t, newLimiter(0, 10))

	l := newLimiter(2, 0)
	require.NotNil(t, l)
	assert.Equal(t, 1, l.Burst())
}
