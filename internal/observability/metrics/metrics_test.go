package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gather returns the metric families of registry keyed by name.
func gather(t *testing.T, registry *prometheus.Registry) map[string]*dto.MetricFamily {
	t.Helper()
	families, err := registry.Gather()
	require.NoError(t, err)

	out := make(map[string]*dto.MetricFamily, len(families))
	for _, f := range families {
		out[f.GetName()] = f
	}
	return out
}

func counterWithLabel(f *dto.MetricFamily, name, value string) float64 {
	for _, m := range f.GetMetric() {
		for _, l := range m.GetLabel() {
			if l.GetName() == name && l.GetValue() == value {
				return m.GetCounter().GetValue()
			}
		}
	}
	return -1
}

func TestEngineMetrics(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m, err := NewEngineMetrics(registry)
	require.NoError(t, err)

	m.RecordBatch(3)
	m.RecordMarker(OutcomeAdded)
	m.RecordMarker(OutcomeAdded)
	m.RecordMarker(OutcomeDuplicate)
	m.RecordPromotion(PromotionConflict)
	m.RecordDuration(OpPromote, 0.01)
	m.RecordRoomCache(true)

	families := gather(t, registry)
	require.Contains(t, families, "engine_markers_total")
	assert.InDelta(t, 2, counterWithLabel(families["engine_markers_total"], "outcome", OutcomeAdded), 0)
	assert.InDelta(t, 1, counterWithLabel(families["engine_markers_total"], "outcome", OutcomeDuplicate), 0)
	assert.InDelta(t, 1, counterWithLabel(families["engine_promotions_total"], "result", PromotionConflict), 0)
	assert.InDelta(t, 1, families["engine_batches_total"].GetMetric()[0].GetCounter().GetValue(), 0)
	assert.Equal(t, uint64(1), families["engine_batch_size"].GetMetric()[0].GetHistogram().GetSampleCount())
}

func TestEngineMetricsDoubleRegistration(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	_, err := NewEngineMetrics(registry)
	require.NoError(t, err)
	_, err = NewEngineMetrics(registry)
	assert.Error(t, err)
}

func TestDatastoreMetrics(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m, err := NewDatastoreMetrics(registry)
	require.NoError(t, err)

	m.RecordDbOperation(OpDbInsert, "temp_detections", StatusSuccess)
	m.RecordDbOperationError(OpDbQuery, "detections", "timeout")
	m.RecordTransaction(StatusSuccess, 0.002)
	m.UpdateTableRowCount("rooms", 4)

	families := gather(t, registry)
	assert.InDelta(t, 1, counterWithLabel(families["datastore_db_operations_total"], "table", "temp_detections"), 0)
	assert.InDelta(t, 1, counterWithLabel(families["datastore_db_operation_errors_total"], "error_type", "timeout"), 0)
	assert.InDelta(t, 4, families["datastore_db_table_rows"].GetMetric()[0].GetGauge().GetValue(), 0)
}

func TestMQTTMetrics(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m, err := NewMQTTMetrics(registry)
	require.NoError(t, err)

	m.UpdateConnectionStatus(true)
	m.RecordReceived("robots/markers", 512)
	m.RecordReceived("robots/markers", 2048)
	m.RecordPublished("robots/goals", 96)
	m.RecordFailure(StageSubscribe)
	m.StartPublishTimer().ObserveDuration()

	families := gather(t, registry)
	assert.InDelta(t, 1, families["mqtt_broker_connected"].GetMetric()[0].GetGauge().GetValue(), 0)
	assert.Positive(t, families["mqtt_broker_last_connect_timestamp_seconds"].GetMetric()[0].GetGauge().GetValue())
	assert.InDelta(t, 2, counterWithLabel(families["mqtt_messages_total"], "topic", "robots/markers"), 0)
	assert.InDelta(t, 1, counterWithLabel(families["mqtt_messages_total"], "direction", DirectionPublish), 0)
	assert.InDelta(t, 1, counterWithLabel(families["mqtt_failures_total"], "stage", StageSubscribe), 0)
	assert.Len(t, families["mqtt_payload_bytes"].GetMetric(), 2)
	assert.Equal(t, uint64(1), families["mqtt_goal_publish_latency_seconds"].GetMetric()[0].GetHistogram().GetSampleCount())

	m.UpdateConnectionStatus(false)
	families = gather(t, registry)
	assert.InDelta(t, 0, families["mqtt_broker_connected"].GetMetric()[0].GetGauge().GetValue(), 0)
}
