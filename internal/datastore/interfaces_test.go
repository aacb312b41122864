package datastore

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JimmyVaras/ros-web-app/internal/conf"
	"github.com/JimmyVaras/ros-web-app/internal/detection"
	"github.com/JimmyVaras/ros-web-app/internal/errors"
	"github.com/JimmyVaras/ros-web-app/internal/geometry"
	"github.com/JimmyVaras/ros-web-app/internal/observability/metrics"
)

// createDatabase opens a fresh SQLite database in a temp dir.
func createDatabase(t *testing.T, m *Metrics) Interface {
	t.Helper()

	settings := &conf.Settings{}
	settings.Output.SQLite.Enabled = true
	settings.Output.SQLite.Path = filepath.Join(t.TempDir(), "test.db")

	dataStore := New(settings, m)
	require.NoError(t, dataStore.Open(), "Failed to open database")

	t.Cleanup(func() {
		assert.NoError(t, dataStore.Close(), "Failed to close datastore")
	})

	return dataStore
}

func tentative(label string, x, y float64) *detection.Tentative {
	return &detection.Tentative{
		Detection: detection.Detection{
			Label:            label,
			ObjectPosition:   geometry.Point3{X: x, Y: y, Z: 0.5},
			ApproachPosition: geometry.Point3{X: x - 0.5, Y: y},
			RobotID:          1,
		},
		Confidence: 75,
	}
}

func TestTentativeLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ds := createDatabase(t, nil)

	first := tentative("chair", 1, 1)
	first.RoomID = 3
	require.NoError(t, ds.InsertTentative(ctx, first))
	require.NotZero(t, first.ID)

	second := tentative("chair", 5, 5)
	require.NoError(t, ds.InsertTentative(ctx, second))
	require.NoError(t, ds.InsertTentative(ctx, tentative("table", 2, 2)))

	chairs, err := ds.FindTentativeByLabel(ctx, "chair")
	require.NoError(t, err)
	require.Len(t, chairs, 2)
	assert.Equal(t, first.ID, chairs[0].ID)
	assert.Equal(t, uint(3), chairs[0].RoomID)
	assert.Equal(t, detection.NoRoom, chairs[1].RoomID)
	assert.Equal(t, 75, chairs[0].Confidence)
	assert.InDelta(t, 0.5, chairs[0].ObjectPosition.Z, 0)

	got, err := ds.GetTentative(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, *second, *got)

	require.NoError(t, ds.DeleteTentative(ctx, second.ID))
	_, err = ds.GetTentative(ctx, second.ID)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
	assert.ErrorIs(t, err, detection.ErrNotFound)

	all, err := ds.ListTentative(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestDeleteMissingRecords(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ds := createDatabase(t, nil)

	err := ds.DeleteTentative(ctx, 42)
	assert.ErrorIs(t, err, detection.ErrNotFound)
	assert.True(t, errors.IsNotFound(err))

	err = ds.DeleteDetection(ctx, 42)
	assert.ErrorIs(t, err, detection.ErrNotFound)

	_, err = ds.GetDetection(ctx, 42)
	assert.ErrorIs(t, err, detection.ErrNotFound)
}

func TestClearAllTentative(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ds := createDatabase(t, nil)

	n, err := ds.ClearAllTentative(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	for i := 0; i < 3; i++ {
		require.NoError(t, ds.InsertTentative(ctx, tentative("cup", float64(i*3), 0)))
	}

	n, err = ds.ClearAllTentative(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	left, err := ds.ListTentative(ctx)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestDetectionsAndRooms(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ds := createDatabase(t, nil)

	kitchen := &detection.Room{Name: "kitchen", BoundaryStart: geometry.Point3{X: 4, Y: 4}, BoundaryEnd: geometry.Point3{}}
	hall := &detection.Room{Name: "hall", BoundaryStart: geometry.Point3{X: 4}, BoundaryEnd: geometry.Point3{X: 10, Y: 4}}
	require.NoError(t, ds.InsertRoom(ctx, kitchen))
	require.NoError(t, ds.InsertRoom(ctx, hall))
	assert.Error(t, ds.InsertRoom(ctx, &detection.Room{}))

	rooms, err := ds.ListRooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, "kitchen", rooms[0].Name)
	assert.Equal(t, *hall, rooms[1])

	d := &detection.Detection{Label: "sofa", ObjectPosition: geometry.Point3{X: 1, Y: 1}, RobotID: 2, RoomID: kitchen.ID}
	require.NoError(t, ds.InsertDetection(ctx, d))

	found, err := ds.FindDetectionsByLabel(ctx, "sofa")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, *d, found[0])

	none, err := ds.FindDetectionsByLabel(ctx, "lamp")
	require.NoError(t, err)
	assert.Empty(t, none)

	require.NoError(t, ds.DeleteDetection(ctx, d.ID))
	all, err := ds.ListDetections(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestInsertRejectsEmptyLabel(t *testing.T) {
	t.Parallel()
	ds := createDatabase(t, nil)

	err := ds.InsertTentative(context.Background(), tentative("", 0, 0))
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestAtomicallyRollsBack(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ds := createDatabase(t, nil)

	keep := tentative("bottle", 0, 0)
	require.NoError(t, ds.InsertTentative(ctx, keep))

	boom := stderrors.New("boom")
	err := ds.Atomically(ctx, func(repo detection.Repository) error {
		d := keep.Confirm()
		if err := repo.InsertDetection(ctx, &d); err != nil {
			return err
		}
		if err := repo.DeleteTentative(ctx, keep.ID); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = ds.GetTentative(ctx, keep.ID)
	require.NoError(t, err, "tentative must survive a rolled back transaction")
	confirmed, err := ds.ListDetections(ctx)
	require.NoError(t, err)
	assert.Empty(t, confirmed)
}

func TestAtomicallyCommits(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ds := createDatabase(t, nil)

	src := tentative("bottle", 0, 0)
	require.NoError(t, ds.InsertTentative(ctx, src))

	var promoted detection.Detection
	require.NoError(t, ds.Atomically(ctx, func(repo detection.Repository) error {
		promoted = src.Confirm()
		if err := repo.InsertDetection(ctx, &promoted); err != nil {
			return err
		}
		return repo.DeleteTentative(ctx, src.ID)
	}))

	got, err := ds.GetDetection(ctx, promoted.ID)
	require.NoError(t, err)
	assert.Equal(t, "bottle", got.Label)
	assert.InDelta(t, 0, got.ObjectPosition.Z, 0)

	_, err = ds.GetTentative(ctx, src.ID)
	assert.ErrorIs(t, err, detection.ErrNotFound)
}

func TestLockLabel(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	ds := createDatabase(t, nil)

	err := ds.LockLabel(ctx, "chair")
	require.Error(t, err, "a lock outside a transaction would be released at once")
	assert.True(t, errors.IsCategory(err, errors.CategoryState))

	for j := 0; j < 2; j++ {
		require.NoError(t, ds.Atomically(ctx, func(repo detection.Repository) error {
			if err := repo.LockLabel(ctx, "chair"); err != nil {
				return err
			}
			return repo.InsertTentative(ctx, tentative("chair", 1, 1))
		}))
	}

	chairs, err := ds.FindTentativeByLabel(ctx, "chair")
	require.NoError(t, err)
	assert.Len(t, chairs, 2)
}

func TestAtomicallyFailureRecordsTiming(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	settings := &conf.Settings{}
	settings.Output.SQLite.Enabled = true
	settings.Output.SQLite.Path = filepath.Join(t.TempDir(), "closed.db")
	ds := New(settings, nil)
	require.NoError(t, ds.Open())
	require.NoError(t, ds.Close())

	ran := false
	err := ds.Atomically(ctx, func(detection.Repository) error {
		ran = true
		return nil
	})
	require.Error(t, err)
	assert.False(t, ran)
	assert.True(t, errors.IsDatabase(err))

	var ee *errors.EnhancedError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, "commit", ee.GetContext()["operation"])
	assert.Contains(t, ee.GetContext(), "duration_ms")
}

func TestMetricsAndHealth(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	registry := prometheus.NewRegistry()
	m, err := metrics.NewDatastoreMetrics(registry)
	require.NoError(t, err)
	ds := createDatabase(t, m)

	require.NoError(t, ds.Ping(ctx))
	require.NoError(t, ds.InsertTentative(ctx, tentative("plant", 1, 1)))
	require.NoError(t, ds.RefreshTableStats(ctx))

	families, err := registry.Gather()
	require.NoError(t, err)

	var rows float64 = -1
	for _, f := range families {
		if f.GetName() != "datastore_db_table_rows" {
			continue
		}
		for _, metric := range f.GetMetric() {
			for _, l := range metric.GetLabel() {
				if l.GetValue() == "temp_detections" {
					rows = metric.GetGauge().GetValue()
				}
			}
		}
	}
	assert.InDelta(t, 1, rows, 0)
}

func TestUnopenedStore(t *testing.T) {
	t.Parallel()

	ds := &DataStore{}
	_, err := ds.ListRooms(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryState))
	assert.Error(t, ds.Ping(context.Background()))
}
