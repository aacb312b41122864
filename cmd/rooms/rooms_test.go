package rooms

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JimmyVaras/ros-web-app/internal/geometry"
)

func TestReadRooms(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	path := filepath.Join(dir, "rooms.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"name": "kitchen", "position_start": {"x": 0, "y": 0, "z": 0}, "position_end": {"x": 4, "y": 3, "z": 0}, "position_ref": {"x": 2, "y": 1.5, "z": 0}},
		{"name": "hall", "position_start": {"x": 4, "y": 0, "z": 0}, "position_end": {"x": 8, "y": 3, "z": 0}}
	]`), 0o600))

	rooms, err := ReadRooms(path)
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, "kitchen", rooms[0].Name)
	assert.Equal(t, geometry.Point3{X: 4, Y: 3}, rooms[0].BoundaryEnd)
	assert.Equal(t, geometry.Point3{X: 2, Y: 1.5}, rooms[0].ReferencePoint)
	assert.NoError(t, rooms[1].Validate())

	_, err = ReadRooms(filepath.Join(dir, "nope.yaml"))
	assert.Error(t, err)
}
