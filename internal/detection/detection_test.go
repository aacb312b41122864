package detection

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/JimmyVaras/ros-web-app/internal/errors"
	"github.com/JimmyVaras/ros-web-app/internal/geometry"
)

func TestMarkerValidate(t *testing.T) {
	t.Parallel()

	nan := geometry.Point3{X: math.NaN()}
	tests := []struct {
		name    string
		marker  Marker
		wantErr bool
	}{
		{"valid", Marker{Label: "chair", ObjectPosition: geometry.Point3{X: 1}}, false},
		{"empty label", Marker{ObjectPosition: geometry.Point3{X: 1}}, true},
		{"blank label", Marker{Label: "  ", ObjectPosition: geometry.Point3{X: 1}}, true},
		{"infinite object", Marker{Label: "cup", ObjectPosition: geometry.Point3{Y: math.Inf(1)}}, true},
		{"NaN approach", Marker{Label: "cup", ApproachPosition: &nan}, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.marker.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsValidation(err))
		})
	}
}

func TestMarkerApproachDefaultsToObject(t *testing.T) {
	t.Parallel()

	m := Marker{Label: "plant", ObjectPosition: geometry.Point3{X: 2, Y: 3, Z: 0.4}, RobotID: 9, Confidence: 80}
	assert.Equal(t, m.ObjectPosition, m.Approach())

	nav := geometry.Point3{X: 1, Y: 3}
	m.ApproachPosition = &nav
	tent := m.Tentative(4)
	assert.Equal(t, nav, tent.ApproachPosition)
	assert.Equal(t, uint(4), tent.RoomID)
	assert.Equal(t, uint(9), tent.RobotID)
	assert.Equal(t, 80, tent.Confidence)
}

func TestTentativeConfirmFlattensObject(t *testing.T) {
	t.Parallel()

	tent := Tentative{
		Detection: Detection{
			ID:               12,
			Label:            "bottle",
			ObjectPosition:   geometry.Point3{X: 1, Y: 2, Z: 0.8},
			ApproachPosition: geometry.Point3{X: 0.5, Y: 2, Z: 0.1},
			RobotID:          3,
			RoomID:           2,
		},
		Confidence: 55,
	}

	d := tent.Confirm()
	assert.Equal(t, uint(0), d.ID)
	assert.Equal(t, geometry.Point3{X: 1, Y: 2}, d.ObjectPosition)
	assert.Equal(t, tent.ApproachPosition, d.ApproachPosition)
	assert.Equal(t, "bottle", d.Label)
	assert.Equal(t, uint(3), d.RobotID)
	assert.Equal(t, uint(2), d.RoomID)
}

func TestMarkerWireFormat(t *testing.T) {
	t.Parallel()

	const payload = `[{"label":"chair","position_obj":{"x":1,"y":2,"z":0.5},"confidence":70,"robot_id":1},
		{"label":"door","position_obj":{"x":3,"y":4,"z":0},"position_nav":{"x":2,"y":4,"z":0},"robot_id":1}]`

	var markers []Marker
	require.NoError(t, json.Unmarshal([]byte(payload), &markers))
	require.Len(t, markers, 2)
	assert.Nil(t, markers[0].ApproachPosition)
	require.NotNil(t, markers[1].ApproachPosition)
	assert.InDelta(t, 2, markers[1].ApproachPosition.X, 0)

	const doc = `
- label: sofa
  position_obj: {x: 5, y: 1, z: 0}
  confidence: 90
  robot_id: 2
`
	var fromYAML []Marker
	require.NoError(t, yaml.Unmarshal([]byte(doc), &fromYAML))
	require.Len(t, fromYAML, 1)
	assert.Equal(t, "sofa", fromYAML[0].Label)
	assert.Equal(t, uint(2), fromYAML[0].RobotID)
}

func TestMarkerMissingCoordinates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload string
		wantErr bool
	}{
		{"complete", `{"label":"chair","position_obj":{"x":0,"y":0,"z":0}}`, false},
		{"complete with approach", `{"label":"chair","position_obj":{"x":1,"y":1,"z":0},"position_nav":{"x":0,"y":1,"z":0}}`, false},
		{"no object position", `{"label":"chair","robot_id":1}`, true},
		{"null object position", `{"label":"chair","position_obj":null}`, true},
		{"object missing y and z", `{"label":"table","position_obj":{"x":3}}`, true},
		{"approach missing x", `{"label":"door","position_obj":{"x":1,"y":1,"z":0},"position_nav":{"y":1,"z":0}}`, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var m Marker
			require.NoError(t, json.Unmarshal([]byte(tt.payload), &m))
			err := m.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsValidation(err))
		})
	}
}

func TestMarkerMissingCoordinatesYAML(t *testing.T) {
	t.Parallel()

	const doc = `
- label: sofa
  position_obj: {x: 5, y: 1, z: 0}
- label: lamp
  position_obj: {x: 5}
- label: rug
- label: vase
  position_obj: {x: 1, y: 1, z: 0}
  position_nav: {x: 1}
`
	var markers []Marker
	require.NoError(t, yaml.Unmarshal([]byte(doc), &markers))
	require.Len(t, markers, 4)

	assert.NoError(t, markers[0].Validate())
	for _, m := range markers[1:] {
		err := m.Validate()
		require.Error(t, err, m.Label)
		assert.True(t, errors.IsValidation(err), m.Label)
		assert.Contains(t, err.Error(), "missing coordinates")
	}
}

func TestRoomZone(t *testing.T) {
	t.Parallel()

	rooms := []Room{
		{ID: 1, Name: "kitchen", BoundaryStart: geometry.Point3{X: 5, Y: 5}, BoundaryEnd: geometry.Point3{X: 0, Y: 0}},
		{ID: 2, Name: "hall", BoundaryStart: geometry.Point3{X: 5, Y: 0}, BoundaryEnd: geometry.Point3{X: 10, Y: 5}},
	}
	assert.Equal(t, uint(1), geometry.FindRoom(geometry.Point3{X: 1, Y: 1}, rooms))
	assert.Equal(t, uint(2), geometry.FindRoom(geometry.Point3{X: 7, Y: 1}, rooms))
	assert.Equal(t, NoRoom, geometry.FindRoom(geometry.Point3{X: 11, Y: 1}, rooms))

	assert.Error(t, Room{}.Validate())
	assert.NoError(t, rooms[0].Validate())
}
