package detection

import (
	"encoding/json"

	"gopkg.in/yaml.v3"

	"github.com/JimmyVaras/ros-web-app/internal/geometry"
)

// wirePoint mirrors geometry.Point3 with optional axes so that an absent
// coordinate can be told apart from zero.
type wirePoint struct {
	X *float64 `json:"x" yaml:"x"`
	Y *float64 `json:"y" yaml:"y"`
	Z *float64 `json:"z" yaml:"z"`
}

// point converts w and appends the names of absent axes to missing.
func (w *wirePoint) point(field string, missing []string) (geometry.Point3, []string) {
	var p geometry.Point3
	for _, axis := range [...]struct {
		name string
		src  *float64
		dst  *float64
	}{{"x", w.X, &p.X}, {"y", w.Y, &p.Y}, {"z", w.Z, &p.Z}} {
		if axis.src == nil {
			missing = append(missing, field+"."+axis.name)
			continue
		}
		*axis.dst = *axis.src
	}
	return p, missing
}

type wireMarker struct {
	Label            string     `json:"label" yaml:"label"`
	ObjectPosition   *wirePoint `json:"position_obj" yaml:"position_obj"`
	ApproachPosition *wirePoint `json:"position_nav" yaml:"position_nav"`
	Confidence       int        `json:"confidence" yaml:"confidence"`
	RobotID          uint       `json:"robot_id" yaml:"robot_id"`
}

func (w *wireMarker) marker() Marker {
	m := Marker{Label: w.Label, Confidence: w.Confidence, RobotID: w.RobotID}
	if w.ObjectPosition == nil {
		m.missing = append(m.missing, "position_obj")
	} else {
		m.ObjectPosition, m.missing = w.ObjectPosition.point("position_obj", m.missing)
	}
	if w.ApproachPosition != nil {
		var nav geometry.Point3
		nav, m.missing = w.ApproachPosition.point("position_nav", m.missing)
		m.ApproachPosition = &nav
	}
	return m
}

// UnmarshalJSON decodes a marker and remembers absent coordinates for Validate.
func (m *Marker) UnmarshalJSON(data []byte) error {
	var w wireMarker
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*m = w.marker()
	return nil
}

// UnmarshalYAML is the YAML counterpart of UnmarshalJSON.
func (m *Marker) UnmarshalYAML(value *yaml.Node) error {
	var w wireMarker
	if err := value.Decode(&w); err != nil {
		return err
	}
	*m = w.marker()
	return nil
}
