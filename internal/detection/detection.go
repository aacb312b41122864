// Package detection provides the domain models for object detections reported
// by robots: confirmed detections, tentative sightings awaiting promotion, and
// the rooms used to geo-tag them.
//
// These models are independent of the database schema. Persistence goes
// through the Repository and Store interfaces.
package detection

import (
	"strings"

	"github.com/JimmyVaras/ros-web-app/internal/errors"
	"github.com/JimmyVaras/ros-web-app/internal/geometry"
)

// NoRoom marks a detection that no room rectangle contains.
const NoRoom = geometry.NoRoom

// Detection is a confirmed, deduplicated object record usable for navigation.
// Confirmed detections are never mutated in place once persisted.
type Detection struct {
	ID               uint            `json:"id" yaml:"id"`
	Label            string          `json:"label" yaml:"label"`
	ObjectPosition   geometry.Point3 `json:"position_obj" yaml:"position_obj"`
	ApproachPosition geometry.Point3 `json:"position_nav" yaml:"position_nav"`
	RobotID          uint            `json:"robot_id" yaml:"robot_id"`
	RoomID           uint            `json:"room_id" yaml:"room_id"` // NoRoom when unassigned
}

// Tentative is an unconfirmed sighting awaiting promotion or deletion.
type Tentative struct {
	Detection  `yaml:",inline"`
	Confidence int `json:"confidence" yaml:"confidence"`
}

// Confirm returns the confirmed detection a tentative record promotes into.
// The object position is flattened onto the floor plane and the id is
// cleared so the store assigns a new one.
func (t Tentative) Confirm() Detection {
	d := t.Detection
	d.ID = 0
	d.ObjectPosition = d.ObjectPosition.Planar()
	return d
}

// Room is an axis-aligned rectangle on the x/y plane used for room assignment.
type Room struct {
	ID             uint            `json:"id" yaml:"id"`
	Name           string          `json:"name" yaml:"name"`
	BoundaryStart  geometry.Point3 `json:"position_start" yaml:"position_start"`
	BoundaryEnd    geometry.Point3 `json:"position_end" yaml:"position_end"`
	ReferencePoint geometry.Point3 `json:"position_ref" yaml:"position_ref"`
}

// ZoneID implements geometry.Zone.
func (r Room) ZoneID() uint { return r.ID }

// Corners implements geometry.Zone.
func (r Room) Corners() (start, end geometry.Point3) { return r.BoundaryStart, r.BoundaryEnd }

// Validate checks a room before it is stored.
func (r Room) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.ValidationError("room name must not be empty")
	}
	for _, p := range []geometry.Point3{r.BoundaryStart, r.BoundaryEnd, r.ReferencePoint} {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Marker is one candidate detection as reported by a robot.
type Marker struct {
	Label            string           `json:"label" yaml:"label"`
	ObjectPosition   geometry.Point3  `json:"position_obj" yaml:"position_obj"`
	ApproachPosition *geometry.Point3 `json:"position_nav,omitempty" yaml:"position_nav,omitempty"` // defaults to ObjectPosition
	Confidence       int              `json:"confidence" yaml:"confidence"`
	RobotID          uint             `json:"robot_id" yaml:"robot_id"`

	// coordinates absent from the decoded payload, e.g. "position_obj.y"
	missing []string
}

// Validate rejects markers without a label, with coordinates missing from
// the decoded payload, or with non-finite coordinates.
func (m Marker) Validate() error {
	if strings.TrimSpace(m.Label) == "" {
		return errors.ValidationError("marker label must not be empty")
	}
	if len(m.missing) > 0 {
		return errors.Newf("marker %q is missing coordinates: %s", m.Label, strings.Join(m.missing, ", ")).
			Component("detection").
			Category(errors.CategoryValidation).
			Context("missing", m.missing).
			Build()
	}
	if err := m.ObjectPosition.Validate(); err != nil {
		return err
	}
	if m.ApproachPosition != nil {
		if err := m.ApproachPosition.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Approach returns the approach position, falling back to the object position.
func (m Marker) Approach() geometry.Point3 {
	if m.ApproachPosition == nil {
		return m.ObjectPosition
	}
	return *m.ApproachPosition
}

// Tentative builds the tentative record for m in the given room.
func (m Marker) Tentative(roomID uint) Tentative {
	return Tentative{
		Detection: Detection{
			Label:            m.Label,
			ObjectPosition:   m.ObjectPosition,
			ApproachPosition: m.Approach(),
			RobotID:          m.RobotID,
			RoomID:           roomID,
		},
		Confidence: m.Confidence,
	}
}
