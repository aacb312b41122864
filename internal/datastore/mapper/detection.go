// Package mapper provides conversion functions between domain models and database entities.
package mapper

import (
	"github.com/JimmyVaras/ros-web-app/internal/datastore/entities"
	"github.com/JimmyVaras/ros-web-app/internal/detection"
	"github.com/JimmyVaras/ros-web-app/internal/geometry"
)

func toPosition(p geometry.Point3) entities.Position {
	return entities.Position{X: p.X, Y: p.Y, Z: p.Z}
}

func toPoint(p entities.Position) geometry.Point3 {
	return geometry.Point3{X: p.X, Y: p.Y, Z: p.Z}
}

// toRoomID maps detection.NoRoom to a NULL column.
func toRoomID(id uint) *uint {
	if id == detection.NoRoom {
		return nil
	}
	return &id
}

func fromRoomID(id *uint) uint {
	if id == nil {
		return detection.NoRoom
	}
	return *id
}

// DetectionToEntity converts a confirmed detection to its table row.
func DetectionToEntity(d *detection.Detection) *entities.DetectionEntity {
	return &entities.DetectionEntity{
		ID:       d.ID,
		Label:    d.Label,
		Object:   toPosition(d.ObjectPosition),
		Approach: toPosition(d.ApproachPosition),
		RobotID:  d.RobotID,
		RoomID:   toRoomID(d.RoomID),
	}
}

// EntityToDetection converts a table row to a confirmed detection.
func EntityToDetection(e *entities.DetectionEntity) detection.Detection {
	return detection.Detection{
		ID:               e.ID,
		Label:            e.Label,
		ObjectPosition:   toPoint(e.Object),
		ApproachPosition: toPoint(e.Approach),
		RobotID:          e.RobotID,
		RoomID:           fromRoomID(e.RoomID),
	}
}

// TentativeToEntity converts a tentative detection to its table row.
func TentativeToEntity(t *detection.Tentative) *entities.TempDetectionEntity {
	return &entities.TempDetectionEntity{
		ID:         t.ID,
		Label:      t.Label,
		Object:     toPosition(t.ObjectPosition),
		Approach:   toPosition(t.ApproachPosition),
		RobotID:    t.RobotID,
		RoomID:     toRoomID(t.RoomID),
		Confidence: t.Confidence,
	}
}

// EntityToTentative converts a table row to a tentative detection.
func EntityToTentative(e *entities.TempDetectionEntity) detection.Tentative {
	return detection.Tentative{
		Detection: detection.Detection{
			ID:               e.ID,
			Label:            e.Label,
			ObjectPosition:   toPoint(e.Object),
			ApproachPosition: toPoint(e.Approach),
			RobotID:          e.RobotID,
			RoomID:           fromRoomID(e.RoomID),
		},
		Confidence: e.Confidence,
	}
}

// RoomToEntity converts a room to its table row.
func RoomToEntity(r *detection.Room) *entities.RoomEntity {
	return &entities.RoomEntity{
		ID:        r.ID,
		Name:      r.Name,
		Start:     toPosition(r.BoundaryStart),
		End:       toPosition(r.BoundaryEnd),
		Reference: toPosition(r.ReferencePoint),
	}
}

// EntityToRoom converts a table row to a room.
func EntityToRoom(e *entities.RoomEntity) detection.Room {
	return detection.Room{
		ID:             e.ID,
		Name:           e.Name,
		BoundaryStart:  toPoint(e.Start),
		BoundaryEnd:    toPoint(e.End),
		ReferencePoint: toPoint(e.Reference),
	}
}
