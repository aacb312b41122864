// Package entities contains GORM models that map directly to database tables.
// These are persistence-layer structures separate from the domain model.
package entities

// Position is a point stored as three flat columns.
type Position struct {
	X float64
	Y float64
	Z float64
}

// DetectionEntity is the GORM model for the 'detections' table.
type DetectionEntity struct {
	ID       uint     `gorm:"primaryKey"`
	Label    string   `gorm:"size:255;not null;index:idx_detections_label"`
	Object   Position `gorm:"embedded;embeddedPrefix:obj_"`
	Approach Position `gorm:"embedded;embeddedPrefix:nav_"`
	RobotID  uint     `gorm:"index:idx_detections_robot"`
	RoomID   *uint    `gorm:"index:idx_detections_room"`
}

// TableName ensures GORM uses the expected table name.
func (DetectionEntity) TableName() string {
	return "detections"
}

// TempDetectionEntity is the GORM model for the 'temp_detections' table,
// holding tentative detections awaiting promotion.
type TempDetectionEntity struct {
	ID         uint     `gorm:"primaryKey"`
	Label      string   `gorm:"size:255;not null;index:idx_temp_detections_label"`
	Object     Position `gorm:"embedded;embeddedPrefix:obj_"`
	Approach   Position `gorm:"embedded;embeddedPrefix:nav_"`
	RobotID    uint     `gorm:"index:idx_temp_detections_robot"`
	RoomID     *uint
	Confidence int
}

// TableName ensures GORM uses the expected table name.
func (TempDetectionEntity) TableName() string {
	return "temp_detections"
}

// RoomEntity is the GORM model for the 'rooms' table.
type RoomEntity struct {
	ID        uint     `gorm:"primaryKey"`
	Name      string   `gorm:"size:255;not null"`
	Start     Position `gorm:"embedded;embeddedPrefix:start_"`
	End       Position `gorm:"embedded;embeddedPrefix:end_"`
	Reference Position `gorm:"embedded;embeddedPrefix:ref_"`
}

// TableName ensures GORM uses the expected table name.
func (RoomEntity) TableName() string {
	return "rooms"
}

// LabelLockEntity is the GORM model for the 'label_locks' table. It holds
// one row per label; writers lock the row to serialize work on that label
// across processes.
type LabelLockEntity struct {
	Label string `gorm:"primaryKey;size:255"`
}

// TableName ensures GORM uses the expected table name.
func (LabelLockEntity) TableName() string {
	return "label_locks"
}

// All returns every model managed by auto-migration.
func All() []any {
	return []any{&RoomEntity{}, &DetectionEntity{}, &TempDetectionEntity{}, &LabelLockEntity{}}
}
