package datastore

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"

	"github.com/JimmyVaras/ros-web-app/internal/conf"
	"github.com/JimmyVaras/ros-web-app/internal/datastore/entities"
	"github.com/JimmyVaras/ros-web-app/internal/datastore/mapper"
	"github.com/JimmyVaras/ros-web-app/internal/detection"
	"github.com/JimmyVaras/ros-web-app/internal/errors"
	"github.com/JimmyVaras/ros-web-app/internal/logging"
	"github.com/JimmyVaras/ros-web-app/internal/observability/metrics"
)

// Interface is the datastore contract used by the application. It is a
// detection.Store that can be opened and health checked.
type Interface interface {
	detection.Store
	Open() error
	Ping(ctx context.Context) error
	RefreshTableStats(ctx context.Context) error
}

// DataStore implements detection.Store on top of a gorm connection.
// SQLiteStore and MySQLStore embed it and only differ in how they open it.
type DataStore struct {
	DB      *gorm.DB
	metrics *Metrics
	logger  *slog.Logger
}

var _ detection.Store = (*DataStore)(nil)

// New creates a new DataStore instance based on the provided configuration
// context. m may be nil when metrics are not collected.
func New(settings *conf.Settings, m *Metrics) Interface {
	base := DataStore{metrics: m, logger: logging.ForService("datastore")}
	switch {
	case settings.Output.SQLite.Enabled:
		return &SQLiteStore{DataStore: base, Settings: settings}
	case settings.Output.MySQL.Enabled:
		return &MySQLStore{DataStore: base, Settings: settings}
	default:
		// Validation rejects this, keep a usable default anyway.
		return &SQLiteStore{DataStore: base, Settings: settings}
	}
}

// db returns a session bound to ctx, failing if the store was never opened.
func (ds *DataStore) db(ctx context.Context, operation string) (*gorm.DB, error) {
	if ds.DB == nil {
		return nil, errors.Newf("database connection is not initialized").
			Component("datastore").
			Category(errors.CategoryState).
			Context("operation", operation).
			Build()
	}
	return ds.DB.WithContext(ctx), nil
}

// FindDetectionsByLabel returns confirmed detections with the given label, by id.
func (ds *DataStore) FindDetectionsByLabel(ctx context.Context, label string) ([]detection.Detection, error) {
	db, err := ds.db(ctx, "find_detections_by_label")
	if err != nil {
		return nil, err
	}

	var rows []entities.DetectionEntity
	if err := db.Where("label = ?", label).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, dbError(err, "find_detections_by_label", "detections", "label", label)
	}

	out := make([]detection.Detection, 0, len(rows))
	for i := range rows {
		out = append(out, mapper.EntityToDetection(&rows[i]))
	}
	return out, nil
}

// GetDetection loads a confirmed detection.
func (ds *DataStore) GetDetection(ctx context.Context, id uint) (*detection.Detection, error) {
	db, err := ds.db(ctx, "get_detection")
	if err != nil {
		return nil, err
	}

	var row entities.DetectionEntity
	if err := db.First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("detection", id)
		}
		return nil, dbError(err, "get_detection", "detections", "id", id)
	}

	d := mapper.EntityToDetection(&row)
	return &d, nil
}

// InsertDetection stores d and sets its id.
func (ds *DataStore) InsertDetection(ctx context.Context, d *detection.Detection) error {
	if strings.TrimSpace(d.Label) == "" {
		return validationError("detection label must not be empty", "label", d.Label)
	}
	db, err := ds.db(ctx, "insert_detection")
	if err != nil {
		return err
	}

	row := mapper.DetectionToEntity(d)
	row.ID = 0
	if err := db.Create(row).Error; err != nil {
		return dbError(err, "insert_detection", "detections", "label", d.Label)
	}
	d.ID = row.ID
	return nil
}

// DeleteDetection removes a confirmed detection.
func (ds *DataStore) DeleteDetection(ctx context.Context, id uint) error {
	db, err := ds.db(ctx, "delete_detection")
	if err != nil {
		return err
	}

	result := db.Delete(&entities.DetectionEntity{}, id)
	if result.Error != nil {
		return dbError(result.Error, "delete_detection", "detections", "id", id)
	}
	if result.RowsAffected == 0 {
		return notFoundError("detection", id)
	}
	return nil
}

// ListDetections returns every confirmed detection, by id.
func (ds *DataStore) ListDetections(ctx context.Context) ([]detection.Detection, error) {
	db, err := ds.db(ctx, "list_detections")
	if err != nil {
		return nil, err
	}

	var rows []entities.DetectionEntity
	if err := db.Order("id ASC").Find(&rows).Error; err != nil {
		return nil, dbError(err, "list_detections", "detections")
	}

	out := make([]detection.Detection, 0, len(rows))
	for i := range rows {
		out = append(out, mapper.EntityToDetection(&rows[i]))
	}
	return out, nil
}

// FindTentativeByLabel returns tentative detections with the given label, by id.
func (ds *DataStore) FindTentativeByLabel(ctx context.Context, label string) ([]detection.Tentative, error) {
	db, err := ds.db(ctx, "find_tentative_by_label")
	if err != nil {
		return nil, err
	}

	var rows []entities.TempDetectionEntity
	if err := db.Where("label = ?", label).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, dbError(err, "find_tentative_by_label", "temp_detections", "label", label)
	}

	out := make([]detection.Tentative, 0, len(rows))
	for i := range rows {
		out = append(out, mapper.EntityToTentative(&rows[i]))
	}
	return out, nil
}

// GetTentative loads a tentative detection.
func (ds *DataStore) GetTentative(ctx context.Context, id uint) (*detection.Tentative, error) {
	db, err := ds.db(ctx, "get_tentative")
	if err != nil {
		return nil, err
	}

	var row entities.TempDetectionEntity
	if err := db.First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundError("tentative detection", id)
		}
		return nil, dbError(err, "get_tentative", "temp_detections", "id", id)
	}

	t := mapper.EntityToTentative(&row)
	return &t, nil
}

// InsertTentative stores t and sets its id.
func (ds *DataStore) InsertTentative(ctx context.Context, t *detection.Tentative) error {
	if strings.TrimSpace(t.Label) == "" {
		return validationError("tentative label must not be empty", "label", t.Label)
	}
	db, err := ds.db(ctx, "insert_tentative")
	if err != nil {
		return err
	}

	row := mapper.TentativeToEntity(t)
	row.ID = 0
	if err := db.Create(row).Error; err != nil {
		return dbError(err, "insert_tentative", "temp_detections", "label", t.Label)
	}
	t.ID = row.ID
	return nil
}

// DeleteTentative removes a tentative detection.
func (ds *DataStore) DeleteTentative(ctx context.Context, id uint) error {
	db, err := ds.db(ctx, "delete_tentative")
	if err != nil {
		return err
	}

	result := db.Delete(&entities.TempDetectionEntity{}, id)
	if result.Error != nil {
		return dbError(result.Error, "delete_tentative", "temp_detections", "id", id)
	}
	if result.RowsAffected == 0 {
		return notFoundError("tentative detection", id)
	}
	return nil
}

// ClearAllTentative removes every tentative detection and returns how many were removed.
func (ds *DataStore) ClearAllTentative(ctx context.Context) (int64, error) {
	db, err := ds.db(ctx, "clear_tentative")
	if err != nil {
		return 0, err
	}

	result := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&entities.TempDetectionEntity{})
	if result.Error != nil {
		return 0, dbError(result.Error, "clear_tentative", "temp_detections")
	}
	return result.RowsAffected, nil
}

// ListTentative returns every tentative detection, by id.
func (ds *DataStore) ListTentative(ctx context.Context) ([]detection.Tentative, error) {
	db, err := ds.db(ctx, "list_tentative")
	if err != nil {
		return nil, err
	}

	var rows []entities.TempDetectionEntity
	if err := db.Order("id ASC").Find(&rows).Error; err != nil {
		return nil, dbError(err, "list_tentative", "temp_detections")
	}

	out := make([]detection.Tentative, 0, len(rows))
	for i := range rows {
		out = append(out, mapper.EntityToTentative(&rows[i]))
	}
	return out, nil
}

// ListRooms returns all rooms ordered by id, the order room assignment uses.
func (ds *DataStore) ListRooms(ctx context.Context) ([]detection.Room, error) {
	db, err := ds.db(ctx, "list_rooms")
	if err != nil {
		return nil, err
	}

	var rows []entities.RoomEntity
	if err := db.Order("id ASC").Find(&rows).Error; err != nil {
		return nil, dbError(err, "list_rooms", "rooms")
	}

	out := make([]detection.Room, 0, len(rows))
	for i := range rows {
		out = append(out, mapper.EntityToRoom(&rows[i]))
	}
	return out, nil
}

// InsertRoom stores r and sets its id.
func (ds *DataStore) InsertRoom(ctx context.Context, r *detection.Room) error {
	if err := r.Validate(); err != nil {
		return err
	}
	db, err := ds.db(ctx, "insert_room")
	if err != nil {
		return err
	}

	row := mapper.RoomToEntity(r)
	if err := db.Create(row).Error; err != nil {
		return dbError(err, "insert_room", "rooms", "name", r.Name)
	}
	r.ID = row.ID
	return nil
}

// LockLabel takes an exclusive row lock on label that is held until the
// enclosing transaction ends. Other connections, including those of other
// processes, block in LockLabel for the same label until then. It must be
// called on the repository handed to Atomically.
func (ds *DataStore) LockLabel(ctx context.Context, label string) error {
	db, err := ds.db(ctx, "lock_label")
	if err != nil {
		return err
	}
	if _, inTx := db.Statement.ConnPool.(gorm.TxCommitter); !inTx {
		return errors.Newf("label lock requires a transaction").
			Component("datastore").
			Category(errors.CategoryState).
			Context("label", label).
			Build()
	}

	start := time.Now()
	row := entities.LabelLockEntity{Label: label}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return dbTimedError(err, "lock_label", "label_locks", start, "label", label)
	}
	// SQLite has no row locks; its immediate transactions already serialize writers.
	if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("label = ?", label).
		Take(&row).Error; err != nil {
		return dbTimedError(err, "lock_label", "label_locks", start, "label", label)
	}
	return nil
}

// Atomically runs fn inside one transaction. Errors returned by fn are
// passed through unchanged so callers keep their categories.
func (ds *DataStore) Atomically(ctx context.Context, fn func(repo detection.Repository) error) error {
	db, err := ds.db(ctx, "transaction")
	if err != nil {
		return err
	}

	start := time.Now()
	var fnErr error
	err = db.Transaction(func(tx *gorm.DB) error {
		fnErr = fn(&DataStore{DB: tx, metrics: ds.metrics, logger: ds.logger})
		return fnErr
	})

	status := metrics.StatusSuccess
	if err != nil {
		status = metrics.StatusError
	}
	if ds.metrics != nil {
		ds.metrics.RecordTransaction(status, time.Since(start).Seconds())
	}

	switch {
	case err == nil:
		return nil
	case fnErr != nil:
		return fnErr
	default:
		return dbTimedError(err, "commit", sqlUnknown, start)
	}
}

// Ping verifies the database connection is alive.
func (ds *DataStore) Ping(ctx context.Context) error {
	if ds.DB == nil {
		return errors.Newf("database connection is not initialized").
			Component("datastore").
			Category(errors.CategoryState).
			Build()
	}
	sqlDB, err := ds.DB.DB()
	if err != nil {
		return dbError(err, "ping", sqlUnknown)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return dbError(err, "ping", sqlUnknown)
	}
	return nil
}

// RefreshTableStats publishes row counts of all tables as metrics.
func (ds *DataStore) RefreshTableStats(ctx context.Context) error {
	db, err := ds.db(ctx, "table_stats")
	if err != nil {
		return err
	}

	for _, model := range entities.All() {
		table := model.(schema.Tabler).TableName()
		var count int64
		if err := db.Model(model).Count(&count).Error; err != nil {
			return dbError(err, "table_stats", table)
		}
		if ds.metrics != nil {
			ds.metrics.UpdateTableRowCount(table, count)
		}
	}
	return nil
}

// closeDB closes the underlying connection pool.
func (ds *DataStore) closeDB() error {
	if ds.DB == nil {
		return errors.Newf("database connection is not initialized").
			Component("datastore").
			Category(errors.CategoryState).
			Build()
	}

	sqlDB, err := ds.DB.DB()
	if err != nil {
		return dbError(err, "close", sqlUnknown)
	}
	if err := sqlDB.Close(); err != nil {
		return dbError(err, "close", sqlUnknown)
	}
	return nil
}

// Close closes the database connection.
func (ds *DataStore) Close() error {
	return ds.closeDB()
}
