package datastore

import (
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/JimmyVaras/ros-web-app/internal/datastore/entities"
	"github.com/JimmyVaras/ros-web-app/internal/errors"
)

// performAutoMigration creates or updates the detections, temp_detections,
// rooms and label_locks tables.
func performAutoMigration(db *gorm.DB, log *slog.Logger, dbType, connectionInfo string) error {
	migrationStart := time.Now()
	log = log.With("db_type", dbType)
	log.Debug("starting database migration")

	if err := db.AutoMigrate(entities.All()...); err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Priority(errors.PriorityCritical).
			Context("operation", "auto_migrate").
			Context("db_type", dbType).
			Build()
	}

	log.Info("database ready",
		"connection", connectionInfo,
		"duration", time.Since(migrationStart))
	return nil
}
