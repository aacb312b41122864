package datastore

import (
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/JimmyVaras/ros-web-app/internal/conf"
	"github.com/JimmyVaras/ros-web-app/internal/errors"
)

// MySQLStore implements DataStore for MySQL
type MySQLStore struct {
	DataStore
	Settings *conf.Settings
}

const (
	mysqlMaxOpenConns    = 10
	mysqlMaxIdleConns    = 5
	mysqlConnMaxLifetime = 30 * time.Minute
)

func validateMySQLConfig(settings *conf.Settings) error {
	switch {
	case settings.Output.MySQL.Host == "":
		return validationError("mysql host must not be empty", "output.mysql.host", "")
	case settings.Output.MySQL.Database == "":
		return validationError("mysql database must not be empty", "output.mysql.database", "")
	case conf.ParsePort(settings.Output.MySQL.Port) == 0:
		return validationError("mysql port is invalid", "output.mysql.port", settings.Output.MySQL.Port)
	}
	return nil
}

// Open sets up the MySQL database connection
func (store *MySQLStore) Open() error {
	if err := validateMySQLConfig(store.Settings); err != nil {
		return err
	}

	dsn := store.Settings.MySQLDSN()

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: createGormLogger(store.Settings.Debug, store.metrics, store.logger),
	})
	if err != nil {
		store.logger.Error("failed to open MySQL database",
			"host", store.Settings.Output.MySQL.Host,
			"port", store.Settings.Output.MySQL.Port,
			"database", store.Settings.Output.MySQL.Database,
			"error", err)
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Priority(errors.PriorityCritical).
			Context("operation", "open").
			Context("backend", "mysql").
			Context("host", store.Settings.Output.MySQL.Host).
			Build()
	}

	sqlDB, err := db.DB()
	if err != nil {
		return dbError(err, "open", sqlUnknown, "backend", "mysql")
	}
	sqlDB.SetMaxOpenConns(mysqlMaxOpenConns)
	sqlDB.SetMaxIdleConns(mysqlMaxIdleConns)
	sqlDB.SetConnMaxLifetime(mysqlConnMaxLifetime)

	store.DB = db
	return performAutoMigration(db, store.logger, "MySQL",
		store.Settings.Output.MySQL.Host+"/"+store.Settings.Output.MySQL.Database)
}

// Close MySQL database connections
func (store *MySQLStore) Close() error {
	return store.closeDB()
}
