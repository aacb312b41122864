package datastore

import (
	"net/url"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/JimmyVaras/ros-web-app/internal/conf"
	"github.com/JimmyVaras/ros-web-app/internal/errors"
)

// SQLiteStore implements DataStore for SQLite
type SQLiteStore struct {
	DataStore
	Settings *conf.Settings
}

// sqliteBusyTimeoutMs is how long a writer waits for the database lock.
const sqliteBusyTimeoutMs = "5000"

func validateSQLiteConfig(settings *conf.Settings) error {
	if settings.Output.SQLite.Path == "" {
		return validationError("sqlite path must not be empty", "output.sqlite.path", "")
	}
	return nil
}

// sqliteDSN adds the pragmas needed for concurrent writers. Transactions
// start with BEGIN IMMEDIATE so two writers never both hold a read snapshot.
func sqliteDSN(path string) string {
	params := url.Values{}
	params.Set("_busy_timeout", sqliteBusyTimeoutMs)
	params.Set("_journal_mode", "WAL")
	params.Set("_txlock", "immediate")
	return "file:" + path + "?" + params.Encode()
}

// Open sets up the SQLite database connection
func (store *SQLiteStore) Open() error {
	if err := validateSQLiteConfig(store.Settings); err != nil {
		return err
	}

	dir, fileName := filepath.Split(store.Settings.Output.SQLite.Path)
	absoluteFilePath := fileName
	if dir != "" {
		absoluteFilePath = filepath.Join(conf.GetBasePath(dir), fileName)
	}

	db, err := gorm.Open(sqlite.Open(sqliteDSN(absoluteFilePath)), &gorm.Config{
		Logger: createGormLogger(store.Settings.Debug, store.metrics, store.logger),
	})
	if err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Priority(errors.PriorityCritical).
			Context("operation", "open").
			Context("backend", "sqlite").
			Context("path", absoluteFilePath).
			Build()
	}

	sqlDB, err := db.DB()
	if err != nil {
		return dbError(err, "open", sqlUnknown, "backend", "sqlite")
	}
	// One writer at a time; readers inside a transaction share its connection.
	sqlDB.SetMaxOpenConns(1)

	store.DB = db
	return performAutoMigration(db, store.logger, "SQLite", absoluteFilePath)
}

// Close closes the SQLite database
func (store *SQLiteStore) Close() error {
	return store.closeDB()
}
