// Package datastore provides logging infrastructure for database operations
package datastore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/JimmyVaras/ros-web-app/internal/errors"
	"github.com/JimmyVaras/ros-web-app/internal/logging"
	"github.com/JimmyVaras/ros-web-app/internal/observability/metrics"
)

// defaultSlowThreshold flags queries worth a warning.
const defaultSlowThreshold = 200 * time.Millisecond

// GormLogger implements GORM's logger interface with structured logging and metrics
type GormLogger struct {
	SlowThreshold time.Duration
	LogLevel      logger.LogLevel
	metrics       *Metrics
	log           *slog.Logger
}

// NewGormLogger creates a new GORM logger instance. log may be nil, in which
// case the datastore service logger is used.
func NewGormLogger(slowThreshold time.Duration, logLevel logger.LogLevel, m *Metrics, log *slog.Logger) *GormLogger {
	if log == nil {
		log = logging.ForService("datastore")
	}
	return &GormLogger{
		SlowThreshold: slowThreshold,
		LogLevel:      logLevel,
		metrics:       m,
		log:           log,
	}
}

// createGormLogger builds the logger used by both backends.
func createGormLogger(debug bool, m *Metrics, log *slog.Logger) logger.Interface {
	level := logger.Warn
	if debug {
		level = logger.Info
	}
	return NewGormLogger(defaultSlowThreshold, level, m, log)
}

// LogMode implements logger.Interface
func (l *GormLogger) LogMode(level logger.LogLevel) logger.Interface {
	newLogger := *l
	newLogger.LogLevel = level
	return &newLogger
}

// Info implements logger.Interface
func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.LogLevel >= logger.Info {
		l.log.InfoContext(ctx, fmt.Sprintf(msg, data...))
	}
}

// Warn implements logger.Interface
func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.LogLevel >= logger.Warn {
		l.log.WarnContext(ctx, fmt.Sprintf(msg, data...))
	}
}

// Error implements logger.Interface
func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.LogLevel >= logger.Error {
		l.log.ErrorContext(ctx, "GORM error", "msg", fmt.Sprintf(msg, data...))
		if l.metrics != nil {
			l.metrics.RecordDbOperationError("gorm_internal", sqlUnknown, "gorm_error")
		}
	}
}

// Trace implements logger.Interface
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.LogLevel <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	operation, table := parseSQLOperation(sql)

	if l.metrics != nil {
		l.metrics.RecordDbOperationDuration(operation, table, elapsed.Seconds())
		if operation == "select" {
			l.metrics.RecordQueryResultSize(operation, table, int(rows))
		}
	}

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		l.log.ErrorContext(ctx, "database query failed",
			"error", err,
			"sql", sql,
			"duration", elapsed,
			"rows_affected", rows)

		if l.metrics != nil {
			l.metrics.RecordDbOperation(operation, table, metrics.StatusError)
			l.metrics.RecordDbOperationError(operation, table, categorizeError(err))
		}

	case elapsed > l.SlowThreshold && l.SlowThreshold != 0:
		l.log.WarnContext(ctx, "slow query detected",
			"sql", sql,
			"duration", elapsed,
			"rows_affected", rows,
			"threshold", l.SlowThreshold)

		if l.metrics != nil {
			l.metrics.RecordDbOperation(operation, table, metrics.StatusSuccess)
			l.metrics.RecordSlowQuery()
		}

	default:
		if l.LogLevel >= logger.Info {
			l.log.DebugContext(ctx, "query executed",
				"sql", sql,
				"duration", elapsed,
				"rows_affected", rows)
		}
		if l.metrics != nil {
			l.metrics.RecordDbOperation(operation, table, metrics.StatusSuccess)
		}
	}
}
