// Package datastore provides error handling helpers for database operations
package datastore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/JimmyVaras/ros-web-app/internal/detection"
	"github.com/JimmyVaras/ros-web-app/internal/errors"
)

// dbError creates a properly categorized database error with context
func dbError(err error, operation, table string, context ...any) error {
	return dbErrorBuilder(err, operation, table, context...).Build()
}

// dbTimedError is dbError for operations that can block, such as lock waits
// and commits; it records how long the operation ran before failing.
func dbTimedError(err error, operation, table string, start time.Time, context ...any) error {
	return dbErrorBuilder(err, operation, table, context...).
		Timing(operation, time.Since(start)).
		Build()
}

func dbErrorBuilder(err error, operation, table string, context ...any) *errors.ErrorBuilder {
	builder := errors.New(err).
		Component("datastore").
		Category(errors.CategoryDatabase).
		Priority(dbErrorPriority(err)).
		Context("operation", operation).
		Context("table", table)

	for i := 0; i < len(context)-1; i += 2 {
		if key, ok := context[i].(string); ok {
			builder = builder.Context(key, context[i+1])
		}
	}
	return builder
}

// dbErrorPriority escalates errors that point at a broken database file.
func dbErrorPriority(err error) string {
	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "corrupt"), strings.Contains(errStr, "malformed"),
		strings.Contains(errStr, "disk full"), strings.Contains(errStr, "no space"):
		return errors.PriorityCritical
	case errors.Is(err, context.DeadlineExceeded), strings.Contains(errStr, "database is locked"):
		return errors.PriorityHigh
	default:
		return errors.PriorityMedium
	}
}

// notFoundError creates a not found error that matches detection.ErrNotFound
func notFoundError(resource string, id uint) error {
	return errors.New(fmt.Errorf("%s %d: %w", resource, id, detection.ErrNotFound)).
		Component("datastore").
		Category(errors.CategoryNotFound).
		Priority(errors.PriorityLow).
		Context("resource", resource).
		Context("identifier", id).
		Build()
}

// validationError creates a validation error (not sent to telemetry)
func validationError(message, field string, value any) error {
	return errors.Newf("%s", message).
		Component("datastore").
		Category(errors.CategoryValidation).
		Context("field", field).
		Context("value", fmt.Sprintf("%v", value)).
		Build()
}
