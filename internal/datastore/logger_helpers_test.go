package datastore

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSQLOperation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		sql       string
		operation string
		table     string
	}{
		{"SELECT * FROM `temp_detections` WHERE label = \"chair\"", "select", "temp_detections"},
		{`INSERT INTO "detections" ("label") VALUES ("cup")`, "insert", "detections"},
		{"UPDATE rooms SET name = 'hall'", "update", "rooms"},
		{"DELETE FROM `temp_detections` WHERE `temp_detections`.`id` = 3", "delete", "temp_detections"},
		{"CREATE TABLE `rooms` (`id` integer)", "create", "rooms"},
		{"CREATE INDEX `idx_detections_label` ON `detections`(`label`)", "create", "idx_detections_label"},
		{"PRAGMA foreign_keys", sqlUnknown, sqlUnknown},
	}

	for _, tt := range tests {
		op, table := parseSQLOperation(tt.sql)
		assert.Equal(t, tt.operation, op, tt.sql)
		assert.Equal(t, tt.table, table, tt.sql)
	}
}

func TestCategorizeError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "none", categorizeError(nil))
	assert.Equal(t, "timeout", categorizeError(fmt.Errorf("query: %w", context.DeadlineExceeded)))
	assert.Equal(t, "database_locked", categorizeError(stderrors.New("database is locked")))
	assert.Equal(t, "constraint_violation", categorizeError(stderrors.New("UNIQUE constraint failed: rooms.id")))
	assert.Equal(t, "missing_table", categorizeError(stderrors.New("no such table: rooms")))
	assert.Equal(t, "other", categorizeError(stderrors.New("something odd")))
}
