// Package metrics provides constants used across metric definitions.
package metrics

import "time"

// Operation names recorded by the engine and the datastore.
const (
	OpIngest          = "ingest"
	OpPromote         = "promote"
	OpDeleteTentative = "delete_tentative"
	OpDeleteConfirmed = "delete_confirmed"
	OpClearTentative  = "clear_tentative"
	OpBuildGoal       = "build_goal"
	OpNavigate        = "navigate"
	OpFindRoom        = "find_room"
	OpDbQuery         = "db_query"
	OpDbInsert        = "db_insert"
	OpDbDelete        = "db_delete"
	OpDbTransaction   = "db_transaction"
	OpDbMigrate       = "db_migrate"
	OpPublishGoal     = "publish_goal"
	OpReceiveMarkers  = "receive_markers"
)

// Status labels.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Marker outcomes.
const (
	OutcomeAdded     = "added"
	OutcomeDuplicate = "duplicate"
	OutcomeInvalid   = "invalid"
	OutcomeFailed    = "failed"
)

// Promotion results.
const (
	PromotionPromoted = "promoted"
	PromotionConflict = "conflict"
	PromotionNotFound = "not_found"
	PromotionError    = "error"
)

const (
	// ShutdownTimeout bounds graceful shutdown of the metrics endpoint.
	ShutdownTimeout = 5 * time.Second
)
