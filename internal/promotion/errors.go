package promotion

import (
	"github.com/JimmyVaras/ros-web-app/internal/detection"
	"github.com/JimmyVaras/ros-web-app/internal/errors"
)

// storeError returns err with a category callers can act on. Errors that
// already carry one pass through untouched; a bare detection.ErrNotFound
// becomes a not-found error and anything else a database error.
func storeError(err error, operation string, kv ...any) error {
	if err == nil {
		return nil
	}

	var enhanced *errors.EnhancedError
	if errors.As(err, &enhanced) {
		return err
	}

	category := errors.CategoryDatabase
	if errors.Is(err, detection.ErrNotFound) {
		category = errors.CategoryNotFound
	}

	builder := errors.New(err).
		Component("promotion").
		Category(category).
		Context("operation", operation)
	for i := 0; i < len(kv)-1; i += 2 {
		if key, ok := kv[i].(string); ok {
			builder = builder.Context(key, kv[i+1])
		}
	}
	return builder.Build()
}

// conflictError reports a tentative detection that cannot be promoted
// because a confirmed detection of the same label is too close.
func conflictError(tentativeID, existingID uint, label string, distance, threshold float64) error {
	return errors.Newf("duplicate %q closer than threshold: confirmed detection %d is %.3f away (threshold %.3f)",
		label, existingID, distance, threshold).
		Component("promotion").
		Category(errors.CategoryConflict).
		Context("tentative_id", tentativeID).
		Context("existing_id", existingID).
		Context("label", label).
		Context("distance", distance).
		Build()
}

// errorCategory returns the category label used in metrics.
func errorCategory(err error) string {
	var enhanced *errors.EnhancedError
	if errors.As(err, &enhanced) {
		return enhanced.GetCategory()
	}
	return string(errors.CategoryGeneric)
}
