package mqtt

import (
	"bytes"
	"encoding/json"

	"github.com/JimmyVaras/ros-web-app/internal/detection"
	"github.com/JimmyVaras/ros-web-app/internal/errors"
)

// markerEnvelope is the object form of a marker batch.
type markerEnvelope struct {
	Markers []detection.Marker `json:"markers"`
}

// DecodeMarkerBatch parses a marker batch payload. Both a bare JSON array of
// markers and an object with a "markers" array are accepted.
func DecodeMarkerBatch(payload []byte) ([]detection.Marker, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return nil, errors.ValidationError("empty marker payload")
	}

	var markers []detection.Marker
	var err error
	if trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &markers)
	} else {
		var env markerEnvelope
		err = json.Unmarshal(trimmed, &env)
		markers = env.Markers
	}
	if err != nil {
		return nil, errors.New(err).
			Component("mqtt").
			Category(errors.CategoryValidation).
			Context("operation", "decode-markers").
			Context("bytes", len(payload)).
			Build()
	}
	return markers, nil
}
