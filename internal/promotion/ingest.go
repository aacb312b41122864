package promotion

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/JimmyVaras/ros-web-app/internal/detection"
	"github.com/JimmyVaras/ros-web-app/internal/errors"
	"github.com/JimmyVaras/ros-web-app/internal/geometry"
	"github.com/JimmyVaras/ros-web-app/internal/observability/metrics"
)

// Marker outcome statuses.
const (
	StatusAdded     = metrics.OutcomeAdded
	StatusDuplicate = metrics.OutcomeDuplicate
	StatusInvalid   = metrics.OutcomeInvalid
	StatusFailed    = metrics.OutcomeFailed
)

// MarkerOutcome is the result of ingesting one marker.
type MarkerOutcome struct {
	Index  int    `json:"index"`
	Label  string `json:"label"`
	Status string `json:"status"`
	ID     uint   `json:"id,omitempty"`      // tentative id when added
	RoomID uint   `json:"room_id,omitempty"` // assigned room when added
	Err    error  `json:"-"`
	Error  string `json:"error,omitempty"`
}

// BatchReport summarizes an IngestBatch call.
type BatchReport struct {
	BatchID    string          `json:"batch_id"`
	Added      int             `json:"added"`
	Duplicates int             `json:"duplicates"`
	Invalid    int             `json:"invalid"`
	Failed     int             `json:"failed"`
	Outcomes   []MarkerOutcome `json:"outcomes"`
}

func (r *BatchReport) record(o MarkerOutcome) {
	if o.Err != nil {
		o.Error = o.Err.Error()
	}
	switch o.Status {
	case StatusAdded:
		r.Added++
	case StatusDuplicate:
		r.Duplicates++
	case StatusInvalid:
		r.Invalid++
	case StatusFailed:
		r.Failed++
	}
	r.Outcomes = append(r.Outcomes, o)
}

// IngestBatch stores every marker that is not a duplicate of an existing
// tentative or confirmed detection with the same label.
//
// Markers are processed in order and each one commits on its own: a marker
// that fails does not undo earlier ones and does not stop later ones. A
// duplicate inside the same batch is detected against the earlier marker,
// so the first one wins. Invalid markers are only reported; store failures
// are reported and also joined into the returned error. The report is
// returned in both cases.
func (e *Engine) IngestBatch(ctx context.Context, markers []detection.Marker) (report *BatchReport, err error) {
	start := time.Now()
	defer func() { e.observe(metrics.OpIngest, start, err) }()

	report = &BatchReport{
		BatchID:  uuid.NewString(),
		Outcomes: make([]MarkerOutcome, 0, len(markers)),
	}
	if e.metrics != nil {
		e.metrics.RecordBatch(len(markers))
	}

	var failures []error
	for i := range markers {
		if ctxErr := ctx.Err(); ctxErr != nil {
			outcome := MarkerOutcome{Index: i, Label: markers[i].Label, Status: StatusFailed, Err: ctxErr}
			report.record(outcome)
			failures = append(failures, ctxErr)
			e.recordMarker(outcome.Status)
			continue
		}

		outcome := e.ingestOne(ctx, i, markers[i])
		report.record(outcome)
		e.recordMarker(outcome.Status)
		if outcome.Status == StatusFailed {
			failures = append(failures, outcome.Err)
		}
	}

	e.logger.Info("marker batch ingested",
		"batch_id", report.BatchID,
		"markers", len(markers),
		"added", report.Added,
		"duplicates", report.Duplicates,
		"invalid", report.Invalid,
		"failed", report.Failed)

	if len(failures) > 0 {
		return report, errors.Join(failures...)
	}
	return report, nil
}

func (e *Engine) ingestOne(ctx context.Context, index int, m detection.Marker) MarkerOutcome {
	outcome := MarkerOutcome{Index: index, Label: m.Label}

	if err := m.Validate(); err != nil {
		outcome.Status = StatusInvalid
		outcome.Err = err
		e.logger.Debug("marker rejected", "index", index, "label", m.Label, "error", err)
		return outcome
	}

	unlock := e.lockLabel(m.Label)
	defer unlock()

	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	duplicate := false
	var tentative detection.Tentative
	err := e.store.Atomically(ctx, func(repo detection.Repository) error {
		if err := repo.LockLabel(ctx, m.Label); err != nil {
			return storeError(err, "lock-label", "label", m.Label)
		}

		dup, err := e.hasNearby(ctx, repo, m.Label, m.ObjectPosition)
		if err != nil {
			return err
		}
		if dup {
			duplicate = true
			return nil
		}

		rooms, err := e.roomsFrom(ctx, repo)
		if err != nil {
			return err
		}

		tentative = m.Tentative(geometry.FindRoom(m.ObjectPosition, rooms))
		if err := repo.InsertTentative(ctx, &tentative); err != nil {
			return storeError(err, "insert-tentative", "label", m.Label)
		}
		return nil
	})

	switch {
	case err != nil:
		outcome.Status = StatusFailed
		outcome.Err = storeError(err, "ingest-marker", "label", m.Label, "index", index)
		e.logger.Error("marker ingest failed", "index", index, "label", m.Label, "error", err)
	case duplicate:
		outcome.Status = StatusDuplicate
		e.logger.Debug("duplicate marker skipped", "index", index, "label", m.Label)
	default:
		outcome.Status = StatusAdded
		outcome.ID = tentative.ID
		outcome.RoomID = tentative.RoomID
		e.logger.Debug("tentative detection added",
			"id", tentative.ID, "label", m.Label, "room_id", tentative.RoomID, "robot_id", m.RobotID)
	}
	return outcome
}

// hasNearby reports whether a tentative or confirmed detection with label
// lies within the duplicate threshold of p.
func (e *Engine) hasNearby(ctx context.Context, repo detection.Repository, label string, p geometry.Point3) (bool, error) {
	tentatives, err := repo.FindTentativeByLabel(ctx, label)
	if err != nil {
		return false, storeError(err, "find-tentative", "label", label)
	}
	for i := range tentatives {
		if e.isClose(p, tentatives[i].ObjectPosition) {
			return true, nil
		}
	}

	confirmed, err := repo.FindDetectionsByLabel(ctx, label)
	if err != nil {
		return false, storeError(err, "find-detections", "label", label)
	}
	for i := range confirmed {
		if e.isClose(p, confirmed[i].ObjectPosition) {
			return true, nil
		}
	}
	return false, nil
}

func (e *Engine) recordMarker(status string) {
	if e.metrics != nil {
		e.metrics.RecordMarker(status)
	}
}

// lockLabel takes the per-label lock and records how long that took.
func (e *Engine) lockLabel(label string) func() {
	start := time.Now()
	unlock := e.locks.lock(label)
	if e.metrics != nil {
		e.metrics.ObserveLockWait(time.Since(start).Seconds())
	}
	return unlock
}
