package detection

import (
	"context"
	stderrors "errors"
)

// ErrNotFound is returned by a Repository when the referenced record does not exist.
var ErrNotFound = stderrors.New("record not found")

// Repository defines the persistence operations the promotion engine needs.
// Implementations return an error matching ErrNotFound for missing ids; any
// other error is a store failure.
type Repository interface {
	// Confirmed detections
	FindDetectionsByLabel(ctx context.Context, label string) ([]Detection, error)
	GetDetection(ctx context.Context, id uint) (*Detection, error)
	InsertDetection(ctx context.Context, d *Detection) error
	DeleteDetection(ctx context.Context, id uint) error
	ListDetections(ctx context.Context) ([]Detection, error)

	// Tentative detections
	FindTentativeByLabel(ctx context.Context, label string) ([]Tentative, error)
	GetTentative(ctx context.Context, id uint) (*Tentative, error)
	InsertTentative(ctx context.Context, t *Tentative) error
	DeleteTentative(ctx context.Context, id uint) error
	ClearAllTentative(ctx context.Context) (int64, error)
	ListTentative(ctx context.Context) ([]Tentative, error)

	// Rooms, ordered by id
	ListRooms(ctx context.Context) ([]Room, error)
	InsertRoom(ctx context.Context, r *Room) error

	// LockLabel serializes writers of label, across processes, until the
	// surrounding Atomically transaction ends.
	LockLabel(ctx context.Context, label string) error
}

// Store is a Repository that can run a group of operations atomically.
type Store interface {
	Repository

	// Atomically runs fn inside a single transaction. The transaction commits
	// when fn returns nil and rolls back otherwise.
	Atomically(ctx context.Context, fn func(repo Repository) error) error

	Close() error
}
