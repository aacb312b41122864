package promotion

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/JimmyVaras/ros-web-app/internal/detection"
)

// memStore is an in-memory detection.Store for engine tests. Atomically
// snapshots the state and restores it when fn fails. failures injects an
// error for the named repository method.
type memStore struct {
	txMu sync.Mutex // serializes Atomically

	mu        sync.Mutex
	nextID    uint
	confirmed []detection.Detection
	tentative []detection.Tentative
	rooms     []detection.Room
	failures  map[string]error
	calls     map[string]int
}

func newMemStore() *memStore {
	return &memStore{failures: map[string]error{}, calls: map[string]int{}}
}

func (s *memStore) failOn(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method] = err
}

func (s *memStore) callCount(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method]
}

// enter records a call and returns an injected failure. Callers hold mu.
func (s *memStore) enter(method string) error {
	s.calls[method]++
	return s.failures[method]
}

func (s *memStore) id() uint {
	s.nextID++
	return s.nextID
}

func notFound(kind string, id uint) error {
	return fmt.Errorf("%s %d: %w", kind, id, detection.ErrNotFound)
}

func (s *memStore) FindDetectionsByLabel(_ context.Context, label string) ([]detection.Detection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("FindDetectionsByLabel"); err != nil {
		return nil, err
	}
	var out []detection.Detection
	for _, d := range s.confirmed {
		if d.Label == label {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *memStore) GetDetection(_ context.Context, id uint) (*detection.Detection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetDetection"); err != nil {
		return nil, err
	}
	for _, d := range s.confirmed {
		if d.ID == id {
			return &d, nil
		}
	}
	return nil, notFound("detection", id)
}

func (s *memStore) InsertDetection(_ context.Context, d *detection.Detection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("InsertDetection"); err != nil {
		return err
	}
	d.ID = s.id()
	s.confirmed = append(s.confirmed, *d)
	return nil
}

func (s *memStore) DeleteDetection(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("DeleteDetection"); err != nil {
		return err
	}
	i := slices.IndexFunc(s.confirmed, func(d detection.Detection) bool { return d.ID == id })
	if i < 0 {
		return notFound("detection", id)
	}
	s.confirmed = slices.Delete(s.confirmed, i, i+1)
	return nil
}

func (s *memStore) ListDetections(context.Context) ([]detection.Detection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListDetections"); err != nil {
		return nil, err
	}
	return slices.Clone(s.confirmed), nil
}

func (s *memStore) FindTentativeByLabel(_ context.Context, label string) ([]detection.Tentative, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("FindTentativeByLabel"); err != nil {
		return nil, err
	}
	var out []detection.Tentative
	for _, t := range s.tentative {
		if t.Label == label {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *memStore) GetTentative(_ context.Context, id uint) (*detection.Tentative, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("GetTentative"); err != nil {
		return nil, err
	}
	for _, t := range s.tentative {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, notFound("tentative detection", id)
}

func (s *memStore) InsertTentative(_ context.Context, t *detection.Tentative) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("InsertTentative"); err != nil {
		return err
	}
	t.ID = s.id()
	s.tentative = append(s.tentative, *t)
	return nil
}

func (s *memStore) DeleteTentative(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("DeleteTentative"); err != nil {
		return err
	}
	i := slices.IndexFunc(s.tentative, func(t detection.Tentative) bool { return t.ID == id })
	if i < 0 {
		return notFound("tentative detection", id)
	}
	s.tentative = slices.Delete(s.tentative, i, i+1)
	return nil
}

func (s *memStore) ClearAllTentative(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ClearAllTentative"); err != nil {
		return 0, err
	}
	n := int64(len(s.tentative))
	s.tentative = nil
	return n, nil
}

func (s *memStore) ListTentative(context.Context) ([]detection.Tentative, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListTentative"); err != nil {
		return nil, err
	}
	return slices.Clone(s.tentative), nil
}

func (s *memStore) ListRooms(context.Context) ([]detection.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListRooms"); err != nil {
		return nil, err
	}
	return slices.Clone(s.rooms), nil
}

func (s *memStore) InsertRoom(_ context.Context, r *detection.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("InsertRoom"); err != nil {
		return err
	}
	if r.ID == 0 {
		r.ID = s.id()
	}
	s.rooms = append(s.rooms, *r)
	slices.SortFunc(s.rooms, func(a, b detection.Room) int { return int(a.ID) - int(b.ID) })
	return nil
}

// LockLabel only records the call; Atomically already runs one fn at a time.
func (s *memStore) LockLabel(_ context.Context, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enter("LockLabel")
}

func (s *memStore) Atomically(_ context.Context, fn func(repo detection.Repository) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	confirmed := slices.Clone(s.confirmed)
	tentative := slices.Clone(s.tentative)
	rooms := slices.Clone(s.rooms)
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.confirmed, s.tentative, s.rooms = confirmed, tentative, rooms
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *memStore) Close() error { return nil }

var _ detection.Store = (*memStore)(nil)
