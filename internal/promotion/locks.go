package promotion

import (
	"sync"
)

// labelLocks is a keyed mutex: one lock per detection label. Entries are
// reference counted and removed once nobody holds or waits for them.
// It only covers goroutines of this process; Repository.LockLabel extends
// the same serialization to other processes sharing the store.
type labelLocks struct {
	mu    sync.Mutex
	locks map[string]*labelLock
}

type labelLock struct {
	mu   sync.Mutex
	refs int
}

// processLabelLocks is shared by every Engine in the process so that engines
// over the same store serialize on the same labels.
var processLabelLocks = newLabelLocks()

func newLabelLocks() *labelLocks {
	return &labelLocks{locks: make(map[string]*labelLock)}
}

// lock blocks until label is free and returns the matching unlock.
func (l *labelLocks) lock(label string) (unlock func()) {
	l.mu.Lock()
	entry, ok := l.locks[label]
	if !ok {
		entry = &labelLock{}
		l.locks[label] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			entry.mu.Unlock()

			l.mu.Lock()
			entry.refs--
			if entry.refs == 0 {
				delete(l.locks, label)
			}
			l.mu.Unlock()
		})
	}
}

// size returns the number of labels currently held or awaited.
func (l *labelLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
