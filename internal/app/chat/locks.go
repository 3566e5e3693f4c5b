package chat

import (
	"sync"

	"github.com/madhukiran/stylist-agent/internal/domain"
)

// userLocks serializes exchanges per user so two concurrent requests for
// one userId cannot overwrite each other's committed turns. Entries are
// reference-counted and removed once idle, so the map does not grow with
// the number of users ever seen.
type userLocks struct {
	mu    sync.Mutex
	locks map[domain.UserID]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[domain.UserID]*lockEntry)}
}

// acquire blocks until the user's lock is held and returns the release func.
func (l *userLocks) acquire(userID domain.UserID) func() {
	l.mu.Lock()
	e, ok := l.locks[userID]
	if !ok {
		e = &lockEntry{}
		l.locks[userID] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()

		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.locks, userID)
		}
		l.mu.Unlock()
	}
}
