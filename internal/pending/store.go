// Package pending holds expenses that were parsed but not yet categorized.
package pending

import (
	"sync"

	"spesebot/internal/core"
)

// Store maps a user identity to at most one pending entry. It lives only as
// long as the process; nothing is persisted and nothing expires.
type Store struct {
	mu      sync.Mutex
	entries map[int64]core.PendingEntry
}

func New() *Store {
	return &Store{entries: make(map[int64]core.PendingEntry)}
}

// Put stores entry for user, silently replacing any entry still waiting for
// a category. It reports whether an entry was replaced.
func (s *Store) Put(user int64, entry core.PendingEntry) (replaced bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, replaced = s.entries[user]
	s.entries[user] = entry
	return replaced
}

// Take returns and removes the entry for user in one step.
func (s *Store) Take(user int64) (core.PendingEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[user]
	if ok {
		delete(s.entries, user)
	}
	return entry, ok
}

// Len returns the number of users with a pending entry.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
