package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const maxPendingStates = 10000

// stateStore holds single-use OAuth state values until they expire.
type stateStore struct {
	mu    sync.Mutex
	items map[string]time.Time
	now   func() time.Time
}

func newStateStore() *stateStore {
	return &stateStore{items: make(map[string]time.Time), now: time.Now}
}

// issue creates and remembers a state valid for ttl.
func (s *stateStore) issue(ttl time.Duration) string {
	state := uuid.NewString()
	s.put(state, s.now().Add(ttl))
	return state
}

func (s *stateStore) put(state string, exp time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) >= maxPendingStates {
		s.pruneLocked()
	}
	s.items[state] = exp
}

// consume reports whether state was issued and is unexpired. A state can be consumed once.
func (s *stateStore) consume(state string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.items[state]
	if !ok {
		return false
	}
	delete(s.items, state)
	return s.now().Before(exp)
}

func (s *stateStore) pruneLocked() {
	now := s.now()
	for k, exp := range s.items {
		if !now.Before(exp) {
			delete(s.items, k)
		}
	}
}
