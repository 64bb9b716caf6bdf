package trip

import "sync"

// Subscriber receives every committed snapshot. It is called while the store
// is locked and must not call back into the store.
type Subscriber func(State)

// Store is the container of the current State. Updates are serialised and
// readers always observe a complete snapshot.
type Store struct {
	mu          sync.Mutex
	state       State
	subscribers []Subscriber
}

// NewStore creates a store holding an empty session.
func NewStore() *Store {
	return &Store{}
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// Subscribe registers a subscriber for committed snapshots.
func (s *Store) Subscribe(sub Subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.subscribers = append(s.subscribers, sub)
}

// Update runs fn against the current state. When fn reports a change the
// returned state replaces the current one with the next version number and is
// published to subscribers.
func (s *Store) Update(fn func(State) (State, bool)) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, changed := fn(s.state)
	if !changed {
		return s.state, false
	}

	next.Version = s.state.Version + 1
	s.state = next

	for _, sub := range s.subscribers {
		sub(next)
	}

	return next, true
}
