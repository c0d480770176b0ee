package session

import (
	"sync"

	"github.com/yeremiapane/pos-app/utils"
)

// Listener is called after a dispatch changed the snapshot.
type Listener func(prev, next Session)

// Store owns one Session snapshot. It is safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	state     Session
	listeners map[int]Listener
	nextID    int
}

// NewStore returns a store holding the unauthenticated session.
func NewStore() *Store {
	return &Store{listeners: make(map[int]Listener)}
}

// GetState returns a copy of the current snapshot.
func (s *Store) GetState() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Dispatch applies event and returns the resulting snapshot. Listeners run
// synchronously after the new snapshot is in place, outside the store lock.
// A login without profile or token is logged and ignored.
func (s *Store) Dispatch(event Event) Session {
	if incompleteLogin(event) {
		utils.ErrorLogger.WithField("event", "login_succeeded").Error("session: ignoring login without profile or token")
	}
	s.mu.Lock()
	prev := s.state
	next := Reduce(prev, event)
	changed := !sameSession(prev, next)
	if changed {
		s.state = next
	}
	listeners := make([]Listener, 0, len(s.listeners))
	if changed {
		for _, l := range s.listeners {
			listeners = append(listeners, l)
		}
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(prev.clone(), next.clone())
	}
	return next.clone()
}

// Subscribe registers l and returns a function that removes it.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// sameSession compares by identity of the snapshot, so a repeated login with an
// equal payload still counts as a transition.
func sameSession(a, b Session) bool {
	return a.IsAuthenticated == b.IsAuthenticated && a.Profile == b.Profile && a.Token == b.Token
}
