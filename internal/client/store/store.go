package store

import (
	"slices"
	"sync"

	"github.com/dmitrijs2005/docchat/internal/client/models"
)

// Change is delivered to observers after every transition.
type Change struct {
	State   State
	Version uint64
	// Reset is set by Logout: all slices went back to their initial values
	// and durable copies should be removed rather than rewritten.
	Reset bool
}

// Observer receives store changes. StateChanged is called outside the
// store lock, possibly from several goroutines; Version orders the calls.
type Observer interface {
	StateChanged(c Change)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(c Change)

func (f ObserverFunc) StateChanged(c Change) { f(c) }

// Store holds the session state. It is safe for concurrent use.
type Store struct {
	mu        sync.Mutex
	state     State
	version   uint64
	nextID    int
	observers []subscription
}

type subscription struct {
	id int
	o  Observer
}

// New returns a store in the initial, logged-out state.
func New() *Store {
	return &Store{state: Initial()}
}

// Subscribe registers o and returns a function that removes it.
func (s *Store) Subscribe(o Observer) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.observers = append(s.observers, subscription{id: id, o: o})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.observers = slices.DeleteFunc(s.observers, func(x subscription) bool { return x.id == id })
	}
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Version returns the number of transitions applied so far.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Hydrate replaces the state with one restored from durable storage. It is
// meant to run once at startup and does not notify observers. In-flight
// statuses left over from a previous run are settled to idle.
func (s *Store) Hydrate(st State) {
	st.settle()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st.clone()
}

func (s *Store) update(reset bool, fn func(st *State)) {
	s.mu.Lock()
	fn(&s.state)
	s.version++
	c := Change{State: s.state.clone(), Version: s.version, Reset: reset}
	observers := slices.Clone(s.observers)
	s.mu.Unlock()

	for _, sub := range observers {
		sub.o.StateChanged(c)
	}
}

// Logout resets all three slices to their initial values in one transition.
func (s *Store) Logout() {
	s.update(true, func(st *State) {
		*st = Initial()
	})
}

// ---- auth slice ----

// SetAuth replaces the auth slice.
func (s *Store) SetAuth(a models.AuthIdentity) {
	s.update(false, func(st *State) {
		st.Auth = a
	})
}

// AuthFailed records an acquisition failure and marks the user signed out.
func (s *Store) AuthFailed(msg string) {
	s.update(false, func(st *State) {
		st.Auth = models.AuthIdentity{Error: msg}
	})
}

// Auth returns the auth slice.
func (s *Store) Auth() models.AuthIdentity {
	return s.Snapshot().Auth
}
