package state

import (
	"sync"

	"go.uber.org/zap"
)

// Store serializes every transition through Reduce and issues fetch tokens.
type Store struct {
	mu          sync.RWMutex
	state       State
	nextID      int
	subscribers map[int]chan State
	logger      *zap.Logger
}

func NewStore(useCelsius bool, logger *zap.Logger) *Store {
	return &Store{
		state:       State{Status: StatusIdle, UseCelsius: useCelsius},
		subscribers: make(map[int]chan State),
		logger:      logger,
	}
}

// Begin issues the next token and moves to loading. Any result still in
// flight for an older token will be discarded.
func (s *Store) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	token := s.state.Token + 1
	s.applyLocked(FetchStarted{Token: token})
	return token
}

func (s *Store) Dispatch(a Action) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.applyLocked(a)
}

func (s *Store) applyLocked(a Action) bool {
	next, ok := Reduce(s.state, a)
	if !ok {
		s.logger.Debug("Action discarded",
			zap.String("action", actionName(a)),
			zap.Uint64("current_token", s.state.Token),
			zap.String("status", s.state.Status.String()))
		return false
	}

	s.state = next
	for _, ch := range s.subscribers {
		publish(ch, next)
	}
	return true
}

func (s *Store) Current() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe returns a channel that always holds the most recent state.
// A slow reader skips intermediate states rather than blocking the store.
func (s *Store) Subscribe() (<-chan State, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++

	ch := make(chan State, 1)
	ch <- s.state
	s.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			s.mu.Unlock()
			close(ch)
		})
	}
}

func publish(ch chan State, st State) {
	select {
	case <-ch:
	default:
	}
	ch <- st
}

func actionName(a Action) string {
	switch a.(type) {
	case FetchStarted:
		return "fetch_started"
	case FetchSucceeded:
		return "fetch_succeeded"
	case FetchFailed:
		return "fetch_failed"
	case UnitsToggled:
		return "units_toggled"
	default:
		return "unknown"
	}
}
