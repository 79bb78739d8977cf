package store

import (
	"sync"
	"time"

	"github.com/imyashkale/mcpdashboard/internal/models"
)

// Store owns the dashboard session state. All writes go through Dispatch,
// one at a time; readers get deep copies.
type Store struct {
	mu       sync.RWMutex
	state    models.AppState
	seededAt time.Time

	subMu  sync.Mutex
	subs   map[int]chan models.AppState
	nextID int
}

// New creates a store holding InitialState(now)
func New(now time.Time) *Store {
	return &Store{
		state:    InitialState(now),
		seededAt: now,
		subs:     make(map[int]chan models.AppState),
	}
}

// Snapshot returns a copy of the current state
func (s *Store) Snapshot() models.AppState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Dispatch applies the transitions in order and publishes the result to
// subscribers. It returns the new state. Publishing happens under the write
// lock so subscribers see snapshots in dispatch order.
func (s *Store) Dispatch(transitions ...Transition) models.AppState {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range transitions {
		s.state = t(s.state)
	}
	next := s.state.Clone()

	s.publish(next)
	return next
}

// Subscribe returns a channel that always holds the most recent state after
// each dispatch. Slow readers only ever see the latest snapshot. The
// returned func unsubscribes and closes the channel.
func (s *Store) Subscribe() (<-chan models.AppState, func()) {
	ch := make(chan models.AppState, 1)

	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
			close(ch)
		})
	}
}

func (s *Store) publish(state models.AppState) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for _, ch := range s.subs {
		// Drop the stale snapshot, if any, so the channel never blocks.
		select {
		case <-ch:
		default:
		}
		ch <- state.Clone()
	}
}

// AddServer dispatches AddServer
func (s *Store) AddServer(server models.ServerDescriptor) models.AppState {
	return s.Dispatch(func(st models.AppState) models.AppState { return AddServer(st, server) })
}

// UpdateServer dispatches UpdateServer
func (s *Store) UpdateServer(id string, update models.ServerUpdate) models.AppState {
	return s.Dispatch(func(st models.AppState) models.AppState { return UpdateServer(st, id, update) })
}

// RemoveServer dispatches RemoveServer
func (s *Store) RemoveServer(id string) models.AppState {
	return s.Dispatch(func(st models.AppState) models.AppState { return RemoveServer(st, id) })
}

// SetActiveServer dispatches SetActiveServer
func (s *Store) SetActiveServer(id *string) models.AppState {
	return s.Dispatch(func(st models.AppState) models.AppState { return SetActiveServer(st, id) })
}

// AddMessage dispatches AddMessage
func (s *Store) AddMessage(msg models.ChatMessage) models.AppState {
	return s.Dispatch(func(st models.AppState) models.AppState { return AddMessage(st, msg) })
}

// ClearMessages resets the transcript to the message seeded at startup
func (s *Store) ClearMessages() models.AppState {
	return s.Dispatch(func(st models.AppState) models.AppState { return ClearMessages(st, s.seededAt) })
}

// SetProcessing dispatches SetProcessing
func (s *Store) SetProcessing(processing bool) models.AppState {
	return s.Dispatch(func(st models.AppState) models.AppState { return SetProcessing(st, processing) })
}

// SetCredential dispatches SetCredential
func (s *Store) SetCredential(credential string) models.AppState {
	return s.Dispatch(func(st models.AppState) models.AppState { return SetCredential(st, credential) })
}

// UpdateSettings dispatches UpdateSettings
func (s *Store) UpdateSettings(update models.SettingsUpdate) models.AppState {
	return s.Dispatch(func(st models.AppState) models.AppState { return UpdateSettings(st, update) })
}
