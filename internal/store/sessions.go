package store

import (
	"sync"
	"time"

	"github.com/resumeai/enhancer/internal/wizard"
)

// SessionStore keeps wizard state per session id in process memory. Nothing
// is written to disk; idle sessions are dropped by Cleanup.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*sessionEntry
	now      func() time.Time
}

type sessionEntry struct {
	state    wizard.State
	lastSeen time.Time
}

// NewSessionStore returns an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*sessionEntry),
		now:      time.Now,
	}
}

// Get returns the session state and refreshes its idle timer.
func (s *SessionStore) Get(id string) (wizard.State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return wizard.State{}, false
	}
	e.lastSeen = s.now()
	return e.state, true
}

// Put stores state under id, replacing any previous value.
func (s *SessionStore) Put(id string, state wizard.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = &sessionEntry{state: state, lastSeen: s.now()}
}

// Update applies fn to the stored state atomically. It reports false when the
// session no longer exists.
func (s *SessionStore) Update(id string, fn func(wizard.State) wizard.State) (wizard.State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return wizard.State{}, false
	}
	e.state = fn(e.state)
	e.lastSeen = s.now()
	return e.state, true
}

// Delete drops a session.
func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Cleanup drops sessions idle for longer than olderThan and returns how many
// were removed. Sessions mid-analysis are kept so the runner can finish.
func (s *SessionStore) Cleanup(olderThan time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-olderThan)
	removed := 0
	for id, e := range s.sessions {
		if e.lastSeen.Before(cutoff) && e.state.Step != wizard.StepAnalyzing {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}
