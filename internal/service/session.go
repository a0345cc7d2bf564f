package service

import (
	"sync"

	"bridge/internal/model"
)

// Session is the per-conversation state accumulated across turns:
// the merged preferences plus, in guided modes, the pending dialogue
// step, free-text profile notes and the onboarding cursor. Sessions
// live in memory only; a restart discards them.
type Session struct {
	Prefs *model.Preferences
	// Pending is the clarification step whose question was asked last
	// turn, or StepNone when no question is outstanding.
	Pending Step
	// Profile holds answers that do not map to preference fields
	// (usage, size, onboarding notes, the no-preference sentinel).
	Profile map[string]string
	// OnboardingStep counts answered onboarding questions; it only
	// moves forward.
	OnboardingStep  int
	OnboardingAsked bool
}

// NewSession returns a fresh, empty session.
func NewSession() *Session {
	return &Session{
		Prefs:   &model.Preferences{},
		Pending: StepNone,
		Profile: map[string]string{},
	}
}

// SessionStore maps conversation identifiers to their sessions. The
// in-memory implementation is the only one shipped; the interface keeps
// the turn handler testable and leaves room for a persistent backend.
//
// Concurrent turns on distinct conversations are safe. Two racing turns
// on the same conversation are last-write-wins; a single end user does
// not send overlapping turns, so no stronger guarantee is made.
type SessionStore interface {
	// GetOrCreate returns the session for id, creating an empty one on
	// first reference.
	GetOrCreate(id string) *Session
	// Put stores the session for id.
	Put(id string, s *Session)
	// Reset replaces the session for id with a fresh empty one and
	// returns it.
	Reset(id string) *Session
}

// MemoryStore is a mutex-guarded in-process SessionStore.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: map[string]*Session{}}
}

// GetOrCreate implements SessionStore.
func (m *MemoryStore) GetOrCreate(id string) *Session {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		return s
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		return s
	}
	s = NewSession()
	m.sessions[id] = s
	return s
}

// Put implements SessionStore.
func (m *MemoryStore) Put(id string, s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = s
}

// Reset implements SessionStore.
func (m *MemoryStore) Reset(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := NewSession()
	m.sessions[id] = s
	return s
}
