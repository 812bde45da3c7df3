// Package session stores per-conversation trainer state.
package session

import (
	"context"
	"sync"

	"vocabtrainer/internal/domain"
)

// MemoryStore keeps sessions in a process local map.
// Sessions are cloned on the way in and out.
type MemoryStore struct {
	states   map[domain.ConversationKey]*domain.Session
	stateMux sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[domain.ConversationKey]*domain.Session)}
}

// Load returns the conversation's session, or a fresh idle one
func (s *MemoryStore) Load(_ context.Context, key domain.ConversationKey) (*domain.Session, error) {
	s.stateMux.RLock()
	defer s.stateMux.RUnlock()

	state, exists := s.states[key]
	if !exists {
		return domain.NewSession(key), nil
	}
	return state.Clone(), nil
}

// Save stores the session under its key
func (s *MemoryStore) Save(_ context.Context, state *domain.Session) error {
	s.stateMux.Lock()
	defer s.stateMux.Unlock()
	s.states[state.Key] = state.Clone()
	return nil
}
