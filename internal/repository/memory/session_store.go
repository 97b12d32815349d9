package memory

import (
	"context"
	"sync"

	"github.com/freeeve/stake-lattice/api/internal/session"
)

// SessionStore keeps sessions in a map.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*session.Session
}

// NewSessionStore creates an empty SessionStore.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*session.Session)}
}

// Get returns the session, or nil if none is stored under id.
func (s *SessionStore) Get(_ context.Context, id string) (*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[id], nil
}

// Put stores or replaces a session.
func (s *SessionStore) Put(_ context.Context, id string, sess *session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = sess
	return nil
}

// Delete removes a session. Missing IDs are ignored.
func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}
