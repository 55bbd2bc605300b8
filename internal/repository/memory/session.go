package memory

import (
	"context"
	"sync"

	"github.com/dtroode/quicklogin/internal/model"
)

var _ model.SessionStore = (*SessionStore)(nil)

// SessionStore keeps the current session in memory.
type SessionStore struct {
	mu      sync.RWMutex
	session *model.Session
}

// NewSessionStore returns an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{}
}

func (s *SessionStore) Save(ctx context.Context, session model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = &session
	return nil
}

func (s *SessionStore) Load(ctx context.Context) (model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return model.Session{}, model.ErrNotFound
	}
	return *s.session, nil
}

func (s *SessionStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	return nil
}
