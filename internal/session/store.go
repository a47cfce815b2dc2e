package session

import (
	"errors"
	"sync"
	"time"

	"kpi-dashboard-backend/internal/model"
)

var ErrNoActiveSession = errors.New("no active database connection")

// Session is the per-user working state between connect and logout.
type Session struct {
	Connection     model.ConnectionParams
	Schema         *model.Schema
	ConnectionName string
	LastUpdated    time.Time
}

// Store keeps sessions in memory keyed by username.
type Store interface {
	Put(username string, session Session)
	Get(username string) (*Session, error)
	Delete(username string)
}

type inMemoryStore struct {
	sessions map[string]Session
	mu       sync.RWMutex
}

func NewInMemoryStore() Store {
	return &inMemoryStore{
		sessions: make(map[string]Session),
	}
}

func (s *inMemoryStore) Put(username string, session Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[username] = session
}

func (s *inMemoryStore) Get(username string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if session, ok := s.sessions[username]; ok {
		return &session, nil
	}
	return nil, ErrNoActiveSession
}

func (s *inMemoryStore) Delete(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, username)
}
