package identity

import (
	"context"
	"strings"
	"sync"

	"gramseva/pkg/platform/sentinel"
)

// In-memory stores back demo mode and tests. They intentionally favor
// clarity over performance.

type InMemoryProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

func NewInMemoryProfileStore() *InMemoryProfileStore {
	return &InMemoryProfileStore{profiles: make(map[string]Profile)}
}

func (s *InMemoryProfileStore) Save(_ context.Context, profile Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.profiles[profile.ID]; exists {
		return sentinel.ErrConflict
	}
	s.profiles[profile.ID] = profile
	return nil
}

func (s *InMemoryProfileStore) Update(_ context.Context, profile Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.profiles[profile.ID]; !exists {
		return sentinel.ErrNotFound
	}
	s.profiles[profile.ID] = profile
	return nil
}

func (s *InMemoryProfileStore) FindByID(_ context.Context, id string) (Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if profile, ok := s.profiles[id]; ok {
		return profile, nil
	}
	return Profile{}, sentinel.ErrNotFound
}

type InMemoryCredentialStore struct {
	mu    sync.RWMutex
	creds map[string]Credentials // keyed by lowercase email
}

func NewInMemoryCredentialStore() *InMemoryCredentialStore {
	return &InMemoryCredentialStore{creds: make(map[string]Credentials)}
}

func (s *InMemoryCredentialStore) Save(_ context.Context, creds Credentials) error {
	key := strings.ToLower(creds.Email)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.creds[key]; exists {
		return sentinel.ErrConflict
	}
	s.creds[key] = creds
	return nil
}

func (s *InMemoryCredentialStore) FindByEmail(_ context.Context, email string) (Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if creds, ok := s.creds[strings.ToLower(email)]; ok {
		return creds, nil
	}
	return Credentials{}, sentinel.ErrNotFound
}

type InMemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

func NewInMemorySessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{sessions: make(map[string]Session)}
}

func (s *InMemorySessionStore) Save(_ context.Context, session Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return nil
}

func (s *InMemorySessionStore) FindByID(_ context.Context, id string) (Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if session, ok := s.sessions[id]; ok {
		return session, nil
	}
	return Session{}, sentinel.ErrNotFound
}

func (s *InMemorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}
