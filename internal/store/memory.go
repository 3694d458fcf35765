package store

import (
	"context"
	"sync"

	"medical-intake-assistant/internal/intake"
)

// MemoryStore keeps preferences in process memory. Used by tests and by the
// terminal client when no database is configured.
type MemoryStore struct {
	mu        sync.RWMutex
	languages map[string]string
	profiles  map[string]intake.Profile
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		languages: make(map[string]string),
		profiles:  make(map[string]intake.Profile),
	}
}

func (s *MemoryStore) Language(_ context.Context, deviceID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lang, ok := s.languages[deviceID]
	if !ok {
		return "", ErrNotFound
	}
	return lang, nil
}

func (s *MemoryStore) SetLanguage(_ context.Context, deviceID, lang string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.languages[deviceID] = lang
	return nil
}

func (s *MemoryStore) Profile(_ context.Context, deviceID string) (intake.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[deviceID]
	if !ok {
		return intake.Profile{}, ErrNotFound
	}
	return p, nil
}

func (s *MemoryStore) SaveProfile(_ context.Context, deviceID string, p intake.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[deviceID] = p
	return nil
}

func (s *MemoryStore) DeleteProfile(_ context.Context, deviceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.profiles, deviceID)
	return nil
}

func (s *MemoryStore) Close() error { return nil }
