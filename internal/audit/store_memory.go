package audit

import (
	"context"
	"sync"
)

// InMemoryStore keeps audit events in memory, keyed by account email.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[string][]Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[string][]Event)}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.Email] = append(s.events[event.Email], event)
	return nil
}

func (s *InMemoryStore) ListByEmail(_ context.Context, email string) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event{}, s.events[email]...), nil
}
