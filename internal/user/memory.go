package user

import (
	"context"
	"sync"

	"github.com/google/uuid"

	domainerrors "github.com/gsm1298/event-travel-planner-backend-sub000/pkg/domain-errors"
)

// InMemoryStore backs tests and single-node development runs.
type InMemoryStore struct {
	mu    sync.RWMutex
	byID  map[uuid.UUID]User
	byEml map[string]uuid.UUID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:  make(map[uuid.UUID]User),
		byEml: make(map[string]uuid.UUID),
	}
}

func (s *InMemoryStore) Seed(users ...User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range users {
		s.byID[u.ID] = u
		s.byEml[u.Email] = u.ID
	}
}

func (s *InMemoryStore) FindByID(_ context.Context, id uuid.UUID) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, domainerrors.New(domainerrors.CodeNotFound, "user not found")
	}
	return &u, nil
}

func (s *InMemoryStore) FindByEmail(_ context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEml[email]
	if !ok {
		return nil, domainerrors.New(domainerrors.CodeNotFound, "user not found")
	}
	u := s.byID[id]
	return &u, nil
}

func (s *InMemoryStore) ListByOrg(_ context.Context, orgID uuid.UUID) ([]User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var users []User
	for _, u := range s.byID {
		if u.OrgID == orgID {
			users = append(users, u)
		}
	}
	return users, nil
}

func (s *InMemoryStore) Create(_ context.Context, u User, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byEml[u.Email]; exists {
		return domainerrors.New(domainerrors.CodeConflict, "email already registered")
	}
	s.byID[u.ID] = u
	s.byEml[u.Email] = u.ID
	return nil
}
