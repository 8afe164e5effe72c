package credential

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/auth/models"
	dErrors "github.com/gsm1298/event-travel-planner-backend-sub000/pkg/domain-errors"
)

// InMemoryStore is a thread-safe in-memory credential store used in tests and
// when no database is configured.
type InMemoryStore struct {
	mu    sync.RWMutex
	byID  map[uuid.UUID]*models.Credential
	byEml map[string]uuid.UUID
}

// NewInMemory constructs an empty in-memory credential store.
func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		byID:  make(map[uuid.UUID]*models.Credential),
		byEml: make(map[string]uuid.UUID),
	}
}

// Seed inserts or replaces a credential. Test helper and bootstrap path.
func (s *InMemoryStore) Seed(c *models.Credential) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	s.byID[c.UserID] = &cp
	s.byEml[c.Email] = c.UserID
}

func (s *InMemoryStore) FindByEmail(_ context.Context, email string) (*models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEml[email]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "credential not found")
	}
	cp := *s.byID[id]
	return &cp, nil
}

func (s *InMemoryStore) FindByID(_ context.Context, userID uuid.UUID) (*models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byID[userID]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "credential not found")
	}
	cp := *c
	return &cp, nil
}

func (s *InMemoryStore) SaveMFASecret(_ context.Context, userID uuid.UUID, secret string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byID[userID]
	if !ok {
		return dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	c.MFASecret = secret
	return nil
}

func (s *InMemoryStore) EnableMFA(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byID[userID]
	if !ok || c.MFASecret == "" {
		return dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	c.MFAEnabled = true
	return nil
}

func (s *InMemoryStore) UpdatePasswordHash(_ context.Context, userID uuid.UUID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byID[userID]
	if !ok {
		return dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	c.PasswordHash = hash
	return nil
}
