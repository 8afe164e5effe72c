package flight

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	domainerrors "github.com/gsm1298/event-travel-planner-backend-sub000/pkg/domain-errors"
)

type InMemoryStore struct {
	mu      sync.RWMutex
	flights map[uuid.UUID]Flight
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{flights: make(map[uuid.UUID]Flight)}
}

func (s *InMemoryStore) Create(_ context.Context, f Flight) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flights[f.ID] = f
	return nil
}

func (s *InMemoryStore) GetByID(_ context.Context, id uuid.UUID) (*Flight, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.flights[id]
	if !ok {
		return nil, domainerrors.New(domainerrors.CodeNotFound, "flight not found")
	}
	return &f, nil
}

func (s *InMemoryStore) ListByEvent(_ context.Context, eventID uuid.UUID) ([]Flight, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var flights []Flight
	for _, f := range s.flights {
		if f.EventID == eventID {
			flights = append(flights, f)
		}
	}
	sort.Slice(flights, func(i, j int) bool {
		return flights[i].CreatedAt.Before(flights[j].CreatedAt)
	})
	return flights, nil
}

func (s *InMemoryStore) SetStatus(_ context.Context, id uuid.UUID, status Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.flights[id]
	if !ok {
		return domainerrors.New(domainerrors.CodeNotFound, "flight not found")
	}
	f.Status = status
	s.flights[id] = f
	return nil
}
