package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/event/models"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/flight"
	domainerrors "github.com/gsm1298/event-travel-planner-backend-sub000/pkg/domain-errors"
)

// InMemoryEventStore backs tests and development runs. It shares a
// flight store so current_budget derivation matches the SQL store.
type InMemoryEventStore struct {
	mu        sync.RWMutex
	events    map[uuid.UUID]models.Event
	attendees map[uuid.UUID][]uuid.UUID
	flights   flight.Store
	now       func() time.Time
}

func NewInMemoryEventStore(flights flight.Store) *InMemoryEventStore {
	return &InMemoryEventStore{
		events:    make(map[uuid.UUID]models.Event),
		attendees: make(map[uuid.UUID][]uuid.UUID),
		flights:   flights,
		now:       time.Now,
	}
}

// WithClock replaces the timestamp source. Tests use it for stable
// created/updated times.
func (s *InMemoryEventStore) WithClock(now func() time.Time) *InMemoryEventStore {
	s.now = now
	return s
}

func (s *InMemoryEventStore) Create(_ context.Context, e models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.CurrentBudget = e.MaxBudget
	e.CreatedAt = s.now()
	e.UpdatedAt = e.CreatedAt
	s.events[e.ID] = e
	return nil
}

func (s *InMemoryEventStore) GetByID(_ context.Context, id uuid.UUID) (*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.events[id]
	if !ok {
		return nil, domainerrors.New(domainerrors.CodeNotFound, "event not found")
	}
	return &e, nil
}

func (s *InMemoryEventStore) ListByOrg(_ context.Context, orgID uuid.UUID) ([]models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var events []models.Event
	for _, e := range s.events {
		if e.OrgID == orgID {
			events = append(events, e)
		}
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].StartDate.Before(events[j].StartDate)
	})
	return events, nil
}

func (s *InMemoryEventStore) ListByAttendee(_ context.Context, userID uuid.UUID) ([]models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var events []models.Event
	for eventID, users := range s.attendees {
		for _, id := range users {
			if id == userID {
				events = append(events, s.events[eventID])
				break
			}
		}
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].StartDate.Before(events[j].StartDate)
	})
	return events, nil
}

func (s *InMemoryEventStore) Update(ctx context.Context, e models.Event) error {
	spend, err := s.approvedSpend(ctx, e.ID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.events[e.ID]
	if !ok {
		return domainerrors.New(domainerrors.CodeNotFound, "event not found")
	}
	e.CreatedAt = stored.CreatedAt
	e.CurrentBudget = e.MaxBudget - spend
	e.UpdatedAt = s.now()
	s.events[e.ID] = e
	return nil
}

func (s *InMemoryEventStore) AddAttendee(_ context.Context, eventID, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.attendees[eventID] {
		if id == userID {
			return nil
		}
	}
	s.attendees[eventID] = append(s.attendees[eventID], userID)
	return nil
}

func (s *InMemoryEventStore) ListAttendees(_ context.Context, eventID uuid.UUID) ([]uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]uuid.UUID, len(s.attendees[eventID]))
	copy(out, s.attendees[eventID])
	return out, nil
}

func (s *InMemoryEventStore) IsAttendee(_ context.Context, eventID, userID uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.attendees[eventID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemoryEventStore) RecomputeCurrentBudget(ctx context.Context, eventID uuid.UUID) (float64, error) {
	spend, err := s.approvedSpend(ctx, eventID)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[eventID]
	if !ok {
		return 0, domainerrors.New(domainerrors.CodeNotFound, "event not found")
	}
	e.CurrentBudget = e.MaxBudget - spend
	e.UpdatedAt = s.now()
	s.events[eventID] = e
	return e.CurrentBudget, nil
}

func (s *InMemoryEventStore) approvedSpend(ctx context.Context, eventID uuid.UUID) (float64, error) {
	flights, err := s.flights.ListByEvent(ctx, eventID)
	if err != nil {
		return 0, err
	}
	var spend float64
	for _, f := range flights {
		if f.Status == flight.StatusApproved {
			spend += f.Price
		}
	}
	return spend, nil
}
