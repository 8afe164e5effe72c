package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/event/models"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/flight"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/user"
)

// InMemoryHistoryStore resolves actor names and flight details at read
// time, mirroring the SQL store's joins.
type InMemoryHistoryStore struct {
	mu      sync.RWMutex
	records map[uuid.UUID][]models.HistoryRecord
	users   user.Store
	flights flight.Store
	now     func() time.Time
}

func NewInMemoryHistoryStore(users user.Store, flights flight.Store) *InMemoryHistoryStore {
	return &InMemoryHistoryStore{
		records: make(map[uuid.UUID][]models.HistoryRecord),
		users:   users,
		flights: flights,
		now:     time.Now,
	}
}

func (s *InMemoryHistoryStore) WithClock(now func() time.Time) *InMemoryHistoryStore {
	s.now = now
	return s
}

func (s *InMemoryHistoryStore) Append(_ context.Context, rec models.HistoryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.CreatedAt = s.now()
	rec.UpdatedAt = rec.CreatedAt
	s.records[rec.EventID] = append(s.records[rec.EventID], rec)
	return nil
}

func (s *InMemoryHistoryStore) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.HistoryRecord, error) {
	s.mu.RLock()
	records := make([]models.HistoryRecord, len(s.records[eventID]))
	copy(records, s.records[eventID])
	s.mu.RUnlock()

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].ID < records[j].ID
		}
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})

	for i := range records {
		if u, err := s.users.FindByID(ctx, records[i].ActorID); err == nil {
			records[i].ActorName = u.DisplayName()
		}
		if records[i].FlightID != nil {
			if f, err := s.flights.GetByID(ctx, *records[i].FlightID); err == nil {
				records[i].FlightNumber = f.FlightNumber
				price := f.Price
				records[i].FlightPrice = &price
				records[i].FlightOrder = f.OrderID
			}
		}
	}
	return records, nil
}
