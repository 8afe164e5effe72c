// Package organization models the tenant boundary. Every user and
// event belongs to exactly one organization.
package organization

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	domainerrors "github.com/gsm1298/event-travel-planner-backend-sub000/pkg/domain-errors"
)

type Organization struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type Store interface {
	Get(ctx context.Context, id uuid.UUID) (*Organization, error)
	Create(ctx context.Context, org Organization) error
}

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (*Organization, error) {
	var org Organization
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM organizations WHERE id = $1`, id).
		Scan(&org.ID, &org.Name, &org.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domainerrors.New(domainerrors.CodeNotFound, "organization not found")
	}
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "fetching organization")
	}
	return &org, nil
}

func (s *PostgresStore) Create(ctx context.Context, org Organization) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO organizations (id, name) VALUES ($1, $2)`, org.ID, org.Name)
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "creating organization")
	}
	return nil
}

type InMemoryStore struct {
	mu   sync.RWMutex
	orgs map[uuid.UUID]Organization
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{orgs: make(map[uuid.UUID]Organization)}
}

func (s *InMemoryStore) Get(_ context.Context, id uuid.UUID) (*Organization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	org, ok := s.orgs[id]
	if !ok {
		return nil, domainerrors.New(domainerrors.CodeNotFound, "organization not found")
	}
	return &org, nil
}

func (s *InMemoryStore) Create(_ context.Context, org Organization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orgs[org.ID] = org
	return nil
}
