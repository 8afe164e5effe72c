// Package store persists events, their attendee links and their budget
// history. currentBudget is derived on every write: maxBudget minus the
// sum of approved flight prices, never client-supplied.
package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/event/models"
)

// EventStore is what the event service needs from persistence.
type EventStore interface {
	Create(ctx context.Context, e models.Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	ListByOrg(ctx context.Context, orgID uuid.UUID) ([]models.Event, error)
	ListByAttendee(ctx context.Context, userID uuid.UUID) ([]models.Event, error)
	Update(ctx context.Context, e models.Event) error
	AddAttendee(ctx context.Context, eventID, userID uuid.UUID) error
	ListAttendees(ctx context.Context, eventID uuid.UUID) ([]uuid.UUID, error)
	IsAttendee(ctx context.Context, eventID, userID uuid.UUID) (bool, error)
	RecomputeCurrentBudget(ctx context.Context, eventID uuid.UUID) (float64, error)
}

// HistoryStore appends and reads the append-only budget trail.
type HistoryStore interface {
	Append(ctx context.Context, rec models.HistoryRecord) error
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.HistoryRecord, error)
}
