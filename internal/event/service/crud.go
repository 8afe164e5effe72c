package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	authmodels "github.com/gsm1298/event-travel-planner-backend-sub000/internal/auth/models"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/event/models"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/platform/metrics"
	domainerrors "github.com/gsm1298/event-travel-planner-backend-sub000/pkg/domain-errors"
)

// Create stores a new event owned by the actor's organization.
// currentBudget is derived from maxBudget, never accepted from the
// caller.
func (s *Service) Create(ctx context.Context, e models.Event, actor Actor) (*models.Event, error) {
	ctx, span := s.tracer.Start(ctx, "event.create")
	defer span.End()

	if e.Name == "" {
		return nil, domainerrors.New(domainerrors.CodeInvalidInput, "event name is required")
	}
	if e.EndDate.Before(e.StartDate) {
		return nil, domainerrors.New(domainerrors.CodeInvalidInput, "end date precedes start date")
	}
	if e.MaxBudget < 0 {
		return nil, domainerrors.New(domainerrors.CodeInvalidInput, "max budget cannot be negative")
	}

	e.ID = uuid.New()
	e.OrgID = actor.OrgID
	e.CreatorID = actor.ID
	e.CurrentBudget = e.MaxBudget

	if e.FinanceManagerID != nil {
		fm, err := s.users.FindByID(ctx, *e.FinanceManagerID)
		if err != nil {
			return nil, domainerrors.New(domainerrors.CodeInvalidInput, "finance manager not found")
		}
		if fm.OrgID != actor.OrgID {
			return nil, domainerrors.New(domainerrors.CodeInvalidInput, "finance manager belongs to another organization")
		}
	}

	if err := s.events.Create(ctx, e); err != nil {
		return nil, err
	}
	s.incCounter(func(m *metrics.Metrics) { m.EventsCreated.Inc() })
	s.logger.InfoContext(ctx, "event created",
		slog.String("event_id", e.ID.String()),
		slog.String("created_by", actor.ID.String()))

	return s.events.GetByID(ctx, e.ID)
}

// Get returns one event within the actor's tenant scope.
func (s *Service) Get(ctx context.Context, eventID uuid.UUID, actor Actor) (*models.Event, error) {
	return s.loadScoped(ctx, eventID, actor)
}

// List returns the events visible to the actor: attendees see only
// events they are invited to, every other role sees the whole
// organization.
func (s *Service) List(ctx context.Context, actor Actor) ([]models.Event, error) {
	if actor.Role == authmodels.RoleAttendee {
		return s.events.ListByAttendee(ctx, actor.ID)
	}
	return s.events.ListByOrg(ctx, actor.OrgID)
}
