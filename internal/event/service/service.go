// Package service orchestrates event mutations: authorization scoping,
// lifecycle gating, governed-field diffing, history recording and
// creator notification.
package service

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	authmodels "github.com/gsm1298/event-travel-planner-backend-sub000/internal/auth/models"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/email"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/event/diff"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/event/models"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/event/store"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/flight"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/platform/metrics"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/user"
	domainerrors "github.com/gsm1298/event-travel-planner-backend-sub000/pkg/domain-errors"
)

// Actor is the authenticated principal performing an operation,
// decoded from session claims at the transport edge.
type Actor struct {
	ID    uuid.UUID
	Email string
	Role  string
	OrgID uuid.UUID
}

// HistoryRecorder is the slice of the history package the service
// drives.
type HistoryRecorder interface {
	RecordIfChanged(ctx context.Context, eventID, actorID uuid.UUID, d diff.Diff, flightID *uuid.UUID) error
	GetHistory(ctx context.Context, eventID uuid.UUID) ([]models.HistoryRecord, error)
	WriteCSV(ctx context.Context, w io.Writer, eventID uuid.UUID) error
}

type Service struct {
	events     store.EventStore
	flights    flight.Store
	users      user.Store
	recorder   HistoryRecorder
	mailer     email.Sender
	logger     *slog.Logger
	metrics    *metrics.Metrics
	comparison diff.Comparison
	tracer     trace.Tracer
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithComparison switches the governed-field equality rule. The
// default is Loose.
func WithComparison(c diff.Comparison) Option {
	return func(s *Service) { s.comparison = c }
}

func New(events store.EventStore, flights flight.Store, users user.Store, recorder HistoryRecorder, mailer email.Sender, opts ...Option) *Service {
	s := &Service{
		events:     events,
		flights:    flights,
		users:      users,
		recorder:   recorder,
		mailer:     mailer,
		logger:     slog.Default(),
		comparison: diff.Loose,
		tracer:     otel.Tracer("event-service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// loadScoped fetches an event and enforces the tenant boundary: actors
// only see events of their own organization, site admins excepted.
func (s *Service) loadScoped(ctx context.Context, eventID uuid.UUID, actor Actor) (*models.Event, error) {
	e, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if actor.Role != authmodels.RoleSiteAdmin && e.OrgID != actor.OrgID {
		// Cross-tenant probes get the same answer as a missing id.
		return nil, domainerrors.New(domainerrors.CodeNotFound, "event not found")
	}
	return e, nil
}

func (s *Service) canManage(e *models.Event, actor Actor) bool {
	switch actor.Role {
	case authmodels.RoleSiteAdmin, authmodels.RoleOrgAdmin:
		return true
	}
	if e.CreatorID == actor.ID {
		return true
	}
	return e.FinanceManagerID != nil && *e.FinanceManagerID == actor.ID
}

func (s *Service) incCounter(inc func(m *metrics.Metrics)) {
	if s.metrics != nil {
		inc(s.metrics)
	}
}
