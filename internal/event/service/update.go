package service

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/google/uuid"

	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/email"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/event/diff"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/event/lifecycle"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/event/models"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/platform/metrics"
	domainerrors "github.com/gsm1298/event-travel-planner-backend-sub000/pkg/domain-errors"
	"github.com/gsm1298/event-travel-planner-backend-sub000/pkg/requesttime"
)

// Update applies a partial update to an event. Governed budget fields
// that actually change value produce exactly one history record for
// the whole mutation and a notification to the event creator;
// non-governed edits leave no trail.
func (s *Service) Update(ctx context.Context, eventID uuid.UUID, upd models.EventUpdate, actor Actor) (*models.Event, error) {
	ctx, span := s.tracer.Start(ctx, "event.update")
	defer span.End()

	stored, err := s.loadScoped(ctx, eventID, actor)
	if err != nil {
		return nil, err
	}
	if !s.canManage(stored, actor) {
		return nil, domainerrors.New(domainerrors.CodeForbidden, "not allowed to modify this event")
	}
	if err := lifecycle.CanMutate(*stored, requesttime.Now(ctx), lifecycle.BudgetMutation); err != nil {
		return nil, err
	}

	merged := upd.Apply(*stored)
	if merged.EndDate.Before(merged.StartDate) {
		return nil, domainerrors.New(domainerrors.CodeInvalidInput, "end date precedes start date")
	}
	if merged.MaxBudget < 0 {
		return nil, domainerrors.New(domainerrors.CodeInvalidInput, "max budget cannot be negative")
	}

	// Diff against the stored state before persisting, so the history
	// record captures the true before/after pair.
	d := diff.Compute(*stored, upd, s.comparison)

	if err := s.events.Update(ctx, merged); err != nil {
		return nil, err
	}
	s.incCounter(func(m *metrics.Metrics) { m.EventUpdates.Inc() })

	if err := s.recorder.RecordIfChanged(ctx, eventID, actor.ID, d, nil); err != nil {
		// The mutation is durable; a failed trail write is a loud
		// error, not a rollback.
		s.logger.ErrorContext(ctx, "history record failed",
			slog.String("event_id", eventID.String()), slog.Any("error", err))
		return nil, err
	}
	if d.HasChanges() {
		s.incCounter(func(m *metrics.Metrics) { m.HistoryRecords.Inc() })
		s.notifyCreator(ctx, stored, d, actor)
	}

	return s.events.GetByID(ctx, eventID)
}

// notifyCreator emails the event creator about governed changes.
// Delivery is best effort and never fails the update.
func (s *Service) notifyCreator(ctx context.Context, e *models.Event, d diff.Diff, actor Actor) {
	creator, err := s.users.FindByID(ctx, e.CreatorID)
	if err != nil {
		s.logger.WarnContext(ctx, "creator lookup for notification failed",
			slog.String("event_id", e.ID.String()), slog.Any("error", err))
		return
	}

	actorName := actor.Email
	if u, err := s.users.FindByID(ctx, actor.ID); err == nil {
		actorName = u.DisplayName()
	}

	lines := make([]email.BudgetChangeLine, 0, len(d.Changes))
	for _, c := range d.Changes {
		lines = append(lines, email.BudgetChangeLine{
			Field: string(c.Field),
			From:  formatChangeValue(c.Original),
			To:    formatChangeValue(c.Updated),
		})
	}

	body, err := email.RenderBudgetChange(creator.DisplayName(), e.Name, actorName, lines)
	if err != nil {
		s.logger.WarnContext(ctx, "budget change template failed", slog.Any("error", err))
		return
	}
	if err := s.mailer.Send(ctx, creator.Email, "Budget settings changed for "+e.Name, body); err != nil {
		s.logger.WarnContext(ctx, "budget change notification failed",
			slog.String("event_id", e.ID.String()), slog.Any("error", err))
	}
}

func formatChangeValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "unset"
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}
