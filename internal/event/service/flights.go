package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/event/diff"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/flight"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/platform/metrics"
	domainerrors "github.com/gsm1298/event-travel-planner-backend-sub000/pkg/domain-errors"
)

// BookFlight records an attendee's flight against an event. When the
// event auto-approves and the price is within the threshold the
// booking is approved immediately, otherwise it waits for the finance
// manager.
func (s *Service) BookFlight(ctx context.Context, eventID uuid.UUID, f flight.Flight, actor Actor) (*flight.Flight, error) {
	ctx, span := s.tracer.Start(ctx, "event.book_flight")
	defer span.End()

	e, err := s.loadScoped(ctx, eventID, actor)
	if err != nil {
		return nil, err
	}
	isAttendee, err := s.events.IsAttendee(ctx, eventID, actor.ID)
	if err != nil {
		return nil, err
	}
	if !isAttendee {
		return nil, domainerrors.New(domainerrors.CodeForbidden, "only attendees of the event can book flights")
	}
	if f.Price < 0 {
		return nil, domainerrors.New(domainerrors.CodeInvalidInput, "flight price cannot be negative")
	}

	f.ID = uuid.New()
	f.EventID = eventID
	f.AttendeeID = actor.ID
	f.Status = flight.StatusPending
	if err := s.flights.Create(ctx, f); err != nil {
		return nil, err
	}

	if e.AutoApprove && e.AutoApproveThreshold != nil && f.Price <= *e.AutoApproveThreshold {
		if err := s.approve(ctx, eventID, f.ID, actor.ID, "auto"); err != nil {
			return nil, err
		}
	}
	return s.flights.GetByID(ctx, f.ID)
}

// ApproveFlight is the finance manager's manual approval path.
func (s *Service) ApproveFlight(ctx context.Context, eventID, flightID uuid.UUID, actor Actor) (*flight.Flight, error) {
	ctx, span := s.tracer.Start(ctx, "event.approve_flight")
	defer span.End()

	e, err := s.loadScoped(ctx, eventID, actor)
	if err != nil {
		return nil, err
	}
	if !s.canManage(e, actor) {
		return nil, domainerrors.New(domainerrors.CodeForbidden, "not allowed to approve flights for this event")
	}
	if err := s.approve(ctx, eventID, flightID, actor.ID, "manual"); err != nil {
		return nil, err
	}
	return s.flights.GetByID(ctx, flightID)
}

// DenyFlight marks a pending booking as denied. Denials do not touch
// the budget and leave no history record.
func (s *Service) DenyFlight(ctx context.Context, eventID, flightID uuid.UUID, actor Actor) (*flight.Flight, error) {
	e, err := s.loadScoped(ctx, eventID, actor)
	if err != nil {
		return nil, err
	}
	if !s.canManage(e, actor) {
		return nil, domainerrors.New(domainerrors.CodeForbidden, "not allowed to deny flights for this event")
	}
	f, err := s.pendingFlight(ctx, eventID, flightID)
	if err != nil {
		return nil, err
	}
	if err := s.flights.SetStatus(ctx, f.ID, flight.StatusDenied); err != nil {
		return nil, err
	}
	return s.flights.GetByID(ctx, flightID)
}

// approve flips a pending flight to approved, refreshes the event's
// derived budget and appends the approval to the history trail.
func (s *Service) approve(ctx context.Context, eventID, flightID, actorID uuid.UUID, mode string) error {
	f, err := s.pendingFlight(ctx, eventID, flightID)
	if err != nil {
		return err
	}

	if err := s.flights.SetStatus(ctx, f.ID, flight.StatusApproved); err != nil {
		return err
	}
	current, err := s.events.RecomputeCurrentBudget(ctx, eventID)
	if err != nil {
		return err
	}

	if err := s.recorder.RecordIfChanged(ctx, eventID, actorID, diff.Diff{}, &f.ID); err != nil {
		return err
	}
	s.incCounter(func(m *metrics.Metrics) {
		m.FlightsApproved.WithLabelValues(mode).Inc()
		m.HistoryRecords.Inc()
	})
	s.logger.InfoContext(ctx, "flight approved",
		slog.String("event_id", eventID.String()),
		slog.String("flight_id", f.ID.String()),
		slog.String("mode", mode),
		slog.Float64("current_budget", current))
	return nil
}

func (s *Service) pendingFlight(ctx context.Context, eventID, flightID uuid.UUID) (*flight.Flight, error) {
	f, err := s.flights.GetByID(ctx, flightID)
	if err != nil {
		return nil, err
	}
	if f.EventID != eventID {
		return nil, domainerrors.New(domainerrors.CodeNotFound, "flight not found")
	}
	if f.Status != flight.StatusPending {
		return nil, domainerrors.New(domainerrors.CodeConflict, "flight is not pending")
	}
	return f, nil
}
