package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	authmodels "github.com/gsm1298/event-travel-planner-backend-sub000/internal/auth/models"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/auth/password"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/email"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/event/lifecycle"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/user"
	domainerrors "github.com/gsm1298/event-travel-planner-backend-sub000/pkg/domain-errors"
	"github.com/gsm1298/event-travel-planner-backend-sub000/pkg/requesttime"
)

// InviteAttendee links a user to an event by email, creating the
// account with a temporary password when it does not exist yet. The
// lifecycle guard refuses invitations once the event is over.
func (s *Service) InviteAttendee(ctx context.Context, eventID uuid.UUID, attendeeEmail string, actor Actor) error {
	ctx, span := s.tracer.Start(ctx, "event.invite_attendee")
	defer span.End()

	attendeeEmail = strings.ToLower(strings.TrimSpace(attendeeEmail))
	if attendeeEmail == "" {
		return domainerrors.New(domainerrors.CodeInvalidInput, "attendee email is required")
	}

	e, err := s.loadScoped(ctx, eventID, actor)
	if err != nil {
		return err
	}
	if !s.canManage(e, actor) {
		return domainerrors.New(domainerrors.CodeForbidden, "not allowed to modify this event")
	}
	if err := lifecycle.CanMutate(*e, requesttime.Now(ctx), lifecycle.AttendeeInvitation); err != nil {
		return err
	}

	invitee, err := s.users.FindByEmail(ctx, attendeeEmail)
	switch {
	case err == nil:
		if invitee.OrgID != e.OrgID {
			return domainerrors.New(domainerrors.CodeInvalidInput, "attendee belongs to another organization")
		}
	case domainerrors.HasCode(err, domainerrors.CodeNotFound):
		invitee, err = s.provisionAttendee(ctx, attendeeEmail, e.OrgID)
		if err != nil {
			return err
		}
	default:
		return err
	}

	if err := s.events.AddAttendee(ctx, eventID, invitee.ID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "attendee invited",
		slog.String("event_id", eventID.String()),
		slog.String("attendee_id", invitee.ID.String()))
	return nil
}

// Attendees lists the users invited to an event.
func (s *Service) Attendees(ctx context.Context, eventID uuid.UUID, actor Actor) ([]user.User, error) {
	if _, err := s.loadScoped(ctx, eventID, actor); err != nil {
		return nil, err
	}
	ids, err := s.events.ListAttendees(ctx, eventID)
	if err != nil {
		return nil, err
	}
	users := make([]user.User, 0, len(ids))
	for _, id := range ids {
		u, err := s.users.FindByID(ctx, id)
		if err != nil {
			if domainerrors.HasCode(err, domainerrors.CodeNotFound) {
				continue
			}
			return nil, err
		}
		users = append(users, *u)
	}
	return users, nil
}

// provisionAttendee creates an account for a first-time invitee and
// mails the temporary password. The mail must go out before the
// account is usable for anything, so a send failure aborts creation.
func (s *Service) provisionAttendee(ctx context.Context, attendeeEmail string, orgID uuid.UUID) (*user.User, error) {
	temp, err := password.GenerateTemporary()
	if err != nil {
		return nil, err
	}
	hash, err := password.Hash(temp)
	if err != nil {
		return nil, err
	}

	u := user.User{
		ID:    uuid.New(),
		Email: attendeeEmail,
		Role:  authmodels.RoleAttendee,
		OrgID: orgID,
	}

	body, err := email.RenderTempPassword(u.DisplayName(), temp)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "rendering invitation")
	}
	if err := s.mailer.Send(ctx, attendeeEmail, "You have been invited to an event", body); err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "sending invitation")
	}

	if err := s.users.Create(ctx, u, hash); err != nil {
		return nil, err
	}
	return &u, nil
}
