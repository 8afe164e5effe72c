// Package handler exposes the event API over HTTP. Role allow-lists
// run in middleware; tenant scoping and ownership checks live in the
// service.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	authmodels "github.com/gsm1298/event-travel-planner-backend-sub000/internal/auth/models"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/event/models"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/event/service"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/flight"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/platform/middleware"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/transport/httpjson"
	domainerrors "github.com/gsm1298/event-travel-planner-backend-sub000/pkg/domain-errors"
)

type Handler struct {
	events *service.Service
	logger *slog.Logger
}

func New(events *service.Service, logger *slog.Logger) *Handler {
	return &Handler{events: events, logger: logger}
}

// Register mounts the event routes on an already-authenticated router.
func (h *Handler) Register(r chi.Router) {
	planners := []string{authmodels.RoleSiteAdmin, authmodels.RoleOrgAdmin, authmodels.RoleEventPlanner}
	managers := []string{authmodels.RoleSiteAdmin, authmodels.RoleOrgAdmin, authmodels.RoleEventPlanner, authmodels.RoleFinanceManager}

	r.Route("/events", func(r chi.Router) {
		r.Get("/", h.list)
		r.With(middleware.RequireRoles(h.logger, planners...)).Post("/", h.create)

		r.With(middleware.RequireRoles(h.logger, authmodels.RoleSiteAdmin, authmodels.RoleFinanceManager)).
			Get("/history/{id}", h.historyCSV)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.get)
			r.With(middleware.RequireRoles(h.logger, managers...)).Put("/", h.update)

			r.With(middleware.RequireRoles(h.logger, managers...)).Get("/attendees", h.listAttendees)
			r.With(middleware.RequireRoles(h.logger, managers...)).Post("/attendees", h.inviteAttendee)

			r.Post("/flights", h.bookFlight)
			r.With(middleware.RequireRoles(h.logger, authmodels.RoleSiteAdmin, authmodels.RoleFinanceManager)).
				Post("/flights/{flightID}/approve", h.approveFlight)
			r.With(middleware.RequireRoles(h.logger, authmodels.RoleSiteAdmin, authmodels.RoleFinanceManager)).
				Post("/flights/{flightID}/deny", h.denyFlight)
		})
	})
}

// actorFrom rebuilds the service actor from session claims. Claims are
// minted by us, so parse failures mean a stale or corrupted token.
func actorFrom(r *http.Request) (service.Actor, error) {
	claims := middleware.GetSession(r.Context())
	if claims == nil {
		return service.Actor{}, domainerrors.New(domainerrors.CodeUnauthorized, "unauthorized")
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return service.Actor{}, domainerrors.New(domainerrors.CodeUnauthorized, "unauthorized")
	}
	orgID, err := uuid.Parse(claims.OrgID)
	if err != nil {
		return service.Actor{}, domainerrors.New(domainerrors.CodeUnauthorized, "unauthorized")
	}
	return service.Actor{ID: userID, Email: claims.Email, Role: claims.Role, OrgID: orgID}, nil
}

func eventIDFrom(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, domainerrors.New(domainerrors.CodeInvalidInput, "invalid event id")
	}
	return id, nil
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		httpjson.WriteError(w, err)
		return
	}
	events, err := h.events.List(r.Context(), actor)
	if err != nil {
		h.logError(r, "listing events", err)
		httpjson.WriteError(w, err)
		return
	}
	if events == nil {
		events = []models.Event{}
	}
	httpjson.WriteJSON(w, http.StatusOK, map[string]any{"events": events})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		httpjson.WriteError(w, err)
		return
	}
	var e models.Event
	if err := decode(r, &e); err != nil {
		httpjson.WriteError(w, err)
		return
	}
	created, err := h.events.Create(r.Context(), e, actor)
	if err != nil {
		h.logError(r, "creating event", err)
		httpjson.WriteError(w, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusCreated, map[string]any{"event": created})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		httpjson.WriteError(w, err)
		return
	}
	id, err := eventIDFrom(r)
	if err != nil {
		httpjson.WriteError(w, err)
		return
	}
	e, err := h.events.Get(r.Context(), id, actor)
	if err != nil {
		httpjson.WriteError(w, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, map[string]any{"event": e})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		httpjson.WriteError(w, err)
		return
	}
	id, err := eventIDFrom(r)
	if err != nil {
		httpjson.WriteError(w, err)
		return
	}
	var upd models.EventUpdate
	if err := decode(r, &upd); err != nil {
		httpjson.WriteError(w, err)
		return
	}
	updated, err := h.events.Update(r.Context(), id, upd, actor)
	if err != nil {
		h.logError(r, "updating event", err)
		httpjson.WriteError(w, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, map[string]any{"event": updated})
}

// historyCSV streams the budget trail as a CSV attachment.
func (h *Handler) historyCSV(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		httpjson.WriteError(w, err)
		return
	}
	id, err := eventIDFrom(r)
	if err != nil {
		httpjson.WriteError(w, err)
		return
	}

	// Scope check runs before any byte is written so failures can
	// still produce a JSON error response.
	if _, err := h.events.Get(r.Context(), id, actor); err != nil {
		httpjson.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="event-history-`+id.String()+`.csv"`)
	if err := h.events.WriteHistoryCSV(r.Context(), w, id, actor); err != nil {
		h.logError(r, "exporting history", err)
	}
}

func (h *Handler) listAttendees(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		httpjson.WriteError(w, err)
		return
	}
	id, err := eventIDFrom(r)
	if err != nil {
		httpjson.WriteError(w, err)
		return
	}
	attendees, err := h.events.Attendees(r.Context(), id, actor)
	if err != nil {
		httpjson.WriteError(w, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, map[string]any{"attendees": attendees})
}

func (h *Handler) inviteAttendee(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		httpjson.WriteError(w, err)
		return
	}
	id, err := eventIDFrom(r)
	if err != nil {
		httpjson.WriteError(w, err)
		return
	}
	var req struct {
		Email string `json:"email"`
	}
	if err := decode(r, &req); err != nil {
		httpjson.WriteError(w, err)
		return
	}
	if err := h.events.InviteAttendee(r.Context(), id, req.Email, actor); err != nil {
		h.logError(r, "inviting attendee", err)
		httpjson.WriteError(w, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, map[string]string{"response": "attendee invited"})
}

func (h *Handler) bookFlight(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		httpjson.WriteError(w, err)
		return
	}
	id, err := eventIDFrom(r)
	if err != nil {
		httpjson.WriteError(w, err)
		return
	}
	var f flight.Flight
	if err := decode(r, &f); err != nil {
		httpjson.WriteError(w, err)
		return
	}
	booked, err := h.events.BookFlight(r.Context(), id, f, actor)
	if err != nil {
		h.logError(r, "booking flight", err)
		httpjson.WriteError(w, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusCreated, map[string]any{"flight": booked})
}

func (h *Handler) approveFlight(w http.ResponseWriter, r *http.Request) {
	h.resolveFlight(w, r, h.events.ApproveFlight)
}

func (h *Handler) denyFlight(w http.ResponseWriter, r *http.Request) {
	h.resolveFlight(w, r, h.events.DenyFlight)
}

func (h *Handler) resolveFlight(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, eventID, flightID uuid.UUID, actor service.Actor) (*flight.Flight, error)) {
	actor, err := actorFrom(r)
	if err != nil {
		httpjson.WriteError(w, err)
		return
	}
	id, err := eventIDFrom(r)
	if err != nil {
		httpjson.WriteError(w, err)
		return
	}
	flightID, err := uuid.Parse(chi.URLParam(r, "flightID"))
	if err != nil {
		httpjson.WriteError(w, domainerrors.New(domainerrors.CodeInvalidInput, "invalid flight id"))
		return
	}
	f, err := op(r.Context(), id, flightID, actor)
	if err != nil {
		h.logError(r, "resolving flight", err)
		httpjson.WriteError(w, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, map[string]any{"flight": f})
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domainerrors.New(domainerrors.CodeBadRequest, "malformed request body")
	}
	return nil
}

func (h *Handler) logError(r *http.Request, msg string, err error) {
	if domainerrors.HasCode(err, domainerrors.CodeInternal) {
		h.logger.ErrorContext(r.Context(), msg,
			slog.String("request_id", middleware.GetRequestID(r.Context())),
			slog.Any("error", err))
	}
}
