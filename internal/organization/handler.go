package organization

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	authmodels "github.com/gsm1298/event-travel-planner-backend-sub000/internal/auth/models"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/platform/middleware"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/transport/httpjson"
	domainerrors "github.com/gsm1298/event-travel-planner-backend-sub000/pkg/domain-errors"
)

type Handler struct {
	orgs   Store
	logger *slog.Logger
}

func NewHandler(orgs Store, logger *slog.Logger) *Handler {
	return &Handler{orgs: orgs, logger: logger}
}

// Register mounts the organization routes on an authenticated router.
// Creation is a site-admin operation; reads stay within the caller's
// own tenant.
func (h *Handler) Register(r chi.Router) {
	r.Route("/organizations", func(r chi.Router) {
		r.With(middleware.RequireRoles(h.logger, authmodels.RoleSiteAdmin)).Post("/", h.create)
		r.Get("/{id}", h.get)
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpjson.WriteError(w, domainerrors.New(domainerrors.CodeBadRequest, "malformed request body"))
		return
	}
	if req.Name == "" {
		httpjson.WriteError(w, domainerrors.New(domainerrors.CodeInvalidInput, "organization name is required"))
		return
	}

	org := Organization{ID: uuid.New(), Name: req.Name}
	if err := h.orgs.Create(r.Context(), org); err != nil {
		h.logger.ErrorContext(r.Context(), "creating organization",
			slog.String("request_id", middleware.GetRequestID(r.Context())),
			slog.Any("error", err))
		httpjson.WriteError(w, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusCreated, map[string]any{"organization": org})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.WriteError(w, domainerrors.New(domainerrors.CodeInvalidInput, "invalid organization id"))
		return
	}

	claims := middleware.GetSession(r.Context())
	if claims == nil {
		httpjson.WriteError(w, domainerrors.New(domainerrors.CodeUnauthorized, "unauthorized"))
		return
	}
	if claims.Role != authmodels.RoleSiteAdmin && claims.OrgID != id.String() {
		httpjson.WriteError(w, domainerrors.New(domainerrors.CodeNotFound, "organization not found"))
		return
	}

	org, err := h.orgs.Get(r.Context(), id)
	if err != nil {
		httpjson.WriteError(w, err)
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, map[string]any{"organization": org})
}
