// Package handler exposes the authentication endpoints. The two-phase flow
// rides on two cookies: "temp" carries the pending-MFA token between
// /auth/login and /auth/mfa, and "jwt" carries the session token afterwards.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/auth/models"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/platform/middleware"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/transport/httpjson"
	dErrors "github.com/gsm1298/event-travel-planner-backend-sub000/pkg/domain-errors"
)

// PendingCookieName carries the pending token between login and MFA verify.
const PendingCookieName = "temp"

// Service defines the authentication operations the handler delegates to.
type Service interface {
	InitiateLogin(ctx context.Context, email, password string) (string, error)
	CompleteMfa(ctx context.Context, email, code, pendingToken string) (string, *models.UserView, error)
	ForgotPassword(ctx context.Context, email string) error
}

// Handler handles the /auth endpoint group.
type Handler struct {
	auth       Service
	logger     *slog.Logger
	pendingAge int
	sessionAge int
}

// New creates an auth Handler. Cookie ages are passed in seconds and should
// equal the corresponding token TTLs.
func New(auth Service, logger *slog.Logger, pendingAgeSecs, sessionAgeSecs int) *Handler {
	return &Handler{
		auth:       auth,
		logger:     logger,
		pendingAge: pendingAgeSecs,
		sessionAge: sessionAgeSecs,
	}
}

// Register mounts the public auth routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/login", h.HandleLogin)
	r.Post("/auth/mfa", h.HandleMfa)
	r.Post("/auth/forgotPassword", h.HandleForgotPassword)
}

// RegisterProtected mounts routes that require an authenticated session.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Post("/auth/logout", h.HandleLogout)
}

// HandleLogin implements POST /auth/login.
// On success the response sets the pending-MFA cookie; the session cookie is
// only issued by /auth/mfa.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpjson.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid JSON in request body"))
		return
	}
	req.Normalize()
	if req.Email == "" || req.Password == "" {
		httpjson.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "email and password are required"))
		return
	}

	pending, err := h.auth.InitiateLogin(ctx, req.Email, req.Password)
	if err != nil {
		h.logError(ctx, "login failed", err)
		httpjson.WriteError(w, err)
		return
	}

	h.setCookie(w, r, PendingCookieName, pending, h.pendingAge)
	httpjson.WriteJSON(w, http.StatusOK, map[string]string{
		"response": "MFA code sent",
	})
}

// HandleMfa implements POST /auth/mfa.
// Requires the pending cookie from /auth/login; on success sets the session
// cookie and clears the pending cookie by overwriting it with an
// immediately-expiring value.
func (h *Handler) HandleMfa(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.MfaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpjson.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid JSON in request body"))
		return
	}
	req.Normalize()

	pending := ""
	if cookie, err := r.Cookie(PendingCookieName); err == nil {
		pending = cookie.Value
	}

	session, user, err := h.auth.CompleteMfa(ctx, req.Email, req.MfaCode, pending)
	if err != nil {
		h.logError(ctx, "mfa verification failed", err)
		httpjson.WriteError(w, err)
		return
	}

	h.clearCookie(w, r, PendingCookieName)
	h.setCookie(w, r, middleware.SessionCookieName, session, h.sessionAge)
	httpjson.WriteJSON(w, http.StatusOK, map[string]any{
		"user": user,
	})
}

// HandleLogout implements POST /auth/logout. The session token is stateless,
// so logout can only overwrite the client-held cookie; a token copied
// elsewhere stays valid until it expires.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.clearCookie(w, r, middleware.SessionCookieName)
	httpjson.WriteJSON(w, http.StatusOK, map[string]string{
		"response": "logged out",
	})
}

// HandleForgotPassword implements POST /auth/forgotPassword.
func (h *Handler) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpjson.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid JSON in request body"))
		return
	}
	req.Normalize()
	if req.Email == "" {
		httpjson.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "email is required"))
		return
	}

	if err := h.auth.ForgotPassword(ctx, req.Email); err != nil {
		h.logError(ctx, "forgot password failed", err)
		httpjson.WriteError(w, err)
		return
	}

	httpjson.WriteJSON(w, http.StatusOK, map[string]string{
		"response": "temporary password sent",
	})
}

func (h *Handler) setCookie(w http.ResponseWriter, r *http.Request, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   isHTTPS(r),
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *Handler) clearCookie(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   isHTTPS(r),
		SameSite: http.SameSiteStrictMode,
	})
}

func isHTTPS(r *http.Request) bool {
	return r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"
}

func (h *Handler) logError(ctx context.Context, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"error", err,
		"request_id", middleware.GetRequestID(ctx),
	)
}
