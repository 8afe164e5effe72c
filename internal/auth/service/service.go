// Package service implements the two-phase login state machine:
// Unauthenticated -> PendingMfa -> Authenticated. No state is persisted
// server-side beyond the two signed tokens; which token the caller presents
// IS the state.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/audit"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/auth/models"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/auth/token"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/email"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/platform/metrics"
)

// CredentialStore defines the persistence interface for authentication material.
// Error Contract: Find methods return a not_found domain error when no account matches.
type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (*models.Credential, error)
	FindByID(ctx context.Context, userID uuid.UUID) (*models.Credential, error)
	SaveMFASecret(ctx context.Context, userID uuid.UUID, secret string) error
	EnableMFA(ctx context.Context, userID uuid.UUID) error
	UpdatePasswordHash(ctx context.Context, userID uuid.UUID, hash string) error
}

// TokenIssuer mints and validates the two token classes of the flow.
type TokenIssuer interface {
	GeneratePendingToken(now time.Time) (string, error)
	GenerateSessionToken(now time.Time, userID, email, role, orgID string) (string, error)
	ValidatePendingToken(tokenString string) (*token.PendingClaims, error)
	ValidateSessionToken(tokenString string) (*token.SessionClaims, error)
}

// AuditPublisher records authentication events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service orchestrates password verification, the TOTP challenge, and token
// issuance.
type Service struct {
	credentials CredentialStore
	tokens      TokenIssuer
	mailer      email.Sender
	logger      *slog.Logger
	auditor     AuditPublisher
	metrics     *metrics.Metrics
}

// Option configures the Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService constructs the authentication flow.
func NewService(credentials CredentialStore, tokens TokenIssuer, mailer email.Sender, opts ...Option) *Service {
	svc := &Service{
		credentials: credentials,
		tokens:      tokens,
		mailer:      mailer,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	return svc
}

func (s *Service) emitAudit(ctx context.Context, action audit.Action, outcome string, cred *models.Credential, email string) {
	if s.auditor == nil {
		return
	}
	event := audit.Event{
		Email:   email,
		Action:  string(action),
		Outcome: outcome,
		Device:  audit.DeviceDisplayName(userAgentFrom(ctx)),
		RemoteIP: clientIPFrom(ctx),
	}
	if cred != nil {
		event.UserID = cred.UserID.String()
		event.Email = cred.Email
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event",
			"error", err,
			"action", action,
		)
	}
}
