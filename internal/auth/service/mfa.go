package service

import (
	"context"

	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/audit"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/auth/models"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/auth/totp"
	dErrors "github.com/gsm1298/event-travel-planner-backend-sub000/pkg/domain-errors"
	"github.com/gsm1298/event-travel-planner-backend-sub000/pkg/requesttime"
)

// CompleteMfa finishes the login flow: it validates the pending token
// (purpose and expiry only; the token carries no account binding, so the
// account is re-resolved from the submitted email), verifies the TOTP code
// within the tolerance window, and issues the session token.
//
// On the first-ever successful verification the MFA-enabled flag is flipped
// and persisted. All verification failures collapse into the same generic
// error.
func (s *Service) CompleteMfa(ctx context.Context, emailAddr, code, pendingToken string) (string, *models.UserView, error) {
	now := requesttime.Now(ctx)

	// Structural token failures propagate as-is: they force re-login rather
	// than masquerading as a wrong code.
	if _, err := s.tokens.ValidatePendingToken(pendingToken); err != nil {
		return "", nil, err
	}

	cred, err := s.credentials.FindByEmail(ctx, emailAddr)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			s.incMfa("failure")
			s.emitAudit(ctx, audit.ActionMfaFailed, audit.OutcomeFailure, nil, emailAddr)
			return "", nil, ErrInvalidMfaCode
		}
		return "", nil, dErrors.Wrap(err, dErrors.CodeInternal, "look up credentials")
	}

	if cred.MFASecret == "" || !totp.Validate(cred.MFASecret, code, now) {
		s.incMfa("failure")
		s.emitAudit(ctx, audit.ActionMfaFailed, audit.OutcomeFailure, cred, emailAddr)
		return "", nil, ErrInvalidMfaCode
	}

	if !cred.MFAEnabled {
		if err := s.credentials.EnableMFA(ctx, cred.UserID); err != nil {
			return "", nil, dErrors.Wrap(err, dErrors.CodeInternal, "enable mfa")
		}
	}

	session, err := s.tokens.GenerateSessionToken(now,
		cred.UserID.String(), cred.Email, cred.Role, cred.OrgID.String())
	if err != nil {
		return "", nil, err
	}

	s.incMfa("success")
	s.emitAudit(ctx, audit.ActionMfaVerified, audit.OutcomeSuccess, cred, emailAddr)
	s.logger.InfoContext(ctx, "mfa verified, session issued",
		"user_id", cred.UserID.String(),
	)

	return session, &models.UserView{
		ID:        cred.UserID,
		Email:     cred.Email,
		FirstName: cred.FirstName,
		LastName:  cred.LastName,
		Role:      cred.Role,
		OrgID:     cred.OrgID,
	}, nil
}

func (s *Service) incMfa(outcome string) {
	if s.metrics == nil {
		return
	}
	s.metrics.MfaVerifications.WithLabelValues(outcome).Inc()
	if outcome != "success" {
		s.metrics.AuthFailures.Inc()
	}
}
