package service

import (
	"context"

	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/audit"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/auth/password"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/auth/totp"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/email"
	dErrors "github.com/gsm1298/event-travel-planner-backend-sub000/pkg/domain-errors"
	"github.com/gsm1298/event-travel-planner-backend-sub000/pkg/requesttime"
)

// InitiateLogin verifies the password and starts the MFA challenge.
//
// On success it lazily provisions a TOTP secret when none exists yet (or MFA
// was never completed), emails the current-step code to the account, and
// returns a pending token. Although conceptually a read-then-verify, this
// call persists a secret and sends mail.
//
// Unknown email and wrong password are indistinguishable to the caller.
func (s *Service) InitiateLogin(ctx context.Context, emailAddr, plaintext string) (string, error) {
	now := requesttime.Now(ctx)

	cred, err := s.credentials.FindByEmail(ctx, emailAddr)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			s.incLogin("failure")
			s.emitAudit(ctx, audit.ActionLoginAttempt, audit.OutcomeFailure, nil, emailAddr)
			return "", ErrInvalidCredentials
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "look up credentials")
	}

	if !password.Verify(cred.PasswordHash, plaintext) {
		s.incLogin("failure")
		s.emitAudit(ctx, audit.ActionLoginAttempt, audit.OutcomeFailure, cred, emailAddr)
		return "", ErrInvalidCredentials
	}

	secret := cred.MFASecret
	if secret == "" || !cred.MFAEnabled {
		// First login, or the account never finished MFA setup: provision a
		// fresh secret now. The enabled flag only flips after the first
		// successful verification in CompleteMfa.
		secret, err = totp.GenerateSecret(cred.Email)
		if err != nil {
			return "", err
		}
		if err := s.credentials.SaveMFASecret(ctx, cred.UserID, secret); err != nil {
			return "", dErrors.Wrap(err, dErrors.CodeInternal, "persist mfa secret")
		}
	}

	code, err := totp.Code(secret, now)
	if err != nil {
		return "", err
	}

	// Best-effort delivery: the pending token is issued regardless. A mail
	// outage must not lock every account out of the second factor's retry
	// path, and failures carry full detail in the server log only.
	if body, renderErr := email.RenderMfaCode(cred.DisplayName(), code); renderErr != nil {
		s.logger.ErrorContext(ctx, "failed to render mfa email", "error", renderErr)
	} else if sendErr := s.mailer.Send(ctx, cred.Email, "Your verification code", body); sendErr != nil {
		s.logger.ErrorContext(ctx, "failed to send mfa email",
			"error", sendErr,
			"user_id", cred.UserID.String(),
		)
	}

	pending, err := s.tokens.GeneratePendingToken(now)
	if err != nil {
		return "", err
	}

	s.incLogin("success")
	s.emitAudit(ctx, audit.ActionLoginAttempt, audit.OutcomeSuccess, cred, emailAddr)
	s.emitAudit(ctx, audit.ActionMfaChallenge, audit.OutcomeSuccess, cred, emailAddr)
	s.logger.InfoContext(ctx, "password verified, mfa challenge sent",
		"user_id", cred.UserID.String(),
	)
	return pending, nil
}

func (s *Service) incLogin(outcome string) {
	if s.metrics == nil {
		return
	}
	s.metrics.LoginAttempts.WithLabelValues(outcome).Inc()
	if outcome != "success" {
		s.metrics.AuthFailures.Inc()
	}
}
