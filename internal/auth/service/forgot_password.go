package service

import (
	"context"

	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/audit"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/auth/password"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/email"
	dErrors "github.com/gsm1298/event-travel-planner-backend-sub000/pkg/domain-errors"
)

// ForgotPassword generates a temporary password, emails it, and persists its
// hash. The email is sent before the hash is stored: if delivery fails the
// old password keeps working, whereas a store failure after delivery only
// invalidates the temporary password that was just mailed.
func (s *Service) ForgotPassword(ctx context.Context, emailAddr string) error {
	cred, err := s.credentials.FindByEmail(ctx, emailAddr)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return dErrors.New(dErrors.CodeUnauthorized, "unknown email")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "look up credentials")
	}

	temp, err := password.GenerateTemporary()
	if err != nil {
		return err
	}
	hash, err := password.Hash(temp)
	if err != nil {
		return err
	}

	body, err := email.RenderTempPassword(cred.DisplayName(), temp)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "render password reset email")
	}
	if err := s.mailer.Send(ctx, cred.Email, "Temporary password", body); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "send password reset email")
	}

	if err := s.credentials.UpdatePasswordHash(ctx, cred.UserID, hash); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "persist temporary password")
	}

	if s.metrics != nil {
		s.metrics.PasswordResets.Inc()
	}
	s.emitAudit(ctx, audit.ActionPasswordReset, audit.OutcomeSuccess, cred, emailAddr)
	s.logger.InfoContext(ctx, "temporary password issued",
		"user_id", cred.UserID.String(),
	)
	return nil
}
