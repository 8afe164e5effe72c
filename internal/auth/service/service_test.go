package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/audit"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/auth/models"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/auth/password"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/auth/store/credential"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/auth/token"
	dErrors "github.com/gsm1298/event-travel-planner-backend-sub000/pkg/domain-errors"
	"github.com/gsm1298/event-travel-planner-backend-sub000/pkg/requesttime"
)

// captureSender records outbound mail and can be told to fail.
type captureSender struct {
	to      []string
	subject []string
	body    []string
	err     error
}

func (c *captureSender) Send(_ context.Context, to, subject, body string) error {
	if c.err != nil {
		return c.err
	}
	c.to = append(c.to, to)
	c.subject = append(c.subject, subject)
	c.body = append(c.body, body)
	return nil
}

var codePattern = regexp.MustCompile(`\b(\d{6})\b`)

func (c *captureSender) lastCode() string {
	if len(c.body) == 0 {
		return ""
	}
	m := codePattern.FindStringSubmatch(c.body[len(c.body)-1])
	if m == nil {
		return ""
	}
	return m[1]
}

// AuthFlowSuite runs the login state machine against the real in-memory
// store, real TOTP derivation, and a real token issuer with a fixed clock.
type AuthFlowSuite struct {
	suite.Suite
	now     time.Time
	store   *credential.InMemoryStore
	issuer  *token.Issuer
	mailer  *captureSender
	auditor *audit.InMemoryStore
	service *Service

	userID uuid.UUID
	orgID  uuid.UUID
}

func TestAuthFlowSuite(t *testing.T) {
	suite.Run(t, new(AuthFlowSuite))
}

const testPassword = "s3cure-Travel!"

func (s *AuthFlowSuite) SetupTest() {
	s.now = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	s.store = credential.NewInMemory()
	s.issuer = token.NewIssuer("test-key", 5*time.Minute, 30*time.Minute,
		token.WithTimeFunc(func() time.Time { return s.now }))
	s.mailer = &captureSender{}
	s.auditor = audit.NewInMemoryStore()

	s.userID = uuid.New()
	s.orgID = uuid.New()
	hash, err := password.Hash(testPassword)
	s.Require().NoError(err)
	s.store.Seed(&models.Credential{
		UserID:       s.userID,
		Email:        "planner@acme.example",
		PasswordHash: hash,
		Role:         models.RoleEventPlanner,
		OrgID:        s.orgID,
		FirstName:    "Pat",
		LastName:     "Planner",
	})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.service = NewService(s.store, s.issuer, s.mailer,
		WithLogger(logger),
		WithAuditPublisher(audit.NewPublisher(s.auditor)),
	)
}

func (s *AuthFlowSuite) ctx() context.Context {
	return requesttime.WithTime(context.Background(), s.now)
}

func (s *AuthFlowSuite) TestInitiateLoginProvisionsSecretAndSendsCode() {
	pending, err := s.service.InitiateLogin(s.ctx(), "planner@acme.example", testPassword)
	s.Require().NoError(err)
	s.NotEmpty(pending)

	_, err = s.issuer.ValidatePendingToken(pending)
	s.NoError(err)

	cred, err := s.store.FindByEmail(s.ctx(), "planner@acme.example")
	s.Require().NoError(err)
	s.NotEmpty(cred.MFASecret, "secret provisioned lazily on first login")
	s.False(cred.MFAEnabled, "enabled flag must not flip before first verification")

	s.Require().Len(s.mailer.to, 1)
	s.Equal("planner@acme.example", s.mailer.to[0])
	s.Len(s.mailer.lastCode(), 6)
}

func (s *AuthFlowSuite) TestInitiateLoginUnknownEmail() {
	_, err := s.service.InitiateLogin(s.ctx(), "ghost@acme.example", testPassword)
	s.ErrorIs(err, ErrInvalidCredentials)
	s.Empty(s.mailer.to)
}

func (s *AuthFlowSuite) TestInitiateLoginWrongPassword() {
	_, err := s.service.InitiateLogin(s.ctx(), "planner@acme.example", "wrong")
	s.ErrorIs(err, ErrInvalidCredentials)

	// Same error value for unknown email and wrong password: callers cannot
	// tell which of the two was wrong.
	_, err2 := s.service.InitiateLogin(s.ctx(), "ghost@acme.example", testPassword)
	s.Equal(err.Error(), err2.Error())
}

func (s *AuthFlowSuite) TestInitiateLoginSurvivesMailOutage() {
	s.mailer.err = errors.New("smtp: connection refused")
	pending, err := s.service.InitiateLogin(s.ctx(), "planner@acme.example", testPassword)
	s.Require().NoError(err, "token issuance must not depend on email delivery")
	s.NotEmpty(pending)
}

func (s *AuthFlowSuite) login() (pendingToken, code string) {
	pending, err := s.service.InitiateLogin(s.ctx(), "planner@acme.example", testPassword)
	s.Require().NoError(err)
	code = s.mailer.lastCode()
	s.Require().Len(code, 6)
	return pending, code
}

func (s *AuthFlowSuite) TestCompleteMfaIssuesSession() {
	pending, code := s.login()

	session, user, err := s.service.CompleteMfa(s.ctx(), "planner@acme.example", code, pending)
	s.Require().NoError(err)
	s.Require().NotNil(user)
	s.Equal(s.userID, user.ID)
	s.Equal(models.RoleEventPlanner, user.Role)

	claims, err := s.issuer.ValidateSessionToken(session)
	s.Require().NoError(err)
	s.Equal(s.userID.String(), claims.UserID)
	s.Equal("planner@acme.example", claims.Email)
	s.Equal(s.orgID.String(), claims.OrgID)

	cred, _ := s.store.FindByEmail(s.ctx(), "planner@acme.example")
	s.True(cred.MFAEnabled, "first successful verification enables mfa")
}

func (s *AuthFlowSuite) TestCompleteMfaToleratesOneStepOfSkew() {
	pending, code := s.login()

	s.Run("previous step", func() {
		s.now = s.now.Add(-60 * time.Second)
		_, _, err := s.service.CompleteMfa(s.ctx(), "planner@acme.example", code, pending)
		s.NoError(err)
		s.now = s.now.Add(60 * time.Second)
	})

	s.Run("next step", func() {
		s.now = s.now.Add(60 * time.Second)
		_, _, err := s.service.CompleteMfa(s.ctx(), "planner@acme.example", code, pending)
		s.NoError(err)
	})
}

func (s *AuthFlowSuite) TestCompleteMfaRejectsCodeTwoStepsAway() {
	pending, code := s.login()

	s.now = s.now.Add(120 * time.Second)
	_, _, err := s.service.CompleteMfa(s.ctx(), "planner@acme.example", code, pending)
	s.ErrorIs(err, ErrInvalidMfaCode)
}

func (s *AuthFlowSuite) TestCompleteMfaRejectsExpiredPendingToken() {
	pending, code := s.login()

	s.now = s.now.Add(5*time.Minute + time.Second)
	_, _, err := s.service.CompleteMfa(s.ctx(), "planner@acme.example", code, pending)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	s.NotErrorIs(err, ErrInvalidMfaCode, "expired token is a structural failure, not a wrong code")
}

func (s *AuthFlowSuite) TestCompleteMfaRejectsWrongCode() {
	pending, code := s.login()

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	_, _, err := s.service.CompleteMfa(s.ctx(), "planner@acme.example", wrong, pending)
	s.ErrorIs(err, ErrInvalidMfaCode)
}

func (s *AuthFlowSuite) TestCompleteMfaWithoutSecretOnFileAlwaysFails() {
	// Seed a second account that never logged in: no secret on file.
	other := uuid.New()
	hash, _ := password.Hash(testPassword)
	s.store.Seed(&models.Credential{
		UserID:       other,
		Email:        "fresh@acme.example",
		PasswordHash: hash,
		Role:         models.RoleAttendee,
		OrgID:        s.orgID,
	})

	pending, _ := s.login()
	_, _, err := s.service.CompleteMfa(s.ctx(), "fresh@acme.example", "123456", pending)
	s.ErrorIs(err, ErrInvalidMfaCode)
}

func (s *AuthFlowSuite) TestSecondLoginReusesEnabledSecret() {
	pending, code := s.login()
	_, _, err := s.service.CompleteMfa(s.ctx(), "planner@acme.example", code, pending)
	s.Require().NoError(err)
	first, _ := s.store.FindByEmail(s.ctx(), "planner@acme.example")

	_, err = s.service.InitiateLogin(s.ctx(), "planner@acme.example", testPassword)
	s.Require().NoError(err)
	second, _ := s.store.FindByEmail(s.ctx(), "planner@acme.example")
	s.Equal(first.MFASecret, second.MFASecret, "enabled accounts keep their secret")
}

func (s *AuthFlowSuite) TestForgotPassword() {
	s.Run("unknown email is rejected", func() {
		err := s.service.ForgotPassword(s.ctx(), "ghost@acme.example")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("temporary password replaces the old one", func() {
		before, _ := s.store.FindByEmail(s.ctx(), "planner@acme.example")
		s.Require().NoError(s.service.ForgotPassword(s.ctx(), "planner@acme.example"))
		after, _ := s.store.FindByEmail(s.ctx(), "planner@acme.example")
		s.NotEqual(before.PasswordHash, after.PasswordHash)
		s.Require().NotEmpty(s.mailer.subject)
		s.Equal("Temporary password", s.mailer.subject[len(s.mailer.subject)-1])
	})

	s.Run("mail failure leaves the old password intact", func() {
		before, _ := s.store.FindByEmail(s.ctx(), "planner@acme.example")
		s.mailer.err = errors.New("smtp down")
		err := s.service.ForgotPassword(s.ctx(), "planner@acme.example")
		s.Error(err)
		after, _ := s.store.FindByEmail(s.ctx(), "planner@acme.example")
		s.Equal(before.PasswordHash, after.PasswordHash)
		s.mailer.err = nil
	})
}

func (s *AuthFlowSuite) TestAuthorize() {
	claims := &token.SessionClaims{Role: models.RoleEventPlanner}

	s.True(s.service.Authorize(claims, []string{models.RoleEventPlanner}))
	s.True(s.service.Authorize(claims, []string{models.RoleOrgAdmin, models.RoleEventPlanner}))
	s.False(s.service.Authorize(claims, []string{models.RoleFinanceManager}))
	s.True(s.service.Authorize(claims, nil), "empty allow-list permits any authenticated caller")
	s.False(s.service.Authorize(nil, nil))
}

func (s *AuthFlowSuite) TestFullLoginFlowEndToEnd() {
	pending, code := s.login()

	session, _, err := s.service.CompleteMfa(s.ctx(), "planner@acme.example", code, pending)
	s.Require().NoError(err)

	claims, err := s.issuer.ValidateSessionToken(session)
	s.Require().NoError(err)
	s.True(s.service.Authorize(claims, []string{models.RoleEventPlanner}))

	trail, err := s.auditor.ListByEmail(s.ctx(), "planner@acme.example")
	s.Require().NoError(err)
	s.GreaterOrEqual(len(trail), 3, "login, challenge, and verification are all audited")
}
