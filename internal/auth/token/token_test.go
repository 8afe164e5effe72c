package token

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	dErrors "github.com/gsm1298/event-travel-planner-backend-sub000/pkg/domain-errors"
)

type IssuerSuite struct {
	suite.Suite
	now    time.Time
	issuer *Issuer
}

func (s *IssuerSuite) SetupTest() {
	s.now = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	s.issuer = NewIssuer("test-signing-key", 5*time.Minute, 30*time.Minute,
		WithTimeFunc(func() time.Time { return s.now }))
}

func TestIssuerSuite(t *testing.T) {
	suite.Run(t, new(IssuerSuite))
}

func (s *IssuerSuite) TestPendingTokenRoundTrip() {
	tok, err := s.issuer.GeneratePendingToken(s.now)
	s.Require().NoError(err)

	claims, err := s.issuer.ValidatePendingToken(tok)
	s.Require().NoError(err)
	s.Equal(PurposeMfaPending, claims.Purpose)
	s.Empty(claims.Subject, "pending token must not carry an account binding")
}

func (s *IssuerSuite) TestPendingTokenExpiry() {
	tok, err := s.issuer.GeneratePendingToken(s.now)
	s.Require().NoError(err)

	s.Run("valid just before the 5 minute mark", func() {
		s.now = s.now.Add(5*time.Minute - time.Second)
		_, err := s.issuer.ValidatePendingToken(tok)
		s.NoError(err)
	})

	s.Run("rejected one second past expiry", func() {
		s.now = s.now.Add(2 * time.Second)
		_, err := s.issuer.ValidatePendingToken(tok)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func (s *IssuerSuite) TestSessionTokenRoundTrip() {
	userID := uuid.New()
	orgID := uuid.New()
	tok, err := s.issuer.GenerateSessionToken(s.now, userID.String(), "fm@acme.example", "Finance Manager", orgID.String())
	s.Require().NoError(err)

	claims, err := s.issuer.ValidateSessionToken(tok)
	s.Require().NoError(err)
	s.Equal(userID.String(), claims.UserID)
	s.Equal("fm@acme.example", claims.Email)
	s.Equal("Finance Manager", claims.Role)
	s.Equal(orgID.String(), claims.OrgID)
}

func (s *IssuerSuite) TestSessionTokenExpiresAfterThirtyMinutes() {
	tok, err := s.issuer.GenerateSessionToken(s.now, uuid.NewString(), "a@b.example", "Attendee", uuid.NewString())
	s.Require().NoError(err)

	s.now = s.now.Add(30*time.Minute + time.Second)
	_, err = s.issuer.ValidateSessionToken(tok)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *IssuerSuite) TestTamperedTokenRejected() {
	tok, err := s.issuer.GeneratePendingToken(s.now)
	s.Require().NoError(err)

	tampered := tok[:len(tok)-2] + "xx"
	_, err = s.issuer.ValidatePendingToken(tampered)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *IssuerSuite) TestWrongSigningKeyRejected() {
	other := NewIssuer("a-different-key", 5*time.Minute, 30*time.Minute,
		WithTimeFunc(func() time.Time { return s.now }))
	tok, err := other.GeneratePendingToken(s.now)
	s.Require().NoError(err)

	_, err = s.issuer.ValidatePendingToken(tok)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *IssuerSuite) TestSessionTokenRejectedAsPendingToken() {
	tok, err := s.issuer.GenerateSessionToken(s.now, uuid.NewString(), "a@b.example", "Attendee", uuid.NewString())
	s.Require().NoError(err)

	// A session token parses but lacks the mfa-pending purpose claim.
	_, err = s.issuer.ValidatePendingToken(tok)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *IssuerSuite) TestEmptyTokenRejected() {
	_, err := s.issuer.ValidateSessionToken("")
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
