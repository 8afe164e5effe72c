// Package token mints and validates the two bearer-token classes of the
// login flow: the short-lived pending token issued after a password check and
// the session token issued after MFA verification. Authentication state lives
// entirely in which token the caller presents; nothing is stored server-side.
package token

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	dErrors "github.com/gsm1298/event-travel-planner-backend-sub000/pkg/domain-errors"
)

// PurposeMfaPending is the only claim the pending token carries besides the
// registered set. It deliberately has no account binding: the account is
// re-resolved by email at MFA-verify time. See the design notes before
// adding a user claim here; doing so changes the security properties.
const PurposeMfaPending = "mfa-pending"

// PendingClaims is the claim set of the pending-MFA token.
type PendingClaims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// SessionClaims is the claim set of the fully-authenticated session token.
type SessionClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	OrgID  string `json:"orgId"`
	jwt.RegisteredClaims
}

// Issuer handles creation and validation of both token classes.
type Issuer struct {
	signingKey []byte
	pendingTTL time.Duration
	sessionTTL time.Duration
	timeFunc   func() time.Time
}

// Option configures the Issuer.
type Option func(*Issuer)

// WithTimeFunc overrides the clock used for expiry validation. Tests use it
// to step past token lifetimes without sleeping.
func WithTimeFunc(f func() time.Time) Option {
	return func(i *Issuer) {
		i.timeFunc = f
	}
}

// NewIssuer constructs an Issuer with HS256 signing.
func NewIssuer(signingKey string, pendingTTL, sessionTTL time.Duration, opts ...Option) *Issuer {
	i := &Issuer{
		signingKey: []byte(signingKey),
		pendingTTL: pendingTTL,
		sessionTTL: sessionTTL,
		timeFunc:   time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// PendingTTL reports the configured pending-token lifetime (for cookie Max-Age).
func (i *Issuer) PendingTTL() time.Duration { return i.pendingTTL }

// SessionTTL reports the configured session-token lifetime (for cookie Max-Age).
func (i *Issuer) SessionTTL() time.Duration { return i.sessionTTL }

// GeneratePendingToken mints a pending-MFA token valid from now.
func (i *Issuer) GeneratePendingToken(now time.Time) (string, error) {
	jti, err := newJTI()
	if err != nil {
		return "", err
	}
	claims := PendingClaims{
		Purpose: PurposeMfaPending,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(i.pendingTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        jti,
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "sign pending token")
	}
	return signed, nil
}

// GenerateSessionToken mints an authenticated session token valid from now.
func (i *Issuer) GenerateSessionToken(now time.Time, userID, email, role, orgID string) (string, error) {
	jti, err := newJTI()
	if err != nil {
		return "", err
	}
	claims := SessionClaims{
		UserID: userID,
		Email:  email,
		Role:   role,
		OrgID:  orgID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(i.sessionTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   userID,
			ID:        jti,
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "sign session token")
	}
	return signed, nil
}

// ValidatePendingToken checks signature, expiry, and purpose. Every failure
// maps to the same unauthorized code so callers can only force re-login.
func (i *Issuer) ValidatePendingToken(tokenString string) (*PendingClaims, error) {
	claims := new(PendingClaims)
	if err := i.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.Purpose != PurposeMfaPending {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token purpose")
	}
	return claims, nil
}

// ValidateSessionToken checks signature and expiry of a session token.
func (i *Issuer) ValidateSessionToken(tokenString string) (*SessionClaims, error) {
	claims := new(SessionClaims)
	if err := i.parse(tokenString, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (i *Issuer) parse(tokenString string, claims jwt.Claims) error {
	if tokenString == "" {
		return dErrors.New(dErrors.CodeUnauthorized, "empty token")
	}

	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenUnverifiable
		}
		return i.signingKey, nil
	}, jwt.WithTimeFunc(i.timeFunc))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return dErrors.New(dErrors.CodeUnauthorized, "token expired")
		}
		return dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if !parsed.Valid {
		return dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	return nil
}

func newJTI() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "generate token id")
	}
	return hex.EncodeToString(b), nil
}
