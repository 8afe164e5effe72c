package models

import (
	"strings"

	"github.com/google/uuid"
)

// Roles understood by the authorization allow-lists. Roles live on the user
// row and are embedded in session tokens; they are not hierarchical.
const (
	RoleSiteAdmin      = "Site Admin"
	RoleOrgAdmin       = "Org Admin"
	RoleEventPlanner   = "Event Planner"
	RoleFinanceManager = "Finance Manager"
	RoleAttendee       = "Attendee"
)

// Credential is the stored authentication material for one account.
//
// Invariant: MFAEnabled implies MFASecret is non-empty. The secret is created
// lazily on the first successful password check and the flag flips only after
// the first successful TOTP verification, so the two never get ahead of each
// other.
type Credential struct {
	UserID       uuid.UUID
	Email        string
	PasswordHash string
	MFASecret    string // base32 key material, empty until first generated
	MFAEnabled   bool
	Role         string
	OrgID        uuid.UUID
	FirstName    string
	LastName     string
}

// DisplayName renders the account's human-readable name for emails and exports.
func (c *Credential) DisplayName() string {
	name := strings.TrimSpace(c.FirstName + " " + c.LastName)
	if name == "" {
		return c.Email
	}
	return name
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// MfaRequest is the body of POST /auth/mfa.
type MfaRequest struct {
	Email   string `json:"email"`
	MfaCode string `json:"mfaCode"`
}

// ForgotPasswordRequest is the body of POST /auth/forgotPassword.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// UserView is the authenticated-user payload returned after MFA completion.
type UserView struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Role      string    `json:"role"`
	OrgID     uuid.UUID `json:"orgId"`
}

// Normalize canonicalizes the login email. Password is left untouched.
func (r *LoginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

// Normalize canonicalizes the MFA request email and trims the code.
func (r *MfaRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.MfaCode = strings.TrimSpace(r.MfaCode)
}

// Normalize canonicalizes the forgot-password email.
func (r *ForgotPasswordRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}
