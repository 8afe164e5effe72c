package audit

import (
	"strings"
	"time"

	"github.com/mssola/useragent"
)

// Event is emitted from the authentication flow to capture key actions.
// Kept transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time
	UserID    string
	Email     string
	Action    string
	Outcome   string
	Device    string
	RemoteIP  string
}

type Action string

const (
	ActionLoginAttempt  Action = "login_attempt"
	ActionMfaChallenge  Action = "mfa_challenge_sent"
	ActionMfaVerified   Action = "mfa_verified"
	ActionMfaFailed     Action = "mfa_failed"
	ActionPasswordReset Action = "password_reset"
	ActionLogout        Action = "logout"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// DeviceDisplayName condenses a User-Agent header into a short human-readable
// label for the audit trail ("Chrome 120 on Linux"). Empty input stays empty.
func DeviceDisplayName(userAgentString string) string {
	if userAgentString == "" {
		return ""
	}
	ua := useragent.New(userAgentString)
	browser, version := ua.Browser()
	if browser == "" {
		return "unknown device"
	}
	if i := strings.IndexByte(version, '.'); i > 0 {
		version = version[:i]
	}
	label := browser
	if version != "" {
		label += " " + version
	}
	if os := ua.OS(); os != "" {
		label += " on " + os
	}
	return label
}
