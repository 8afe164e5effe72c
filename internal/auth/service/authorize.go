package service

import (
	"slices"

	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/auth/token"
)

// Authorize checks the session's embedded role against an allow-list.
// Denial is a boolean decision, never an error: errors are reserved for
// structural token invalidity, which the token issuer reports before claims
// ever reach this point. An empty allow-list permits any authenticated caller.
func (s *Service) Authorize(claims *token.SessionClaims, requiredRoles []string) bool {
	if claims == nil {
		return false
	}
	if len(requiredRoles) == 0 {
		return true
	}
	return slices.Contains(requiredRoles, claims.Role)
}
