// Package lifecycle evaluates an event's phase and gates mutations on
// it. Evaluation is pure: the caller supplies the clock.
package lifecycle

import (
	"fmt"
	"time"

	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/event/models"
	domainerrors "github.com/gsm1298/event-travel-planner-backend-sub000/pkg/domain-errors"
)

// MutationClass groups operations that share a lifecycle rule.
type MutationClass string

const (
	// AttendeeInvitation covers adding attendees to an event.
	AttendeeInvitation MutationClass = "attendee_invitation"
	// BudgetMutation covers governed-field updates and flight
	// approvals. These stay open for the whole lifecycle so finance
	// can settle budgets after an event ends.
	BudgetMutation MutationClass = "budget_mutation"
)

// PhaseAt returns the event's phase at the given instant.
func PhaseAt(e models.Event, now time.Time) models.Phase {
	if now.Before(e.StartDate) {
		return models.PhaseNotStarted
	}
	if now.After(e.EndDate) {
		return models.PhaseOver
	}
	return models.PhaseInProgress
}

// CanMutate returns a lifecycle_violation error when the mutation class
// is closed at the given instant, nil otherwise.
//
// Attendee invitations are refused only when the event has both started
// and ended. An in-progress event therefore still accepts invitations;
// tightening this to "started" alone would also lock out late additions
// to running events, so the narrower rule is kept deliberately.
func CanMutate(e models.Event, now time.Time, class MutationClass) error {
	switch class {
	case AttendeeInvitation:
		started := !now.Before(e.StartDate)
		over := now.After(e.EndDate)
		if started && over {
			return domainerrors.New(domainerrors.CodeLifecycleViolation,
				fmt.Sprintf("event %q has ended, attendees can no longer be added", e.Name))
		}
		return nil
	case BudgetMutation:
		return nil
	default:
		return domainerrors.New(domainerrors.CodeInternal, "unknown mutation class")
	}
}
