// Package diff computes which governed budget fields an update actually
// changes. It is pure: no clock, no store, no side effects.
package diff

import (
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/event/models"
)

// Comparison selects the equality rule used for numeric governed
// fields.
//
// Loose coerces a string-typed payload number before comparing, so
// "1500" against a stored 1500 is no change. Strict never treats a
// string-typed value as equal to a stored number, which surfaces
// type-confused clients as explicit changes instead of masking them.
type Comparison int

const (
	Loose Comparison = iota
	Strict
)

// Change records one governed field transition. Original is nil when
// the stored value was absent (nullable threshold).
type Change struct {
	Field    models.GovernedField
	Original any
	Updated  any
}

// Diff is the result of comparing a stored event against a partial
// update. Changes are ordered maxBudget, autoApprove, threshold.
type Diff struct {
	Changes []Change
}

// HasChanges reports whether any governed field changed value.
func (d Diff) HasChanges() bool { return len(d.Changes) > 0 }

// Change returns the change for a field, if present.
func (d Diff) Change(f models.GovernedField) (Change, bool) {
	for _, c := range d.Changes {
		if c.Field == f {
			return c, true
		}
	}
	return Change{}, false
}

// Compute compares the stored event against the update. Fields absent
// from the update are never changes, regardless of the stored value.
func Compute(stored models.Event, upd models.EventUpdate, cmp Comparison) Diff {
	var d Diff

	if upd.MaxBudget != nil && !numberEqual(&stored.MaxBudget, *upd.MaxBudget, cmp) {
		d.Changes = append(d.Changes, Change{
			Field:    models.FieldMaxBudget,
			Original: stored.MaxBudget,
			Updated:  upd.MaxBudget.Value,
		})
	}

	if upd.AutoApprove != nil && stored.AutoApprove != *upd.AutoApprove {
		d.Changes = append(d.Changes, Change{
			Field:    models.FieldAutoApprove,
			Original: stored.AutoApprove,
			Updated:  *upd.AutoApprove,
		})
	}

	if upd.AutoApproveThreshold != nil && !numberEqual(stored.AutoApproveThreshold, *upd.AutoApproveThreshold, cmp) {
		var orig any
		if stored.AutoApproveThreshold != nil {
			orig = *stored.AutoApproveThreshold
		}
		d.Changes = append(d.Changes, Change{
			Field:    models.FieldAutoApproveThreshold,
			Original: orig,
			Updated:  upd.AutoApproveThreshold.Value,
		})
	}

	return d
}

// numberEqual compares a stored numeric value (nil means no prior
// value) against a provided one. A nil stored value never equals a
// provided number.
func numberEqual(stored *float64, provided models.FlexNumber, cmp Comparison) bool {
	if stored == nil {
		return false
	}
	if cmp == Strict && provided.AsString {
		return false
	}
	return *stored == provided.Value
}
