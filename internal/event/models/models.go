// Package models defines the event domain types shared by the diff
// engine, lifecycle guard, stores and history recorder.
package models

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"

	domainerrors "github.com/gsm1298/event-travel-planner-backend-sub000/pkg/domain-errors"
)

// GovernedField identifies a budget-governance field. Changes to these
// fields are the only event mutations that produce history records.
type GovernedField string

const (
	FieldMaxBudget            GovernedField = "maxBudget"
	FieldAutoApprove          GovernedField = "autoApprove"
	FieldAutoApproveThreshold GovernedField = "autoApproveThreshold"
)

// GovernedFields returns the governed set in its canonical order. The
// diff engine, history recorder and CSV export all iterate this order.
func GovernedFields() []GovernedField {
	return []GovernedField{FieldMaxBudget, FieldAutoApprove, FieldAutoApproveThreshold}
}

// Phase describes where an event sits in its lifecycle relative to a
// point in time.
type Phase string

const (
	PhaseNotStarted Phase = "not_started"
	PhaseInProgress Phase = "in_progress"
	PhaseOver       Phase = "over"
)

// Event is the stored representation of a travel event.
type Event struct {
	ID               uuid.UUID  `json:"id"`
	Name             string     `json:"name"`
	Destination      string     `json:"destination"`
	OrgID            uuid.UUID  `json:"orgId"`
	CreatorID        uuid.UUID  `json:"createdBy"`
	FinanceManagerID *uuid.UUID `json:"financeMan,omitempty"`
	StartDate        time.Time  `json:"startDate"`
	EndDate          time.Time  `json:"endDate"`

	// MaxBudget is the per-attendee ceiling. CurrentBudget is derived:
	// maxBudget minus the sum of approved flight prices. It is never
	// written directly by clients.
	MaxBudget            float64  `json:"maxBudget"`
	CurrentBudget        float64  `json:"currentBudget"`
	AutoApprove          bool     `json:"autoApprove"`
	AutoApproveThreshold *float64 `json:"autoApproveThreshold,omitempty"`

	PictureLink string    `json:"pictureLink,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// FlexNumber is a numeric update value that accepts both JSON numbers
// and numeric strings on the wire. Whether a string-typed value is
// considered equal to a stored number is the diff engine's call, so the
// original representation is kept alongside the parsed value.
type FlexNumber struct {
	Value     float64
	AsString  bool
	rawString string
}

func (n *FlexNumber) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return domainerrors.New(domainerrors.CodeInvalidInput, "value is not numeric")
		}
		n.Value = v
		n.AsString = true
		n.rawString = s
		return nil
	}
	n.AsString = false
	return json.Unmarshal(data, &n.Value)
}

func (n FlexNumber) MarshalJSON() ([]byte, error) {
	if n.AsString {
		return json.Marshal(n.rawString)
	}
	return json.Marshal(n.Value)
}

// EventUpdate is a partial update. Nil means "field not provided" and
// is distinct from an explicit zero value.
type EventUpdate struct {
	Name             *string    `json:"name,omitempty"`
	Destination      *string    `json:"destination,omitempty"`
	FinanceManagerID *uuid.UUID `json:"financeMan,omitempty"`
	StartDate        *time.Time `json:"startDate,omitempty"`
	EndDate          *time.Time `json:"endDate,omitempty"`
	PictureLink      *string    `json:"pictureLink,omitempty"`
	Description      *string    `json:"description,omitempty"`

	MaxBudget            *FlexNumber `json:"maxBudget,omitempty"`
	AutoApprove          *bool       `json:"autoApprove,omitempty"`
	AutoApproveThreshold *FlexNumber `json:"autoApproveThreshold,omitempty"`
}

// HasGoverned reports whether the update touches any governed field.
func (u EventUpdate) HasGoverned() bool {
	return u.MaxBudget != nil || u.AutoApprove != nil || u.AutoApproveThreshold != nil
}

// Apply merges the update into a copy of the stored event and returns
// it. Derived fields (currentBudget, timestamps) are untouched; the
// store owns those.
func (u EventUpdate) Apply(e Event) Event {
	if u.Name != nil {
		e.Name = *u.Name
	}
	if u.Destination != nil {
		e.Destination = *u.Destination
	}
	if u.FinanceManagerID != nil {
		e.FinanceManagerID = u.FinanceManagerID
	}
	if u.StartDate != nil {
		e.StartDate = *u.StartDate
	}
	if u.EndDate != nil {
		e.EndDate = *u.EndDate
	}
	if u.PictureLink != nil {
		e.PictureLink = *u.PictureLink
	}
	if u.Description != nil {
		e.Description = *u.Description
	}
	if u.MaxBudget != nil {
		e.MaxBudget = u.MaxBudget.Value
	}
	if u.AutoApprove != nil {
		e.AutoApprove = *u.AutoApprove
	}
	if u.AutoApproveThreshold != nil {
		v := u.AutoApproveThreshold.Value
		e.AutoApproveThreshold = &v
	}
	return e
}

// HistoryRecord is one append-only entry in an event's budget audit
// trail. Original/Updated columns are nil when the corresponding field
// did not change in that mutation.
type HistoryRecord struct {
	ID      string    `json:"id"`
	EventID uuid.UUID `json:"eventId"`
	ActorID uuid.UUID `json:"updatedBy"`

	// ActorName and the Flight* columns are resolved joins, populated
	// on read for display and CSV export.
	ActorName string `json:"updatedByName,omitempty"`

	OriginalMaxBudget *float64 `json:"originalBudget,omitempty"`
	UpdatedMaxBudget  *float64 `json:"updatedBudget,omitempty"`
	OriginalAuto      *bool    `json:"originalAutoApprove,omitempty"`
	UpdatedAuto       *bool    `json:"updatedAutoApprove,omitempty"`
	OriginalThreshold *float64 `json:"originalThreshold,omitempty"`
	UpdatedThreshold  *float64 `json:"updatedThreshold,omitempty"`

	FlightID     *uuid.UUID `json:"flightId,omitempty"`
	FlightNumber string     `json:"flightNumber,omitempty"`
	FlightPrice  *float64   `json:"flightPrice,omitempty"`
	FlightOrder  string     `json:"flightOrderId,omitempty"`

	CreatedAt time.Time `json:"created"`
	UpdatedAt time.Time `json:"lastEdited"`
}
