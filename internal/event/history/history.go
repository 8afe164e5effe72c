// Package history turns governed-field diffs and flight approvals into
// append-only audit records, and exports the trail as CSV.
package history

import (
	"context"
	"crypto/rand"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/event/diff"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/event/models"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/event/store"
	domainerrors "github.com/gsm1298/event-travel-planner-backend-sub000/pkg/domain-errors"
)

// csvHeader is the export contract. Finance tooling downstream parses
// these column names; do not reorder.
var csvHeader = []string{
	"Updated By",
	"Original Budget", "Updated Budget",
	"Original Auto Approve", "Updated Auto Approve",
	"Original Threshold", "Updated Threshold",
	"Flight Number", "Flight Price", "Flight Order ID",
	"Created", "Last Edited",
}

type Recorder struct {
	history store.HistoryStore
	now     func() time.Time
}

func NewRecorder(history store.HistoryStore) *Recorder {
	return &Recorder{history: history, now: time.Now}
}

// RecordIfChanged appends a history record when the diff carries at
// least one governed change or a flight approval is being referenced.
// Otherwise it is a no-op: non-governed edits leave no trail.
func (r *Recorder) RecordIfChanged(ctx context.Context, eventID, actorID uuid.UUID, d diff.Diff, flightID *uuid.UUID) error {
	if !d.HasChanges() && flightID == nil {
		return nil
	}

	rec := models.HistoryRecord{
		ID:       ulid.MustNew(ulid.Timestamp(r.now()), rand.Reader).String(),
		EventID:  eventID,
		ActorID:  actorID,
		FlightID: flightID,
	}

	if c, ok := d.Change(models.FieldMaxBudget); ok {
		rec.OriginalMaxBudget = float64Ptr(c.Original)
		rec.UpdatedMaxBudget = float64Ptr(c.Updated)
	}
	if c, ok := d.Change(models.FieldAutoApprove); ok {
		rec.OriginalAuto = boolPtr(c.Original)
		rec.UpdatedAuto = boolPtr(c.Updated)
	}
	if c, ok := d.Change(models.FieldAutoApproveThreshold); ok {
		rec.OriginalThreshold = float64Ptr(c.Original)
		rec.UpdatedThreshold = float64Ptr(c.Updated)
	}

	return r.history.Append(ctx, rec)
}

// GetHistory returns an event's trail oldest first.
func (r *Recorder) GetHistory(ctx context.Context, eventID uuid.UUID) ([]models.HistoryRecord, error) {
	return r.history.ListByEvent(ctx, eventID)
}

// WriteCSV streams the event's trail as CSV, header row included even
// when the trail is empty.
func (r *Recorder) WriteCSV(ctx context.Context, w io.Writer, eventID uuid.UUID) error {
	records, err := r.history.ListByEvent(ctx, eventID)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "writing csv header")
	}
	for _, rec := range records {
		row := []string{
			rec.ActorName,
			formatFloat(rec.OriginalMaxBudget), formatFloat(rec.UpdatedMaxBudget),
			formatBool(rec.OriginalAuto), formatBool(rec.UpdatedAuto),
			formatFloat(rec.OriginalThreshold), formatFloat(rec.UpdatedThreshold),
			rec.FlightNumber, formatFloat(rec.FlightPrice), rec.FlightOrder,
			rec.CreatedAt.UTC().Format(time.RFC3339),
			rec.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return domainerrors.Wrap(err, domainerrors.CodeInternal, "writing csv row")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "flushing csv")
	}
	return nil
}

func float64Ptr(v any) *float64 {
	switch n := v.(type) {
	case float64:
		return &n
	case nil:
		return nil
	default:
		// Diff values for numeric fields are always float64 or nil.
		panic(fmt.Sprintf("history: unexpected numeric change type %T", v))
	}
}

func boolPtr(v any) *bool {
	b, ok := v.(bool)
	if !ok {
		return nil
	}
	return &b
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatBool(v *bool) string {
	if v == nil {
		return ""
	}
	return strconv.FormatBool(*v)
}
