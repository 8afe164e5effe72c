package history

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/event/diff"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/event/models"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/event/store"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/flight"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/user"
)

type RecorderSuite struct {
	suite.Suite
	ctx      context.Context
	users    *user.InMemoryStore
	flights  *flight.InMemoryStore
	history  *store.InMemoryHistoryStore
	recorder *Recorder
	eventID  uuid.UUID
	actorID  uuid.UUID
}

func TestRecorderSuite(t *testing.T) {
	suite.Run(t, new(RecorderSuite))
}

func (s *RecorderSuite) SetupTest() {
	s.ctx = context.Background()
	s.users = user.NewInMemoryStore()
	s.flights = flight.NewInMemoryStore()
	s.history = store.NewInMemoryHistoryStore(s.users, s.flights)
	s.recorder = NewRecorder(s.history)
	s.eventID = uuid.New()
	s.actorID = uuid.New()

	s.users.Seed(user.User{
		ID: s.actorID, Email: "f.kovacs@example.com",
		FirstName: "Franka", LastName: "Kovacs", Role: "Finance Manager",
	})
}

func governedDiff(from, to float64) diff.Diff {
	return diff.Diff{Changes: []diff.Change{{
		Field: models.FieldMaxBudget, Original: from, Updated: to,
	}}}
}

func (s *RecorderSuite) TestEmptyDiffWithoutFlightIsNoOp() {
	s.Require().NoError(s.recorder.RecordIfChanged(s.ctx, s.eventID, s.actorID, diff.Diff{}, nil))

	records, err := s.recorder.GetHistory(s.ctx, s.eventID)
	s.Require().NoError(err)
	s.Empty(records)
}

func (s *RecorderSuite) TestGovernedChangeWritesOneRecord() {
	s.Require().NoError(s.recorder.RecordIfChanged(s.ctx, s.eventID, s.actorID, governedDiff(5000, 6000), nil))

	records, err := s.recorder.GetHistory(s.ctx, s.eventID)
	s.Require().NoError(err)
	s.Require().Len(records, 1)

	rec := records[0]
	s.NotEmpty(rec.ID)
	s.Equal("Franka Kovacs", rec.ActorName)
	s.Require().NotNil(rec.OriginalMaxBudget)
	s.Require().NotNil(rec.UpdatedMaxBudget)
	s.Equal(float64(5000), *rec.OriginalMaxBudget)
	s.Equal(float64(6000), *rec.UpdatedMaxBudget)
	s.Nil(rec.OriginalAuto)
	s.Nil(rec.OriginalThreshold)
}

func (s *RecorderSuite) TestFlightApprovalAloneWritesRecord() {
	flightID := uuid.New()
	s.Require().NoError(s.flights.Create(s.ctx, flight.Flight{
		ID: flightID, EventID: s.eventID,
		FlightNumber: "LH441", Price: 612.30, OrderID: "ord_8842",
	}))

	s.Require().NoError(s.recorder.RecordIfChanged(s.ctx, s.eventID, s.actorID, diff.Diff{}, &flightID))

	records, err := s.recorder.GetHistory(s.ctx, s.eventID)
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Equal("LH441", records[0].FlightNumber)
	s.Require().NotNil(records[0].FlightPrice)
	s.Equal(612.30, *records[0].FlightPrice)
	s.Equal("ord_8842", records[0].FlightOrder)
}

func (s *RecorderSuite) TestTrailIsAscendingByCreation() {
	base := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	tick := 0
	s.history.WithClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	})

	s.Require().NoError(s.recorder.RecordIfChanged(s.ctx, s.eventID, s.actorID, governedDiff(5000, 6000), nil))
	s.Require().NoError(s.recorder.RecordIfChanged(s.ctx, s.eventID, s.actorID, governedDiff(6000, 7000), nil))

	records, err := s.recorder.GetHistory(s.ctx, s.eventID)
	s.Require().NoError(err)
	s.Require().Len(records, 2)
	s.True(records[0].CreatedAt.Before(records[1].CreatedAt))
	s.Equal(float64(6000), *records[0].UpdatedMaxBudget)
	s.Equal(float64(7000), *records[1].UpdatedMaxBudget)
}

func (s *RecorderSuite) TestCSVHeaderAlwaysPresent() {
	var buf bytes.Buffer
	s.Require().NoError(s.recorder.WriteCSV(s.ctx, &buf, s.eventID))

	rows, err := csv.NewReader(&buf).ReadAll()
	s.Require().NoError(err)
	s.Require().Len(rows, 1)
	s.Equal([]string{
		"Updated By",
		"Original Budget", "Updated Budget",
		"Original Auto Approve", "Updated Auto Approve",
		"Original Threshold", "Updated Threshold",
		"Flight Number", "Flight Price", "Flight Order ID",
		"Created", "Last Edited",
	}, rows[0])
}

func (s *RecorderSuite) TestCSVRowsBlankUnchangedColumns() {
	s.Require().NoError(s.recorder.RecordIfChanged(s.ctx, s.eventID, s.actorID, governedDiff(5000, 6000), nil))

	var buf bytes.Buffer
	s.Require().NoError(s.recorder.WriteCSV(s.ctx, &buf, s.eventID))

	rows, err := csv.NewReader(&buf).ReadAll()
	s.Require().NoError(err)
	s.Require().Len(rows, 2)

	row := rows[1]
	s.Equal("Franka Kovacs", row[0])
	s.Equal("5000", row[1])
	s.Equal("6000", row[2])
	s.Equal("", row[3])
	s.Equal("", row[5])
	s.Equal("", row[7])
}
