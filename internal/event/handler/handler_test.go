package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	authmodels "github.com/gsm1298/event-travel-planner-backend-sub000/internal/auth/models"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/event/history"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/event/service"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/event/store"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/flight"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/platform/middleware"
	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/user"
)

type discardSender struct{}

func (discardSender) Send(context.Context, string, string, string) error { return nil }

// fakeValidator maps cookie values straight to claims, standing in for
// the JWT issuer behind RequireAuth.
type fakeValidator struct {
	sessions map[string]*middleware.SessionClaims
}

func (v *fakeValidator) ValidateSessionToken(token string) (*middleware.SessionClaims, error) {
	claims, ok := v.sessions[token]
	if !ok {
		return nil, fmt.Errorf("unknown token")
	}
	return claims, nil
}

type EventHandlerSuite struct {
	suite.Suite
	router  chi.Router
	users   *user.InMemoryStore
	orgID   uuid.UUID
	planner uuid.UUID
	finance uuid.UUID
	visitor uuid.UUID
}

func TestEventHandlerSuite(t *testing.T) {
	suite.Run(t, new(EventHandlerSuite))
}

func (s *EventHandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s.orgID = uuid.New()
	s.planner = uuid.New()
	s.finance = uuid.New()
	s.visitor = uuid.New()

	s.users = user.NewInMemoryStore()
	s.users.Seed(
		user.User{ID: s.planner, Email: "p.okafor@example.com", FirstName: "Pat", LastName: "Okafor", Role: authmodels.RoleEventPlanner, OrgID: s.orgID},
		user.User{ID: s.finance, Email: "f.kovacs@example.com", FirstName: "Franka", LastName: "Kovacs", Role: authmodels.RoleFinanceManager, OrgID: s.orgID},
		user.User{ID: s.visitor, Email: "a.lind@example.com", FirstName: "Astrid", LastName: "Lind", Role: authmodels.RoleAttendee, OrgID: s.orgID},
	)

	flights := flight.NewInMemoryStore()
	events := store.NewInMemoryEventStore(flights)
	recorder := history.NewRecorder(store.NewInMemoryHistoryStore(s.users, flights))
	svc := service.New(events, flights, s.users, recorder, discardSender{}, service.WithLogger(logger))

	validator := &fakeValidator{sessions: map[string]*middleware.SessionClaims{
		"planner-token": {UserID: s.planner.String(), Email: "p.okafor@example.com", Role: authmodels.RoleEventPlanner, OrgID: s.orgID.String()},
		"finance-token": {UserID: s.finance.String(), Email: "f.kovacs@example.com", Role: authmodels.RoleFinanceManager, OrgID: s.orgID.String()},
		"visitor-token": {UserID: s.visitor.String(), Email: "a.lind@example.com", Role: authmodels.RoleAttendee, OrgID: s.orgID.String()},
	}}

	r := chi.NewRouter()
	r.Use(middleware.RequireAuth(validator, logger))
	New(svc, logger).Register(r)
	s.router = r
}

func (s *EventHandlerSuite) do(token, method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *EventHandlerSuite) createEvent() uuid.UUID {
	rec := s.do("planner-token", http.MethodPost, "/events", map[string]any{
		"name":                 "Berlin Offsite",
		"destination":          "Berlin",
		"startDate":            time.Now().Add(24 * time.Hour).Format(time.RFC3339),
		"endDate":              time.Now().Add(72 * time.Hour).Format(time.RFC3339),
		"maxBudget":            5000,
		"autoApprove":          true,
		"autoApproveThreshold": 500,
		"financeMan":           s.finance.String(),
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Event struct {
			ID uuid.UUID `json:"id"`
		} `json:"event"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Event.ID
}

func (s *EventHandlerSuite) TestUnauthenticatedRequestIsRejected() {
	rec := s.do("", http.MethodGet, "/events", nil)
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.JSONEq(`{"error":"unauthorized"}`, rec.Body.String())
}

func (s *EventHandlerSuite) TestAttendeeCannotCreateEvents() {
	rec := s.do("visitor-token", http.MethodPost, "/events", map[string]any{"name": "x"})
	s.Equal(http.StatusForbidden, rec.Code)
}

func (s *EventHandlerSuite) TestCreateAndFetchEvent() {
	id := s.createEvent()

	rec := s.do("planner-token", http.MethodGet, "/events/"+id.String(), nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"Berlin Offsite"`)
	s.Contains(rec.Body.String(), `"currentBudget":5000`)
}

func (s *EventHandlerSuite) TestInvalidEventIDIsBadRequest() {
	rec := s.do("planner-token", http.MethodGet, "/events/not-a-uuid", nil)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *EventHandlerSuite) TestMalformedUpdateBodyIsBadRequest() {
	id := s.createEvent()

	req := httptest.NewRequest(http.MethodPut, "/events/"+id.String(), strings.NewReader("{"))
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "finance-token"})
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *EventHandlerSuite) TestBudgetUpdateFlowsThroughToHistoryCSV() {
	id := s.createEvent()

	rec := s.do("finance-token", http.MethodPut, "/events/"+id.String(), map[string]any{"maxBudget": 6000})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Contains(rec.Body.String(), `"maxBudget":6000`)

	rec = s.do("finance-token", http.MethodGet, "/events/history/"+id.String(), nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal("text/csv", rec.Header().Get("Content-Type"))
	s.Contains(rec.Header().Get("Content-Disposition"), "attachment")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	s.Require().Len(lines, 2)
	s.True(strings.HasPrefix(lines[0], "Updated By,"))
	s.Contains(lines[1], "Franka Kovacs")
	s.Contains(lines[1], "5000,6000")
}

func (s *EventHandlerSuite) TestHistoryExportRequiresFinanceRole() {
	id := s.createEvent()

	rec := s.do("planner-token", http.MethodGet, "/events/history/"+id.String(), nil)
	s.Equal(http.StatusForbidden, rec.Code)
}

func (s *EventHandlerSuite) TestAttendeeSeesOnlyInvitedEvents() {
	id := s.createEvent()

	rec := s.do("visitor-token", http.MethodGet, "/events", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"events":[]}`, rec.Body.String())

	rec = s.do("planner-token", http.MethodPost, "/events/"+id.String()+"/attendees",
		map[string]string{"email": "a.lind@example.com"})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do("visitor-token", http.MethodGet, "/events", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), id.String())
}

func (s *EventHandlerSuite) TestFlightBookingAndManualApproval() {
	id := s.createEvent()

	rec := s.do("planner-token", http.MethodPost, "/events/"+id.String()+"/attendees",
		map[string]string{"email": "a.lind@example.com"})
	s.Require().Equal(http.StatusOK, rec.Code)

	rec = s.do("visitor-token", http.MethodPost, "/events/"+id.String()+"/flights", map[string]any{
		"flightNumber": "BA987",
		"price":        900,
		"orderId":      "ord_1201",
	})
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	s.Contains(rec.Body.String(), `"status":"pending"`)

	var resp struct {
		Flight struct {
			ID uuid.UUID `json:"id"`
		} `json:"flight"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))

	rec = s.do("visitor-token", http.MethodPost,
		"/events/"+id.String()+"/flights/"+resp.Flight.ID.String()+"/approve", nil)
	s.Equal(http.StatusForbidden, rec.Code)

	rec = s.do("finance-token", http.MethodPost,
		"/events/"+id.String()+"/flights/"+resp.Flight.ID.String()+"/approve", nil)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	s.Contains(rec.Body.String(), `"status":"approved"`)

	rec = s.do("finance-token", http.MethodGet, "/events/"+id.String(), nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), `"currentBudget":4100`)
}
