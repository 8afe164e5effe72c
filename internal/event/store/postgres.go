package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/event/models"
	domainerrors "github.com/gsm1298/event-travel-planner-backend-sub000/pkg/domain-errors"
)

const eventColumns = `id, name, destination, org_id, created_by, finance_manager_id,
	start_date, end_date, max_budget, current_budget, auto_approve, auto_approve_threshold,
	picture_link, description, created_at, updated_at`

// approvedSpend sums approved flight prices for an event. Used inline
// wherever current_budget is recomputed.
const approvedSpend = `COALESCE((SELECT SUM(price) FROM flights
	WHERE event_id = $1 AND status = 'approved'), 0)`

type PostgresEventStore struct {
	db *sql.DB
}

func NewPostgresEventStore(db *sql.DB) *PostgresEventStore {
	return &PostgresEventStore{db: db}
}

func (s *PostgresEventStore) Create(ctx context.Context, e models.Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (id, name, destination, org_id, created_by, finance_manager_id,
			start_date, end_date, max_budget, current_budget, auto_approve, auto_approve_threshold,
			picture_link, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9, $10, $11, $12, $13)`,
		e.ID, e.Name, e.Destination, e.OrgID, e.CreatorID, e.FinanceManagerID,
		e.StartDate, e.EndDate, e.MaxBudget, e.AutoApprove, e.AutoApproveThreshold,
		e.PictureLink, e.Description)
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "creating event")
	}
	return nil
}

func (s *PostgresEventStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
	return scanEvent(row)
}

func (s *PostgresEventStore) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]models.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE org_id = $1 ORDER BY start_date`, orgID)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "listing events")
	}
	return collectEvents(rows)
}

func (s *PostgresEventStore) ListByAttendee(ctx context.Context, userID uuid.UUID) ([]models.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+eventColumns+` FROM events
		WHERE id IN (SELECT event_id FROM event_attendees WHERE user_id = $1)
		ORDER BY start_date`, userID)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "listing events")
	}
	return collectEvents(rows)
}

// Update persists the merged event. current_budget is recomputed from
// the new max_budget in the same statement so the derived value can
// never drift from approved spend.
func (s *PostgresEventStore) Update(ctx context.Context, e models.Event) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE events SET
			name = $2, destination = $3, finance_manager_id = $4,
			start_date = $5, end_date = $6,
			max_budget = $7,
			current_budget = $7 - `+approvedSpend+`,
			auto_approve = $8, auto_approve_threshold = $9,
			picture_link = $10, description = $11,
			updated_at = NOW()
		WHERE id = $1`,
		e.ID, e.Name, e.Destination, e.FinanceManagerID,
		e.StartDate, e.EndDate, e.MaxBudget,
		e.AutoApprove, e.AutoApproveThreshold,
		e.PictureLink, e.Description)
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "updating event")
	}
	return requireRowAffected(res, "event not found")
}

func (s *PostgresEventStore) AddAttendee(ctx context.Context, eventID, userID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO event_attendees (event_id, user_id)
		VALUES ($1, $2) ON CONFLICT DO NOTHING`, eventID, userID)
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "adding attendee")
	}
	return nil
}

func (s *PostgresEventStore) ListAttendees(ctx context.Context, eventID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id FROM event_attendees WHERE event_id = $1 ORDER BY invited_at`, eventID)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "listing attendees")
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "listing attendees")
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "listing attendees")
	}
	return ids, nil
}

func (s *PostgresEventStore) IsAttendee(ctx context.Context, eventID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM event_attendees WHERE event_id = $1 AND user_id = $2)`,
		eventID, userID).Scan(&exists)
	if err != nil {
		return false, domainerrors.Wrap(err, domainerrors.CodeInternal, "checking attendee")
	}
	return exists, nil
}

// RecomputeCurrentBudget refreshes the derived balance after a flight
// status change and returns the new value.
func (s *PostgresEventStore) RecomputeCurrentBudget(ctx context.Context, eventID uuid.UUID) (float64, error) {
	var current float64
	err := s.db.QueryRowContext(ctx, `
		UPDATE events SET current_budget = max_budget - `+approvedSpend+`, updated_at = NOW()
		WHERE id = $1
		RETURNING current_budget`, eventID).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domainerrors.New(domainerrors.CodeNotFound, "event not found")
	}
	if err != nil {
		return 0, domainerrors.Wrap(err, domainerrors.CodeInternal, "recomputing budget")
	}
	return current, nil
}

func collectEvents(rows *sql.Rows) ([]models.Event, error) {
	defer rows.Close()
	var events []models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "listing events")
	}
	return events, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*models.Event, error) {
	var (
		e          models.Event
		financeMan sql.Null[uuid.UUID]
		threshold  sql.NullFloat64
	)
	err := row.Scan(&e.ID, &e.Name, &e.Destination, &e.OrgID, &e.CreatorID, &financeMan,
		&e.StartDate, &e.EndDate, &e.MaxBudget, &e.CurrentBudget, &e.AutoApprove, &threshold,
		&e.PictureLink, &e.Description, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domainerrors.New(domainerrors.CodeNotFound, "event not found")
	}
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "scanning event")
	}
	if financeMan.Valid {
		e.FinanceManagerID = &financeMan.V
	}
	if threshold.Valid {
		e.AutoApproveThreshold = &threshold.Float64
	}
	return &e, nil
}

func requireRowAffected(res sql.Result, notFoundMsg string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "checking rows affected")
	}
	if n == 0 {
		return domainerrors.New(domainerrors.CodeNotFound, notFoundMsg)
	}
	return nil
}
