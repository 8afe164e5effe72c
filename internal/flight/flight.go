// Package flight stores attendee flight bookings and their approval
// state. Approved flight prices feed the event's derived current
// budget.
package flight

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	domainerrors "github.com/gsm1298/event-travel-planner-backend-sub000/pkg/domain-errors"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusDenied   Status = "denied"
)

type Flight struct {
	ID           uuid.UUID `json:"id"`
	EventID      uuid.UUID `json:"eventId"`
	AttendeeID   uuid.UUID `json:"attendeeId"`
	FlightNumber string    `json:"flightNumber"`
	DepartureAt  time.Time `json:"departureTime"`
	Price        float64   `json:"price"`
	OrderID      string    `json:"orderId"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Store interface {
	Create(ctx context.Context, f Flight) error
	GetByID(ctx context.Context, id uuid.UUID) (*Flight, error)
	ListByEvent(ctx context.Context, eventID uuid.UUID) ([]Flight, error)
	SetStatus(ctx context.Context, id uuid.UUID, status Status) error
}

const flightColumns = `id, event_id, attendee_id, flight_number, departure_at, price, order_id, status, created_at`

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, f Flight) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO flights (id, event_id, attendee_id, flight_number, departure_at, price, order_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		f.ID, f.EventID, f.AttendeeID, f.FlightNumber, f.DepartureAt, f.Price, f.OrderID, f.Status)
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "creating flight")
	}
	return nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id uuid.UUID) (*Flight, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+flightColumns+` FROM flights WHERE id = $1`, id)
	return scanFlight(row)
}

func (s *PostgresStore) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]Flight, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+flightColumns+` FROM flights WHERE event_id = $1 ORDER BY created_at`, eventID)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "listing flights")
	}
	defer rows.Close()

	var flights []Flight
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		flights = append(flights, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "listing flights")
	}
	return flights, nil
}

func (s *PostgresStore) SetStatus(ctx context.Context, id uuid.UUID, status Status) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE flights SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "updating flight status")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "updating flight status")
	}
	if n == 0 {
		return domainerrors.New(domainerrors.CodeNotFound, "flight not found")
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFlight(row rowScanner) (*Flight, error) {
	var f Flight
	err := row.Scan(&f.ID, &f.EventID, &f.AttendeeID, &f.FlightNumber, &f.DepartureAt,
		&f.Price, &f.OrderID, &f.Status, &f.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domainerrors.New(domainerrors.CodeNotFound, "flight not found")
	}
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "scanning flight")
	}
	return &f, nil
}
