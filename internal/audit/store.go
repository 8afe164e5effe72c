package audit

import (
	"context"
	"database/sql"

	dErrors "github.com/gsm1298/event-travel-planner-backend-sub000/pkg/domain-errors"
)

// Store is the append-only persistence contract for auth audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByEmail(ctx context.Context, email string) ([]Event, error)
}

// PostgresStore persists audit events in the auth_audit table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO auth_audit (occurred_at, user_id, email, action, outcome, device, remote_ip)
		VALUES ($1, NULLIF($2, '')::uuid, $3, $4, $5, $6, $7)`,
		event.Timestamp, event.UserID, event.Email, event.Action,
		event.Outcome, event.Device, event.RemoteIP)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "append audit event")
	}
	return nil
}

func (s *PostgresStore) ListByEmail(ctx context.Context, email string) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT occurred_at, coalesce(user_id::text, ''), email, action, outcome, device, remote_ip
		FROM auth_audit WHERE email = $1 ORDER BY occurred_at ASC`, email)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list audit events")
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.Timestamp, &e.UserID, &e.Email, &e.Action,
			&e.Outcome, &e.Device, &e.RemoteIP); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "scan audit event")
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
