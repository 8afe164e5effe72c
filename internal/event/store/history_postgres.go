package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/event/models"
	domainerrors "github.com/gsm1298/event-travel-planner-backend-sub000/pkg/domain-errors"
)

type PostgresHistoryStore struct {
	db *sql.DB
}

func NewPostgresHistoryStore(db *sql.DB) *PostgresHistoryStore {
	return &PostgresHistoryStore{db: db}
}

// Append inserts one history row. There is no update or delete path;
// the trail is append-only by construction.
func (s *PostgresHistoryStore) Append(ctx context.Context, rec models.HistoryRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO event_history (id, event_id, updated_by,
			original_max_budget, updated_max_budget,
			original_auto_approve, updated_auto_approve,
			original_threshold, updated_threshold,
			flight_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		rec.ID, rec.EventID, rec.ActorID,
		rec.OriginalMaxBudget, rec.UpdatedMaxBudget,
		rec.OriginalAuto, rec.UpdatedAuto,
		rec.OriginalThreshold, rec.UpdatedThreshold,
		rec.FlightID)
	if err != nil {
		return domainerrors.Wrap(err, domainerrors.CodeInternal, "appending history record")
	}
	return nil
}

// ListByEvent returns the trail oldest first, with actor names and
// flight details joined in for display and export.
func (s *PostgresHistoryStore) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.HistoryRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT h.id, h.event_id, h.updated_by,
			COALESCE(NULLIF(TRIM(u.first_name || ' ' || u.last_name), ''), u.email),
			h.original_max_budget, h.updated_max_budget,
			h.original_auto_approve, h.updated_auto_approve,
			h.original_threshold, h.updated_threshold,
			h.flight_id, COALESCE(f.flight_number, ''), f.price, COALESCE(f.order_id, ''),
			h.created_at, h.updated_at
		FROM event_history h
		JOIN users u ON u.id = h.updated_by
		LEFT JOIN flights f ON f.id = h.flight_id
		WHERE h.event_id = $1
		ORDER BY h.created_at, h.id`, eventID)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "listing history")
	}
	defer rows.Close()

	var records []models.HistoryRecord
	for rows.Next() {
		var (
			rec      models.HistoryRecord
			flightID sql.Null[uuid.UUID]
			price    sql.NullFloat64
		)
		err := rows.Scan(&rec.ID, &rec.EventID, &rec.ActorID, &rec.ActorName,
			&rec.OriginalMaxBudget, &rec.UpdatedMaxBudget,
			&rec.OriginalAuto, &rec.UpdatedAuto,
			&rec.OriginalThreshold, &rec.UpdatedThreshold,
			&flightID, &rec.FlightNumber, &price, &rec.FlightOrder,
			&rec.CreatedAt, &rec.UpdatedAt)
		if err != nil {
			return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "scanning history record")
		}
		if flightID.Valid {
			rec.FlightID = &flightID.V
		}
		if price.Valid {
			rec.FlightPrice = &price.Float64
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "listing history")
	}
	return records, nil
}
