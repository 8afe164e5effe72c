package service

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/event/models"
)

// History returns the event's budget trail, oldest first.
func (s *Service) History(ctx context.Context, eventID uuid.UUID, actor Actor) ([]models.HistoryRecord, error) {
	if _, err := s.loadScoped(ctx, eventID, actor); err != nil {
		return nil, err
	}
	return s.recorder.GetHistory(ctx, eventID)
}

// WriteHistoryCSV streams the trail as CSV after tenant scoping.
func (s *Service) WriteHistoryCSV(ctx context.Context, w io.Writer, eventID uuid.UUID, actor Actor) error {
	if _, err := s.loadScoped(ctx, eventID, actor); err != nil {
		return err
	}
	return s.recorder.WriteCSV(ctx, w, eventID)
}
