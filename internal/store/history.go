package store

import (
	"context"

	"github.com/google/uuid"

	"agenda/backend/internal/domain"
)

// HistoryRepository is insert-only.
type HistoryRepository interface {
	AppendHistory(ctx context.Context, e domain.HistoryEntry) (domain.HistoryEntry, error)
	HistoryForBooking(ctx context.Context, bookingID uuid.UUID, order Order) ([]domain.HistoryEntry, error)
}
