// Package audit appends booking history entries. Entries are never updated
// or deleted.
package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"agenda/backend/internal/domain"
	"agenda/backend/internal/store"
)

type Recorder struct {
	repo store.HistoryRepository
	now  func() time.Time
}

func NewRecorder(repo store.HistoryRepository) *Recorder {
	return &Recorder{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// WithClock returns a copy of r stamping entries with now.
func (r *Recorder) WithClock(now func() time.Time) *Recorder {
	out := *r
	out.now = now
	return &out
}

// Bind returns a copy of r writing to repo, typically a transaction.
func (r *Recorder) Bind(repo store.HistoryRepository) *Recorder {
	out := *r
	out.repo = repo
	return &out
}

func (r *Recorder) Record(ctx context.Context, bookingID uuid.UUID, eventType domain.HistoryEventType, payload map[string]any, actor domain.Actor) (domain.HistoryEntry, error) {
	if bookingID == uuid.Nil {
		return domain.HistoryEntry{}, domain.NewValidationError("history entry needs a booking id")
	}
	if !eventType.Valid() {
		return domain.HistoryEntry{}, domain.NewValidationError("unknown history event type " + string(eventType))
	}
	if !actor.Valid() {
		return domain.HistoryEntry{}, domain.NewValidationError("unknown history actor " + string(actor))
	}
	if payload == nil {
		payload = map[string]any{}
	}

	return r.repo.AppendHistory(ctx, domain.HistoryEntry{
		BookingID: bookingID,
		EventType: eventType,
		Actor:     actor,
		Payload:   payload,
		CreatedAt: r.now(),
	})
}

func (r *Recorder) HistoryFor(ctx context.Context, bookingID uuid.UUID, order store.Order) ([]domain.HistoryEntry, error) {
	if bookingID == uuid.Nil {
		return nil, domain.NewValidationError("booking id is required")
	}
	entries, err := r.repo.HistoryForBooking(ctx, bookingID, order)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return entries, err
}

func (r *Recorder) RecordCreated(ctx context.Context, b domain.Booking, actor domain.Actor) error {
	_, err := r.Record(ctx, b.ID, domain.EventCreated, map[string]any{
		"booking_number": b.Number,
		"service_name":   b.ServiceName,
		"start_at":       b.StartAt.Format(time.RFC3339),
	}, actor)
	return err
}

func (r *Recorder) RecordStatusChanged(ctx context.Context, bookingID uuid.UUID, from, to domain.BookingStatus, actor domain.Actor) error {
	_, err := r.Record(ctx, bookingID, domain.EventStatusChanged, map[string]any{
		"old_status": string(from),
		"new_status": string(to),
	}, actor)
	return err
}

func (r *Recorder) RecordRescheduled(ctx context.Context, bookingID uuid.UUID, oldStart, newStart time.Time, actor domain.Actor) error {
	_, err := r.Record(ctx, bookingID, domain.EventRescheduled, map[string]any{
		"old_start_at": oldStart.Format(time.RFC3339),
		"new_start_at": newStart.Format(time.RFC3339),
	}, actor)
	return err
}

func (r *Recorder) RecordCustomerUpdated(ctx context.Context, bookingID uuid.UUID, changes map[string]any, actor domain.Actor) error {
	_, err := r.Record(ctx, bookingID, domain.EventCustomerUpdated, changes, actor)
	return err
}

// RecordPaymentUpdated notes a payment status change and, when it moved,
// the booking status change it caused.
func (r *Recorder) RecordPaymentUpdated(ctx context.Context, before, after domain.Booking, actor domain.Actor) error {
	payload := map[string]any{
		"old_payment_status": string(before.PaymentStatus),
		"new_payment_status": string(after.PaymentStatus),
		"payment_id":         after.PaymentID,
	}
	if before.Status != after.Status {
		payload["old_status"] = string(before.Status)
		payload["new_status"] = string(after.Status)
	}
	_, err := r.Record(ctx, after.ID, domain.EventPaymentUpdated, payload, actor)
	return err
}
