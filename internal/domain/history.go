package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type HistoryEventType string

const (
	EventCreated         HistoryEventType = "CREATED"
	EventStatusChanged   HistoryEventType = "STATUS_CHANGED"
	EventRescheduled     HistoryEventType = "RESCHEDULED"
	EventCustomerUpdated HistoryEventType = "CUSTOMER_UPDATED"
	EventPaymentUpdated  HistoryEventType = "PAYMENT_UPDATED"
)

func (t HistoryEventType) Valid() bool {
	switch t {
	case EventCreated, EventStatusChanged, EventRescheduled, EventCustomerUpdated, EventPaymentUpdated:
		return true
	}
	return false
}

type Actor string

const (
	ActorAdmin    Actor = "ADMIN"
	ActorSystem   Actor = "SYSTEM"
	ActorCustomer Actor = "CUSTOMER"
)

func (a Actor) Valid() bool {
	return a == ActorAdmin || a == ActorSystem || a == ActorCustomer
}

// ParseActor accepts actor names in any case.
func ParseActor(s string) (Actor, bool) {
	a := Actor(strings.ToUpper(strings.TrimSpace(s)))
	return a, a.Valid()
}

// HistoryEntry is one immutable audit record of a booking change.
type HistoryEntry struct {
	bun.BaseModel `bun:"table:booking_history"`

	ID        uuid.UUID        `bun:"id,pk,type:uuid"`
	BookingID uuid.UUID        `bun:"booking_id,notnull,type:uuid"`
	EventType HistoryEventType `bun:"event_type,notnull"`
	Actor     Actor            `bun:"actor,notnull"`
	Payload   map[string]any   `bun:"payload,type:jsonb"`
	CreatedAt time.Time        `bun:"created_at,notnull"`
}

func (h *HistoryEntry) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); !ok {
		return nil
	}
	if h.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		h.ID = id
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = time.Now().UTC()
	}
	return nil
}
