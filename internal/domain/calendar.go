package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

type CalendarEventKind string

const (
	CalendarBooking CalendarEventKind = "BOOKING"
	CalendarBlock   CalendarEventKind = "BLOCK"
)

// CalendarEvent is a read-only projection of a booking or block for
// calendar views.
type CalendarEvent struct {
	Kind          CalendarEventKind
	ID            uuid.UUID
	Number        string
	Title         string
	Start         time.Time
	End           time.Time
	Status        string
	ServiceName   string
	CustomerName  string
	PaymentStatus PaymentStatus
	Reason        string
}

func MergeCalendar(bookings []Booking, blocks []Block) []CalendarEvent {
	out := make([]CalendarEvent, 0, len(bookings)+len(blocks))
	for _, b := range bookings {
		out = append(out, CalendarEvent{
			Kind:          CalendarBooking,
			ID:            b.ID,
			Number:        b.Number,
			Title:         b.ServiceName + " - " + b.Customer.Name,
			Start:         b.StartAt,
			End:           b.EndAt(),
			Status:        string(b.Status),
			ServiceName:   b.ServiceName,
			CustomerName:  b.Customer.Name,
			PaymentStatus: b.PaymentStatus,
		})
	}
	for _, b := range blocks {
		out = append(out, CalendarEvent{
			Kind:   CalendarBlock,
			ID:     b.ID,
			Number: b.Number,
			Title:  b.Reason,
			Start:  b.StartAt,
			End:    b.EndAt,
			Status: string(b.Status),
			Reason: b.Reason,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})
	return out
}
