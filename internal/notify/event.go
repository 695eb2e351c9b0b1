// Package notify delivers booking notifications to customers and
// downstream consumers.
package notify

import (
	"time"

	"agenda/backend/internal/domain"
)

// RoutingBookingConfirmed is the topic key of BookingConfirmedEvent.
const RoutingBookingConfirmed = "booking.confirmed"

// BookingConfirmedEvent is the payload published once a booking's payment
// is confirmed.
type BookingConfirmedEvent struct {
	BookingID       string     `json:"booking_id"`
	BookingNumber   string     `json:"booking_number"`
	ServiceID       string     `json:"service_id"`
	ServiceName     string     `json:"service_name"`
	CustomerName    string     `json:"customer_name"`
	CustomerEmail   string     `json:"customer_email"`
	CustomerPhone   string     `json:"customer_phone"`
	StartAt         time.Time  `json:"start_at"`
	DurationMinutes int        `json:"duration_minutes"`
	AmountCents     int64      `json:"amount_cents"`
	PaymentID       string     `json:"payment_id"`
	ConfirmedAt     *time.Time `json:"confirmed_at,omitempty"`
}

func NewBookingConfirmedEvent(b domain.Booking) BookingConfirmedEvent {
	return BookingConfirmedEvent{
		BookingID:       b.ID.String(),
		BookingNumber:   b.Number,
		ServiceID:       b.ServiceID,
		ServiceName:     b.ServiceName,
		CustomerName:    b.Customer.Name,
		CustomerEmail:   b.Customer.Email,
		CustomerPhone:   b.Customer.Phone,
		StartAt:         b.StartAt,
		DurationMinutes: b.DurationMinutes,
		AmountCents:     b.AmountCents,
		PaymentID:       b.PaymentID,
		ConfirmedAt:     b.ConfirmedAt,
	}
}
