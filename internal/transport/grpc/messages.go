package grpc

import (
	"google.golang.org/protobuf/types/known/timestamppb"
)

type Customer struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Comments string `json:"comments,omitempty"`
}

type Booking struct {
	ID                  string                 `json:"id"`
	Number              string                 `json:"booking_number"`
	ServiceID           string                 `json:"service_id"`
	ServiceName         string                 `json:"service_name"`
	Customer            *Customer              `json:"customer"`
	StartAt             *timestamppb.Timestamp `json:"start_at"`
	EndAt               *timestamppb.Timestamp `json:"end_at"`
	DurationMinutes     int32                  `json:"duration_minutes"`
	Status              string                 `json:"status"`
	PaymentStatus       string                 `json:"payment_status"`
	PaymentPreferenceID string                 `json:"payment_preference_id,omitempty"`
	PaymentID           string                 `json:"payment_id,omitempty"`
	AmountCents         int64                  `json:"amount_cents"`
	CreatedAt           *timestamppb.Timestamp `json:"created_at"`
	UpdatedAt           *timestamppb.Timestamp `json:"updated_at"`
	ConfirmedAt         *timestamppb.Timestamp `json:"confirmed_at,omitempty"`
	CancelledAt         *timestamppb.Timestamp `json:"cancelled_at,omitempty"`
}

type Block struct {
	ID          string                 `json:"id"`
	Number      string                 `json:"block_number"`
	Reason      string                 `json:"reason"`
	StartAt     *timestamppb.Timestamp `json:"start_at"`
	EndAt       *timestamppb.Timestamp `json:"end_at"`
	Status      string                 `json:"status"`
	CreatedAt   *timestamppb.Timestamp `json:"created_at"`
	UpdatedAt   *timestamppb.Timestamp `json:"updated_at"`
	CancelledAt *timestamppb.Timestamp `json:"cancelled_at,omitempty"`
}

type HistoryEntry struct {
	ID        string                 `json:"id"`
	BookingID string                 `json:"booking_id"`
	EventType string                 `json:"event_type"`
	Actor     string                 `json:"actor"`
	Payload   map[string]any         `json:"payload,omitempty"`
	CreatedAt *timestamppb.Timestamp `json:"created_at"`
}

type CalendarEvent struct {
	Kind          string                 `json:"kind"`
	ID            string                 `json:"id"`
	Number        string                 `json:"number"`
	Title         string                 `json:"title"`
	StartAt       *timestamppb.Timestamp `json:"start_at"`
	EndAt         *timestamppb.Timestamp `json:"end_at"`
	Status        string                 `json:"status"`
	ServiceName   string                 `json:"service_name,omitempty"`
	CustomerName  string                 `json:"customer_name,omitempty"`
	PaymentStatus string                 `json:"payment_status,omitempty"`
	Reason        string                 `json:"reason,omitempty"`
}

// CreateBookingRequest takes either StartAt or Date plus Time, the latter
// read in the business time zone.
type CreateBookingRequest struct {
	ServiceID       string                 `json:"service_id"`
	ServiceName     string                 `json:"service_name"`
	Customer        *Customer              `json:"customer"`
	StartAt         *timestamppb.Timestamp `json:"start_at,omitempty"`
	Date            string                 `json:"date,omitempty"`
	Time            string                 `json:"time,omitempty"`
	DurationMinutes int32                  `json:"duration_minutes"`
	AmountCents     int64                  `json:"amount_cents"`
}

type BookingResponse struct {
	Booking *Booking `json:"booking"`
}

type GetBookingRequest struct {
	BookingID string `json:"booking_id"`
}

type GetBookingByNumberRequest struct {
	Number string `json:"booking_number"`
}

type ListBookingsRequest struct {
	Status string `json:"status,omitempty"`
}

type ListBookingsResponse struct {
	Bookings []*Booking `json:"bookings"`
}

type RescheduleBookingRequest struct {
	BookingID string                 `json:"booking_id"`
	StartAt   *timestamppb.Timestamp `json:"start_at,omitempty"`
	Date      string                 `json:"date,omitempty"`
	Time      string                 `json:"time,omitempty"`
}

type CancelBookingRequest struct {
	BookingID string `json:"booking_id"`
}

type CompleteBookingRequest struct {
	BookingID string `json:"booking_id"`
}

type UpdateBookingCustomerRequest struct {
	BookingID string    `json:"booking_id"`
	Customer  *Customer `json:"customer"`
}

type ConfirmPaymentRequest struct {
	Reference string `json:"reference"`
	PaymentID string `json:"payment_id"`
}

type GetBookingHistoryRequest struct {
	BookingID  string `json:"booking_id"`
	Descending bool   `json:"descending,omitempty"`
}

type GetBookingHistoryResponse struct {
	Entries []*HistoryEntry `json:"entries"`
}

type CreateBlockRequest struct {
	StartAt *timestamppb.Timestamp `json:"start_at"`
	EndAt   *timestamppb.Timestamp `json:"end_at"`
	Reason  string                 `json:"reason"`
}

type BlockResponse struct {
	Block *Block `json:"block"`
}

type CancelBlockRequest struct {
	BlockID string `json:"block_id"`
}

type ListCalendarEventsRequest struct {
	From             *timestamppb.Timestamp `json:"from"`
	To               *timestamppb.Timestamp `json:"to"`
	IncludeCancelled bool                   `json:"include_cancelled,omitempty"`
}

type ListCalendarEventsResponse struct {
	Events []*CalendarEvent `json:"events"`
}

// ListAvailableSlotsRequest.Date is YYYY-MM-DD in the business time zone.
type ListAvailableSlotsRequest struct {
	Date            string `json:"date"`
	DurationMinutes int32  `json:"duration_minutes"`
}

type ListAvailableSlotsResponse struct {
	Date     string                   `json:"date"`
	TimeZone string                   `json:"time_zone"`
	Slots    []*timestamppb.Timestamp `json:"slots"`
}
