package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"agenda/backend/internal/domain"
)

// Order selects the sort direction of history queries.
type Order int

const (
	OrderAscending Order = iota
	OrderDescending
)

// BookingRepository persists bookings. Range queries use half-open overlap
// semantics: an entry matches when start < to and end > from.
type BookingRepository interface {
	// CreateBooking returns ErrConflict when the booking would overlap an
	// occupying booking, ErrDuplicateNumber when the number is taken and
	// ErrIdempotencyConflict when the id already exists.
	CreateBooking(ctx context.Context, b domain.Booking) (domain.Booking, error)
	UpdateBooking(ctx context.Context, b domain.Booking) (domain.Booking, error)

	BookingByID(ctx context.Context, id uuid.UUID) (domain.Booking, error)
	BookingByNumber(ctx context.Context, number string) (domain.Booking, error)
	// BookingByPaymentReference matches the stored payment preference id or
	// payment id.
	BookingByPaymentReference(ctx context.Context, ref string) (domain.Booking, error)

	BookingsInRange(ctx context.Context, from, to time.Time, includeCancelled bool) ([]domain.Booking, error)
	ListBookings(ctx context.Context) ([]domain.Booking, error)
	ListBookingsByStatus(ctx context.Context, status domain.BookingStatus) ([]domain.Booking, error)

	// IsSlotAvailable reports whether no occupying booking other than
	// excludeID overlaps slot. Pass uuid.Nil to exclude nothing.
	IsSlotAvailable(ctx context.Context, slot domain.Interval, excludeID uuid.UUID) (bool, error)
}
