package scheduling

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"agenda/backend/internal/domain"
	"agenda/backend/internal/store"
)

func (s *Service) GetBooking(ctx context.Context, id uuid.UUID) (domain.Booking, error) {
	b, err := s.cal.BookingByID(ctx, id)
	if err != nil {
		return domain.Booking{}, lookupError(err, bookingNotFound, id)
	}
	return b, nil
}

func (s *Service) GetBookingByNumber(ctx context.Context, number string) (domain.Booking, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return domain.Booking{}, domain.NewValidationError("booking number is required")
	}
	b, err := s.cal.BookingByNumber(ctx, number)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Booking{}, bookingNotFound(number)
	}
	return b, err
}

func (s *Service) GetBlock(ctx context.Context, id uuid.UUID) (domain.Block, error) {
	b, err := s.cal.BlockByID(ctx, id)
	if err != nil {
		return domain.Block{}, lookupError(err, blockNotFound, id)
	}
	return b, nil
}

// ListBookings returns every booking, or only those in status when it is
// set.
func (s *Service) ListBookings(ctx context.Context, status domain.BookingStatus) ([]domain.Booking, error) {
	if status == "" {
		return s.cal.ListBookings(ctx)
	}
	if _, ok := domain.ParseBookingStatus(string(status)); !ok {
		return nil, domain.NewValidationError("unknown booking status " + string(status))
	}
	return s.cal.ListBookingsByStatus(ctx, status)
}

// CalendarEvents merges bookings and blocks overlapping [from, to) sorted
// by start.
func (s *Service) CalendarEvents(ctx context.Context, from, to time.Time, includeCancelled bool) (_ []domain.CalendarEvent, err error) {
	ctx, span := s.startSpan(ctx, "CalendarEvents")
	defer func() { endSpan(span, err) }()

	if from.IsZero() || to.IsZero() {
		return nil, domain.NewValidationError("from and to are required")
	}
	if !to.After(from) {
		return nil, domain.NewValidationError("to must be after from")
	}

	bookings, err := s.cal.BookingsInRange(ctx, from, to, includeCancelled)
	if err != nil {
		return nil, err
	}
	blocks, err := s.cal.BlocksInRange(ctx, from, to, includeCancelled)
	if err != nil {
		return nil, err
	}
	return domain.MergeCalendar(bookings, blocks), nil
}

// BookingHistory returns the booking's audit entries. Entries outlive the
// booking, so an unknown id yields an empty result.
func (s *Service) BookingHistory(ctx context.Context, id uuid.UUID, order store.Order) ([]domain.HistoryEntry, error) {
	return s.recorder.HistoryFor(ctx, id, order)
}
