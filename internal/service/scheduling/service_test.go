package scheduling

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"agenda/backend/internal/domain"
	"agenda/backend/internal/store"
	"agenda/backend/internal/store/memory"
)

type fakeNotifier struct {
	confirmedFn func(ctx context.Context, b domain.Booking) error
	calls       int
}

func (f *fakeNotifier) BookingConfirmed(ctx context.Context, b domain.Booking) error {
	if f.confirmedFn == nil {
		panic("BookingConfirmed not configured")
	}
	f.calls++
	return f.confirmedFn(ctx, b)
}

type fakePayments struct {
	createFn func(ctx context.Context, b domain.Booking) (string, error)
}

func (f *fakePayments) CreatePreference(ctx context.Context, b domain.Booking) (string, error) {
	if f.createFn == nil {
		panic("CreatePreference not configured")
	}
	return f.createFn(ctx, b)
}

var today = time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

func at(h, m int) time.Time {
	return time.Date(2026, 1, 5, h, m, 0, 0, time.UTC)
}

func sequence() domain.NumberGenerator {
	n := 0
	return func(prefix string) string {
		n++
		return fmt.Sprintf("%s%04d", prefix, n)
	}
}

func newTestService(t *testing.T, opts ...Option) (*Service, *memory.Store) {
	t.Helper()
	st := memory.New()
	base := []Option{
		WithClock(func() time.Time { return today }),
		WithNumberGenerator(sequence()),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	return NewService(st, append(base, opts...)...), st
}

func bookingInput(start time.Time, minutes int) CreateBookingInput {
	return CreateBookingInput{
		ServiceID:   "svc-1",
		ServiceName: "Haircut",
		Customer: domain.Customer{
			Name:  "Ana",
			Email: "ana@example.com",
			Phone: "+5491100000000",
		},
		StartAt:         start,
		DurationMinutes: minutes,
		AmountCents:     150000,
		Actor:           domain.ActorCustomer,
	}
}

func mustCreate(t *testing.T, svc *Service, in CreateBookingInput) domain.Booking {
	t.Helper()
	b, err := svc.CreateBooking(context.Background(), in)
	if err != nil {
		t.Fatalf("CreateBooking error: %v", err)
	}
	return b
}

func eventTypes(entries []domain.HistoryEntry) []domain.HistoryEventType {
	out := make([]domain.HistoryEventType, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.EventType)
	}
	return out
}

func wantConflict(t *testing.T, err error, cause domain.ConflictCause) {
	t.Helper()
	var cErr *domain.ConflictError
	if !errors.As(err, &cErr) {
		t.Fatalf("error = %v (%T), want *domain.ConflictError", err, err)
	}
	if cErr.Cause != cause {
		t.Fatalf("conflict cause = %q, want %q", cErr.Cause, cause)
	}
}

func TestCreateBooking_StartsPendingWithHistory(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	b := mustCreate(t, svc, bookingInput(at(10, 0), 60))
	if b.Status != domain.BookingPending || b.PaymentStatus != domain.PaymentPending {
		t.Fatalf("status = %s/%s, want PENDING/PENDING", b.Status, b.PaymentStatus)
	}
	if b.Number != "BOOK-0001" {
		t.Fatalf("number = %q, want BOOK-0001", b.Number)
	}
	if b.ID == uuid.Nil {
		t.Fatalf("expected id to be assigned")
	}

	history, err := svc.BookingHistory(ctx, b.ID, store.OrderAscending)
	if err != nil {
		t.Fatalf("BookingHistory error: %v", err)
	}
	if len(history) != 1 || history[0].EventType != domain.EventCreated {
		t.Fatalf("history = %v, want [CREATED]", eventTypes(history))
	}
	if history[0].Actor != domain.ActorCustomer {
		t.Fatalf("actor = %q, want CUSTOMER", history[0].Actor)
	}
}

func TestCreateBooking_Validation(t *testing.T) {
	svc, _ := newTestService(t)

	tests := []struct {
		name string
		in   CreateBookingInput
	}{
		{name: "misaligned start", in: bookingInput(at(10, 15), 60)},
		{name: "start with seconds", in: bookingInput(at(10, 0).Add(time.Second), 60)},
		{name: "duration not a multiple of 30", in: bookingInput(at(10, 0), 45)},
		{name: "zero duration", in: bookingInput(at(10, 0), 0)},
		{name: "start in the past", in: bookingInput(today.Add(-24*time.Hour).Truncate(time.Hour), 30)},
		{
			name: "missing customer email",
			in: func() CreateBookingInput {
				in := bookingInput(at(10, 0), 60)
				in.Customer.Email = ""
				return in
			}(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateBooking(context.Background(), tt.in)
			var vErr *domain.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("error = %v (%T), want *domain.ValidationError", err, err)
			}
		})
	}
}

func TestCreateBooking_RejectsOverlapWithConfirmedBooking(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first := mustCreate(t, svc, bookingInput(at(10, 0), 60))
	if _, err := svc.ConfirmPayment(ctx, ConfirmPaymentInput{Reference: first.Number, PaymentID: "pay-1"}); err != nil {
		t.Fatalf("ConfirmPayment error: %v", err)
	}

	_, err := svc.CreateBooking(ctx, bookingInput(at(10, 30), 30))
	wantConflict(t, err, domain.ConflictBooking)

	// back to back is fine
	if _, err := svc.CreateBooking(ctx, bookingInput(at(11, 0), 30)); err != nil {
		t.Fatalf("CreateBooking adjacent error: %v", err)
	}
}

func TestCreateBooking_RejectsBlockedSlot(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateBlock(ctx, CreateBlockInput{StartAt: at(12, 0), EndAt: at(14, 0), Reason: "lunch"}); err != nil {
		t.Fatalf("CreateBlock error: %v", err)
	}

	_, err := svc.CreateBooking(ctx, bookingInput(at(13, 0), 60))
	wantConflict(t, err, domain.ConflictBlock)
}

func TestCreateBooking_CancelledBookingFreesSlot(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first := mustCreate(t, svc, bookingInput(at(10, 0), 60))
	if _, err := svc.CancelBooking(ctx, first.ID, domain.ActorAdmin); err != nil {
		t.Fatalf("CancelBooking error: %v", err)
	}
	mustCreate(t, svc, bookingInput(at(10, 0), 60))
}

func TestCreateBooking_IdempotencyKey(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	in := bookingInput(at(10, 0), 60)
	in.IdempotencyKey = "req-1"
	first := mustCreate(t, svc, in)

	t.Run("replay returns the existing booking", func(t *testing.T) {
		again := mustCreate(t, svc, in)
		if again.ID != first.ID || again.Number != first.Number {
			t.Fatalf("replay = %s/%s, want %s/%s", again.ID, again.Number, first.ID, first.Number)
		}
		all, err := svc.ListBookings(ctx, "")
		if err != nil {
			t.Fatalf("ListBookings error: %v", err)
		}
		if len(all) != 1 {
			t.Fatalf("len(bookings) = %d, want 1", len(all))
		}
		history, err := svc.BookingHistory(ctx, first.ID, store.OrderAscending)
		if err != nil {
			t.Fatalf("BookingHistory error: %v", err)
		}
		if len(history) != 1 {
			t.Fatalf("history = %v, want a single CREATED entry", eventTypes(history))
		}
	})

	t.Run("reused key with different content", func(t *testing.T) {
		other := in
		other.StartAt = at(15, 0)
		_, err := svc.CreateBooking(ctx, other)
		var rErr *domain.RuleViolationError
		if !errors.As(err, &rErr) {
			t.Fatalf("error = %v (%T), want *domain.RuleViolationError", err, err)
		}
	})
}

func TestCreateBooking_NumberAllocationGivesUp(t *testing.T) {
	svc, _ := newTestService(t, WithNumberGenerator(func(prefix string) string { return prefix + "SAME" }))
	ctx := context.Background()

	mustCreate(t, svc, bookingInput(at(10, 0), 30))
	_, err := svc.CreateBooking(ctx, bookingInput(at(12, 0), 30))
	if err == nil {
		t.Fatalf("expected error")
	}
	all, _ := svc.ListBookings(ctx, "")
	if len(all) != 1 {
		t.Fatalf("len(bookings) = %d, want 1", len(all))
	}
}

func TestCreateBooking_PaymentPreference(t *testing.T) {
	t.Run("attached when created", func(t *testing.T) {
		svc, _ := newTestService(t, WithPaymentPreferences(&fakePayments{
			createFn: func(ctx context.Context, b domain.Booking) (string, error) {
				return "pref-" + b.Number, nil
			},
		}))
		b := mustCreate(t, svc, bookingInput(at(10, 0), 60))
		if b.PaymentPreferenceID != "pref-BOOK-0001" {
			t.Fatalf("preference = %q, want pref-BOOK-0001", b.PaymentPreferenceID)
		}
		stored, err := svc.GetBooking(context.Background(), b.ID)
		if err != nil {
			t.Fatalf("GetBooking error: %v", err)
		}
		if stored.PaymentPreferenceID != b.PaymentPreferenceID {
			t.Fatalf("stored preference = %q, want %q", stored.PaymentPreferenceID, b.PaymentPreferenceID)
		}
	})

	t.Run("provider failure keeps the booking", func(t *testing.T) {
		svc, _ := newTestService(t, WithPaymentPreferences(&fakePayments{
			createFn: func(ctx context.Context, b domain.Booking) (string, error) {
				return "", errors.New("provider down")
			},
		}))
		b := mustCreate(t, svc, bookingInput(at(10, 0), 60))
		if b.PaymentPreferenceID != "" {
			t.Fatalf("preference = %q, want empty", b.PaymentPreferenceID)
		}
		if _, err := svc.GetBooking(context.Background(), b.ID); err != nil {
			t.Fatalf("GetBooking error: %v", err)
		}
	})
}

func TestRescheduleBooking(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	b := mustCreate(t, svc, bookingInput(at(10, 0), 60))
	other := mustCreate(t, svc, bookingInput(at(16, 0), 60))

	t.Run("to a free slot", func(t *testing.T) {
		moved, err := svc.RescheduleBooking(ctx, RescheduleBookingInput{BookingID: b.ID, StartAt: at(14, 0)})
		if err != nil {
			t.Fatalf("RescheduleBooking error: %v", err)
		}
		if !moved.StartAt.Equal(at(14, 0)) || moved.DurationMinutes != 60 {
			t.Fatalf("moved = %v/%d, want 14:00/60", moved.StartAt, moved.DurationMinutes)
		}
		history, err := svc.BookingHistory(ctx, b.ID, store.OrderAscending)
		if err != nil {
			t.Fatalf("BookingHistory error: %v", err)
		}
		if got := eventTypes(history); len(got) != 2 || got[1] != domain.EventRescheduled {
			t.Fatalf("history = %v, want [CREATED RESCHEDULED]", got)
		}
	})

	t.Run("overlapping itself is allowed", func(t *testing.T) {
		if _, err := svc.RescheduleBooking(ctx, RescheduleBookingInput{BookingID: b.ID, StartAt: at(14, 30)}); err != nil {
			t.Fatalf("RescheduleBooking error: %v", err)
		}
	})

	t.Run("misaligned", func(t *testing.T) {
		_, err := svc.RescheduleBooking(ctx, RescheduleBookingInput{BookingID: b.ID, StartAt: at(10, 15)})
		var vErr *domain.ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("error = %v (%T), want *domain.ValidationError", err, err)
		}
	})

	t.Run("into another booking", func(t *testing.T) {
		_, err := svc.RescheduleBooking(ctx, RescheduleBookingInput{BookingID: b.ID, StartAt: at(15, 30)})
		wantConflict(t, err, domain.ConflictBooking)

		unchanged, err := svc.GetBooking(ctx, b.ID)
		if err != nil {
			t.Fatalf("GetBooking error: %v", err)
		}
		if !unchanged.StartAt.Equal(at(14, 30)) {
			t.Fatalf("start = %v, want unchanged 14:30", unchanged.StartAt)
		}
	})

	t.Run("cancelled booking", func(t *testing.T) {
		if _, err := svc.CancelBooking(ctx, other.ID, domain.ActorAdmin); err != nil {
			t.Fatalf("CancelBooking error: %v", err)
		}
		_, err := svc.RescheduleBooking(ctx, RescheduleBookingInput{BookingID: other.ID, StartAt: at(9, 0)})
		var rErr *domain.RuleViolationError
		if !errors.As(err, &rErr) {
			t.Fatalf("error = %v (%T), want *domain.RuleViolationError", err, err)
		}
	})

	t.Run("unknown booking", func(t *testing.T) {
		_, err := svc.RescheduleBooking(ctx, RescheduleBookingInput{BookingID: uuid.New(), StartAt: at(9, 0)})
		var nfErr *domain.NotFoundError
		if !errors.As(err, &nfErr) {
			t.Fatalf("error = %v (%T), want *domain.NotFoundError", err, err)
		}
	})
}

func TestConfirmPayment(t *testing.T) {
	notifier := &fakeNotifier{confirmedFn: func(ctx context.Context, b domain.Booking) error { return nil }}
	svc, _ := newTestService(t, WithNotifier(notifier))
	ctx := context.Background()

	b := mustCreate(t, svc, bookingInput(at(10, 0), 60))

	confirmed, err := svc.ConfirmPayment(ctx, ConfirmPaymentInput{Reference: externalReferencePrefix + b.Number, PaymentID: "pay-1"})
	if err != nil {
		t.Fatalf("ConfirmPayment error: %v", err)
	}
	if confirmed.Status != domain.BookingConfirmed || confirmed.PaymentStatus != domain.PaymentPaid {
		t.Fatalf("status = %s/%s, want CONFIRMED/PAID", confirmed.Status, confirmed.PaymentStatus)
	}
	if confirmed.ConfirmedAt == nil {
		t.Fatalf("expected confirmed_at to be set")
	}
	if notifier.calls != 1 {
		t.Fatalf("notifier calls = %d, want 1", notifier.calls)
	}

	t.Run("same payment again is a no-op", func(t *testing.T) {
		again, err := svc.ConfirmPayment(ctx, ConfirmPaymentInput{Reference: "pay-1", PaymentID: "pay-1"})
		if err != nil {
			t.Fatalf("ConfirmPayment error: %v", err)
		}
		if again.Status != domain.BookingConfirmed {
			t.Fatalf("status = %s, want CONFIRMED", again.Status)
		}
		if notifier.calls != 1 {
			t.Fatalf("notifier calls = %d, want 1", notifier.calls)
		}
		history, _ := svc.BookingHistory(ctx, b.ID, store.OrderAscending)
		if got := eventTypes(history); len(got) != 2 || got[1] != domain.EventPaymentUpdated {
			t.Fatalf("history = %v, want [CREATED PAYMENT_UPDATED]", got)
		}
	})

	t.Run("different payment is rejected", func(t *testing.T) {
		_, err := svc.ConfirmPayment(ctx, ConfirmPaymentInput{Reference: b.Number, PaymentID: "pay-2"})
		var rErr *domain.RuleViolationError
		if !errors.As(err, &rErr) {
			t.Fatalf("error = %v (%T), want *domain.RuleViolationError", err, err)
		}
	})

	t.Run("unknown reference", func(t *testing.T) {
		_, err := svc.ConfirmPayment(ctx, ConfirmPaymentInput{Reference: "nope", PaymentID: "pay-3"})
		var nfErr *domain.NotFoundError
		if !errors.As(err, &nfErr) {
			t.Fatalf("error = %v (%T), want *domain.NotFoundError", err, err)
		}
	})
}

func TestConfirmPayment_NotificationFailureIsSwallowed(t *testing.T) {
	notifier := &fakeNotifier{confirmedFn: func(ctx context.Context, b domain.Booking) error {
		return errors.New("smtp unavailable")
	}}
	svc, _ := newTestService(t, WithNotifier(notifier))
	ctx := context.Background()

	b := mustCreate(t, svc, bookingInput(at(10, 0), 60))
	if _, err := svc.ConfirmPayment(ctx, ConfirmPaymentInput{Reference: b.Number, PaymentID: "pay-1"}); err != nil {
		t.Fatalf("ConfirmPayment error: %v", err)
	}
	stored, err := svc.GetBooking(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetBooking error: %v", err)
	}
	if stored.Status != domain.BookingConfirmed {
		t.Fatalf("status = %s, want CONFIRMED", stored.Status)
	}
}

func TestStatusChanges(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	b := mustCreate(t, svc, bookingInput(at(10, 0), 60))

	if _, err := svc.CompleteBooking(ctx, b.ID, domain.ActorAdmin); err == nil {
		t.Fatalf("expected PENDING -> COMPLETED to fail")
	}

	if _, err := svc.ConfirmPayment(ctx, ConfirmPaymentInput{Reference: b.Number, PaymentID: "pay-1"}); err != nil {
		t.Fatalf("ConfirmPayment error: %v", err)
	}
	done, err := svc.CompleteBooking(ctx, b.ID, domain.ActorAdmin)
	if err != nil {
		t.Fatalf("CompleteBooking error: %v", err)
	}
	if done.Status != domain.BookingCompleted {
		t.Fatalf("status = %s, want COMPLETED", done.Status)
	}

	_, err = svc.CancelBooking(ctx, b.ID, domain.ActorAdmin)
	var rErr *domain.RuleViolationError
	if !errors.As(err, &rErr) {
		t.Fatalf("error = %v (%T), want *domain.RuleViolationError", err, err)
	}

	history, err := svc.BookingHistory(ctx, b.ID, store.OrderDescending)
	if err != nil {
		t.Fatalf("BookingHistory error: %v", err)
	}
	if len(history) != 3 || history[0].EventType != domain.EventStatusChanged {
		t.Fatalf("history = %v, want STATUS_CHANGED first", eventTypes(history))
	}
	if history[0].Payload["new_status"] != string(domain.BookingCompleted) {
		t.Fatalf("payload = %v, want new_status COMPLETED", history[0].Payload)
	}
}

func TestUpdateCustomer(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	b := mustCreate(t, svc, bookingInput(at(10, 0), 60))

	same := b.Customer
	if _, err := svc.UpdateCustomer(ctx, b.ID, same, domain.ActorAdmin); err != nil {
		t.Fatalf("UpdateCustomer error: %v", err)
	}
	history, _ := svc.BookingHistory(ctx, b.ID, store.OrderAscending)
	if len(history) != 1 {
		t.Fatalf("history = %v, want no entry for an unchanged customer", eventTypes(history))
	}

	changed := same
	changed.Phone = "+5491199999999"
	updated, err := svc.UpdateCustomer(ctx, b.ID, changed, domain.ActorAdmin)
	if err != nil {
		t.Fatalf("UpdateCustomer error: %v", err)
	}
	if updated.Customer.Phone != changed.Phone {
		t.Fatalf("phone = %q, want %q", updated.Customer.Phone, changed.Phone)
	}
	history, _ = svc.BookingHistory(ctx, b.ID, store.OrderAscending)
	if len(history) != 2 || history[1].EventType != domain.EventCustomerUpdated {
		t.Fatalf("history = %v, want [CREATED CUSTOMER_UPDATED]", eventTypes(history))
	}
	if history[1].Payload["new_phone"] != changed.Phone {
		t.Fatalf("payload = %v, want new_phone", history[1].Payload)
	}
}

func TestBlocks(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	mustCreate(t, svc, bookingInput(at(10, 0), 60))

	t.Run("over a booking", func(t *testing.T) {
		_, err := svc.CreateBlock(ctx, CreateBlockInput{StartAt: at(9, 0), EndAt: at(12, 0), Reason: "dentist"})
		wantConflict(t, err, domain.ConflictBooking)
	})

	block, err := svc.CreateBlock(ctx, CreateBlockInput{StartAt: at(12, 0), EndAt: at(14, 0), Reason: "lunch"})
	if err != nil {
		t.Fatalf("CreateBlock error: %v", err)
	}
	if block.Number != "BLOCK-0002" || block.Status != domain.BlockActive {
		t.Fatalf("block = %s/%s, want BLOCK-0002/ACTIVE", block.Number, block.Status)
	}

	t.Run("over another block", func(t *testing.T) {
		_, err := svc.CreateBlock(ctx, CreateBlockInput{StartAt: at(13, 0), EndAt: at(15, 0), Reason: "errand"})
		wantConflict(t, err, domain.ConflictBlock)
	})

	t.Run("misaligned", func(t *testing.T) {
		_, err := svc.CreateBlock(ctx, CreateBlockInput{StartAt: at(15, 10), EndAt: at(16, 0), Reason: "x"})
		var vErr *domain.ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("error = %v (%T), want *domain.ValidationError", err, err)
		}
	})

	t.Run("cancel frees the range", func(t *testing.T) {
		cancelled, err := svc.CancelBlock(ctx, block.ID, domain.ActorAdmin)
		if err != nil {
			t.Fatalf("CancelBlock error: %v", err)
		}
		if cancelled.Status != domain.BlockCancelled || cancelled.CancelledAt == nil {
			t.Fatalf("block = %s/%v, want CANCELLED with cancelled_at", cancelled.Status, cancelled.CancelledAt)
		}
		mustCreate(t, svc, bookingInput(at(12, 0), 60))

		_, err = svc.CancelBlock(ctx, block.ID, domain.ActorAdmin)
		var rErr *domain.RuleViolationError
		if !errors.As(err, &rErr) {
			t.Fatalf("error = %v (%T), want *domain.RuleViolationError", err, err)
		}
	})
}

func TestCalendarEvents(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	mustCreate(t, svc, bookingInput(at(15, 0), 60))
	cancelled := mustCreate(t, svc, bookingInput(at(9, 0), 30))
	if _, err := svc.CancelBooking(ctx, cancelled.ID, domain.ActorAdmin); err != nil {
		t.Fatalf("CancelBooking error: %v", err)
	}
	if _, err := svc.CreateBlock(ctx, CreateBlockInput{StartAt: at(12, 0), EndAt: at(13, 0), Reason: "lunch"}); err != nil {
		t.Fatalf("CreateBlock error: %v", err)
	}

	events, err := svc.CalendarEvents(ctx, at(0, 0), at(23, 30), false)
	if err != nil {
		t.Fatalf("CalendarEvents error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(events))
	}
	if events[0].Kind != domain.CalendarBlock || events[1].Kind != domain.CalendarBooking {
		t.Fatalf("kinds = %s,%s, want BLOCK,BOOKING", events[0].Kind, events[1].Kind)
	}

	all, err := svc.CalendarEvents(ctx, at(0, 0), at(23, 30), true)
	if err != nil {
		t.Fatalf("CalendarEvents error: %v", err)
	}
	if len(all) != 3 || all[0].Status != string(domain.BookingCancelled) {
		t.Fatalf("events = %+v, want the cancelled booking first", all)
	}

	if _, err := svc.CalendarEvents(ctx, at(10, 0), at(10, 0), false); err == nil {
		t.Fatalf("expected error for an empty range")
	}
}

func TestQueries_NotFound(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	var nfErr *domain.NotFoundError
	if _, err := svc.GetBooking(ctx, uuid.New()); !errors.As(err, &nfErr) {
		t.Fatalf("GetBooking error = %v, want *domain.NotFoundError", err)
	}
	if _, err := svc.GetBookingByNumber(ctx, "BOOK-MISSING"); !errors.As(err, &nfErr) {
		t.Fatalf("GetBookingByNumber error = %v, want *domain.NotFoundError", err)
	}
	if _, err := svc.CancelBlock(ctx, uuid.New(), domain.ActorAdmin); !errors.As(err, &nfErr) {
		t.Fatalf("CancelBlock error = %v, want *domain.NotFoundError", err)
	}
	if _, err := svc.ListBookings(ctx, "ARCHIVED"); err == nil {
		t.Fatalf("expected error for unknown status")
	}
}
