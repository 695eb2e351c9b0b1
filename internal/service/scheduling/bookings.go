package scheduling

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"agenda/backend/internal/domain"
	"agenda/backend/internal/service/audit"
	"agenda/backend/internal/store"
)

// externalReferencePrefix is prepended to booking numbers when they are
// handed to the payment provider as an external reference.
const externalReferencePrefix = "BOOKING-"

type CreateBookingInput struct {
	ServiceID       string
	ServiceName     string
	Customer        domain.Customer
	StartAt         time.Time
	DurationMinutes int
	AmountCents     int64
	Actor           domain.Actor
	IdempotencyKey  string
}

func actorOr(a, fallback domain.Actor) domain.Actor {
	if a.Valid() {
		return a
	}
	return fallback
}

// CreateBooking books a PENDING appointment. The slot must lie on the
// 30 minute grid, in the future, and be free of active blocks and occupying
// bookings.
func (s *Service) CreateBooking(ctx context.Context, in CreateBookingInput) (out domain.Booking, err error) {
	ctx, span := s.startSpan(ctx, "CreateBooking")
	defer func() { endSpan(span, err) }()

	now := s.now()
	start := in.StartAt.In(s.loc)
	candidate, err := domain.NewBooking(domain.NewBookingParams{
		ServiceID:       in.ServiceID,
		ServiceName:     in.ServiceName,
		Customer:        in.Customer,
		StartAt:         start,
		DurationMinutes: in.DurationMinutes,
		AmountCents:     in.AmountCents,
		Now:             now,
	})
	if err != nil {
		return domain.Booking{}, err
	}
	if start.Before(now) {
		return domain.Booking{}, domain.NewValidationError("start_at must be in the future")
	}

	key := strings.TrimSpace(in.IdempotencyKey)
	if key != "" {
		if len(key) > 256 {
			return domain.Booking{}, domain.NewValidationError("idempotency_key too long")
		}
		candidate.ID = uuid.NewSHA1(uuid.NameSpaceOID, []byte("agenda:create_booking:"+key))
	}
	actor := actorOr(in.Actor, domain.ActorSystem)

	var replay bool
	err = withNumberRetry(domain.BookingNumberPrefix, func() error {
		return s.inTx(ctx, func(ctx context.Context, tx store.CalendarTx, rec *audit.Recorder) error {
			if candidate.ID != uuid.Nil {
				existing, err := tx.BookingByID(ctx, candidate.ID)
				switch {
				case err == nil:
					if !existing.SameRequest(candidate) {
						return domain.NewRuleViolation("idempotency key was already used for a different booking")
					}
					out, replay = existing, true
					return nil
				case !errors.Is(err, store.ErrNotFound):
					return err
				}
			}

			if err := s.ensureFree(ctx, tx, candidate.Interval(), uuid.Nil); err != nil {
				return err
			}

			number, err := s.freeNumber(domain.BookingNumberPrefix, func(n string) error {
				_, err := tx.BookingByNumber(ctx, n)
				return err
			})
			if err != nil {
				return err
			}
			candidate.Number = number

			created, err := tx.CreateBooking(ctx, candidate)
			if err != nil {
				return bookingWriteError(err)
			}
			out = created
			return rec.RecordCreated(ctx, created, actor)
		})
	})
	if err != nil {
		return domain.Booking{}, err
	}

	span.SetAttributes(attribute.String("booking_number", out.Number), attribute.Bool("replay", replay))
	if replay {
		s.log.Info("booking create replayed", slog.String("booking_id", out.ID.String()), slog.String("booking_number", out.Number))
		return out, nil
	}

	s.log.Info("booking created",
		slog.String("booking_id", out.ID.String()),
		slog.String("booking_number", out.Number),
		slog.Time("start_at", out.StartAt),
		slog.Int("duration_minutes", out.DurationMinutes),
		slog.String("actor", string(actor)),
	)
	return s.attachPaymentPreference(ctx, out), nil
}

// ensureFree fails when slot overlaps an active block or an occupying
// booking other than exclude.
func (s *Service) ensureFree(ctx context.Context, tx store.CalendarTx, slot domain.Interval, exclude uuid.UUID) error {
	blocked, err := tx.ActiveBlockExists(ctx, slot.Start, slot.End)
	if err != nil {
		return err
	}
	if blocked {
		return slotBlocked()
	}
	free, err := tx.IsSlotAvailable(ctx, slot, exclude)
	if err != nil {
		return err
	}
	if !free {
		return slotTaken()
	}
	return nil
}

func (s *Service) freeNumber(prefix string, lookup func(string) error) (string, error) {
	for i := 0; i < numberAttempts; i++ {
		n := s.number(prefix)
		err := lookup(n)
		if errors.Is(err, store.ErrNotFound) {
			return n, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", numberExhausted(prefix)
}

// withNumberRetry reruns fn, a whole calendar transaction, when its insert
// hit the unique index on the number. A failed statement aborts the
// transaction, so the retry cannot happen inside it.
func withNumberRetry(prefix string, fn func() error) error {
	for i := 0; i < numberAttempts; i++ {
		err := fn()
		if !errors.Is(err, store.ErrDuplicateNumber) {
			return err
		}
	}
	return numberExhausted(prefix)
}

// attachPaymentPreference is best effort; the booking already exists.
func (s *Service) attachPaymentPreference(ctx context.Context, b domain.Booking) domain.Booking {
	if s.payments == nil {
		return b
	}
	prefID, err := s.payments.CreatePreference(ctx, b)
	if err != nil {
		s.log.Warn("payment preference creation failed", slog.Any("err", err), slog.String("booking_number", b.Number))
		return b
	}

	out := b
	err = s.inTx(ctx, func(ctx context.Context, tx store.CalendarTx, _ *audit.Recorder) error {
		cur, err := tx.BookingByID(ctx, b.ID)
		if err != nil {
			return err
		}
		if err := cur.AttachPaymentPreference(prefID, s.now()); err != nil {
			return err
		}
		out, err = tx.UpdateBooking(ctx, cur)
		return err
	})
	if err != nil {
		s.log.Warn("payment preference attach failed", slog.Any("err", err), slog.String("booking_number", b.Number))
		return b
	}
	return out
}

type RescheduleBookingInput struct {
	BookingID uuid.UUID
	StartAt   time.Time
	Actor     domain.Actor
}

// RescheduleBooking moves a booking keeping its duration. Nothing changes
// when the new slot is not free.
func (s *Service) RescheduleBooking(ctx context.Context, in RescheduleBookingInput) (out domain.Booking, err error) {
	ctx, span := s.startSpan(ctx, "RescheduleBooking")
	defer func() { endSpan(span, err) }()

	if in.StartAt.IsZero() {
		return domain.Booking{}, domain.NewValidationError("start_at is required")
	}
	actor := actorOr(in.Actor, domain.ActorAdmin)

	var oldStart time.Time
	err = s.inTx(ctx, func(ctx context.Context, tx store.CalendarTx, rec *audit.Recorder) error {
		b, err := tx.BookingByID(ctx, in.BookingID)
		if err != nil {
			return lookupError(err, bookingNotFound, in.BookingID)
		}
		now := s.now()
		oldStart = b.StartAt
		if err := b.Reschedule(in.StartAt.In(s.loc), now); err != nil {
			return err
		}
		if b.StartAt.Before(now) {
			return domain.NewValidationError("start_at must be in the future")
		}
		if err := s.ensureFree(ctx, tx, b.Interval(), b.ID); err != nil {
			return err
		}

		out, err = tx.UpdateBooking(ctx, b)
		if err != nil {
			return bookingWriteError(err)
		}
		return rec.RecordRescheduled(ctx, b.ID, oldStart, b.StartAt, actor)
	})
	if err != nil {
		return domain.Booking{}, err
	}

	s.log.Info("booking rescheduled",
		slog.String("booking_number", out.Number),
		slog.Time("old_start_at", oldStart),
		slog.Time("new_start_at", out.StartAt),
		slog.String("actor", string(actor)),
	)
	return out, nil
}

func (s *Service) CancelBooking(ctx context.Context, id uuid.UUID, actor domain.Actor) (domain.Booking, error) {
	return s.changeStatus(ctx, "CancelBooking", id, actorOr(actor, domain.ActorAdmin), func(b *domain.Booking, now time.Time) error {
		return b.Cancel(now)
	})
}

func (s *Service) CompleteBooking(ctx context.Context, id uuid.UUID, actor domain.Actor) (domain.Booking, error) {
	return s.changeStatus(ctx, "CompleteBooking", id, actorOr(actor, domain.ActorAdmin), func(b *domain.Booking, now time.Time) error {
		return b.Complete(now)
	})
}

func (s *Service) changeStatus(ctx context.Context, op string, id uuid.UUID, actor domain.Actor, apply func(b *domain.Booking, now time.Time) error) (out domain.Booking, err error) {
	ctx, span := s.startSpan(ctx, op)
	defer func() { endSpan(span, err) }()

	var from domain.BookingStatus
	err = s.inTx(ctx, func(ctx context.Context, tx store.CalendarTx, rec *audit.Recorder) error {
		b, err := tx.BookingByID(ctx, id)
		if err != nil {
			return lookupError(err, bookingNotFound, id)
		}
		from = b.Status
		if err := apply(&b, s.now()); err != nil {
			return err
		}
		out, err = tx.UpdateBooking(ctx, b)
		if err != nil {
			return bookingWriteError(err)
		}
		return rec.RecordStatusChanged(ctx, b.ID, from, out.Status, actor)
	})
	if err != nil {
		return domain.Booking{}, err
	}

	s.log.Info("booking status changed",
		slog.String("booking_number", out.Number),
		slog.String("old_status", string(from)),
		slog.String("new_status", string(out.Status)),
		slog.String("actor", string(actor)),
	)
	return out, nil
}

// UpdateCustomer replaces the customer snapshot. Unchanged input records
// nothing.
func (s *Service) UpdateCustomer(ctx context.Context, id uuid.UUID, c domain.Customer, actor domain.Actor) (out domain.Booking, err error) {
	ctx, span := s.startSpan(ctx, "UpdateCustomer")
	defer func() { endSpan(span, err) }()

	actor = actorOr(actor, domain.ActorAdmin)
	err = s.inTx(ctx, func(ctx context.Context, tx store.CalendarTx, rec *audit.Recorder) error {
		b, err := tx.BookingByID(ctx, id)
		if err != nil {
			return lookupError(err, bookingNotFound, id)
		}
		changes, err := b.UpdateCustomer(c, s.now())
		if err != nil {
			return err
		}
		if len(changes) == 0 {
			out = b
			return nil
		}
		out, err = tx.UpdateBooking(ctx, b)
		if err != nil {
			return bookingWriteError(err)
		}
		return rec.RecordCustomerUpdated(ctx, b.ID, changes, actor)
	})
	if err != nil {
		return domain.Booking{}, err
	}
	return out, nil
}

type ConfirmPaymentInput struct {
	// Reference is a stored payment preference id, a payment id or a
	// booking number, optionally prefixed with "BOOKING-".
	Reference string
	PaymentID string
	Actor     domain.Actor
}

// ConfirmPayment marks the referenced booking paid and confirmed, then
// notifies best effort. Replaying the same payment is a no-op.
func (s *Service) ConfirmPayment(ctx context.Context, in ConfirmPaymentInput) (out domain.Booking, err error) {
	ctx, span := s.startSpan(ctx, "ConfirmPayment")
	defer func() { endSpan(span, err) }()

	ref := strings.TrimSpace(in.Reference)
	if ref == "" {
		return domain.Booking{}, domain.NewValidationError("payment reference is required")
	}
	actor := actorOr(in.Actor, domain.ActorSystem)

	var applied bool
	err = s.inTx(ctx, func(ctx context.Context, tx store.CalendarTx, rec *audit.Recorder) error {
		b, err := bookingByReference(ctx, tx, ref)
		if err != nil {
			return err
		}
		before := b
		applied, err = b.ConfirmPayment(in.PaymentID, s.now())
		if err != nil {
			return err
		}
		if !applied {
			out = b
			return nil
		}
		out, err = tx.UpdateBooking(ctx, b)
		if err != nil {
			return bookingWriteError(err)
		}
		return rec.RecordPaymentUpdated(ctx, before, out, actor)
	})
	if err != nil {
		return domain.Booking{}, err
	}

	if !applied {
		s.log.Info("duplicate payment confirmation ignored",
			slog.String("booking_number", out.Number),
			slog.String("payment_id", out.PaymentID),
		)
		return out, nil
	}

	s.log.Info("booking payment confirmed",
		slog.String("booking_number", out.Number),
		slog.String("payment_id", out.PaymentID),
	)
	s.notifyConfirmed(ctx, out)
	return out, nil
}

func bookingByReference(ctx context.Context, tx store.CalendarTx, ref string) (domain.Booking, error) {
	b, err := tx.BookingByPaymentReference(ctx, ref)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.Booking{}, err
	}

	b, err = tx.BookingByNumber(ctx, strings.TrimPrefix(ref, externalReferencePrefix))
	if errors.Is(err, store.ErrNotFound) {
		return domain.Booking{}, bookingNotFound(ref)
	}
	return b, err
}

func (s *Service) notifyConfirmed(ctx context.Context, b domain.Booking) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.BookingConfirmed(ctx, b); err != nil {
		s.log.Warn("booking confirmation notification failed",
			slog.Any("err", err),
			slog.String("booking_number", b.Number),
		)
	}
}
