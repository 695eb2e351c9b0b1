// Package scheduling holds the booking and block command handlers and the
// calendar read queries.
package scheduling

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"agenda/backend/internal/domain"
	"agenda/backend/internal/service/audit"
	"agenda/backend/internal/store"
)

// Notifier delivers booking notifications. Failures never undo a committed
// change.
type Notifier interface {
	BookingConfirmed(ctx context.Context, b domain.Booking) error
}

// PaymentPreferences creates a checkout preference for a new booking and
// returns its id.
type PaymentPreferences interface {
	CreatePreference(ctx context.Context, b domain.Booking) (string, error)
}

const numberAttempts = 3

type Service struct {
	cal      store.Calendar
	recorder *audit.Recorder
	notifier Notifier
	payments PaymentPreferences
	loc      *time.Location
	now      func() time.Time
	number   domain.NumberGenerator
	log      *slog.Logger
	tracer   trace.Tracer
}

type Option func(*Service)

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func WithPaymentPreferences(p PaymentPreferences) Option {
	return func(s *Service) { s.payments = p }
}

// WithLocation sets the business time zone used for slot alignment.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithNumberGenerator(gen domain.NumberGenerator) Option {
	return func(s *Service) { s.number = gen }
}

func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

func NewService(cal store.Calendar, opts ...Option) *Service {
	s := &Service{
		cal:    cal,
		loc:    time.UTC,
		now:    func() time.Time { return time.Now().UTC() },
		number: domain.RandomNumber,
		log:    slog.Default(),
		tracer: otel.Tracer("agenda/backend/internal/service/scheduling"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(slog.String("component", "scheduling"))
	s.recorder = audit.NewRecorder(cal).WithClock(s.now)
	return s
}

func (s *Service) Location() *time.Location {
	return s.loc
}

func (s *Service) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "scheduling."+name)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// inTx runs fn in a calendar transaction with a recorder bound to it.
func (s *Service) inTx(ctx context.Context, fn func(ctx context.Context, tx store.CalendarTx, rec *audit.Recorder) error) error {
	return s.cal.InCalendarTransaction(ctx, func(ctx context.Context, tx store.CalendarTx) error {
		return fn(ctx, tx, s.recorder.Bind(tx))
	})
}
