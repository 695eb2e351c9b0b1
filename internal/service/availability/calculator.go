// Package availability answers "which start times are free on this day".
package availability

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"agenda/backend/internal/domain"
)

// Reader is the read side of the calendar used to find occupied time.
type Reader interface {
	BookingsInRange(ctx context.Context, from, to time.Time, includeCancelled bool) ([]domain.Booking, error)
	ActiveBlocksInRange(ctx context.Context, from, to time.Time) ([]domain.Block, error)
}

type Calculator struct {
	reader Reader
	hours  HoursSource
	loc    *time.Location
	log    *slog.Logger
	tracer trace.Tracer
}

func NewCalculator(reader Reader, hours HoursSource, loc *time.Location, log *slog.Logger) *Calculator {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = slog.Default()
	}
	return &Calculator{
		reader: reader,
		hours:  hours,
		loc:    loc,
		log:    log.With(slog.String("component", "availability")),
		tracer: otel.Tracer("agenda/backend/internal/service/availability"),
	}
}

func (c *Calculator) Location() *time.Location {
	return c.loc
}

// HoursFor resolves the business hours of date's weekday. Missing or broken
// configuration yields the fallback window and is logged, never returned.
func (c *Calculator) HoursFor(ctx context.Context, date time.Time) domain.OpeningHours {
	if c.hours == nil {
		return domain.FallbackHours()
	}
	schedule, err := c.hours.WeeklySchedule(ctx)
	if err != nil {
		c.log.Warn("business hours unavailable; using fallback",
			slog.Any("err", err),
			slog.String("open", domain.FallbackOpen),
			slog.String("close", domain.FallbackClose),
		)
		return domain.FallbackHours()
	}
	h, err := schedule.HoursFor(date.Weekday())
	if err != nil {
		c.log.Warn("business hours invalid for day; using fallback",
			slog.Any("err", err),
			slog.String("weekday", date.Weekday().String()),
		)
	}
	return h
}

// ComputeSlots returns the free start times on the calendar day of date,
// interpreted in the calculator's location.
func (c *Calculator) ComputeSlots(ctx context.Context, date time.Time, durationMinutes int) ([]time.Time, error) {
	ctx, span := c.tracer.Start(ctx, "availability.ComputeSlots")
	defer span.End()

	y, m, d := date.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, c.loc)
	span.SetAttributes(
		attribute.String("date", day.Format(time.DateOnly)),
		attribute.Int("duration_minutes", durationMinutes),
	)

	if normalized := domain.NormalizeDuration(durationMinutes); normalized != durationMinutes {
		c.log.Warn("service duration off the slot grid; rounding up",
			slog.Int("duration_minutes", durationMinutes),
			slog.Int("normalized_minutes", normalized),
		)
	}

	hours := c.HoursFor(ctx, day)
	if !hours.Enabled {
		return nil, nil
	}

	window := hours.Window(day, c.loc)
	bookings, err := c.reader.BookingsInRange(ctx, window.Start, window.End, false)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load bookings")
		return nil, err
	}
	blocks, err := c.reader.ActiveBlocksInRange(ctx, window.Start, window.End)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load blocks")
		return nil, err
	}

	slots := domain.ComputeSlots(day, durationMinutes, hours, c.loc, bookings, blocks)
	span.SetAttributes(attribute.Int("slots", len(slots)))
	return slots, nil
}
