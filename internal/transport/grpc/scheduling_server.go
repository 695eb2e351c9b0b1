package grpc

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"

	"agenda/backend/internal/domain"
	"agenda/backend/internal/service/scheduling"
	"agenda/backend/internal/store"
)

type SchedulingServer struct {
	svc   schedulingService
	slots slotCalculator
	log   *slog.Logger
}

type schedulingService interface {
	CreateBooking(ctx context.Context, in scheduling.CreateBookingInput) (domain.Booking, error)
	GetBooking(ctx context.Context, id uuid.UUID) (domain.Booking, error)
	GetBookingByNumber(ctx context.Context, number string) (domain.Booking, error)
	ListBookings(ctx context.Context, status domain.BookingStatus) ([]domain.Booking, error)
	RescheduleBooking(ctx context.Context, in scheduling.RescheduleBookingInput) (domain.Booking, error)
	CancelBooking(ctx context.Context, id uuid.UUID, actor domain.Actor) (domain.Booking, error)
	CompleteBooking(ctx context.Context, id uuid.UUID, actor domain.Actor) (domain.Booking, error)
	UpdateCustomer(ctx context.Context, id uuid.UUID, c domain.Customer, actor domain.Actor) (domain.Booking, error)
	ConfirmPayment(ctx context.Context, in scheduling.ConfirmPaymentInput) (domain.Booking, error)
	BookingHistory(ctx context.Context, id uuid.UUID, order store.Order) ([]domain.HistoryEntry, error)
	CreateBlock(ctx context.Context, in scheduling.CreateBlockInput) (domain.Block, error)
	CancelBlock(ctx context.Context, id uuid.UUID, actor domain.Actor) (domain.Block, error)
	CalendarEvents(ctx context.Context, from, to time.Time, includeCancelled bool) ([]domain.CalendarEvent, error)
}

type slotCalculator interface {
	ComputeSlots(ctx context.Context, date time.Time, durationMinutes int) ([]time.Time, error)
	Location() *time.Location
}

func NewSchedulingServer(svc schedulingService, slots slotCalculator, log *slog.Logger) *SchedulingServer {
	if log == nil {
		log = slog.Default()
	}
	return &SchedulingServer{
		svc:   svc,
		slots: slots,
		log:   log.With(slog.String("component", "grpc.scheduling")),
	}
}

func (s *SchedulingServer) location() *time.Location {
	if s.slots == nil || s.slots.Location() == nil {
		return time.UTC
	}
	return s.slots.Location()
}

func (s *SchedulingServer) CreateBooking(ctx context.Context, req *CreateBookingRequest) (*BookingResponse, error) {
	log := s.log.With(slog.String("rpc", "CreateBooking"))

	if req.Customer == nil {
		log.Warn("invalid request", slog.String("reason", "missing_customer"))
		return nil, status.Error(codes.InvalidArgument, "customer is required")
	}
	start, err := resolveStart(req.StartAt, req.Date, req.Time, s.location())
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "bad_start"), slog.Any("err", err))
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	b, err := s.svc.CreateBooking(ctx, scheduling.CreateBookingInput{
		ServiceID:       req.ServiceID,
		ServiceName:     req.ServiceName,
		Customer:        fromWireCustomer(req.Customer),
		StartAt:         start,
		DurationMinutes: int(req.DurationMinutes),
		AmountCents:     req.AmountCents,
		Actor:           actorFrom(ctx, domain.ActorCustomer),
		IdempotencyKey:  idempotencyKey(ctx),
	})
	if err != nil {
		return nil, s.fail(log.With(slog.Time("start_at", start)), "booking create", err)
	}
	return &BookingResponse{Booking: toWireBooking(b)}, nil
}

func (s *SchedulingServer) GetBooking(ctx context.Context, req *GetBookingRequest) (*BookingResponse, error) {
	log := s.log.With(slog.String("rpc", "GetBooking"))

	id, err := parseID(log, "booking_id", req.BookingID)
	if err != nil {
		return nil, err
	}
	b, err := s.svc.GetBooking(ctx, id)
	if err != nil {
		return nil, s.fail(log, "booking get", err)
	}
	return &BookingResponse{Booking: toWireBooking(b)}, nil
}

func (s *SchedulingServer) GetBookingByNumber(ctx context.Context, req *GetBookingByNumberRequest) (*BookingResponse, error) {
	log := s.log.With(slog.String("rpc", "GetBookingByNumber"))

	b, err := s.svc.GetBookingByNumber(ctx, req.Number)
	if err != nil {
		return nil, s.fail(log.With(slog.String("booking_number", req.Number)), "booking get", err)
	}
	return &BookingResponse{Booking: toWireBooking(b)}, nil
}

func (s *SchedulingServer) ListBookings(ctx context.Context, req *ListBookingsRequest) (*ListBookingsResponse, error) {
	log := s.log.With(slog.String("rpc", "ListBookings"))

	rows, err := s.svc.ListBookings(ctx, domain.BookingStatus(strings.ToUpper(strings.TrimSpace(req.Status))))
	if err != nil {
		return nil, s.fail(log, "bookings list", err)
	}

	out := make([]*Booking, 0, len(rows))
	for _, b := range rows {
		out = append(out, toWireBooking(b))
	}
	log.Debug("bookings listed", slog.String("status", req.Status), slog.Int("count", len(out)))
	return &ListBookingsResponse{Bookings: out}, nil
}

func (s *SchedulingServer) RescheduleBooking(ctx context.Context, req *RescheduleBookingRequest) (*BookingResponse, error) {
	log := s.log.With(slog.String("rpc", "RescheduleBooking"))

	id, err := parseID(log, "booking_id", req.BookingID)
	if err != nil {
		return nil, err
	}
	start, err := resolveStart(req.StartAt, req.Date, req.Time, s.location())
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "bad_start"), slog.Any("err", err))
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	b, err := s.svc.RescheduleBooking(ctx, scheduling.RescheduleBookingInput{
		BookingID: id,
		StartAt:   start,
		Actor:     actorFrom(ctx, domain.ActorAdmin),
	})
	if err != nil {
		return nil, s.fail(log.With(slog.String("booking_id", id.String())), "booking reschedule", err)
	}
	return &BookingResponse{Booking: toWireBooking(b)}, nil
}

func (s *SchedulingServer) CancelBooking(ctx context.Context, req *CancelBookingRequest) (*BookingResponse, error) {
	log := s.log.With(slog.String("rpc", "CancelBooking"))

	id, err := parseID(log, "booking_id", req.BookingID)
	if err != nil {
		return nil, err
	}
	b, err := s.svc.CancelBooking(ctx, id, actorFrom(ctx, domain.ActorAdmin))
	if err != nil {
		return nil, s.fail(log.With(slog.String("booking_id", id.String())), "booking cancel", err)
	}
	return &BookingResponse{Booking: toWireBooking(b)}, nil
}

func (s *SchedulingServer) CompleteBooking(ctx context.Context, req *CompleteBookingRequest) (*BookingResponse, error) {
	log := s.log.With(slog.String("rpc", "CompleteBooking"))

	id, err := parseID(log, "booking_id", req.BookingID)
	if err != nil {
		return nil, err
	}
	b, err := s.svc.CompleteBooking(ctx, id, actorFrom(ctx, domain.ActorAdmin))
	if err != nil {
		return nil, s.fail(log.With(slog.String("booking_id", id.String())), "booking complete", err)
	}
	return &BookingResponse{Booking: toWireBooking(b)}, nil
}

func (s *SchedulingServer) UpdateBookingCustomer(ctx context.Context, req *UpdateBookingCustomerRequest) (*BookingResponse, error) {
	log := s.log.With(slog.String("rpc", "UpdateBookingCustomer"))

	id, err := parseID(log, "booking_id", req.BookingID)
	if err != nil {
		return nil, err
	}
	if req.Customer == nil {
		log.Warn("invalid request", slog.String("reason", "missing_customer"))
		return nil, status.Error(codes.InvalidArgument, "customer is required")
	}

	b, err := s.svc.UpdateCustomer(ctx, id, fromWireCustomer(req.Customer), actorFrom(ctx, domain.ActorAdmin))
	if err != nil {
		return nil, s.fail(log.With(slog.String("booking_id", id.String())), "customer update", err)
	}
	return &BookingResponse{Booking: toWireBooking(b)}, nil
}

func (s *SchedulingServer) ConfirmPayment(ctx context.Context, req *ConfirmPaymentRequest) (*BookingResponse, error) {
	log := s.log.With(slog.String("rpc", "ConfirmPayment"))

	b, err := s.svc.ConfirmPayment(ctx, scheduling.ConfirmPaymentInput{
		Reference: req.Reference,
		PaymentID: req.PaymentID,
		Actor:     actorFrom(ctx, domain.ActorSystem),
	})
	if err != nil {
		return nil, s.fail(log.With(slog.String("reference", req.Reference)), "payment confirm", err)
	}
	return &BookingResponse{Booking: toWireBooking(b)}, nil
}

func (s *SchedulingServer) GetBookingHistory(ctx context.Context, req *GetBookingHistoryRequest) (*GetBookingHistoryResponse, error) {
	log := s.log.With(slog.String("rpc", "GetBookingHistory"))

	id, err := parseID(log, "booking_id", req.BookingID)
	if err != nil {
		return nil, err
	}
	order := store.OrderAscending
	if req.Descending {
		order = store.OrderDescending
	}

	entries, err := s.svc.BookingHistory(ctx, id, order)
	if err != nil {
		return nil, s.fail(log.With(slog.String("booking_id", id.String())), "history list", err)
	}
	out := make([]*HistoryEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, toWireHistoryEntry(e))
	}
	return &GetBookingHistoryResponse{Entries: out}, nil
}

func (s *SchedulingServer) CreateBlock(ctx context.Context, req *CreateBlockRequest) (*BlockResponse, error) {
	log := s.log.With(slog.String("rpc", "CreateBlock"))

	if req.StartAt == nil || req.EndAt == nil {
		log.Warn("invalid request", slog.String("reason", "missing_times"))
		return nil, status.Error(codes.InvalidArgument, "start_at and end_at are required")
	}

	b, err := s.svc.CreateBlock(ctx, scheduling.CreateBlockInput{
		StartAt: req.StartAt.AsTime(),
		EndAt:   req.EndAt.AsTime(),
		Reason:  req.Reason,
		Actor:   actorFrom(ctx, domain.ActorAdmin),
	})
	if err != nil {
		return nil, s.fail(log, "block create", err)
	}
	return &BlockResponse{Block: toWireBlock(b)}, nil
}

func (s *SchedulingServer) CancelBlock(ctx context.Context, req *CancelBlockRequest) (*BlockResponse, error) {
	log := s.log.With(slog.String("rpc", "CancelBlock"))

	id, err := parseID(log, "block_id", req.BlockID)
	if err != nil {
		return nil, err
	}
	b, err := s.svc.CancelBlock(ctx, id, actorFrom(ctx, domain.ActorAdmin))
	if err != nil {
		return nil, s.fail(log.With(slog.String("block_id", id.String())), "block cancel", err)
	}
	return &BlockResponse{Block: toWireBlock(b)}, nil
}

func (s *SchedulingServer) ListCalendarEvents(ctx context.Context, req *ListCalendarEventsRequest) (*ListCalendarEventsResponse, error) {
	log := s.log.With(slog.String("rpc", "ListCalendarEvents"))

	if req.From == nil || req.To == nil {
		log.Warn("invalid request", slog.String("reason", "missing_window"))
		return nil, status.Error(codes.InvalidArgument, "from and to are required")
	}

	events, err := s.svc.CalendarEvents(ctx, req.From.AsTime(), req.To.AsTime(), req.IncludeCancelled)
	if err != nil {
		return nil, s.fail(log, "calendar list", err)
	}
	out := make([]*CalendarEvent, 0, len(events))
	for _, e := range events {
		out = append(out, toWireCalendarEvent(e))
	}

	log.Debug("calendar listed",
		slog.Int("count", len(out)),
		slog.Time("from", req.From.AsTime()),
		slog.Time("to", req.To.AsTime()),
	)
	return &ListCalendarEventsResponse{Events: out}, nil
}

func (s *SchedulingServer) ListAvailableSlots(ctx context.Context, req *ListAvailableSlotsRequest) (*ListAvailableSlotsResponse, error) {
	log := s.log.With(slog.String("rpc", "ListAvailableSlots"))

	if s.slots == nil {
		log.Error("slot calculator not configured")
		return nil, status.Error(codes.Unimplemented, "availability is not configured")
	}
	loc := s.location()
	date, err := time.ParseInLocation(time.DateOnly, strings.TrimSpace(req.Date), loc)
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "bad_date"), slog.String("date", req.Date))
		return nil, status.Error(codes.InvalidArgument, "date must be YYYY-MM-DD")
	}

	slots, err := s.slots.ComputeSlots(ctx, date, int(req.DurationMinutes))
	if err != nil {
		return nil, s.fail(log.With(slog.String("date", req.Date)), "slots compute", err)
	}
	out := make([]*timestamppb.Timestamp, 0, len(slots))
	for _, t := range slots {
		out = append(out, timestamppb.New(t))
	}

	log.Debug("slots listed", slog.String("date", req.Date), slog.Int("count", len(out)))
	return &ListAvailableSlotsResponse{
		Date:     date.Format(time.DateOnly),
		TimeZone: loc.String(),
		Slots:    out,
	}, nil
}

// fail logs err at a level matching its kind and converts it to a status.
func (s *SchedulingServer) fail(log *slog.Logger, op string, err error) error {
	var (
		vErr  *domain.ValidationError
		cErr  *domain.ConflictError
		nfErr *domain.NotFoundError
		rErr  *domain.RuleViolationError
	)
	switch {
	case errors.As(err, &vErr):
		log.Warn("invalid request", slog.Any("err", err))
		return status.Error(codes.InvalidArgument, vErr.Error())
	case errors.As(err, &cErr):
		log.Info(op+" conflict", slog.String("cause", string(cErr.Cause)), slog.Any("err", err))
		return status.Error(codes.AlreadyExists, cErr.Error())
	case errors.As(err, &nfErr):
		log.Info(nfErr.Resource+" not found", slog.String("ref", nfErr.Ref))
		return status.Error(codes.NotFound, nfErr.Error())
	case errors.As(err, &rErr):
		log.Info(op+" rejected", slog.Any("err", err))
		return status.Error(codes.FailedPrecondition, rErr.Error())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		log.Warn(op+" aborted", slog.Any("err", err))
		return status.FromContextError(err).Err()
	}
	log.Error(op+" failed", slog.Any("err", err))
	return status.Error(codes.Internal, "internal error")
}

func parseID(log *slog.Logger, field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "invalid_uuid"), slog.String("field", field))
		return uuid.Nil, status.Error(codes.InvalidArgument, field+" must be a UUID")
	}
	return id, nil
}

// resolveStart prefers an explicit instant, else date and HH:MM read in
// loc.
func resolveStart(ts *timestamppb.Timestamp, date, clock string, loc *time.Location) (time.Time, error) {
	if ts != nil {
		if err := ts.CheckValid(); err != nil {
			return time.Time{}, errors.New("start_at is invalid")
		}
		return ts.AsTime(), nil
	}
	date, clock = strings.TrimSpace(date), strings.TrimSpace(clock)
	if date == "" || clock == "" {
		return time.Time{}, errors.New("start_at or date and time are required")
	}
	t, err := time.ParseInLocation(time.DateOnly+" 15:04", date+" "+clock, loc)
	if err != nil {
		return time.Time{}, errors.New("date must be YYYY-MM-DD and time HH:MM")
	}
	return t, nil
}

func idempotencyKey(ctx context.Context) string {
	return firstMetadata(ctx, "idempotency-key", "x-idempotency-key")
}

// actorFrom reads the x-actor header, falling back when it is absent or
// unknown.
func actorFrom(ctx context.Context, fallback domain.Actor) domain.Actor {
	if a, ok := domain.ParseActor(firstMetadata(ctx, "x-actor")); ok {
		return a
	}
	return fallback
}

func firstMetadata(ctx context.Context, keys ...string) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	for _, k := range keys {
		if values := md.Get(k); len(values) > 0 {
			return strings.TrimSpace(values[0])
		}
	}
	return ""
}

func timestamp(t time.Time) *timestamppb.Timestamp {
	if t.IsZero() {
		return nil
	}
	return timestamppb.New(t)
}

func optionalTimestamp(t *time.Time) *timestamppb.Timestamp {
	if t == nil {
		return nil
	}
	return timestamppb.New(*t)
}

func fromWireCustomer(c *Customer) domain.Customer {
	return domain.Customer{
		Name:     c.Name,
		Email:    c.Email,
		Phone:    c.Phone,
		Comments: c.Comments,
	}
}

func toWireBooking(b domain.Booking) *Booking {
	return &Booking{
		ID:          b.ID.String(),
		Number:      b.Number,
		ServiceID:   b.ServiceID,
		ServiceName: b.ServiceName,
		Customer: &Customer{
			Name:     b.Customer.Name,
			Email:    b.Customer.Email,
			Phone:    b.Customer.Phone,
			Comments: b.Customer.Comments,
		},
		StartAt:             timestamp(b.StartAt),
		EndAt:               timestamp(b.EndAt()),
		DurationMinutes:     int32(b.DurationMinutes),
		Status:              string(b.Status),
		PaymentStatus:       string(b.PaymentStatus),
		PaymentPreferenceID: b.PaymentPreferenceID,
		PaymentID:           b.PaymentID,
		AmountCents:         b.AmountCents,
		CreatedAt:           timestamp(b.CreatedAt),
		UpdatedAt:           timestamp(b.UpdatedAt),
		ConfirmedAt:         optionalTimestamp(b.ConfirmedAt),
		CancelledAt:         optionalTimestamp(b.CancelledAt),
	}
}

func toWireBlock(b domain.Block) *Block {
	return &Block{
		ID:          b.ID.String(),
		Number:      b.Number,
		Reason:      b.Reason,
		StartAt:     timestamp(b.StartAt),
		EndAt:       timestamp(b.EndAt),
		Status:      string(b.Status),
		CreatedAt:   timestamp(b.CreatedAt),
		UpdatedAt:   timestamp(b.UpdatedAt),
		CancelledAt: optionalTimestamp(b.CancelledAt),
	}
}

func toWireHistoryEntry(e domain.HistoryEntry) *HistoryEntry {
	return &HistoryEntry{
		ID:        e.ID.String(),
		BookingID: e.BookingID.String(),
		EventType: string(e.EventType),
		Actor:     string(e.Actor),
		Payload:   e.Payload,
		CreatedAt: timestamp(e.CreatedAt),
	}
}

func toWireCalendarEvent(e domain.CalendarEvent) *CalendarEvent {
	return &CalendarEvent{
		Kind:          string(e.Kind),
		ID:            e.ID.String(),
		Number:        e.Number,
		Title:         e.Title,
		StartAt:       timestamp(e.Start),
		EndAt:         timestamp(e.End),
		Status:        e.Status,
		ServiceName:   e.ServiceName,
		CustomerName:  e.CustomerName,
		PaymentStatus: string(e.PaymentStatus),
		Reason:        e.Reason,
	}
}
