package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"agenda/backend/internal/domain"
	"agenda/backend/internal/store"
)

// CalendarLockKey is the advisory lock taken by every calendar write. There
// is one practitioner, so there is one key.
const CalendarLockKey = "agenda:calendar"

var occupyingStatuses = []domain.BookingStatus{domain.BookingPending, domain.BookingConfirmed}

// CalendarRepo implements store.Calendar on Postgres. Reads go straight to
// the pool; writes run in a transaction holding the calendar lock.
type CalendarRepo struct {
	calendarTx
	db *bun.DB
}

func NewCalendarRepo(db *bun.DB) *CalendarRepo {
	return &CalendarRepo{calendarTx: calendarTx{db: db}, db: db}
}

func (r *CalendarRepo) InCalendarTransaction(ctx context.Context, fn func(ctx context.Context, tx store.CalendarTx) error) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockCalendar(ctx, tx); err != nil {
			return err
		}
		return fn(ctx, calendarTx{db: tx})
	})
}

func lockCalendar(ctx context.Context, tx bun.Tx) error {
	_, err := tx.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", CalendarLockKey).Exec(ctx)
	return err
}

func (r *CalendarRepo) CreateBooking(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	var out domain.Booking
	err := r.InCalendarTransaction(ctx, func(ctx context.Context, tx store.CalendarTx) error {
		var err error
		out, err = tx.CreateBooking(ctx, b)
		return err
	})
	return out, err
}

func (r *CalendarRepo) UpdateBooking(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	var out domain.Booking
	err := r.InCalendarTransaction(ctx, func(ctx context.Context, tx store.CalendarTx) error {
		var err error
		out, err = tx.UpdateBooking(ctx, b)
		return err
	})
	return out, err
}

func (r *CalendarRepo) CreateBlock(ctx context.Context, b domain.Block) (domain.Block, error) {
	var out domain.Block
	err := r.InCalendarTransaction(ctx, func(ctx context.Context, tx store.CalendarTx) error {
		var err error
		out, err = tx.CreateBlock(ctx, b)
		return err
	})
	return out, err
}

func (r *CalendarRepo) UpdateBlock(ctx context.Context, b domain.Block) (domain.Block, error) {
	var out domain.Block
	err := r.InCalendarTransaction(ctx, func(ctx context.Context, tx store.CalendarTx) error {
		var err error
		out, err = tx.UpdateBlock(ctx, b)
		return err
	})
	return out, err
}

func (r *CalendarRepo) AppendHistory(ctx context.Context, e domain.HistoryEntry) (domain.HistoryEntry, error) {
	var out domain.HistoryEntry
	err := r.InCalendarTransaction(ctx, func(ctx context.Context, tx store.CalendarTx) error {
		var err error
		out, err = tx.AppendHistory(ctx, e)
		return err
	})
	return out, err
}

type calendarTx struct {
	db bun.IDB
}

func (r calendarTx) CreateBooking(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	m := b
	if _, err := r.db.NewInsert().Model(&m).Exec(ctx); err != nil {
		return domain.Booking{}, constraintError(err, "bookings_no_overlap", "bookings_number_key")
	}
	return m, nil
}

func (r calendarTx) UpdateBooking(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	m := b
	res, err := r.db.NewUpdate().
		Model(&m).
		ExcludeColumn("created_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return domain.Booking{}, constraintError(err, "bookings_no_overlap", "bookings_number_key")
	}
	if err := expectRow(res); err != nil {
		return domain.Booking{}, err
	}
	return m, nil
}

func (r calendarTx) BookingByID(ctx context.Context, id uuid.UUID) (domain.Booking, error) {
	var b domain.Booking
	err := r.db.NewSelect().Model(&b).Where("id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		return domain.Booking{}, notFound(err)
	}
	return b, nil
}

func (r calendarTx) BookingByNumber(ctx context.Context, number string) (domain.Booking, error) {
	var b domain.Booking
	err := r.db.NewSelect().Model(&b).Where("booking_number = ?", number).Limit(1).Scan(ctx)
	if err != nil {
		return domain.Booking{}, notFound(err)
	}
	return b, nil
}

func (r calendarTx) BookingByPaymentReference(ctx context.Context, ref string) (domain.Booking, error) {
	if ref == "" {
		return domain.Booking{}, store.ErrNotFound
	}
	var b domain.Booking
	err := r.db.NewSelect().
		Model(&b).
		Where("payment_preference_id = ? OR payment_id = ?", ref, ref).
		OrderExpr("created_at DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return domain.Booking{}, notFound(err)
	}
	return b, nil
}

func (r calendarTx) BookingsInRange(ctx context.Context, from, to time.Time, includeCancelled bool) ([]domain.Booking, error) {
	rows := []domain.Booking{}
	q := r.db.NewSelect().
		Model(&rows).
		Where("start_at < ?", to).
		Where("start_at + make_interval(mins => duration_minutes) > ?", from)
	if !includeCancelled {
		q = q.Where("status <> ?", domain.BookingCancelled)
	}
	if err := q.OrderExpr("start_at ASC, booking_number ASC").Scan(ctx); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r calendarTx) ListBookings(ctx context.Context) ([]domain.Booking, error) {
	rows := []domain.Booking{}
	if err := r.db.NewSelect().Model(&rows).OrderExpr("start_at ASC, booking_number ASC").Scan(ctx); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r calendarTx) ListBookingsByStatus(ctx context.Context, status domain.BookingStatus) ([]domain.Booking, error) {
	rows := []domain.Booking{}
	err := r.db.NewSelect().
		Model(&rows).
		Where("status = ?", status).
		OrderExpr("start_at ASC, booking_number ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r calendarTx) IsSlotAvailable(ctx context.Context, slot domain.Interval, excludeID uuid.UUID) (bool, error) {
	q := r.db.NewSelect().
		Model((*domain.Booking)(nil)).
		Where("status IN (?)", bun.In(occupyingStatuses)).
		Where("start_at < ?", slot.End).
		Where("start_at + make_interval(mins => duration_minutes) > ?", slot.Start)
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}
	taken, err := q.Exists(ctx)
	if err != nil {
		return false, err
	}
	return !taken, nil
}

func (r calendarTx) CreateBlock(ctx context.Context, b domain.Block) (domain.Block, error) {
	m := b
	if _, err := r.db.NewInsert().Model(&m).Exec(ctx); err != nil {
		return domain.Block{}, constraintError(err, "blocks_no_overlap", "blocks_number_key")
	}
	return m, nil
}

func (r calendarTx) UpdateBlock(ctx context.Context, b domain.Block) (domain.Block, error) {
	m := b
	res, err := r.db.NewUpdate().
		Model(&m).
		ExcludeColumn("created_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return domain.Block{}, constraintError(err, "blocks_no_overlap", "blocks_number_key")
	}
	if err := expectRow(res); err != nil {
		return domain.Block{}, err
	}
	return m, nil
}

func (r calendarTx) BlockByID(ctx context.Context, id uuid.UUID) (domain.Block, error) {
	var b domain.Block
	err := r.db.NewSelect().Model(&b).Where("id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		return domain.Block{}, notFound(err)
	}
	return b, nil
}

func (r calendarTx) BlockByNumber(ctx context.Context, number string) (domain.Block, error) {
	var b domain.Block
	err := r.db.NewSelect().Model(&b).Where("block_number = ?", number).Limit(1).Scan(ctx)
	if err != nil {
		return domain.Block{}, notFound(err)
	}
	return b, nil
}

func (r calendarTx) BlocksInRange(ctx context.Context, from, to time.Time, includeCancelled bool) ([]domain.Block, error) {
	rows := []domain.Block{}
	q := r.db.NewSelect().
		Model(&rows).
		Where("start_at < ?", to).
		Where("end_at > ?", from)
	if !includeCancelled {
		q = q.Where("status = ?", domain.BlockActive)
	}
	if err := q.OrderExpr("start_at ASC, block_number ASC").Scan(ctx); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r calendarTx) ActiveBlocksInRange(ctx context.Context, from, to time.Time) ([]domain.Block, error) {
	return r.BlocksInRange(ctx, from, to, false)
}

func (r calendarTx) ActiveBlockExists(ctx context.Context, from, to time.Time) (bool, error) {
	return r.db.NewSelect().
		Model((*domain.Block)(nil)).
		Where("status = ?", domain.BlockActive).
		Where("start_at < ?", to).
		Where("end_at > ?", from).
		Exists(ctx)
}

func (r calendarTx) AppendHistory(ctx context.Context, e domain.HistoryEntry) (domain.HistoryEntry, error) {
	m := e
	if m.Payload == nil {
		m.Payload = map[string]any{}
	}
	if _, err := r.db.NewInsert().Model(&m).Exec(ctx); err != nil {
		return domain.HistoryEntry{}, err
	}
	return m, nil
}

func (r calendarTx) HistoryForBooking(ctx context.Context, bookingID uuid.UUID, order store.Order) ([]domain.HistoryEntry, error) {
	rows := []domain.HistoryEntry{}
	orderExpr := "created_at ASC, id ASC"
	if order == store.OrderDescending {
		orderExpr = "created_at DESC, id DESC"
	}
	err := r.db.NewSelect().
		Model(&rows).
		Where("booking_id = ?", bookingID).
		OrderExpr(orderExpr).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

type rowsAffected interface {
	RowsAffected() (int64, error)
}

func expectRow(res rowsAffected) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}
