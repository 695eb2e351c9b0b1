package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"agenda/backend/internal/domain"
	"agenda/backend/internal/store"
)

type calendarTx struct {
	st *state
}

func newID() (uuid.UUID, error) {
	return uuid.NewV7()
}

func (t *calendarTx) CreateBooking(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	if b.ID == uuid.Nil {
		id, err := newID()
		if err != nil {
			return domain.Booking{}, err
		}
		b.ID = id
	}
	if _, ok := t.st.bookings[b.ID]; ok {
		return domain.Booking{}, store.ErrIdempotencyConflict
	}
	for _, other := range t.st.bookings {
		if other.Number == b.Number {
			return domain.Booking{}, store.ErrDuplicateNumber
		}
	}
	if err := t.checkBookingOverlap(b); err != nil {
		return domain.Booking{}, err
	}

	now := time.Now().UTC()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = now
	}
	t.st.bookings[b.ID] = b
	return b, nil
}

func (t *calendarTx) UpdateBooking(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	if _, ok := t.st.bookings[b.ID]; !ok {
		return domain.Booking{}, store.ErrNotFound
	}
	if err := t.checkBookingOverlap(b); err != nil {
		return domain.Booking{}, err
	}
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = time.Now().UTC()
	}
	t.st.bookings[b.ID] = b
	return b, nil
}

// checkBookingOverlap mirrors the bookings exclusion constraint.
func (t *calendarTx) checkBookingOverlap(b domain.Booking) error {
	if !b.OccupiesTime() {
		return nil
	}
	for id, other := range t.st.bookings {
		if id == b.ID || !other.OccupiesTime() {
			continue
		}
		if other.Interval().Overlaps(b.Interval()) {
			return store.ErrConflict
		}
	}
	return nil
}

func (t *calendarTx) BookingByID(ctx context.Context, id uuid.UUID) (domain.Booking, error) {
	b, ok := t.st.bookings[id]
	if !ok {
		return domain.Booking{}, store.ErrNotFound
	}
	return b, nil
}

func (t *calendarTx) BookingByNumber(ctx context.Context, number string) (domain.Booking, error) {
	for _, b := range t.st.bookings {
		if b.Number == number {
			return b, nil
		}
	}
	return domain.Booking{}, store.ErrNotFound
}

func (t *calendarTx) BookingByPaymentReference(ctx context.Context, ref string) (domain.Booking, error) {
	if ref == "" {
		return domain.Booking{}, store.ErrNotFound
	}
	for _, b := range t.st.bookings {
		if b.PaymentPreferenceID == ref || b.PaymentID == ref {
			return b, nil
		}
	}
	return domain.Booking{}, store.ErrNotFound
}

func (t *calendarTx) BookingsInRange(ctx context.Context, from, to time.Time, includeCancelled bool) ([]domain.Booking, error) {
	window := domain.Interval{Start: from, End: to}
	var out []domain.Booking
	for _, b := range t.st.bookings {
		if !includeCancelled && b.Status == domain.BookingCancelled {
			continue
		}
		if b.Interval().Overlaps(window) {
			out = append(out, b)
		}
	}
	sortBookings(out)
	return out, nil
}

func (t *calendarTx) ListBookings(ctx context.Context) ([]domain.Booking, error) {
	out := make([]domain.Booking, 0, len(t.st.bookings))
	for _, b := range t.st.bookings {
		out = append(out, b)
	}
	sortBookings(out)
	return out, nil
}

func (t *calendarTx) ListBookingsByStatus(ctx context.Context, status domain.BookingStatus) ([]domain.Booking, error) {
	var out []domain.Booking
	for _, b := range t.st.bookings {
		if b.Status == status {
			out = append(out, b)
		}
	}
	sortBookings(out)
	return out, nil
}

func (t *calendarTx) IsSlotAvailable(ctx context.Context, slot domain.Interval, excludeID uuid.UUID) (bool, error) {
	for id, b := range t.st.bookings {
		if id == excludeID || !b.OccupiesTime() {
			continue
		}
		if b.Interval().Overlaps(slot) {
			return false, nil
		}
	}
	return true, nil
}

func (t *calendarTx) CreateBlock(ctx context.Context, b domain.Block) (domain.Block, error) {
	if b.ID == uuid.Nil {
		id, err := newID()
		if err != nil {
			return domain.Block{}, err
		}
		b.ID = id
	}
	for _, other := range t.st.blocks {
		if other.Number == b.Number {
			return domain.Block{}, store.ErrDuplicateNumber
		}
	}
	if err := t.checkBlockOverlap(b); err != nil {
		return domain.Block{}, err
	}

	now := time.Now().UTC()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = now
	}
	t.st.blocks[b.ID] = b
	return b, nil
}

func (t *calendarTx) UpdateBlock(ctx context.Context, b domain.Block) (domain.Block, error) {
	if _, ok := t.st.blocks[b.ID]; !ok {
		return domain.Block{}, store.ErrNotFound
	}
	if err := t.checkBlockOverlap(b); err != nil {
		return domain.Block{}, err
	}
	t.st.blocks[b.ID] = b
	return b, nil
}

// checkBlockOverlap mirrors the blocks exclusion constraint.
func (t *calendarTx) checkBlockOverlap(b domain.Block) error {
	if !b.OccupiesTime() {
		return nil
	}
	for id, other := range t.st.blocks {
		if id == b.ID || !other.OccupiesTime() {
			continue
		}
		if other.Interval().Overlaps(b.Interval()) {
			return store.ErrConflict
		}
	}
	return nil
}

func (t *calendarTx) BlockByID(ctx context.Context, id uuid.UUID) (domain.Block, error) {
	b, ok := t.st.blocks[id]
	if !ok {
		return domain.Block{}, store.ErrNotFound
	}
	return b, nil
}

func (t *calendarTx) BlockByNumber(ctx context.Context, number string) (domain.Block, error) {
	for _, b := range t.st.blocks {
		if b.Number == number {
			return b, nil
		}
	}
	return domain.Block{}, store.ErrNotFound
}

func (t *calendarTx) BlocksInRange(ctx context.Context, from, to time.Time, includeCancelled bool) ([]domain.Block, error) {
	window := domain.Interval{Start: from, End: to}
	var out []domain.Block
	for _, b := range t.st.blocks {
		if !includeCancelled && !b.OccupiesTime() {
			continue
		}
		if b.Interval().Overlaps(window) {
			out = append(out, b)
		}
	}
	sortBlocks(out)
	return out, nil
}

func (t *calendarTx) ActiveBlocksInRange(ctx context.Context, from, to time.Time) ([]domain.Block, error) {
	return t.BlocksInRange(ctx, from, to, false)
}

func (t *calendarTx) ActiveBlockExists(ctx context.Context, from, to time.Time) (bool, error) {
	window := domain.Interval{Start: from, End: to}
	for _, b := range t.st.blocks {
		if b.OccupiesTime() && b.Interval().Overlaps(window) {
			return true, nil
		}
	}
	return false, nil
}

func (t *calendarTx) AppendHistory(ctx context.Context, e domain.HistoryEntry) (domain.HistoryEntry, error) {
	if e.ID == uuid.Nil {
		id, err := newID()
		if err != nil {
			return domain.HistoryEntry{}, err
		}
		e.ID = id
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	t.st.history = append(t.st.history, e)
	return e, nil
}

func (t *calendarTx) HistoryForBooking(ctx context.Context, bookingID uuid.UUID, order store.Order) ([]domain.HistoryEntry, error) {
	var out []domain.HistoryEntry
	for _, e := range t.st.history {
		if e.BookingID == bookingID {
			out = append(out, e)
		}
	}
	// history is appended in commit order, which is creation order
	if order == store.OrderDescending {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out, nil
}
