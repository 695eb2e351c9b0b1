// Package memory is a process-local implementation of the storage ports.
// It enforces the same overlap and uniqueness rules as the Postgres schema
// so services behave identically on both.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"agenda/backend/internal/domain"
	"agenda/backend/internal/store"
)

type Store struct {
	txMu sync.Mutex

	mu   sync.RWMutex
	data *state
}

type state struct {
	bookings map[uuid.UUID]domain.Booking
	blocks   map[uuid.UUID]domain.Block
	history  []domain.HistoryEntry
	config   map[string]string
}

func New() *Store {
	return &Store{data: &state{
		bookings: map[uuid.UUID]domain.Booking{},
		blocks:   map[uuid.UUID]domain.Block{},
		config:   map[string]string{},
	}}
}

func (s *state) clone() *state {
	out := &state{
		bookings: make(map[uuid.UUID]domain.Booking, len(s.bookings)),
		blocks:   make(map[uuid.UUID]domain.Block, len(s.blocks)),
		history:  append([]domain.HistoryEntry(nil), s.history...),
		config:   make(map[string]string, len(s.config)),
	}
	for k, v := range s.bookings {
		out.bookings[k] = v
	}
	for k, v := range s.blocks {
		out.blocks[k] = v
	}
	for k, v := range s.config {
		out.config[k] = v
	}
	return out
}

// InCalendarTransaction runs fn against a private copy of the data and
// publishes it only when fn succeeds. fn must use tx, not s.
func (s *Store) InCalendarTransaction(ctx context.Context, fn func(ctx context.Context, tx store.CalendarTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	work := s.data.clone()
	s.mu.RUnlock()

	if err := fn(ctx, &calendarTx{st: work}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.data = work
	s.mu.Unlock()
	return nil
}

func (s *Store) read() *calendarTx {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &calendarTx{st: s.data}
}

// reads below work on the published state; it is replaced, never mutated,
// once a transaction commits.

func (s *Store) BookingByID(ctx context.Context, id uuid.UUID) (domain.Booking, error) {
	return s.read().BookingByID(ctx, id)
}

func (s *Store) BookingByNumber(ctx context.Context, number string) (domain.Booking, error) {
	return s.read().BookingByNumber(ctx, number)
}

func (s *Store) BookingByPaymentReference(ctx context.Context, ref string) (domain.Booking, error) {
	return s.read().BookingByPaymentReference(ctx, ref)
}

func (s *Store) BookingsInRange(ctx context.Context, from, to time.Time, includeCancelled bool) ([]domain.Booking, error) {
	return s.read().BookingsInRange(ctx, from, to, includeCancelled)
}

func (s *Store) ListBookings(ctx context.Context) ([]domain.Booking, error) {
	return s.read().ListBookings(ctx)
}

func (s *Store) ListBookingsByStatus(ctx context.Context, status domain.BookingStatus) ([]domain.Booking, error) {
	return s.read().ListBookingsByStatus(ctx, status)
}

func (s *Store) IsSlotAvailable(ctx context.Context, slot domain.Interval, excludeID uuid.UUID) (bool, error) {
	return s.read().IsSlotAvailable(ctx, slot, excludeID)
}

func (s *Store) BlockByID(ctx context.Context, id uuid.UUID) (domain.Block, error) {
	return s.read().BlockByID(ctx, id)
}

func (s *Store) BlockByNumber(ctx context.Context, number string) (domain.Block, error) {
	return s.read().BlockByNumber(ctx, number)
}

func (s *Store) BlocksInRange(ctx context.Context, from, to time.Time, includeCancelled bool) ([]domain.Block, error) {
	return s.read().BlocksInRange(ctx, from, to, includeCancelled)
}

func (s *Store) ActiveBlocksInRange(ctx context.Context, from, to time.Time) ([]domain.Block, error) {
	return s.read().ActiveBlocksInRange(ctx, from, to)
}

func (s *Store) ActiveBlockExists(ctx context.Context, from, to time.Time) (bool, error) {
	return s.read().ActiveBlockExists(ctx, from, to)
}

func (s *Store) HistoryForBooking(ctx context.Context, bookingID uuid.UUID, order store.Order) ([]domain.HistoryEntry, error) {
	return s.read().HistoryForBooking(ctx, bookingID, order)
}

func (s *Store) CreateBooking(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	var out domain.Booking
	err := s.InCalendarTransaction(ctx, func(ctx context.Context, tx store.CalendarTx) error {
		var err error
		out, err = tx.CreateBooking(ctx, b)
		return err
	})
	return out, err
}

func (s *Store) UpdateBooking(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	var out domain.Booking
	err := s.InCalendarTransaction(ctx, func(ctx context.Context, tx store.CalendarTx) error {
		var err error
		out, err = tx.UpdateBooking(ctx, b)
		return err
	})
	return out, err
}

func (s *Store) CreateBlock(ctx context.Context, b domain.Block) (domain.Block, error) {
	var out domain.Block
	err := s.InCalendarTransaction(ctx, func(ctx context.Context, tx store.CalendarTx) error {
		var err error
		out, err = tx.CreateBlock(ctx, b)
		return err
	})
	return out, err
}

func (s *Store) UpdateBlock(ctx context.Context, b domain.Block) (domain.Block, error) {
	var out domain.Block
	err := s.InCalendarTransaction(ctx, func(ctx context.Context, tx store.CalendarTx) error {
		var err error
		out, err = tx.UpdateBlock(ctx, b)
		return err
	})
	return out, err
}

func (s *Store) AppendHistory(ctx context.Context, e domain.HistoryEntry) (domain.HistoryEntry, error) {
	var out domain.HistoryEntry
	err := s.InCalendarTransaction(ctx, func(ctx context.Context, tx store.CalendarTx) error {
		var err error
		out, err = tx.AppendHistory(ctx, e)
		return err
	})
	return out, err
}

func (s *Store) ConfigValue(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data.config[key]
	if !ok {
		return "", store.ErrNotFound
	}
	return v, nil
}

func (s *Store) SetConfigValue(ctx context.Context, key, value string) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.data.clone()
	next.config[key] = value
	s.data = next
	return nil
}

func sortBookings(rows []domain.Booking) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].StartAt.Equal(rows[j].StartAt) {
			return rows[i].Number < rows[j].Number
		}
		return rows[i].StartAt.Before(rows[j].StartAt)
	})
}

func sortBlocks(rows []domain.Block) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].StartAt.Equal(rows[j].StartAt) {
			return rows[i].Number < rows[j].Number
		}
		return rows[i].StartAt.Before(rows[j].StartAt)
	})
}
