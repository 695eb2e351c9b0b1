package store

import "context"

// CalendarTx is the view of storage available inside a calendar transaction.
type CalendarTx interface {
	BookingRepository
	BlockRepository
	HistoryRepository
}

// Calendar is the single shared timeline. InCalendarTransaction runs fn
// while holding the calendar write lock; fn's writes commit together or not
// at all. Reads made through the Calendar itself take no lock.
type Calendar interface {
	CalendarTx
	InCalendarTransaction(ctx context.Context, fn func(ctx context.Context, tx CalendarTx) error) error
}
