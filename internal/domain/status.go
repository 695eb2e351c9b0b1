package domain

type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
	BookingCompleted BookingStatus = "COMPLETED"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingCancelled},
	BookingConfirmed: {BookingCompleted, BookingCancelled},
}

func ParseBookingStatus(s string) (BookingStatus, bool) {
	switch st := BookingStatus(s); st {
	case BookingPending, BookingConfirmed, BookingCancelled, BookingCompleted:
		return st, true
	}
	return "", false
}

// Occupies reports whether a booking in this status takes up calendar time.
func (s BookingStatus) Occupies() bool {
	return s == BookingPending || s == BookingConfirmed
}

func (s BookingStatus) Terminal() bool {
	return len(bookingTransitions[s]) == 0
}

// CanTransition reports whether the booking lifecycle allows from -> to.
func CanTransition(from, to BookingStatus) bool {
	for _, next := range bookingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending     PaymentStatus = "PENDING"
	PaymentPaid        PaymentStatus = "PAID"
	PaymentFailed      PaymentStatus = "FAILED"
	PaymentRefunded    PaymentStatus = "REFUNDED"
	PaymentNotRequired PaymentStatus = "NOT_REQUIRED"
)

type BlockStatus string

const (
	BlockActive    BlockStatus = "ACTIVE"
	BlockCancelled BlockStatus = "CANCELLED"
)
