package domain

import (
	"fmt"
	"time"
)

// SlotMinutes is the grid every booking and block boundary sits on.
const SlotMinutes = 30

const SlotStep = SlotMinutes * time.Minute

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

func NewInterval(start, end time.Time) (Interval, error) {
	if !end.After(start) {
		return Interval{}, NewValidationError("end must be after start")
	}
	return Interval{Start: start, End: end}, nil
}

// Overlaps reports whether both intervals share at least one instant.
// Back-to-back intervals do not overlap.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}

// Covers reports whether o lies entirely inside i.
func (i Interval) Covers(o Interval) bool {
	return !i.Start.After(o.Start) && !i.End.Before(o.End)
}

func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

func (i Interval) String() string {
	return fmt.Sprintf("[%s, %s)", i.Start.Format(time.RFC3339), i.End.Format(time.RFC3339))
}

// IsAligned reports whether t falls on the slot grid in its own offset.
func IsAligned(t time.Time) bool {
	return t.Minute()%SlotMinutes == 0 && t.Second() == 0 && t.Nanosecond() == 0
}

func ValidateDuration(minutes int) error {
	if minutes <= 0 {
		return NewValidationError("duration must be positive")
	}
	if minutes%SlotMinutes != 0 {
		return NewValidationError(fmt.Sprintf("duration must be a multiple of %d minutes", SlotMinutes))
	}
	return nil
}

// NormalizeDuration rounds minutes up to the slot grid. Non-positive values
// become a single slot.
func NormalizeDuration(minutes int) int {
	if minutes <= 0 {
		return SlotMinutes
	}
	return ((minutes + SlotMinutes - 1) / SlotMinutes) * SlotMinutes
}
