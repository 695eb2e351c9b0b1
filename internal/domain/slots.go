package domain

import "time"

// ComputeSlots lists the free start times on date for a service of the given
// duration. bookings and blocks may contain non-occupying entries; they are
// ignored. The result is strictly increasing and every slot ends no later
// than closing time.
func ComputeSlots(date time.Time, durationMinutes int, hours OpeningHours, loc *time.Location, bookings []Booking, blocks []Block) []time.Time {
	if !hours.Enabled {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}

	window := hours.Window(date, loc)
	if !window.End.After(window.Start) {
		return nil
	}
	for _, b := range blocks {
		if b.OccupiesTime() && b.Interval().Covers(window) {
			return nil
		}
	}

	y, m, d := date.Date()
	nextMidnight := time.Date(y, m, d+1, 0, 0, 0, 0, loc)
	length := time.Duration(NormalizeDuration(durationMinutes)) * time.Minute

	var out []time.Time
	for start := window.Start; ; start = start.Add(SlotStep) {
		end := start.Add(length)
		if end.After(window.End) || end.After(nextMidnight) {
			break
		}
		if !Occupied(Interval{Start: start, End: end}, bookings, blocks) {
			out = append(out, start)
		}
	}
	return out
}
