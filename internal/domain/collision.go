package domain

// Collisions lists the occupying entries that overlap a candidate interval.
type Collisions struct {
	Bookings []Booking
	Blocks   []Block
}

func (c Collisions) Any() bool {
	return len(c.Bookings) > 0 || len(c.Blocks) > 0
}

func CollidingEntries(candidate Interval, bookings []Booking, blocks []Block) Collisions {
	var out Collisions
	for _, b := range bookings {
		if b.OccupiesTime() && b.Interval().Overlaps(candidate) {
			out.Bookings = append(out.Bookings, b)
		}
	}
	for _, b := range blocks {
		if b.OccupiesTime() && b.Interval().Overlaps(candidate) {
			out.Blocks = append(out.Blocks, b)
		}
	}
	return out
}

// Occupied reports whether any occupying booking or active block overlaps
// candidate.
func Occupied(candidate Interval, bookings []Booking, blocks []Block) bool {
	for _, b := range bookings {
		if b.OccupiesTime() && b.Interval().Overlaps(candidate) {
			return true
		}
	}
	for _, b := range blocks {
		if b.OccupiesTime() && b.Interval().Overlaps(candidate) {
			return true
		}
	}
	return false
}
