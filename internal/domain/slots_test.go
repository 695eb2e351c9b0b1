package domain

import (
	"reflect"
	"testing"
	"time"
)

func clock(ts []time.Time) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.Format("15:04"))
	}
	return out
}

func TestComputeSlots_FullDayWithoutEntries(t *testing.T) {
	monday := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	got := ComputeSlots(monday, 60, FallbackHours(), time.UTC, nil, nil)

	if len(got) != 19 {
		t.Fatalf("len(slots) = %d, want 19 (%v)", len(got), clock(got))
	}
	if first := got[0].Format("15:04"); first != "09:00" {
		t.Fatalf("first = %s, want 09:00", first)
	}
	if last := got[len(got)-1].Format("15:04"); last != "18:00" {
		t.Fatalf("last = %s, want 18:00", last)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Sub(got[i-1]) != SlotStep {
			t.Fatalf("slots not on a 30 minute grid: %v", clock(got))
		}
	}
}

func TestComputeSlots_SkipsOccupiedRanges(t *testing.T) {
	monday := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	hours := OpeningHours{Enabled: true, OpenMinute: 9 * 60, CloseMinute: 13 * 60}
	bookings := []Booking{
		booking(at(10, 0), 60, BookingConfirmed),
		booking(at(12, 0), 30, BookingCancelled),
	}
	blocks := []Block{block(at(11, 30), at(12, 0), BlockActive)}

	got := clock(ComputeSlots(monday, 30, hours, time.UTC, bookings, blocks))
	want := []string{"09:00", "09:30", "11:00", "12:00", "12:30"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("slots = %v, want %v", got, want)
	}
}

func TestComputeSlots_RoundsDurationUp(t *testing.T) {
	monday := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	hours := OpeningHours{Enabled: true, OpenMinute: 9 * 60, CloseMinute: 10*60 + 30}

	got := clock(ComputeSlots(monday, 45, hours, time.UTC, nil, nil))
	want := []string{"09:00", "09:30"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("slots = %v, want %v", got, want)
	}
}

func TestComputeSlots_WholeDayBlocked(t *testing.T) {
	monday := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	blocks := []Block{block(at(8, 0), at(20, 0), BlockActive)}
	if got := ComputeSlots(monday, 30, FallbackHours(), time.UTC, nil, blocks); len(got) != 0 {
		t.Fatalf("slots = %v, want none", clock(got))
	}

	blocks[0].Status = BlockCancelled
	if got := ComputeSlots(monday, 30, FallbackHours(), time.UTC, nil, blocks); len(got) == 0 {
		t.Fatalf("expected slots once the block is cancelled")
	}
}

func TestComputeSlots_ClosedDayAndOversizedService(t *testing.T) {
	monday := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	if got := ComputeSlots(monday, 60, OpeningHours{}, time.UTC, nil, nil); got != nil {
		t.Fatalf("closed day slots = %v, want nil", clock(got))
	}
	hours := OpeningHours{Enabled: true, OpenMinute: 9 * 60, CloseMinute: 10 * 60}
	if got := ComputeSlots(monday, 90, hours, time.UTC, nil, nil); len(got) != 0 {
		t.Fatalf("oversized service slots = %v, want none", clock(got))
	}
}

func TestComputeSlots_UsesLocation(t *testing.T) {
	loc := time.FixedZone("ART", -3*60*60)
	date := time.Date(2026, 1, 5, 0, 0, 0, 0, loc)
	hours := OpeningHours{Enabled: true, OpenMinute: 9 * 60, CloseMinute: 10 * 60}

	got := ComputeSlots(date, 30, hours, loc, nil, nil)
	if len(got) != 2 {
		t.Fatalf("len(slots) = %d, want 2", len(got))
	}
	if want := time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC); !got[0].Equal(want) {
		t.Fatalf("first = %s, want %s", got[0].UTC(), want)
	}
}

func TestComputeSlots_Deterministic(t *testing.T) {
	monday := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	bookings := []Booking{booking(at(14, 0), 90, BookingPending)}
	a := ComputeSlots(monday, 60, FallbackHours(), time.UTC, bookings, nil)
	b := ComputeSlots(monday, 60, FallbackHours(), time.UTC, bookings, nil)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("results differ: %v vs %v", clock(a), clock(b))
	}
}
