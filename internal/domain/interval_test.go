package domain

import (
	"errors"
	"testing"
	"time"
)

func at(h, m int) time.Time {
	return time.Date(2026, 1, 5, h, m, 0, 0, time.UTC)
}

func TestInterval_OverlapsIsHalfOpen(t *testing.T) {
	tests := []struct {
		name string
		a, b Interval
		want bool
	}{
		{name: "back to back", a: Interval{at(10, 0), at(11, 0)}, b: Interval{at(11, 0), at(12, 0)}, want: false},
		{name: "partial", a: Interval{at(10, 0), at(11, 0)}, b: Interval{at(10, 30), at(11, 0)}, want: true},
		{name: "contained", a: Interval{at(9, 0), at(12, 0)}, b: Interval{at(10, 0), at(10, 30)}, want: true},
		{name: "disjoint", a: Interval{at(9, 0), at(9, 30)}, b: Interval{at(10, 0), at(10, 30)}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.want {
				t.Fatalf("a.Overlaps(b) = %v, want %v", got, tt.want)
			}
			if got := tt.b.Overlaps(tt.a); got != tt.want {
				t.Fatalf("b.Overlaps(a) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInterval_Covers(t *testing.T) {
	day := Interval{at(9, 0), at(19, 0)}
	if !(Interval{at(0, 0), at(23, 30)}).Covers(day) {
		t.Fatalf("expected wider interval to cover the day")
	}
	if !day.Covers(day) {
		t.Fatalf("expected interval to cover itself")
	}
	if (Interval{at(9, 30), at(19, 0)}).Covers(day) {
		t.Fatalf("expected late start not to cover the day")
	}
}

func TestNewInterval_RejectsEmpty(t *testing.T) {
	_, err := NewInterval(at(10, 0), at(10, 0))
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestIsAligned(t *testing.T) {
	tests := []struct {
		in   time.Time
		want bool
	}{
		{in: at(10, 0), want: true},
		{in: at(10, 30), want: true},
		{in: at(10, 15), want: false},
		{in: at(10, 0).Add(time.Second), want: false},
		{in: at(10, 30).Add(time.Millisecond), want: false},
	}
	for _, tt := range tests {
		if got := IsAligned(tt.in); got != tt.want {
			t.Fatalf("IsAligned(%s) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDurationRules(t *testing.T) {
	for _, d := range []int{30, 60, 90, 600} {
		if err := ValidateDuration(d); err != nil {
			t.Fatalf("ValidateDuration(%d) = %v, want nil", d, err)
		}
	}
	for _, d := range []int{0, -30, 45, 61} {
		if err := ValidateDuration(d); err == nil {
			t.Fatalf("ValidateDuration(%d) = nil, want error", d)
		}
	}

	normalized := map[int]int{-5: 30, 0: 30, 1: 30, 30: 30, 31: 60, 45: 60, 60: 60, 61: 90}
	for in, want := range normalized {
		if got := NormalizeDuration(in); got != want {
			t.Fatalf("NormalizeDuration(%d) = %d, want %d", in, got, want)
		}
	}
}
