package domain

import (
	"errors"
	"testing"
)

func TestNewBlock(t *testing.T) {
	b, err := NewBlock("BLOCK-1", at(12, 0), at(14, 0), "  lunch  ", at(8, 0))
	if err != nil {
		t.Fatalf("NewBlock error: %v", err)
	}
	if b.Reason != "lunch" {
		t.Fatalf("reason = %q, want %q", b.Reason, "lunch")
	}
	if b.Status != BlockActive || !b.OccupiesTime() {
		t.Fatalf("status = %s, want active", b.Status)
	}

	invalid := []struct {
		name       string
		start, end int
		reason     string
	}{
		{name: "misaligned start", start: 12*60 + 10, end: 14 * 60, reason: "x"},
		{name: "misaligned end", start: 12 * 60, end: 14*60 + 5, reason: "x"},
		{name: "end before start", start: 14 * 60, end: 12 * 60, reason: "x"},
		{name: "empty", start: 12 * 60, end: 12 * 60, reason: "x"},
		{name: "blank reason", start: 12 * 60, end: 14 * 60, reason: "  "},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBlock("BLOCK-1", at(0, tt.start), at(0, tt.end), tt.reason, at(8, 0))
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
		})
	}
}

func TestBlock_CancelTwiceFails(t *testing.T) {
	b, err := NewBlock("BLOCK-1", at(12, 0), at(14, 0), "lunch", at(8, 0))
	if err != nil {
		t.Fatalf("NewBlock error: %v", err)
	}
	if err := b.Cancel(at(9, 0)); err != nil {
		t.Fatalf("Cancel error: %v", err)
	}
	if b.OccupiesTime() {
		t.Fatalf("expected cancelled block not to occupy time")
	}
	var rErr *RuleViolationError
	if err := b.Cancel(at(9, 30)); !errors.As(err, &rErr) {
		t.Fatalf("err = %v, want RuleViolationError", err)
	}
}
