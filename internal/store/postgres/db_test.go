package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"agenda/backend/internal/store"
)

func TestConstraintError(t *testing.T) {
	other := errors.New("boom")
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "exclusion on overlap constraint",
			err:  fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23P01", ConstraintName: "bookings_no_overlap"}),
			want: store.ErrConflict,
		},
		{
			name: "unique on number",
			err:  &pgconn.PgError{Code: "23505", ConstraintName: "bookings_number_key"},
			want: store.ErrDuplicateNumber,
		},
		{
			name: "unique on primary key",
			err:  &pgconn.PgError{Code: "23505", ConstraintName: "bookings_pkey"},
			want: store.ErrIdempotencyConflict,
		},
		{
			name: "unrelated error",
			err:  other,
			want: other,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := constraintError(tt.err, "bookings_no_overlap", "bookings_number_key")
			if !errors.Is(got, tt.want) {
				t.Fatalf("constraintError = %v, want %v", got, tt.want)
			}
		})
	}

	exclusionElsewhere := &pgconn.PgError{Code: "23P01", ConstraintName: "something_else"}
	if got := constraintError(exclusionElsewhere, "bookings_no_overlap", "bookings_number_key"); errors.Is(got, store.ErrConflict) {
		t.Fatalf("unexpected conflict mapping for unknown constraint")
	}
}

func TestNotFound(t *testing.T) {
	if err := notFound(fmt.Errorf("scan: %w", sql.ErrNoRows)); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want %v", err, store.ErrNotFound)
	}
	boom := errors.New("boom")
	if err := notFound(boom); err != boom {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}
