package postgres

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"agenda/backend/internal/domain"
	"agenda/backend/internal/store"
	"agenda/backend/migrations"
)

// committedSchema creates a migrated schema that concurrent transactions
// can see, and returns a pool whose connections use it.
func committedSchema(t *testing.T, conns int) *bun.DB {
	t.Helper()

	databaseURL := strings.TrimSpace(os.Getenv("AGENDA_TEST_DATABASE_URL"))
	if databaseURL == "" {
		t.Skip("AGENDA_TEST_DATABASE_URL not set")
	}

	admin, err := Open(databaseURL, PoolConfig{MaxOpenConns: 1})
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	t.Cleanup(func() { _ = Close(admin) })

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	schema := "agenda_test_" + randomHex(t, 8)
	if _, err := admin.NewRaw("CREATE SCHEMA " + schema).Exec(ctx); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	t.Cleanup(func() {
		_, _ = admin.NewRaw("DROP SCHEMA " + schema + " CASCADE").Exec(context.Background())
	})

	u, err := url.Parse(databaseURL)
	if err != nil {
		t.Fatalf("parse database url: %v", err)
	}
	q := u.Query()
	q.Set("search_path", schema)
	u.RawQuery = q.Encode()

	db, err := Open(u.String(), PoolConfig{MaxOpenConns: conns, MaxIdleConns: conns})
	if err != nil {
		t.Fatalf("Open schema pool: %v", err)
	}
	t.Cleanup(func() { _ = Close(db) })

	err = db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := NewMigrator(tx, migrations.FS).Up(ctx)
		return err
	})
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestPostgresIntegration_ConcurrentWritersNeverOverlap(t *testing.T) {
	db := committedSchema(t, 8)
	repo := NewCalendarRepo(db)
	ctx := context.Background()

	const writers = 24
	base := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		start := base
		if i%2 == 1 {
			start = base.Add(30 * time.Minute)
		}
		number := fmt.Sprintf("BOOK-%08d", i)

		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repo.InCalendarTransaction(ctx, func(ctx context.Context, tx store.CalendarTx) error {
				b := integrationBooking(uuid.NewString(), number, start, 60)
				free, err := tx.IsSlotAvailable(ctx, b.Interval(), uuid.Nil)
				if err != nil {
					return err
				}
				if !free {
					return store.ErrConflict
				}
				_, err = tx.CreateBooking(ctx, b)
				return err
			})
		}()
	}
	wg.Wait()
	close(errs)

	created := 0
	for err := range errs {
		switch {
		case err == nil:
			created++
		case errors.Is(err, store.ErrConflict):
		default:
			t.Fatalf("writer error: %v", err)
		}
	}
	if created != 1 {
		t.Fatalf("created = %d, want 1", created)
	}

	rows, err := repo.BookingsInRange(ctx, base.Add(-time.Hour), base.Add(3*time.Hour), false)
	if err != nil {
		t.Fatalf("BookingsInRange error: %v", err)
	}
	assertNoOverlap(t, rows)
}

func assertNoOverlap(t *testing.T, rows []domain.Booking) {
	t.Helper()
	for i := range rows {
		for j := i + 1; j < len(rows); j++ {
			if rows[i].Interval().Overlaps(rows[j].Interval()) {
				t.Fatalf("%s [%s) overlaps %s [%s)", rows[i].Number, rows[i].StartAt, rows[j].Number, rows[j].StartAt)
			}
		}
	}
}
