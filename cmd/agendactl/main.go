// Command agendactl runs maintenance tasks against the agenda database:
// migrations, business hours and read-only calendar queries.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"

	"agenda/backend/internal/config"
	"agenda/backend/internal/domain"
	"agenda/backend/internal/service/audit"
	"agenda/backend/internal/service/availability"
	"agenda/backend/internal/store"
	"agenda/backend/internal/store/memory"
	"agenda/backend/internal/store/postgres"
	"agenda/backend/migrations"
)

// backend is what a subcommand needs from storage. db is nil for the
// in-memory driver.
type backend struct {
	cal      store.Calendar
	settings store.ConfigRepository
	db       *bun.DB
	close    func()
}

type app struct {
	out        io.Writer
	log        *slog.Logger
	load       func() (config.Config, error)
	open       func(cfg config.Config) (*backend, error)
	migrations fs.FS
}

func main() {
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	a := &app{out: os.Stdout, log: log, load: config.Load, open: openBackend, migrations: migrations.FS}

	if err := newRootCmd(a).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "agendactl",
		Short:        "Agenda maintenance tool",
		SilenceUsage: true,
	}
	rootCmd.SetOut(a.out)

	rootCmd.AddCommand(migrateCmd(a))
	rootCmd.AddCommand(hoursCmd(a))
	rootCmd.AddCommand(slotsCmd(a))
	rootCmd.AddCommand(historyCmd(a))
	return rootCmd
}

func openBackend(cfg config.Config) (*backend, error) {
	if cfg.StorageDriver == config.StorageMemory {
		st := memory.New()
		return &backend{cal: st, settings: st, close: func() {}}, nil
	}
	db, err := postgres.Open(cfg.DatabaseURL, postgres.PoolConfig{
		MaxOpenConns:    2,
		MaxIdleConns:    1,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
	})
	if err != nil {
		return nil, err
	}
	return &backend{
		cal:      postgres.NewCalendarRepo(db),
		settings: postgres.NewConfigRepo(db),
		db:       db,
		close:    func() { _ = postgres.Close(db) },
	}, nil
}

func (a *app) connect() (config.Config, *backend, error) {
	cfg, err := a.load()
	if err != nil {
		return config.Config{}, nil, err
	}
	b, err := a.open(cfg)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("open storage: %w", err)
	}
	return cfg, b, nil
}

// migrate runs fn with a migrator bound to a single transaction, so a
// failing script leaves neither tables nor a schema_migrations row behind.
func (a *app) migrate(ctx context.Context, fn func(ctx context.Context, m *postgres.Migrator) error) error {
	_, b, err := a.connect()
	if err != nil {
		return err
	}
	defer b.close()
	if b.db == nil {
		return errors.New("migrations need the postgres storage driver")
	}
	return b.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, postgres.NewMigrator(tx, a.migrations))
	})
}

func migrateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			var ran []string
			err := a.migrate(cmd.Context(), func(ctx context.Context, m *postgres.Migrator) error {
				var err error
				ran, err = m.Up(ctx)
				return err
			})
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			for _, name := range ran {
				fmt.Fprintf(a.out, "applied %s\n", name)
			}
			fmt.Fprintf(a.out, "Applied %d migration(s).\n", len(ran))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Revert the most recent migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			var name string
			err := a.migrate(cmd.Context(), func(ctx context.Context, m *postgres.Migrator) error {
				var err error
				name, err = m.Down(ctx)
				return err
			})
			if err != nil {
				return fmt.Errorf("rollback failed: %w", err)
			}
			if name == "" {
				fmt.Fprintln(a.out, "Nothing to revert.")
				return nil
			}
			fmt.Fprintf(a.out, "reverted %s\n", name)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			var statuses []postgres.MigrationStatus
			err := a.migrate(cmd.Context(), func(ctx context.Context, m *postgres.Migrator) error {
				var err error
				statuses, err = m.Status(ctx)
				return err
			})
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}
			fmt.Fprintf(a.out, "%-40s %-10s %s\n", "NAME", "STATUS", "APPLIED AT")
			for _, s := range statuses {
				status, appliedAt := "pending", ""
				if s.AppliedAt != nil {
					status = "applied"
					appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
				}
				fmt.Fprintf(a.out, "%-40s %-10s %s\n", s.Name, status, appliedAt)
			}
			return nil
		},
	})

	return cmd
}

func hoursCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hours",
		Short: "Manage weekly business hours",
	}

	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Store the weekly business hours from a YAML, JSON or TOML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			if file == "" {
				return fmt.Errorf("--file is required")
			}
			schedule, err := availability.NewFileHours(file).WeeklySchedule(cmd.Context())
			if err != nil {
				return err
			}
			for _, wd := range weekdays() {
				if _, ok := schedule[strings.ToLower(wd.String())]; !ok {
					continue
				}
				if _, err := schedule.Day(wd); err != nil {
					return err
				}
			}
			raw, err := json.Marshal(schedule)
			if err != nil {
				return err
			}

			_, b, err := a.connect()
			if err != nil {
				return err
			}
			defer b.close()

			if err := b.settings.SetConfigValue(cmd.Context(), domain.ScheduleConfigKey, string(raw)); err != nil {
				return fmt.Errorf("store business hours: %w", err)
			}
			fmt.Fprintf(a.out, "Stored business hours under %s.\n", domain.ScheduleConfigKey)
			return nil
		},
	}
	setCmd.Flags().String("file", "", "Path to the weekly hours document")
	cmd.AddCommand(setCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective hours for each weekday",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, b, err := a.connect()
			if err != nil {
				return err
			}
			defer b.close()

			calc := newCalculator(cfg, b, a.log)
			// any week works; only the weekday matters
			monday := time.Date(2024, time.January, 1, 0, 0, 0, 0, cfg.Location)
			for i := 0; i < 7; i++ {
				day := monday.AddDate(0, 0, i)
				h := calc.HoursFor(cmd.Context(), day)
				if !h.Enabled {
					fmt.Fprintf(a.out, "%-10s closed\n", day.Weekday())
					continue
				}
				fmt.Fprintf(a.out, "%-10s %s-%s\n", day.Weekday(), clock(h.OpenMinute), clock(h.CloseMinute))
			}
			return nil
		},
	})

	return cmd
}

func slotsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slots",
		Short: "List free start times for a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			date, _ := cmd.Flags().GetString("date")
			duration, _ := cmd.Flags().GetInt("duration")
			if duration <= 0 {
				return fmt.Errorf("--duration must be positive")
			}

			cfg, b, err := a.connect()
			if err != nil {
				return err
			}
			defer b.close()

			day, err := time.ParseInLocation(time.DateOnly, date, cfg.Location)
			if err != nil {
				return fmt.Errorf("--date: %w", err)
			}
			slots, err := newCalculator(cfg, b, a.log).ComputeSlots(cmd.Context(), day, duration)
			if err != nil {
				return err
			}
			if len(slots) == 0 {
				fmt.Fprintln(a.out, "No free slots.")
				return nil
			}
			for _, s := range slots {
				fmt.Fprintln(a.out, s.In(cfg.Location).Format("15:04"))
			}
			return nil
		},
	}
	cmd.Flags().String("date", time.Now().Format(time.DateOnly), "Day to inspect (YYYY-MM-DD)")
	cmd.Flags().Int("duration", 60, "Service duration in minutes")
	return cmd
}

func historyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print the audit trail of a booking",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, _ := cmd.Flags().GetString("booking")
			desc, _ := cmd.Flags().GetBool("desc")
			id, err := uuid.Parse(raw)
			if err != nil {
				return fmt.Errorf("--booking: %w", err)
			}

			cfg, b, err := a.connect()
			if err != nil {
				return err
			}
			defer b.close()

			order := store.OrderAscending
			if desc {
				order = store.OrderDescending
			}
			entries, err := audit.NewRecorder(b.cal).HistoryFor(cmd.Context(), id, order)
			if err != nil {
				return err
			}
			for _, e := range entries {
				payload, _ := json.Marshal(e.Payload)
				fmt.Fprintf(a.out, "%s  %-16s %-8s %s\n",
					e.CreatedAt.In(cfg.Location).Format(time.RFC3339), e.EventType, e.Actor, payload)
			}
			return nil
		},
	}
	cmd.Flags().String("booking", "", "Booking ID")
	cmd.Flags().Bool("desc", false, "Newest entries first")
	return cmd
}

func newCalculator(cfg config.Config, b *backend, log *slog.Logger) *availability.Calculator {
	var hours availability.FirstOf
	if cfg.ScheduleFile != "" {
		hours = append(hours, availability.NewFileHours(cfg.ScheduleFile))
	}
	hours = append(hours, availability.NewStoredHours(b.settings))
	return availability.NewCalculator(b.cal, hours, cfg.Location, log)
}

func weekdays() []time.Weekday {
	return []time.Weekday{
		time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
		time.Friday, time.Saturday, time.Sunday,
	}
}

func clock(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}
