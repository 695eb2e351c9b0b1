package postgres

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// Migrator applies goose-formatted SQL files in name order and records them
// in schema_migrations. It does not open its own transaction; wrap it in
// one to make a run atomic.
type Migrator struct {
	db   bun.IDB
	fsys fs.FS
}

type MigrationStatus struct {
	Name      string
	AppliedAt *time.Time
}

type migrationRecord struct {
	bun.BaseModel `bun:"table:schema_migrations"`

	Name      string    `bun:"name,pk"`
	AppliedAt time.Time `bun:"applied_at,notnull"`
}

func NewMigrator(db bun.IDB, fsys fs.FS) *Migrator {
	return &Migrator{db: db, fsys: fsys}
}

func (m *Migrator) ensureTable(ctx context.Context) error {
	_, err := m.db.NewCreateTable().
		Model((*migrationRecord)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

func (m *Migrator) files() ([]string, error) {
	names, err := fs.Glob(m.fsys, "*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

func (m *Migrator) applied(ctx context.Context) (map[string]time.Time, error) {
	var rows []migrationRecord
	if err := m.db.NewSelect().Model(&rows).Scan(ctx); err != nil {
		return nil, err
	}
	out := make(map[string]time.Time, len(rows))
	for _, r := range rows {
		out[r.Name] = r.AppliedAt
	}
	return out, nil
}

// Up applies every pending migration and returns the names it applied.
func (m *Migrator) Up(ctx context.Context) ([]string, error) {
	if err := m.ensureTable(ctx); err != nil {
		return nil, err
	}
	names, err := m.files()
	if err != nil {
		return nil, err
	}
	done, err := m.applied(ctx)
	if err != nil {
		return nil, err
	}

	var ran []string
	for _, name := range names {
		if _, ok := done[name]; ok {
			continue
		}
		b, err := fs.ReadFile(m.fsys, name)
		if err != nil {
			return ran, err
		}
		upSQL, _, err := splitGoose(string(b))
		if err != nil {
			return ran, fmt.Errorf("%s: %w", name, err)
		}
		if err := m.exec(ctx, upSQL); err != nil {
			return ran, fmt.Errorf("%s: %w", name, err)
		}
		rec := migrationRecord{Name: name, AppliedAt: time.Now().UTC()}
		if _, err := m.db.NewInsert().Model(&rec).Exec(ctx); err != nil {
			return ran, err
		}
		ran = append(ran, name)
	}
	return ran, nil
}

// Down reverts the most recently applied migration. It returns "" when
// nothing is applied.
func (m *Migrator) Down(ctx context.Context) (string, error) {
	if err := m.ensureTable(ctx); err != nil {
		return "", err
	}
	var last migrationRecord
	err := m.db.NewSelect().
		Model(&last).
		OrderExpr("name DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return "", nil
		}
		return "", err
	}

	b, err := fs.ReadFile(m.fsys, last.Name)
	if err != nil {
		return "", err
	}
	_, downSQL, err := splitGoose(string(b))
	if err != nil {
		return "", fmt.Errorf("%s: %w", last.Name, err)
	}
	if err := m.exec(ctx, downSQL); err != nil {
		return "", fmt.Errorf("%s: %w", last.Name, err)
	}
	if _, err := m.db.NewDelete().Model(&last).WherePK().Exec(ctx); err != nil {
		return "", err
	}
	return last.Name, nil
}

func (m *Migrator) Status(ctx context.Context) ([]MigrationStatus, error) {
	if err := m.ensureTable(ctx); err != nil {
		return nil, err
	}
	names, err := m.files()
	if err != nil {
		return nil, err
	}
	done, err := m.applied(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]MigrationStatus, 0, len(names))
	for _, name := range names {
		st := MigrationStatus{Name: name}
		if at, ok := done[name]; ok {
			st.AppliedAt = &at
		}
		out = append(out, st)
	}
	return out, nil
}

func (m *Migrator) exec(ctx context.Context, script string) error {
	for _, stmt := range splitSQLStatements(script) {
		if _, err := m.db.NewRaw(stmt).Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

func splitGoose(sql string) (up, down string, err error) {
	const upMarker = "-- +goose Up"
	const downMarker = "-- +goose Down"

	upIdx := strings.Index(sql, upMarker)
	if upIdx < 0 {
		return "", "", fmt.Errorf("missing goose up marker")
	}
	afterUp := strings.TrimLeft(sql[upIdx+len(upMarker):], "\r\n")

	downIdx := strings.Index(afterUp, downMarker)
	if downIdx < 0 {
		return strings.TrimSpace(afterUp), "", nil
	}
	return strings.TrimSpace(afterUp[:downIdx]), strings.TrimSpace(afterUp[downIdx+len(downMarker):]), nil
}

// splitSQLStatements splits on ';'. Migration bodies must not contain
// semicolons inside literals or function bodies.
func splitSQLStatements(sql string) []string {
	parts := strings.Split(sql, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		s := strings.TrimSpace(p)
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}
