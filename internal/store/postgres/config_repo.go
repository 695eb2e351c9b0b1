package postgres

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

type configEntry struct {
	bun.BaseModel `bun:"table:app_config"`

	Key       string    `bun:"key,pk"`
	Value     string    `bun:"value,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// ConfigRepo stores keyed configuration documents such as the weekly
// business hours.
type ConfigRepo struct {
	db bun.IDB
}

func NewConfigRepo(db bun.IDB) *ConfigRepo {
	return &ConfigRepo{db: db}
}

func (r *ConfigRepo) ConfigValue(ctx context.Context, key string) (string, error) {
	var e configEntry
	if err := r.db.NewSelect().Model(&e).Where("key = ?", key).Limit(1).Scan(ctx); err != nil {
		return "", notFound(err)
	}
	return e.Value, nil
}

func (r *ConfigRepo) SetConfigValue(ctx context.Context, key, value string) error {
	e := configEntry{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	_, err := r.db.NewInsert().
		Model(&e).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}
