package store

import "context"

// ConfigRepository reads keyed configuration documents. ConfigValue returns
// ErrNotFound for unknown keys.
type ConfigRepository interface {
	ConfigValue(ctx context.Context, key string) (string, error)
	SetConfigValue(ctx context.Context, key, value string) error
}
