package availability

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"agenda/backend/internal/domain"
	"agenda/backend/internal/store"
)

// HoursSource supplies the weekly business hours document.
type HoursSource interface {
	WeeklySchedule(ctx context.Context) (domain.WeeklySchedule, error)
}

// StoredHours reads the document from the config table.
type StoredHours struct {
	repo store.ConfigRepository
	key  string
}

func NewStoredHours(repo store.ConfigRepository) *StoredHours {
	return &StoredHours{repo: repo, key: domain.ScheduleConfigKey}
}

func (s *StoredHours) WeeklySchedule(ctx context.Context) (domain.WeeklySchedule, error) {
	raw, err := s.repo.ConfigValue(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.key, err)
	}
	return domain.ParseWeeklySchedule([]byte(raw))
}

// FileHours reads the document from a YAML, JSON or TOML file. The file is
// read on every call so edits apply without a restart.
type FileHours struct {
	path string
}

func NewFileHours(path string) *FileHours {
	return &FileHours{path: path}
}

func (f *FileHours) WeeklySchedule(ctx context.Context) (domain.WeeklySchedule, error) {
	v := viper.New()
	v.SetConfigFile(f.path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read schedule file: %w", err)
	}
	var w domain.WeeklySchedule
	if err := v.Unmarshal(&w); err != nil {
		return nil, fmt.Errorf("decode schedule file: %w", err)
	}
	if len(w) == 0 {
		return nil, errors.New("schedule file is empty")
	}
	return w, nil
}

// FirstOf tries each source in order and returns the first document found.
type FirstOf []HoursSource

func (s FirstOf) WeeklySchedule(ctx context.Context) (domain.WeeklySchedule, error) {
	var errs []error
	for _, src := range s {
		w, err := src.WeeklySchedule(ctx)
		if err == nil {
			return w, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, errors.New("no business hours source configured")
	}
	return nil, errors.Join(errs...)
}
