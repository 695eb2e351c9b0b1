package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Fallback window used when a weekday has no usable configuration.
const (
	FallbackOpen  = "09:00"
	FallbackClose = "19:00"
)

// ScheduleConfigKey is where the weekly document lives in stored config.
const ScheduleConfigKey = "schedule.weekly"

// DayHours is one weekday entry of the business hours document. Enabled is
// required; an entry without it is unusable, not closed.
type DayHours struct {
	Enabled   *bool  `json:"enabled" mapstructure:"enabled"`
	StartTime string `json:"startTime" mapstructure:"startTime"`
	EndTime   string `json:"endTime" mapstructure:"endTime"`
}

// WeeklySchedule is keyed by lowercase English weekday name.
type WeeklySchedule map[string]DayHours

func ParseWeeklySchedule(raw []byte) (WeeklySchedule, error) {
	var w WeeklySchedule
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("parse weekly schedule: %w", err)
	}
	out := make(WeeklySchedule, len(w))
	for k, v := range w {
		out[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return out, nil
}

// OpeningHours is a resolved day window as minutes after local midnight.
type OpeningHours struct {
	Enabled     bool
	OpenMinute  int
	CloseMinute int
}

func FallbackHours() OpeningHours {
	open, _ := parseClock(FallbackOpen)
	closing, _ := parseClock(FallbackClose)
	return OpeningHours{Enabled: true, OpenMinute: open, CloseMinute: closing}
}

// Day resolves the hours for wd. It fails when the day is missing or its
// times cannot be used; a disabled day never fails.
func (w WeeklySchedule) Day(wd time.Weekday) (OpeningHours, error) {
	d, ok := w[strings.ToLower(wd.String())]
	if !ok {
		return OpeningHours{}, fmt.Errorf("no hours configured for %s", strings.ToLower(wd.String()))
	}
	if d.Enabled == nil {
		return OpeningHours{}, fmt.Errorf("%s enabled is missing", strings.ToLower(wd.String()))
	}
	if !*d.Enabled {
		return OpeningHours{}, nil
	}
	open, err := parseClock(d.StartTime)
	if err != nil {
		return OpeningHours{}, fmt.Errorf("%s startTime: %w", strings.ToLower(wd.String()), err)
	}
	closing, err := parseClock(d.EndTime)
	if err != nil {
		return OpeningHours{}, fmt.Errorf("%s endTime: %w", strings.ToLower(wd.String()), err)
	}
	if closing <= open {
		return OpeningHours{}, fmt.Errorf("%s endTime must be after startTime", strings.ToLower(wd.String()))
	}
	return OpeningHours{Enabled: true, OpenMinute: open, CloseMinute: closing}, nil
}

// HoursFor resolves wd, substituting the fallback window on any problem.
// The error describes why the fallback was used.
func (w WeeklySchedule) HoursFor(wd time.Weekday) (OpeningHours, error) {
	h, err := w.Day(wd)
	if err != nil {
		return FallbackHours(), err
	}
	return h, nil
}

func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// Window returns the business hours of the calendar day of date in loc.
func (h OpeningHours) Window(date time.Time, loc *time.Location) Interval {
	y, m, d := date.Date()
	return Interval{
		Start: time.Date(y, m, d, 0, h.OpenMinute, 0, 0, loc),
		End:   time.Date(y, m, d, 0, h.CloseMinute, 0, 0, loc),
	}
}
