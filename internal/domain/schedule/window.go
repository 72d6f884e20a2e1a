package schedule

import (
	"fmt"
	"strings"
	"time"
)

const (
	DefaultStartHour     = 16
	DefaultWindowMinutes = 10

	// windowIDSuffix is kept for every zone so ids stay comparable with stored markers.
	windowIDSuffix = "PT"
)

// Weekly describes a recurring local-time window, e.g. Sunday 16:00-16:10.
type Weekly struct {
	Weekday       time.Weekday
	StartHour     int
	WindowMinutes int
	Location      *time.Location
}

// DefaultWeekly is Sunday 16:00 for ten minutes in the given zone.
func DefaultWeekly(loc *time.Location) Weekly {
	return Weekly{
		Weekday:       time.Sunday,
		StartHour:     DefaultStartHour,
		WindowMinutes: DefaultWindowMinutes,
		Location:      loc,
	}
}

func (w Weekly) Contains(now time.Time) bool {
	return IsInWeeklyWindow(now, w.Location, w.Weekday, w.StartHour, w.WindowMinutes)
}

// IsInWeeklyWindow reports whether now, seen as civil time in loc, is on weekday
// during hour startHour with the minute in [0, windowMinutes].
func IsInWeeklyWindow(now time.Time, loc *time.Location, weekday time.Weekday, startHour, windowMinutes int) bool {
	local := now.In(locationOrUTC(loc))
	if local.Weekday() != weekday || local.Hour() != startHour {
		return false
	}
	return local.Minute() <= windowMinutes
}

// WindowID names the hour-aligned window containing now, formatted as
// <prefix>-YYYY-MM-DD-HH00PT. Every tick inside one window yields the same id.
func WindowID(prefix string, now time.Time, loc *time.Location) string {
	local := now.In(locationOrUTC(loc))
	return fmt.Sprintf("%s-%04d-%02d-%02d-%02d00%s",
		strings.TrimSpace(prefix),
		local.Year(),
		int(local.Month()),
		local.Day(),
		local.Hour(),
		windowIDSuffix,
	)
}

// ShouldRun is the idempotency guard: a job runs only when the persisted
// marker differs from the window id computed for this tick.
func ShouldRun(marker *string, windowID string) bool {
	if marker == nil {
		return true
	}
	return *marker != windowID
}

// ParseWeekday accepts english day names, three letter abbreviations or 0-6 (Sunday=0).
func ParseWeekday(v string) (time.Weekday, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	for day := time.Sunday; day <= time.Saturday; day++ {
		name := strings.ToLower(day.String())
		if value == name || value == name[:3] || value == fmt.Sprintf("%d", int(day)) {
			return day, nil
		}
	}
	return time.Sunday, fmt.Errorf("invalid weekday %q", v)
}

func locationOrUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
