package schedule

import (
	"testing"
	"time"
)

func mustLoad(t *testing.T, name string) *time.Location {
	t.Helper()

	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("load location %s: %v", name, err)
	}
	return loc
}

func TestIsInWeeklyWindow(t *testing.T) {
	t.Parallel()

	la := mustLoad(t, "America/Los_Angeles")
	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{name: "window start", at: time.Date(2026, time.October, 18, 16, 0, 0, 0, la), want: true},
		{name: "last minute inclusive", at: time.Date(2026, time.October, 18, 16, 10, 59, 0, la), want: true},
		{name: "after window", at: time.Date(2026, time.October, 18, 16, 11, 0, 0, la), want: false},
		{name: "hour before", at: time.Date(2026, time.October, 18, 15, 59, 0, 0, la), want: false},
		{name: "wrong weekday", at: time.Date(2026, time.October, 19, 16, 5, 0, 0, la), want: false},
		{name: "same instant seen in UTC", at: time.Date(2026, time.October, 18, 23, 5, 0, 0, time.UTC), want: true},
		{name: "winter offset", at: time.Date(2026, time.December, 6, 16, 5, 0, 0, la), want: true},
		{name: "winter instant at summer offset", at: time.Date(2026, time.December, 6, 23, 5, 0, 0, time.UTC), want: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := IsInWeeklyWindow(tc.at, la, time.Sunday, DefaultStartHour, DefaultWindowMinutes)
			if got != tc.want {
				t.Fatalf("unexpected result at %s: got=%v want=%v", tc.at, got, tc.want)
			}
		})
	}
}

func TestWindowID_StableWithinWindow(t *testing.T) {
	t.Parallel()

	la := mustLoad(t, "America/Los_Angeles")
	start := time.Date(2026, time.October, 18, 16, 0, 0, 0, la)

	want := "auction-2026-10-18-1600PT"
	for _, offset := range []time.Duration{0, 3 * time.Minute, 9*time.Minute + 59*time.Second} {
		if got := WindowID("auction", start.Add(offset), la); got != want {
			t.Fatalf("unexpected window id at +%s: got=%q want=%q", offset, got, want)
		}
	}

	nextWeek := WindowID("auction", start.AddDate(0, 0, 7), la)
	if nextWeek == want {
		t.Fatalf("window ids a week apart must differ, both %q", want)
	}
}

func TestWindowID_UsesLocalCivilTime(t *testing.T) {
	t.Parallel()

	la := mustLoad(t, "America/Los_Angeles")
	instant := time.Date(2026, time.March, 9, 0, 30, 0, 0, time.UTC)

	if got := WindowID("weekly", instant, la); got != "weekly-2026-03-08-1700PT" {
		t.Fatalf("unexpected window id: %q", got)
	}
	if got := WindowID("weekly", instant, nil); got != "weekly-2026-03-09-0000PT" {
		t.Fatalf("unexpected utc window id: %q", got)
	}
}

func TestShouldRun(t *testing.T) {
	t.Parallel()

	marker := "auction-2026-10-18-1600PT"
	if ShouldRun(&marker, marker) {
		t.Fatalf("marker equal to window id must not run")
	}
	if !ShouldRun(nil, marker) {
		t.Fatalf("missing marker must run")
	}
	previous := "auction-2026-10-11-1600PT"
	if !ShouldRun(&previous, marker) {
		t.Fatalf("older marker must run")
	}
}

func TestWeeklyContains(t *testing.T) {
	t.Parallel()

	la := mustLoad(t, "America/Los_Angeles")
	w := DefaultWeekly(la)
	w.Weekday = time.Wednesday
	w.StartHour = 9
	w.WindowMinutes = 0

	if !w.Contains(time.Date(2026, time.October, 21, 9, 0, 30, 0, la)) {
		t.Fatalf("expected 09:00 Wednesday to be in window")
	}
	if w.Contains(time.Date(2026, time.October, 21, 9, 1, 0, 0, la)) {
		t.Fatalf("expected 09:01 Wednesday to be outside a zero-minute window")
	}
}

func TestParseWeekday(t *testing.T) {
	t.Parallel()

	for input, want := range map[string]time.Weekday{
		"sunday": time.Sunday, "Sun": time.Sunday, "0": time.Sunday,
		" WEDNESDAY ": time.Wednesday, "sat": time.Saturday, "6": time.Saturday,
	} {
		got, err := ParseWeekday(input)
		if err != nil {
			t.Fatalf("parse %q: %v", input, err)
		}
		if got != want {
			t.Fatalf("parse %q: got=%s want=%s", input, got, want)
		}
	}

	if _, err := ParseWeekday("funday"); err == nil {
		t.Fatalf("expected error for invalid weekday")
	}
}
