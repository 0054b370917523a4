package timeutil

import (
	"testing"
	"time"
)

func TestDayBucket(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("failed to load location: %v", err)
	}

	tests := []struct {
		name  string
		input time.Time
		want  time.Time
	}{
		{
			"strips time of day",
			time.Date(2026, 3, 14, 15, 9, 26, 535, time.UTC),
			time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		},
		{
			"already midnight",
			time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		},
		{
			"preserves location",
			time.Date(2026, 3, 14, 23, 59, 59, 0, loc),
			time.Date(2026, 3, 14, 0, 0, 0, 0, loc),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := DayBucket(tc.input)
			if !got.Equal(tc.want) {
				t.Errorf("DayBucket(%v) = %v, want %v", tc.input, got, tc.want)
			}
			if got.Location() != tc.input.Location() {
				t.Errorf("DayBucket changed location from %v to %v", tc.input.Location(), got.Location())
			}
		})
	}
}

func TestWeekStart(t *testing.T) {
	end := time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC)
	want := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)

	got := WeekStart(end)
	if !got.Equal(want) {
		t.Errorf("WeekStart(%v) = %v, want %v", end, got, want)
	}

	// Window must span exactly 7 day buckets inclusive.
	days := 0
	for d := got; !d.After(DayBucket(end)); d = d.AddDate(0, 0, 1) {
		days++
	}
	if days != 7 {
		t.Errorf("expected 7-day window, got %d days", days)
	}
}

func TestSameDay(t *testing.T) {
	a := time.Date(2026, 3, 14, 0, 0, 1, 0, time.UTC)
	b := time.Date(2026, 3, 14, 23, 59, 59, 0, time.UTC)
	c := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	if !SameDay(a, b) {
		t.Errorf("expected %v and %v to share a day bucket", a, b)
	}
	if SameDay(b, c) {
		t.Errorf("expected %v and %v to be in different day buckets", b, c)
	}
}
