package timeutil

import "time"

// DayBucket normalizes a timestamp to midnight in its own location. The
// result is the grouping key for daily aggregation and is stored as a full
// timestamp so range queries work for the weekly window.
func DayBucket(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// WeekStart returns the first day of the trailing 7-day window ending at
// end (inclusive).
func WeekStart(end time.Time) time.Time {
	return DayBucket(end).AddDate(0, 0, -6)
}

// SameDay reports whether two timestamps fall in the same day bucket.
func SameDay(a, b time.Time) bool {
	return DayBucket(a).Equal(DayBucket(b))
}
