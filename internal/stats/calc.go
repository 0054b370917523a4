package stats

import (
	"math"
	"time"
)

// ElapsedSeconds returns the whole seconds between start and end, clamped to
// zero. Clock skew can produce an end before start; that must never yield a
// negative duration.
func ElapsedSeconds(start, end time.Time) int {
	s := int(end.Sub(start) / time.Second)
	if s < 0 {
		return 0
	}
	return s
}

// ReadingSpeed returns words per minute rounded to two decimals. Zero words
// or zero elapsed time yields 0, never a division by zero.
func ReadingSpeed(wordCount, elapsedSeconds int) float64 {
	if wordCount == 0 || elapsedSeconds == 0 {
		return 0
	}
	return Round2(float64(wordCount) / (float64(elapsedSeconds) / 60))
}

// Round2 rounds to two decimal places.
func Round2(f float64) float64 {
	return math.Round(f*100) / 100
}
