package stats

import (
	"testing"
	"time"
)

func TestElapsedSeconds(t *testing.T) {
	start := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		end  time.Time
		want int
	}{
		{"whole seconds", start.Add(125 * time.Second), 125},
		{"truncates sub-second remainder", start.Add(125*time.Second + 900*time.Millisecond), 125},
		{"zero duration", start, 0},
		{"clock skew clamps to zero", start.Add(-30 * time.Second), 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ElapsedSeconds(start, tc.end); got != tc.want {
				t.Errorf("ElapsedSeconds = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestReadingSpeed(t *testing.T) {
	tests := []struct {
		name    string
		words   int
		elapsed int
		want    float64
	}{
		{"200 words in 120s is 100 wpm", 200, 120, 100.0},
		{"rounds to two decimals", 100, 90, 66.67},
		{"zero words", 0, 120, 0},
		{"zero elapsed", 200, 0, 0},
		{"both zero", 0, 0, 0},
		{"one word per minute", 1, 60, 1.0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ReadingSpeed(tc.words, tc.elapsed); got != tc.want {
				t.Errorf("ReadingSpeed(%d, %d) = %v, want %v", tc.words, tc.elapsed, got, tc.want)
			}
		})
	}
}

func TestRound2(t *testing.T) {
	if got := Round2(66.666666); got != 66.67 {
		t.Errorf("Round2(66.666666) = %v, want 66.67", got)
	}
	if got := Round2(100.0); got != 100.0 {
		t.Errorf("Round2(100.0) = %v, want 100.0", got)
	}
	if got := Round2(0.005); got != 0.01 {
		t.Errorf("Round2(0.005) = %v, want 0.01", got)
	}
}
