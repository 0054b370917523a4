package models

import (
	"time"

	"github.com/google/uuid"
)

// DailyStatistics is the per-student-per-day rollup document. Exactly one
// exists per (student, day); it is created lazily on the first session close
// of the day and merged into on every subsequent close.
type DailyStatistics struct {
	ID                      uuid.UUID         `json:"id"`
	StudentID               uuid.UUID         `json:"student_id"`
	Day                     time.Time         `json:"day"`
	TotalAppTimeSeconds     int               `json:"total_app_time_seconds"`
	TotalReadingTimeSeconds int               `json:"total_reading_time_seconds"`
	TotalWordsRead          int               `json:"total_words_read"`
	AverageReadingSpeed     float64           `json:"average_reading_speed"`
	CompletedActivities     int               `json:"completed_activities"`
	Completions             []CompletionEntry `json:"completions"`
	LastActivityID          *uuid.UUID        `json:"last_activity_id,omitempty"`
	EmailSent               bool              `json:"email_sent"`
	EmailSentAt             *time.Time        `json:"email_sent_at,omitempty"`
}

// CompletionEntry records one activity completed on the rollup's day. The
// completions list never holds two entries for the same activity id.
type CompletionEntry struct {
	ActivityID  uuid.UUID `json:"activity_id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Score       float64   `json:"score"`
	CompletedAt time.Time `json:"completed_at"`
}
