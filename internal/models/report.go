package models

import (
	"time"

	"github.com/google/uuid"
)

// DailyReport is the assembled view of one day's rollup, grouped by lesson
// for display and email rendering. NoActivity distinguishes "nothing
// happened today" from an error.
type DailyReport struct {
	StudentID           uuid.UUID      `json:"student_id"`
	StudentName         string         `json:"student_name"`
	Date                time.Time      `json:"date"`
	TotalTimeSpent      int            `json:"total_time_spent"`
	ReadingTimeSeconds  int            `json:"reading_time_seconds"`
	WordsRead           int            `json:"words_read"`
	AverageReadingSpeed float64        `json:"average_reading_speed"`
	CompletedActivities int            `json:"completed_activities"`
	NoActivity          bool           `json:"no_activity"`
	Lessons             []ReportLesson `json:"lessons"`
}

type ReportLesson struct {
	LessonTitle string           `json:"lesson_title"`
	Activities  []ReportActivity `json:"activities"`
}

type ReportActivity struct {
	ActivityID  uuid.UUID `json:"activity_id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Score       float64   `json:"score"`
	CompletedAt time.Time `json:"completed_at"`
}

// WeeklyReport aggregates the trailing 7-day window ending at EndDate.
// Days without a rollup are absent from the breakdown.
type WeeklyReport struct {
	StudentID           uuid.UUID      `json:"student_id"`
	StudentName         string         `json:"student_name"`
	StartDate           time.Time      `json:"start_date"`
	EndDate             time.Time      `json:"end_date"`
	TotalTimeSpent      int            `json:"total_time_spent"`
	ReadingTimeSeconds  int            `json:"reading_time_seconds"`
	WordsRead           int            `json:"words_read"`
	AverageReadingSpeed float64        `json:"average_reading_speed"`
	CompletedActivities int            `json:"completed_activities"`
	Breakdown           []DayBreakdown `json:"breakdown"`
}

type DayBreakdown struct {
	Day                 time.Time `json:"day"`
	TotalTimeSpent      int       `json:"total_time_spent"`
	ReadingTimeSeconds  int       `json:"reading_time_seconds"`
	WordsRead           int       `json:"words_read"`
	CompletedActivities int       `json:"completed_activities"`
}

// AdhocActivity is a client-supplied activity summary used when a parent
// email is rendered directly from the request payload instead of a rollup.
type AdhocActivity struct {
	ActivityID      uuid.UUID `json:"activity_id"`
	Title           string    `json:"title"`
	DurationSeconds int       `json:"duration_seconds"`
	Outcome         string    `json:"outcome"`
}
