package models

import (
	"time"

	"github.com/google/uuid"
)

// ActivityLabel carries the display names joined through the content
// hierarchy (activity → lesson → group → category).
type ActivityLabel struct {
	Title        string `json:"title"`
	LessonTitle  string `json:"lesson_title"`
	GroupName    string `json:"group_name"`
	CategoryName string `json:"category_name"`
}

// ActivityCompletion is one row of a student's completion history, the
// source of truth the rollup merger filters by day.
type ActivityCompletion struct {
	ActivityID  uuid.UUID `json:"activity_id"`
	CompletedAt time.Time `json:"completed_at"`
	Score       float64   `json:"score"`
}
