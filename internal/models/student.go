package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
)

type Student struct {
	ID          uuid.UUID           `json:"id"`
	Role        string              `json:"role"`
	Email       string              `json:"email"`
	FullName    string              `json:"full_name"`
	ParentEmail *string             `json:"parent_email"`
	ParentName  *string             `json:"parent_name"`
	LastSession LastSessionSnapshot `json:"last_session"`
	CreatedAt   time.Time           `json:"created_at"`
}

// LastSessionSnapshot is the quick-view summary of the most recent app
// session. It is replaced wholesale on every app-session close, never
// appended to.
type LastSessionSnapshot struct {
	TotalDurationSeconds int                `json:"total_duration_seconds"`
	Activities           []SnapshotActivity `json:"activities"`
	StartedAt            *time.Time         `json:"started_at,omitempty"`
	UpdatedAt            *time.Time         `json:"updated_at,omitempty"`
}

type SnapshotActivity struct {
	ActivityID      uuid.UUID `json:"activity_id"`
	Title           string    `json:"title"`
	DurationSeconds int       `json:"duration_seconds"`
	CompletedAt     time.Time `json:"completed_at"`
	Outcome         string    `json:"outcome"`
}

// LifetimeTotals sums a student's daily statistics across all days.
type LifetimeTotals struct {
	TotalAppTimeSeconds     int `json:"total_app_time_seconds"`
	TotalReadingTimeSeconds int `json:"total_reading_time_seconds"`
	TotalWordsRead          int `json:"total_words_read"`
	CompletedActivities     int `json:"completed_activities"`
}
