package models

import (
	"time"

	"github.com/google/uuid"
)

// AppSession covers one contiguous period a student has the app open.
// At most one open AppSession exists per student.
type AppSession struct {
	ID              uuid.UUID  `json:"id"`
	StudentID       uuid.UUID  `json:"student_id"`
	StartedAt       time.Time  `json:"started_at"`
	EndedAt         *time.Time `json:"ended_at,omitempty"`
	DurationSeconds int        `json:"duration_seconds"`
	Day             time.Time  `json:"day"`
	Open            bool       `json:"open"`
}

// ReadingSession covers one reading attempt on a single activity. At most
// one open ReadingSession exists per (student, activity) pair.
type ReadingSession struct {
	ID              uuid.UUID  `json:"id"`
	StudentID       uuid.UUID  `json:"student_id"`
	ActivityID      uuid.UUID  `json:"activity_id"`
	StartedAt       time.Time  `json:"started_at"`
	EndedAt         *time.Time `json:"ended_at,omitempty"`
	DurationSeconds int        `json:"duration_seconds"`
	WordCount       int        `json:"word_count"`
	ReadingSpeed    float64    `json:"reading_speed"`
	Day             time.Time  `json:"day"`
	Open            bool       `json:"open"`
}

// SessionEvent is broadcast to teacher dashboards when a student's session
// opens or closes.
type SessionEvent struct {
	Type            string    `json:"type"` // "app_started" | "app_closed" | "reading_started" | "reading_closed"
	StudentID       uuid.UUID `json:"student_id"`
	SessionID       uuid.UUID `json:"session_id"`
	DurationSeconds int       `json:"duration_seconds,omitempty"`
	At              time.Time `json:"at"`
}
