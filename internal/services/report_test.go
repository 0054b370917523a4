package services

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"lexio-backend/internal/models"
)

func TestGroupEntriesByLesson(t *testing.T) {
	phonics := uuid.New()
	blending := uuid.New()
	sight := uuid.New()

	lessonTitles := map[uuid.UUID]string{
		phonics:  "Letter Sounds",
		blending: "Letter Sounds",
		sight:    "Sight Words",
	}
	lessonOf := func(id uuid.UUID) string { return lessonTitles[id] }

	entries := []models.CompletionEntry{
		{ActivityID: phonics, Title: "Phonics A", Score: 90},
		{ActivityID: sight, Title: "Sight Set 1", Score: 75},
		{ActivityID: blending, Title: "Blending CVC", Score: 80},
	}

	lessons := groupEntriesByLesson(entries, lessonOf)

	if len(lessons) != 2 {
		t.Fatalf("expected 2 lessons, got %d", len(lessons))
	}
	if lessons[0].LessonTitle != "Letter Sounds" {
		t.Errorf("expected first-seen lesson order, got %q first", lessons[0].LessonTitle)
	}
	if len(lessons[0].Activities) != 2 {
		t.Errorf("expected 2 activities under Letter Sounds, got %d", len(lessons[0].Activities))
	}
	if lessons[0].Activities[0].Title != "Phonics A" || lessons[0].Activities[1].Title != "Blending CVC" {
		t.Errorf("entry order within a lesson not preserved: %+v", lessons[0].Activities)
	}
}

func TestGroupEntriesByLesson_MissingLessonFallsBack(t *testing.T) {
	entries := []models.CompletionEntry{{ActivityID: uuid.New(), Title: "Orphan"}}
	lessons := groupEntriesByLesson(entries, func(uuid.UUID) string { return "" })

	if len(lessons) != 1 || lessons[0].LessonTitle != "Other activities" {
		t.Fatalf("expected placeholder lesson bucket, got %+v", lessons)
	}
}

func TestAssembleWeekly(t *testing.T) {
	studentID := uuid.New()
	end := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	start := end.AddDate(0, 0, -6)

	// 3 days with rollups inside a 7-day window.
	days := []*models.DailyStatistics{
		{Day: start, TotalAppTimeSeconds: 600, TotalReadingTimeSeconds: 120, TotalWordsRead: 200, CompletedActivities: 2},
		{Day: start.AddDate(0, 0, 2), TotalAppTimeSeconds: 300, TotalReadingTimeSeconds: 60, TotalWordsRead: 90, CompletedActivities: 1},
		{Day: end, TotalAppTimeSeconds: 900, TotalReadingTimeSeconds: 180, TotalWordsRead: 310, CompletedActivities: 3},
	}

	report := assembleWeekly(studentID, "Mina", start, end, days)

	if len(report.Breakdown) != 3 {
		t.Fatalf("expected exactly 3 breakdown rows, got %d", len(report.Breakdown))
	}
	if report.TotalTimeSpent != 1800 {
		t.Errorf("expected total time 1800, got %d", report.TotalTimeSpent)
	}
	if report.ReadingTimeSeconds != 360 {
		t.Errorf("expected reading time 360, got %d", report.ReadingTimeSeconds)
	}
	if report.WordsRead != 600 {
		t.Errorf("expected 600 words, got %d", report.WordsRead)
	}
	if report.CompletedActivities != 6 {
		t.Errorf("expected 6 completed activities, got %d", report.CompletedActivities)
	}

	// 600 words over 360 seconds is 100 wpm, derived from cumulative
	// totals rather than averaging the daily averages.
	if report.AverageReadingSpeed != 100.0 {
		t.Errorf("expected average speed 100.0, got %v", report.AverageReadingSpeed)
	}
}

func TestAssembleWeekly_EmptyWindow(t *testing.T) {
	end := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	report := assembleWeekly(uuid.New(), "Mina", end.AddDate(0, 0, -6), end, nil)

	if len(report.Breakdown) != 0 {
		t.Errorf("expected no breakdown rows, got %d", len(report.Breakdown))
	}
	if report.TotalTimeSpent != 0 || report.AverageReadingSpeed != 0 {
		t.Errorf("expected zeroed totals, got %+v", report)
	}
}
