package services

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"lexio-backend/internal/models"
)

func TestBuildSnapshot_ClientActivitiesWin(t *testing.T) {
	start := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	end := start.Add(10 * time.Minute)
	closed := &models.AppSession{StartedAt: start, EndedAt: &end, DurationSeconds: 600}

	client := []models.SnapshotActivity{
		{ActivityID: uuid.New(), Title: "Phonics A", DurationSeconds: 240, Outcome: "good"},
	}
	added := []models.CompletionEntry{
		{ActivityID: uuid.New(), Title: "Should be ignored", Score: 95},
	}

	snapshot := buildSnapshot(closed, client, added)

	if snapshot.TotalDurationSeconds != 600 {
		t.Errorf("expected total duration 600, got %d", snapshot.TotalDurationSeconds)
	}
	if len(snapshot.Activities) != 1 || snapshot.Activities[0].Title != "Phonics A" {
		t.Errorf("expected client-supplied activities to take precedence, got %+v", snapshot.Activities)
	}
	if snapshot.StartedAt == nil || !snapshot.StartedAt.Equal(start) {
		t.Errorf("expected session start in snapshot, got %v", snapshot.StartedAt)
	}
}

func TestBuildSnapshot_FallsBackToMergedEntries(t *testing.T) {
	start := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	end := start.Add(5 * time.Minute)
	closed := &models.AppSession{StartedAt: start, EndedAt: &end, DurationSeconds: 300}

	added := []models.CompletionEntry{
		{ActivityID: uuid.New(), Title: "Sight Set 1", Score: 95, CompletedAt: end},
		{ActivityID: uuid.New(), Title: "Blending CVC", Score: 40, CompletedAt: end},
	}

	snapshot := buildSnapshot(closed, nil, added)

	if len(snapshot.Activities) != 2 {
		t.Fatalf("expected 2 derived activities, got %d", len(snapshot.Activities))
	}
	// Completion history carries no per-activity timing.
	if snapshot.Activities[0].DurationSeconds != 0 {
		t.Errorf("expected fallback duration 0, got %d", snapshot.Activities[0].DurationSeconds)
	}
	if snapshot.Activities[0].Outcome != "excellent" {
		t.Errorf("expected outcome 'excellent' for score 95, got %q", snapshot.Activities[0].Outcome)
	}
	if snapshot.Activities[1].Outcome != "needs practice" {
		t.Errorf("expected outcome 'needs practice' for score 40, got %q", snapshot.Activities[1].Outcome)
	}
}

func TestBuildSnapshot_EmptySession(t *testing.T) {
	start := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Minute)
	closed := &models.AppSession{StartedAt: start, EndedAt: &end, DurationSeconds: 60}

	snapshot := buildSnapshot(closed, nil, nil)

	if snapshot.Activities == nil || len(snapshot.Activities) != 0 {
		t.Errorf("expected empty (not nil) activity list, got %+v", snapshot.Activities)
	}
}

func TestOutcomeForScore(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{100, "excellent"},
		{90, "excellent"},
		{89.9, "good"},
		{70, "good"},
		{69, "needs practice"},
		{0, "needs practice"},
	}

	for _, tc := range tests {
		if got := outcomeForScore(tc.score); got != tc.want {
			t.Errorf("outcomeForScore(%v) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestMergeDay(t *testing.T) {
	startDay := time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC)

	// Session crossing midnight lands on the day it closed.
	closedAt := time.Date(2026, 3, 14, 0, 30, 0, 0, time.UTC)
	if got := mergeDay(startDay, &closedAt); !got.Equal(time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected close-day bucket, got %v", got)
	}

	if got := mergeDay(startDay, nil); !got.Equal(startDay) {
		t.Errorf("expected start day fallback, got %v", got)
	}
}
