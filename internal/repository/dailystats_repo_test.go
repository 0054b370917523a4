package repository

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"

	"lexio-backend/internal/models"
)

// jsonbContains emulates Postgres jsonb array containment (@>): every
// element of the probe array must be a subset of some element of the doc.
func jsonbContains(t *testing.T, doc, probe []byte) bool {
	t.Helper()

	var docArr, probeArr []map[string]interface{}
	if err := json.Unmarshal(doc, &docArr); err != nil {
		t.Fatalf("Failed to unmarshal doc: %v", err)
	}
	if err := json.Unmarshal(probe, &probeArr); err != nil {
		t.Fatalf("Failed to unmarshal probe: %v", err)
	}

	for _, p := range probeArr {
		matched := false
		for _, d := range docArr {
			subset := true
			for k, v := range p {
				if d[k] != v {
					subset = false
					break
				}
			}
			if subset {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

func TestCompletionProbe_MatchesEntryForSameActivity(t *testing.T) {
	activityID := uuid.New()
	entry := models.CompletionEntry{ActivityID: activityID, Title: "Phonics A", Category: "Phonics", Score: 90}

	doc, err := json.Marshal([]models.CompletionEntry{entry})
	if err != nil {
		t.Fatalf("Failed to marshal entry: %v", err)
	}

	if !jsonbContains(t, doc, completionProbe(activityID)) {
		t.Errorf("Expected probe to match an entry for the same activity; the probe key has drifted from CompletionEntry's activity_id tag")
	}
}

func TestCompletionProbe_MissesOtherActivities(t *testing.T) {
	entry := models.CompletionEntry{ActivityID: uuid.New(), Title: "Phonics A", Score: 90}

	doc, err := json.Marshal([]models.CompletionEntry{entry})
	if err != nil {
		t.Fatalf("Failed to marshal entry: %v", err)
	}

	if jsonbContains(t, doc, completionProbe(uuid.New())) {
		t.Errorf("Expected probe for a different activity not to match")
	}
}

func TestCompletionProbe_MatchesWithinLargerList(t *testing.T) {
	target := uuid.New()
	doc, err := json.Marshal([]models.CompletionEntry{
		{ActivityID: uuid.New(), Title: "Sight Set 1"},
		{ActivityID: target, Title: "Blending CVC"},
		{ActivityID: uuid.New(), Title: "Phonics A"},
	})
	if err != nil {
		t.Fatalf("Failed to marshal entries: %v", err)
	}

	if !jsonbContains(t, doc, completionProbe(target)) {
		t.Errorf("Expected probe to find the activity anywhere in the list")
	}
}

// The merge upserts must add to the existing counters, never overwrite
// them, or two closes on one day would keep only the second session's time.
func TestMergeQueries_Accumulate(t *testing.T) {
	if !strings.Contains(addAppTimeQuery, "daily_statistics.total_app_time_seconds + EXCLUDED.total_app_time_seconds") {
		t.Errorf("app-time upsert no longer accumulates into the existing counter")
	}
	if !strings.Contains(addReadingTimeQuery, "daily_statistics.total_reading_time_seconds + EXCLUDED.total_reading_time_seconds") {
		t.Errorf("reading-time upsert no longer accumulates into the existing counter")
	}
	if !strings.Contains(addReadingTimeQuery, "daily_statistics.total_words_read + EXCLUDED.total_words_read") {
		t.Errorf("word-count upsert no longer accumulates into the existing counter")
	}
}

// Closing must set the session's end and its duration in one statement, so
// a failure mid-close cannot strand a closed row with a zeroed duration.
func TestCloseQueries_SetDurationInClaimingStatement(t *testing.T) {
	for name, query := range map[string]string{
		"app":     closeAppQuery,
		"reading": closeReadingQuery,
	} {
		if !strings.Contains(query, "ended_at = ") || !strings.Contains(query, "duration_seconds = GREATEST") {
			t.Errorf("%s close no longer sets ended_at and duration together", name)
		}
		if strings.Contains(strings.TrimRight(strings.TrimSpace(query), ";"), ";") {
			t.Errorf("%s close is no longer a single statement", name)
		}
	}
}
