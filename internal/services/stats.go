package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"lexio-backend/internal/models"
	"lexio-backend/internal/repository"
	"lexio-backend/internal/timeutil"
)

// StatsService is the daily rollup merger: it folds a closed session's
// metrics into the student's rollup for the close-time day bucket. It is the
// only writer of daily_statistics.
type StatsService struct {
	dailyStats *repository.DailyStatsRepo
	progress   *repository.ProgressRepo
	content    *repository.ContentRepo
}

func NewStatsService(dailyStats *repository.DailyStatsRepo, progress *repository.ProgressRepo, content *repository.ContentRepo) *StatsService {
	return &StatsService{dailyStats: dailyStats, progress: progress, content: content}
}

// MergeAppSession adds the session's elapsed time to the day's rollup, then
// appends any of today's activity completions not yet recorded there.
// Returns the newly appended entries so the snapshot writer can fall back to
// them. Replaying the merge is safe: counters are added once per close and
// the completion list dedups by activity id.
func (s *StatsService) MergeAppSession(ctx context.Context, studentID uuid.UUID, sess *models.AppSession) ([]models.CompletionEntry, error) {
	day := mergeDay(sess.Day, sess.EndedAt)

	if err := s.dailyStats.AddAppTime(ctx, studentID, day, sess.DurationSeconds); err != nil {
		return nil, &AggregationError{Message: "Failed to update daily statistics", Err: err}
	}

	completions, err := s.progress.CompletionsForDay(ctx, studentID, day)
	if err != nil {
		return nil, &AggregationError{Message: "Failed to load today's completions", Err: err}
	}

	added := make([]models.CompletionEntry, 0)
	for _, c := range completions {
		label, labelErr := s.content.ActivityLabel(ctx, c.ActivityID)
		if labelErr != nil {
			return added, &AggregationError{Message: "Failed to resolve activity label", Err: labelErr}
		}

		entry := models.CompletionEntry{
			ActivityID:  c.ActivityID,
			Title:       label.Title,
			Category:    label.CategoryName,
			Score:       c.Score,
			CompletedAt: c.CompletedAt,
		}

		appended, appendErr := s.dailyStats.AppendCompletionIfAbsent(ctx, studentID, day, entry)
		if appendErr != nil {
			return added, &AggregationError{
				Message: fmt.Sprintf("Failed to record completion of activity %s", c.ActivityID),
				Err:     appendErr,
			}
		}
		if appended {
			added = append(added, entry)
		}
	}

	return added, nil
}

// MergeReadingSession folds reading time and word count into the rollup. The
// average speed is recomputed from the cumulative totals inside the upsert.
func (s *StatsService) MergeReadingSession(ctx context.Context, studentID uuid.UUID, sess *models.ReadingSession) error {
	day := mergeDay(sess.Day, sess.EndedAt)

	if err := s.dailyStats.AddReadingTime(ctx, studentID, day, sess.DurationSeconds, sess.WordCount); err != nil {
		return &AggregationError{Message: "Failed to update daily reading statistics", Err: err}
	}
	return nil
}

// mergeDay buckets the close time; a session that crossed midnight lands on
// the day it closed, not the day it started.
func mergeDay(startDay time.Time, endedAt *time.Time) time.Time {
	if endedAt == nil {
		return startDay
	}
	return timeutil.DayBucket(*endedAt)
}
