package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"lexio-backend/internal/models"
	"lexio-backend/internal/stats"
)

// DailyStatsRepo is the sole writer of daily_statistics rows. Every merge is
// expressed as a single atomic upsert so two concurrent closes for the same
// student-day cannot double-count.
type DailyStatsRepo struct {
	pool *pgxpool.Pool
}

func NewDailyStatsRepo(pool *pgxpool.Pool) *DailyStatsRepo {
	return &DailyStatsRepo{pool: pool}
}

const addAppTimeQuery = `
	INSERT INTO daily_statistics (id, student_id, day, total_app_time_seconds)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (student_id, day) DO UPDATE
	SET total_app_time_seconds = daily_statistics.total_app_time_seconds + EXCLUDED.total_app_time_seconds`

// AddAppTime folds a closed app session's elapsed seconds into the rollup,
// creating the row with zeroed counters on the day's first close.
func (r *DailyStatsRepo) AddAppTime(ctx context.Context, studentID uuid.UUID, day time.Time, seconds int) error {
	_, err := r.pool.Exec(ctx, addAppTimeQuery, uuid.New(), studentID, day, seconds)
	return err
}

// AddReadingTime folds reading seconds and words into the rollup. The
// running average speed is always recomputed from the cumulative totals in
// the same statement, not averaged across partial updates.
const addReadingTimeQuery = `
	INSERT INTO daily_statistics (id, student_id, day, total_reading_time_seconds, total_words_read, average_reading_speed)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (student_id, day) DO UPDATE
	SET total_reading_time_seconds = daily_statistics.total_reading_time_seconds + EXCLUDED.total_reading_time_seconds,
		total_words_read = daily_statistics.total_words_read + EXCLUDED.total_words_read,
		average_reading_speed = CASE
			WHEN daily_statistics.total_reading_time_seconds + EXCLUDED.total_reading_time_seconds > 0
				AND daily_statistics.total_words_read + EXCLUDED.total_words_read > 0
			THEN ROUND(
				(daily_statistics.total_words_read + EXCLUDED.total_words_read)::numeric /
				((daily_statistics.total_reading_time_seconds + EXCLUDED.total_reading_time_seconds)::numeric / 60),
				2)
			ELSE 0
		END`

func (r *DailyStatsRepo) AddReadingTime(ctx context.Context, studentID uuid.UUID, day time.Time, seconds, words int) error {
	insertAvg := stats.ReadingSpeed(words, seconds)
	_, err := r.pool.Exec(ctx, addReadingTimeQuery, uuid.New(), studentID, day, seconds, words, insertAvg)
	return err
}

// AppendCompletionIfAbsent pushes a completion entry onto the day's list
// unless an entry for the same activity is already present. Returns whether
// the entry was appended. The dedup guard and the derived-field recompute
// run in one statement, so replayed closes never double-add.
func (r *DailyStatsRepo) AppendCompletionIfAbsent(ctx context.Context, studentID uuid.UUID, day time.Time, entry models.CompletionEntry) (bool, error) {
	entryJSON, err := json.Marshal([]models.CompletionEntry{entry})
	if err != nil {
		return false, err
	}
	probe := completionProbe(entry.ActivityID)

	tag, err := r.pool.Exec(ctx, `
		UPDATE daily_statistics
		SET completions = completions || $3::jsonb,
			completed_activities = jsonb_array_length(completions || $3::jsonb),
			last_activity_id = $4
		WHERE student_id = $1 AND day = $2
		  AND NOT (completions @> $5::jsonb)
	`, studentID, day, entryJSON, entry.ActivityID, probe)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// completionProbe builds the jsonb containment probe matching any
// completions entry for the given activity. Its key must stay in sync with
// CompletionEntry's activity_id tag or the dedup guard silently stops
// matching.
func completionProbe(activityID uuid.UUID) []byte {
	probe, _ := json.Marshal([]map[string]string{{"activity_id": activityID.String()}})
	return probe
}

func (r *DailyStatsRepo) GetByDay(ctx context.Context, studentID uuid.UUID, day time.Time) (*models.DailyStatistics, error) {
	d := &models.DailyStatistics{}
	query := `SELECT id, student_id, day, total_app_time_seconds, total_reading_time_seconds,
		total_words_read, average_reading_speed, completed_activities, completions,
		last_activity_id, email_sent, email_sent_at
		FROM daily_statistics WHERE student_id = $1 AND day = $2`

	err := r.pool.QueryRow(ctx, query, studentID, day).Scan(
		&d.ID, &d.StudentID, &d.Day, &d.TotalAppTimeSeconds, &d.TotalReadingTimeSeconds,
		&d.TotalWordsRead, &d.AverageReadingSpeed, &d.CompletedActivities, &d.Completions,
		&d.LastActivityID, &d.EmailSent, &d.EmailSentAt,
	)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// GetRange returns the rollups between start and end inclusive, ordered by
// day. Days without activity have no row and are simply absent.
func (r *DailyStatsRepo) GetRange(ctx context.Context, studentID uuid.UUID, start, end time.Time) ([]*models.DailyStatistics, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, student_id, day, total_app_time_seconds, total_reading_time_seconds,
			total_words_read, average_reading_speed, completed_activities, completions,
			last_activity_id, email_sent, email_sent_at
		FROM daily_statistics
		WHERE student_id = $1 AND day >= $2 AND day <= $3
		ORDER BY day ASC
	`, studentID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	days := make([]*models.DailyStatistics, 0)
	for rows.Next() {
		d := &models.DailyStatistics{}
		if scanErr := rows.Scan(
			&d.ID, &d.StudentID, &d.Day, &d.TotalAppTimeSeconds, &d.TotalReadingTimeSeconds,
			&d.TotalWordsRead, &d.AverageReadingSpeed, &d.CompletedActivities, &d.Completions,
			&d.LastActivityID, &d.EmailSent, &d.EmailSentAt,
		); scanErr != nil {
			return nil, scanErr
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

func (r *DailyStatsRepo) MarkEmailSent(ctx context.Context, studentID uuid.UUID, day, at time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE daily_statistics
		SET email_sent = TRUE, email_sent_at = $3
		WHERE student_id = $1 AND day = $2
	`, studentID, day, at)
	return err
}

// LifetimeTotals sums every rollup the student has.
func (r *DailyStatsRepo) LifetimeTotals(ctx context.Context, studentID uuid.UUID) (*models.LifetimeTotals, error) {
	t := &models.LifetimeTotals{}
	err := r.pool.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(total_app_time_seconds), 0),
			COALESCE(SUM(total_reading_time_seconds), 0),
			COALESCE(SUM(total_words_read), 0),
			COALESCE(SUM(completed_activities), 0)
		FROM daily_statistics
		WHERE student_id = $1
	`, studentID).Scan(
		&t.TotalAppTimeSeconds, &t.TotalReadingTimeSeconds, &t.TotalWordsRead, &t.CompletedActivities,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}
