package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"lexio-backend/internal/models"
	"lexio-backend/internal/timeutil"
)

// SessionRepo owns AppSession and ReadingSession rows. The one-open-session
// invariants are enforced by partial unique indexes, so a concurrent
// double-start cannot create two open rows.
type SessionRepo struct {
	pool *pgxpool.Pool
}

func NewSessionRepo(pool *pgxpool.Pool) *SessionRepo {
	return &SessionRepo{pool: pool}
}

func (r *SessionRepo) GetOpenApp(ctx context.Context, studentID uuid.UUID) (*models.AppSession, error) {
	s := &models.AppSession{StudentID: studentID, Open: true}
	err := r.pool.QueryRow(ctx, `
		SELECT id, started_at, day
		FROM app_sessions
		WHERE student_id = $1 AND ended_at IS NULL
	`, studentID).Scan(&s.ID, &s.StartedAt, &s.Day)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *SessionRepo) HasOpenApp(ctx context.Context, studentID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM app_sessions WHERE student_id = $1 AND ended_at IS NULL)",
		studentID,
	).Scan(&exists)
	return exists, err
}

// StartApp inserts a new open session. If an open session already exists the
// insert is a no-op and pgx.ErrNoRows is returned; the caller falls back to
// the existing row.
func (r *SessionRepo) StartApp(ctx context.Context, studentID uuid.UUID, now time.Time) (*models.AppSession, error) {
	s := &models.AppSession{
		ID:        uuid.New(),
		StudentID: studentID,
		Day:       timeutil.DayBucket(now),
		Open:      true,
	}

	err := r.pool.QueryRow(ctx, `
		INSERT INTO app_sessions (id, student_id, started_at, day)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (student_id) WHERE ended_at IS NULL DO NOTHING
		RETURNING started_at
	`, s.ID, studentID, now, s.Day).Scan(&s.StartedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// closeAppQuery claims the open session and computes its duration in the
// same statement. A failure can only leave the session fully open or fully
// closed, never closed with a zeroed duration.
const closeAppQuery = `
	UPDATE app_sessions
	SET ended_at = $2,
		duration_seconds = GREATEST(0, FLOOR(EXTRACT(EPOCH FROM $2 - started_at)))::int
	WHERE student_id = $1 AND ended_at IS NULL
	RETURNING id, started_at, day, duration_seconds`

// CloseApp claims the open session in a single conditional update. Returns
// pgx.ErrNoRows when the student has no open session; a closed session is
// never touched again.
func (r *SessionRepo) CloseApp(ctx context.Context, studentID uuid.UUID, endedAt time.Time) (*models.AppSession, error) {
	s := &models.AppSession{StudentID: studentID, EndedAt: &endedAt}
	err := r.pool.QueryRow(ctx, closeAppQuery, studentID, endedAt).
		Scan(&s.ID, &s.StartedAt, &s.Day, &s.DurationSeconds)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *SessionRepo) GetOpenReading(ctx context.Context, studentID, activityID uuid.UUID) (*models.ReadingSession, error) {
	s := &models.ReadingSession{StudentID: studentID, ActivityID: activityID, Open: true}
	err := r.pool.QueryRow(ctx, `
		SELECT id, started_at, day
		FROM reading_sessions
		WHERE student_id = $1 AND activity_id = $2 AND ended_at IS NULL
	`, studentID, activityID).Scan(&s.ID, &s.StartedAt, &s.Day)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *SessionRepo) StartReading(ctx context.Context, studentID, activityID uuid.UUID, now time.Time) (*models.ReadingSession, error) {
	s := &models.ReadingSession{
		ID:         uuid.New(),
		StudentID:  studentID,
		ActivityID: activityID,
		Day:        timeutil.DayBucket(now),
		Open:       true,
	}

	err := r.pool.QueryRow(ctx, `
		INSERT INTO reading_sessions (id, student_id, activity_id, started_at, day)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (student_id, activity_id) WHERE ended_at IS NULL DO NOTHING
		RETURNING started_at
	`, s.ID, studentID, activityID, now, s.Day).Scan(&s.StartedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// closeReadingQuery mirrors closeAppQuery and additionally stores the
// reported word count and the derived words-per-minute speed, all in the
// one claiming statement.
const closeReadingQuery = `
	UPDATE reading_sessions
	SET ended_at = $3,
		duration_seconds = GREATEST(0, FLOOR(EXTRACT(EPOCH FROM $3 - started_at)))::int,
		word_count = $4,
		reading_speed = CASE
			WHEN $4::int > 0 AND FLOOR(EXTRACT(EPOCH FROM $3 - started_at)) > 0
			THEN ROUND($4::numeric / (FLOOR(EXTRACT(EPOCH FROM $3 - started_at))::numeric / 60), 2)
			ELSE 0
		END
	WHERE student_id = $1 AND activity_id = $2 AND ended_at IS NULL
	RETURNING id, started_at, day, duration_seconds, reading_speed`

func (r *SessionRepo) CloseReading(ctx context.Context, studentID, activityID uuid.UUID, endedAt time.Time, wordCount int) (*models.ReadingSession, error) {
	s := &models.ReadingSession{
		StudentID:  studentID,
		ActivityID: activityID,
		EndedAt:    &endedAt,
		WordCount:  wordCount,
	}
	err := r.pool.QueryRow(ctx, closeReadingQuery, studentID, activityID, endedAt, wordCount).
		Scan(&s.ID, &s.StartedAt, &s.Day, &s.DurationSeconds, &s.ReadingSpeed)
	if err != nil {
		return nil, err
	}
	return s, nil
}
