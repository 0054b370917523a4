package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"lexio-backend/internal/models"
	"lexio-backend/internal/repository"
)

// SessionService drives the session lifecycle: start and close for app and
// reading sessions, plus the rollup merge, snapshot overwrite, event
// publish, and cache invalidation that follow a close.
type SessionService struct {
	sessions *repository.SessionRepo
	students *repository.StudentRepo
	merger   *StatsService
	reports  *ReportService
	redis    *redis.Client
}

func NewSessionService(
	sessions *repository.SessionRepo,
	students *repository.StudentRepo,
	merger *StatsService,
	reports *ReportService,
	redisClient *redis.Client,
) *SessionService {
	return &SessionService{
		sessions: sessions,
		students: students,
		merger:   merger,
		reports:  reports,
		redis:    redisClient,
	}
}

func (s *SessionService) resolveStudent(ctx context.Context, id uuid.UUID) (*models.Student, error) {
	student, err := s.students.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &NotFoundError{Message: "Student not found"}
	}
	if err != nil {
		return nil, err
	}
	if student.Role != models.RoleStudent {
		return nil, &InvalidStateError{Message: "Account is not a student account"}
	}
	return student, nil
}

// StartAppSession is idempotent: a double-start from a network retry or UI
// race returns the existing open session unchanged.
func (s *SessionService) StartAppSession(ctx context.Context, studentID uuid.UUID) (*models.AppSession, error) {
	if _, err := s.resolveStudent(ctx, studentID); err != nil {
		return nil, err
	}

	if existing, err := s.sessions.GetOpenApp(ctx, studentID); err == nil {
		return existing, nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	sess, err := s.sessions.StartApp(ctx, studentID, time.Now())
	if errors.Is(err, pgx.ErrNoRows) {
		// Lost a race against a concurrent start; the other session wins.
		return s.sessions.GetOpenApp(ctx, studentID)
	}
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, models.SessionEvent{
		Type: "app_started", StudentID: studentID, SessionID: sess.ID, At: sess.StartedAt,
	})
	return sess, nil
}

// CloseAppSession closes the open session, folds it into the day's rollup,
// and replaces the student's last-session snapshot. A rollup failure leaves
// the session closed: closing is the durable fact, the rollup is derived.
func (s *SessionService) CloseAppSession(ctx context.Context, studentID uuid.UUID, clientActivities []models.SnapshotActivity) (*models.AppSession, error) {
	if _, err := s.resolveStudent(ctx, studentID); err != nil {
		return nil, err
	}

	closed, err := s.sessions.CloseApp(ctx, studentID, time.Now())
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &InvalidStateError{Message: "No open app session"}
	}
	if err != nil {
		return nil, err
	}

	added, mergeErr := s.merger.MergeAppSession(ctx, studentID, closed)
	if mergeErr != nil {
		return nil, mergeErr
	}

	snapshot := buildSnapshot(closed, clientActivities, added)
	if err := s.students.UpdateLastSession(ctx, studentID, snapshot); err != nil {
		return nil, &AggregationError{Message: "Failed to update last-session snapshot", Err: err}
	}

	s.publishEvent(ctx, models.SessionEvent{
		Type: "app_closed", StudentID: studentID, SessionID: closed.ID,
		DurationSeconds: closed.DurationSeconds, At: *closed.EndedAt,
	})
	// Merges land on the close day, so that is the cache to drop.
	s.reports.InvalidateDay(ctx, studentID, *closed.EndedAt)

	return closed, nil
}

func (s *SessionService) StartReadingSession(ctx context.Context, studentID, activityID uuid.UUID) (*models.ReadingSession, error) {
	if _, err := s.resolveStudent(ctx, studentID); err != nil {
		return nil, err
	}

	if existing, err := s.sessions.GetOpenReading(ctx, studentID, activityID); err == nil {
		return existing, nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	sess, err := s.sessions.StartReading(ctx, studentID, activityID, time.Now())
	if errors.Is(err, pgx.ErrNoRows) {
		return s.sessions.GetOpenReading(ctx, studentID, activityID)
	}
	if err != nil {
		return nil, err
	}

	s.publishEvent(ctx, models.SessionEvent{
		Type: "reading_started", StudentID: studentID, SessionID: sess.ID, At: sess.StartedAt,
	})
	return sess, nil
}

func (s *SessionService) CloseReadingSession(ctx context.Context, studentID, activityID uuid.UUID, wordCount int) (*models.ReadingSession, error) {
	if _, err := s.resolveStudent(ctx, studentID); err != nil {
		return nil, err
	}
	if wordCount < 0 {
		return nil, &ValidationError{Fields: map[string]string{"word_count": "Word count cannot be negative"}}
	}

	closed, err := s.sessions.CloseReading(ctx, studentID, activityID, time.Now(), wordCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &InvalidStateError{Message: "No open reading session for this activity"}
	}
	if err != nil {
		return nil, err
	}

	if mergeErr := s.merger.MergeReadingSession(ctx, studentID, closed); mergeErr != nil {
		return nil, mergeErr
	}

	s.publishEvent(ctx, models.SessionEvent{
		Type: "reading_closed", StudentID: studentID, SessionID: closed.ID,
		DurationSeconds: closed.DurationSeconds, At: *closed.EndedAt,
	})
	s.reports.InvalidateDay(ctx, studentID, *closed.EndedAt)

	return closed, nil
}

// publishEvent fans a session event out to teacher dashboards. Best effort:
// a dropped event never fails the session operation.
func (s *SessionService) publishEvent(ctx context.Context, event models.SessionEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := s.redis.Publish(ctx, "session_events:"+event.StudentID.String(), payload).Err(); err != nil {
		log.Printf("session event publish failed for student %s: %v", event.StudentID, err)
	}
}

// buildSnapshot assembles the replacement last-session snapshot. The client
// may report per-activity durations for the session just ended; without
// them the snapshot is derived from the completions the merge just added,
// with duration 0 since completion records carry no per-activity timing.
func buildSnapshot(closed *models.AppSession, clientActivities []models.SnapshotActivity, added []models.CompletionEntry) models.LastSessionSnapshot {
	snapshot := models.LastSessionSnapshot{
		TotalDurationSeconds: closed.DurationSeconds,
		StartedAt:            &closed.StartedAt,
		UpdatedAt:            closed.EndedAt,
		Activities:           make([]models.SnapshotActivity, 0),
	}

	if len(clientActivities) > 0 {
		snapshot.Activities = clientActivities
		return snapshot
	}

	for _, entry := range added {
		snapshot.Activities = append(snapshot.Activities, models.SnapshotActivity{
			ActivityID:  entry.ActivityID,
			Title:       entry.Title,
			CompletedAt: entry.CompletedAt,
			Outcome:     outcomeForScore(entry.Score),
		})
	}
	return snapshot
}

func outcomeForScore(score float64) string {
	switch {
	case score >= 90:
		return "excellent"
	case score >= 70:
		return "good"
	default:
		return "needs practice"
	}
}
