package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"lexio-backend/internal/models"
	"lexio-backend/internal/repository"
	"lexio-backend/internal/stats"
	"lexio-backend/internal/timeutil"
)

const reportCacheTTL = 5 * time.Minute

// ReportService assembles daily and weekly reports from rollup documents.
// It only ever reads daily_statistics; assembled payloads are cached in
// Redis and invalidated when a merge touches the day.
type ReportService struct {
	dailyStats *repository.DailyStatsRepo
	students   *repository.StudentRepo
	content    *repository.ContentRepo
	redis      *redis.Client
}

func NewReportService(
	dailyStats *repository.DailyStatsRepo,
	students *repository.StudentRepo,
	content *repository.ContentRepo,
	redisClient *redis.Client,
) *ReportService {
	return &ReportService{
		dailyStats: dailyStats,
		students:   students,
		content:    content,
		redis:      redisClient,
	}
}

// GetDailyReport loads one day's rollup and joins in display labels. A day
// with no rollup yields a zeroed report with NoActivity set, not an error,
// so the email path can send a distinct "nothing to report" message.
func (s *ReportService) GetDailyReport(ctx context.Context, studentID uuid.UUID, date time.Time) (*models.DailyReport, error) {
	day := timeutil.DayBucket(date)

	cacheKey := dailyCacheKey(studentID, day)
	if cached, err := s.redis.Get(ctx, cacheKey).Bytes(); err == nil {
		report := &models.DailyReport{}
		if json.Unmarshal(cached, report) == nil {
			return report, nil
		}
	}

	student, err := s.students.GetByID(ctx, studentID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &NotFoundError{Message: "Student not found"}
	}
	if err != nil {
		return nil, err
	}

	report := &models.DailyReport{
		StudentID:   studentID,
		StudentName: student.FullName,
		Date:        day,
		Lessons:     make([]models.ReportLesson, 0),
	}

	roll, err := s.dailyStats.GetByDay(ctx, studentID, day)
	if errors.Is(err, pgx.ErrNoRows) {
		report.NoActivity = true
		s.cache(ctx, cacheKey, report)
		return report, nil
	}
	if err != nil {
		return nil, err
	}

	report.TotalTimeSpent = roll.TotalAppTimeSeconds
	report.ReadingTimeSeconds = roll.TotalReadingTimeSeconds
	report.WordsRead = roll.TotalWordsRead
	report.AverageReadingSpeed = roll.AverageReadingSpeed
	report.CompletedActivities = roll.CompletedActivities
	report.Lessons = groupEntriesByLesson(roll.Completions, func(activityID uuid.UUID) string {
		label, labelErr := s.content.ActivityLabel(ctx, activityID)
		if labelErr != nil {
			return ""
		}
		return label.LessonTitle
	})

	s.cache(ctx, cacheKey, report)
	return report, nil
}

// GetWeeklyReport aggregates the trailing 7-day window ending at endDate
// inclusive. Days without a rollup are absent from the breakdown.
func (s *ReportService) GetWeeklyReport(ctx context.Context, studentID uuid.UUID, endDate time.Time) (*models.WeeklyReport, error) {
	end := timeutil.DayBucket(endDate)
	start := timeutil.WeekStart(endDate)

	cacheKey := weeklyCacheKey(studentID, end)
	if cached, err := s.redis.Get(ctx, cacheKey).Bytes(); err == nil {
		report := &models.WeeklyReport{}
		if json.Unmarshal(cached, report) == nil {
			return report, nil
		}
	}

	student, err := s.students.GetByID(ctx, studentID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &NotFoundError{Message: "Student not found"}
	}
	if err != nil {
		return nil, err
	}

	days, err := s.dailyStats.GetRange(ctx, studentID, start, end)
	if err != nil {
		return nil, err
	}

	report := assembleWeekly(studentID, student.FullName, start, end, days)
	s.cache(ctx, cacheKey, report)
	return report, nil
}

// InvalidateDay drops the cached daily report for the day and every weekly
// report whose window contains it. Best effort.
func (s *ReportService) InvalidateDay(ctx context.Context, studentID uuid.UUID, day time.Time) {
	day = timeutil.DayBucket(day)
	keys := []string{dailyCacheKey(studentID, day)}
	for i := 0; i < 7; i++ {
		keys = append(keys, weeklyCacheKey(studentID, day.AddDate(0, 0, i)))
	}
	s.redis.Del(ctx, keys...)
}

func (s *ReportService) cache(ctx context.Context, key string, v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		return
	}
	s.redis.Set(ctx, key, payload, reportCacheTTL)
}

func dailyCacheKey(studentID uuid.UUID, day time.Time) string {
	return fmt.Sprintf("report:daily:%s:%s", studentID, day.Format("2006-01-02"))
}

func weeklyCacheKey(studentID uuid.UUID, end time.Time) string {
	return fmt.Sprintf("report:weekly:%s:%s", studentID, end.Format("2006-01-02"))
}

// groupEntriesByLesson buckets completion entries under their lesson title,
// preserving first-seen lesson order and entry order within a lesson.
func groupEntriesByLesson(entries []models.CompletionEntry, lessonOf func(uuid.UUID) string) []models.ReportLesson {
	lessons := make([]models.ReportLesson, 0)
	index := make(map[string]int)

	for _, entry := range entries {
		title := lessonOf(entry.ActivityID)
		if title == "" {
			title = "Other activities"
		}

		i, ok := index[title]
		if !ok {
			i = len(lessons)
			index[title] = i
			lessons = append(lessons, models.ReportLesson{LessonTitle: title, Activities: make([]models.ReportActivity, 0)})
		}

		lessons[i].Activities = append(lessons[i].Activities, models.ReportActivity{
			ActivityID:  entry.ActivityID,
			Title:       entry.Title,
			Category:    entry.Category,
			Score:       entry.Score,
			CompletedAt: entry.CompletedAt,
		})
	}

	return lessons
}

// assembleWeekly sums the window's rollups and derives the average speed
// from the cumulative totals rather than averaging daily averages.
func assembleWeekly(studentID uuid.UUID, studentName string, start, end time.Time, days []*models.DailyStatistics) *models.WeeklyReport {
	report := &models.WeeklyReport{
		StudentID:   studentID,
		StudentName: studentName,
		StartDate:   start,
		EndDate:     end,
		Breakdown:   make([]models.DayBreakdown, 0, len(days)),
	}

	for _, d := range days {
		report.TotalTimeSpent += d.TotalAppTimeSeconds
		report.ReadingTimeSeconds += d.TotalReadingTimeSeconds
		report.WordsRead += d.TotalWordsRead
		report.CompletedActivities += d.CompletedActivities

		report.Breakdown = append(report.Breakdown, models.DayBreakdown{
			Day:                 d.Day,
			TotalTimeSpent:      d.TotalAppTimeSeconds,
			ReadingTimeSeconds:  d.TotalReadingTimeSeconds,
			WordsRead:           d.TotalWordsRead,
			CompletedActivities: d.CompletedActivities,
		})
	}

	report.AverageReadingSpeed = stats.ReadingSpeed(report.WordsRead, report.ReadingTimeSeconds)
	return report
}
