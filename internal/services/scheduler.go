package services

import (
	"context"
	"log"
	"time"

	"lexio-backend/internal/repository"
	"lexio-backend/internal/timeutil"
)

const (
	parentReportEnabledKey  = "parent_report_emails"
	parentReportLastSentKey = "parent_report_last_sent_at"
	parentReportInterval    = 24 * time.Hour
	schedulerPollInterval   = 1 * time.Hour
)

// ReportScheduler sends the previous day's report to parents who opted in.
// Last-sent stamps live in the student's settings so a restart never
// double-sends within the interval.
type ReportScheduler struct {
	students   *repository.StudentRepo
	dailyStats *repository.DailyStatsRepo
	reports    *ReportService
	email      *EmailService
	stopChan   chan struct{}
}

func NewReportScheduler(
	students *repository.StudentRepo,
	dailyStats *repository.DailyStatsRepo,
	reports *ReportService,
	email *EmailService,
) *ReportScheduler {
	return &ReportScheduler{
		students:   students,
		dailyStats: dailyStats,
		reports:    reports,
		email:      email,
		stopChan:   make(chan struct{}),
	}
}

func (s *ReportScheduler) Start() {
	if s.students == nil || s.email == nil {
		return
	}

	go s.loop()
	log.Printf("Report scheduler started")
}

func (s *ReportScheduler) Stop() {
	select {
	case <-s.stopChan:
		return
	default:
		close(s.stopChan)
	}
}

func (s *ReportScheduler) loop() {
	// Run on startup as well as by interval.
	s.sendParentReports(context.Background(), time.Now().UTC())

	ticker := time.NewTicker(schedulerPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.sendParentReports(context.Background(), time.Now().UTC())
		}
	}
}

func (s *ReportScheduler) sendParentReports(ctx context.Context, now time.Time) {
	recipients, err := s.students.ListReportRecipients(ctx, parentReportEnabledKey, parentReportLastSentKey)
	if err != nil {
		log.Printf("parent reports: failed to list recipients: %v", err)
		return
	}

	reportDay := timeutil.DayBucket(now.AddDate(0, 0, -1))

	for _, recipient := range recipients {
		if !shouldSendByLastSent(recipient.LastSentAtRaw, parentReportInterval, now) {
			continue
		}

		report, reportErr := s.reports.GetDailyReport(ctx, recipient.StudentID, reportDay)
		if reportErr != nil {
			log.Printf("parent reports: failed to assemble report for student %s: %v", recipient.StudentID, reportErr)
			continue
		}

		// Scheduled sends skip empty days; the distinct no-activity
		// message is reserved for explicit requests.
		if report.NoActivity {
			continue
		}

		if err := s.email.SendDailyReport(recipient.ParentEmail, recipient.ParentName, report); err != nil {
			log.Printf("parent reports: failed to send to %s: %v", recipient.ParentEmail, err)
			continue
		}

		if err := s.dailyStats.MarkEmailSent(ctx, recipient.StudentID, reportDay, now); err != nil {
			log.Printf("parent reports: failed to mark email sent for student %s: %v", recipient.StudentID, err)
		}
		if err := s.students.SetNotificationTimestamp(ctx, recipient.StudentID, parentReportLastSentKey, now); err != nil {
			log.Printf("parent reports: failed to persist last sent at for student %s: %v", recipient.StudentID, err)
		}
	}
}

func shouldSendByLastSent(lastSentRaw string, minInterval time.Duration, now time.Time) bool {
	if lastSentRaw == "" {
		return true
	}

	lastSentAt, err := time.Parse(time.RFC3339, lastSentRaw)
	if err != nil {
		return true
	}

	return now.Sub(lastSentAt) >= minInterval
}
