package services

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"

	"lexio-backend/internal/models"
)

// EmailService renders parent reports and hands them to SMTP. Delivery is
// fire-and-forget: a failure is classified and returned, never retried.
type EmailService struct {
	host     string
	port     string
	user     string
	pass     string
	from     string
	fromName string
	replyTo  string
	devMode  bool
}

func NewEmailService(host, port, user, pass, from, fromName, replyTo string) *EmailService {
	devMode := host == "" || user == ""
	if devMode {
		log.Println("⚠ Email service running in DEV MODE (logging to console)")
	}
	return &EmailService{
		host:     host,
		port:     port,
		user:     user,
		pass:     pass,
		from:     from,
		fromName: fromName,
		replyTo:  replyTo,
		devMode:  devMode,
	}
}

// SendDailyReport emails one day's report to a parent. A no-activity day
// gets its own distinct message rather than an empty-looking report.
func (s *EmailService) SendDailyReport(to, parentName string, report *models.DailyReport) error {
	greeting := "Hello"
	if parentName != "" {
		greeting = "Hello " + parentName
	}

	if report.NoActivity {
		subject := fmt.Sprintf("%s's reading day: no activity on %s", report.StudentName, report.Date.Format("Jan 2"))
		html := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: 'Segoe UI', Arial, sans-serif; margin: 0; padding: 0; background-color: #f8fafc;">
  <div style="max-width: 480px; margin: 40px auto; background: white; border-radius: 12px; box-shadow: 0 4px 24px rgba(0,0,0,0.08); overflow: hidden;">
    <div style="background: linear-gradient(135deg, #0ea5e9 0%%, #6366f1 100%%); padding: 32px; text-align: center;">
      <h1 style="color: white; margin: 0; font-size: 24px; font-weight: 700;">Lexio</h1>
      <p style="color: rgba(255,255,255,0.85); margin: 8px 0 0; font-size: 14px;">Daily Reading Report</p>
    </div>
    <div style="padding: 32px;">
      <h2 style="margin: 0 0 16px; font-size: 20px; color: #1e293b;">%s,</h2>
      <p style="color: #64748b; font-size: 14px; line-height: 1.6; margin: 0;">
        %s didn't log any reading activity on %s. A gentle nudge tomorrow can keep the streak going!
      </p>
    </div>
  </div>
</body>
</html>`, greeting, report.StudentName, report.Date.Format("Monday, January 2"))

		text := fmt.Sprintf("%s,\r\n\r\n%s didn't log any reading activity on %s.\r\nA gentle nudge tomorrow can keep the streak going!\r\n",
			greeting, report.StudentName, report.Date.Format("Monday, January 2"))

		return s.send(to, subject, html, text)
	}

	subject := fmt.Sprintf("%s's reading day: %s", report.StudentName, report.Date.Format("Jan 2"))

	var lessonRows strings.Builder
	var lessonLines strings.Builder
	for _, lesson := range report.Lessons {
		lessonRows.WriteString(fmt.Sprintf(
			`<p style="margin: 16px 0 4px; font-size: 14px; font-weight: 600; color: #1e293b;">%s</p>`, lesson.LessonTitle))
		lessonLines.WriteString(fmt.Sprintf("\r\n%s\r\n", lesson.LessonTitle))
		for _, a := range lesson.Activities {
			lessonRows.WriteString(fmt.Sprintf(
				`<p style="margin: 2px 0; font-size: 13px; color: #64748b;">• %s (%s), score %.0f%%</p>`,
				a.Title, a.Category, a.Score))
			lessonLines.WriteString(fmt.Sprintf("  - %s (%s): score %.0f%%\r\n", a.Title, a.Category, a.Score))
		}
	}

	html := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: 'Segoe UI', Arial, sans-serif; margin: 0; padding: 0; background-color: #f8fafc;">
  <div style="max-width: 480px; margin: 40px auto; background: white; border-radius: 12px; box-shadow: 0 4px 24px rgba(0,0,0,0.08); overflow: hidden;">
    <div style="background: linear-gradient(135deg, #0ea5e9 0%%, #6366f1 100%%); padding: 32px; text-align: center;">
      <h1 style="color: white; margin: 0; font-size: 24px; font-weight: 700;">Lexio</h1>
      <p style="color: rgba(255,255,255,0.85); margin: 8px 0 0; font-size: 14px;">Daily Reading Report</p>
    </div>
    <div style="padding: 32px;">
      <h2 style="margin: 0 0 16px; font-size: 20px; color: #1e293b;">%s,</h2>
      <p style="color: #64748b; font-size: 14px; line-height: 1.6; margin: 0 0 24px;">
        Here is what %s got up to on %s:
      </p>
      <p style="margin: 4px 0; font-size: 14px; color: #1e293b;">⏱ Time in app: <strong>%s</strong></p>
      <p style="margin: 4px 0; font-size: 14px; color: #1e293b;">📖 Reading time: <strong>%s</strong></p>
      <p style="margin: 4px 0; font-size: 14px; color: #1e293b;">🔤 Words read: <strong>%d</strong> (%.2f wpm)</p>
      <p style="margin: 4px 0 0; font-size: 14px; color: #1e293b;">✅ Activities completed: <strong>%d</strong></p>
      %s
    </div>
  </div>
</body>
</html>`, greeting, report.StudentName, report.Date.Format("Monday, January 2"),
		formatDuration(report.TotalTimeSpent), formatDuration(report.ReadingTimeSeconds),
		report.WordsRead, report.AverageReadingSpeed, report.CompletedActivities,
		lessonRows.String())

	text := fmt.Sprintf("%s,\r\n\r\nHere is what %s got up to on %s:\r\n\r\nTime in app: %s\r\nReading time: %s\r\nWords read: %d (%.2f wpm)\r\nActivities completed: %d\r\n%s",
		greeting, report.StudentName, report.Date.Format("Monday, January 2"),
		formatDuration(report.TotalTimeSpent), formatDuration(report.ReadingTimeSeconds),
		report.WordsRead, report.AverageReadingSpeed, report.CompletedActivities,
		lessonLines.String())

	return s.send(to, subject, html, text)
}

// SendAdhocReport renders a report directly from a client-supplied activity
// list, bypassing the rollups entirely.
func (s *EmailService) SendAdhocReport(to, parentName, studentName string, activities []models.AdhocActivity) error {
	greeting := "Hello"
	if parentName != "" {
		greeting = "Hello " + parentName
	}

	total := 0
	var rows strings.Builder
	var lines strings.Builder
	for _, a := range activities {
		total += a.DurationSeconds
		rows.WriteString(fmt.Sprintf(
			`<p style="margin: 2px 0; font-size: 13px; color: #64748b;">• %s: %s (%s)</p>`,
			a.Title, formatDuration(a.DurationSeconds), a.Outcome))
		lines.WriteString(fmt.Sprintf("  - %s: %s (%s)\r\n", a.Title, formatDuration(a.DurationSeconds), a.Outcome))
	}

	subject := fmt.Sprintf("%s's latest session", studentName)
	html := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: 'Segoe UI', Arial, sans-serif; margin: 0; padding: 0; background-color: #f8fafc;">
  <div style="max-width: 480px; margin: 40px auto; background: white; border-radius: 12px; box-shadow: 0 4px 24px rgba(0,0,0,0.08); overflow: hidden;">
    <div style="background: linear-gradient(135deg, #0ea5e9 0%%, #6366f1 100%%); padding: 32px; text-align: center;">
      <h1 style="color: white; margin: 0; font-size: 24px; font-weight: 700;">Lexio</h1>
      <p style="color: rgba(255,255,255,0.85); margin: 8px 0 0; font-size: 14px;">Session Report</p>
    </div>
    <div style="padding: 32px;">
      <h2 style="margin: 0 0 16px; font-size: 20px; color: #1e293b;">%s,</h2>
      <p style="color: #64748b; font-size: 14px; line-height: 1.6; margin: 0 0 16px;">
        %s just finished a session (%s total):
      </p>
      %s
    </div>
  </div>
</body>
</html>`, greeting, studentName, formatDuration(total), rows.String())

	text := fmt.Sprintf("%s,\r\n\r\n%s just finished a session (%s total):\r\n\r\n%s",
		greeting, studentName, formatDuration(total), lines.String())

	return s.send(to, subject, html, text)
}

func (s *EmailService) send(to, subject, htmlBody, textBody string) error {
	if s.devMode {
		log.Printf("📧 [DEV EMAIL] To: %s | Subject: %s", to, subject)
		log.Printf("📧 Body:\n%s", textBody)
		return nil
	}

	boundary := "lexio-report-boundary"
	headers := []string{
		fmt.Sprintf("From: %s <%s>", s.fromName, s.from),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Reply-To: %s", s.replyTo),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		fmt.Sprintf(`Content-Type: multipart/alternative; boundary=%q`, boundary),
	}

	var body strings.Builder
	body.WriteString(strings.Join(headers, "\r\n"))
	body.WriteString("\r\n\r\n")
	body.WriteString("--" + boundary + "\r\n")
	body.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	body.WriteString(textBody)
	body.WriteString("\r\n--" + boundary + "\r\n")
	body.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	body.WriteString(htmlBody)
	body.WriteString("\r\n--" + boundary + "--\r\n")

	auth := smtp.PlainAuth("", s.user, s.pass, s.host)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)

	if err := smtp.SendMail(addr, auth, s.from, []string{to}, []byte(body.String())); err != nil {
		return classifyDeliveryError(err)
	}

	log.Printf("📧 Email sent to %s: %s", to, subject)
	return nil
}

// classifyDeliveryError sorts transport failures into credential problems,
// connectivity problems, and everything else for caller-facing messaging.
func classifyDeliveryError(err error) *DeliveryError {
	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "535"), strings.Contains(msg, "auth"),
		strings.Contains(msg, "username and password"):
		return &DeliveryError{Kind: DeliveryAuth, Err: err}
	case strings.Contains(msg, "connection"), strings.Contains(msg, "dial"),
		strings.Contains(msg, "timeout"), strings.Contains(msg, "no such host"):
		return &DeliveryError{Kind: DeliveryConnection, Err: err}
	default:
		return &DeliveryError{Kind: DeliveryGeneric, Err: err}
	}
}

func formatDuration(seconds int) string {
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	if seconds < 3600 {
		return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
	}
	return fmt.Sprintf("%dh %dm", seconds/3600, (seconds%3600)/60)
}
