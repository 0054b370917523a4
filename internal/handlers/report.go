package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"lexio-backend/internal/models"
	"lexio-backend/internal/repository"
	"lexio-backend/internal/services"
	"lexio-backend/internal/timeutil"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type ReportHandler struct {
	reports    *services.ReportService
	email      *services.EmailService
	students   *repository.StudentRepo
	dailyStats *repository.DailyStatsRepo
}

func NewReportHandler(
	reports *services.ReportService,
	email *services.EmailService,
	students *repository.StudentRepo,
	dailyStats *repository.DailyStatsRepo,
) *ReportHandler {
	return &ReportHandler{reports: reports, email: email, students: students, dailyStats: dailyStats}
}

// SendEmail assembles a day's report and mails it to the student's parent.
// The rollup write and the email send are not transactional: a delivery
// failure leaves the rollup untouched and is safe to retry.
func (h *ReportHandler) SendEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StudentID string `json:"student_id"`
		Date      string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	studentID, err := uuid.Parse(req.StudentID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid student_id", r))
		return
	}

	day := timeutil.DayBucket(time.Now())
	if req.Date != "" {
		parsed, parseErr := time.Parse("2006-01-02", req.Date)
		if parseErr != nil {
			writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "date must be YYYY-MM-DD", r))
			return
		}
		day = timeutil.DayBucket(parsed)
	}

	student, err := h.students.GetByID(r.Context(), studentID)
	if errors.Is(err, pgx.ErrNoRows) {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Student not found", r))
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load student", r))
		return
	}

	if student.ParentEmail == nil || !emailRegex.MatchString(*student.ParentEmail) {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{"parent_email": "Student has no valid parent email on file"}, r))
		return
	}

	report, err := h.reports.GetDailyReport(r.Context(), studentID, day)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	parentName := ""
	if student.ParentName != nil {
		parentName = *student.ParentName
	}

	if err := h.email.SendDailyReport(*student.ParentEmail, parentName, report); err != nil {
		handleServiceError(w, r, err)
		return
	}

	if !report.NoActivity {
		if markErr := h.dailyStats.MarkEmailSent(r.Context(), studentID, day, time.Now()); markErr != nil {
			log.Printf("failed to mark email sent for student %s: %v", studentID, markErr)
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":     "Report email sent",
		"no_activity": report.NoActivity,
	})
}

// SendAdhocEmail renders an email straight from a client-supplied activity
// list, bypassing the rollups.
func (h *ReportHandler) SendAdhocEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StudentID  string                 `json:"student_id"`
		Activities []models.AdhocActivity `json:"activities"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	studentID, err := uuid.Parse(req.StudentID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid student_id", r))
		return
	}

	if len(req.Activities) == 0 {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{"activities": "At least one activity is required"}, r))
		return
	}

	student, err := h.students.GetByID(r.Context(), studentID)
	if errors.Is(err, pgx.ErrNoRows) {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Student not found", r))
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load student", r))
		return
	}

	if student.ParentEmail == nil || !emailRegex.MatchString(*student.ParentEmail) {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{"parent_email": "Student has no valid parent email on file"}, r))
		return
	}

	parentName := ""
	if student.ParentName != nil {
		parentName = *student.ParentName
	}

	if err := h.email.SendAdhocReport(*student.ParentEmail, parentName, student.FullName, req.Activities); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Report email sent"})
}
