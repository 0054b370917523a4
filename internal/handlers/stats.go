package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"lexio-backend/internal/middleware"
	"lexio-backend/internal/models"
	"lexio-backend/internal/repository"
	"lexio-backend/internal/services"
	"lexio-backend/internal/timeutil"
)

type StatsHandler struct {
	dailyStats *repository.DailyStatsRepo
	sessions   *repository.SessionRepo
	reports    *services.ReportService
}

func NewStatsHandler(dailyStats *repository.DailyStatsRepo, sessions *repository.SessionRepo, reports *services.ReportService) *StatsHandler {
	return &StatsHandler{dailyStats: dailyStats, sessions: sessions, reports: reports}
}

// Daily returns the caller's rollup for a day (zeroed when absent, which is
// expected data, not an error), an active-session indicator, and lifetime
// totals.
func (h *StatsHandler) Daily(w http.ResponseWriter, r *http.Request) {
	studentID := middleware.GetUserID(r.Context())
	ctx := r.Context()

	day, ok := parseDateParam(w, r)
	if !ok {
		return
	}

	roll, err := h.dailyStats.GetByDay(ctx, studentID, day)
	if errors.Is(err, pgx.ErrNoRows) {
		roll = &models.DailyStatistics{
			StudentID:   studentID,
			Day:         day,
			Completions: make([]models.CompletionEntry, 0),
		}
	} else if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load daily statistics", r))
		return
	}

	active, err := h.sessions.HasOpenApp(ctx, studentID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to check active session", r))
		return
	}

	lifetime, err := h.dailyStats.LifetimeTotals(ctx, studentID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load lifetime totals", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"statistics":     roll,
		"active_session": active,
		"lifetime":       lifetime,
	})
}

// StudentView is the teacher-facing viewer with a period switch.
func (h *StatsHandler) StudentView(w http.ResponseWriter, r *http.Request) {
	studentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid student ID", r))
		return
	}

	day, ok := parseDateParam(w, r)
	if !ok {
		return
	}

	period := r.URL.Query().Get("period")
	switch period {
	case "", "daily":
		report, reportErr := h.reports.GetDailyReport(r.Context(), studentID, day)
		if reportErr != nil {
			handleServiceError(w, r, reportErr)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"report": report})
	case "weekly":
		report, reportErr := h.reports.GetWeeklyReport(r.Context(), studentID, day)
		if reportErr != nil {
			handleServiceError(w, r, reportErr)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"report": report})
	default:
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "period must be daily or weekly", r))
	}
}

// parseDateParam reads an optional ?date=YYYY-MM-DD parameter, defaulting to
// today. Writes the error response itself when the value is malformed.
func parseDateParam(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return timeutil.DayBucket(time.Now()), true
	}

	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "date must be YYYY-MM-DD", r))
		return time.Time{}, false
	}
	return timeutil.DayBucket(parsed), true
}
