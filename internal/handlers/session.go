package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"

	"lexio-backend/internal/middleware"
	"lexio-backend/internal/models"
	"lexio-backend/internal/services"
)

type SessionHandler struct {
	sessions *services.SessionService
}

func NewSessionHandler(sessions *services.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

func (h *SessionHandler) StartApp(w http.ResponseWriter, r *http.Request) {
	studentID := middleware.GetUserID(r.Context())

	session, err := h.sessions.StartAppSession(r.Context(), studentID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session": session,
	})
}

func (h *SessionHandler) CloseApp(w http.ResponseWriter, r *http.Request) {
	studentID := middleware.GetUserID(r.Context())

	// The body is optional: clients may report per-activity durations for
	// the snapshot.
	var req struct {
		Activities []models.SnapshotActivity `json:"activities"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	session, err := h.sessions.CloseAppSession(r.Context(), studentID, req.Activities)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session": session,
	})
}

func (h *SessionHandler) StartReading(w http.ResponseWriter, r *http.Request) {
	studentID := middleware.GetUserID(r.Context())

	var req struct {
		ActivityID string `json:"activity_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	activityID, err := uuid.Parse(req.ActivityID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid activity_id", r))
		return
	}

	session, err := h.sessions.StartReadingSession(r.Context(), studentID, activityID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session": session,
	})
}

func (h *SessionHandler) CloseReading(w http.ResponseWriter, r *http.Request) {
	studentID := middleware.GetUserID(r.Context())

	var req struct {
		ActivityID string `json:"activity_id"`
		WordCount  int    `json:"word_count"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	activityID, err := uuid.Parse(req.ActivityID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid activity_id", r))
		return
	}

	session, err := h.sessions.CloseReadingSession(r.Context(), studentID, activityID, req.WordCount)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session": session,
	})
}
