package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"lexio-backend/internal/handlers"
	"lexio-backend/internal/middleware"
	"lexio-backend/internal/models"
	"lexio-backend/internal/websocket"
)

func New(
	jwtAuth *middleware.JWTAuth,
	sessionHandler *handlers.SessionHandler,
	statsHandler *handlers.StatsHandler,
	reportHandler *handlers.ReportHandler,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Report email rate limiter (10 req/min per IP)
	emailLimiter := middleware.NewRateLimiter(10, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Session Routes ────
		r.Route("/sessions", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Post("/app/start", sessionHandler.StartApp)
			r.Post("/app/close", sessionHandler.CloseApp)
			r.Post("/reading/start", sessionHandler.StartReading)
			r.Post("/reading/close", sessionHandler.CloseReading)
		})

		// ──── Statistics Routes ────
		r.Route("/stats", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/daily", statsHandler.Daily)
		})

		// ──── Teacher Routes ────
		r.Route("/students", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Use(middleware.RequireRole(models.RoleTeacher))
			r.Get("/{id}/stats", statsHandler.StudentView)
		})

		// ──── Report Routes ────
		r.Route("/reports", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Use(middleware.RequireRole(models.RoleTeacher))
			r.Use(emailLimiter.Middleware)
			r.Post("/email", reportHandler.SendEmail)
			r.Post("/email/adhoc", reportHandler.SendAdhocEmail)
		})

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
