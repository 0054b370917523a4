package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lexio-backend/internal/config"
	"lexio-backend/internal/database"
	"lexio-backend/internal/handlers"
	"lexio-backend/internal/middleware"
	"lexio-backend/internal/repository"
	"lexio-backend/internal/router"
	"lexio-backend/internal/services"
	"lexio-backend/internal/websocket"
)

func main() {
	log.Println("🚀 Starting Lexio Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	// ──── Step 3: Initialize Redis Clients ────
	redisClients, err := database.NewRedisClients(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClients.Close()
	log.Println("✓ Redis connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(pool, "migrations"); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Initialize Repositories ────
	studentRepo := repository.NewStudentRepo(pool)
	sessionRepo := repository.NewSessionRepo(pool)
	dailyStatsRepo := repository.NewDailyStatsRepo(pool)
	contentRepo := repository.NewContentRepo(pool)
	progressRepo := repository.NewProgressRepo(pool)

	// ──── Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	emailService := services.NewEmailService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPReplyTo)
	statsService := services.NewStatsService(dailyStatsRepo, progressRepo, contentRepo)
	reportService := services.NewReportService(dailyStatsRepo, studentRepo, contentRepo, redisClients.Cache)
	sessionService := services.NewSessionService(sessionRepo, studentRepo, statsService, reportService, redisClients.Cache)

	// ──── Initialize Handlers ────
	sessionHandler := handlers.NewSessionHandler(sessionService)
	statsHandler := handlers.NewStatsHandler(dailyStatsRepo, sessionRepo, reportService)
	reportHandler := handlers.NewReportHandler(reportService, emailService, studentRepo, dailyStatsRepo)

	// ──── Step 5: Start Report Scheduler ────
	reportScheduler := services.NewReportScheduler(studentRepo, dailyStatsRepo, reportService, emailService)
	reportScheduler.Start()
	log.Println("✓ Report scheduler started")

	// ──── Step 6: Start WebSocket Hub ────
	wsHub := websocket.NewHub(redisClients.PubSub, cfg.JWTSecret)
	log.Println("✓ WebSocket hub started")

	// ──── Step 7: Start HTTP Server ────
	r := router.New(
		jwtAuth,
		sessionHandler,
		statsHandler,
		reportHandler,
		wsHub,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		reportScheduler.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ Lexio Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
