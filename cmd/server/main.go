package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/evpower/recruit-backend/internal/assessment"
	"github.com/evpower/recruit-backend/internal/attemptstore"
	"github.com/evpower/recruit-backend/internal/config"
	"github.com/evpower/recruit-backend/internal/database"
	"github.com/evpower/recruit-backend/internal/handler"
	"github.com/evpower/recruit-backend/internal/logger"
	"github.com/evpower/recruit-backend/internal/mail"
	"github.com/evpower/recruit-backend/internal/middleware"
	"github.com/evpower/recruit-backend/internal/repository"
	"github.com/evpower/recruit-backend/internal/router"
	"github.com/evpower/recruit-backend/internal/service"
	"github.com/evpower/recruit-backend/internal/validator"
	"github.com/evpower/recruit-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Dur("test_time_limit", cfg.TestTimeLimit).
		Msg("Starting Recruit Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	staffRepo := repository.NewStaffRepository(pool)
	candidateRepo := repository.NewAptitudeUserRepository(pool)
	applicationRepo := repository.NewApplicationRepository(pool)
	positionRepo := repository.NewJobPositionRepository(pool)
	questionRepo := repository.NewAptitudeQuestionRepository(pool)
	attemptRepo := repository.NewAttemptRepository(pool)
	dashboardRepo := repository.NewDashboardRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, rdb)
	staffService := service.NewStaffService(staffRepo, authService)
	candidateService := service.NewCandidateService(candidateRepo, authService)
	mediaService := service.NewMediaService(cfg)
	mailQueue := mail.NewQueue(rdb)
	applicationService := service.NewApplicationService(cfg, applicationRepo, mediaService, authService, mailQueue, log)
	positionService := service.NewPositionService(positionRepo, rdb, log)
	questionService := service.NewQuestionService(questionRepo, rdb, log)
	attemptStore := attemptstore.NewRedisStore(rdb, log)
	attemptService := service.NewAttemptService(attemptStore, rdb, log)
	dashboardService := service.NewDashboardService(dashboardRepo, attemptRepo, attemptStore, log)

	manager := assessment.NewManager(questionService, attemptStore, cfg.TestTimeLimit, nil, log)
	manager.OnFinalize(attemptService.PublishFinalized)

	// ─── Prewarm Redis Caches ─────────────────────────────────────────
	// Load the question bank into Redis BEFORE accepting traffic so the
	// first wave of test starts does not stampede PostgreSQL.
	if n, err := questionService.Warm(ctx); err != nil {
		log.Warn().Err(err).Msg("Question cache prewarm failed")
	} else {
		log.Info().Int("questions", n).Msg("Question cache warmed")
	}

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:        handler.NewAuthHandler(authService, staffService, candidateService, log),
		Application: handler.NewApplicationHandler(applicationService, cfg.MaxUploadBytes, log),
		Position:    handler.NewPositionHandler(positionService, log),
		Assessment:  handler.NewAssessmentHandler(manager, log),
		WS:          handler.NewWSHandler(manager, log, cfg.AllowedOrigins),
		Attempt:     handler.NewAttemptHandler(attemptService, log),
		Question:    handler.NewQuestionHandler(questionService, log),
		Dashboard:   handler.NewDashboardHandler(dashboardService, log),
		System:      handler.NewSystemHandler(rdb, pool, log),
	}

	limiters := &router.Limiters{
		Login:  middleware.NewRateLimiter(10, time.Minute),
		Intake: middleware.NewRateLimiter(5, time.Minute),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var workers sync.WaitGroup

	var sender mail.Sender
	if cfg.SMTPEnabled() {
		sender = mail.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom)
	} else {
		log.Warn().Msg("SMTP_HOST not set, outgoing mail is logged only")
		sender = mail.NewLogSender(log)
	}

	archiveWorker := worker.NewAttemptArchiveWorker(attemptRepo, rdb, log)
	mailWorker := worker.NewMailWorker(sender, rdb, log)

	workers.Add(2)
	go func() { defer workers.Done(); archiveWorker.Start(workerCtx) }()
	go func() { defer workers.Done(); mailWorker.Start(workerCtx) }()

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, limiters, cfg, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop live countdowns and limiter cleanup.
	manager.Shutdown()
	limiters.Stop()

	// 3. Stop background workers and wait for the archive queue to drain.
	workerCancel()
	done := make(chan struct{})
	go func() { workers.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		log.Warn().Msg("Workers did not stop in time")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
