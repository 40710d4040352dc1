package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/evpower/recruit-backend/internal/config"
	"github.com/evpower/recruit-backend/internal/handler"
	"github.com/evpower/recruit-backend/internal/middleware"
	"github.com/evpower/recruit-backend/internal/model"
	"github.com/evpower/recruit-backend/internal/response"
	"github.com/evpower/recruit-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth        *handler.AuthHandler
	Application *handler.ApplicationHandler
	Position    *handler.PositionHandler
	Assessment  *handler.AssessmentHandler
	WS          *handler.WSHandler
	Attempt     *handler.AttemptHandler
	Question    *handler.QuestionHandler
	Dashboard   *handler.DashboardHandler
	System      *handler.SystemHandler
}

// Limiters are the per-IP rate limiters of the public write endpoints.
type Limiters struct {
	Login  *middleware.RateLimiter
	Intake *middleware.RateLimiter
}

// Stop ends the limiters' cleanup goroutines.
func (l *Limiters) Stop() {
	if l.Login != nil {
		l.Login.Stop()
	}
	if l.Intake != nil {
		l.Intake.Stop()
	}
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	limiters *Limiters,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())
	router.Use(response.RequestLogger(log))

	// Workbooks are already zip-compressed.
	brotliCfg := middleware.DefaultBrotliConfig
	brotliCfg.SkipPaths = []string{"/api/v1/staff/attempts/export"}
	router.Use(middleware.BrotliWithConfig(brotliCfg))

	router.GET("/health", handlers.System.Health)

	// ─── 0. Public Group (No Auth) ─────────────────────────────────────
	publicAPI := router.Group("/api/v1/public")
	{
		publicAPI.GET("/positions", middleware.CacheControl(300), handlers.Position.ListPositions)
		publicAPI.POST("/applications", limiters.Intake.Middleware(), handlers.Application.SubmitApplication)
	}

	// Path used by the existing application form client.
	router.POST("/api/applicationform", limiters.Intake.Middleware(), handlers.Application.SubmitApplication)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/staff/login", limiters.Login.Middleware(), handlers.Auth.StaffLogin)
		auth.POST("/candidate/login", limiters.Login.Middleware(), handlers.Auth.CandidateLogin)

		// Authenticated profile routes
		staffSession := []gin.HandlerFunc{
			middleware.RequireStaffJWT(authService),
			middleware.CheckActiveSession(authService),
		}
		auth.GET("/staff/me", append(staffSession, handlers.Auth.StaffMe)...)
		auth.POST("/staff/logout", append(staffSession, handlers.Auth.Logout)...)
		auth.POST("/candidate/logout",
			middleware.RequireCandidateJWT(authService),
			middleware.CheckActiveSession(authService),
			handlers.Auth.Logout,
		)
	}

	// ─── 2. Candidate Group (JWT + Single Session) ─────────────────────
	candidateAPI := router.Group("/api/v1/candidate")
	candidateAPI.Use(
		middleware.RequireCandidateJWT(authService),
		middleware.CheckActiveSession(authService),
		middleware.NoStore(),
	)
	{
		candidateAPI.POST("/assessment/start", handlers.Assessment.StartAssessment)
		candidateAPI.GET("/assessment/state", handlers.Assessment.GetAssessmentState)
		candidateAPI.PUT("/assessment/answers", handlers.Assessment.SelectAnswer)
		candidateAPI.POST("/assessment/submit", handlers.Assessment.SubmitAssessment)
	}

	// ─── 3. WebSocket Group (Candidate WS Auth) ────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(
		middleware.RequireCandidateWSAuth(authService),
		middleware.CheckActiveSession(authService),
	)
	{
		ws.GET("/candidate/assessment/stream", handlers.WS.AssessmentStream)
	}

	// ─── 4. Staff Group (JWT + RBAC) ───────────────────────────────────
	staffAPI := router.Group("/api/v1/staff")
	staffAPI.Use(
		middleware.RequireStaffJWT(authService),
		middleware.CheckActiveSession(authService),
		middleware.RequireRole(model.RoleAdmin, model.RoleHR),
		middleware.NoStore(),
	)
	{
		staffAPI.GET("/dashboard", handlers.Dashboard.GetDashboardData)
		staffAPI.GET("/applications", handlers.Application.ListApplications)

		// Attempt log
		staffAPI.GET("/attempts", handlers.Attempt.ListAttempts)
		staffAPI.POST("/attempts/view", handlers.Attempt.ListHandoffAttempts)
		staffAPI.GET("/attempts/export", handlers.Attempt.ExportAttempts)
		staffAPI.GET("/attempts/stream", handlers.Attempt.StreamAttempts)
		staffAPI.GET("/attempts/:index/results", handlers.Attempt.GetAttemptResults)
		staffAPI.POST("/results/view", handlers.Attempt.ViewHandoffResults)

		// Admin only
		adminOnly := middleware.RequireRole(model.RoleAdmin)
		staffAPI.POST("/positions", adminOnly, handlers.Position.CreatePosition)
		staffAPI.GET("/questions", adminOnly, handlers.Question.ListQuestions)
		staffAPI.POST("/questions", adminOnly, handlers.Question.AddQuestion)
		staffAPI.GET("/system/metrics", adminOnly, handlers.System.SystemMetricsSSE)
	}

	return router
}
