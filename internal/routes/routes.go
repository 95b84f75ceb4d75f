package routes

import (
	"net/http"

	"github.com/templui/coachflow/internal/app"
	"github.com/templui/coachflow/internal/handler"
	"github.com/templui/coachflow/internal/metrics"
	"github.com/templui/coachflow/internal/middleware"
	"github.com/templui/coachflow/internal/model"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	health := handler.NewHealthHandler(app.DB)
	achievements := handler.NewAchievementHandler(app.AchievementService)
	workflow := handler.NewWorkflowHandler(app.WorkflowService)
	cards := handler.NewCardHandler(app.CardService)

	limiter := middleware.NewRateLimiter(app.Cfg.RateLimitRPS, app.Cfg.RateLimitBurst)
	adminOnly := middleware.RequireRole(model.RoleAdmin)
	clientOrAdmin := middleware.RequireRole(model.RoleClient, model.RoleAdmin)
	signedScheduler := middleware.SignedScheduler(app.Cfg.CronWebhookSecret)
	schedulerOrAdmin := middleware.RequireRole(model.RoleScheduler, model.RoleAdmin)

	mux := http.NewServeMux()

	// ============================================================================
	// OPERATIONS
	// ============================================================================

	mux.HandleFunc("GET /healthz", health.Health)
	mux.Handle("GET /metrics", metrics.Handler())

	// ============================================================================
	// FUNCTIONS
	// ============================================================================

	// Achievements (clients evaluate themselves, admins anyone)
	mux.HandleFunc("POST /functions/evaluate-achievements", clientOrAdmin(limiter.Limit(achievements.Evaluate)))
	mux.HandleFunc("GET /functions/achievement-progress", clientOrAdmin(limiter.Limit(achievements.Progress)))

	// Workflow (the sweep is called by the external scheduler)
	mux.HandleFunc("POST /functions/workflow-sweep", signedScheduler(schedulerOrAdmin(workflow.Sweep)))
	mux.HandleFunc("POST /functions/workflow-trigger", adminOnly(limiter.Limit(workflow.Trigger)))
	mux.HandleFunc("POST /functions/workflow-enroll", adminOnly(limiter.Limit(workflow.Enroll)))
	mux.HandleFunc("GET /functions/workflow-history", adminOnly(workflow.History))

	// Cards
	mux.HandleFunc("POST /functions/finalize-card", adminOnly(limiter.Limit(cards.Finalize)))

	// Global middleware - executed in order (top to bottom)
	handler := middleware.Chain(
		mux,
		middleware.RequestLogging,
		middleware.Authenticate(app.AuthService),
		middleware.Timeout(app.Cfg.RequestTimeout),
		metrics.InstrumentHandler, // Must wrap the mux directly to see the matched pattern
	)

	return handler
}
