package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/hugh/compass/internal/api/handlers"
	"github.com/hugh/compass/internal/api/middleware"
	"github.com/hugh/compass/internal/auth"
	"github.com/hugh/compass/internal/database/models"
	"github.com/hugh/compass/internal/mentorship"
	"github.com/hugh/compass/internal/notify"
	"github.com/hugh/compass/internal/progress"
	"github.com/hugh/compass/internal/reports"
	"github.com/hugh/compass/pkg/crypto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Assistant routes get a per-user budget on top of the global limit.
// Mentors generate reports across several clients, so they get more.
const assistantRateWindow = 60

var assistantLimits = middleware.RoleLimits{
	Default: 30,
	ByRole: map[string]int{
		string(models.RoleClient): 30,
		string(models.RoleMentor): 60,
	},
}

type Router struct {
	chi.Router
}

type RouterConfig struct {
	DB             *gorm.DB
	Redis          *redis.Client // optional; health check and notification stream
	Logger         *slog.Logger
	JWTService     *auth.JWTService
	AuthService    *auth.Service
	Mentorship     *mentorship.Service
	Encryptor      *crypto.Encryptor
	Publisher      *notify.Publisher // optional
	Reports        *reports.Generator
	AllowedOrigins []string // CORS allowed origins
	RateLimitReqs  int      // Rate limit requests per window
	RateLimitSecs  int      // Rate limit window in seconds
	SecureCookie   bool
}

func NewRouter(cfg RouterConfig) *Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.Metrics)

	// Rate limiting - applied globally to prevent abuse
	if cfg.RateLimitReqs > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimitReqs, cfg.RateLimitSecs))
	}

	// CORS - restrict to configured origins, or allow all in development
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		// Default to localhost for development - configure in production
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.CSRF(middleware.NewCSRFStore()))

	calculator := progress.NewCalculator(cfg.DB)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Redis)
	authHandler := handlers.NewAuthHandler(cfg.AuthService, cfg.SecureCookie)
	relationshipHandler := handlers.NewRelationshipHandler(cfg.Mentorship, cfg.Logger)
	goalHandler := handlers.NewGoalHandler(cfg.DB, cfg.Logger)
	taskHandler := handlers.NewTaskHandler(cfg.DB, cfg.Logger)
	logHandler := handlers.NewLogHandler(cfg.DB, cfg.Logger)
	reflectionHandler := handlers.NewReflectionHandler(cfg.DB, cfg.Encryptor, cfg.Logger)
	progressHandler := handlers.NewProgressHandler(calculator, cfg.Logger)
	assistantHandler := handlers.NewAssistantHandler(cfg.Reports, cfg.Logger)
	notificationHandler := handlers.NewNotificationHandler(notify.NewService(cfg.DB), cfg.Publisher, cfg.Logger)
	clientViewHandler := handlers.NewClientViewHandler(cfg.DB, cfg.Mentorship, cfg.Encryptor, calculator, cfg.Reports, cfg.Logger)

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public auth endpoints
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/logout", authHandler.Logout)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTService))

			// User endpoints
			r.Get("/me", authHandler.Me)
			r.Put("/me", authHandler.UpdateMe)
			r.Post("/me/mentor", authHandler.RegisterMentor)

			r.Route("/goals", func(r chi.Router) {
				r.Get("/", goalHandler.List)
				r.Post("/", goalHandler.Create)
				r.Put("/{id}", goalHandler.Update)
				r.Delete("/{id}", goalHandler.Delete)
			})

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", taskHandler.List)
				r.Post("/", taskHandler.Create)
				r.Post("/{id}/toggle", taskHandler.Toggle)
				r.Delete("/{id}", taskHandler.Delete)
			})

			r.Route("/logs", func(r chi.Router) {
				r.Get("/", logHandler.List)
				r.Post("/", logHandler.Create)
			})

			r.Route("/reflections", func(r chi.Router) {
				r.Get("/", reflectionHandler.List)
				r.Post("/", reflectionHandler.Create)
			})

			r.Get("/progress", progressHandler.Get)

			r.Route("/assistant", func(r chi.Router) {
				r.Use(middleware.RateLimitByRole(assistantLimits, assistantRateWindow))
				r.Post("/chat", assistantHandler.Chat)
				r.Get("/reports", assistantHandler.ListReports)
				r.Post("/reports", assistantHandler.GenerateReport)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", notificationHandler.List)
				r.Get("/unread-count", notificationHandler.UnreadCount)
				r.Get("/stream", notificationHandler.Stream)
				r.Post("/read-all", notificationHandler.MarkAllRead)
				r.Post("/{id}/read", notificationHandler.MarkRead)
			})

			r.Get("/client/relationships", relationshipHandler.ListForClient)

			// Party checks live in the mentorship service; accept is
			// called by the client, so the group is not role-gated.
			r.Route("/mentor", func(r chi.Router) {
				r.Post("/invite", relationshipHandler.Invite)
				r.With(middleware.RequireRole(string(models.RoleMentor))).
					Get("/relationships", relationshipHandler.List)
				r.Post("/relationships/{id}/accept", relationshipHandler.Accept)
				r.Delete("/relationships/{id}/terminate", relationshipHandler.Terminate)
				r.Get("/relationships/{id}/permissions", relationshipHandler.GetPermissions)
				r.Put("/relationships/{id}/permissions", relationshipHandler.UpdatePermissions)
				r.Get("/relationships/{id}/notes", relationshipHandler.ListNotes)
				r.Post("/relationships/{id}/notes", relationshipHandler.AddNote)
				r.Get("/clients/{clientId}/{category}", clientViewHandler.View)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireRole("admin"))
				r.Delete("/relationships/{id}", relationshipHandler.Purge)
			})
		})
	})

	return &Router{r}
}
