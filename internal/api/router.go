package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/taskhq/task-manager-api/internal/api/handler"
	"github.com/taskhq/task-manager-api/internal/api/middleware"
	"github.com/taskhq/task-manager-api/internal/auth"
	"github.com/taskhq/task-manager-api/internal/auth/password"
	"github.com/taskhq/task-manager-api/internal/auth/token"
	"github.com/taskhq/task-manager-api/internal/core/service"
	"github.com/taskhq/task-manager-api/internal/infrastructure/config"
	mongodb "github.com/taskhq/task-manager-api/internal/infrastructure/db/mongo"
	redisdb "github.com/taskhq/task-manager-api/internal/infrastructure/db/redis"
	"github.com/taskhq/task-manager-api/internal/infrastructure/queue"
)

// NewRouter builds the Echo instance with all routes registered. The returned
// dispatcher must be started by the caller; it owns the activity workers.
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) (*echo.Echo, *queue.Dispatcher) {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("taskmanager"))

	// --- Auth building blocks ---
	codec := token.NewCodec(token.Config{
		Secret:     cfg.Auth.JWTSecret,
		Issuer:     cfg.Auth.Issuer,
		Audience:   cfg.Auth.Audience,
		AccessTTL:  cfg.Auth.AccessTTL,
		RefreshTTL: cfg.Auth.RefreshTTL,
	})
	hasher := password.NewHasher(cfg.Auth.BcryptCost)
	policy := password.Policy{
		MinLength:      cfg.Auth.PasswordMinLength,
		RequireUpper:   cfg.Auth.PasswordRequireUpper,
		RequireLower:   cfg.Auth.PasswordRequireLower,
		RequireDigit:   cfg.Auth.PasswordRequireDigit,
		RequireSpecial: cfg.Auth.PasswordRequireSpecial,
	}

	// --- Persistence and infrastructure ---
	userRepo := mongodb.NewUserRepository(db)
	taskRepo := mongodb.NewTaskRepository(db)
	activityRepo := mongodb.NewActivityRepository(db)
	throttle := redisdb.NewLoginThrottle(rdb)
	dedup := redisdb.NewDedupChecker(rdb)

	// --- Services ---
	authService := service.NewAuthService(userRepo, policy, hasher, codec, throttle, log)
	activityService := service.NewActivityService(activityRepo, dedup, log)
	dispatcher := queue.NewDispatcher(0, activityService, log)
	taskService := service.NewTaskService(taskRepo, dispatcher, log)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(authService)
	taskHandler := handler.NewTaskHandler(taskService, activityService)
	healthHandler := handler.NewHealthHandler(db, rdb)
	welcomeHandler := handler.NewWelcomeHandler()

	authn := middleware.Authenticate(codec)
	authnOptional := middleware.AuthenticateOptional(codec)
	ownsTask := middleware.RequireOwner(taskRepo, "id")

	// --- Public surface ---
	e.GET("/", welcomeHandler.Welcome, authnOptional)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/refresh", authHandler.Refresh)
	e.GET("/auth/me", authHandler.Me, authn)

	// --- Task routes ---
	tasks := e.Group("/tasks", authn)
	tasks.POST("", taskHandler.Create)
	tasks.GET("", taskHandler.List)
	tasks.GET("/:id", taskHandler.Get, ownsTask)
	tasks.PATCH("/:id", taskHandler.Update, ownsTask)
	tasks.PATCH("/:id/status", taskHandler.UpdateStatus, ownsTask)
	tasks.DELETE("/:id", taskHandler.Delete, ownsTask)
	tasks.GET("/:id/activity", taskHandler.Activity, ownsTask)

	// Admin-only surface. The service clears owner scoping for admin
	// callers, so this view spans every account.
	admin := e.Group("/admin", authn, middleware.RequireRoles(auth.RoleAdmin))
	admin.GET("/tasks", taskHandler.List)
	admin.POST("/users", authHandler.CreateUser)

	return e, dispatcher
}
