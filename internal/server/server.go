// Package server contains the HTTP handlers and routing for the Pitchside admin API.
package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	_ "pitchside/docs" // swagger docs
	"pitchside/internal/auth"
	"pitchside/internal/authz"
	"pitchside/internal/cache"
	"pitchside/internal/config"
	"pitchside/internal/middleware"
	"pitchside/internal/models"
	"pitchside/internal/repository"
	"pitchside/internal/sweeper"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the already-initialized dependencies the server is built from.
type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Redis    *redis.Client
	Cache    *cache.Cache
	Sweeper  *sweeper.Sweeper
	Clock    clockwork.Clock
	Enforcer *authz.Enforcer
}

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	cache          *cache.Cache
	clock          clockwork.Clock
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	tokens         *auth.TokenService
	enforcer       *authz.Enforcer
	sweeper        *sweeper.Sweeper
	resources      *repository.Resources
	userRepo       repository.UserRepository
	settingRepo    repository.SettingRepository
}

// NewServer creates a Server using already-initialized dependencies. Sweeper, Redis and Cache may be nil.
func NewServer(deps Deps) (*Server, error) {
	if deps.Config == nil || deps.DB == nil {
		return nil, errors.New("server requires config and database")
	}

	ttl, err := auth.ParseTTL(deps.Config.JWTExpiresIn)
	if err != nil {
		return nil, err
	}

	clock := deps.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	enforcer := deps.Enforcer
	if enforcer == nil {
		if enforcer, err = authz.NewEnforcer(); err != nil {
			return nil, err
		}
	}

	c := deps.Cache
	if c == nil {
		c = cache.New(deps.Redis)
	}

	return &Server{
		config:         deps.Config,
		db:             deps.DB,
		redis:          deps.Redis,
		cache:          c,
		clock:          clock,
		promMiddleware: middleware.InitMetrics("pitchside-api"),
		tokens:         auth.NewTokenService(deps.Config.JWTSecret, ttl, clock),
		enforcer:       enforcer,
		sweeper:        deps.Sweeper,
		resources:      repository.NewResources(deps.DB),
		userRepo:       repository.NewUserRepository(deps.DB, c),
		settingRepo:    repository.NewSettingRepository(deps.DB, c),
	}, nil
}

// App builds the Fiber app with middleware and routes. It is created once.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}

	app := fiber.New(fiber.Config{
		AppName:      s.config.AppName,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ErrorHandler: s.errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// errorHandler renders every error returned from a handler. Causes are logged, never sent.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		if appErr.Code == models.CodeInternal {
			middleware.Logger.ErrorContext(c.UserContext(), "Request failed",
				slog.String("path", c.Path()),
				slog.String("error", err.Error()),
			)
		}
		return models.RespondWithAppError(c, appErr)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(models.ErrorResponse{Success: false, Message: fiberErr.Message})
	}

	middleware.Logger.ErrorContext(c.UserContext(), "Unhandled error",
		slog.String("path", c.Path()),
		slog.String("error", err.Error()),
	)
	return models.RespondWithAppError(c, models.NewInternalError(err))
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	app.Use(middleware.TracingMiddleware())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowCredentials: origins != "*",
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Success: false,
				Message: "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	api.Get("/health", s.HealthCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Swagger documentation
	api.Get("/swagger/*", swagger.HandlerDefault)

	// Auth routes
	authRoutes := api.Group("/auth")
	authRoutes.Post("/register", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "register"), s.Register)
	authRoutes.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	authRoutes.Get("/me", s.AuthRequired(), s.GetMe)
	authRoutes.Put("/profile", s.AuthRequired(), s.UpdateProfile)
	authRoutes.Put("/updatepassword", s.AuthRequired(), s.UpdatePassword)
	authRoutes.Post("/logout", s.AuthRequired(), s.Logout)

	// App configuration
	cfg := api.Group("/config")
	cfg.Get("/app-name", s.GetAppName)
	cfg.Put("/app-name", s.AuthRequired(), s.Permit(authz.ObjConfig, authz.ActWrite), s.UpdateAppName)

	// Ad counters are public; register them before the generic /:id routes.
	ads := api.Group("/ads")
	counterLimit := middleware.RateLimit(s.redis, 60, time.Minute, "ad_counter")
	ads.Put("/:id/click", counterLimit, s.adCounter("click_count"))
	ads.Put("/:id/view", counterLimit, s.adCounter("view_count"))

	r := s.resources
	mountResource(s, api.Group("/categories"), r.Categories, "Categories")
	mountResource(s, api.Group("/streams"), r.Streams, "Streams", toggleLive)
	mountResource(s, api.Group("/livetv"), r.LiveTV, "Live TV channels", toggleLive)
	mountResource(s, api.Group("/highlights"), r.Highlights, "Highlights")
	mountResource(s, api.Group("/announcements"), r.Announcements, "Announcements", toggleActive)
	mountResource(s, ads, r.Ads, "Ads", toggleActive)
	mountResource(s, api.Group("/social-links"), r.SocialLinks, "Social links", toggleActive)
	mountResource(s, api.Group("/base-urls"), r.BaseURLs, "Base URLs", toggleActive)

	// Admin routes
	admin := api.Group("/admin", s.AuthRequired(), s.Permit(authz.ObjOps, authz.ActRead))
	admin.Get("/sweeper", s.GetSweeperStatus)
	admin.Post("/sweeper/run", s.Permit(authz.ObjOps, authz.ActWrite), s.RunSweeper)
	admin.Get("/users", s.Permit(authz.ObjUsers, authz.ActWrite), s.ListUsers)
	admin.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Pitchside API Metrics Dashboard",
	}))
}

// Start listens on the configured port. It blocks until the app is shut down.
func (s *Server) Start() error {
	app := s.App()
	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown stops accepting requests and waits for in-flight ones or ctx, whichever ends first.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app == nil {
		return nil
	}
	middleware.Logger.Info("Shutting down server")
	return s.app.ShutdownWithContext(ctx)
}
