// Package main is the entrypoint for the APIWatch API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/apiwatch/apiwatch/internal/auth"
	"github.com/apiwatch/apiwatch/internal/billing"
	"github.com/apiwatch/apiwatch/internal/cache"
	"github.com/apiwatch/apiwatch/internal/config"
	"github.com/apiwatch/apiwatch/internal/diag"
	"github.com/apiwatch/apiwatch/internal/handler"
	"github.com/apiwatch/apiwatch/internal/middleware"
	"github.com/apiwatch/apiwatch/internal/repository"
	"github.com/apiwatch/apiwatch/internal/server"
	"github.com/apiwatch/apiwatch/internal/service"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Initialize database
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	// Initialize session store
	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	// Diagnostic event pipeline (repository is the sink)
	diagLogger := diag.NewLogger(repo, logger, cfg.DiagBufferSize)

	// Session verification
	verifier := auth.NewSessionVerifier(cacheClient, cfg.SessionCookie, logger)

	// Payment processor client
	portalClient := billing.NewClient(cfg.BillingAPIBase, cfg.BillingSecretKey)

	// Services
	monitorService := service.NewMonitorService(repo)

	// Handlers
	h := handler.New()
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	alertHandler := handler.NewAlertHandler(repo, diagLogger, logger)
	notificationHandler := handler.NewNotificationHandler(repo, diagLogger, logger)
	billingHandler := handler.NewBillingHandler(repo, portalClient, cfg.PortalReturnURL(), diagLogger, logger)
	apiHandler := handler.NewAPIHandler(monitorService, diagLogger, logger)

	// Setup router
	r := setupRouter(h, healthHandler, alertHandler, notificationHandler, billingHandler, apiHandler, verifier, diagLogger, cfg, logger)

	// Create and run server
	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)
	srv.OnShutdown("diagnostic logger", diagLogger.Shutdown)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"base_url", cfg.BaseURL,
		"env", cfg.AppEnv,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	h *handler.Handler,
	healthHandler *handler.HealthHandler,
	alertHandler *handler.AlertHandler,
	notificationHandler *handler.NotificationHandler,
	billingHandler *handler.BillingHandler,
	apiHandler *handler.APIHandler,
	verifier auth.Verifier,
	diagLogger *diag.Logger,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger, diagLogger))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	// Route guard: unauthenticated navigation under protected prefixes
	// is sent to the sign-in page before any handler runs.
	r.Use(middleware.Guard(middleware.GuardConfig{
		Logger:     logger,
		Verifier:   verifier,
		Prefixes:   cfg.GetProtectedPrefixes(),
		SigninPath: cfg.SigninPath,
	}))

	// Health endpoints (no auth required)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)

	// Root info endpoint
	r.Get("/", h.Hello)

	sessionCfg := middleware.SessionConfig{
		Logger:   logger,
		Verifier: verifier,
	}

	// Authenticated JSON surface. Diagnostics wraps the session gate so
	// a 401 still produces its request and error events.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Diagnostics(diagLogger))
		r.Use(middleware.Session(sessionCfg))

		r.Route("/alerts", func(r chi.Router) {
			r.Get("/", alertHandler.List)
			r.Patch("/{id}", alertHandler.Update)
		})

		r.Put("/user/notifications", notificationHandler.Update)

		r.Post("/billing/create-portal", billingHandler.CreatePortal)

		r.Route("/apis", func(r chi.Router) {
			r.Get("/", apiHandler.List)
			r.Post("/", apiHandler.Register)
			r.Delete("/{id}", apiHandler.Delete)
		})
	})

	// 404 and 405 handlers
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
