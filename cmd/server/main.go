package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/gatherhub/moderation-service/internal/config"
	"github.com/gatherhub/moderation-service/internal/database"
	"github.com/gatherhub/moderation-service/internal/handlers"
	"github.com/gatherhub/moderation-service/internal/logging"
	"github.com/gatherhub/moderation-service/internal/middleware"
	"github.com/gatherhub/moderation-service/internal/notify"
	"github.com/gatherhub/moderation-service/internal/platform"
	"github.com/gatherhub/moderation-service/internal/reporter"
	"github.com/gatherhub/moderation-service/internal/repository"
	"github.com/gatherhub/moderation-service/internal/routes"
	"github.com/gatherhub/moderation-service/internal/scheduler"
	"github.com/gatherhub/moderation-service/internal/services"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if cfg.JWTSecret == "" {
		slog.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}
	if cfg.EmailHashSecret == "" {
		slog.Error("EMAIL_HASH_SECRET environment variable is required")
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// Repositories
	reportRepo := repository.NewReportRepository(database.DB)
	eventReporterRepo := repository.NewEventReporterRepository(database.DB)
	escalationRepo := repository.NewEscalationRepository(database.DB)
	blockedRepo := repository.NewBlockedReporterRepository(database.DB)
	settingRepo := repository.NewSettingRepository(database.DB)

	// Domain event sinks: structured log plus the moderation_events outbox
	outbox := notify.NewOutbox(database.DB)
	notifier := notify.Fanout{notify.SlogNotifier{}, outbox}

	// Services
	hasher := reporter.NewHasher(cfg.EmailHashSecret)
	eventDirectory := platform.NewHTTPEventDirectory(cfg.PlatformAPIURL)
	signalService := services.NewSignalService(reportRepo)
	settingsService := services.NewSettingsService(settingRepo)
	moderationService := services.NewModerationService(
		reportRepo, eventReporterRepo, escalationRepo, blockedRepo,
		eventDirectory, signalService, notifier, hasher, cfg,
	)

	// Escalation scheduler
	escalationScheduler := scheduler.NewEscalationScheduler(
		moderationService, settingsService, reportRepo, cfg.SchedulerInterval,
	)
	escalationScheduler.Start()

	// Handlers
	reportHandler := handlers.NewReportHandler(moderationService)
	settingsHandler := handlers.NewSettingsHandler(settingsService)
	blockedHandler := handlers.NewBlockedHandler(moderationService)
	healthHandler := handlers.NewHealthHandler(escalationScheduler)

	// Sentry error tracking
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              dsn,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      os.Getenv("APP_ENV"),
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		return c.Next()
	})

	routes.Setup(app, cfg, reportHandler, settingsHandler, blockedHandler, healthHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	escalationScheduler.Stop()
	outbox.Stop()
	sentry.Flush(2 * time.Second)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
