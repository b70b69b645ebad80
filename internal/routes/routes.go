package routes

import (
	"time"

	"github.com/gatherhub/moderation-service/internal/config"
	"github.com/gatherhub/moderation-service/internal/handlers"
	"github.com/gatherhub/moderation-service/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	reportHandler *handlers.ReportHandler,
	settingsHandler *handlers.SettingsHandler,
	blockedHandler *handlers.BlockedHandler,
	healthHandler *handlers.HealthHandler,
) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Report intake — anonymous submissions are public but tightly limited
	// (10 req/min per IP) on top of the per-email rate limit in the service.
	reports := api.Group("/reports")
	reports.Post("/", limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}), reportHandler.CreateReport)
	reports.Get("/verify/:token", reportHandler.VerifyReport)

	// Owner review actions (JWT; owner authorization is the platform's
	// concern, the claims gate access here)
	reports.Put("/:id/resolve", middleware.JWTProtected(cfg), reportHandler.OwnerResolve)
	reports.Put("/:id/dismiss", middleware.JWTProtected(cfg), reportHandler.OwnerDismiss)

	// Authenticated report intake
	api.Post("/account/reports", middleware.JWTProtected(cfg), reportHandler.CreateAccountReport)

	// Admin surface (JWT + admin required)
	admin := api.Group("/admin", middleware.JWTProtected(cfg), middleware.AdminRequired(cfg))
	admin.Post("/reports", reportHandler.CreateAdminReport)
	admin.Get("/reports", reportHandler.ListReports)
	admin.Get("/reports/:id", reportHandler.GetReport)
	admin.Get("/reports/:id/escalations", reportHandler.GetEscalationHistory)
	admin.Put("/reports/:id/resolve", reportHandler.AdminResolve)
	admin.Put("/reports/:id/dismiss", reportHandler.AdminDismiss)
	admin.Put("/reports/:id/escalate", reportHandler.AdminEscalate)
	admin.Put("/reports/:id/override", reportHandler.AdminOverride)

	admin.Get("/settings/moderation", settingsHandler.GetModerationSettings)
	admin.Put("/settings/moderation", settingsHandler.UpdateModerationSettings)

	admin.Post("/blocked-reporters", blockedHandler.BlockReporter)
	admin.Delete("/blocked-reporters", blockedHandler.UnblockReporter)
	admin.Get("/blocked-reporters", blockedHandler.ListBlockedReporters)
}
