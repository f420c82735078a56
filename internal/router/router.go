package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/engage-api/internal/config"
	"github.com/noah-isme/engage-api/internal/handler"
	"github.com/noah-isme/engage-api/internal/middleware"
	"github.com/noah-isme/engage-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	EngagementHandler *handler.EngagementHandler
	UserHandler       *handler.UserHandler
	Identity          middleware.Identity
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	identity := deps.Identity
	if identity.Required == nil {
		identity.Required = func(c *fiber.Ctx) error { return c.Next() }
	}
	if identity.Optional == nil {
		identity.Optional = func(c *fiber.Ctx) error { return c.Next() }
	}

	mutationLimit := middleware.RateLimit("engagement", cfg.MutationRateLimit, time.Minute)

	if deps.EngagementHandler != nil {
		deps.EngagementHandler.Register(api, identity, mutationLimit)
	}

	if deps.UserHandler != nil {
		deps.UserHandler.Register(api, identity)
	}
}
