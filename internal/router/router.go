package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hirelens-labs/screener-api/internal/config"
	"github.com/hirelens-labs/screener-api/internal/handler"
	"github.com/hirelens-labs/screener-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ScreeningHandler *handler.ScreeningHandler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	if deps.ScreeningHandler != nil {
		deps.ScreeningHandler.Register(api.Group("/screening"))
	}
}
