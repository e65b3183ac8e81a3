package server

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/wellnoosh/engagement/internal/config"
)

// StartHTTPServer boots a fiber app and registers all provided services
func StartHTTPServer(cfg *config.Config, registrars ...Registrar) error {
	app := fiber.New(fiber.Config{
		AppName:               "engagement",
		DisableStartupMessage: cfg.App.ENV != "development",
	})

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// register all services
	for _, r := range registrars {
		r.Register(app)
	}

	addr := fmt.Sprintf("%s:%s", cfg.HTTP.Host, cfg.HTTP.Port)
	return app.Listen(addr)
}
