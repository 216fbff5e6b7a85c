package routes

import (
	"github.com/anjiri1684/educonnect/handlers"
	"github.com/gofiber/fiber/v2"
)

func PublicRoutes(app *fiber.App, h *handlers.Handler, metrics fiber.Handler) {
	app.Get("/", h.Welcome)
	app.Get("/health", h.Health)
	if metrics != nil {
		app.Get("/metrics", metrics)
	}
}
