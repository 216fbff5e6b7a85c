package routes

import (
	"github.com/anjiri1684/educonnect/handlers"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

func EventRoutes(app *fiber.App, h *handlers.Handler) {
	app.Use("/ws", h.UpgradeEvents)
	app.Get("/ws/events", websocket.New(h.ServeEvents))
}
