package routes

import (
	"github.com/anjiri1684/educonnect/handlers"
	"github.com/gofiber/fiber/v2"
)

func AuthRoutes(app *fiber.App, h *handlers.Handler, g Guard) {
	app.Post("/jwt", g.Limiter, h.IssueToken)
}
