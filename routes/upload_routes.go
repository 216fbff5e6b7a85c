package routes

import (
	"github.com/anjiri1684/educonnect/handlers"
	"github.com/gofiber/fiber/v2"
)

func UploadRoutes(app *fiber.App, h *handlers.Handler, g Guard) {
	uploads := app.Group("/uploads", g.Protected)
	uploads.Get("/signature", h.GenerateUploadSignature)
}
