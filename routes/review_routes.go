package routes

import (
	"github.com/anjiri1684/educonnect/handlers"
	"github.com/gofiber/fiber/v2"
)

func ReviewRoutes(app *fiber.App, h *handlers.Handler) {
	reviews := app.Group("/reviews")
	reviews.Post("", h.CreateReview)
	reviews.Get("", h.ListReviews)
	reviews.Get("/:id", h.SessionReviews)
}
