package routes

import (
	"github.com/anjiri1684/educonnect/handlers"
	"github.com/gofiber/fiber/v2"
)

func PaymentRoutes(app *fiber.App, h *handlers.Handler) {
	app.Post("/create-payment-intent", h.CreatePaymentIntent)
}
