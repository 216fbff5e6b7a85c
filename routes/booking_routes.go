package routes

import (
	"github.com/anjiri1684/educonnect/handlers"
	"github.com/gofiber/fiber/v2"
)

func BookingRoutes(app *fiber.App, h *handlers.Handler) {
	booked := app.Group("/bookedSession")
	booked.Post("", h.BookSession)
	booked.Get("", h.ListBookings)
	booked.Get("/:sessionId/:studentEmail", h.GetBooking)
	booked.Get("/:email", h.ListStudentBookings)
}
