package routes

import (
	"github.com/anjiri1684/educonnect/handlers"
	"github.com/anjiri1684/educonnect/middleware"
	"github.com/gofiber/fiber/v2"
)

func UserRoutes(app *fiber.App, h *handlers.Handler, g Guard) {
	app.Post("/users", g.Limiter, h.RegisterUser)
	app.Get("/users", g.Protected, middleware.SelfOrAdmin(g.Admins, "email", true), h.GetUsers)
	app.Get("/users/admin/:email", g.Protected, middleware.SelfOnly("email"), h.CheckAdmin)
	app.Get("/users/:email", g.Protected, middleware.SelfOrAdmin(g.Admins, "email", false), h.GetUserByEmail)
	app.Put("/users/:userId", g.Protected, h.UpdateUser)

	app.Get("/searchUsers", append(g.Admin(), h.SearchUsers)...)
	app.Get("/tutors", h.ListTutors)
}
