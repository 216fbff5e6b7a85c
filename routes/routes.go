package routes

import (
	"github.com/anjiri1684/educonnect/handlers"
	"github.com/anjiri1684/educonnect/middleware"
	"github.com/gofiber/fiber/v2"
)

// Guard bundles the middleware chains routes pick from.
type Guard struct {
	Protected fiber.Handler
	Admins    middleware.AdminChecker
	Limiter   fiber.Handler
}

// Admin composes authentication then the admin check.
func (g Guard) Admin() []fiber.Handler {
	return []fiber.Handler{g.Protected, middleware.AdminRequired(g.Admins)}
}

func Register(app *fiber.App, h *handlers.Handler, g Guard, metrics fiber.Handler) {
	PublicRoutes(app, h, metrics)
	AuthRoutes(app, h, g)
	UserRoutes(app, h, g)
	SessionRoutes(app, h, g)
	MaterialRoutes(app, h, g)
	NoteRoutes(app, h)
	ReviewRoutes(app, h)
	BookingRoutes(app, h)
	PaymentRoutes(app, h)
	UploadRoutes(app, h, g)
	EventRoutes(app, h)
}
