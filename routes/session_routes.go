package routes

import (
	"github.com/anjiri1684/educonnect/handlers"
	"github.com/gofiber/fiber/v2"
)

func SessionRoutes(app *fiber.App, h *handlers.Handler, g Guard) {
	app.Post("/sessions", g.Protected, h.CreateSession)
	app.Get("/sessions", h.ListSessions)
	app.Get("/sessions/:sessionId", h.GetSession)
	app.Get("/sessionsByTutor/:tutorEmail", h.ListTutorSessions)

	app.Get("/pending", h.ListPendingSessions)
	app.Get("/approveSession", h.ListApprovedSessions)
	app.Get("/approveSession/:sessionId", h.GetApprovedSession)

	app.Put("/approveSession/:sessionId", append(g.Admin(), h.ApproveSession)...)
	app.Put("/rejectSession/:sessionId", append(g.Admin(), h.RejectSession)...)
	app.Put("/updateSession/:sessionId", append(g.Admin(), h.UpdateSession)...)
	app.Delete("/deleteSession/:sessionId", append(g.Admin(), h.DeleteSession)...)

	app.Put("/resubmitSession/:sessionId", g.Protected, h.ResubmitSession)
}
