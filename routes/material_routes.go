package routes

import (
	"github.com/anjiri1684/educonnect/handlers"
	"github.com/gofiber/fiber/v2"
)

func MaterialRoutes(app *fiber.App, h *handlers.Handler, g Guard) {
	materials := app.Group("/materials")
	materials.Post("", g.Protected, h.CreateMaterial)
	materials.Post("/upload", g.Protected, h.UploadMaterial)
	materials.Get("", append(g.Admin(), h.ListMaterials)...)
	materials.Get("/session/:sessionId", h.ListSessionMaterials)
	materials.Get("/:email", h.ListTutorMaterials)
	materials.Put("/:id", g.Protected, h.UpdateMaterial)
	materials.Delete("/:id", g.Protected, h.DeleteMaterial)
}
