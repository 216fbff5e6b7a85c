package routes

import (
	"github.com/anjiri1684/educonnect/handlers"
	"github.com/gofiber/fiber/v2"
)

func NoteRoutes(app *fiber.App, h *handlers.Handler) {
	notes := app.Group("/notes")
	notes.Post("", h.CreateNote)
	notes.Get("", h.ListNotes)
	notes.Get("/:id", h.GetNote)
	notes.Get("/:id/pdf", h.ExportNotePDF)
	notes.Put("/:id", h.UpdateNote)
	notes.Delete("/:id", h.DeleteNote)
}
