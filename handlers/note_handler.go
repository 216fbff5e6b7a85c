package handlers

import (
	"fmt"
	"regexp"

	"github.com/gofiber/fiber/v2"
)

type CreateNoteRequest struct {
	UserEmail   string `json:"userEmail" validate:"required,email"`
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description"`
}

type UpdateNoteRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=200"`
	Description *string `json:"description"`
}

func (h *Handler) CreateNote(c *fiber.Ctx) error {
	var req CreateNoteRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	note, err := h.Notes.Create(c.UserContext(), req.UserEmail, req.Title, req.Description)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(note)
}

func (h *Handler) ListNotes(c *fiber.Ctx) error {
	page, limit := pageParams(c)
	notes, p, err := h.Notes.ListByUser(c.UserContext(), c.Query("userEmail"), page, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"notes":       notes,
		"totalNotes":  p.Total,
		"totalPages":  p.Pages,
		"currentPage": p.Page,
	})
}

func (h *Handler) GetNote(c *fiber.Ctx) error {
	note, err := h.Notes.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(note)
}

func (h *Handler) UpdateNote(c *fiber.Ctx) error {
	var req UpdateNoteRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	updated, err := h.Notes.Update(c.UserContext(), c.Params("id"), req.Title, req.Description)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"updated": updated})
}

func (h *Handler) DeleteNote(c *fiber.Ctx) error {
	if err := h.Notes.Delete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"deleted": true})
}

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// ExportNotePDF renders a note as a downloadable PDF.
func (h *Handler) ExportNotePDF(c *fiber.Ctx) error {
	note, err := h.Notes.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	pdf, err := h.Renderer.RenderNote(c.UserContext(), *note)
	if err != nil {
		return respondError(c, err)
	}
	name := unsafeFilename.ReplaceAllString(note.Title, "_")
	if name == "" || name == "_" {
		name = "note"
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s.pdf"`, name))
	return c.Send(pdf)
}
