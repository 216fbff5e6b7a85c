package handlers

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/anjiri1684/educonnect/middleware"
	"github.com/anjiri1684/educonnect/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type MaterialRequest struct {
	Title     string `json:"title" validate:"required"`
	SessionID string `json:"sessionId" validate:"omitempty,uuid"`
	Link      string `json:"link" validate:"omitempty,url"`
	Image     string `json:"image" validate:"omitempty,url"`
}

type UpdateMaterialRequest struct {
	Title     string `json:"title"`
	SessionID string `json:"sessionId" validate:"omitempty,uuid"`
	Link      string `json:"link" validate:"omitempty,url"`
	Image     string `json:"image" validate:"omitempty,url"`
}

func (h *Handler) CreateMaterial(c *fiber.Ctx) error {
	var req MaterialRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	m, err := h.Materials.Create(c.UserContext(), middleware.CallerEmail(c), services.MaterialInput{
		Title:     req.Title,
		SessionID: req.SessionID,
		Link:      req.Link,
		Image:     req.Image,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(m)
}

// UploadMaterial stores a multipart "resource" file in Cloudinary and
// records it as a material.
func (h *Handler) UploadMaterial(c *fiber.Ctx) error {
	file, err := c.FormFile("resource")
	if err != nil {
		return respondError(c, services.Invalid("resource file is required"))
	}
	title := c.FormValue("title", file.Filename)
	sessionID := c.FormValue("sessionId")
	if sessionID != "" {
		if _, err := uuid.Parse(sessionID); err != nil {
			return respondError(c, services.Invalid("invalid sessionId"))
		}
	}

	f, err := file.Open()
	if err != nil {
		return respondError(c, services.Invalid("cannot read resource file"))
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(file.Filename), filepath.Ext(file.Filename))
	publicID := fmt.Sprintf("material_%s_%s", uuid.NewString(), name)
	link, err := h.Media.Upload(c.UserContext(), f, services.MaterialFolder, publicID)
	if errors.Is(err, services.ErrMediaNotConfigured) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "file uploads are not configured"})
	}
	if err != nil {
		return respondError(c, err)
	}

	m, err := h.Materials.Create(c.UserContext(), middleware.CallerEmail(c), services.MaterialInput{
		Title:     title,
		SessionID: sessionID,
		Link:      link,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(m)
}

func (h *Handler) ListMaterials(c *fiber.Ctx) error {
	page, limit := pageParams(c)
	materials, p, err := h.Materials.List(c.UserContext(), page, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"materials":      materials,
		"totalMaterials": p.Total,
		"totalPages":     p.Pages,
		"currentPage":    p.Page,
	})
}

func (h *Handler) ListTutorMaterials(c *fiber.Ctx) error {
	materials, err := h.Materials.ListByTutor(c.UserContext(), c.Params("email"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(materials)
}

func (h *Handler) ListSessionMaterials(c *fiber.Ctx) error {
	materials, err := h.Materials.ListBySession(c.UserContext(), c.Params("sessionId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(materials)
}

func (h *Handler) UpdateMaterial(c *fiber.Ctx) error {
	var req UpdateMaterialRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	updated, err := h.Materials.Update(c.UserContext(), middleware.CallerEmail(c), c.Params("id"), services.MaterialInput{
		Title:     req.Title,
		SessionID: req.SessionID,
		Link:      req.Link,
		Image:     req.Image,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"updated": updated})
}

func (h *Handler) DeleteMaterial(c *fiber.Ctx) error {
	if err := h.Materials.Delete(c.UserContext(), middleware.CallerEmail(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"deleted": true})
}
