package handlers

import (
	"errors"

	"github.com/anjiri1684/educonnect/services"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// GenerateUploadSignature creates a secure signature for a frontend upload.
func (h *Handler) GenerateUploadSignature(c *fiber.Ctx) error {
	sig, err := h.Media.Sign(services.ProfileFolder)
	if errors.Is(err, services.ErrMediaNotConfigured) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "file uploads are not configured"})
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to sign upload params")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to sign upload params"})
	}
	return c.JSON(sig)
}
