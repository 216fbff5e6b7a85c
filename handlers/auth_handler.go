package handlers

import (
	"github.com/gofiber/fiber/v2"
)

type TokenRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name"`
}

// IssueToken signs a token for the posted identity. Identity is established
// by the client's sign-in provider before this call.
func (h *Handler) IssueToken(c *fiber.Ctx) error {
	var req TokenRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	token, err := h.Tokens.Issue(req.Email, req.Name)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"token":     token,
		"expiresIn": int64(h.Tokens.TTL().Seconds()),
	})
}
