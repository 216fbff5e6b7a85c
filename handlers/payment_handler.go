package handlers

import (
	"errors"

	"github.com/anjiri1684/educonnect/payments"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

type PaymentIntentRequest struct {
	Price float64 `json:"price" validate:"required,gt=0"`
}

// CreatePaymentIntent opens a card payment intent for price dollars.
func (h *Handler) CreatePaymentIntent(c *fiber.Ctx) error {
	var req PaymentIntentRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	if h.Payments == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": payments.ErrNotConfigured.Error()})
	}
	secret, err := h.Payments.CreateIntent(c.UserContext(), req.Price)
	switch {
	case errors.Is(err, payments.ErrInvalidPrice):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, payments.ErrNotConfigured):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": err.Error()})
	case err != nil:
		log.Error().Err(err).Float64("price", req.Price).Msg("failed to create payment intent")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "payment provider error"})
	}
	return c.JSON(fiber.Map{"clientSecret": secret})
}
