package handlers

import (
	"github.com/gofiber/fiber/v2"
)

type BookSessionRequest struct {
	StudentEmail string `json:"studentEmail" validate:"required,email"`
	StudentName  string `json:"studentName" validate:"max=100"`
	SessionID    string `json:"sessionId" validate:"required,uuid"`
}

func (h *Handler) BookSession(c *fiber.Ctx) error {
	var req BookSessionRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	booking, err := h.Bookings.Book(c.UserContext(), req.StudentEmail, req.StudentName, req.SessionID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(booking)
}

func (h *Handler) ListBookings(c *fiber.Ctx) error {
	bookings, err := h.Bookings.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(bookings)
}

func (h *Handler) ListStudentBookings(c *fiber.Ctx) error {
	bookings, err := h.Bookings.ListByStudent(c.UserContext(), c.Params("email"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(bookings)
}

func (h *Handler) GetBooking(c *fiber.Ctx) error {
	booking, err := h.Bookings.Lookup(c.UserContext(), c.Params("sessionId"), c.Params("studentEmail"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(booking)
}
