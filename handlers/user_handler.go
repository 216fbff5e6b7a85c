package handlers

import (
	"github.com/anjiri1684/educonnect/middleware"
	"github.com/anjiri1684/educonnect/models"
	"github.com/anjiri1684/educonnect/services"
	"github.com/gofiber/fiber/v2"
)

type RegisterRequest struct {
	Name  string      `json:"name"`
	Email string      `json:"email" validate:"required,email"`
	Role  models.Role `json:"role" validate:"omitempty,oneof=student tutor"`
	Image string      `json:"image" validate:"omitempty,url"`
}

type UpdateUserRequest struct {
	Role  *models.Role `json:"role" validate:"omitempty,oneof=student tutor admin"`
	Image *string      `json:"image" validate:"omitempty,url"`
	Name  *string      `json:"name"`
}

// RegisterUser is idempotent on email.
func (h *Handler) RegisterUser(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	user, created, err := h.Users.Register(c.UserContext(), services.RegisterInput{
		Name:  req.Name,
		Email: req.Email,
		Role:  req.Role,
		Image: req.Image,
	})
	if err != nil {
		return respondError(c, err)
	}
	if !created {
		return c.JSON(fiber.Map{"message": "user already exists", "insertedId": nil})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"insertedId": user.ID,
		"user":       toUserResponse(*user),
	})
}

// GetUsers returns one user for ?email= and a page of all users otherwise.
func (h *Handler) GetUsers(c *fiber.Ctx) error {
	if email := c.Query("email"); email != "" {
		user, err := h.Users.GetByEmail(c.UserContext(), email)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(toUserResponse(*user))
	}

	page, limit := pageParams(c)
	users, p, err := h.Users.List(c.UserContext(), page, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"users":       toUserResponses(users),
		"totalUsers":  p.Total,
		"totalPages":  p.Pages,
		"currentPage": p.Page,
	})
}

func (h *Handler) GetUserByEmail(c *fiber.Ctx) error {
	user, err := h.Users.GetByEmail(c.UserContext(), c.Params("email"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toUserResponse(*user))
}

// CheckAdmin answers whether the caller is an admin.
func (h *Handler) CheckAdmin(c *fiber.Ctx) error {
	isAdmin, err := h.Users.IsAdmin(c.UserContext(), middleware.CallerEmail(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"admin": isAdmin})
}

func (h *Handler) UpdateUser(c *fiber.Ctx) error {
	var req UpdateUserRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	updated, err := h.Users.Update(c.UserContext(), middleware.CallerEmail(c), c.Params("userId"), services.UpdateUserInput{
		Role:  req.Role,
		Image: req.Image,
		Name:  req.Name,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"updated": updated})
}

func (h *Handler) SearchUsers(c *fiber.Ctx) error {
	users, err := h.Users.Search(c.UserContext(), c.Query("q"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toUserResponses(users))
}

func (h *Handler) ListTutors(c *fiber.Ctx) error {
	tutors, err := h.Users.Tutors(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toUserResponses(tutors))
}
