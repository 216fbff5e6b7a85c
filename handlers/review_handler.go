package handlers

import (
	"github.com/anjiri1684/educonnect/models"
	"github.com/gofiber/fiber/v2"
)

type CreateReviewRequest struct {
	SessionID  string  `json:"sessionId" validate:"required,uuid"`
	Rating     float64 `json:"rating" validate:"required,min=1,max=5"`
	ReviewText string  `json:"reviewText" validate:"max=2000"`
	UserName   string  `json:"userName"`
	UserImage  string  `json:"userImage" validate:"omitempty,url"`
}

func (h *Handler) CreateReview(c *fiber.Ctx) error {
	var req CreateReviewRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	review, err := h.Reviews.Create(c.UserContext(), models.Review{
		SessionID:  req.SessionID,
		Rating:     req.Rating,
		ReviewText: req.ReviewText,
		UserName:   req.UserName,
		UserImage:  req.UserImage,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(review)
}

func (h *Handler) ListReviews(c *fiber.Ctx) error {
	reviews, err := h.Reviews.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(reviews)
}

// SessionReviews returns the reviews of one session with their average.
func (h *Handler) SessionReviews(c *fiber.Ctx) error {
	summary, err := h.Reviews.Aggregate(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summary)
}
