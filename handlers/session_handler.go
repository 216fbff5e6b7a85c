package handlers

import (
	"github.com/anjiri1684/educonnect/middleware"
	"github.com/anjiri1684/educonnect/models"
	"github.com/anjiri1684/educonnect/services"
	"github.com/gofiber/fiber/v2"
)

type CreateSessionRequest struct {
	Title                 string             `json:"title" validate:"required"`
	Description           string             `json:"description"`
	TutorName             string             `json:"tutorName"`
	RegistrationStartDate string             `json:"registrationStartDate"`
	RegistrationEndDate   string             `json:"registrationEndDate"`
	ClassStartDate        string             `json:"classStartDate"`
	ClassEndDate          string             `json:"classEndDate"`
	Duration              string             `json:"duration"`
	Image                 string             `json:"image" validate:"omitempty,url"`
	SessionType           models.SessionType `json:"sessionType" validate:"omitempty,oneof=free paid"`
}

// ApproveSessionRequest accepts amount as a JSON number or a numeric string.
type ApproveSessionRequest struct {
	SessionType models.SessionType `json:"sessionType" validate:"required,oneof=free paid"`
	Amount      interface{}        `json:"amount"`
}

type RejectSessionRequest struct {
	RejectionReason string `json:"rejectionReason" validate:"required"`
	Feedback        string `json:"feedback"`
}

func (h *Handler) CreateSession(c *fiber.Ctx) error {
	var req CreateSessionRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	session, err := h.Sessions.Create(c.UserContext(), middleware.CallerEmail(c), services.CreateSessionInput{
		Title:                 req.Title,
		Description:           req.Description,
		TutorName:             req.TutorName,
		RegistrationStartDate: req.RegistrationStartDate,
		RegistrationEndDate:   req.RegistrationEndDate,
		ClassStartDate:        req.ClassStartDate,
		ClassEndDate:          req.ClassEndDate,
		Duration:              req.Duration,
		Image:                 req.Image,
		SessionType:           req.SessionType,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(session)
}

func (h *Handler) ListSessions(c *fiber.Ctx) error {
	page, limit := pageParams(c)
	sessions, p, err := h.Sessions.List(c.UserContext(), page, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"sessions":      sessions,
		"totalSessions": p.Total,
		"totalPages":    p.Pages,
		"currentPage":   p.Page,
	})
}

func (h *Handler) GetSession(c *fiber.Ctx) error {
	session, err := h.Sessions.Get(c.UserContext(), c.Params("sessionId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(session)
}

func (h *Handler) GetApprovedSession(c *fiber.Ctx) error {
	session, err := h.Sessions.GetApproved(c.UserContext(), c.Params("sessionId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(session)
}

func (h *Handler) ListPendingSessions(c *fiber.Ctx) error {
	return h.listByStatus(c, models.SessionPending)
}

func (h *Handler) ListApprovedSessions(c *fiber.Ctx) error {
	return h.listByStatus(c, models.SessionApproved)
}

func (h *Handler) listByStatus(c *fiber.Ctx, status models.SessionStatus) error {
	sessions, err := h.Sessions.ListByStatus(c.UserContext(), status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sessions)
}

func (h *Handler) ListTutorSessions(c *fiber.Ctx) error {
	status := models.SessionStatus(c.Query("status"))
	sessions, err := h.Sessions.ListByTutor(c.UserContext(), c.Params("tutorEmail"), status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(sessions)
}

func (h *Handler) ApproveSession(c *fiber.Ctx) error {
	var req ApproveSessionRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	session, err := h.Sessions.Approve(c.UserContext(), c.Params("sessionId"), req.SessionType, req.Amount)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "session approved", "session": session})
}

func (h *Handler) RejectSession(c *fiber.Ctx) error {
	var req RejectSessionRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, err)
	}
	session, err := h.Sessions.Reject(c.UserContext(), c.Params("sessionId"), req.RejectionReason, req.Feedback)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "session rejected", "session": session})
}

// UpdateSession is the admin field merge.
func (h *Handler) UpdateSession(c *fiber.Ctx) error {
	fields := map[string]interface{}{}
	if err := c.BodyParser(&fields); err != nil {
		return respondError(c, services.Invalid("cannot parse JSON"))
	}
	res, err := h.Sessions.Update(c.UserContext(), c.Params("sessionId"), fields)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"updated": res.Modified > 0})
}

// ResubmitSession lets the owning tutor edit a session and send it back to review.
func (h *Handler) ResubmitSession(c *fiber.Ctx) error {
	fields := map[string]interface{}{}
	if err := c.BodyParser(&fields); err != nil {
		return respondError(c, services.Invalid("cannot parse JSON"))
	}
	session, err := h.Sessions.Resubmit(c.UserContext(), c.Params("sessionId"), middleware.CallerEmail(c), fields)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "session resubmitted for review", "session": session})
}

func (h *Handler) DeleteSession(c *fiber.Ctx) error {
	if err := h.Sessions.Delete(c.UserContext(), c.Params("sessionId")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"deleted": true})
}
