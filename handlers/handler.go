package handlers

import (
	"errors"

	"github.com/anjiri1684/educonnect/database"
	"github.com/anjiri1684/educonnect/payments"
	"github.com/anjiri1684/educonnect/services"
	"github.com/anjiri1684/educonnect/websocket"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

var validate = validator.New()

// Handler carries every dependency the HTTP layer calls into.
type Handler struct {
	AppName   string
	Store     database.Store
	Tokens    *services.TokenService
	Users     *services.UserService
	Sessions  *services.SessionService
	Reviews   *services.ReviewService
	Notes     *services.NoteService
	Materials *services.MaterialService
	Bookings  *services.BookingService
	Payments  payments.IntentCreator
	Renderer  services.NoteRenderer
	Media     *services.CloudinaryMedia
	Hub       *websocket.Hub
}

// respondError turns a service error into the JSON error body.
func respondError(c *fiber.Ctx, err error) error {
	var se *services.Error
	if !errors.As(err, &se) {
		log.Error().Err(err).Str("path", c.Path()).Str("method", c.Method()).Msg("unhandled error")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.Status(statusFor(se.Kind)).JSON(fiber.Map{"error": se.Message})
}

func statusFor(kind services.Kind) int {
	switch kind {
	case services.KindValidation:
		return fiber.StatusBadRequest
	case services.KindUnauthenticated:
		return fiber.StatusUnauthorized
	case services.KindForbidden:
		return fiber.StatusForbidden
	case services.KindNotFound:
		return fiber.StatusNotFound
	case services.KindConflict:
		return fiber.StatusConflict
	case services.KindUpstream:
		return fiber.StatusBadGateway
	}
	return fiber.StatusInternalServerError
}

// parseBody decodes and validates a JSON request body into req.
func parseBody(c *fiber.Ctx, req interface{}) error {
	if err := c.BodyParser(req); err != nil {
		return services.Invalid("cannot parse JSON")
	}
	if err := validate.Struct(req); err != nil {
		return services.Invalid("%s", validationMessage(err))
	}
	return nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email"
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param()
	case "min", "gte", "gt":
		return fe.Field() + " must be at least " + fe.Param()
	case "max", "lte":
		return fe.Field() + " must be at most " + fe.Param()
	}
	return fe.Field() + " is invalid"
}

func pageParams(c *fiber.Ctx) (int64, int64) {
	return int64(c.QueryInt("page", 1)), int64(c.QueryInt("limit", 10))
}
