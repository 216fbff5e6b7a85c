package middleware

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
)

// RequestRecorder receives one observation per finished request.
type RequestRecorder interface {
	RecordRequest(method, route string, status int, d time.Duration)
}

// Metrics labels requests with the matched route pattern, not the raw path.
func Metrics(rec RequestRecorder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		} else if err != nil {
			status = fiber.StatusInternalServerError
		}
		route := c.Route().Path
		if status == fiber.StatusNotFound && route != c.Path() && route == "/" {
			route = "unmatched"
		}
		rec.RecordRequest(c.Method(), route, status, time.Since(start))
		return err
	}
}
