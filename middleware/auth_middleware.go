package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/anjiri1684/educonnect/services"
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"
	"github.com/rs/zerolog/log"
)

const (
	tokenKey  = "user"
	claimsKey = "claims"
)

// AdminChecker resolves whether an authenticated email belongs to an admin.
type AdminChecker interface {
	IsAdmin(ctx context.Context, email string) (bool, error)
}

// Protected verifies the bearer token and stores its claims for later
// handlers. Missing and invalid tokens both answer 401.
func Protected(tokens *services.TokenService) fiber.Handler {
	return jwtware.New(jwtware.Config{
		KeyFunc:        tokens.KeyFunc,
		Claims:         &services.Claims{},
		ContextKey:     tokenKey,
		ErrorHandler:   jwtError,
		SuccessHandler: storeClaims,
	})
}

func jwtError(c *fiber.Ctx, err error) error {
	if strings.EqualFold(err.Error(), "missing or malformed JWT") {
		return c.Status(fiber.StatusUnauthorized).
			JSON(fiber.Map{"error": "unauthorized access: missing bearer token"})
	}
	return c.Status(fiber.StatusUnauthorized).
		JSON(fiber.Map{"error": "unauthorized access: invalid or expired token"})
}

func storeClaims(c *fiber.Ctx) error {
	token, ok := c.Locals(tokenKey).(*jwt.Token)
	if !ok {
		return jwtError(c, errors.New("no token"))
	}
	claims, ok := token.Claims.(*services.Claims)
	if !ok || claims.Email == "" {
		return jwtError(c, errors.New("no email claim"))
	}
	claims.Email = strings.ToLower(claims.Email)
	c.Locals(claimsKey, claims)
	return c.Next()
}

// ClaimsFrom returns the claims stored by Protected.
func ClaimsFrom(c *fiber.Ctx) (*services.Claims, bool) {
	claims, ok := c.Locals(claimsKey).(*services.Claims)
	return claims, ok
}

// CallerEmail is empty when the route is not behind Protected.
func CallerEmail(c *fiber.Ctx) string {
	if claims, ok := ClaimsFrom(c); ok {
		return claims.Email
	}
	return ""
}

// AdminRequired must run after Protected.
func AdminRequired(admins AdminChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		email := CallerEmail(c)
		if email == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthorized access",
			})
		}
		isAdmin, err := admins.IsAdmin(c.UserContext(), email)
		if err != nil {
			log.Error().Err(err).Str("email", email).Msg("admin lookup failed")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "storage failure",
			})
		}
		if !isAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Forbidden: Admin access required",
			})
		}
		return c.Next()
	}
}

// SelfOnly rejects callers whose token email differs from the named path
// parameter. Must run after Protected.
func SelfOnly(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !strings.EqualFold(c.Params(param), CallerEmail(c)) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Forbidden: you can only access your own account",
			})
		}
		return c.Next()
	}
}

// SelfOrAdmin lets the account owner or an admin through. An empty target
// needs an admin.
func SelfOrAdmin(admins AdminChecker, param string, query bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		target := c.Params(param)
		if query {
			target = c.Query(param)
		}
		if target != "" && strings.EqualFold(target, CallerEmail(c)) {
			return c.Next()
		}
		return AdminRequired(admins)(c)
	}
}
