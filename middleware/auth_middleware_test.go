package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anjiri1684/educonnect/services"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAdmins struct {
	admins map[string]bool
	err    error
}

func (s stubAdmins) IsAdmin(_ context.Context, email string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.admins[email], nil
}

func send(t *testing.T, app *fiber.App, path, token string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp.StatusCode
}

func issue(t *testing.T, tokens *services.TokenService, email string) string {
	t.Helper()
	token, err := tokens.Issue(email, "")
	require.NoError(t, err)
	return token
}

func TestProtected(t *testing.T) {
	tokens := services.NewTokenService("middleware-secret", time.Hour)
	app := fiber.New()
	app.Get("/me", Protected(tokens), func(c *fiber.Ctx) error {
		return c.SendString(CallerEmail(c))
	})

	assert.Equal(t, http.StatusUnauthorized, send(t, app, "/me", ""))
	assert.Equal(t, http.StatusUnauthorized, send(t, app, "/me", "garbage"))

	other := services.NewTokenService("another-secret", time.Hour)
	assert.Equal(t, http.StatusUnauthorized, send(t, app, "/me", issue(t, other, "a@example.com")))

	expired := services.NewTokenService("middleware-secret", -time.Minute)
	assert.Equal(t, http.StatusUnauthorized, send(t, app, "/me", issue(t, expired, "a@example.com")))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+issue(t, tokens, "A@Example.com"))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", string(body))
}

func TestAdminRequired(t *testing.T) {
	tokens := services.NewTokenService("middleware-secret", time.Hour)
	admins := stubAdmins{admins: map[string]bool{"admin@example.com": true}}
	app := fiber.New()
	app.Get("/admin", Protected(tokens), AdminRequired(admins), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	assert.Equal(t, http.StatusUnauthorized, send(t, app, "/admin", ""))
	assert.Equal(t, http.StatusForbidden, send(t, app, "/admin", issue(t, tokens, "tutor@example.com")))
	assert.Equal(t, http.StatusOK, send(t, app, "/admin", issue(t, tokens, "admin@example.com")))

	broken := fiber.New()
	broken.Get("/admin", Protected(tokens), AdminRequired(stubAdmins{err: errors.New("db down")}), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	assert.Equal(t, http.StatusInternalServerError, send(t, broken, "/admin", issue(t, tokens, "admin@example.com")))
}

func TestAdminRequiredWithoutProtected(t *testing.T) {
	app := fiber.New()
	app.Get("/admin", AdminRequired(stubAdmins{}), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	assert.Equal(t, http.StatusUnauthorized, send(t, app, "/admin", ""))
}

func TestSelfOnlyAndSelfOrAdmin(t *testing.T) {
	tokens := services.NewTokenService("middleware-secret", time.Hour)
	admins := stubAdmins{admins: map[string]bool{"admin@example.com": true}}
	ok := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) }

	app := fiber.New()
	app.Get("/self/:email", Protected(tokens), SelfOnly("email"), ok)
	app.Get("/profile/:email", Protected(tokens), SelfOrAdmin(admins, "email", false), ok)
	app.Get("/lookup", Protected(tokens), SelfOrAdmin(admins, "email", true), ok)

	student := issue(t, tokens, "student@example.com")
	admin := issue(t, tokens, "admin@example.com")

	assert.Equal(t, http.StatusOK, send(t, app, "/self/Student@Example.com", student))
	assert.Equal(t, http.StatusForbidden, send(t, app, "/self/other@example.com", student))
	assert.Equal(t, http.StatusForbidden, send(t, app, "/self/student@example.com", admin))

	assert.Equal(t, http.StatusOK, send(t, app, "/profile/student@example.com", student))
	assert.Equal(t, http.StatusForbidden, send(t, app, "/profile/other@example.com", student))
	assert.Equal(t, http.StatusOK, send(t, app, "/profile/other@example.com", admin))

	assert.Equal(t, http.StatusOK, send(t, app, "/lookup?email=student@example.com", student))
	assert.Equal(t, http.StatusForbidden, send(t, app, "/lookup", student))
	assert.Equal(t, http.StatusOK, send(t, app, "/lookup", admin))
}
