package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anjiri1684/educonnect/database"
	"github.com/anjiri1684/educonnect/handlers"
	"github.com/anjiri1684/educonnect/middleware"
	"github.com/anjiri1684/educonnect/models"
	"github.com/anjiri1684/educonnect/routes"
	"github.com/anjiri1684/educonnect/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	app    *fiber.App
	store  *database.MemoryStore
	tokens *services.TokenService
	h      *handlers.Handler
}

func newTestEnv(t *testing.T, opts ...func(*handlers.Handler)) *testEnv {
	t.Helper()
	store := database.NewMemoryStore()
	require.NoError(t, store.EnsureIndexes(context.Background(), database.Indexes))

	clean := services.NewSanitizer()
	users := services.NewUserService(store, clean)
	sessions := services.NewSessionService(store, users, clean)
	tokens := services.NewTokenService("handler-test-secret", time.Hour)

	h := &handlers.Handler{
		AppName:   "EduConnect",
		Store:     store,
		Tokens:    tokens,
		Users:     users,
		Sessions:  sessions,
		Reviews:   services.NewReviewService(store, clean),
		Notes:     services.NewNoteService(store, clean),
		Materials: services.NewMaterialService(store, users, clean),
		Bookings:  services.NewBookingService(store, sessions),
	}
	for _, opt := range opts {
		opt(h)
	}

	limiter := middleware.NewRateLimiter(1000)
	t.Cleanup(limiter.Stop)

	app := fiber.New()
	routes.Register(app, h, routes.Guard{
		Protected: middleware.Protected(tokens),
		Admins:    users,
		Limiter:   limiter.Handler(),
	}, nil)

	return &testEnv{app: app, store: store, tokens: tokens, h: h}
}

func (e *testEnv) addUser(t *testing.T, email string, role models.Role) string {
	t.Helper()
	u := models.User{ID: uuid.NewString(), Name: email, Email: email, Role: role, CreatedAt: time.Now().UTC()}
	_, err := e.store.InsertOne(context.Background(), database.CollectionUsers, u)
	require.NoError(t, err)
	token, err := e.tokens.Issue(email, email)
	require.NoError(t, err)
	return token
}

func (e *testEnv) addSession(t *testing.T, tutor string, status models.SessionStatus) models.Session {
	t.Helper()
	s := models.Session{
		ID:          uuid.NewString(),
		Title:       "Algebra basics",
		TutorEmail:  tutor,
		SessionType: models.SessionPaid,
		Status:      status,
		CreatedAt:   time.Now().UTC(),
	}
	_, err := e.store.InsertOne(context.Background(), database.CollectionSessions, s)
	require.NoError(t, err)
	return s
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, token string) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	return resp, out
}

func decodeMap(t *testing.T, raw []byte) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return out
}
