package handlers_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anjiri1684/educonnect/models"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaterialOwnership(t *testing.T) {
	env := newTestEnv(t)
	tutorToken := env.addUser(t, "tutor@example.com", models.RoleTutor)
	otherToken := env.addUser(t, "other@example.com", models.RoleTutor)
	adminToken := env.addUser(t, "admin@example.com", models.RoleAdmin)
	session := env.addSession(t, "tutor@example.com", models.SessionApproved)

	resp, body := env.do(t, http.MethodPost, "/materials", map[string]interface{}{
		"title":     "Week 1 slides",
		"sessionId": session.ID,
		"link":      "https://example.com/slides.pdf",
	}, tutorToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	id := decodeMap(t, body)["_id"].(string)

	resp, body = env.do(t, http.MethodGet, "/materials/session/"+session.ID, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), id)

	resp, body = env.do(t, http.MethodGet, "/materials/tutor@example.com", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Week 1 slides")

	resp, _ = env.do(t, http.MethodPut, "/materials/"+id, map[string]interface{}{"title": "Hijacked"}, otherToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = env.do(t, http.MethodPut, "/materials/"+id, map[string]interface{}{"title": "Week 1 slides v2"}, tutorToken)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	resp, _ = env.do(t, http.MethodGet, "/materials", nil, tutorToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = env.do(t, http.MethodGet, "/materials", nil, adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "Week 1 slides v2")

	resp, _ = env.do(t, http.MethodDelete, "/materials/"+id, nil, otherToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = env.do(t, http.MethodDelete, "/materials/"+id, nil, adminToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUploadMaterialWithoutMedia(t *testing.T) {
	env := newTestEnv(t)
	tutorToken := env.addUser(t, "tutor@example.com", models.RoleTutor)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("resource", "notes.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4"))
	require.NoError(t, err)
	require.NoError(t, w.WriteField("title", "Lecture notes"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/materials/upload", &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+tutorToken)
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp, _ = env.do(t, http.MethodPost, "/materials/upload", nil, tutorToken)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
