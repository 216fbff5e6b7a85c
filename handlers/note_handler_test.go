package handlers_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/anjiri1684/educonnect/handlers"
	"github.com/anjiri1684/educonnect/models"
	"github.com/anjiri1684/educonnect/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRenderer struct {
	got models.Note
	err error
}

func (f *fakeRenderer) RenderNote(_ context.Context, note models.Note) ([]byte, error) {
	f.got = note
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.4 fake"), nil
}

func TestNotesPagination(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 15; i++ {
		resp, body := env.do(t, http.MethodPost, "/notes", map[string]interface{}{
			"userEmail":   "student@example.com",
			"title":       fmt.Sprintf("Note %d", i),
			"description": "<p>chapter summary</p>",
		}, "")
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	}

	resp, body := env.do(t, http.MethodGet, "/notes?userEmail=student@example.com&page=2&limit=10", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeMap(t, body)
	assert.Len(t, got["notes"], 5)
	assert.Equal(t, 15.0, got["totalNotes"])
	assert.Equal(t, 2.0, got["totalPages"])
	assert.Equal(t, 2.0, got["currentPage"])

	resp, _ = env.do(t, http.MethodGet, "/notes", nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestNoteLifecycle(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.do(t, http.MethodPost, "/notes", map[string]interface{}{
		"userEmail":   "student@example.com",
		"title":       "Derivatives",
		"description": `<p>chain rule</p><script>alert(1)</script>`,
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeMap(t, body)
	id := created["_id"].(string)
	assert.NotContains(t, created["description"], "<script>")

	resp, body = env.do(t, http.MethodPut, "/notes/"+id, map[string]interface{}{"title": "Derivatives II"}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, decodeMap(t, body)["updated"])

	resp, body = env.do(t, http.MethodGet, "/notes/"+id, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Derivatives II", decodeMap(t, body)["title"])

	resp, _ = env.do(t, http.MethodDelete, "/notes/"+id, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = env.do(t, http.MethodGet, "/notes/"+id, nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = env.do(t, http.MethodGet, "/notes/not-an-id", nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExportNotePDF(t *testing.T) {
	renderer := &fakeRenderer{}
	env := newTestEnv(t, func(h *handlers.Handler) { h.Renderer = renderer })

	resp, body := env.do(t, http.MethodPost, "/notes", map[string]interface{}{
		"userEmail": "student@example.com",
		"title":     "Week 1: Limits",
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := decodeMap(t, body)["_id"].(string)

	resp, body = env.do(t, http.MethodGet, "/notes/"+id+"/pdf", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Week_1_Limits.pdf"`, resp.Header.Get("Content-Disposition"))
	assert.Equal(t, "%PDF-1.4 fake", string(body))
	assert.Equal(t, "Week 1: Limits", renderer.got.Title)

	renderer.err = &services.Error{Kind: services.KindUpstream, Message: "render note pdf failed", Err: errors.New("chrome crashed")}
	resp, _ = env.do(t, http.MethodGet, "/notes/"+id+"/pdf", nil, "")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}
