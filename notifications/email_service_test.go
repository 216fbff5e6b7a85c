package notifications

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/anjiri1684/educonnect/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrevoSend(t *testing.T) {
	var got brevoPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key-123", r.Header.Get("api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	s := NewBrevoService("key-123", "noreply@educonnect.test", "")
	s.BaseURL = srv.URL

	require.NoError(t, s.Send(context.Background(), "tutor@example.com", "", "Hi", "<p>Hi</p>"))
	assert.Equal(t, "tutor", got.To[0]["name"])
	assert.Equal(t, "EduConnect", got.Sender["name"])

	assert.Error(t, s.Send(context.Background(), "not-an-email", "", "Hi", ""))
}

func TestBrevoSendUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Key not found"}`))
	}))
	defer srv.Close()

	s := NewBrevoService("bad", "noreply@educonnect.test", "EduConnect")
	s.BaseURL = srv.URL
	err := s.Send(context.Background(), "tutor@example.com", "Tutor", "Hi", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestNewBrevoServiceUnconfigured(t *testing.T) {
	assert.Nil(t, NewBrevoService("", "", ""))
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []string
	body []string
}

func (f *fakeMailer) Send(_ context.Context, toEmail, _, subject, html string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, toEmail+"|"+subject)
	f.body = append(f.body, html)
	return nil
}

func TestEmailNotifier(t *testing.T) {
	mailer := &fakeMailer{}
	n := NewEmailNotifier(mailer)
	n.async = false

	n.SessionChanged(context.Background(), models.SessionEvent{
		Title: "Algebra", TutorEmail: "tutor@example.com", From: models.SessionPending, To: models.SessionApproved, Fee: 25,
	})
	n.SessionChanged(context.Background(), models.SessionEvent{
		Title: "Algebra", TutorEmail: "tutor@example.com", From: models.SessionPending, To: models.SessionRejected, Reason: "Too short",
	})
	n.SessionChanged(context.Background(), models.SessionEvent{
		Title: "Algebra", TutorEmail: "tutor@example.com", From: models.SessionRejected, To: models.SessionPending,
	})

	require.Len(t, mailer.sent, 2)
	assert.Equal(t, `tutor@example.com|Your session "Algebra" was approved`, mailer.sent[0])
	assert.Contains(t, mailer.body[0], "$25.00")
	assert.Contains(t, mailer.body[1], "Reason: Too short")
}

func TestNilNotifierIsSafe(t *testing.T) {
	var n *EmailNotifier
	n.SessionChanged(context.Background(), models.SessionEvent{To: models.SessionApproved})
}
