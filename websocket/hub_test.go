package websocket

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/anjiri1684/educonnect/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu      sync.Mutex
	written []models.SessionEvent
	closed  bool
	fail    bool
}

func (f *fakeConn) WriteJSON(v interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("broken pipe")
	}
	f.written = append(f.written, v.(models.SessionEvent))
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) events() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.written)
}

func (f *fakeConn) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

type gauge struct {
	mu sync.Mutex
	n  int
}

func (g *gauge) SetWSClients(n int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n = n
}

func (g *gauge) get() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.n
}

func TestHubDeliversToSessionTutor(t *testing.T) {
	g := &gauge{}
	hub := NewHub(g)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	tutor := &fakeConn{}
	other := &fakeConn{}
	hub.Register(&Client{Email: "tutor@example.com", Conn: tutor})
	hub.Register(&Client{Email: "other@example.com", Conn: other})
	require.Eventually(t, func() bool { return g.get() == 2 }, time.Second, 5*time.Millisecond)

	hub.SessionChanged(context.Background(), models.SessionEvent{
		SessionID: "s1", TutorEmail: "tutor@example.com", From: models.SessionPending, To: models.SessionApproved,
	})
	require.Eventually(t, func() bool { return tutor.events() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, other.events())

	cancel()
	<-done
	assert.True(t, tutor.isClosed())
	assert.True(t, other.isClosed())
	assert.Equal(t, 0, g.get())
}

func TestHubDropsBrokenClients(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	broken := &fakeConn{fail: true}
	hub.Register(&Client{Email: "tutor@example.com", Conn: broken})
	require.Eventually(t, func() bool { return hub.Count("tutor@example.com") == 1 }, time.Second, 5*time.Millisecond)

	hub.SessionChanged(context.Background(), models.SessionEvent{TutorEmail: "tutor@example.com", To: models.SessionRejected})
	require.Eventually(t, func() bool { return hub.Count("tutor@example.com") == 0 }, time.Second, 5*time.Millisecond)
	assert.True(t, broken.isClosed())
}

func TestHubUnregister(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	conn := &fakeConn{}
	client := &Client{Email: "tutor@example.com", Conn: conn}
	hub.Register(client)
	hub.Unregister(client)
	require.Eventually(t, func() bool { return hub.Count("tutor@example.com") == 0 }, time.Second, 5*time.Millisecond)
	assert.True(t, conn.isClosed())
}
