package websocket

import (
	"context"
	"sync"

	"github.com/anjiri1684/educonnect/models"
	"github.com/rs/zerolog/log"
)

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

type Client struct {
	Email string
	Conn  Conn
}

// GaugeSetter tracks the number of connected clients.
type GaugeSetter interface {
	SetWSClients(n int)
}

// Hub fans lifecycle events out to the tutor who owns the session. One
// goroutine owns the client table.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan models.SessionEvent
	gauge      GaugeSetter
	done       chan struct{}

	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

func NewHub(gauge GaugeSetter) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan models.SessionEvent, 64),
		gauge:      gauge,
		done:       make(chan struct{}),
		clients:    make(map[string]map[*Client]struct{}),
	}
}

// Register returns false once the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// SessionChanged queues the event without blocking the request that caused
// it. Events are dropped when the queue is full.
func (h *Hub) SessionChanged(_ context.Context, ev models.SessionEvent) {
	select {
	case h.broadcast <- ev:
	default:
		log.Warn().Str("session_id", ev.SessionID).Msg("websocket event queue full, dropping event")
	}
}

// Run serves registrations and broadcasts until ctx is done, then closes
// every connection.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			return
		case client := <-h.register:
			h.mu.Lock()
			set, ok := h.clients[client.Email]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[client.Email] = set
			}
			set[client] = struct{}{}
			h.mu.Unlock()
			log.Debug().Str("email", client.Email).Msg("websocket client registered")
			h.updateGauge()
		case client := <-h.unregister:
			h.remove(client)
		case ev := <-h.broadcast:
			h.deliver(ev)
		}
	}
}

// Count returns the number of connections for an email.
func (h *Hub) Count(email string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[email])
}

func (h *Hub) deliver(ev models.SessionEvent) {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients[ev.TutorEmail]))
	for c := range h.clients[ev.TutorEmail] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if err := c.Conn.WriteJSON(ev); err != nil {
			log.Warn().Err(err).Str("email", c.Email).Msg("websocket write failed, dropping client")
			h.remove(c)
		}
	}
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	set, ok := h.clients[c.Email]
	if ok {
		if _, present := set[c]; present {
			delete(set, c)
			_ = c.Conn.Close()
		}
		if len(set) == 0 {
			delete(h.clients, c.Email)
		}
	}
	h.mu.Unlock()
	h.updateGauge()
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	for email, set := range h.clients {
		for c := range set {
			_ = c.Conn.Close()
		}
		delete(h.clients, email)
	}
	h.mu.Unlock()
	h.updateGauge()
}

func (h *Hub) updateGauge() {
	if h.gauge == nil {
		return
	}
	h.mu.RLock()
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	h.mu.RUnlock()
	h.gauge.SetWSClients(n)
}
