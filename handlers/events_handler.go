package handlers

import (
	"github.com/anjiri1684/educonnect/websocket"
	websocketcontrib "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

const wsEmailKey = "ws_email"

type authMessage struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// UpgradeEvents only lets websocket upgrades through. A valid ?token= is
// verified before the upgrade; without one the client must send an auth
// message first.
func (h *Handler) UpgradeEvents(c *fiber.Ctx) error {
	if !websocketcontrib.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	if token := c.Query("token"); token != "" {
		claims, err := h.Tokens.Verify(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized access: invalid or expired token"})
		}
		c.Locals(wsEmailKey, claims.Email)
	}
	return c.Next()
}

// ServeEvents streams lifecycle events for the caller's sessions.
func (h *Handler) ServeEvents(c *websocketcontrib.Conn) {
	email, _ := c.Locals(wsEmailKey).(string)
	if email == "" {
		var msg authMessage
		if err := c.ReadJSON(&msg); err != nil || msg.Type != "auth" {
			log.Debug().Err(err).Msg("websocket auth failed: invalid or missing auth message")
			_ = c.WriteJSON(fiber.Map{"error": "Invalid or missing auth message"})
			_ = c.Close()
			return
		}
		claims, err := h.Tokens.Verify(msg.Token)
		if err != nil {
			_ = c.WriteJSON(fiber.Map{"error": "Invalid token"})
			_ = c.Close()
			return
		}
		email = claims.Email
	}

	client := &websocket.Client{Email: email, Conn: c}
	if !h.Hub.Register(client) {
		_ = c.Close()
		return
	}
	defer h.Hub.Unregister(client)

	// Reads only detect the close; clients send nothing after auth.
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			if websocketcontrib.IsUnexpectedCloseError(err, websocketcontrib.CloseGoingAway, websocketcontrib.CloseNormalClosure) {
				log.Debug().Err(err).Str("email", email).Msg("websocket read error")
			}
			return
		}
	}
}
