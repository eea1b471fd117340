package ws

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/urbanluxe/urbanluxe/internal/presence"
)

// Hub bridges connection lifecycle events and the presence registry, and
// forwards delivery requests to the receiver's live connection. It owns the
// registry for the lifetime of the process.
type Hub struct {
	registry *presence.Registry
	upgrader websocket.Upgrader
}

func NewHub(registry *presence.Registry, allowedOrigin string) *Hub {
	return &Hub{
		registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if allowedOrigin == "" {
					return true
				}
				return r.Header.Get("Origin") == allowedOrigin
			},
		},
	}
}

// ServeWS upgrades the request and starts the connection's pumps. The user is
// bound later by an identify frame; until then the connection cannot receive
// deliveries.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	client := newClient(h, conn)
	slog.Debug("websocket connected", "conn_id", client.id)
	go client.writePump()
	go client.readPump()
}

// Identify binds a user id to the connection and registers it for deliveries.
// Identifying twice on one connection is a protocol violation.
func (h *Hub) Identify(c *Client, userID int) error {
	c.mu.Lock()
	if c.state != stateConnected {
		c.mu.Unlock()
		return errors.New("connection already identified")
	}
	c.state = stateIdentified
	c.userID = userID
	c.mu.Unlock()

	if !h.registry.Register(userID, c) {
		// First registration wins: the user already has a recorded connection
		// and this one will never receive deliveries.
		slog.Warn("presence entry exists, keeping previous connection",
			"user_id", userID, "conn_id", c.id)
	}
	return nil
}

// Disconnect finishes the connection's lifecycle: the presence entry is
// removed and the handle invalidated. Safe to call more than once.
func (h *Hub) Disconnect(c *Client) {
	c.mu.Lock()
	if c.state == stateClosed {
		c.mu.Unlock()
		return
	}
	identified := c.state == stateIdentified
	c.state = stateClosed
	close(c.send)
	c.mu.Unlock()

	if identified {
		h.registry.Unregister(c)
		slog.Debug("websocket disconnected", "conn_id", c.id, "user_id", c.userID)
	}
}

// Deliver pushes ev to receiverID's live connection, if any. The message must
// already be persisted by the caller; an offline receiver is the expected
// path, not an error. Reports whether the event was handed to a connection.
func (h *Hub) Deliver(receiverID int, ev DeliveryEvent) bool {
	ev.Type = eventTypeMessage
	payload, err := json.Marshal(ev)
	if err != nil {
		slog.Error("marshal delivery event", "error", err)
		return false
	}

	conn, ok := h.registry.Lookup(receiverID)
	if !ok {
		slog.Debug("receiver offline, skipping delivery", "receiver_id", receiverID)
		return false
	}
	if !conn.Deliver(payload) {
		// The connection stopped draining its buffer; treat it as dead so the
		// user becomes deliverable again after reconnecting.
		slog.Warn("receiver connection stalled, dropping presence entry",
			"receiver_id", receiverID, "conn_id", conn.ConnID())
		h.registry.Unregister(conn)
		return false
	}
	return true
}

// Online reports whether userID currently has a registered connection.
func (h *Hub) Online(userID int) bool {
	_, ok := h.registry.Lookup(userID)
	return ok
}
