package ws

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer. A silent
	// connection misses its pongs and is torn down, so presence entries
	// cannot leak indefinitely.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum inbound frame size.
	maxFrameSize = 4096

	// Outbound delivery buffer per connection.
	sendBufferSize = 16
)

type connState int

const (
	// Handshake established, user not yet bound.
	stateConnected connState = iota
	// User id bound and presence registration attempted. Only identified
	// connections receive deliveries.
	stateIdentified
	// Registry entry removed, handle invalidated.
	stateClosed
)

// Client is one websocket connection moving through the
// connected → identified → closed lifecycle.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	id   string

	// Buffered channel of outbound payloads, drained by writePump.
	send chan []byte

	mu     sync.Mutex
	state  connState
	userID int
}

func newClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		id:   uuid.NewString(),
		send: make(chan []byte, sendBufferSize),
	}
}

// ConnID implements presence.Conn.
func (c *Client) ConnID() string { return c.id }

// Deliver implements presence.Conn. It never blocks: a closed connection or a
// full send buffer reports false and the payload is dropped.
func (c *Client) Deliver(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == stateClosed {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Disconnect(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxFrameSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("websocket closed unexpectedly", "conn_id", c.id, "error", err)
			}
			return
		}
		if err := c.handleFrame(raw); err != nil {
			slog.Warn("rejecting malformed frame", "conn_id", c.id, "error", err)
			c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "malformed frame"),
				time.Now().Add(writeWait))
			return
		}
	}
}

func (c *Client) handleFrame(raw []byte) error {
	userID, err := parseIdentify(raw)
	if err != nil {
		return err
	}
	return c.hub.Identify(c, userID)
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel on disconnect.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
