package websocket

import (
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512
)

// ObserverMessage is what a connected observer sends to manage its room
// subscriptions.
type ObserverMessage struct {
	Action     string `json:"action"` // "join" or "leave"
	ElectionID uint   `json:"election_id"`
}

// Client is one connected observer. It forwards join/leave requests to the
// hub and drains tally updates from its send buffer onto the wire.
type Client struct {
	id         string
	userID     uint
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	sendClosed int32
}

func NewClient(hub *Hub, conn *websocket.Conn, userID uint) *Client {
	return &Client{
		id:     uuid.New().String(),
		userID: userID,
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, 256),
	}
}

// Register attaches the client to the hub and starts its pumps.
func (c *Client) Register() {
	c.hub.register <- c
	go c.writePump()
	go c.readPump()
}

// closeSend safely closes the send channel once.
func (c *Client) closeSend() {
	if atomic.CompareAndSwapInt32(&c.sendClosed, 0, 1) {
		close(c.send)
	}
}

// readPump reads subscription messages until the peer goes away. A
// disconnect is not an error condition; it just stops future deliveries.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("observer read error", "clientID", c.id, "error", err)
			}
			return
		}

		var msg ObserverMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			slog.Warn("malformed observer message", "clientID", c.id, "error", err)
			continue
		}

		switch msg.Action {
		case "join":
			c.hub.join <- subscription{client: c, electionID: msg.ElectionID}
		case "leave":
			c.hub.leave <- subscription{client: c, electionID: msg.ElectionID}
		default:
			slog.Warn("unknown observer action", "clientID", c.id, "action", msg.Action)
		}
	}
}

// writePump drains the send buffer onto the connection and keeps the peer
// alive with pings.
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
