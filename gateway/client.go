package gateway

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/chatrelay/realtime-chat-api/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096

	// sendBufferSize bounds how far a slow client may lag before it starts
	// missing frames.
	sendBufferSize = 256
)

// Frame is the JSON envelope clients speak over the socket. Action is one of
// "subscribe", "unsubscribe" or "send"; the remaining fields apply to "send".
type Frame struct {
	Action    string `json:"action"`
	RoomID    string `json:"roomId"`
	UserEmail string `json:"userEmail,omitempty"`
	Content   string `json:"content,omitempty"`
}

type errorFrame struct {
	Error string `json:"error"`
}

// Client is one WebSocket connection. rooms and closed are guarded by the
// hub's mutex.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	addr    string
	rooms   map[string]bool
	closed  bool
	inbound InboundHandler
}

func newClient(hub *Hub, conn *websocket.Conn, addr string, inbound InboundHandler) *Client {
	return &Client{
		hub:     hub,
		conn:    conn,
		send:    make(chan []byte, sendBufferSize),
		addr:    addr,
		rooms:   make(map[string]bool),
		inbound: inbound,
	}
}

// readPump consumes frames from the connection until it drops, then removes
// the client from the hub. An in-flight persist-and-broadcast for a room the
// client just left continues unaffected.
func (c *Client) readPump() {
	defer func() {
		c.hub.Remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				zap.S().Debugw("websocket read error", "addr", c.addr, "error", err)
			}
			return
		}

		var frame Frame
		if err := json.Unmarshal(raw, &frame); err != nil {
			c.reportError("malformed frame")
			continue
		}
		c.handleFrame(frame)
	}
}

func (c *Client) handleFrame(frame Frame) {
	switch frame.Action {
	case "subscribe":
		if frame.RoomID != "" {
			c.hub.Subscribe(frame.RoomID, c)
		}
	case "unsubscribe":
		if frame.RoomID != "" {
			c.hub.Unsubscribe(frame.RoomID, c)
		}
	case "send":
		msg := models.InboundMessage{
			RoomID:    frame.RoomID,
			UserEmail: frame.UserEmail,
			Content:   frame.Content,
		}
		if err := c.inbound(context.Background(), msg); err != nil {
			zap.S().Errorw("failed to relay inbound message", "roomId", frame.RoomID, "error", err)
			c.reportError(err.Error())
		}
	default:
		c.reportError("unknown action " + frame.Action)
	}
}

// reportError tells the sending client its frame went nowhere. Best effort,
// like any other delivery.
func (c *Client) reportError(msg string) {
	b, _ := json.Marshal(errorFrame{Error: msg})
	select {
	case c.send <- b:
	default:
	}
}

// writePump pushes broadcast frames and keepalive pings to the connection.
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
