// Package gateway accepts the long-lived WebSocket connections clients chat
// over. It multiplexes any number of connections and room topics in one
// process: clients subscribe to per-room broadcast topics and push inbound
// frames that are handed off to the relay.
package gateway

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/chatrelay/realtime-chat-api/models"
)

// InboundHandler receives chat frames sent by connected clients. The gateway
// reports a handler error back to the sending client and drops the frame.
type InboundHandler func(ctx context.Context, msg models.InboundMessage) error

// Hub tracks which clients are subscribed to which room topics and fans
// broadcast frames out to them. All maps are guarded by mu; Broadcast never
// blocks on a slow client.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*Client]bool)}
}

// Subscribe adds the client to a room topic.
func (h *Hub) Subscribe(roomID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c.closed {
		return
	}
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*Client]bool)
	}
	h.rooms[roomID][c] = true
	c.rooms[roomID] = true
	zap.S().Debugw("client subscribed", "roomId", roomID, "addr", c.addr, "subscribers", len(h.rooms[roomID]))
}

// Unsubscribe removes the client from a room topic.
func (h *Hub) Unsubscribe(roomID string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(roomID, c)
}

// Remove unsubscribes the client from every room and closes its send channel.
// Called once when the connection goes away; delivery to other clients is
// unaffected.
func (h *Hub) Remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c.closed {
		return
	}
	for roomID := range c.rooms {
		h.dropLocked(roomID, c)
	}
	c.closed = true
	close(c.send)
	zap.S().Debugw("client removed", "addr", c.addr)
}

func (h *Hub) dropLocked(roomID string, c *Client) {
	if members, ok := h.rooms[roomID]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, roomID)
		}
	}
	delete(c.rooms, roomID)
}

// Broadcast delivers a frame to every client currently subscribed to the room
// topic. Delivery is best-effort per connection: a client whose send buffer is
// full misses the frame rather than blocking the rest.
func (h *Hub) Broadcast(roomID string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[roomID] {
		if c.closed {
			continue
		}
		select {
		case c.send <- payload:
		default:
			zap.S().Debugw("dropping frame for slow client", "roomId", roomID, "addr", c.addr)
		}
	}
}

// Subscribers reports how many clients are subscribed to a room.
func (h *Hub) Subscribers(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}
