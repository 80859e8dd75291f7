package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chatrelay/realtime-chat-api/models"
)

func testClient(h *Hub) *Client {
	return newClient(h, nil, "test-client", func(context.Context, models.InboundMessage) error { return nil })
}

func receivedFrames(c *Client) [][]byte {
	var frames [][]byte
	for {
		select {
		case f := <-c.send:
			frames = append(frames, f)
		default:
			return frames
		}
	}
}

func TestHub_BroadcastIsRoomScoped(t *testing.T) {
	h := NewHub()
	general1 := testClient(h)
	general2 := testClient(h)
	random := testClient(h)

	h.Subscribe("general", general1)
	h.Subscribe("general", general2)
	h.Subscribe("random", random)

	h.Broadcast("general", []byte(`{"content":"hi"}`))

	assert.Len(t, receivedFrames(general1), 1)
	assert.Len(t, receivedFrames(general2), 1)
	assert.Empty(t, receivedFrames(random), "a subscriber of a different room receives nothing")
}

func TestHub_BroadcastToEmptyRoomIsNoop(t *testing.T) {
	h := NewHub()
	h.Broadcast("nowhere", []byte("x"))
	assert.Equal(t, 0, h.Subscribers("nowhere"))
}

func TestHub_ClientMaySubscribeToMultipleRooms(t *testing.T) {
	h := NewHub()
	c := testClient(h)

	h.Subscribe("general", c)
	h.Subscribe("random", c)

	h.Broadcast("general", []byte("a"))
	h.Broadcast("random", []byte("b"))

	assert.Len(t, receivedFrames(c), 2)
}

func TestHub_UnsubscribeStopsDelivery(t *testing.T) {
	h := NewHub()
	c := testClient(h)

	h.Subscribe("general", c)
	h.Unsubscribe("general", c)

	h.Broadcast("general", []byte("a"))

	assert.Empty(t, receivedFrames(c))
	assert.Equal(t, 0, h.Subscribers("general"))
}

func TestHub_RemoveDropsAllSubscriptions(t *testing.T) {
	h := NewHub()
	c := testClient(h)

	h.Subscribe("general", c)
	h.Subscribe("random", c)
	h.Remove(c)

	assert.Equal(t, 0, h.Subscribers("general"))
	assert.Equal(t, 0, h.Subscribers("random"))

	_, open := <-c.send
	assert.False(t, open, "send channel is closed on removal")

	// a second removal of the same client must be harmless
	h.Remove(c)
}

func TestHub_SlowClientDoesNotBlockOthers(t *testing.T) {
	h := NewHub()
	slow := testClient(h)
	fast := testClient(h)

	h.Subscribe("general", slow)
	h.Subscribe("general", fast)

	for i := 0; i < sendBufferSize; i++ {
		slow.send <- []byte("backlog")
	}

	done := make(chan struct{})
	go func() {
		h.Broadcast("general", []byte("fresh"))
		close(done)
	}()
	<-done

	assert.Len(t, receivedFrames(fast), 1, "fast client still receives while slow one lags")
}

func TestClient_SendFrameReachesInboundHandler(t *testing.T) {
	h := NewHub()
	var got models.InboundMessage
	c := newClient(h, nil, "test-client", func(_ context.Context, msg models.InboundMessage) error {
		got = msg
		return nil
	})

	c.handleFrame(Frame{Action: "send", RoomID: "general", UserEmail: "bob@x.com", Content: "hi"})

	assert.Equal(t, "general", got.RoomID)
	assert.Equal(t, "bob@x.com", got.UserEmail)
	assert.Equal(t, "hi", got.Content)
	assert.Empty(t, receivedFrames(c), "no error frame on success")
}

func TestClient_InboundErrorIsReportedToSender(t *testing.T) {
	h := NewHub()
	c := newClient(h, nil, "test-client", func(context.Context, models.InboundMessage) error {
		return errors.New("broker unreachable")
	})

	c.handleFrame(Frame{Action: "send", RoomID: "general", UserEmail: "bob@x.com", Content: "hi"})

	frames := receivedFrames(c)
	assert.Len(t, frames, 1)
	assert.Contains(t, string(frames[0]), "broker unreachable")
}

func TestClient_SubscribeFrameJoinsRoom(t *testing.T) {
	h := NewHub()
	c := testClient(h)

	c.handleFrame(Frame{Action: "subscribe", RoomID: "general"})
	assert.Equal(t, 1, h.Subscribers("general"))

	c.handleFrame(Frame{Action: "unsubscribe", RoomID: "general"})
	assert.Equal(t, 0, h.Subscribers("general"))
}
