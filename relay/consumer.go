package relay

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/chatrelay/realtime-chat-api/databases"
	"github.com/chatrelay/realtime-chat-api/models"
)

// Broadcaster is the consumer's view of the connection gateway.
type Broadcaster interface {
	Broadcast(roomID string, payload []byte)
}

// Consumer is the relay egress: for each delivery from the queue it persists
// the message and then broadcasts the persisted record to the room topic.
// Broadcast happens only after a successful persist; a persist failure leaves
// the delivery unacked so the fabric redelivers it.
type Consumer struct {
	DB      databases.MessageDatabase
	Gateway Broadcaster
}

// Run processes deliveries until the channel closes. main runs one Run
// goroutine per consumer; deliveries dispatched to concurrent consumers carry
// no ordering guarantee between them.
func (c *Consumer) Run(deliveries <-chan amqp.Delivery) {
	for d := range deliveries {
		c.process(context.Background(), d)
	}
	zap.S().Info("relay consumer stopped, delivery channel closed")
}

func (c *Consumer) process(ctx context.Context, d amqp.Delivery) {
	var msg models.ChatMessage
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		// A payload that cannot be parsed will never parse on redelivery.
		zap.S().Errorw("dropping malformed relay payload", "error", err)
		d.Ack(false)
		return
	}

	msg.ID = primitive.NewObjectID()
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	if _, err := c.DB.InsertOne(ctx, msg); err != nil {
		// Leave the delivery unacked so the fabric redelivers it. A second
		// failure of the same delivery is parked instead of requeued, which
		// keeps a poison message from looping forever; deployments can hang a
		// dead-letter exchange off the queue to catch those.
		zap.S().Errorw("failed to persist relayed message",
			"roomId", msg.RoomID,
			"redelivered", d.Redelivered,
			"error", err,
		)
		d.Nack(false, !d.Redelivered)
		return
	}
	d.Ack(false)

	// Persistence is the durability contract; broadcast is best-effort. No
	// subscribers is not an error, the message is retrievable via history.
	payload, err := json.Marshal(msg)
	if err != nil {
		zap.S().Errorw("failed to marshal persisted message for broadcast", "error", err)
		return
	}
	c.Gateway.Broadcast(msg.RoomID, payload)

	zap.S().Debugw("relayed message", "roomId", msg.RoomID, "messageId", msg.ID.Hex())
}
