// Package broker owns the AMQP topology the relay rides on: one topic
// exchange, one durable queue, one routing key. Producers and consumers share
// a single Topology value built at startup so every side of the relay agrees
// on channel names.
package broker

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Topology names the exchange, queue and routing key that connect the relay
// producer to the relay consumer.
type Topology struct {
	Exchange   string
	Queue      string
	RoutingKey string
}

// DefaultTopology returns the channel names used by the chat relay.
func DefaultTopology() Topology {
	return Topology{
		Exchange:   "chat.exchange",
		Queue:      "chat.queue",
		RoutingKey: "chat.message",
	}
}

// Publisher is the producer-side view of the fabric.
type Publisher interface {
	Publish(ctx context.Context, body []byte) error
}

// Connection wraps an AMQP connection and channel with the relay topology
// declared on it.
type Connection struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	topology Topology
}

// Dial connects to the AMQP server and declares the exchange, queue and
// binding. A declaration failure fails the dial; the process has nothing
// useful to do without the fabric.
func Dial(url string, topology Topology) (*Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(topology.Exchange, "topic", true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare exchange %q: %w", topology.Exchange, err)
	}
	if _, err := ch.QueueDeclare(topology.Queue, true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare queue %q: %w", topology.Queue, err)
	}
	if err := ch.QueueBind(topology.Queue, topology.RoutingKey, topology.Exchange, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("bind queue %q: %w", topology.Queue, err)
	}

	zap.S().Infow("connected to message broker",
		"exchange", topology.Exchange,
		"queue", topology.Queue,
		"routingKey", topology.RoutingKey,
	)

	return &Connection{conn: conn, ch: ch, topology: topology}, nil
}

// Publish sends a JSON payload to the relay exchange. The error from the
// underlying channel is returned synchronously; there is no local buffering
// or retry.
func (c *Connection) Publish(ctx context.Context, body []byte) error {
	err := c.ch.PublishWithContext(ctx,
		c.topology.Exchange,
		c.topology.RoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish to %q: %w", c.topology.Exchange, err)
	}
	return nil
}

// Consume opens a manually-acked delivery stream from the relay queue. Each
// delivery must be acked or nacked by the consumer; unacked deliveries are
// redelivered by the server.
func (c *Connection) Consume() (<-chan amqp.Delivery, error) {
	tag := "chat-consumer-" + uuid.NewString()
	deliveries, err := c.ch.Consume(c.topology.Queue, tag, false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("consume from %q: %w", c.topology.Queue, err)
	}
	return deliveries, nil
}

// Close shuts down the channel and connection.
func (c *Connection) Close() error {
	if err := c.ch.Close(); err != nil {
		return err
	}
	return c.conn.Close()
}
