// Package relay connects message ingress to durable storage and fan-out: the
// producer enriches and publishes inbound frames, the consumer persists and
// broadcasts them.
package relay

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/chatrelay/realtime-chat-api/broker"
	"github.com/chatrelay/realtime-chat-api/directory"
	"github.com/chatrelay/realtime-chat-api/models"
)

// Producer is the relay ingress: it resolves the sender's display name and
// hands the enriched message to the broker. Stateless per call; enrichment or
// publish failure propagates synchronously to the caller with no local retry.
type Producer struct {
	Resolver  directory.NicknameResolver
	Publisher broker.Publisher
}

// Send enriches an inbound frame and publishes it to the relay exchange. The
// timestamp is left zero; the consumer stamps it at persistence time.
func (p *Producer) Send(ctx context.Context, in models.InboundMessage) error {
	nickname, err := p.Resolver.NicknameByEmail(ctx, in.UserEmail)
	if err != nil {
		return fmt.Errorf("resolve nickname for %q: %w", in.UserEmail, err)
	}

	msg := models.ChatMessage{
		RoomID:    in.RoomID,
		UserEmail: in.UserEmail,
		UserName:  nickname,
		Content:   in.Content,
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	if err := p.Publisher.Publish(ctx, body); err != nil {
		return fmt.Errorf("publish message: %w", err)
	}
	return nil
}
