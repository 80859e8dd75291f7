package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChatMessage holds the structure for the chatMessages collection in mongo.
// The same structure rides the broker as the JSON relay payload, so the
// consumer persists exactly what the producer published. UserName is the
// display name snapshot taken at enrichment time; it is not re-resolved when
// a user later renames themselves.
type ChatMessage struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	RoomID    string             `json:"roomId" bson:"roomId"`
	UserEmail string             `json:"userEmail" bson:"userEmail"`
	UserName  string             `json:"userName" bson:"userName"`
	Content   string             `json:"content" bson:"content"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// InboundMessage is the frame a connected client sends to a room. The display
// name is deliberately absent: the relay producer resolves it from the user
// email before the message is published.
type InboundMessage struct {
	RoomID    string `json:"roomId"`
	UserEmail string `json:"userEmail"`
	Content   string `json:"content"`
}
