package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChatRoom holds the structure for the chatRooms collection in mongo.
// Rooms are never mutated after creation.
type ChatRoom struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	RoomName  string             `json:"roomName" bson:"roomName"`
	Creator   string             `json:"creator" bson:"creator"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}
