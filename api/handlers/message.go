package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/chatrelay/realtime-chat-api/api"
	"github.com/chatrelay/realtime-chat-api/config"
	"github.com/chatrelay/realtime-chat-api/databases"
	"github.com/chatrelay/realtime-chat-api/models"
)

// Message exported for testing purposes
type Message struct {
	DB databases.MessageDatabase
}

type createMessageRequest struct {
	UserEmail string `json:"userEmail"`
	UserName  string `json:"userName"`
	Content   string `json:"content"`
}

// RoomHistoryHandler returns a room's messages ordered by creation time
// ascending. A room with no messages, or an unknown room, yields an empty
// list rather than an error.
func (c Message) RoomHistoryHandler(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["room_id"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	// _id as tiebreak keeps equal-timestamp messages in insertion order
	sort := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	dbResp, err := c.DB.Find(ctx, bson.M{"roomId": roomID}, sort)
	if err != nil {
		config.ErrorStatus("failed to get messages for room", http.StatusInternalServerError, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.ChatMessage{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// CreateMessageHandler persists a message directly, bypassing enrichment and
// the broker. The caller-supplied display name is trusted as-is; the creation
// timestamp is stamped server-side.
func (c Message) CreateMessageHandler(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["room_id"]

	var requestBody createMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	newMessage := models.ChatMessage{
		ID:        primitive.NewObjectID(),
		RoomID:    roomID,
		UserEmail: requestBody.UserEmail,
		UserName:  requestBody.UserName,
		Content:   requestBody.Content,
		CreatedAt: time.Now().UTC(),
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	_, err := c.DB.InsertOne(ctx, newMessage)
	if err != nil {
		config.ErrorStatus("failed to create message", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(newMessage)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// DeleteMessageHandler deletes a message by id. The existence check runs
// first so a missing message reports not-found instead of a server fault;
// a successful delete returns no body.
func (c Message) DeleteMessageHandler(w http.ResponseWriter, r *http.Request) {
	messageID := mux.Vars(r)["message_id"]

	mID, err := primitive.ObjectIDFromHex(messageID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	filter := bson.M{"_id": mID}
	_, err = c.DB.FindOne(ctx, filter)
	if err != nil {
		config.ErrorStatus("message not found", http.StatusNotFound, w, err)
		return
	}

	err = c.DB.DeleteOne(ctx, filter)
	if err != nil {
		config.ErrorStatus("failed to delete message", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
