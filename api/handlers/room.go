package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/chatrelay/realtime-chat-api/api"
	"github.com/chatrelay/realtime-chat-api/config"
	"github.com/chatrelay/realtime-chat-api/databases"
	"github.com/chatrelay/realtime-chat-api/models"
)

// Room exported for testing purposes
type Room struct {
	DB databases.RoomDatabase
}

type createRoomRequest struct {
	RoomName string `json:"roomName"`
	Creator  string `json:"creator"`
}

// ListRoomsHandler returns all chat rooms
func (c Room) ListRoomsHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	dbResp, err := c.DB.Find(ctx, bson.D{})
	if err != nil {
		config.ErrorStatus("failed to get rooms", http.StatusInternalServerError, w, err)
		return
	}
	// the frontend iterates the room list, so an empty result must still be
	// a JSON array rather than null
	if len(dbResp) == 0 {
		dbResp = []models.ChatRoom{}
	}
	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// CreateRoomHandler creates a new chat room. The creator is required; the
// room id and creation timestamp are assigned server-side.
func (c Room) CreateRoomHandler(w http.ResponseWriter, r *http.Request) {
	var requestBody createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}

	if strings.TrimSpace(requestBody.Creator) == "" {
		config.ErrorStatus("creator is required", http.StatusBadRequest, w, errors.New("creator must not be blank"))
		return
	}

	newRoom := models.ChatRoom{
		ID:        primitive.NewObjectID(),
		RoomName:  requestBody.RoomName,
		Creator:   requestBody.Creator,
		CreatedAt: time.Now().UTC(),
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	_, err := c.DB.InsertOne(ctx, newRoom)
	if err != nil {
		config.ErrorStatus("failed to create room", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(newRoom)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}
