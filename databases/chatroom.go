package databases

// go generate: mockery --name RoomDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/chatrelay/realtime-chat-api/models"
)

const roomName = "chatRooms"

// RoomDatabase contains the methods to use with the chat room database
type RoomDatabase interface {
	Find(context.Context, interface{}, ...*options.FindOptions) ([]models.ChatRoom, error)
	InsertOne(context.Context, interface{}, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
}

type roomDatabase struct {
	db DatabaseHelper
}

// NewRoomDatabase initializes a new instance of room database with the provided db connection
func NewRoomDatabase(db DatabaseHelper) RoomDatabase {
	return &roomDatabase{
		db: db,
	}
}

func (c *roomDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.ChatRoom, error) {
	var rooms []models.ChatRoom
	cr, err := c.db.Collection(roomName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cr.Decode(&rooms)
	if err != nil {
		return nil, err
	}
	return rooms, nil
}

func (c *roomDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	res, err := c.db.Collection(roomName).InsertOne(ctx, document, opts...)
	return res, err
}
