package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/chatrelay/realtime-chat-api/api/handlers"
	"github.com/chatrelay/realtime-chat-api/databases"
	"github.com/chatrelay/realtime-chat-api/databases/mocks"
	"github.com/chatrelay/realtime-chat-api/models"
)

type MockDatabaseHelper struct {
	mock.Mock
}

// Client provides a mock function.
func (_m *MockDatabaseHelper) Client() databases.ClientHelper {
	ret := _m.Called()

	var r0 databases.ClientHelper
	if rf, ok := ret.Get(0).(func() databases.ClientHelper); ok {
		r0 = rf()
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(databases.ClientHelper)
		}
	}

	return r0
}

// Collection provides a mock function.
func (_m *MockDatabaseHelper) Collection(name string) databases.CollectionHelper {
	ret := _m.Called(name)

	var r0 databases.CollectionHelper
	if rf, ok := ret.Get(0).(func(string) databases.CollectionHelper); ok {
		r0 = rf(name)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(databases.CollectionHelper)
		}
	}

	return r0
}

func TestRoom_CreateRoomHandlerBlankCreator(t *testing.T) {
	body := bytes.NewBufferString(`{"roomName": "general", "creator": "   "}`)
	req, err := http.NewRequest("POST", "/api/v1/chat/rooms", body)
	if err != nil {
		t.Fatal(err)
	}

	db := &MockDatabaseHelper{} // can be used as db = &mocks.DatabaseHelper{}

	roomDatabase := databases.NewRoomDatabase(db)
	u := handlers.Room{
		DB: roomDatabase,
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.CreateRoomHandler)

	handler.ServeHTTP(rr, req)

	if status := rr.Code; status != http.StatusBadRequest {
		t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
	}

	expected := models.ErrorMessageResponse{Response: models.MessageError{Message: "creator is required", Error: "creator must not be blank"}}
	b, _ := json.Marshal(expected)
	if rr.Body.String() != string(b) {
		t.Errorf("handler returned unexpected body: \ngot: %v \nwant: %v", rr.Body.String(), string(b))
	}
}

func TestRoom_CreateRoomHandlerAssignsIDAndTimestamp(t *testing.T) {
	body := bytes.NewBufferString(`{"roomName": "general", "creator": "alice"}`)
	req, err := http.NewRequest("POST", "/api/v1/chat/rooms", body)
	if err != nil {
		t.Fatal(err)
	}

	var db databases.DatabaseHelper
	var conn databases.CollectionHelper
	var insertOneResultHelper databases.InsertOneResultHelper

	db = &MockDatabaseHelper{}
	conn = &mocks.CollectionHelper{}
	insertOneResultHelper = &mocks.InsertOneResultHelper{}

	conn.(*mocks.CollectionHelper).On("InsertOne", mock.Anything, mock.Anything).Return(insertOneResultHelper, nil)
	db.(*MockDatabaseHelper).On("Collection", "chatRooms").Return(conn)

	roomDatabase := databases.NewRoomDatabase(db)
	u := handlers.Room{
		DB: roomDatabase,
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.CreateRoomHandler)

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var created models.ChatRoom
	err = json.Unmarshal(rr.Body.Bytes(), &created)
	assert.NoError(t, err)
	assert.False(t, created.ID.IsZero(), "expected a newly assigned room id")
	assert.Equal(t, "general", created.RoomName)
	assert.Equal(t, "alice", created.Creator)
	assert.WithinDuration(t, time.Now().UTC(), created.CreatedAt, 5*time.Second)
}

func TestRoom_CreateRoomHandlerInsertError(t *testing.T) {
	body := bytes.NewBufferString(`{"roomName": "general", "creator": "alice"}`)
	req, err := http.NewRequest("POST", "/api/v1/chat/rooms", body)
	if err != nil {
		t.Fatal(err)
	}

	var db databases.DatabaseHelper
	var conn databases.CollectionHelper

	db = &MockDatabaseHelper{}
	conn = &mocks.CollectionHelper{}

	conn.(*mocks.CollectionHelper).On("InsertOne", mock.Anything, mock.Anything).Return(nil, errors.New("mocked-error"))
	db.(*MockDatabaseHelper).On("Collection", "chatRooms").Return(conn)

	roomDatabase := databases.NewRoomDatabase(db)
	u := handlers.Room{
		DB: roomDatabase,
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.CreateRoomHandler)

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestRoom_ListRoomsHandlerEmpty(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/chat/rooms", nil)
	if err != nil {
		t.Fatal(err)
	}

	var db databases.DatabaseHelper
	var conn databases.CollectionHelper
	var cursorHelper databases.CursorHelper

	db = &MockDatabaseHelper{}
	conn = &mocks.CollectionHelper{}
	cursorHelper = &mocks.CursorHelper{}

	cursorHelper.(*mocks.CursorHelper).On("Decode", mock.Anything).Return(nil)
	conn.(*mocks.CollectionHelper).On("Find", mock.Anything, mock.Anything).Return(cursorHelper, nil)
	db.(*MockDatabaseHelper).On("Collection", "chatRooms").Return(conn)

	roomDatabase := databases.NewRoomDatabase(db)
	u := handlers.Room{
		DB: roomDatabase,
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.ListRoomsHandler)

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]", rr.Body.String())
}

func TestRoom_ListRoomsHandler(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/chat/rooms", nil)
	if err != nil {
		t.Fatal(err)
	}

	var db databases.DatabaseHelper
	var conn databases.CollectionHelper
	var cursorHelper databases.CursorHelper

	db = &MockDatabaseHelper{}
	conn = &mocks.CollectionHelper{}
	cursorHelper = &mocks.CursorHelper{}

	cursorHelper.(*mocks.CursorHelper).On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*[]models.ChatRoom)
		*arg = []models.ChatRoom{
			{RoomName: "general", Creator: "alice"},
			{RoomName: "random", Creator: "bob"},
		}
	})
	conn.(*mocks.CollectionHelper).On("Find", mock.Anything, mock.Anything).Return(cursorHelper, nil)
	db.(*MockDatabaseHelper).On("Collection", "chatRooms").Return(conn)

	roomDatabase := databases.NewRoomDatabase(db)
	u := handlers.Room{
		DB: roomDatabase,
	}

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(u.ListRoomsHandler)

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var rooms []models.ChatRoom
	err = json.Unmarshal(rr.Body.Bytes(), &rooms)
	assert.NoError(t, err)
	assert.Len(t, rooms, 2)
	assert.Equal(t, "general", rooms[0].RoomName)
}
