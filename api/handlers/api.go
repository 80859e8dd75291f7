package handlers

import (
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/chatrelay/realtime-chat-api/broker"
	"github.com/chatrelay/realtime-chat-api/config"
	"github.com/chatrelay/realtime-chat-api/databases"
	"github.com/chatrelay/realtime-chat-api/directory"
	"github.com/chatrelay/realtime-chat-api/gateway"
	"github.com/chatrelay/realtime-chat-api/relay"
)

// App stores the router, db connection and relay wiring, so it can be reused
type App struct {
	Router   *mux.Router
	Config   config.Config
	Hub      *gateway.Hub
	Broker   *broker.Connection
	Producer *relay.Producer
	dbHelper databases.DatabaseHelper
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	r := mux.NewRouter()

	room := Room{DB: databases.NewRoomDatabase(a.dbHelper)}
	message := Message{DB: databases.NewMessageDatabase(a.dbHelper)}

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)

	if a.Hub != nil && a.Producer != nil {
		ws := gateway.Handler{Hub: a.Hub, Inbound: a.Producer.Send}
		r.HandleFunc("/ws", ws.ServeWS)
	}

	apiCreate := r.PathPrefix("/api/v1").Subrouter()

	apiCreate.Handle("/chat/rooms", http.HandlerFunc(room.ListRoomsHandler)).Methods("GET")
	apiCreate.Handle("/chat/rooms", http.HandlerFunc(room.CreateRoomHandler)).Methods("POST")
	apiCreate.Handle("/chat/rooms/{room_id}/messages", http.HandlerFunc(message.RoomHistoryHandler)).Methods("GET")
	apiCreate.Handle("/chat/rooms/{room_id}/messages", http.HandlerFunc(message.CreateMessageHandler)).Methods("POST")
	apiCreate.Handle("/chat/messages/{message_id}", http.HandlerFunc(message.DeleteMessageHandler)).Methods("DELETE")

	return r
}

// Initialize is invoked by main to connect with the database and broker and
// create a router
func (a *App) Initialize() error {

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	a.dbHelper = databases.NewDatabase(&a.Config, client)
	err = client.Connect()
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("realtime-chat-api has connected to the database")

	// one topology value, shared by producer and consumer
	topology := broker.DefaultTopology()
	a.Broker, err = broker.Dial(a.Config.AMQPURL, topology)
	if err != nil {
		zap.S().With(err).Error("failed to connect to message broker")
		return err
	}

	a.Hub = gateway.NewHub()
	a.Producer = &relay.Producer{
		Resolver:  directory.New(a.Config.UserServiceURL),
		Publisher: a.Broker,
	}

	deliveries, err := a.Broker.Consume()
	if err != nil {
		zap.S().With(err).Error("failed to start consuming from broker")
		return err
	}
	consumer := &relay.Consumer{
		DB:      databases.NewMessageDatabase(a.dbHelper),
		Gateway: a.Hub,
	}
	go consumer.Run(deliveries)

	// initialize api router
	a.Router = a.New()
	return nil

}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, `{"alive": true}`)
}
