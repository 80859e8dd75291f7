package gateway

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin policy is owned by the deployment's proxy layer.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler upgrades HTTP requests into gateway connections.
type Handler struct {
	Hub     *Hub
	Inbound InboundHandler
}

// ServeWS is the single connection endpoint. Each accepted connection gets a
// read and a write goroutine and lives until the peer goes away.
func (h Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Errorw("websocket upgrade failed", "error", err)
		return
	}

	client := newClient(h.Hub, conn, r.RemoteAddr, h.Inbound)
	zap.S().Infow("client connected", "addr", client.addr)

	go client.writePump()
	go client.readPump()
}
