package websocket

import (
	"net/http"

	"github.com/gorilla/websocket"

	"auction-house/pkg/logger"
	"auction-house/pkg/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development
	},
}

// Handler upgrades observer requests and keeps the connection registered
// until the peer goes away. Observers only listen; inbound frames are
// drained and discarded.
type Handler struct {
	connManager *ConnectionManager
	log         logger.Logger
}

func NewHandler(connManager *ConnectionManager, log logger.Logger) *Handler {
	return &Handler{connManager: connManager, log: log}
}

func (h *Handler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("Failed to upgrade connection", "error", err)
		return
	}

	wsConn := NewConnection(utils.GenerateID("observer"), conn)
	h.connManager.Register(wsConn)

	go h.drain(wsConn)
}

func (h *Handler) drain(conn *Connection) {
	defer func() {
		h.connManager.Unregister(conn.ID())
		conn.Close()
	}()

	for {
		if _, _, err := conn.conn.ReadMessage(); err != nil {
			return
		}
	}
}
