package websocket

import (
	"sync"

	"github.com/gorilla/websocket"

	"auction-house/pkg/logger"
)

// ConnectionManager tracks observer connections. There is exactly one live
// round, so every observer sees every event; no per-auction bucketing.
type ConnectionManager struct {
	connections map[string]*Connection // connection ID -> connection
	mutex       sync.RWMutex
	log         logger.Logger
}

func NewConnectionManager(log logger.Logger) *ConnectionManager {
	return &ConnectionManager{
		connections: make(map[string]*Connection),
		log:         log,
	}
}

func (cm *ConnectionManager) Register(conn *Connection) {
	cm.mutex.Lock()
	cm.connections[conn.ID()] = conn
	cm.mutex.Unlock()

	cm.log.Info("Observer connected", "connection_id", conn.ID())
}

func (cm *ConnectionManager) Unregister(connID string) {
	cm.mutex.Lock()
	delete(cm.connections, connID)
	cm.mutex.Unlock()

	cm.log.Info("Observer disconnected", "connection_id", connID)
}

// Broadcast sends message to every observer. Dead connections are dropped.
func (cm *ConnectionManager) Broadcast(message interface{}) {
	cm.mutex.RLock()
	conns := make([]*Connection, 0, len(cm.connections))
	for _, conn := range cm.connections {
		conns = append(conns, conn)
	}
	cm.mutex.RUnlock()

	for _, conn := range conns {
		if err := conn.Send(message); err != nil {
			cm.log.Warn("Dropping dead observer connection", "connection_id", conn.ID(), "error", err)
			cm.Unregister(conn.ID())
			conn.Close()
		}
	}
}

// Connection wraps a single gorilla websocket with write serialization.
type Connection struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex
}

func NewConnection(id string, conn *websocket.Conn) *Connection {
	return &Connection{id: id, conn: conn}
}

func (c *Connection) ID() string { return c.id }

func (c *Connection) Send(message interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(message)
}

func (c *Connection) Close() error {
	return c.conn.Close()
}
