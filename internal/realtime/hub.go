// Package realtime streams conversation events to websocket subscribers.
package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	sendBuffer   = 64
	writeTimeout = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = (pongWait * 9) / 10
)

// Connection one subscriber socket.
type Connection struct {
	ID      string
	OwnerID string
	Conn    *websocket.Conn
	Send    chan []byte
}

type ownerMessage struct {
	ownerID string
	data    []byte
}

// Hub fans events out to the connections of each owner.
type Hub struct {
	// owner id -> connection id -> connection
	owners map[string]map[string]*Connection

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan ownerMessage
	done       chan struct{}

	mu sync.RWMutex
}

// NewHub creates a hub; call Run to start it.
func NewHub() *Hub {
	return &Hub{
		owners:     make(map[string]map[string]*Connection),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan ownerMessage, 256),
		done:       make(chan struct{}),
	}
}

// Run processes registrations and broadcasts until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			return

		case conn := <-h.register:
			h.mu.Lock()
			if h.owners[conn.OwnerID] == nil {
				h.owners[conn.OwnerID] = make(map[string]*Connection)
			}
			h.owners[conn.OwnerID][conn.ID] = conn
			h.mu.Unlock()
			log.Debug().Str("conn_id", conn.ID).Str("owner_id", conn.OwnerID).Msg("event subscriber registered")

		case conn := <-h.unregister:
			h.remove(conn)

		case msg := <-h.broadcast:
			h.mu.RLock()
			var slow []*Connection
			for _, conn := range h.owners[msg.ownerID] {
				select {
				case conn.Send <- msg.data:
				default:
					slow = append(slow, conn)
				}
			}
			h.mu.RUnlock()
			for _, conn := range slow {
				log.Warn().Str("conn_id", conn.ID).Msg("event subscriber too slow, dropping")
				h.remove(conn)
			}
		}
	}
}

func (h *Hub) remove(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.owners[conn.OwnerID]
	if !ok {
		return
	}
	if _, ok := conns[conn.ID]; !ok {
		return
	}
	delete(conns, conn.ID)
	if len(conns) == 0 {
		delete(h.owners, conn.OwnerID)
	}
	close(conn.Send)
	log.Debug().Str("conn_id", conn.ID).Msg("event subscriber unregistered")
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for owner, conns := range h.owners {
		for _, conn := range conns {
			close(conn.Send)
		}
		delete(h.owners, owner)
	}
}

// NewConnection wraps ws for ownerID.
func (h *Hub) NewConnection(ws *websocket.Conn, ownerID string) *Connection {
	return &Connection{
		ID:      uuid.New().String(),
		OwnerID: ownerID,
		Conn:    ws,
		Send:    make(chan []byte, sendBuffer),
	}
}

// Register adds conn to the hub.
func (h *Hub) Register(conn *Connection) {
	select {
	case h.register <- conn:
	case <-h.done:
		close(conn.Send)
	}
}

// Unregister removes conn and closes its send channel.
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// Publish queues evt for every connection of ownerID. It never blocks; events are
// dropped when the hub is saturated.
func (h *Hub) Publish(ownerID string, evt Event) {
	data, err := json.Marshal(evt)
	if err != nil {
		log.Error().Err(err).Str("type", evt.Type).Msg("failed to encode event")
		return
	}
	select {
	case h.broadcast <- ownerMessage{ownerID: ownerID, data: data}:
	default:
		log.Warn().Str("type", evt.Type).Msg("event hub saturated, dropping event")
	}
}

// ConnectionCount returns the number of live subscribers.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, conns := range h.owners {
		n += len(conns)
	}
	return n
}

// Serve pumps conn until the client goes away. It blocks.
func (h *Hub) Serve(conn *Connection) {
	h.Register(conn)
	go h.writePump(conn)
	h.readPump(conn)
}

// readPump only handles control frames; clients do not send data.
func (h *Hub) readPump(conn *Connection) {
	defer func() {
		h.Unregister(conn)
		conn.Conn.Close()
	}()

	conn.Conn.SetReadLimit(512)
	_ = conn.Conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.Conn.SetPongHandler(func(string) error {
		return conn.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Debug().Err(err).Str("conn_id", conn.ID).Msg("websocket closed")
			}
			return
		}
	}
}

func (h *Hub) writePump(conn *Connection) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		conn.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			_ = conn.Conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				_ = conn.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = conn.Conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
