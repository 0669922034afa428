package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/sharpline/internal/service"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	// sendBuffer bounds per-client backlog; a client that cannot keep
	// up is dropped rather than blocking the broadcast.
	sendBuffer = 8
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub fans fresh snapshots out to websocket subscribers. Clients only
// receive; inbound frames other than control messages are discarded.
type Hub struct {
	mu      sync.Mutex
	clients map[string]chan []byte
	closed  bool
	logger  *logrus.Entry
}

func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		clients: make(map[string]chan []byte),
		logger:  logger.WithField("component", "ws_hub"),
	}
}

// Broadcast serializes the snapshot once and queues it to every
// connected client. Slow clients are disconnected.
func (h *Hub) Broadcast(snap *service.Snapshot) {
	payload, err := json.Marshal(snap)
	if err != nil {
		h.logger.WithError(err).Error("Failed to marshal snapshot for broadcast")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, send := range h.clients {
		select {
		case send <- payload:
		default:
			close(send)
			delete(h.clients, id)
			h.logger.WithField("client_id", id).Warn("Dropped slow websocket client")
		}
	}
}

// HandleSubscribe upgrades the connection and streams snapshots until
// the client disconnects.
func (h *Hub) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}

	id := uuid.New().String()
	send := make(chan []byte, sendBuffer)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[id] = send
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.WithFields(logrus.Fields{"client_id": id, "clients": count}).Info("Websocket client connected")

	go h.writePump(id, conn, send)
	go h.readPump(id, conn)
}

func (h *Hub) writePump(id string, conn *websocket.Conn, send chan []byte) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case payload, ok := <-send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				h.remove(id)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.remove(id)
				return
			}
		}
	}
}

// readPump drains the connection so control frames are processed and
// detects client disconnects.
func (h *Hub) readPump(id string, conn *websocket.Conn) {
	conn.SetReadLimit(512)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.remove(id)
			return
		}
	}
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if send, ok := h.clients[id]; ok {
		close(send)
		delete(h.clients, id)
	}
}

// Close disconnects all clients and rejects new subscriptions.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id, send := range h.clients {
		close(send)
		delete(h.clients, id)
	}
}
