package wshub

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	sendQueueDepth = 32
)

// Hub fans vital events and alerts out to websocket subscribers grouped by
// patient. Broadcasts are best effort: a subscriber whose send queue is full
// is dropped rather than allowed to stall the rest.
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]map[*client]struct{}
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// client's send channel is written by broadcasters and drained only by
// writePump. Nobody closes send; detach closes done instead, so a broadcaster
// holding a stale snapshot can never send on a closed channel.
type client struct {
	patientID string
	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients: make(map[string]map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Subscribe upgrades the request and streams broadcasts for one patient until
// the peer disconnects.
func (h *Hub) Subscribe(w http.ResponseWriter, r *http.Request, patientID string) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &client{
		patientID: patientID,
		conn:      conn,
		send:      make(chan []byte, sendQueueDepth),
		done:      make(chan struct{}),
	}

	h.mu.Lock()
	if h.clients[patientID] == nil {
		h.clients[patientID] = make(map[*client]struct{})
	}
	h.clients[patientID][c] = struct{}{}
	h.mu.Unlock()

	h.logger.Info("websocket subscriber attached",
		"event", "ws_subscriber_attached",
		"module", "realtime/streaming-service",
		"layer", "transport",
		"patient_id", patientID,
	)

	go c.writePump(h)
	go c.readPump(h)
	return nil
}

// Broadcast queues a payload for every subscriber of the patient. Clients
// whose queue is full get detached.
func (h *Hub) Broadcast(patientID string, payload []byte) {
	h.mu.RLock()
	subscribers := make([]*client, 0, len(h.clients[patientID]))
	for c := range h.clients[patientID] {
		subscribers = append(subscribers, c)
	}
	h.mu.RUnlock()

	for _, c := range subscribers {
		select {
		case <-c.done:
		case c.send <- payload:
		default:
			h.logger.Warn("dropping slow websocket subscriber",
				"event", "ws_subscriber_dropped",
				"module", "realtime/streaming-service",
				"layer", "transport",
				"patient_id", patientID,
			)
			h.detach(c)
		}
	}
}

// SubscriberCount reports the number of live subscribers for one patient.
func (h *Hub) SubscriberCount(patientID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[patientID])
}

// detach removes the client from the fan-out set and signals writePump to
// close the connection. Idempotent; the send channel stays open.
func (h *Hub) detach(c *client) {
	h.mu.Lock()
	if subscribers, ok := h.clients[c.patientID]; ok {
		if _, attached := subscribers[c]; attached {
			delete(subscribers, c)
			close(c.done)
			if len(subscribers) == 0 {
				delete(h.clients, c.patientID)
			}
		}
	}
	h.mu.Unlock()
}

func (c *client) writePump(h *Hub) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case payload := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				h.detach(c)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.detach(c)
				return
			}
		}
	}
}

func (c *client) readPump(h *Hub) {
	defer func() {
		h.detach(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
