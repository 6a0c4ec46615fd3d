// Package realtime pushes notifications and messages to connected
// browser clients over websockets. Delivery is best effort; the
// stored records remain the source of truth.
package realtime

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"mahberhub/internal/contextutils"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 32
)

// Event is the frame pushed to clients
type Event struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
}

type client struct {
	userID int64
	conn   *websocket.Conn
	send   chan []byte
}

// Hub tracks connected clients per user ID
type Hub struct {
	mu       sync.RWMutex
	clients  map[int64]map[*client]struct{}
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewHub creates the websocket hub
func NewHub(allowedOrigins []string, logger *zap.Logger) *Hub {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return &Hub{
		clients: make(map[int64]map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed[origin] || allowed["*"]
			},
		},
		logger: logger,
	}
}

// ServeHTTP upgrades an authenticated request to a websocket. The
// auth middleware must run before this handler.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	identity, ok := contextutils.GetIdentity(r.Context())
	if !ok {
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{userID: identity.UserID, conn: conn, send: make(chan []byte, sendBuffer)}
	h.register(c)

	go c.writePump()
	go func() {
		c.readPump()
		h.unregister(c)
	}()
}

// Publish sends an event to every connection the user has open.
// Slow clients are skipped rather than blocking the caller.
func (h *Hub) Publish(userID int64, event string, payload interface{}) {
	data, err := json.Marshal(Event{Event: event, Payload: payload})
	if err != nil {
		h.logger.Error("failed to marshal realtime event", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[userID] {
		select {
		case c.send <- data:
		default:
		}
	}
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, conns := range h.clients {
		for c := range conns {
			close(c.send)
		}
	}
	h.clients = make(map[int64]map[*client]struct{})
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c.userID] == nil {
		h.clients[c.userID] = make(map[*client]struct{})
	}
	h.clients[c.userID][c] = struct{}{}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.clients[c.userID]; ok {
		if _, ok := conns[c]; ok {
			delete(conns, c)
			close(c.send)
			if len(conns) == 0 {
				delete(h.clients, c.userID)
			}
		}
	}
}

// readPump drains inbound frames so pings and close frames are
// processed. Clients do not send application data.
func (c *client) readPump() {
	defer c.conn.Close()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
