package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 4096
	sendBuffer     = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // origins are checked by middleware.WebSocketCORSCheck
	},
}

// Client represents a connected WebSocket client driving one session
type Client struct {
	conn       *websocket.Conn
	sessionID  string
	send       chan []byte
	lastSample time.Time
	replaced   atomic.Bool // set once a newer connection took over the session
}

// Hub maintains the set of active clients, at most one per session
type Hub struct {
	clients    map[string]*Client // sessionID -> Client
	unregister chan *Client
	mu         sync.RWMutex
}

// GameHub is the single hub for all sessions.
var GameHub *Hub

func init() {
	GameHub = NewHub()
	go GameHub.Run()
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		unregister: make(chan *Client),
	}
}

// Register adds a client, closing any older connection for the same
// session. It completes before returning so replies can be routed at once.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if old, exists := h.clients[client.sessionID]; exists && old != client {
		log.Printf("[WS] Session %s reconnecting - closing old connection", client.sessionID)
		old.replaced.Store(true)
		if err := old.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "replaced by new connection"), time.Now().Add(time.Second)); err != nil {
			log.Printf("[WS] Error writing close control to old client %s: %v", old.sessionID, err)
		}
		old.conn.Close()
		close(old.send)
	}
	h.clients[client.sessionID] = client
	log.Printf("[WS] Session %s connected", client.sessionID)
}

// Run processes unregistrations until the process exits.
func (h *Hub) Run() {
	for client := range h.unregister {
		h.mu.Lock()
		if cur, ok := h.clients[client.sessionID]; ok && cur == client {
			delete(h.clients, client.sessionID)
			close(client.send)
			log.Printf("[WS] Session %s disconnected", client.sessionID)
		}
		h.mu.Unlock()
	}
}

// Broadcast sends a message to every connected client
func (h *Hub) Broadcast(message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("[WS] Error marshaling message: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients {
		select {
		case client.send <- data:
		default:
			log.Printf("[WS] Send buffer full for session %s, dropping broadcast", client.sessionID)
		}
	}
}

// SendToSession sends a message to the client driving a session
func (h *Hub) SendToSession(sessionID string, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("[WS] Error marshaling message: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if client, exists := h.clients[sessionID]; exists {
		select {
		case client.send <- data:
		default:
			log.Printf("[WS] SendToSession dropped message for %s (buffer full)", sessionID)
		}
	}
}

// ConnectedCount returns the number of connected clients.
func (h *Hub) ConnectedCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// writePump writes messages to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Channel closed: connection replaced or cleaned up.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[WS] Write error for session %s: %v", c.sessionID, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[WS] Ping error for session %s: %v", c.sessionID, err)
				return
			}
		}
	}
}
