package broadcast

import (
	"sync"
	"time"

	"twopane/internal/models"

	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

// Conn is a websocket connection whose writes are serialised, so the
// reader loop and broadcasts can share it.
type Conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

// WriteJSON sends v as one JSON message.
func (c *Conn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteJSON(v)
}

// Hub manages broadcasting session snapshots to WebSocket and SSE clients.
type Hub struct {
	wsClients  map[string]map[*Conn]bool
	sseClients map[string]map[chan *models.Snapshot]bool
	mu         sync.RWMutex
}

// NewHub creates a new broadcast hub.
func NewHub() *Hub {
	return &Hub{
		wsClients:  make(map[string]map[*Conn]bool),
		sseClients: make(map[string]map[chan *models.Snapshot]bool),
	}
}

// RegisterWS adds a WebSocket connection for a session.
func (h *Hub) RegisterWS(sessionID string, ws *websocket.Conn) *Conn {
	c := &Conn{ws: ws}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.wsClients[sessionID] == nil {
		h.wsClients[sessionID] = make(map[*Conn]bool)
	}
	h.wsClients[sessionID][c] = true
	return c
}

// UnregisterWS removes a WebSocket connection for a session.
func (h *Hub) UnregisterWS(sessionID string, c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.wsClients[sessionID], c)
	if len(h.wsClients[sessionID]) == 0 {
		delete(h.wsClients, sessionID)
	}
}

// RegisterSSE adds an SSE channel for a session.
func (h *Hub) RegisterSSE(sessionID string, ch chan *models.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sseClients[sessionID] == nil {
		h.sseClients[sessionID] = make(map[chan *models.Snapshot]bool)
	}
	h.sseClients[sessionID][ch] = true
}

// UnregisterSSE removes an SSE channel for a session and closes it.
func (h *Hub) UnregisterSSE(sessionID string, ch chan *models.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.sseClients[sessionID][ch]; !ok {
		return
	}
	delete(h.sseClients[sessionID], ch)
	if len(h.sseClients[sessionID]) == 0 {
		delete(h.sseClients, sessionID)
	}
	close(ch)
}

// Subscribers returns how many clients listen on a session.
func (h *Hub) Subscribers(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.wsClients[sessionID]) + len(h.sseClients[sessionID])
}

// Broadcast sends a snapshot to all WebSocket and SSE clients of a session.
// Slow SSE clients miss the update rather than block the sender.
func (h *Hub) Broadcast(sessionID string, snap *models.Snapshot) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.wsClients[sessionID] {
		c.WriteJSON(snap)
	}
	for ch := range h.sseClients[sessionID] {
		select {
		case ch <- snap:
		default:
		}
	}
}
