package main

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// PipelineEvent is one lifecycle notification broadcast to connected
// clients while a verification runs
type PipelineEvent struct {
	RequestID string    `json:"request_id"`
	Stage     string    `json:"stage"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type wsClient struct {
	conn *websocket.Conn
	send chan PipelineEvent
}

// EventHub fans pipeline events out to WebSocket subscribers
type EventHub struct {
	upgrader websocket.Upgrader
	clients  map[*wsClient]bool
	mu       sync.Mutex
}

// NewEventHub creates an empty hub
func NewEventHub() *EventHub {
	return &EventHub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*wsClient]bool),
	}
}

// ServeWS upgrades the connection and registers the client
func (h *EventHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		Logger().Warning("WebSocket upgrade error: %v", err)
		return
	}

	client := &wsClient{
		conn: conn,
		send: make(chan PipelineEvent, 64),
	}
	h.addClient(client)

	go client.writePump()
	go client.readPump(h)
}

// Broadcast delivers an event to every connected client. Clients that
// cannot keep up are dropped.
func (h *EventHub) Broadcast(event PipelineEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		select {
		case client.send <- event:
		default:
			h.removeClientLocked(client)
		}
	}
}

func (h *EventHub) addClient(client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client] = true
	Logger().Debug("event client connected (%d total)", len(h.clients))
}

func (h *EventHub) removeClient(client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeClientLocked(client)
}

func (h *EventHub) removeClientLocked(client *wsClient) {
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
}

func (c *wsClient) writePump() {
	defer c.conn.Close()

	for event := range c.send {
		if err := c.conn.WriteJSON(event); err != nil {
			break
		}
	}
}

func (c *wsClient) readPump(h *EventHub) {
	defer func() {
		h.removeClient(c)
		c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}
