// Package eventhub gives the Controller's event emitter a concrete
// transport: a small websocket broadcaster operator UIs can subscribe to.
package eventhub

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Kind labels the lifecycle events the Controller emits.
type Kind string

const (
	KindBringUpComplete  Kind = "bring_up_complete"
	KindCameraAdded      Kind = "camera_added"
	KindCameraRemoved    Kind = "camera_removed"
	KindTransportClosed  Kind = "transport_closed"
	KindCommandTimedOut  Kind = "command_timed_out"
	KindNetChange        Kind = "net_change"
)

// Event is one occurrence pushed to every subscribed client.
type Event struct {
	Kind    Kind   `json:"kind"`
	Address int    `json:"address,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// Hub fans Events out to any number of websocket subscribers. When a
// client's send buffer is full, the event is dropped for that client (which
// stays subscribed) rather than allowed to block the broadcaster: one slow
// UI must never stall delivery to every other peer.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*client]struct{}
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

type client struct {
	conn *websocket.Conn
	send chan Event
}

// New creates an empty Hub.
func New(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger.With(slog.String("component", "eventhub")),
	}
}

// Publish fans out ev to every connected subscriber.
func (h *Hub) Publish(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- ev:
		default:
			h.logger.Warn("subscriber send buffer full, dropping event")
		}
	}
}

// ServeWS upgrades the request to a websocket and registers it as a
// subscriber until the connection closes.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", slog.Any("error", err))
		return
	}
	c := &client{conn: conn, send: make(chan Event, 32)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go h.writePump(c)
	go h.readPump(c)
}

func (h *Hub) writePump(c *client) {
	defer c.conn.Close()
	for ev := range c.send {
		if err := c.conn.WriteJSON(ev); err != nil {
			return
		}
	}
}

// readPump drains (and discards) client frames solely to detect the peer
// closing the connection, at which point the client is unregistered.
func (h *Hub) readPump(c *client) {
	defer h.unregister(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}
