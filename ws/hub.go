// ws/hub.go
package ws

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// Event tells clients that the collection stored under Key changed and
// should be fetched again.
type Event struct {
	Type string    `json:"type"`
	Key  string    `json:"key"`
	At   time.Time `json:"at"`
}

const EventChanged = "changed"

type Hub struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan Event
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
	mu         sync.RWMutex
	log        zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan Event, 256),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		log:        log.With().Str("component", "ws").Logger(),
	}
}

// Run owns the client set until ctx is cancelled, then closes every
// connection.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for conn := range h.clients {
				conn.Close()
				delete(h.clients, conn)
			}
			h.mu.Unlock()
			return

		case conn := <-h.register:
			h.mu.Lock()
			h.clients[conn] = true
			h.mu.Unlock()
			h.log.Debug().Int("clients", h.Count()).Msg("client connected")

		case conn := <-h.unregister:
			h.drop(conn)

		case ev := <-h.broadcast:
			var failed []*websocket.Conn
			h.mu.RLock()
			for conn := range h.clients {
				if err := conn.WriteJSON(ev); err != nil {
					h.log.Warn().Err(err).Msg("websocket write error")
					failed = append(failed, conn)
				}
			}
			h.mu.RUnlock()
			for _, conn := range failed {
				h.drop(conn)
			}
		}
	}
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
}

// Broadcast queues a change event. Events are dropped when the queue is
// full; clients resynchronise on the next one.
func (h *Hub) Broadcast(key string) {
	select {
	case h.broadcast <- Event{Type: EventChanged, Key: key, At: time.Now().UTC()}:
	default:
		h.log.Warn().Str("key", key).Msg("broadcast queue full, event dropped")
	}
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleConnection serves one client until it disconnects. Incoming
// messages are read only to detect the close.
func (h *Hub) HandleConnection(conn *websocket.Conn) {
	select {
	case h.register <- conn:
	case <-h.done:
		return
	}
	defer func() {
		select {
		case h.unregister <- conn:
		case <-h.done:
		}
	}()

	for {
		var msg map[string]interface{}
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		if msgType, ok := msg["type"].(string); ok && msgType == "subscribe" {
			h.log.Debug().Msg("client subscribed")
		}
	}
}

// Upgrade rejects plain HTTP requests to the WebSocket route.
func Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

func (h *Hub) Handler() fiber.Handler {
	return websocket.New(h.HandleConnection)
}
