package ws

import (
	"log"
	"net/http"
	"sync"
	"time"

	"rust-tracker/internal/valuation"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

type update struct {
	Item     string             `json:"item"`
	Snapshot valuation.Snapshot `json:"snapshot"`
}

// client wraps a connection with a write lock. gorilla connections support
// at most one concurrent writer, and broadcasts can arrive from any
// publishing goroutine.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) writeJSON(msg update) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(msg)
}

// Hub pushes freshly published snapshots to connected browsers so the UI
// can settle without polling the recompute endpoint.
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// Serve upgrades the request and keeps the connection registered until the
// client goes away. Inbound messages are ignored.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	cl := &client{conn: conn}

	h.mu.Lock()
	h.clients[cl] = struct{}{}
	h.mu.Unlock()

	go func() {
		defer h.drop(cl)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	return nil
}

// BroadcastSnapshot sends the snapshot to every connected client. Writes to
// one connection are serialized through its client lock; clients that
// cannot keep up are dropped rather than blocking the publisher.
func (h *Hub) BroadcastSnapshot(itemID string, snap valuation.Snapshot) {
	msg := update{Item: itemID, Snapshot: snap}

	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		if err := c.writeJSON(msg); err != nil {
			log.Printf("ws write failed, dropping client: %v", err)
			h.drop(c)
		}
	}
}

func (h *Hub) drop(cl *client) {
	h.mu.Lock()
	_, ok := h.clients[cl]
	delete(h.clients, cl)
	h.mu.Unlock()
	if ok {
		_ = cl.conn.Close()
	}
}
