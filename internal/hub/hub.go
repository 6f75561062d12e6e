// Package hub is the transport layer between websocket connections and the
// coordination core. It owns the live connection set; all game semantics
// live in internal/game.
package hub

import (
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/myrjola/whodunit/internal/game"
)

type Hub struct {
	logger  *slog.Logger
	service *game.Service

	mu      sync.Mutex
	clients map[string]*WSClient
}

func NewHub(logger *slog.Logger, service *game.Service) *Hub {
	return &Hub{
		logger:  logger.With("source", "Hub"),
		service: service,
		clients: make(map[string]*WSClient),
	}
}

// ServeConn runs the pumps for one upgraded websocket connection and blocks
// until the connection closes. identity is the verified subject from the
// bearer token, or the session-scoped anonymous id.
func (h *Hub) ServeConn(conn *websocket.Conn, identity string) {
	client := newWSClient(h, conn, identity)
	h.mu.Lock()
	h.clients[client.ID()] = client
	h.mu.Unlock()
	h.logger.Debug("connection registered", "connection", client.ID())
	client.Run()
}

// unregister drops the client and releases its game state. Called exactly
// once from the read pump on the way out.
func (h *Hub) unregister(c *WSClient) {
	h.mu.Lock()
	delete(h.clients, c.ID())
	h.mu.Unlock()
	h.service.Disconnect(c)
	close(c.send)
	h.logger.Debug("connection unregistered", "connection", c.ID())
}

// ClientCount reports the number of live connections, for diagnostics.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
