package ws

import (
	"log/slog"
	"sync"

	"github.com/mcoot/netplay-go/internal/model"
	"github.com/mcoot/netplay-go/internal/services/room"
)

// Hub fans frames out to every session attached to one room. All bookkeeping
// happens on the Run goroutine. The handoff channels are unbuffered: a
// Broadcast call does not return until the loop has taken the frame, so two
// broadcasts from the same caller can never arrive out of order.
type Hub struct {
	roomID  model.RoomID
	clients map[room.Session]bool
	mu      sync.RWMutex
	logger  *slog.Logger

	register   chan room.Session
	unregister chan room.Session
	broadcast  chan []byte
	done       chan struct{}
	closeOnce  sync.Once
}

var _ room.Broadcaster = (*Hub)(nil)

// NewHub creates a hub for a room. Run must be started on its own goroutine
func NewHub(roomID model.RoomID, logger *slog.Logger) *Hub {
	return &Hub{
		roomID:  roomID,
		clients: make(map[room.Session]bool),
		logger: logger.With(
			slog.String("component", "ws"),
			slog.String("room", string(roomID)),
		),
		register:   make(chan room.Session),
		unregister: make(chan room.Session),
		broadcast:  make(chan []byte),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	h.logger.Info("hub started")
	for {
		select {
		case s := <-h.register:
			h.mu.Lock()
			h.clients[s] = true
			clientCount := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("session registered",
				slog.String("session_id", s.ID()),
				slog.Int("total_sessions", clientCount))

		case s := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[s]; ok {
				delete(h.clients, s)
				clientCount := len(h.clients)
				h.mu.Unlock()
				h.logger.Info("session unregistered",
					slog.String("session_id", s.ID()),
					slog.Int("total_sessions", clientCount))
			} else {
				h.mu.Unlock()
			}

		case message := <-h.broadcast:
			h.mu.Lock()
			for s := range h.clients {
				if !s.Send(message) {
					// Dead or too slow to keep up; cut it loose rather
					// than stall the whole room
					delete(h.clients, s)
					s.Close()
					h.logger.Warn("session evicted - send buffer full",
						slog.String("session_id", s.ID()))
				}
			}
			h.mu.Unlock()

		case <-h.done:
			h.mu.Lock()
			clientCount := len(h.clients)
			for s := range h.clients {
				s.Close()
				delete(h.clients, s)
			}
			h.mu.Unlock()
			h.logger.Info("hub stopped", slog.Int("disconnected_sessions", clientCount))
			return
		}
	}
}

// Register adds a session to the broadcast set
func (h *Hub) Register(s room.Session) {
	select {
	case h.register <- s:
	case <-h.done:
	}
}

// Unregister removes a session from the broadcast set
func (h *Hub) Unregister(s room.Session) {
	select {
	case h.unregister <- s:
	case <-h.done:
	}
}

// Broadcast hands a frame to the loop for fanout. Blocks until the loop
// takes it; a closed hub discards it
func (h *Hub) Broadcast(message []byte) {
	select {
	case h.broadcast <- message:
	case <-h.done:
	}
}

// Close stops the loop and drops every session. Safe to call more than once
func (h *Hub) Close() {
	h.closeOnce.Do(func() {
		close(h.done)
	})
}

// ClientCount returns the number of attached sessions
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
