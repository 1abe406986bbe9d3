package ws

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mcoot/netplay-go/internal/model"
	"github.com/mcoot/netplay-go/internal/services/room"
)

const (
	// writeWait is how long a single frame write may take
	writeWait = 10 * time.Second

	// pongWait is how long the connection may go silent before the read
	// side gives up; pings go out at pingPeriod to keep healthy peers
	// inside the window
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize bounds inbound frames; moves and chat are tiny
	maxMessageSize = 4096

	// sendBufferSize is the per-client outbound queue. A client that lets
	// it fill up is evicted rather than allowed to stall broadcasts
	sendBufferSize = 256
)

// Client is one websocket connection. The room and hub only see it through
// the room.Session surface.
//
// The send channel is never closed: Close flips the closed flag and signals
// done, and the write pump drains what was already queued before dropping
// the connection. Senders that lose the race with Close write into a buffer
// nobody reads, which is harmless.
type Client struct {
	id       string
	identity model.Identity

	conn   *websocket.Conn
	send   chan []byte
	logger *slog.Logger

	closed    atomic.Bool
	done      chan struct{}
	closeOnce sync.Once
}

var _ room.Session = (*Client)(nil)

// NewClient wraps an upgraded connection
func NewClient(conn *websocket.Conn, identity model.Identity, logger *slog.Logger) *Client {
	id := uuid.NewString()
	return &Client{
		id:       id,
		identity: identity,
		conn:     conn,
		send:     make(chan []byte, sendBufferSize),
		logger: logger.With(
			slog.String("session_id", id),
			slog.String("identity", identity.String()),
		),
		done: make(chan struct{}),
	}
}

// ID returns the session id
func (c *Client) ID() string {
	return c.id
}

// Identity returns who this connection resolved to
func (c *Client) Identity() model.Identity {
	return c.identity
}

// Send queues a frame for delivery. Never blocks: a closed client or a full
// buffer reports false and the caller evicts
func (c *Client) Send(message []byte) bool {
	if c.closed.Load() {
		return false
	}
	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

// Alive reports whether the connection is still usable
func (c *Client) Alive() bool {
	return !c.closed.Load()
}

// Close tears the connection down. Safe from any goroutine, any number of
// times
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		close(c.done)
		_ = c.conn.Close()
	})
}

// ReadPump consumes inbound frames until the connection dies, handing each
// to handle. It owns the read side: size limit, deadlines, pong handling.
// Runs on the connection's serving goroutine
func (c *Client) ReadPump(handle func(message []byte)) {
	defer c.Close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure) {
				c.logger.Warn("websocket read failed", slog.String("error", err.Error()))
			}
			return
		}
		handle(message)
	}
}

// WritePump drains the send queue onto the wire and keeps the connection
// alive with pings. Runs on its own goroutine; exits when the client closes
// or a write fails
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			// Flush what was already queued, then say goodbye
			for {
				select {
				case message := <-c.send:
					_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
					if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
						return
					}
				default:
					_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
					_ = c.conn.WriteMessage(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
					return
				}
			}
		}
	}
}
