// Package ws carries the realtime protocol: one handler upgrades HTTP
// requests into sessions, a per-room hub fans frames out, and clients pump
// bytes between the hub and the peer.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/samber/lo"

	"github.com/mcoot/netplay-go/internal/api/apierr"
	"github.com/mcoot/netplay-go/internal/dependencies/clock"
	"github.com/mcoot/netplay-go/internal/engine"
	"github.com/mcoot/netplay-go/internal/model"
	"github.com/mcoot/netplay-go/internal/protocol"
	"github.com/mcoot/netplay-go/internal/services/identity"
	"github.com/mcoot/netplay-go/internal/services/room"
)

// maxChatLength caps chat messages, in runes
const maxChatLength = 300

// Config holds configuration for the websocket handler
type Config struct {
	// AllowedOrigins are the Origin headers accepted on upgrade. "*" allows
	// everything; requests without an Origin header (non-browser clients)
	// are always accepted
	AllowedOrigins []string
	// HandshakeTimeout bounds identity resolution before the upgrade
	HandshakeTimeout time.Duration
}

// DefaultConfig returns default handler configuration
func DefaultConfig() Config {
	return Config{
		AllowedOrigins:   []string{"*"},
		HandshakeTimeout: 5 * time.Second,
	}
}

// Handler upgrades /ws requests and runs the session loop for each
// connection
type Handler struct {
	rooms    *room.Controller
	identity *identity.Service
	clock    clock.Clock
	logger   *slog.Logger

	upgrader         websocket.Upgrader
	handshakeTimeout time.Duration
}

// NewHandler creates the websocket handler
func NewHandler(
	rooms *room.Controller,
	identitySvc *identity.Service,
	clk clock.Clock,
	logger *slog.Logger,
	cfg Config,
) *Handler {
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = DefaultConfig().AllowedOrigins
	}
	if cfg.HandshakeTimeout == 0 {
		cfg.HandshakeTimeout = DefaultConfig().HandshakeTimeout
	}

	return &Handler{
		rooms:    rooms,
		identity: identitySvc,
		clock:    clk,
		logger:   logger.With(slog.String("component", "ws")),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(cfg.AllowedOrigins),
		},
		handshakeTimeout: cfg.HandshakeTimeout,
	}
}

// originChecker builds the upgrade origin check from the allow list
func originChecker(allowed []string) func(*http.Request) bool {
	allowAll := lo.Contains(allowed, "*")
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || allowAll {
			return true
		}
		return lo.Contains(allowed, origin)
	}
}

// ServeHTTP resolves who is connecting and where, upgrades the connection,
// and runs it until the peer goes away. Identity problems are refused as
// plain HTTP before the upgrade; seat conflicts are reported over the
// socket, which is the only place the client can still hear us
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	seat, err := model.ParseSeat(query.Get("seat"))
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.handshakeTimeout)
	defer cancel()

	id, err := h.identity.Resolve(ctx, query.Get("token"), query.Get("user"))
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	h.identity.TouchProfile(ctx, id, query.Get("user"), query.Get("country"))

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written its own HTTP error
		h.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	client := NewClient(conn, id, h.logger)
	go client.WritePump()

	h.serve(client, seat, query.Get("room"))
}

// serve attaches the client to its room and pumps inbound messages until the
// connection dies
func (h *Handler) serve(client *Client, seat model.Seat, roomQuery string) {
	rm, err := h.attach(client, seat, roomQuery)
	if err != nil {
		client.Send(protocol.Error(err.Error()))
		client.Close()
		return
	}

	logger := h.logger.With(
		slog.String("session_id", client.ID()),
		slog.String("room", string(rm.ID())),
	)
	logger.Info("session attached",
		slog.String("seat", string(rm.SeatOf(client))),
		slog.String("identity", client.Identity().String()),
	)

	rm.Broadcast(protocol.RoomsUpdate(h.rooms.List()))

	defer func() {
		h.detach(client, rm)
		logger.Info("session detached")
	}()

	client.ReadPump(func(message []byte) {
		h.handleMessage(client, rm, message)
	})
}

// attach resolves the room and claims the seat (or spectates). Losing a race
// with a room deletion re-resolves: the deleted room no longer exists, so
// the next lookup lands somewhere that does
func (h *Handler) attach(client *Client, seat model.Seat, roomQuery string) (*room.Room, error) {
	for {
		rm := h.rooms.GetOrDefault(roomQuery)

		var err error
		if seat.IsPlayable() {
			err = rm.TakeSeat(seat, client.Identity(), client)
		} else {
			err = rm.AttachSpectator(client)
		}
		if errors.Is(err, model.ErrRoomClosed) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return rm, nil
	}
}

// detach undoes attach and tells the room's remaining occupants about the
// occupancy change
func (h *Handler) detach(client *Client, rm *room.Room) {
	if seat := rm.SeatOf(client); seat.IsPlayable() {
		rm.ReleaseSeat(seat, client)
	} else {
		rm.DetachSpectator(client)
	}
	client.Close()
	rm.Broadcast(protocol.RoomsUpdate(h.rooms.List()))
}

// handleMessage dispatches one inbound frame. Nothing a client sends can
// kill its own connection: bad input earns an error frame, not a close
func (h *Handler) handleMessage(client *Client, rm *room.Room, message []byte) {
	var env protocol.Envelope
	if err := json.Unmarshal(message, &env); err != nil {
		client.Send(protocol.Error("malformed message"))
		return
	}

	switch env.Type {
	case protocol.TypeMove:
		var mv engine.Move
		if err := json.Unmarshal(env.Payload, &mv); err != nil {
			client.Send(protocol.Error("malformed move payload"))
			return
		}
		if err := rm.ApplyMove(client, mv); err != nil {
			client.Send(protocol.Error(err.Error()))
		}

	case protocol.TypeChat:
		var chat protocol.ChatPayload
		if err := json.Unmarshal(env.Payload, &chat); err != nil {
			client.Send(protocol.Error("malformed chat payload"))
			return
		}
		text := strings.TrimSpace(chat.Text)
		if text == "" {
			return
		}
		if runes := []rune(text); len(runes) > maxChatLength {
			text = string(runes[:maxChatLength])
		}
		rm.Broadcast(protocol.Chat(client.Identity().Key, rm.SeatOf(client), text, h.clock.Now()))

	case protocol.TypeRequestState:
		client.Send(protocol.State(rm.Snapshot()))

	case protocol.TypeResign:
		if _, err := rm.Resign(client); err != nil {
			client.Send(protocol.Error(err.Error()))
			return
		}
		rm.Broadcast(protocol.RoomsUpdate(h.rooms.List()))

	default:
		client.Send(protocol.Error(fmt.Sprintf("unknown message type %q", env.Type)))
	}
}
