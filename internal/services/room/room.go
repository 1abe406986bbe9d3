package room

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/netplay-go/internal/dependencies/clock"
	"github.com/mcoot/netplay-go/internal/engine"
	"github.com/mcoot/netplay-go/internal/model"
	"github.com/mcoot/netplay-go/internal/protocol"
)

// Session is the connection surface a room coordinates. Implemented by the
// websocket client; fakes suffice in tests
type Session interface {
	// ID identifies the session for logging
	ID() string
	// Send enqueues a frame without blocking; false means the session is
	// closed or its buffer is full
	Send(message []byte) bool
	// Alive reports whether the session can still receive
	Alive() bool
	// Close tears the session down; safe to call more than once
	Close()
}

// Broadcaster fans frames out to a room's sessions. Broadcast is ordered
// and lossless with respect to other Broadcast calls; sessions that cannot
// keep up are evicted by the implementation rather than slowing the room
type Broadcaster interface {
	Register(s Session)
	Unregister(s Session)
	Broadcast(message []byte)
	Close()
}

// seatBinding records who holds a seat and over which connection
type seatBinding struct {
	identity model.Identity
	session  Session
}

// Room owns one game and the sessions attached to it. All state transitions
// run under a single writer lock, so the engine never sees concurrent calls
// and every client observes snapshots in the same order
type Room struct {
	id        model.RoomID
	label     string
	createdAt time.Time

	mu         sync.RWMutex
	eng        engine.Engine
	snapshot   engine.Snapshot
	seats      map[model.Seat]*seatBinding
	spectators map[Session]struct{}
	moveCount  int
	closed     bool

	hub    Broadcaster
	clock  clock.Clock
	logger *slog.Logger
}

// NewRoom creates a room around a fresh engine. The hub is assumed to be
// running already
func NewRoom(id model.RoomID, label string, eng engine.Engine, hub Broadcaster, clk clock.Clock, logger *slog.Logger) *Room {
	return &Room{
		id:         id,
		label:      label,
		createdAt:  clk.Now(),
		eng:        eng,
		snapshot:   eng.Snapshot(),
		seats:      make(map[model.Seat]*seatBinding),
		spectators: make(map[Session]struct{}),
		hub:        hub,
		clock:      clk,
		logger:     logger.With(slog.String("room", string(id))),
	}
}

// ID returns the room's identifier
func (r *Room) ID() model.RoomID {
	return r.id
}

// Label returns the room's display label
func (r *Room) Label() string {
	return r.label
}

// TakeSeat claims a seat for a session. A seat held by a live session is
// never reassigned, not even to the same identity. A seat whose holder has
// died may be reclaimed by the same identity; for guests that match is by
// self-reported name and is deliberately best-effort. On success the session
// joins the broadcast set and immediately receives the current snapshot
func (r *Room) TakeSeat(seat model.Seat, id model.Identity, s Session) error {
	if !seat.IsPlayable() {
		return model.ErrInvalidSeat
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return model.ErrRoomClosed
	}

	if binding, ok := r.seats[seat]; ok {
		if binding.session.Alive() {
			return model.ErrSeatTaken
		}
		if binding.identity != id {
			return model.ErrSeatTaken
		}
		// Reclaiming own seat over a dead connection
		r.hub.Unregister(binding.session)
		binding.session.Close()
	}

	r.seats[seat] = &seatBinding{identity: id, session: s}
	r.hub.Register(s)
	s.Send(protocol.State(r.snapshot))

	r.logger.Info("seat taken",
		slog.String("seat", string(seat)),
		slog.String("identity", id.String()),
		slog.String("session_id", s.ID()),
	)
	return nil
}

// ReleaseSeat frees a seat if (and only if) the given session holds it.
// Releasing a seat one doesn't hold is a no-op, which makes disconnect
// cleanup idempotent
func (r *Room) ReleaseSeat(seat model.Seat, s Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	binding, ok := r.seats[seat]
	if !ok || binding.session != s {
		return
	}

	delete(r.seats, seat)
	r.hub.Unregister(s)

	r.logger.Info("seat released",
		slog.String("seat", string(seat)),
		slog.String("session_id", s.ID()),
	)

	r.resetIfEmptyLocked()
}

// AttachSpectator adds a watch-only session. Spectators always fit; they
// join the broadcast set and immediately receive the current snapshot
func (r *Room) AttachSpectator(s Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return model.ErrRoomClosed
	}

	r.spectators[s] = struct{}{}
	r.hub.Register(s)
	s.Send(protocol.State(r.snapshot))

	r.logger.Info("spectator attached", slog.String("session_id", s.ID()))
	return nil
}

// DetachSpectator removes a spectator; unknown sessions are a no-op
func (r *Room) DetachSpectator(s Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.spectators[s]; !ok {
		return
	}

	delete(r.spectators, s)
	r.hub.Unregister(s)

	r.logger.Info("spectator detached", slog.String("session_id", s.ID()))

	r.resetIfEmptyLocked()
}

// ApplyMove runs a move for the session's seat: bounds, then turn order
// against the cached snapshot, then the engine. Success updates the cache
// and broadcasts the new state before the lock is released, so no later
// operation can reorder it. Failures leave state untouched and are only
// reported to the caller
func (r *Room) ApplyMove(s Session, mv engine.Move) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return model.ErrRoomClosed
	}

	seat, ok := r.seatOfLocked(s)
	if !ok {
		return model.ErrNotSeated
	}

	if dim := r.eng.Bounds(); !inBounds(mv, dim) {
		return engine.Reject("move out of bounds (board is %dx%d)", dim, dim)
	}

	if r.snapshot.Turn != seat {
		return fmt.Errorf("%w (current: %s)", model.ErrNotYourTurn, r.snapshot.Turn)
	}

	snap, err := r.eng.ApplyMove(seat, mv)
	if err != nil {
		return err
	}

	r.snapshot = snap
	r.moveCount++
	r.hub.Broadcast(protocol.State(snap))

	r.logger.Debug("move applied",
		slog.String("seat", string(seat)),
		slog.Int("moves_played", r.moveCount),
	)
	return nil
}

// Resign eliminates the session's seat from the game and turns the session
// into a spectator. The new state is broadcast; the resigner additionally
// gets a resigned acknowledgement naming the seat it gave up
func (r *Room) Resign(s Session) (model.Seat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return "", model.ErrRoomClosed
	}

	seat, ok := r.seatOfLocked(s)
	if !ok {
		return "", model.ErrNotSeated
	}

	snap, err := r.eng.Resign(seat)
	if err != nil {
		return "", err
	}

	delete(r.seats, seat)
	r.spectators[s] = struct{}{}

	r.snapshot = snap
	r.hub.Broadcast(protocol.State(snap))
	s.Send(protocol.Resigned(seat))

	r.logger.Info("seat resigned",
		slog.String("seat", string(seat)),
		slog.String("session_id", s.ID()),
	)
	return seat, nil
}

// Reset starts a fresh game, keeping everyone attached
func (r *Room) Reset() engine.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.snapshot = r.eng.Reset()
	r.moveCount = 0
	r.hub.Broadcast(protocol.State(r.snapshot))

	r.logger.Info("room reset")
	return r.snapshot
}

// Snapshot returns the cached game state
func (r *Room) Snapshot() engine.Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot
}

// SeatOf returns the seat a session currently holds, or SeatSpectator
func (r *Room) SeatOf(s Session) model.Seat {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if seat, ok := r.seatOfLocked(s); ok {
		return seat
	}
	return model.SeatSpectator
}

// Broadcast fans an already-encoded frame out to every attached session
func (r *Room) Broadcast(message []byte) {
	r.hub.Broadcast(message)
}

// Occupied reports whether any live session is seated or spectating
func (r *Room) Occupied() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.spectators) > 0 {
		return true
	}
	for _, binding := range r.seats {
		if binding.session.Alive() {
			return true
		}
	}
	return false
}

// Summary builds the public occupancy view. Read-only: it never blocks
// writers in other rooms and only briefly blocks writers in this one
func (r *Room) Summary() model.RoomSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	taken := make([]model.Seat, 0, len(r.seats))
	available := make([]model.Seat, 0, 4)
	for _, seat := range model.PlayableSeats() {
		if binding, ok := r.seats[seat]; ok && binding.session.Alive() {
			taken = append(taken, seat)
		} else {
			available = append(available, seat)
		}
	}

	return model.RoomSummary{
		ID:          r.id,
		Label:       r.label,
		CreatedAt:   r.createdAt,
		Taken:       taken,
		Available:   available,
		Spectators:  len(r.spectators),
		Clients:     len(taken) + len(r.spectators),
		MovesPlayed: r.moveCount,
		Full:        len(available) == 0,
	}
}

// Close marks the room dead and tears down its hub. Attaches that raced the
// close observe ErrRoomClosed and re-resolve their room
func (r *Room) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.closed = true
	r.hub.Close()

	r.logger.Info("room closed")
}

// seatOfLocked finds the seat a session holds. Caller holds the lock
func (r *Room) seatOfLocked(s Session) (model.Seat, bool) {
	for seat, binding := range r.seats {
		if binding.session == s {
			return seat, true
		}
	}
	return "", false
}

// resetIfEmptyLocked starts a fresh game once the last session leaves, so
// an abandoned room doesn't greet its next visitors with a stale board.
// Caller holds the lock
func (r *Room) resetIfEmptyLocked() {
	if len(r.seats) > 0 || len(r.spectators) > 0 {
		return
	}
	r.snapshot = r.eng.Reset()
	r.moveCount = 0
	r.logger.Info("room emptied, game reset")
}

// inBounds checks that every coordinate of the move is on the board
func inBounds(mv engine.Move, dim int) bool {
	for _, c := range []int{mv.SR, mv.SC, mv.ER, mv.EC} {
		if c < 0 || c >= dim {
			return false
		}
	}
	return true
}
