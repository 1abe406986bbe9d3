// Package engine defines the boundary between the session server and a
// pluggable game engine. The server treats game state as opaque: moves go
// in, snapshots come out, and nothing but the turn marker is interpreted.
package engine

import (
	"encoding/json"
	"fmt"

	"github.com/mcoot/netplay-go/internal/model"
)

// Move is a piece movement in board coordinates (start row/col, end row/col)
type Move struct {
	SR int `json:"sr"`
	SC int `json:"sc"`
	ER int `json:"er"`
	EC int `json:"ec"`
}

// Snapshot is the complete game state after an operation. Board, Alive and
// Moves are engine-defined JSON carried through to clients untouched; Turn
// is the only field the server reads
type Snapshot struct {
	Turn  model.Seat      `json:"turn"`
	Board json.RawMessage `json:"board"`
	Alive json.RawMessage `json:"alive"`
	Moves json.RawMessage `json:"moves"`
}

// Engine is a single game instance. Implementations need no internal
// locking: the owning room serializes every call
type Engine interface {
	// ApplyMove applies a move for the given seat. A rejected move returns
	// a *RejectionError and leaves state unchanged
	ApplyMove(seat model.Seat, mv Move) (Snapshot, error)

	// Snapshot returns the current state without modifying it
	Snapshot() Snapshot

	// Reset discards the game in progress and returns the initial state
	Reset() Snapshot

	// Resign eliminates the seat from the game
	Resign(seat model.Seat) (Snapshot, error)

	// Bounds returns the board dimension for coordinate validation
	Bounds() int
}

// Factory creates a fresh engine for a new room
type Factory func() Engine

// RejectionError is a move or resignation refused by the game rules. The
// reason is relayed to the submitting player verbatim
type RejectionError struct {
	Reason string
}

func (e *RejectionError) Error() string {
	return e.Reason
}

func (e *RejectionError) Unwrap() error {
	return model.ErrIllegalMove
}

// Reject builds a rejection with a formatted reason
func Reject(format string, args ...any) *RejectionError {
	return &RejectionError{Reason: fmt.Sprintf(format, args...)}
}
