// Package grid is the reference engine bundled with the server: a square
// board where each seat starts with a line of pieces on its home edge,
// pieces step one square in any direction, captures are by displacement,
// and a seat with no pieces left is out. The rules are intentionally thin;
// the package exists to give the session layer a real game to coordinate.
package grid

import (
	"encoding/json"

	"github.com/mcoot/netplay-go/internal/engine"
	"github.com/mcoot/netplay-go/internal/model"
)

// BoardSize is the board dimension
const BoardSize = 12

// pieceKind is the only piece type the reference rules need
const pieceKind = "P"

type cell struct {
	Kind  string     `json:"kind"`
	Color model.Seat `json:"color"`
}

type moveRecord struct {
	Seat model.Seat `json:"seat"`
	SR   int        `json:"sr"`
	SC   int        `json:"sc"`
	ER   int        `json:"er"`
	EC   int        `json:"ec"`
}

// Engine holds one game in progress. Not safe for concurrent use; the
// owning room serializes access
type Engine struct {
	board [BoardSize][BoardSize]model.Seat // zero value means empty
	alive []model.Seat                     // rotation order, shrinks on elimination
	turn  model.Seat
	moves []moveRecord
}

// New creates an engine set up for a fresh game
func New() *Engine {
	e := &Engine{}
	e.setup()
	return e
}

// Factory returns a fresh game per room
func Factory() engine.Engine {
	return New()
}

var _ engine.Engine = (*Engine)(nil)

// setup places each seat's pieces along its home edge, corners left empty
func (e *Engine) setup() {
	e.board = [BoardSize][BoardSize]model.Seat{}
	for i := 1; i < BoardSize-1; i++ {
		e.board[BoardSize-1][i] = model.SeatA
		e.board[i][0] = model.SeatB
		e.board[0][i] = model.SeatC
		e.board[i][BoardSize-1] = model.SeatD
	}
	e.alive = model.PlayableSeats()
	e.turn = e.alive[0]
	e.moves = nil
}

// Bounds returns the board dimension
func (e *Engine) Bounds() int {
	return BoardSize
}

// Snapshot returns the current state
func (e *Engine) Snapshot() engine.Snapshot {
	return e.snapshot()
}

// Reset discards the game in progress and starts over
func (e *Engine) Reset() engine.Snapshot {
	e.setup()
	return e.snapshot()
}

// ApplyMove validates and applies one step move for the given seat
func (e *Engine) ApplyMove(seat model.Seat, mv engine.Move) (engine.Snapshot, error) {
	if !e.isAlive(seat) {
		return engine.Snapshot{}, engine.Reject("seat %s is not in the game", seat)
	}
	if e.turn != seat {
		return engine.Snapshot{}, engine.Reject("not your turn (current: %s)", e.turn)
	}
	if !inBounds(mv.SR, mv.SC) || !inBounds(mv.ER, mv.EC) {
		return engine.Snapshot{}, engine.Reject("move out of bounds")
	}
	if e.board[mv.SR][mv.SC] != seat {
		return engine.Snapshot{}, engine.Reject("no piece of yours at (%d,%d)", mv.SR, mv.SC)
	}
	dr, dc := mv.ER-mv.SR, mv.EC-mv.SC
	if dr == 0 && dc == 0 {
		return engine.Snapshot{}, engine.Reject("piece did not move")
	}
	if dr < -1 || dr > 1 || dc < -1 || dc > 1 {
		return engine.Snapshot{}, engine.Reject("pieces move one square at a time")
	}
	target := e.board[mv.ER][mv.EC]
	if target == seat {
		return engine.Snapshot{}, engine.Reject("destination holds your own piece")
	}

	e.board[mv.SR][mv.SC] = ""
	e.board[mv.ER][mv.EC] = seat
	e.moves = append(e.moves, moveRecord{Seat: seat, SR: mv.SR, SC: mv.SC, ER: mv.ER, EC: mv.EC})
	if target != "" && e.pieceCount(target) == 0 {
		e.eliminate(target)
	}
	e.advanceTurn()
	return e.snapshot(), nil
}

// Resign removes the seat's pieces and drops it from the rotation
func (e *Engine) Resign(seat model.Seat) (engine.Snapshot, error) {
	if !e.isAlive(seat) {
		return engine.Snapshot{}, engine.Reject("seat %s is not in the game", seat)
	}
	for r := 0; r < BoardSize; r++ {
		for c := 0; c < BoardSize; c++ {
			if e.board[r][c] == seat {
				e.board[r][c] = ""
			}
		}
	}
	wasTurn := e.turn == seat
	e.eliminate(seat)
	if wasTurn {
		e.advanceFrom(seat)
	}
	return e.snapshot(), nil
}

func (e *Engine) isAlive(seat model.Seat) bool {
	for _, s := range e.alive {
		if s == seat {
			return true
		}
	}
	return false
}

func (e *Engine) pieceCount(seat model.Seat) int {
	count := 0
	for r := 0; r < BoardSize; r++ {
		for c := 0; c < BoardSize; c++ {
			if e.board[r][c] == seat {
				count++
			}
		}
	}
	return count
}

func (e *Engine) eliminate(seat model.Seat) {
	kept := e.alive[:0]
	for _, s := range e.alive {
		if s != seat {
			kept = append(kept, s)
		}
	}
	e.alive = kept
}

// advanceTurn hands the turn to the next alive seat after the current one
func (e *Engine) advanceTurn() {
	e.advanceFrom(e.turn)
}

// advanceFrom picks the next alive seat strictly after the given one in
// rotation order. With one seat left the turn stays on the survivor
func (e *Engine) advanceFrom(seat model.Seat) {
	if len(e.alive) == 0 {
		return
	}
	order := model.PlayableSeats()
	start := 0
	for i, s := range order {
		if s == seat {
			start = i
			break
		}
	}
	for i := 1; i <= len(order); i++ {
		candidate := order[(start+i)%len(order)]
		if e.isAlive(candidate) {
			e.turn = candidate
			return
		}
	}
}

func (e *Engine) snapshot() engine.Snapshot {
	grid := make([][]*cell, BoardSize)
	for r := 0; r < BoardSize; r++ {
		grid[r] = make([]*cell, BoardSize)
		for c := 0; c < BoardSize; c++ {
			if seat := e.board[r][c]; seat != "" {
				grid[r][c] = &cell{Kind: pieceKind, Color: seat}
			}
		}
	}
	moves := e.moves
	if moves == nil {
		moves = []moveRecord{}
	}
	return engine.Snapshot{
		Turn:  e.turn,
		Board: rawJSON(grid),
		Alive: rawJSON(e.alive),
		Moves: rawJSON(moves),
	}
}

func inBounds(r, c int) bool {
	return r >= 0 && r < BoardSize && c >= 0 && c < BoardSize
}

// rawJSON marshals values whose shape cannot fail to encode
func rawJSON(v any) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}
