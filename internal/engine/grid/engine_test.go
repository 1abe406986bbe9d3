package grid

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/netplay-go/internal/engine"
	"github.com/mcoot/netplay-go/internal/model"
)

type EngineSuite struct {
	suite.Suite
	engine *Engine
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.engine = New()
}

func (s *EngineSuite) decodeBoard(snap engine.Snapshot) [][]*cell {
	var grid [][]*cell
	s.Require().NoError(json.Unmarshal(snap.Board, &grid))
	return grid
}

func (s *EngineSuite) decodeAlive(snap engine.Snapshot) []model.Seat {
	var alive []model.Seat
	s.Require().NoError(json.Unmarshal(snap.Alive, &alive))
	return alive
}

func (s *EngineSuite) decodeMoves(snap engine.Snapshot) []moveRecord {
	var moves []moveRecord
	s.Require().NoError(json.Unmarshal(snap.Moves, &moves))
	return moves
}

// Setup tests

func (s *EngineSuite) TestInitialSnapshot() {
	snap := s.engine.Snapshot()

	s.Equal(model.SeatA, snap.Turn)
	s.Equal(model.PlayableSeats(), s.decodeAlive(snap))
	s.Empty(s.decodeMoves(snap))

	grid := s.decodeBoard(snap)
	s.Require().Len(grid, BoardSize)
	counts := map[model.Seat]int{}
	for _, row := range grid {
		s.Require().Len(row, BoardSize)
		for _, piece := range row {
			if piece != nil {
				counts[piece.Color]++
				s.Equal(pieceKind, piece.Kind)
			}
		}
	}
	for _, seat := range model.PlayableSeats() {
		s.Equal(BoardSize-2, counts[seat])
	}
}

func (s *EngineSuite) TestCornersStartEmpty() {
	grid := s.decodeBoard(s.engine.Snapshot())
	last := BoardSize - 1
	s.Nil(grid[0][0])
	s.Nil(grid[0][last])
	s.Nil(grid[last][0])
	s.Nil(grid[last][last])
}

func (s *EngineSuite) TestBounds() {
	s.Equal(BoardSize, s.engine.Bounds())
}

// ApplyMove tests

func (s *EngineSuite) TestApplyMoveSucceeds() {
	snap, err := s.engine.ApplyMove(model.SeatA, engine.Move{SR: 11, SC: 1, ER: 10, EC: 1})
	s.Require().NoError(err)

	s.Equal(model.SeatB, snap.Turn)
	grid := s.decodeBoard(snap)
	s.Nil(grid[11][1])
	s.Require().NotNil(grid[10][1])
	s.Equal(model.SeatA, grid[10][1].Color)

	moves := s.decodeMoves(snap)
	s.Require().Len(moves, 1)
	s.Equal(moveRecord{Seat: model.SeatA, SR: 11, SC: 1, ER: 10, EC: 1}, moves[0])
}

func (s *EngineSuite) TestApplyMoveRotatesThroughSeats() {
	_, err := s.engine.ApplyMove(model.SeatA, engine.Move{SR: 11, SC: 1, ER: 10, EC: 1})
	s.Require().NoError(err)
	snap, err := s.engine.ApplyMove(model.SeatB, engine.Move{SR: 1, SC: 0, ER: 1, EC: 1})
	s.Require().NoError(err)
	s.Equal(model.SeatC, snap.Turn)
	snap, err = s.engine.ApplyMove(model.SeatC, engine.Move{SR: 0, SC: 2, ER: 1, EC: 2})
	s.Require().NoError(err)
	s.Equal(model.SeatD, snap.Turn)
	snap, err = s.engine.ApplyMove(model.SeatD, engine.Move{SR: 1, SC: 11, ER: 1, EC: 10})
	s.Require().NoError(err)
	s.Equal(model.SeatA, snap.Turn)
}

func (s *EngineSuite) TestApplyMoveOutOfTurn() {
	_, err := s.engine.ApplyMove(model.SeatB, engine.Move{SR: 1, SC: 0, ER: 1, EC: 1})

	var rej *engine.RejectionError
	s.Require().ErrorAs(err, &rej)
	s.Equal("not your turn (current: SEAT_A)", rej.Reason)
	s.ErrorIs(err, model.ErrIllegalMove)
}

func (s *EngineSuite) TestApplyMoveNotYourPiece() {
	_, err := s.engine.ApplyMove(model.SeatA, engine.Move{SR: 0, SC: 1, ER: 1, EC: 1})
	s.ErrorContains(err, "no piece of yours")
}

func (s *EngineSuite) TestApplyMoveEmptySource() {
	_, err := s.engine.ApplyMove(model.SeatA, engine.Move{SR: 5, SC: 5, ER: 5, EC: 6})
	s.ErrorContains(err, "no piece of yours")
}

func (s *EngineSuite) TestApplyMoveTooFar() {
	_, err := s.engine.ApplyMove(model.SeatA, engine.Move{SR: 11, SC: 1, ER: 9, EC: 1})
	s.ErrorContains(err, "one square")
}

func (s *EngineSuite) TestApplyMoveZeroDistance() {
	_, err := s.engine.ApplyMove(model.SeatA, engine.Move{SR: 11, SC: 1, ER: 11, EC: 1})
	s.ErrorContains(err, "did not move")
}

func (s *EngineSuite) TestApplyMoveOutOfBounds() {
	_, err := s.engine.ApplyMove(model.SeatA, engine.Move{SR: 11, SC: 1, ER: 12, EC: 1})
	s.ErrorContains(err, "out of bounds")

	_, err = s.engine.ApplyMove(model.SeatA, engine.Move{SR: -1, SC: 0, ER: 0, EC: 0})
	s.ErrorContains(err, "out of bounds")
}

func (s *EngineSuite) TestApplyMoveOntoOwnPiece() {
	_, err := s.engine.ApplyMove(model.SeatA, engine.Move{SR: 11, SC: 1, ER: 11, EC: 2})
	s.ErrorContains(err, "your own piece")
}

func (s *EngineSuite) TestRejectionLeavesStateUnchanged() {
	before := s.engine.Snapshot()
	_, err := s.engine.ApplyMove(model.SeatA, engine.Move{SR: 11, SC: 1, ER: 9, EC: 1})
	s.Require().Error(err)

	after := s.engine.Snapshot()
	s.Equal(before.Turn, after.Turn)
	s.JSONEq(string(before.Board), string(after.Board))
	s.JSONEq(string(before.Moves), string(after.Moves))
}

// Capture and elimination tests

func (s *EngineSuite) TestCaptureByDisplacement() {
	snap, err := s.engine.ApplyMove(model.SeatA, engine.Move{SR: 11, SC: 1, ER: 10, EC: 0})
	s.Require().NoError(err)

	grid := s.decodeBoard(snap)
	s.Require().NotNil(grid[10][0])
	s.Equal(model.SeatA, grid[10][0].Color)
	s.Contains(s.decodeAlive(snap), model.SeatB)
}

func (s *EngineSuite) TestCapturingLastPieceEliminates() {
	s.engine.board = [BoardSize][BoardSize]model.Seat{}
	s.engine.board[5][5] = model.SeatA
	s.engine.board[5][6] = model.SeatB
	s.engine.board[0][0] = model.SeatC
	s.engine.board[0][2] = model.SeatD
	s.engine.turn = model.SeatA

	snap, err := s.engine.ApplyMove(model.SeatA, engine.Move{SR: 5, SC: 5, ER: 5, EC: 6})
	s.Require().NoError(err)

	s.Equal([]model.Seat{model.SeatA, model.SeatC, model.SeatD}, s.decodeAlive(snap))
	s.Equal(model.SeatC, snap.Turn)
}

// Resign tests

func (s *EngineSuite) TestResignRemovesSeat() {
	snap, err := s.engine.Resign(model.SeatA)
	s.Require().NoError(err)

	s.NotContains(s.decodeAlive(snap), model.SeatA)
	s.Equal(model.SeatB, snap.Turn)
	for _, row := range s.decodeBoard(snap) {
		for _, piece := range row {
			if piece != nil {
				s.NotEqual(model.SeatA, piece.Color)
			}
		}
	}
}

func (s *EngineSuite) TestResignOffTurnKeepsTurn() {
	snap, err := s.engine.Resign(model.SeatC)
	s.Require().NoError(err)
	s.Equal(model.SeatA, snap.Turn)
}

func (s *EngineSuite) TestResignTwiceRejected() {
	_, err := s.engine.Resign(model.SeatA)
	s.Require().NoError(err)

	_, err = s.engine.Resign(model.SeatA)
	var rej *engine.RejectionError
	s.True(errors.As(err, &rej))
	s.ErrorContains(err, "not in the game")
}

func (s *EngineSuite) TestTurnSkipsResignedSeat() {
	_, err := s.engine.Resign(model.SeatB)
	s.Require().NoError(err)

	snap, err := s.engine.ApplyMove(model.SeatA, engine.Move{SR: 11, SC: 1, ER: 10, EC: 1})
	s.Require().NoError(err)
	s.Equal(model.SeatC, snap.Turn)
}

// Reset tests

func (s *EngineSuite) TestResetRestoresInitialState() {
	_, err := s.engine.ApplyMove(model.SeatA, engine.Move{SR: 11, SC: 1, ER: 10, EC: 1})
	s.Require().NoError(err)
	_, err = s.engine.Resign(model.SeatB)
	s.Require().NoError(err)

	snap := s.engine.Reset()
	s.Equal(model.SeatA, snap.Turn)
	s.Equal(model.PlayableSeats(), s.decodeAlive(snap))
	s.Empty(s.decodeMoves(snap))
	s.JSONEq(string(New().Snapshot().Board), string(snap.Board))
}
