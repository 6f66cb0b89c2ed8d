package notation

import (
	"errors"
	"fmt"

	"github.com/nerdchess/nerdchess/internal/board"
)

// ErrIllegalMove is returned by Apply for a move the side cannot make.
var ErrIllegalMove = errors.New("illegal move")

// Apply plays m for side in p. A king stepping two files along its row is
// read as castling and the rook is moved as well, since moves coming from
// other programs may castle even though the engine never does.
func Apply(p *board.Position, side board.Color, m board.Move) error {
	if !m.IsValid() || !p.PieceColorAt(m.From, side) {
		return fmt.Errorf("%w: no %s piece on %s", ErrIllegalMove, side, m.From)
	}

	if p.PieceTypeAt(m.From) == board.King && m.From.Row() == m.To.Row() && abs(m.From.File()-m.To.File()) == 2 {
		row := m.From.Row()
		rookFrom, rookTo := board.NewSquare(7, row), board.NewSquare(5, row)
		if m.To.File() < m.From.File() {
			rookFrom, rookTo = board.NewSquare(0, row), board.NewSquare(3, row)
		}
		if p.PieceAt(rookFrom) != board.NewPiece(board.Rook, side) {
			return fmt.Errorf("%w: no rook to castle with on %s", ErrIllegalMove, rookFrom)
		}
		p.MovePiece(m.From, m.To)
		p.MovePiece(rookFrom, rookTo)
		p.CastlingRights[side] = false
		return nil
	}

	if !p.Destinations(m.From, p.PieceTypeAt(m.From), side, false).Get(m.To) {
		return fmt.Errorf("%w: %s cannot reach %s", ErrIllegalMove, p.PieceAt(m.From), m.To)
	}
	p.MovePiece(m.From, m.To)
	return nil
}

// Replay sets up fen and applies moves alternately from the side to move.
// It returns the final position and the side to move in it.
func Replay(fen string, moves []board.Move) (board.Position, board.Color, error) {
	if fen == "" {
		fen = board.StartFEN
	}
	pos, side, err := board.ParseFEN(fen)
	if err != nil {
		return pos, side, err
	}
	for i, m := range moves {
		if err := Apply(&pos, side, m); err != nil {
			return pos, side, fmt.Errorf("ply %d %s: %w", i+1, m, err)
		}
		side = side.Other()
	}
	return pos, side, nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
