// Package notation converts between NerdChess squares and moves and the
// standard text forms: square names, UCI move strings and PGN.
package notation

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/notnil/chess"

	"github.com/nerdchess/nerdchess/internal/board"
)

// ErrInvalidSquare is returned for square indices or names off the board.
var ErrInvalidSquare = errors.New("invalid square")

// ErrEmptyPGN is returned by ParsePGN for input without tags or moves.
var ErrEmptyPGN = errors.New("empty pgn")

// SquareName returns the algebraic name of sq; square 0 is "a8".
func SquareName(sq board.Square) (string, error) {
	if !sq.IsValid() {
		return "", fmt.Errorf("%w: %d", ErrInvalidSquare, sq)
	}
	return sq.String(), nil
}

// ParseSquare parses an algebraic square name.
func ParseSquare(s string) (board.Square, error) {
	sq, err := board.ParseSquare(s)
	if err != nil {
		return board.NoSquare, fmt.Errorf("%w: %q", ErrInvalidSquare, s)
	}
	return sq, nil
}

// UCI returns the UCI string of m played in p. Pawn moves onto the last row
// carry the queen promotion suffix.
func UCI(p *board.Position, m board.Move) string {
	s := m.String()
	piece := p.PieceAt(m.From)
	if piece.Type() == board.Pawn && m.To.IsValid() && m.To.RelativeRow(piece.Color()) == 7 {
		s += "q"
	}
	return s
}

// ParseUCI parses a UCI move string. Any promotion suffix is ignored since
// pawns always promote to queens.
func ParseUCI(s string) (board.Move, error) {
	m, err := board.ParseMove(s)
	if err != nil {
		return board.NoMove, fmt.Errorf("%w: %v", ErrInvalidSquare, err)
	}
	return m, nil
}

// fromChessSquare converts from the a1-origin numbering of the PGN library.
func fromChessSquare(sq chess.Square) board.Square {
	return board.NewSquare(int(sq)%8, 7-int(sq)/8)
}

// Game describes a game for PGN export.
type Game struct {
	FEN    string // starting position, empty for the standard start
	Moves  []board.Move
	Tags   map[string]string
	Result string // "1-0", "0-1", "1/2-1/2" or "*"
}

// PGN renders the game as PGN. Moves that are illegal under the full rules
// of chess (castling aside, the engine plays pseudo-legal moves) make it
// fail with the offending ply.
func PGN(g Game) (string, error) {
	var opts []func(*chess.Game)
	if g.FEN != "" && g.FEN != board.StartFEN {
		fen, err := chess.FEN(g.FEN)
		if err != nil {
			return "", fmt.Errorf("start position: %w", err)
		}
		opts = append(opts, fen)
	}
	cg := chess.NewGame(opts...)

	keys := make([]string, 0, len(g.Tags))
	for k := range g.Tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		cg.AddTagPair(k, g.Tags[k])
	}

	pos := board.NewPosition()
	if g.FEN != "" {
		p, _, err := board.ParseFEN(g.FEN)
		if err != nil {
			return "", err
		}
		pos = p
	}

	for i, m := range g.Moves {
		s := UCI(&pos, m)
		cm, err := chess.UCINotation{}.Decode(cg.Position(), s)
		if err != nil {
			return "", fmt.Errorf("ply %d %s: %w", i+1, s, err)
		}
		if err := cg.Move(cm); err != nil {
			return "", fmt.Errorf("ply %d %s: %w", i+1, s, err)
		}
		pos.MovePiece(m.From, m.To)
	}

	if cg.Outcome() == chess.NoOutcome {
		switch g.Result {
		case "1-0":
			cg.Resign(chess.Black)
		case "0-1":
			cg.Resign(chess.White)
		case "1/2-1/2":
			if err := cg.Draw(chess.DrawOffer); err != nil {
				return "", err
			}
		}
	}

	return cg.String(), nil
}

// ParsePGN reads the first game of a PGN text and returns its start FEN and
// moves. Underpromotions are read as queen promotions and castling as the
// king's move alone.
func ParsePGN(r io.Reader) (string, []board.Move, error) {
	opt, err := chess.PGN(r)
	if err != nil {
		return "", nil, fmt.Errorf("parsing pgn: %w", err)
	}
	cg := chess.NewGame(opt)
	if len(cg.Moves()) == 0 && len(cg.TagPairs()) == 0 {
		return "", nil, ErrEmptyPGN
	}

	fen := board.StartFEN
	if positions := cg.Positions(); len(positions) > 0 {
		fen = positions[0].String()
	}

	moves := make([]board.Move, 0, len(cg.Moves()))
	for _, m := range cg.Moves() {
		moves = append(moves, board.NewMove(fromChessSquare(m.S1()), fromChessSquare(m.S2())))
	}
	return fen, moves, nil
}
