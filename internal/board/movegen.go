package board

import (
	"github.com/rs/zerolog/log"
)

// moveGenerator returns the destination set of the piece on sq. In control
// mode friendly-occupied squares are kept: the result is what the piece
// attacks or defends rather than where it may go.
type moveGenerator func(p *Position, sq Square, c Color, control bool) Bitboard

var generators [NoPieceType]moveGenerator

func init() {
	generators = [NoPieceType]moveGenerator{
		Pawn:   pawnMoves,
		Knight: knightMoves,
		Bishop: bishopMoves,
		Rook:   rookMoves,
		Queen:  queenMoves,
		King:   kingMoves,
	}
}

// Direction offsets as (file, row) steps.
var (
	knightSteps   = [8][2]int{{1, -2}, {-1, -2}, {2, -1}, {-2, -1}, {2, 1}, {-2, 1}, {1, 2}, {-1, 2}}
	kingSteps     = [8][2]int{{-1, -1}, {0, -1}, {1, -1}, {-1, 0}, {1, 0}, {-1, 1}, {0, 1}, {1, 1}}
	rookSteps     = [4][2]int{{0, -1}, {0, 1}, {-1, 0}, {1, 0}}
	bishopSteps   = [4][2]int{{-1, -1}, {1, 1}, {1, -1}, {-1, 1}}
	pawnCaptureDF = [2]int{-1, 1}
)

// offset returns the square df files and dr rows away, or NoSquare when that
// would leave the board.
func offset(sq Square, df, dr int) Square {
	return NewSquare(sq.File()+df, sq.Row()+dr)
}

// pawnDirection returns the row step of c's pawns.
func pawnDirection(c Color) int {
	if c == White {
		return -1
	}
	return 1
}

// Moves returns the destination squares of a piece of type pt and colour c
// standing on sq, in ascending order. With control set it returns the
// squares the piece controls instead. Unknown piece types yield no moves.
func (p *Position) Moves(sq Square, pt PieceType, c Color, control bool) []Square {
	return p.Destinations(sq, pt, c, control).Squares()
}

// Destinations is Moves as a bitboard.
func (p *Position) Destinations(sq Square, pt PieceType, c Color, control bool) Bitboard {
	if pt >= NoPieceType {
		log.Warn().Uint8("piece_type", uint8(pt)).Stringer("square", sq).Msg("invalid piece type")
		return Empty
	}
	if !sq.IsValid() || c >= NoColor {
		return Empty
	}
	return generators[pt](p, sq, c, control)
}

// ControlMap returns every square controlled by c's pieces.
func (p *Position) ControlMap(c Color) Bitboard {
	var control Bitboard
	for piece := NewPiece(Pawn, c); piece <= NewPiece(King, c); piece++ {
		pieces := p.Pieces[piece]
		for pieces != 0 {
			sq := pieces.PopLSB()
			control |= generators[piece.Type()](p, sq, c, true)
		}
	}
	return control
}

// PseudoLegalMoves returns every move of c's pieces, ordered by origin then
// destination square.
func (p *Position) PseudoLegalMoves(c Color) []Move {
	var moves []Move
	own := p.ColorOccupied(c)
	for own != 0 {
		from := own.PopLSB()
		targets := p.Destinations(from, p.PieceTypeAt(from), c, false)
		for targets != 0 {
			moves = append(moves, NewMove(from, targets.PopLSB()))
		}
	}
	return moves
}

// KingMissing reports whether c has no king on the board.
func (p *Position) KingMissing(c Color) bool {
	return p.Pieces[NewPiece(King, c)] == 0
}

// InCheck reports whether c's king stands on a square the opponent controls.
func (p *Position) InCheck(c Color) bool {
	ksq := p.KingSquare(c)
	if ksq == NoSquare {
		return false
	}
	return p.ControlMap(c.Other()).Get(ksq)
}

// IsCheckmated reports whether c's king is in check and has no king move.
// Blocks and captures by other pieces are not considered.
func (p *Position) IsCheckmated(c Color) bool {
	ksq := p.KingSquare(c)
	if ksq == NoSquare || !p.InCheck(c) {
		return false
	}
	return kingMoves(p, ksq, c, false) == 0
}

func pawnMoves(p *Position, sq Square, c Color, control bool) Bitboard {
	dir := pawnDirection(c)

	var attacks Bitboard
	for _, df := range pawnCaptureDF {
		attacks = attacks.Set(offset(sq, df, dir))
	}
	if control {
		return attacks
	}

	occupied := p.Occupied()
	moves := attacks & p.ColorOccupied(c.Other())

	if ep := p.EnPassant[c]; ep != NoSquare && attacks.Get(ep) {
		moves = moves.Set(ep)
	}

	one := offset(sq, 0, dir)
	if one != NoSquare && !occupied.Get(one) {
		moves = moves.Set(one)

		homeRow := 6
		if c == Black {
			homeRow = 1
		}
		two := offset(sq, 0, 2*dir)
		if sq.Row() == homeRow && !occupied.Get(two) {
			moves = moves.Set(two)
		}
	}

	return moves
}

func knightMoves(p *Position, sq Square, c Color, control bool) Bitboard {
	var moves Bitboard
	for _, step := range knightSteps {
		moves = moves.Set(offset(sq, step[0], step[1]))
	}
	if control {
		return moves
	}
	return moves &^ p.ColorOccupied(c)
}

// slide casts rays from sq along each step, stopping at and including the
// first occupied square.
func slide(p *Position, sq Square, c Color, control bool, steps [][2]int) Bitboard {
	occupied := p.Occupied()
	var moves Bitboard
	for _, step := range steps {
		for to := offset(sq, step[0], step[1]); to != NoSquare; to = offset(to, step[0], step[1]) {
			moves = moves.Set(to)
			if occupied.Get(to) {
				break
			}
		}
	}
	if control {
		return moves
	}
	return moves &^ p.ColorOccupied(c)
}

func bishopMoves(p *Position, sq Square, c Color, control bool) Bitboard {
	return slide(p, sq, c, control, bishopSteps[:])
}

func rookMoves(p *Position, sq Square, c Color, control bool) Bitboard {
	return slide(p, sq, c, control, rookSteps[:])
}

func queenMoves(p *Position, sq Square, c Color, control bool) Bitboard {
	return slide(p, sq, c, control, rookSteps[:]) | slide(p, sq, c, control, bishopSteps[:])
}

// kingMoves keeps the king off squares the opponent currently controls. This
// is the only check avoidance in the generator.
func kingMoves(p *Position, sq Square, c Color, control bool) Bitboard {
	var moves Bitboard
	for _, step := range kingSteps {
		moves = moves.Set(offset(sq, step[0], step[1]))
	}
	if control {
		return moves
	}
	return moves &^ p.ColorOccupied(c) &^ p.ControlMap(c.Other())
}
