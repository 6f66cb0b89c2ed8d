package board

import (
	"fmt"
	"strings"
)

// Position represents a chess position as twelve piece bitboards plus the
// per-side castling and en passant metadata.
//
// A Position is a plain value: assigning it copies it. The search relies on
// that to explore hypothetical moves without touching the caller's board.
type Position struct {
	// Piece bitboards indexed by Piece: 0-5 White pawn..king, 6-11 Black.
	Pieces [12]Bitboard

	// Castling rights per side. Tracked only; no move consumes them.
	CastlingRights [2]bool

	// EnPassant[c] is the square pawns of colour c may capture onto,
	// NoSquare if none.
	EnPassant [2]Square
}

// EmptyPosition returns a board with no pieces, both castling rights set and
// no en passant targets.
func EmptyPosition() Position {
	return Position{
		CastlingRights: [2]bool{true, true},
		EnPassant:      [2]Square{NoSquare, NoSquare},
	}
}

// NewPosition creates the starting position.
func NewPosition() Position {
	var p Position
	p.Setup()
	return p
}

// Setup clears the board and places the standard starting arrangement.
func (p *Position) Setup() {
	*p = EmptyPosition()

	for file := 0; file < 8; file++ {
		p.Pieces[WhitePawn] = p.Pieces[WhitePawn].Set(NewSquare(file, 6))
		p.Pieces[BlackPawn] = p.Pieces[BlackPawn].Set(NewSquare(file, 1))
	}

	backRank := [8]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}
	for file, pt := range backRank {
		p.Pieces[NewPiece(pt, White)] = p.Pieces[NewPiece(pt, White)].Set(NewSquare(file, 7))
		p.Pieces[NewPiece(pt, Black)] = p.Pieces[NewPiece(pt, Black)].Set(NewSquare(file, 0))
	}
}

// Copy returns a copy of the position.
func (p *Position) Copy() Position {
	return *p
}

// IsEmpty returns true if no piece occupies the square.
func (p *Position) IsEmpty(sq Square) bool {
	return !p.Occupied().Get(sq)
}

// PieceColorAt returns true if a piece of the given colour occupies sq.
func (p *Position) PieceColorAt(sq Square, c Color) bool {
	return p.ColorOccupied(c).Get(sq)
}

// PieceTypeAt returns the type of the piece on sq, or NoPieceType.
func (p *Position) PieceTypeAt(sq Square) PieceType {
	return p.PieceAt(sq).Type()
}

// PieceAt returns the piece on sq, or NoPiece if the square is empty.
// White pawn..king are checked before Black pawn..king.
func (p *Position) PieceAt(sq Square) Piece {
	bb := SquareBB(sq)
	for piece := WhitePawn; piece < NoPiece; piece++ {
		if p.Pieces[piece]&bb != 0 {
			return piece
		}
	}
	return NoPiece
}

// Place puts a piece on sq, replacing whatever was there.
func (p *Position) Place(piece Piece, sq Square) {
	if piece >= NoPiece {
		return
	}
	p.RemovePiece(sq)
	p.Pieces[piece] = p.Pieces[piece].Set(sq)
}

// RemovePiece clears sq on every piece bitboard.
func (p *Position) RemovePiece(sq Square) {
	for i := range p.Pieces {
		p.Pieces[i] = p.Pieces[i].Clear(sq)
	}
}

// MovePiece moves the piece on from to to, capturing any occupant of to.
// Double pawn pushes set the opponent's en passant target, a pawn landing on
// its side's target removes the passed pawn, and pawns reaching the last row
// become queens. Every other move clears both en passant targets.
func (p *Position) MovePiece(from, to Square) {
	piece := p.PieceAt(from)
	if piece == NoPiece || !to.IsValid() {
		return
	}

	us := piece.Color()
	epTarget := p.EnPassant[us]

	p.RemovePiece(to)
	p.Pieces[piece] = p.Pieces[piece].Move(from, to)
	p.EnPassant = [2]Square{NoSquare, NoSquare}

	if piece.Type() != Pawn {
		return
	}

	if us == White {
		if int(from)-int(to) == 16 {
			p.EnPassant[Black] = to + 8
		}
		if to == epTarget {
			p.Pieces[BlackPawn] = p.Pieces[BlackPawn].Clear(to + 8)
		}
		if to.Row() == 0 {
			p.Pieces[WhitePawn] = p.Pieces[WhitePawn].Clear(to)
			p.Pieces[WhiteQueen] = p.Pieces[WhiteQueen].Set(to)
		}
		return
	}

	if int(to)-int(from) == 16 {
		p.EnPassant[White] = to - 8
	}
	if to == epTarget {
		p.Pieces[WhitePawn] = p.Pieces[WhitePawn].Clear(to - 8)
	}
	if to.Row() == 7 {
		p.Pieces[BlackPawn] = p.Pieces[BlackPawn].Clear(to)
		p.Pieces[BlackQueen] = p.Pieces[BlackQueen].Set(to)
	}
}

// Occupied returns the union of all twelve piece bitboards.
func (p *Position) Occupied() Bitboard {
	var all Bitboard
	for _, bb := range p.Pieces {
		all |= bb
	}
	return all
}

// ColorOccupied returns the squares holding pieces of colour c.
func (p *Position) ColorOccupied(c Color) Bitboard {
	if c >= NoColor {
		return Empty
	}
	var all Bitboard
	for _, bb := range p.Pieces[c*6 : c*6+6] {
		all |= bb
	}
	return all
}

// CountPieces returns the number of pieces on the board.
func (p *Position) CountPieces() int {
	return p.Occupied().PopCount()
}

// Count returns how many of the given piece are on the board.
func (p *Position) Count(piece Piece) int {
	if piece >= NoPiece {
		return 0
	}
	return p.Pieces[piece].PopCount()
}

// KingSquare returns the square of c's king, or NoSquare.
func (p *Position) KingSquare(c Color) Square {
	return FindPiece(p.Pieces[NewPiece(King, c)])
}

// FindPiece returns the square of the lowest set bit, or NoSquare for an
// empty mask. Use it on single-piece masks only.
func FindPiece(bb Bitboard) Square {
	return bb.LSB()
}

// Validate checks that no square holds more than one piece and that the en
// passant targets are plausible.
func (p *Position) Validate() error {
	var seen Bitboard
	for i, bb := range p.Pieces {
		if overlap := seen & bb; overlap != 0 {
			return fmt.Errorf("piece %s overlaps another piece on %s", Piece(i), overlap.LSB())
		}
		seen |= bb
	}

	if (p.Pieces[WhitePawn]|p.Pieces[BlackPawn])&(Row0|Row7) != 0 {
		return fmt.Errorf("pawns cannot be on rank 1 or 8")
	}

	if ep := p.EnPassant[White]; ep != NoSquare && ep.Row() != 2 {
		return fmt.Errorf("white en passant target %s not on rank 6", ep)
	}
	if ep := p.EnPassant[Black]; ep != NoSquare && ep.Row() != 5 {
		return fmt.Errorf("black en passant target %s not on rank 3", ep)
	}

	return nil
}

// Mirror returns the colour-flipped position: every piece changes colour and
// moves to the vertically mirrored square.
func (p *Position) Mirror() Position {
	m := EmptyPosition()
	for piece := WhitePawn; piece < NoPiece; piece++ {
		flipped := NewPiece(piece.Type(), piece.Color().Other())
		for _, sq := range p.Pieces[piece].Squares() {
			m.Pieces[flipped] = m.Pieces[flipped].Set(sq.Mirror())
		}
	}
	m.CastlingRights = [2]bool{p.CastlingRights[Black], p.CastlingRights[White]}
	m.EnPassant = [2]Square{p.EnPassant[Black].Mirror(), p.EnPassant[White].Mirror()}
	return m
}

// BoardString returns the 64-character board key: one character per square
// from a8 to h1, '.' for empty, FEN letters for pieces.
func (p *Position) BoardString() string {
	var sb strings.Builder
	sb.Grow(64)
	for sq := A8; sq < NoSquare; sq++ {
		sb.WriteString(p.PieceAt(sq).String())
	}
	return sb.String()
}

// String returns a visual representation of the position.
func (p *Position) String() string {
	var sb strings.Builder
	sb.WriteString("\n")
	for row := 0; row < 8; row++ {
		fmt.Fprintf(&sb, "%d  ", 8-row)
		for file := 0; file < 8; file++ {
			sb.WriteString(p.PieceAt(NewSquare(file, row)).String())
			sb.WriteString(" ")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n   a b c d e f g h\n\n")
	fmt.Fprintf(&sb, "Castling: %v/%v\n", p.CastlingRights[White], p.CastlingRights[Black])
	fmt.Fprintf(&sb, "En passant: %s/%s\n", p.EnPassant[White], p.EnPassant[Black])
	return sb.String()
}
