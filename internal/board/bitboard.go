package board

import (
	"math/bits"
	"strings"
)

// Bitboard represents a 64-bit board where each bit corresponds to a square.
// Bit 0 = a8, bit 7 = h8, bit 56 = a1, bit 63 = h1 (rows run from the top of
// the rendered board downward).
type Bitboard uint64

// File masks
const (
	FileA Bitboard = 0x0101010101010101
	FileB Bitboard = 0x0202020202020202
	FileG Bitboard = 0x4040404040404040
	FileH Bitboard = 0x8080808080808080
)

// Row masks. Row0 is rank 8, Row7 is rank 1.
const (
	Row0 Bitboard = 0x00000000000000FF
	Row1 Bitboard = 0x000000000000FF00
	Row2 Bitboard = 0x0000000000FF0000
	Row3 Bitboard = 0x00000000FF000000
	Row4 Bitboard = 0x000000FF00000000
	Row5 Bitboard = 0x0000FF0000000000
	Row6 Bitboard = 0x00FF000000000000
	Row7 Bitboard = 0xFF00000000000000
)

// Special masks
const (
	Empty    Bitboard = 0
	Universe Bitboard = 0xFFFFFFFFFFFFFFFF

	// Light squares in a8-origin numbering (a8 is a light square).
	LightSquares Bitboard = 0xAA55AA55AA55AA55
	DarkSquares  Bitboard = ^LightSquares
)

// FileMask returns the file mask for a given file (0-7).
var FileMask = [8]Bitboard{
	FileA, FileB, FileA << 2, FileA << 3, FileA << 4, FileA << 5, FileG, FileH,
}

// SquareBB returns a bitboard with only the given square set.
func SquareBB(sq Square) Bitboard {
	if sq >= NoSquare {
		return Empty
	}
	return 1 << sq
}

// FromSquares returns a bitboard with every listed square set.
func FromSquares(squares []Square) Bitboard {
	var b Bitboard
	for _, sq := range squares {
		b = b.Set(sq)
	}
	return b
}

// Get returns true if the bit at the given square is set.
func (b Bitboard) Get(sq Square) bool {
	return b&SquareBB(sq) != 0
}

// Set sets a bit at the given square.
func (b Bitboard) Set(sq Square) Bitboard {
	return b | SquareBB(sq)
}

// Clear clears a bit at the given square.
func (b Bitboard) Clear(sq Square) Bitboard {
	return b &^ SquareBB(sq)
}

// Move clears from and sets to. Captures and promotion are the
// caller's business.
func (b Bitboard) Move(from, to Square) Bitboard {
	return b.Clear(from).Set(to)
}

// PopCount returns the number of set bits (population count).
func (b Bitboard) PopCount() int {
	return bits.OnesCount64(uint64(b))
}

// LSB returns the least significant bit (lowest square index).
func (b Bitboard) LSB() Square {
	if b == 0 {
		return NoSquare
	}
	return Square(bits.TrailingZeros64(uint64(b)))
}

// PopLSB removes and returns the least significant bit.
func (b *Bitboard) PopLSB() Square {
	sq := b.LSB()
	*b &= *b - 1
	return sq
}

// Squares returns a slice of all squares that are set, ascending.
func (b Bitboard) Squares() []Square {
	squares := make([]Square, 0, b.PopCount())
	for b != 0 {
		squares = append(squares, b.PopLSB())
	}
	return squares
}

// String returns a visual representation of the bitboard.
func (b Bitboard) String() string {
	var sb strings.Builder
	for row := 0; row < 8; row++ {
		sb.WriteByte(byte('8' - row))
		sb.WriteByte(' ')
		for file := 0; file < 8; file++ {
			if b.Get(NewSquare(file, row)) {
				sb.WriteString("1 ")
			} else {
				sb.WriteString(". ")
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("  a b c d e f g h\n")
	return sb.String()
}
