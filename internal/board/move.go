package board

import "fmt"

// Move is a (from, to) square pair. Promotion is implicit: pawns reaching the
// last row always become queens.
type Move struct {
	From Square
	To   Square
}

// NoMove represents an invalid or null move.
var NoMove = Move{From: NoSquare, To: NoSquare}

// NewMove creates a move.
func NewMove(from, to Square) Move {
	return Move{From: from, To: to}
}

// IsValid reports whether both squares are on the board.
func (m Move) IsValid() bool {
	return m.From.IsValid() && m.To.IsValid()
}

// String returns the coordinate form of the move (e.g., "e2e4").
func (m Move) String() string {
	if !m.IsValid() {
		return "0000"
	}
	return m.From.String() + m.To.String()
}

// ParseMove parses coordinate notation ("e2e4", an optional promotion
// letter is accepted and ignored).
func ParseMove(s string) (Move, error) {
	if len(s) != 4 && len(s) != 5 {
		return NoMove, fmt.Errorf("invalid move string: %q", s)
	}

	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, err
	}

	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, err
	}

	return NewMove(from, to), nil
}
