package board

import "testing"

// perft counts the leaf nodes of the move tree at the given depth. Moves are
// applied to copies, so the caller's position is never modified.
func perft(p Position, side Color, depth int) int64 {
	if depth == 0 {
		return 1
	}

	moves := p.PseudoLegalMoves(side)
	if depth == 1 {
		return int64(len(moves))
	}

	var nodes int64
	for _, m := range moves {
		child := p
		child.MovePiece(m.From, m.To)
		nodes += perft(child, side.Other(), depth-1)
	}
	return nodes
}

// The start position has no pins, checks or castling within three plies, so
// pseudo-legal counts match the published perft values.
func TestPerftStartingPosition(t *testing.T) {
	pos := NewPosition()

	tests := []struct {
		depth    int
		expected int64
	}{
		{1, 20},
		{2, 400},
		{3, 8902},
	}

	for _, tc := range tests {
		t.Run("", func(t *testing.T) {
			got := perft(pos, White, tc.depth)
			if got != tc.expected {
				t.Errorf("perft(%d) = %d, want %d", tc.depth, got, tc.expected)
			}
		})
	}

	if pos != NewPosition() {
		t.Error("perft modified the root position")
	}
}

func TestPerftKingAndPawn(t *testing.T) {
	pos, side, err := ParseFEN("4k3/8/8/8/8/8/4P3/4K3 w - - 0 1")
	if err != nil {
		t.Fatalf("Failed to parse FEN: %v", err)
	}

	// e3, e4 and Kd1, Kf1, Kd2, Kf2.
	if got := perft(pos, side, 1); got != 6 {
		t.Errorf("perft(1) = %d, want 6", got)
	}
}
