package board

import (
	"testing"

	"github.com/nerdchess/nerdchess/internal/testutil"
)

// placeAll builds a position from piece placements on an otherwise empty board.
func placeAll(placements map[Square]Piece) Position {
	pos := EmptyPosition()
	for sq, piece := range placements {
		pos.Place(piece, sq)
	}
	return pos
}

func TestMovesOnEmptyBoard(t *testing.T) {
	tests := []struct {
		name  string
		sq    Square
		pt    PieceType
		c     Color
		count int
		want  []Square
	}{
		{"knight b8", B8, Knight, White, 3, []Square{D7, A6, C6}},
		{"knight h1", H1, Knight, Black, 2, []Square{G3, F2}},
		{"rook a8", A8, Rook, White, 14, nil},
		{"bishop d4", D4, Bishop, White, 13, nil},
		{"queen d4", D4, Queen, Black, 27, nil},
		{"king a5", A5, King, White, 5, []Square{A6, B6, B5, A4, B4}},
		{"king h4", H4, King, Black, 5, []Square{G5, H5, G4, G3, H3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos := EmptyPosition()
			got := pos.Moves(tt.sq, tt.pt, tt.c, false)
			if len(got) != tt.count {
				t.Errorf("Moves() = %v (%d squares), want %d", got, len(got), tt.count)
			}
			if tt.want != nil {
				testutil.AssertEqual(t, got, FromSquares(tt.want).Squares())
			}
		})
	}
}

func TestKnightOnB8(t *testing.T) {
	pos := EmptyPosition()
	testutil.AssertEqual(t, pos.Moves(1, Knight, White, false), []Square{11, 16, 18})
}

func TestMovesAreAscendingAndDeterministic(t *testing.T) {
	pos := NewPosition()
	pos.MovePiece(E2, E4)
	pos.MovePiece(D7, D5)

	first := pos.Moves(D1, Queen, White, false)
	second := pos.Moves(D1, Queen, White, false)
	testutil.AssertEqual(t, first, second)

	for i := 1; i < len(first); i++ {
		if first[i-1] >= first[i] {
			t.Fatalf("Moves() not ascending: %v", first)
		}
	}
	testutil.AssertEqual(t, first, []Square{H5, G4, F3, E2})
}

func TestSlidersStopAtBlockers(t *testing.T) {
	pos := placeAll(map[Square]Piece{
		A1: WhiteRook,
		A3: WhitePawn,
		C1: BlackPawn,
		H3: WhiteKing,
		H8: BlackKing,
	})

	t.Run("legal", func(t *testing.T) {
		testutil.AssertEqual(t, pos.Moves(A1, Rook, White, false), []Square{A2, B1, C1})
	})
	t.Run("control keeps friendly blocker", func(t *testing.T) {
		testutil.AssertEqual(t, pos.Moves(A1, Rook, White, true), []Square{A3, A2, B1, C1})
	})
}

func TestPawnMoves(t *testing.T) {
	start := NewPosition()

	tests := []struct {
		name    string
		pos     Position
		sq      Square
		c       Color
		control bool
		want    []Square
	}{
		{"white single and double", start, E2, White, false, []Square{E4, E3}},
		{"black single and double", start, E7, Black, false, []Square{E6, E5}},
		{"white control", start, E2, White, true, []Square{D3, F3}},
		{"edge control", start, A2, White, true, []Square{B3}},
		{"black control", start, H7, Black, true, []Square{G6}},
		{
			"blocked double push",
			placeAll(map[Square]Piece{E2: WhitePawn, E4: BlackKnight}),
			E2, White, false,
			[]Square{E3},
		},
		{
			"blocked single push",
			placeAll(map[Square]Piece{E2: WhitePawn, E3: BlackKnight}),
			E2, White, false,
			[]Square{},
		},
		{
			"captures",
			placeAll(map[Square]Piece{E4: WhitePawn, D5: BlackKnight, F5: WhiteKnight}),
			E4, White, false,
			[]Square{D5, E5},
		},
		{
			"no double push off home row",
			placeAll(map[Square]Piece{E3: WhitePawn}),
			E3, White, false,
			[]Square{E4},
		},
		{
			"black captures down the board",
			placeAll(map[Square]Piece{D5: BlackPawn, C4: WhiteBishop, E4: WhiteKnight}),
			D5, Black, false,
			[]Square{C4, D4, E4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertEqual(t, tt.pos.Moves(tt.sq, Pawn, tt.c, tt.control), tt.want)
		})
	}
}

func TestControlModeIncludesFriendlySquares(t *testing.T) {
	pos := NewPosition()

	testutil.AssertEqual(t, pos.Moves(G1, Knight, White, false), []Square{F3, H3})
	testutil.AssertEqual(t, pos.Moves(G1, Knight, White, true), []Square{F3, H3, E2})

	control := pos.ControlMap(White)
	if !control.Get(E2) || !control.Get(F3) {
		t.Errorf("ControlMap(White) should include e2 and f3:\n%s", control)
	}
	if control.Get(E4) {
		t.Errorf("ControlMap(White) should not include e4:\n%s", control)
	}
	if got := control & Row5; got != Row5 {
		t.Errorf("White should control the whole third rank:\n%s", got)
	}
}

func TestKingAvoidsControlledSquares(t *testing.T) {
	pos := placeAll(map[Square]Piece{
		E1: WhiteKing,
		D8: BlackRook,
		H8: BlackKing,
	})

	testutil.AssertEqual(t, pos.Moves(E1, King, White, false), []Square{E2, F2, F1})

	// Control mode ignores attacked squares.
	testutil.AssertEqual(t, pos.Moves(E1, King, White, true), []Square{D2, E2, F2, D1, F1})
}

func TestKingDoesNotCaptureOwnPieces(t *testing.T) {
	pos := NewPosition()
	if got := pos.Moves(E1, King, White, false); len(got) != 0 {
		t.Errorf("Moves(e1) = %v, want none", got)
	}
}

func TestInvalidPieceType(t *testing.T) {
	pos := NewPosition()
	if got := pos.Moves(E2, NoPieceType, White, false); len(got) != 0 {
		t.Errorf("Moves(NoPieceType) = %v, want none", got)
	}
	if got := pos.Destinations(NoSquare, Knight, White, false); got != Empty {
		t.Errorf("Destinations(NoSquare) =\n%s", got)
	}
}

func TestPseudoLegalMoves(t *testing.T) {
	pos := NewPosition()

	white := pos.PseudoLegalMoves(White)
	if len(white) != 20 {
		t.Errorf("PseudoLegalMoves(White) = %d moves, want 20", len(white))
	}
	if len(pos.PseudoLegalMoves(Black)) != 20 {
		t.Errorf("PseudoLegalMoves(Black) should also have 20 moves")
	}

	// Ordered by origin square, a2 first and g1 last.
	testutil.AssertEqual(t, white[0], NewMove(A2, A4))
	testutil.AssertEqual(t, white[len(white)-1], NewMove(G1, H3))
}
