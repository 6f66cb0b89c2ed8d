package notation

import (
	"errors"
	"strings"
	"testing"

	"github.com/nerdchess/nerdchess/internal/board"
	"github.com/nerdchess/nerdchess/internal/testutil"
)

func TestSquareName(t *testing.T) {
	tests := []struct {
		sq   board.Square
		want string
	}{
		{0, "a8"},
		{7, "h8"},
		{56, "a1"},
		{63, "h1"},
		{board.E4, "e4"},
	}

	for _, tt := range tests {
		got, err := SquareName(tt.sq)
		testutil.AssertNoError(t, err)
		testutil.AssertEqual(t, got, tt.want)

		back, err := ParseSquare(tt.want)
		testutil.AssertNoError(t, err)
		testutil.AssertEqual(t, back, tt.sq)
	}

	if _, err := SquareName(board.NoSquare); !errors.Is(err, ErrInvalidSquare) {
		t.Errorf("SquareName(64) error = %v, want ErrInvalidSquare", err)
	}
	for _, s := range []string{"", "i1", "a9", "a0", "e44"} {
		if _, err := ParseSquare(s); !errors.Is(err, ErrInvalidSquare) {
			t.Errorf("ParseSquare(%q) error = %v, want ErrInvalidSquare", s, err)
		}
	}
}

func TestUCI(t *testing.T) {
	pos, _, err := board.ParseFEN("4k3/P7/8/8/8/8/4p3/4K3 w - - 0 1")
	testutil.AssertNoError(t, err)

	testutil.AssertEqual(t, UCI(&pos, board.NewMove(board.A7, board.A8)), "a7a8q")
	testutil.AssertEqual(t, UCI(&pos, board.NewMove(board.E1, board.D1)), "e1d1")
	testutil.AssertEqual(t, UCI(&pos, board.NewMove(board.E2, board.D1)), "e2d1q")

	m, err := ParseUCI("a7a8q")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, m, board.NewMove(board.A7, board.A8))

	_, err = ParseUCI("a7")
	testutil.AssertError(t, err)
}

func TestPGN(t *testing.T) {
	moves := []board.Move{
		board.NewMove(board.E2, board.E4),
		board.NewMove(board.E7, board.E5),
		board.NewMove(board.G1, board.F3),
		board.NewMove(board.B8, board.C6),
	}

	pgn, err := PGN(Game{
		Moves:  moves,
		Tags:   map[string]string{"White": "Player", "Black": "NerdChess"},
		Result: "1-0",
	})
	testutil.AssertNoError(t, err)

	for _, want := range []string{"[White \"Player\"]", "[Black \"NerdChess\"]", "e4", "Nf3", "Nc6", "1-0"} {
		if !strings.Contains(pgn, want) {
			t.Errorf("PGN missing %q:\n%s", want, pgn)
		}
	}

	fen, parsed, err := ParsePGN(strings.NewReader(pgn))
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, parsed, moves)
	if !strings.HasPrefix(fen, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w") {
		t.Errorf("start FEN = %q", fen)
	}
}

func TestPGNFromPosition(t *testing.T) {
	fen := "4k3/P7/8/8/8/8/8/4K3 w - - 0 1"
	pgn, err := PGN(Game{FEN: fen, Moves: []board.Move{board.NewMove(board.A7, board.A8)}})
	testutil.AssertNoError(t, err)
	if !strings.Contains(pgn, "a8=Q") {
		t.Errorf("expected a queen promotion in:\n%s", pgn)
	}
}

func TestPGNRejectsIllegalMove(t *testing.T) {
	// The pinned knight may move under pseudo-legal generation only.
	_, err := PGN(Game{
		FEN:   "4k3/8/8/8/4r3/8/4N3/4K3 w - - 0 1",
		Moves: []board.Move{board.NewMove(board.E2, board.C3)},
	})
	testutil.AssertError(t, err)
}

func TestParsePGNEmpty(t *testing.T) {
	_, _, err := ParsePGN(strings.NewReader(""))
	testutil.AssertTrue(t, errors.Is(err, ErrEmptyPGN))
}

func TestParsePGNTagsOnly(t *testing.T) {
	fen, moves, err := ParsePGN(strings.NewReader("[Event \"Casual\"]\n\n*\n"))
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, fen, board.StartFEN)
	testutil.AssertEqual(t, len(moves), 0)
}
