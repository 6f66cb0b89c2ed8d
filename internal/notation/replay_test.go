package notation

import (
	"errors"
	"strings"
	"testing"

	"github.com/nerdchess/nerdchess/internal/board"
	"github.com/nerdchess/nerdchess/internal/testutil"
)

func TestReplay(t *testing.T) {
	tests := []struct {
		name     string
		fen      string
		moves    []board.Move
		wantFEN  string
		wantSide board.Color
		wantErr  bool
	}{
		{
			name:     "empty",
			wantFEN:  board.StartFEN,
			wantSide: board.White,
		},
		{
			name:     "opening",
			moves:    []board.Move{board.NewMove(board.E2, board.E4), board.NewMove(board.C7, board.C5)},
			wantFEN:  "rnbqkbnr/pp1ppppp/8/2p5/4P3/8/PPPP1PPP/RNBQKBNR w KQkq c6 0 1",
			wantSide: board.White,
		},
		{
			name:     "castling both ways",
			fen:      "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1",
			moves:    []board.Move{board.NewMove(board.E1, board.C1), board.NewMove(board.E8, board.G8)},
			wantFEN:  "r4rk1/8/8/8/8/8/8/2KR3R w - - 0 1",
			wantSide: board.White,
		},
		{
			name:    "castling without rook",
			fen:     "4k3/8/8/8/8/8/8/4K3 w - - 0 1",
			moves:   []board.Move{board.NewMove(board.E1, board.G1)},
			wantErr: true,
		},
		{
			name:    "wrong side",
			moves:   []board.Move{board.NewMove(board.E7, board.E5)},
			wantErr: true,
		},
		{
			name:    "bad fen",
			fen:     "nonsense",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, side, err := Replay(tt.fen, tt.moves)
			if tt.wantErr {
				testutil.AssertError(t, err)
				return
			}
			testutil.AssertNoError(t, err)
			testutil.AssertEqual(t, pos.FEN(side), tt.wantFEN)
			testutil.AssertEqual(t, side, tt.wantSide)
		})
	}
}

func TestApplyRejects(t *testing.T) {
	pos := board.NewPosition()
	err := Apply(&pos, board.White, board.NewMove(board.E2, board.E5))
	if !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("Apply(e2e5) error = %v, want ErrIllegalMove", err)
	}
	if !strings.Contains(err.Error(), "e5") {
		t.Errorf("error %q does not name the target square", err)
	}
	testutil.AssertEqual(t, pos, board.NewPosition())

	err = Apply(&pos, board.White, board.NoMove)
	if !errors.Is(err, ErrIllegalMove) {
		t.Errorf("Apply(NoMove) error = %v, want ErrIllegalMove", err)
	}
}
