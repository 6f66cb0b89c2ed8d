package board

import (
	"testing"

	"github.com/nerdchess/nerdchess/internal/testutil"
)

func TestPieceChars(t *testing.T) {
	tests := []struct {
		c    byte
		want Piece
	}{
		{'P', WhitePawn},
		{'N', WhiteKnight},
		{'K', WhiteKing},
		{'p', BlackPawn},
		{'q', BlackQueen},
		{'k', BlackKing},
		{'x', NoPiece},
		{'.', NoPiece},
	}

	for _, tt := range tests {
		t.Run(string(tt.c), func(t *testing.T) {
			got := PieceFromChar(tt.c)
			testutil.AssertEqual(t, got, tt.want)
			if got != NoPiece {
				testutil.AssertEqual(t, got.String(), string(tt.c))
			}
		})
	}

	testutil.AssertEqual(t, NoPiece.String(), ".")
	testutil.AssertEqual(t, Rook.Char(), byte('R'))
	testutil.AssertEqual(t, NoPieceType.Char(), byte('.'))
}
