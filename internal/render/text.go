package render

import (
	"strings"

	"github.com/nerdchess/nerdchess/internal/board"
)

// ANSI escape sequences of the console board.
const (
	ansiWhitePiece = "\033[97m"
	ansiBlackPiece = "\033[90m"
	ansiCursor     = "\033[43m"
	ansiSelected   = "\033[42m"
	ansiReset      = "\033[0m"
)

// TextOptions controls text output.
type TextOptions struct {
	ANSI     bool
	Cursor   board.Square // NoSquare hides the cursor
	Selected board.Square // NoSquare when nothing is selected
	Labels   bool         // rank digits and file letters
}

// PlainText returns text options with no cursor and no selection.
func PlainText() TextOptions {
	return TextOptions{Cursor: board.NoSquare, Selected: board.NoSquare, Labels: true}
}

// Text renders the position row by row from a8. White pieces are uppercase
// and Black lowercase; empty squares are dots. Without ANSI the cursor is
// bracketed and the selected square parenthesised.
func Text(p *board.Position, opts TextOptions) string {
	var sb strings.Builder
	for row := 0; row < 8; row++ {
		if opts.Labels {
			sb.WriteByte(byte('8' - row))
			sb.WriteByte(' ')
		}
		for file := 0; file < 8; file++ {
			sq := board.NewSquare(file, row)
			if opts.ANSI {
				writeANSICell(&sb, p.PieceAt(sq), sq == opts.Cursor, sq == opts.Selected)
			} else {
				writePlainCell(&sb, p.PieceAt(sq), sq == opts.Cursor, sq == opts.Selected)
			}
		}
		if opts.ANSI {
			sb.WriteString(ansiReset)
		}
		sb.WriteByte('\n')
	}
	if opts.Labels {
		if opts.ANSI {
			sb.WriteString("  a b c d e f g h\n")
		} else {
			sb.WriteString("   a  b  c  d  e  f  g  h\n")
		}
	}
	return sb.String()
}

func writePlainCell(sb *strings.Builder, piece board.Piece, cursor, selected bool) {
	switch {
	case cursor:
		sb.WriteString("[" + piece.String() + "]")
	case selected:
		sb.WriteString("(" + piece.String() + ")")
	default:
		sb.WriteString(" " + piece.String() + " ")
	}
}

func writeANSICell(sb *strings.Builder, piece board.Piece, cursor, selected bool) {
	switch {
	case cursor:
		sb.WriteString(ansiCursor)
	case selected:
		sb.WriteString(ansiSelected)
	}
	if piece.Color() == board.White {
		sb.WriteString(ansiWhitePiece)
	} else {
		sb.WriteString(ansiBlackPiece)
	}
	sb.WriteString(piece.String())
	sb.WriteByte(' ')
	if cursor || selected {
		sb.WriteString(ansiReset)
	}
}
