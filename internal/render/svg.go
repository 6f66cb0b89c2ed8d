// Package render draws positions as text, SVG and PNG images.
package render

import (
	"fmt"
	"image/color"
	"io"

	svg "github.com/ajstarks/svgo"

	"github.com/nerdchess/nerdchess/internal/board"
)

// Theme defines the colour scheme for image output.
type Theme struct {
	LightSquare    color.RGBA
	DarkSquare     color.RGBA
	SelectedSquare color.RGBA
	LastMoveColor  color.RGBA
	CheckColor     color.RGBA
	TextColor      color.RGBA
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() Theme {
	return Theme{
		LightSquare:    color.RGBA{240, 217, 181, 255}, // Tan
		DarkSquare:     color.RGBA{181, 136, 99, 255},  // Brown
		SelectedSquare: color.RGBA{247, 247, 105, 180}, // Yellow highlight
		LastMoveColor:  color.RGBA{180, 190, 100, 90},
		CheckColor:     color.RGBA{255, 100, 100, 180}, // Red
		TextColor:      color.RGBA{60, 60, 60, 255},
	}
}

// Options controls image output.
type Options struct {
	SquareSize  int  // pixels per square, DefaultSquareSize when zero
	Flip        bool // draw with Black at the bottom
	Coordinates bool // file letters and rank digits along the edges
	Selected    []board.Square
	LastMove    board.Move
	MarkCheck   bool // highlight a king standing in check
	Theme       *Theme
}

// DefaultSquareSize is the square size used when Options leaves it unset.
const DefaultSquareSize = 60

func (o Options) squareSize() int {
	if o.SquareSize <= 0 {
		return DefaultSquareSize
	}
	return o.SquareSize
}

func (o Options) theme() Theme {
	if o.Theme == nil {
		return DefaultTheme()
	}
	return *o.Theme
}

// squareOrigin returns the top-left pixel of sq.
func (o Options) squareOrigin(sq board.Square) (int, int) {
	file, row := sq.File(), sq.Row()
	if o.Flip {
		file, row = 7-file, 7-row
	}
	s := o.squareSize()
	return file * s, row * s
}

// SVG writes the position as an SVG document.
func SVG(w io.Writer, p *board.Position, opts Options) {
	size := 8 * opts.squareSize()
	canvas := svg.New(w)
	canvas.Startview(size, size, 0, 0, size, size)
	drawBoard(canvas, p, opts)
	canvas.End()
}

func drawBoard(canvas *svg.SVG, p *board.Position, opts Options) {
	s := opts.squareSize()
	theme := opts.theme()

	highlight := make(map[board.Square]color.RGBA)
	if opts.LastMove.IsValid() && opts.LastMove.From != opts.LastMove.To {
		highlight[opts.LastMove.From] = theme.LastMoveColor
		highlight[opts.LastMove.To] = theme.LastMoveColor
	}
	for _, sq := range opts.Selected {
		highlight[sq] = theme.SelectedSquare
	}
	if opts.MarkCheck {
		for _, c := range []board.Color{board.White, board.Black} {
			if p.InCheck(c) {
				highlight[p.KingSquare(c)] = theme.CheckColor
			}
		}
	}

	canvas.Gid("squares")
	for sq := board.A8; sq < board.NoSquare; sq++ {
		base := theme.DarkSquare
		if sq.IsLight() {
			base = theme.LightSquare
		}
		if over, ok := highlight[sq]; ok {
			base = blend(base, over)
		}
		x, y := opts.squareOrigin(sq)
		canvas.Rect(x, y, s, s, "fill:"+hex(base))
	}
	canvas.Gend()

	if opts.Coordinates {
		drawCoordinates(canvas, opts, theme)
	}

	canvas.Gid("pieces")
	for sq := board.A8; sq < board.NoSquare; sq++ {
		x, y := opts.squareOrigin(sq)
		drawPiece(canvas, p.PieceAt(sq), x, y, s)
	}
	canvas.Gend()
}

func drawCoordinates(canvas *svg.SVG, opts Options, theme Theme) {
	s := opts.squareSize()
	style := fmt.Sprintf("font-family:sans-serif;font-size:%dpx;fill:%s", max(8, s/5), hex(theme.TextColor))
	for i := 0; i < 8; i++ {
		file, row := i, i
		if opts.Flip {
			file, row = 7-i, 7-i
		}
		canvas.Text(i*s+s-s/6, 8*s-s/20, string(rune('a'+file)), style)
		canvas.Text(s/20, i*s+s/4, fmt.Sprint(8-row), style)
	}
}

// blend composites over onto base using over's alpha.
func blend(base, over color.RGBA) color.RGBA {
	a := uint32(over.A)
	mix := func(b, o uint8) uint8 {
		return uint8((uint32(b)*(255-a) + uint32(o)*a) / 255)
	}
	return color.RGBA{mix(base.R, over.R), mix(base.G, over.G), mix(base.B, over.B), 255}
}

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// PieceSVG writes a single piece on a transparent size x size canvas.
func PieceSVG(w io.Writer, piece board.Piece, size int) {
	canvas := svg.New(w)
	canvas.Startview(size, size, 0, 0, size, size)
	drawPiece(canvas, piece, 0, 0, size)
	canvas.End()
}
