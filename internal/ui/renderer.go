package ui

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/rs/zerolog"

	"github.com/nerdchess/nerdchess/internal/board"
	"github.com/nerdchess/nerdchess/internal/render"
)

var (
	targetColor = color.RGBA{130, 151, 105, 200}
	cursorColor = color.RGBA{100, 149, 237, 255} // cornflower blue
)

// Highlights are the square overlays drawn under the pieces.
type Highlights struct {
	Selected board.Square
	Cursor   board.Square
	Check    board.Square
	LastMove board.Move
	Targets  []board.Square
}

// Renderer draws the board. It shares its colours with the image renderer.
type Renderer struct {
	sprites    *SpriteManager
	theme      render.Theme
	squareSize int
	flipped    bool
}

// NewRenderer creates a renderer for squares of squareSize pixels.
func NewRenderer(squareSize int, logger zerolog.Logger) *Renderer {
	return &Renderer{
		sprites:    NewSpriteManager(squareSize, logger),
		theme:      render.DefaultTheme(),
		squareSize: squareSize,
	}
}

// SetFlipped draws the board with Black at the bottom.
func (r *Renderer) SetFlipped(flipped bool) {
	r.flipped = flipped
}

// Flipped reports whether Black is at the bottom.
func (r *Renderer) Flipped() bool {
	return r.flipped
}

// DrawBoard draws the squares and the coordinate labels.
func (r *Renderer) DrawBoard(screen *ebiten.Image) {
	size := float32(r.squareSize)
	for sq := board.Square(0); sq < 64; sq++ {
		x, y := r.SquareToScreen(sq)
		c := r.theme.DarkSquare
		if sq.IsLight() {
			c = r.theme.LightSquare
		}
		vector.DrawFilledRect(screen, float32(x), float32(y), size, size, c, false)
	}
	r.drawCoordinates(screen)
}

// drawCoordinates labels files along the bottom edge and ranks along the
// left edge, in the colour of the opposite square.
func (r *Renderer) drawCoordinates(screen *ebiten.Image) {
	if coordFace == nil {
		return
	}
	for i := range 8 {
		file, row := i, i
		if r.flipped {
			file, row = 7-i, 7-i
		}

		sq := board.NewSquare(file, 7)
		if r.flipped {
			sq = board.NewSquare(file, 0)
		}
		label := string(rune('a' + file))
		w, h := MeasureText(label, coordFace)
		x, y := r.SquareToScreen(sq)
		r.drawLabel(screen, label, sq, float64(x+r.squareSize)-w-3, float64(y+r.squareSize)-h-2)

		sq = board.NewSquare(0, row)
		if r.flipped {
			sq = board.NewSquare(7, row)
		}
		x, y = r.SquareToScreen(sq)
		r.drawLabel(screen, string(rune('8'-row)), sq, float64(x)+3, float64(y)+2)
	}
}

func (r *Renderer) drawLabel(screen *ebiten.Image, label string, sq board.Square, x, y float64) {
	c := r.theme.LightSquare
	if sq.IsLight() {
		c = r.theme.DarkSquare
	}
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(c)
	text.Draw(screen, label, coordFace, op)
}

// DrawHighlights draws the last move, selection, check, cursor and the
// destinations of the selected piece. Destinations holding a piece get a
// ring, empty ones a dot.
func (r *Renderer) DrawHighlights(screen *ebiten.Image, pos *board.Position, h Highlights) {
	if h.LastMove != board.NoMove {
		r.highlightSquare(screen, h.LastMove.From, r.theme.LastMoveColor)
		r.highlightSquare(screen, h.LastMove.To, r.theme.LastMoveColor)
	}
	r.highlightSquare(screen, h.Selected, r.theme.SelectedSquare)
	r.highlightSquare(screen, h.Check, r.theme.CheckColor)

	half := float32(r.squareSize) / 2
	for _, sq := range h.Targets {
		x, y := r.SquareToScreen(sq)
		cx, cy := float32(x)+half, float32(y)+half
		if pos.PieceAt(sq) != board.NoPiece {
			vector.StrokeCircle(screen, cx, cy, half-4, 5, targetColor, true)
		} else {
			vector.DrawFilledCircle(screen, cx, cy, half*0.3, targetColor, true)
		}
	}

	if h.Cursor.IsValid() {
		x, y := r.SquareToScreen(h.Cursor)
		vector.StrokeRect(screen, float32(x)+2, float32(y)+2, float32(r.squareSize)-4, float32(r.squareSize)-4, 4, cursorColor, false)
	}
}

func (r *Renderer) highlightSquare(screen *ebiten.Image, sq board.Square, c color.RGBA) {
	if !sq.IsValid() {
		return
	}
	x, y := r.SquareToScreen(sq)
	vector.DrawFilledRect(screen, float32(x), float32(y), float32(r.squareSize), float32(r.squareSize), c, false)
}

// DrawPieces draws every piece, offset by any running shake animation.
func (r *Renderer) DrawPieces(screen *ebiten.Image, pos *board.Position, anims *AnimationManager) {
	for sq := board.Square(0); sq < 64; sq++ {
		piece := pos.PieceAt(sq)
		if piece == board.NoPiece {
			continue
		}
		x, y := r.SquareToScreen(sq)
		var dx, dy float64
		if anims != nil {
			dx, dy = anims.ShakeOffset(sq)
		}
		r.sprites.DrawPieceAt(screen, piece, float64(x)+dx, float64(y)+dy)
	}
}

// SquareToScreen returns the top-left corner of sq.
func (r *Renderer) SquareToScreen(sq board.Square) (int, int) {
	file, row := sq.File(), sq.Row()
	if r.flipped {
		file, row = 7-file, 7-row
	}
	return file * r.squareSize, row * r.squareSize
}

// ScreenToSquare returns the square under x, y, NoSquare off the board.
func (r *Renderer) ScreenToSquare(x, y int) board.Square {
	if x < 0 || y < 0 || x >= 8*r.squareSize || y >= 8*r.squareSize {
		return board.NoSquare
	}
	file, row := x/r.squareSize, y/r.squareSize
	if r.flipped {
		file, row = 7-file, 7-row
	}
	return board.NewSquare(file, row)
}

// SquareSize returns the size of one square in pixels.
func (r *Renderer) SquareSize() int {
	return r.squareSize
}
