package ui

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"

	"github.com/nerdchess/nerdchess/internal/board"
	"github.com/nerdchess/nerdchess/internal/render"
)

// SpriteManager holds the piece images, rasterized once at startup.
type SpriteManager struct {
	pieces      map[board.Piece]*ebiten.Image
	size        int
	renderScale float64 // pieces are rasterized larger and scaled down
}

// NewSpriteManager rasterizes every piece at the given square size.
func NewSpriteManager(size int, logger zerolog.Logger) *SpriteManager {
	sm := &SpriteManager{
		pieces:      make(map[board.Piece]*ebiten.Image),
		size:        size,
		renderScale: 2.0,
	}
	renderSize := int(float64(size) * sm.renderScale)
	for c := board.White; c <= board.Black; c++ {
		for pt := board.Pawn; pt <= board.King; pt++ {
			piece := board.NewPiece(pt, c)
			img, err := render.PieceImage(piece, renderSize)
			if err != nil {
				logger.Warn().Err(err).Str("piece", piece.String()).Msg("piece sprite not rendered")
				continue
			}
			sm.pieces[piece] = ebiten.NewImageFromImage(img)
		}
	}
	return sm
}

// Piece returns the sprite for a piece, nil if it failed to render.
func (sm *SpriteManager) Piece(p board.Piece) *ebiten.Image {
	return sm.pieces[p]
}

// DrawPieceAt draws a piece with its top-left corner at x, y.
func (sm *SpriteManager) DrawPieceAt(screen *ebiten.Image, p board.Piece, x, y float64) {
	sprite := sm.pieces[p]
	if sprite == nil {
		return
	}
	op := &ebiten.DrawImageOptions{}
	scale := 1.0 / sm.renderScale
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(x, y)
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(sprite, op)
}

// Size returns the size of piece sprites.
func (sm *SpriteManager) Size() int {
	return sm.size
}
