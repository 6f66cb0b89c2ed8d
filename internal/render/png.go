package render

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	xdraw "golang.org/x/image/draw"

	"github.com/nerdchess/nerdchess/internal/board"
)

// renderScale supersamples rasterization; the result is scaled down to the
// requested size for smoother edges.
const renderScale = 2

// rasterize renders an SVG document to a size x size image.
func rasterize(doc []byte, size int) (*image.RGBA, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(doc), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("parsing svg: %w", err)
	}

	hi := size * renderScale
	icon.SetTarget(0, 0, float64(hi), float64(hi))
	big := image.NewRGBA(image.Rect(0, 0, hi, hi))
	scanner := rasterx.NewScannerGV(hi, hi, big, big.Bounds())
	raster := rasterx.NewDasher(hi, hi, scanner)
	icon.Draw(raster, 1.0)

	out := image.NewRGBA(image.Rect(0, 0, size, size))
	xdraw.CatmullRom.Scale(out, out.Bounds(), big, big.Bounds(), xdraw.Src, nil)
	return out, nil
}

// Image renders the position to an RGBA image of 8*SquareSize pixels a side.
// Coordinates are not drawn on raster output.
func Image(p *board.Position, opts Options) (*image.RGBA, error) {
	opts.Coordinates = false
	var buf bytes.Buffer
	SVG(&buf, p, opts)
	return rasterize(buf.Bytes(), 8*opts.squareSize())
}

// PNG writes the position as a PNG image.
func PNG(w io.Writer, p *board.Position, opts Options) error {
	img, err := Image(p, opts)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// PieceImage renders a single piece to a size x size image with a
// transparent background.
func PieceImage(piece board.Piece, size int) (*image.RGBA, error) {
	if piece == board.NoPiece {
		return nil, fmt.Errorf("no piece to render")
	}
	var buf bytes.Buffer
	PieceSVG(&buf, piece, size*renderScale)
	return rasterize(buf.Bytes(), size)
}
