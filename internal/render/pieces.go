package render

import (
	"strconv"

	svg "github.com/ajstarks/svgo"

	"github.com/nerdchess/nerdchess/internal/board"
)

// Piece silhouettes on a 100x100 grid.

type circle struct{ x, y, r int }

type shape struct {
	polygons [][]int // flattened x,y pairs
	circles  []circle
}

var pieceShapes = [board.NoPieceType]shape{
	board.Pawn: {
		polygons: [][]int{{30, 86, 70, 86, 62, 52, 38, 52}},
		circles:  []circle{{50, 36, 13}},
	},
	board.Knight: {
		polygons: [][]int{{28, 86, 76, 86, 72, 58, 66, 34, 54, 18, 46, 14, 44, 24, 30, 38, 22, 56, 30, 62, 44, 52, 42, 64}},
	},
	board.Bishop: {
		polygons: [][]int{
			{50, 22, 65, 42, 60, 64, 40, 64, 35, 42},
			{28, 86, 72, 86, 66, 70, 34, 70},
		},
		circles: []circle{{50, 15, 6}},
	},
	board.Rook: {
		polygons: [][]int{{24, 86, 76, 86, 76, 76, 68, 76, 65, 40, 72, 40, 72, 18, 62, 18, 62, 26, 55, 26, 55, 18, 45, 18, 45, 26, 38, 26, 38, 18, 28, 18, 28, 40, 35, 40, 32, 76, 24, 76}},
	},
	board.Queen: {
		polygons: [][]int{
			{26, 78, 74, 78, 84, 30, 66, 54, 58, 22, 50, 52, 42, 22, 34, 54, 16, 30},
			{26, 86, 74, 86, 74, 78, 26, 78},
		},
		circles: []circle{{16, 28, 5}, {42, 20, 5}, {58, 20, 5}, {84, 28, 5}},
	},
	board.King: {
		polygons: [][]int{
			{46, 6, 54, 6, 54, 14, 62, 14, 62, 22, 54, 22, 54, 32, 46, 32, 46, 22, 38, 22, 38, 14, 46, 14},
			{24, 86, 76, 86, 71, 56, 60, 34, 40, 34, 29, 56},
		},
	},
}

func pieceStyle(c board.Color, strokeWidth int) string {
	if c == board.White {
		return "fill:#ffffff;stroke:#000000;stroke-width:" + strconv.Itoa(strokeWidth)
	}
	return "fill:#202020;stroke:#d8d8d8;stroke-width:" + strconv.Itoa(strokeWidth)
}

// drawPiece draws piece scaled into the size x size box at (x, y).
func drawPiece(canvas *svg.SVG, piece board.Piece, x, y, size int) {
	if piece == board.NoPiece {
		return
	}
	sh := pieceShapes[piece.Type()]
	scale := func(v int) int { return v * size / 100 }
	stroke := max(1, size/40)
	style := pieceStyle(piece.Color(), stroke)

	for _, poly := range sh.polygons {
		xs := make([]int, 0, len(poly)/2)
		ys := make([]int, 0, len(poly)/2)
		for i := 0; i+1 < len(poly); i += 2 {
			xs = append(xs, x+scale(poly[i]))
			ys = append(ys, y+scale(poly[i+1]))
		}
		canvas.Polygon(xs, ys, style)
	}
	for _, c := range sh.circles {
		canvas.Circle(x+scale(c.x), y+scale(c.y), max(1, scale(c.r)), style)
	}
}
