package render

import (
	"bytes"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/nerdchess/nerdchess/internal/board"
	"github.com/nerdchess/nerdchess/internal/testutil"
)

func TestTextPlain(t *testing.T) {
	pos := board.NewPosition()
	out := Text(&pos, TextOptions{Cursor: board.NoSquare, Selected: board.NoSquare})
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")

	testutil.AssertEqual(t, len(lines), 8)
	testutil.AssertEqual(t, lines[0], " r  n  b  q  k  b  n  r ")
	testutil.AssertEqual(t, lines[4], " .  .  .  .  .  .  .  . ")
	testutil.AssertEqual(t, lines[7], " R  N  B  Q  K  B  N  R ")
}

func TestTextCursorAndSelection(t *testing.T) {
	pos := board.NewPosition()
	out := Text(&pos, TextOptions{Cursor: board.E4, Selected: board.E2, Labels: true})
	lines := strings.Split(out, "\n")

	testutil.AssertEqual(t, lines[4], "4  .  .  .  . [.] .  .  . ")
	testutil.AssertEqual(t, lines[6], "2  P  P  P  P (P) P  P  P ")
	testutil.AssertEqual(t, lines[8], "   a  b  c  d  e  f  g  h")
}

func TestTextANSI(t *testing.T) {
	pos := board.NewPosition()
	out := Text(&pos, TextOptions{ANSI: true, Cursor: board.A8, Selected: board.NoSquare})

	if !strings.HasPrefix(out, ansiCursor+ansiBlackPiece+"r "+ansiReset) {
		t.Errorf("expected highlighted cursor on a8, got %q", out[:20])
	}
	if !strings.Contains(out, ansiWhitePiece+"K ") {
		t.Error("expected the white king in white")
	}
	testutil.AssertEqual(t, strings.Count(out, "\n"), 8)
}

func TestSVG(t *testing.T) {
	pos := board.NewPosition()
	var buf bytes.Buffer
	SVG(&buf, &pos, Options{SquareSize: 40, Coordinates: true, LastMove: board.NewMove(board.E2, board.E4), MarkCheck: true})
	out := buf.String()

	if !strings.Contains(out, "<svg") || !strings.Contains(out, "</svg>") {
		t.Fatalf("not an SVG document:\n%s", out)
	}
	testutil.AssertEqual(t, strings.Count(out, "<rect"), 64)
	if !strings.Contains(out, `viewBox="0 0 320 320"`) {
		t.Error("expected a 320x320 view box")
	}
	if strings.Count(out, "<text") != 16 {
		t.Errorf("expected 16 coordinate labels, got %d", strings.Count(out, "<text"))
	}
	if !strings.Contains(out, "<polygon") || !strings.Contains(out, "<circle") {
		t.Error("expected piece shapes")
	}
}

func TestPNG(t *testing.T) {
	pos := board.EmptyPosition()
	pos.Place(board.WhiteKing, board.E1)
	pos.Place(board.BlackKing, board.E8)

	var buf bytes.Buffer
	err := PNG(&buf, &pos, Options{SquareSize: 20})
	testutil.AssertNoError(t, err)

	img, err := png.Decode(&buf)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, img.Bounds().Dx(), 160)
	testutil.AssertEqual(t, img.Bounds().Dy(), 160)

	theme := DefaultTheme()
	// e4 is empty and light, a1 is empty and dark.
	assertNear(t, img.At(4*20+10, 4*20+10), theme.LightSquare)
	assertNear(t, img.At(10, 7*20+10), theme.DarkSquare)
}

func TestPieceImage(t *testing.T) {
	img, err := PieceImage(board.WhiteQueen, 32)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, img.Bounds().Dx(), 32)

	if _, _, _, a := img.At(0, 0).RGBA(); a != 0 {
		t.Error("piece images should have a transparent background")
	}

	opaque := 0
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a > 0 {
				opaque++
			}
		}
	}
	if opaque == 0 {
		t.Error("expected the queen to be drawn")
	}

	_, err = PieceImage(board.NoPiece, 32)
	testutil.AssertError(t, err)
}

func TestBlend(t *testing.T) {
	base := color.RGBA{100, 100, 100, 255}
	testutil.AssertEqual(t, blend(base, color.RGBA{200, 0, 50, 0}), base)
	testutil.AssertEqual(t, blend(base, color.RGBA{200, 0, 50, 255}), color.RGBA{200, 0, 50, 255})
}

func assertNear(t *testing.T, got color.Color, want color.RGBA) {
	t.Helper()
	r, g, b, _ := got.RGBA()
	near := func(v uint32, w uint8) bool {
		d := int(v>>8) - int(w)
		return d >= -3 && d <= 3
	}
	if !near(r, want.R) || !near(g, want.G) || !near(b, want.B) {
		t.Errorf("pixel = %v, want about %v", got, want)
	}
}
