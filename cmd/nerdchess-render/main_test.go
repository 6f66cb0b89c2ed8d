package main

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/nerdchess/nerdchess/internal/board"
	"github.com/nerdchess/nerdchess/internal/testutil"
)

func defaults() config {
	return config{fen: board.StartFEN, size: 20, coords: true}
}

func TestRunText(t *testing.T) {
	var out bytes.Buffer
	testutil.AssertNoError(t, run(defaults(), strings.NewReader(""), &out, zerolog.Nop()))
	if !strings.Contains(out.String(), board.StartFEN) {
		t.Errorf("text output lacks the FEN:\n%s", out.String())
	}
}

func TestRunSVGFromPGN(t *testing.T) {
	cfg := defaults()
	cfg.pgn = "-"
	cfg.svgOut = "-"

	var out bytes.Buffer
	pgn := "[Event \"test\"]\n\n1. e4 e5 2. Nf3 *\n"
	testutil.AssertNoError(t, run(cfg, strings.NewReader(pgn), &out, zerolog.Nop()))
	if !strings.HasPrefix(strings.TrimSpace(out.String()), "<?xml") || !strings.Contains(out.String(), "</svg>") {
		t.Errorf("unexpected svg output:\n%s", out.String())
	}
}

func TestRunPNGFile(t *testing.T) {
	cfg := defaults()
	cfg.fen = "4k3/8/8/8/8/8/8/4K3 w - - 0 1"
	cfg.pngOut = filepath.Join(t.TempDir(), "board.png")

	testutil.AssertNoError(t, run(cfg, strings.NewReader(""), &bytes.Buffer{}, zerolog.Nop()))

	f, err := os.Open(cfg.pngOut)
	testutil.AssertNoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, img.Bounds().Dx(), 160)
}

func TestRunErrors(t *testing.T) {
	cfg := defaults()
	cfg.fen = "bad"
	testutil.AssertError(t, run(cfg, strings.NewReader(""), &bytes.Buffer{}, zerolog.Nop()))

	cfg = defaults()
	cfg.size = 0
	testutil.AssertError(t, run(cfg, strings.NewReader(""), &bytes.Buffer{}, zerolog.Nop()))

	cfg = defaults()
	cfg.pgn = "-"
	testutil.AssertError(t, run(cfg, strings.NewReader(""), &bytes.Buffer{}, zerolog.Nop()))
}
