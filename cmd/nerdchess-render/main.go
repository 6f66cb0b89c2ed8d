// Command nerdchess-render draws a position as text, SVG or PNG. The position
// comes from --fen or from the final position of the first game in --pgn.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/nerdchess/nerdchess/internal/board"
	"github.com/nerdchess/nerdchess/internal/notation"
	"github.com/nerdchess/nerdchess/internal/render"
)

type config struct {
	fen      string
	pgn      string
	svgOut   string
	pngOut   string
	size     int
	flip     bool
	coords   bool
	ansi     bool
	logLevel string
}

func main() {
	var cfg config
	flag.StringVar(&cfg.fen, "fen", board.StartFEN, "position to draw")
	flag.StringVar(&cfg.pgn, "pgn", "", "PGN file whose final position is drawn (- for stdin)")
	flag.StringVar(&cfg.svgOut, "svg", "", "write an SVG image to this file (- for stdout)")
	flag.StringVar(&cfg.pngOut, "png", "", "write a PNG image to this file (- for stdout)")
	flag.IntVar(&cfg.size, "size", render.DefaultSquareSize, "square size in pixels")
	flag.BoolVar(&cfg.flip, "flip", false, "draw with Black at the bottom")
	flag.BoolVar(&cfg.coords, "coords", true, "draw coordinates in SVG output")
	flag.BoolVar(&cfg.ansi, "ansi", false, "colour the text board")
	flag.StringVar(&cfg.logLevel, "log-level", "info", "log level")
	flag.Parse()

	level, err := zerolog.ParseLevel(cfg.logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	if err := run(cfg, os.Stdin, os.Stdout, logger); err != nil {
		logger.Fatal().Err(err).Msg("nerdchess-render")
	}
}

func run(cfg config, stdin io.Reader, stdout io.Writer, logger zerolog.Logger) error {
	if cfg.size <= 0 {
		return fmt.Errorf("square size %d must be positive", cfg.size)
	}

	pos, side, last, err := loadPosition(cfg, stdin)
	if err != nil {
		return err
	}
	logger.Debug().Str("fen", pos.FEN(side)).Msg("position loaded")

	opts := render.Options{
		SquareSize:  cfg.size,
		Flip:        cfg.flip,
		Coordinates: cfg.coords,
		LastMove:    last,
		MarkCheck:   true,
	}

	wrote := false
	if cfg.svgOut != "" {
		if err := writeOutput(cfg.svgOut, stdout, func(w io.Writer) error {
			render.SVG(w, &pos, opts)
			return nil
		}); err != nil {
			return fmt.Errorf("svg: %w", err)
		}
		logger.Info().Str("file", cfg.svgOut).Msg("svg written")
		wrote = true
	}
	if cfg.pngOut != "" {
		if err := writeOutput(cfg.pngOut, stdout, func(w io.Writer) error {
			return render.PNG(w, &pos, opts)
		}); err != nil {
			return fmt.Errorf("png: %w", err)
		}
		logger.Info().Str("file", cfg.pngOut).Msg("png written")
		wrote = true
	}

	if !wrote {
		text := render.PlainText()
		text.ANSI = cfg.ansi
		fmt.Fprint(stdout, render.Text(&pos, text))
		fmt.Fprintln(stdout, pos.FEN(side))
	}
	return nil
}

// loadPosition returns the position to draw, its side to move and the
// move that led to it.
func loadPosition(cfg config, stdin io.Reader) (board.Position, board.Color, board.Move, error) {
	if cfg.pgn == "" {
		pos, side, err := board.ParseFEN(cfg.fen)
		return pos, side, board.NoMove, err
	}

	var r io.Reader = stdin
	if cfg.pgn != "-" {
		f, err := os.Open(cfg.pgn)
		if err != nil {
			return board.Position{}, board.NoColor, board.NoMove, err
		}
		defer f.Close()
		r = bufio.NewReader(f)
	}

	fen, moves, err := notation.ParsePGN(r)
	if err != nil {
		return board.Position{}, board.NoColor, board.NoMove, err
	}
	pos, side, err := notation.Replay(fen, moves)
	if err != nil {
		return board.Position{}, board.NoColor, board.NoMove, err
	}
	last := board.NoMove
	if len(moves) > 0 {
		last = moves[len(moves)-1]
	}
	return pos, side, last, nil
}

// writeOutput runs write against the named file, or stdout for "-".
func writeOutput(name string, stdout io.Writer, write func(io.Writer) error) (err error) {
	if name == "-" {
		return write(stdout)
	}
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	w := bufio.NewWriter(f)
	if err := write(w); err != nil {
		return err
	}
	return w.Flush()
}
