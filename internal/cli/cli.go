// Package cli holds the flag set and wiring shared by the NerdChess binaries.
package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/nerdchess/nerdchess/internal/board"
	"github.com/nerdchess/nerdchess/internal/book"
	"github.com/nerdchess/nerdchess/internal/engine"
	"github.com/nerdchess/nerdchess/internal/storage"
)

// Flags are the engine and storage settings common to every binary.
type Flags struct {
	DataDir    string
	Depth      int
	Difficulty string
	Color      string
	LogLevel   string
	NoBook     bool
	Parallel   bool
	KingSafety bool
}

// Register adds the common flags to fs.
func (f *Flags) Register(fs *flag.FlagSet) {
	fs.StringVar(&f.DataDir, "data-dir", "", "database directory (default: platform data dir)")
	fs.IntVar(&f.Depth, "depth", 0, "fixed search depth in plies (0 = use difficulty)")
	fs.StringVar(&f.Difficulty, "difficulty", "", "easy, medium or hard (default: saved preference)")
	fs.StringVar(&f.Color, "color", "", "colour played by the human: white or black")
	fs.StringVar(&f.LogLevel, "log-level", "info", "log level: debug, info, warn, error")
	fs.BoolVar(&f.NoBook, "no-book", false, "disable the opening book")
	fs.BoolVar(&f.Parallel, "parallel", true, "search root moves concurrently")
	fs.BoolVar(&f.KingSafety, "king-safety", true, "include king safety in the evaluation")
}

// Logger returns a console logger writing to w at the configured level.
func (f *Flags) Logger(w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(f.LogLevel))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("log level: %w", err)
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}).
		Level(level).
		With().Timestamp().Logger(), nil
}

// HumanColor parses the --color flag, falling back to the saved preference.
func (f *Flags) HumanColor(prefs *storage.UserPreferences) (board.Color, error) {
	switch strings.ToLower(f.Color) {
	case "white", "w":
		return board.White, nil
	case "black", "b":
		return board.Black, nil
	case "":
		if prefs != nil && prefs.PlayerColor == storage.ColorBlack {
			return board.Black, nil
		}
		return board.White, nil
	default:
		return board.White, fmt.Errorf("unknown colour %q", f.Color)
	}
}

// OpenStorage opens the database in --data-dir or the platform directory.
func (f *Flags) OpenStorage(logger zerolog.Logger) (*storage.Storage, error) {
	if f.DataDir != "" {
		return storage.Open(f.DataDir, storage.WithLogger(logger))
	}
	return storage.NewStorage(storage.WithLogger(logger))
}

// Engine builds an engine from the flags. Saved preferences, when given,
// fill in what the flags leave unset, and learned book moves from store are
// merged into the built-in book.
func (f *Flags) Engine(logger zerolog.Logger, prefs *storage.UserPreferences, store *storage.Storage) (*engine.Engine, error) {
	difficulty := engine.Medium
	name := f.Difficulty
	if name == "" && prefs != nil {
		name = prefs.Difficulty
	}
	if name != "" {
		d, err := engine.ParseDifficulty(strings.ToLower(name))
		if err != nil {
			return nil, err
		}
		difficulty = d
	}

	depth := f.Depth
	if depth == 0 && prefs != nil {
		depth = prefs.Depth
	}
	if depth < 0 {
		return nil, fmt.Errorf("depth %d out of range", depth)
	}

	cfg := engine.DefaultEvalConfig()
	cfg.KingSafety = f.KingSafety

	useBook := !f.NoBook
	if prefs != nil && !prefs.UseBook {
		useBook = false
	}

	opts := []engine.Option{
		engine.WithLogger(logger.With().Str("component", "engine").Logger()),
		engine.WithDifficulty(difficulty),
		engine.WithDepth(depth),
		engine.WithParallel(f.Parallel),
		engine.WithEvalConfig(cfg),
	}
	if useBook {
		b := book.Default()
		if store != nil {
			n, err := store.LoadBook(b)
			if err != nil {
				logger.Warn().Err(err).Msg("learned book moves not loaded")
			} else if n > 0 {
				logger.Debug().Int("moves", n).Msg("learned book moves loaded")
			}
		}
		opts = append(opts, engine.WithBook(b))
	}
	return engine.NewEngine(opts...), nil
}
