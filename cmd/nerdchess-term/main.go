// Command nerdchess-term plays NerdChess full screen in the terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"

	"github.com/nerdchess/nerdchess/internal/board"
	"github.com/nerdchess/nerdchess/internal/cli"
	"github.com/nerdchess/nerdchess/internal/engine"
	"github.com/nerdchess/nerdchess/internal/game"
	"github.com/nerdchess/nerdchess/internal/storage"
	"github.com/nerdchess/nerdchess/internal/term"
)

func main() {
	var (
		flags   cli.Flags
		logFile = flag.String("log-file", "", "write logs to this file (the screen is in use)")
		fen     = flag.String("fen", "", "start from this position")
		resume  = flag.Bool("resume", false, "continue the most recent unfinished game")
		hvh     = flag.Bool("hvh", false, "two humans, no engine")
		flip    = flag.Bool("flip", false, "draw the board with Black at the bottom")
	)
	flags.Register(flag.CommandLine)
	flag.Parse()

	var logOut io.Writer = io.Discard
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	}
	logger, err := flags.Logger(logOut)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, &flags, logger, *fen, *resume, *hvh, *flip); err != nil {
		logger.Error().Err(err).Msg("nerdchess-term")
		fmt.Fprintln(os.Stderr, "nerdchess:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, flags *cli.Flags, logger zerolog.Logger, fen string, resume, hvh, flip bool) error {
	store, err := flags.OpenStorage(logger)
	if err != nil {
		return err
	}
	defer store.Close()

	prefs, err := store.LoadPreferences()
	if err != nil {
		return err
	}
	human, err := flags.HumanColor(prefs)
	if err != nil {
		return err
	}

	var eng *engine.Engine
	if !hvh {
		if eng, err = flags.Engine(logger, prefs, store); err != nil {
			return err
		}
	}

	g, err := newGame(store, eng, human, logger, fen, resume)
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	app := term.New(screen, g,
		term.WithStore(store),
		term.WithLogger(logger.With().Str("component", "term").Logger()),
		term.WithFlip(flip || human == board.Black),
	)
	if err := app.Run(ctx); err != nil {
		return err
	}

	prefs.PlayerColor = storage.ColorWhite
	if human == board.Black {
		prefs.PlayerColor = storage.ColorBlack
	}
	prefs.GameMode = storage.ModeHumanVsComputer
	if hvh {
		prefs.GameMode = storage.ModeHumanVsHuman
	}
	if eng != nil {
		prefs.Difficulty = eng.Difficulty().String()
	}
	return store.SavePreferences(prefs)
}

// newGame resumes the latest unfinished game or starts a new one.
func newGame(store *storage.Storage, eng *engine.Engine, human board.Color, logger zerolog.Logger, fen string, resume bool) (*game.Game, error) {
	opts := []game.Option{game.WithLogger(logger.With().Str("component", "game").Logger())}
	if eng == nil {
		opts = append(opts, game.WithHumans(true, true))
	}

	if resume {
		return game.ResumeLatest(store, eng, opts...)
	}

	if fen != "" {
		opts = append(opts, game.WithFEN(fen))
	}
	return game.New(eng, human, opts...)
}
