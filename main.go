// Command nerdchess plays NerdChess in a window.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"

	"github.com/nerdchess/nerdchess/internal/cli"
	"github.com/nerdchess/nerdchess/internal/game"
	"github.com/nerdchess/nerdchess/internal/storage"
	"github.com/nerdchess/nerdchess/internal/ui"
)

func main() {
	var (
		flags  cli.Flags
		fen    = flag.String("fen", "", "start from this position")
		resume = flag.Bool("resume", false, "continue the most recent unfinished game")
		hvh    = flag.Bool("hvh", false, "two humans on one board")
	)
	flags.Register(flag.CommandLine)
	flag.Parse()

	logger, err := flags.Logger(os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if err := run(&flags, logger, *fen, *resume, *hvh); err != nil {
		logger.Fatal().Err(err).Msg("nerdchess")
	}
}

func run(flags *cli.Flags, logger zerolog.Logger, fen string, resume, hvh bool) error {
	store, err := flags.OpenStorage(logger.With().Str("component", "storage").Logger())
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
	eng, err := flags.Engine(logger, prefs, store)
	if err != nil {
		return err
	}

	opts := []game.Option{game.WithLogger(logger.With().Str("component", "game").Logger())}
	if hvh || prefs.GameMode == storage.ModeHumanVsHuman {
		opts = append(opts, game.WithHumans(true, true))
	}

	var g *game.Game
	if resume {
		g, err = game.ResumeLatest(store, eng, opts...)
	} else {
		if fen != "" {
			opts = append(opts, game.WithFEN(fen))
		}
		g, err = game.New(eng, human, opts...)
	}
	if err != nil {
		return err
	}

	app := ui.NewApp(g,
		ui.WithEngine(eng),
		ui.WithStore(store),
		ui.WithPreferences(prefs),
		ui.WithLogger(logger.With().Str("component", "ui").Logger()),
	)
	defer app.Close()

	ebiten.SetWindowSize(ui.ScreenWidth, ui.ScreenHeight)
	ebiten.SetWindowTitle("NerdChess")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(app); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
