// Command nerdchess-uci runs the engine behind the UCI protocol on
// stdin/stdout. Logs go to stderr.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime/pprof"

	"github.com/rs/zerolog"

	"github.com/nerdchess/nerdchess/internal/cli"
	"github.com/nerdchess/nerdchess/internal/storage"
	"github.com/nerdchess/nerdchess/internal/uci"
)

var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")

func main() {
	var flags cli.Flags
	flags.Register(flag.CommandLine)
	flag.Parse()

	logger, err := flags.Logger(os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if err := run(&flags, logger); err != nil {
		logger.Fatal().Err(err).Msg("nerdchess-uci")
	}
}

func run(flags *cli.Flags, logger zerolog.Logger) error {
	// Start CPU profiling if requested (via flag or environment variable)
	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			return fmt.Errorf("could not create CPU profile: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("could not start CPU profile: %w", err)
		}
		defer pprof.StopCPUProfile()
		logger.Info().Str("path", profilePath).Msg("CPU profiling enabled")
	}

	// Learned book moves are only read from an explicit database, so a GUI
	// holding the default one does not block the engine.
	var store *storage.Storage
	if flags.DataDir != "" {
		s, err := flags.OpenStorage(logger)
		if err != nil {
			return err
		}
		defer s.Close()
		store = s
	}

	eng, err := flags.Engine(logger, nil, store)
	if err != nil {
		return err
	}

	protocol := uci.New(eng, os.Stdout, logger.With().Str("component", "uci").Logger())
	return protocol.Run(os.Stdin)
}
