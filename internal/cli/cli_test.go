package cli

import (
	"bytes"
	"flag"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/nerdchess/nerdchess/internal/board"
	"github.com/nerdchess/nerdchess/internal/engine"
	"github.com/nerdchess/nerdchess/internal/storage"
	"github.com/nerdchess/nerdchess/internal/testutil"
)

func parse(t *testing.T, args ...string) *Flags {
	t.Helper()
	var f Flags
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f.Register(fs)
	testutil.AssertNoError(t, fs.Parse(args))
	return &f
}

func TestDefaults(t *testing.T) {
	f := parse(t)
	testutil.AssertEqual(t, f.LogLevel, "info")
	testutil.AssertTrue(t, f.Parallel)
	testutil.AssertTrue(t, f.KingSafety)

	eng, err := f.Engine(zerolog.Nop(), nil, nil)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, eng.Difficulty(), engine.Medium)
	testutil.AssertEqual(t, eng.Depth(), 3)
	if eng.Book() == nil {
		t.Error("expected the opening book")
	}
}

func TestFlagsOverridePreferences(t *testing.T) {
	prefs := storage.DefaultPreferences()
	prefs.Difficulty = "easy"
	prefs.PlayerColor = storage.ColorBlack

	f := parse(t)
	eng, err := f.Engine(zerolog.Nop(), prefs, nil)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, eng.Depth(), 2)
	c, err := f.HumanColor(prefs)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, c, board.Black)

	f = parse(t, "--difficulty", "hard", "--color", "white", "--no-book", "--king-safety=false")
	eng, err = f.Engine(zerolog.Nop(), prefs, nil)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, eng.Depth(), 4)
	testutil.AssertFalse(t, eng.EvalConfig().KingSafety)
	if eng.Book() != nil {
		t.Error("expected no book")
	}
	c, err = f.HumanColor(prefs)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, c, board.White)
}

func TestInvalidFlags(t *testing.T) {
	_, err := parse(t, "--difficulty", "grandmaster").Engine(zerolog.Nop(), nil, nil)
	testutil.AssertError(t, err)

	_, err = parse(t, "--depth", "-1").Engine(zerolog.Nop(), nil, nil)
	testutil.AssertError(t, err)

	_, err = parse(t, "--color", "green").HumanColor(nil)
	testutil.AssertError(t, err)

	_, err = parse(t, "--log-level", "loud").Logger(&bytes.Buffer{})
	testutil.AssertError(t, err)
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := parse(t, "--log-level", "warn").Logger(&buf)
	testutil.AssertNoError(t, err)

	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("unexpected log output: %q", buf.String())
	}
}

func TestLearnedMovesJoinBook(t *testing.T) {
	store, err := storage.Open("", storage.InMemory())
	testutil.AssertNoError(t, err)
	defer store.Close()

	start := board.NewPosition()
	key := start.BoardString()
	for range 2 {
		_, err := store.SaveBookMove(key, board.NewMove(board.D2, board.D4))
		testutil.AssertNoError(t, err)
	}

	eng, err := parse(t).Engine(zerolog.Nop(), nil, store)
	testutil.AssertNoError(t, err)
	m, ok := eng.Book().Probe(&start)
	testutil.AssertTrue(t, ok)
	testutil.AssertEqual(t, m, board.NewMove(board.D2, board.D4))
}
