package uci

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/nerdchess/nerdchess/internal/board"
	"github.com/nerdchess/nerdchess/internal/book"
	"github.com/nerdchess/nerdchess/internal/engine"
	"github.com/nerdchess/nerdchess/internal/testutil"
)

func runCommands(t *testing.T, eng *engine.Engine, commands ...string) (*UCI, []string) {
	t.Helper()
	var out bytes.Buffer
	u := New(eng, &out, zerolog.Nop())
	err := u.Run(strings.NewReader(strings.Join(commands, "\n") + "\n"))
	testutil.AssertNoError(t, err)
	return u, strings.Split(strings.TrimSpace(out.String()), "\n")
}

func lastLine(lines []string, prefix string) string {
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.HasPrefix(lines[i], prefix) {
			return lines[i]
		}
	}
	return ""
}

func TestHandshake(t *testing.T) {
	_, lines := runCommands(t, engine.NewEngine(), "uci", "isready", "quit")

	testutil.AssertEqual(t, lines[0], "id name NerdChess")
	if lastLine(lines, "uciok") == "" {
		t.Error("missing uciok")
	}
	testutil.AssertEqual(t, lines[len(lines)-1], "readyok")
}

func TestGoDepthOne(t *testing.T) {
	_, lines := runCommands(t, engine.NewEngine(), "position startpos moves e2e4", "go depth 1", "quit")

	best := lastLine(lines, "bestmove ")
	if best == "" {
		t.Fatalf("no bestmove in output:\n%s", strings.Join(lines, "\n"))
	}
	m, err := board.ParseMove(strings.TrimPrefix(best, "bestmove "))
	testutil.AssertNoError(t, err)

	pos := board.NewPosition()
	pos.MovePiece(board.E2, board.E4)
	if !pos.PieceColorAt(m.From, board.Black) {
		t.Errorf("bestmove %s does not move a black piece", m)
	}
	if lastLine(lines, "info depth 1") == "" {
		t.Error("expected an info line for depth 1")
	}
}

func TestGoFindsMate(t *testing.T) {
	_, lines := runCommands(t, engine.NewEngine(engine.WithParallel(true)),
		"position fen 7k/6pp/8/8/8/8/8/R5K1 w - - 0 1",
		"go depth 2")

	testutil.AssertEqual(t, lastLine(lines, "bestmove"), "bestmove a1a8")
	if !strings.Contains(lastLine(lines, "info depth 2"), "score mate 1") {
		t.Errorf("expected mate score, got %q", lastLine(lines, "info depth 2"))
	}
}

func TestQuitStopsSearch(t *testing.T) {
	var out bytes.Buffer
	u := New(engine.NewEngine(engine.WithParallel(true)), &out, zerolog.Nop())
	cmds := "position fen k7/8/8/8/8/8/8/K7 w - - 0 1\ngo infinite\nquit\n"

	done := make(chan error, 1)
	go func() { done <- u.Run(strings.NewReader(cmds)) }()

	select {
	case err := <-done:
		testutil.AssertNoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("quit did not stop the search")
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if lastLine(lines, "bestmove ") == "" {
		t.Errorf("no bestmove after quit:\n%s", out.String())
	}
	if lastLine(lines, "info depth 1") == "" {
		t.Error("expected the first iteration to complete")
	}
}

func TestGoBookMove(t *testing.T) {
	eng := engine.NewEngine(engine.WithBook(book.Default()))
	_, lines := runCommands(t, eng, "position startpos", "go wtime 1000 btime 1000", "quit")

	testutil.AssertEqual(t, lastLine(lines, "bestmove"), "bestmove e2e4")
	testutil.AssertEqual(t, lastLine(lines, "info string"), "info string book move e2e4")
}

func TestGoPromotionSuffix(t *testing.T) {
	_, lines := runCommands(t, engine.NewEngine(), "position fen k7/7P/8/8/8/8/8/K7 w - - 0 1", "go depth 1", "quit")
	testutil.AssertEqual(t, lastLine(lines, "bestmove"), "bestmove h7h8q")
}

func TestPosition(t *testing.T) {
	tests := []struct {
		name     string
		args     string
		wantFEN  string
		wantSide board.Color
	}{
		{"startpos", "startpos", board.StartFEN, board.White},
		{"startpos moves", "startpos moves e2e4 e7e5", "rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w", board.White},
		{"fen", "fen 4k3/8/8/8/8/8/8/4K3 b - - 0 1", "4k3/8/8/8/8/8/8/4K3 b", board.Black},
		{"fen moves", "fen 4k3/8/8/8/8/8/8/4K3 b - - 0 1 moves e8d8", "3k4/8/8/8/8/8/8/4K3 w", board.White},
		{"castling", "fen r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1 moves e1g1 e8c8", "2kr3r/8/8/8/8/8/8/R4RK1 w", board.White},
		{"illegal move stops", "startpos moves e2e4 e2e4", "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b", board.Black},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := New(engine.NewEngine(), &bytes.Buffer{}, zerolog.Nop())
			u.handlePosition(strings.Fields(tt.args))
			if got := u.position.FEN(u.side); !strings.HasPrefix(got, tt.wantFEN) {
				t.Errorf("FEN = %q, want prefix %q", got, tt.wantFEN)
			}
			testutil.AssertEqual(t, u.side, tt.wantSide)
		})
	}
}

func TestParseGoOptions(t *testing.T) {
	opts := parseGoOptions(strings.Fields("wtime 60000 btime 30000 winc 1000 binc 500 movestogo 20 depth 4"))
	testutil.AssertEqual(t, opts, GoOptions{
		Depth:     4,
		WTime:     time.Minute,
		BTime:     30 * time.Second,
		WInc:      time.Second,
		BInc:      500 * time.Millisecond,
		MovesToGo: 20,
	})

	limits := calculateLimits(parseGoOptions([]string{"infinite"}))
	testutil.AssertEqual(t, limits, engine.Limits{Depth: infiniteDepth})

	limits = calculateLimits(parseGoOptions(strings.Fields("movetime 250")))
	testutil.AssertEqual(t, limits.MoveTime, 250*time.Millisecond)
}

func TestSetOption(t *testing.T) {
	eng := engine.NewEngine()
	runCommands(t, eng,
		"setoption name Difficulty value hard",
		"setoption name KingSafety value false",
		"setoption name Parallel value true",
		"setoption name OwnBook value true",
		"quit")

	testutil.AssertEqual(t, eng.Difficulty(), engine.Hard)
	testutil.AssertFalse(t, eng.EvalConfig().KingSafety)
	testutil.AssertTrue(t, eng.Parallel())
	if eng.Book() == nil {
		t.Error("expected the built-in book")
	}

	runCommands(t, eng, "setoption name Depth value 2", "setoption name OwnBook value false")
	testutil.AssertEqual(t, eng.Depth(), 2)
	if eng.Book() != nil {
		t.Error("expected the book to be disabled")
	}
}

func TestDebugCommands(t *testing.T) {
	_, lines := runCommands(t, engine.NewEngine(), "eval", "perft 2", "d", "bogus")

	testutil.AssertEqual(t, lastLine(lines, "Evaluation"), "Evaluation: +0.00 (0 cp)")
	testutil.AssertEqual(t, lastLine(lines, "Nodes"), "Nodes: 400")
	testutil.AssertEqual(t, lastLine(lines, "Fen"), "Fen: "+board.StartFEN)
	start := board.NewPosition()
	testutil.AssertEqual(t, lastLine(lines, "Key"), fmt.Sprintf("Key: %016X", start.Hash(board.White)))
	testutil.AssertEqual(t, lastLine(lines, "info string"), "info string Unknown command: bogus")
}
