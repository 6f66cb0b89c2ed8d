package game

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nerdchess/nerdchess/internal/board"
	"github.com/nerdchess/nerdchess/internal/book"
	"github.com/nerdchess/nerdchess/internal/engine"
	"github.com/nerdchess/nerdchess/internal/storage"
	"github.com/nerdchess/nerdchess/internal/testutil"
)

func newTestGame(t *testing.T, human board.Color, opts ...Option) *Game {
	t.Helper()
	eng := engine.NewEngine(engine.WithBook(book.Default()), engine.WithDifficulty(engine.Easy))
	g, err := New(eng, human, opts...)
	testutil.AssertNoError(t, err)
	return g
}

func moveCursorTo(g *Game, sq board.Square) {
	for g.Cursor().Row() > sq.Row() {
		g.MoveCursor(Up)
	}
	for g.Cursor().Row() < sq.Row() {
		g.MoveCursor(Down)
	}
	for g.Cursor().File() > sq.File() {
		g.MoveCursor(Left)
	}
	for g.Cursor().File() < sq.File() {
		g.MoveCursor(Right)
	}
}

func TestCursorStaysOnBoard(t *testing.T) {
	g := newTestGame(t, board.White)
	testutil.AssertEqual(t, g.Cursor(), board.E2)

	g.SetCursor(board.A8)
	g.MoveCursor(Up)
	g.MoveCursor(Left)
	testutil.AssertEqual(t, g.Cursor(), board.A8)

	g.SetCursor(board.H1)
	g.MoveCursor(Down)
	g.MoveCursor(Right)
	testutil.AssertEqual(t, g.Cursor(), board.H1)

	// No wrap from the h-file onto the next row.
	g.SetCursor(board.H5)
	g.MoveCursor(Right)
	testutil.AssertEqual(t, g.Cursor(), board.H5)

	g.SetCursor(board.NoSquare)
	testutil.AssertEqual(t, g.Cursor(), board.H5)
}

func TestSelectAndPlay(t *testing.T) {
	g := newTestGame(t, board.White)
	testutil.AssertEqual(t, g.Phase(), SelectPiece)

	played, err := g.Select() // e2
	testutil.AssertNoError(t, err)
	testutil.AssertFalse(t, played)
	testutil.AssertEqual(t, g.Selected(), board.E2)
	testutil.AssertEqual(t, g.Phase(), SelectSquare)
	testutil.AssertEqual(t, g.Targets(), []board.Square{board.E4, board.E3})

	moveCursorTo(g, board.E4)
	played, err = g.Select()
	testutil.AssertNoError(t, err)
	testutil.AssertTrue(t, played)
	testutil.AssertEqual(t, g.Phase(), EngineTurn)
	testutil.AssertEqual(t, g.LastMove(), board.NewMove(board.E2, board.E4))

	_, err = g.Select()
	if !errors.Is(err, ErrNotYourTurn) {
		t.Errorf("Select() on the engine's turn error = %v, want ErrNotYourTurn", err)
	}

	reply, err := g.EngineMove(context.Background())
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, reply, board.NewMove(board.E7, board.E5))
	testutil.AssertEqual(t, g.SideToMove(), board.White)
	testutil.AssertEqual(t, len(g.History()), 2)
}

func TestSelectToggleAndReselect(t *testing.T) {
	g := newTestGame(t, board.White)

	_, err := g.Select()
	testutil.AssertNoError(t, err)
	_, err = g.Select()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, g.Selected(), board.NoSquare)

	_, err = g.Select()
	testutil.AssertNoError(t, err)
	g.SetCursor(board.G1)
	_, err = g.Select()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, g.Selected(), board.G1)
}

func TestIllegalMoves(t *testing.T) {
	g := newTestGame(t, board.White)

	g.SetCursor(board.E4)
	if _, err := g.Select(); !errors.Is(err, ErrIllegalMove) {
		t.Errorf("selecting an empty square error = %v, want ErrIllegalMove", err)
	}

	tests := []board.Move{
		board.NewMove(board.E2, board.E5),
		board.NewMove(board.E7, board.E5),
		board.NewMove(board.E4, board.E5),
		board.NewMove(board.A1, board.A3),
		board.NoMove,
	}
	for _, m := range tests {
		if err := g.Play(m); !errors.Is(err, ErrIllegalMove) {
			t.Errorf("Play(%s) error = %v, want ErrIllegalMove", m, err)
		}
	}
	testutil.AssertEqual(t, len(g.History()), 0)

	if err := g.PlayUCI("e2"); !errors.Is(err, ErrIllegalMove) {
		t.Errorf("PlayUCI(e2) error = %v, want ErrIllegalMove", err)
	}
}

func TestCheckmateEndsGame(t *testing.T) {
	g, err := New(nil, board.White, WithFEN("7k/6pp/8/8/8/8/8/R5K1 w - - 0 1"))
	testutil.AssertNoError(t, err)

	testutil.AssertNoError(t, g.PlayUCI("a1a8"))
	testutil.AssertEqual(t, g.Outcome(), Outcome{Result: "1-0", Reason: "checkmate"})
	testutil.AssertEqual(t, g.Phase(), Over)

	if err := g.PlayUCI("h8h7"); !errors.Is(err, ErrGameOver) {
		t.Errorf("Play() after mate error = %v, want ErrGameOver", err)
	}
	if _, err := g.Select(); !errors.Is(err, ErrGameOver) {
		t.Errorf("Select() after mate error = %v, want ErrGameOver", err)
	}
}

func TestKingCaptureEndsGame(t *testing.T) {
	g, err := New(nil, board.White, WithFEN("4k3/8/8/8/8/8/8/4R1K1 w - - 0 1"))
	testutil.AssertNoError(t, err)

	testutil.AssertNoError(t, g.PlayUCI("e1e8"))
	testutil.AssertEqual(t, g.Outcome(), Outcome{Result: "1-0", Reason: "king captured"})
}

func TestNoMovesEndsGame(t *testing.T) {
	g, err := New(nil, board.White, WithFEN("k7/8/8/8/8/8/5q2/7K w - - 0 1"))
	testutil.AssertNoError(t, err)
	testutil.AssertTrue(t, g.IsOver())
	testutil.AssertEqual(t, g.Outcome(), Outcome{Result: "1/2-1/2", Reason: "no moves"})
}

func TestEngineNeedsEngine(t *testing.T) {
	_, err := New(nil, board.White, WithHumans(true, false))
	testutil.AssertError(t, err)

	_, err = New(nil, board.White, WithFEN("not a fen"))
	testutil.AssertError(t, err)
}

func TestEnginePlaysWhite(t *testing.T) {
	g := newTestGame(t, board.Black)
	testutil.AssertEqual(t, g.Phase(), EngineTurn)
	testutil.AssertFalse(t, g.IsHuman(board.White))

	m, err := g.EngineMove(context.Background())
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, m, board.NewMove(board.E2, board.E4))
	testutil.AssertEqual(t, g.Phase(), SelectPiece)
}

func TestUndo(t *testing.T) {
	g := newTestGame(t, board.White)
	testutil.AssertFalse(t, g.Undo())

	testutil.AssertNoError(t, g.PlayUCI("e2e4"))
	_, err := g.EngineMove(context.Background())
	testutil.AssertNoError(t, err)

	testutil.AssertTrue(t, g.Undo())
	testutil.AssertEqual(t, len(g.History()), 0)
	testutil.AssertEqual(t, g.SideToMove(), board.White)
	testutil.AssertEqual(t, g.Position(), board.NewPosition())
}

func TestResign(t *testing.T) {
	g := newTestGame(t, board.White)
	g.Resign(board.White)
	testutil.AssertEqual(t, g.Outcome().Result, "0-1")

	// The first result stands.
	g.Resign(board.Black)
	testutil.AssertEqual(t, g.Outcome().Result, "0-1")
}

func TestRecordAndResume(t *testing.T) {
	g := newTestGame(t, board.White)
	testutil.AssertNoError(t, g.PlayUCI("e2e4"))
	_, err := g.EngineMove(context.Background())
	testutil.AssertNoError(t, err)

	rec := g.Record()
	testutil.AssertEqual(t, rec.Moves, []string{"e2e4", "e7e5"})
	testutil.AssertEqual(t, rec.Mode, storage.ModeHumanVsComputer)
	testutil.AssertEqual(t, rec.HumanColor, storage.ColorWhite)
	testutil.AssertEqual(t, rec.Difficulty, "easy")
	testutil.AssertEqual(t, rec.Result, "*")
	if !strings.Contains(rec.PGN, "e4") || !strings.Contains(rec.PGN, `[Black "NerdChess"]`) {
		t.Errorf("unexpected PGN:\n%s", rec.PGN)
	}

	resumed, err := Resume(g.Engine(), &rec)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, resumed.Position(), g.Position())
	testutil.AssertEqual(t, resumed.History(), g.History())
	testutil.AssertEqual(t, resumed.SideToMove(), board.White)
}

func TestSave(t *testing.T) {
	store, err := storage.Open("", storage.InMemory())
	testutil.AssertNoError(t, err)
	defer store.Close()

	g := newTestGame(t, board.White)
	testutil.AssertNoError(t, g.PlayUCI("d2d4"))

	// Unfinished games are stored without touching the statistics.
	rec, err := g.Save(store)
	testutil.AssertNoError(t, err)
	stats, err := store.LoadStats()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, stats.GamesPlayed, 0)

	g.Resign(board.Black)
	rec2, err := g.Save(store)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, rec2.ID, rec.ID)

	stats, err = store.LoadStats()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, stats.GamesPlayed, 1)
	testutil.AssertEqual(t, stats.Wins, 1)
	testutil.AssertEqual(t, stats.WinsByDiff["easy"], 1)

	games, err := store.ListGames()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, len(games), 1)
	testutil.AssertEqual(t, games[0].Result, "1-0")

	b := book.New()
	n, err := store.LoadBook(b)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, n, 1)
	start := board.NewPosition()
	m, ok := b.Probe(&start)
	testutil.AssertTrue(t, ok)
	testutil.AssertEqual(t, m, board.NewMove(board.D2, board.D4))
}

func TestSearchAndCommit(t *testing.T) {
	g := newTestGame(t, board.Black)
	m, err := g.SearchEngineMove(context.Background())
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, len(g.History()), 0)

	played, err := g.CommitEngineMove(m, nil)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, played, m)
	testutil.AssertEqual(t, g.SideToMove(), board.Black)

	_, err = g.CommitEngineMove(board.NoMove, engine.ErrNoMove)
	if !errors.Is(err, ErrGameOver) {
		t.Errorf("CommitEngineMove(ErrNoMove) error = %v, want ErrGameOver", err)
	}
	testutil.AssertEqual(t, g.Outcome(), Outcome{Result: "1/2-1/2", Reason: "no moves"})
}

func TestSANHistory(t *testing.T) {
	g, err := New(nil, board.White)
	testutil.AssertNoError(t, err)
	for _, m := range []string{"e2e4", "d7d5", "e4d5", "g8f6"} {
		testutil.AssertNoError(t, g.PlayUCI(m))
	}
	testutil.AssertEqual(t, g.SAN(), []string{"e4", "d5", "exd5", "Nf6"})
}

func TestResumeLatest(t *testing.T) {
	store, err := storage.Open("", storage.InMemory())
	testutil.AssertNoError(t, err)
	defer store.Close()

	_, err = ResumeLatest(store, nil)
	if !errors.Is(err, ErrNothingToResume) {
		t.Fatalf("err = %v, want ErrNothingToResume", err)
	}

	g := newTestGame(t, board.White)
	testutil.AssertNoError(t, g.PlayUCI("d2d4"))
	_, err = g.Save(store)
	testutil.AssertNoError(t, err)

	// A game against the computer needs an engine.
	_, err = ResumeLatest(store, nil)
	if !errors.Is(err, ErrNothingToResume) {
		t.Fatalf("err = %v, want ErrNothingToResume", err)
	}

	resumed, err := ResumeLatest(store, g.Engine())
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, resumed.History(), g.History())
	testutil.AssertEqual(t, resumed.SideToMove(), board.Black)
}
