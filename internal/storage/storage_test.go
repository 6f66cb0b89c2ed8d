package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nerdchess/nerdchess/internal/board"
	"github.com/nerdchess/nerdchess/internal/book"
	"github.com/nerdchess/nerdchess/internal/testutil"
)

func openTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStorage(t *testing.T) {
	t.Run("DefaultPreferences", func(t *testing.T) {
		prefs := DefaultPreferences()
		if prefs.Username != "Player" {
			t.Errorf("Expected username 'Player', got '%s'", prefs.Username)
		}
		if prefs.Difficulty != "medium" {
			t.Errorf("Expected medium difficulty")
		}
		if !prefs.KingSafety {
			t.Errorf("Expected king safety on by default")
		}
	})

	t.Run("NewGameStats", func(t *testing.T) {
		stats := NewGameStats()
		if stats.GamesPlayed != 0 {
			t.Errorf("Expected 0 games played")
		}
		if stats.GetWinRate() != 0 {
			t.Errorf("Expected 0 win rate")
		}
	})

	t.Run("WinRate", func(t *testing.T) {
		stats := &GameStats{
			GamesPlayed: 10,
			Wins:        5,
			Losses:      3,
			Draws:       2,
		}
		rate := stats.GetWinRate()
		if rate != 50 {
			t.Errorf("Expected 50%% win rate, got %.2f%%", rate)
		}
	})
}

func TestPreferencesRoundTrip(t *testing.T) {
	s := openTestStorage(t)

	first, err := s.IsFirstLaunch()
	testutil.AssertNoError(t, err)
	testutil.AssertTrue(t, first, "fresh database should be a first launch")

	prefs, err := s.LoadPreferences()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, prefs.Difficulty, "medium")

	prefs.Difficulty = "hard"
	prefs.PlayerColor = ColorBlack
	prefs.Depth = 5
	testutil.AssertNoError(t, s.SavePreferences(prefs))
	testutil.AssertNoError(t, s.MarkFirstLaunchComplete())

	loaded, err := s.LoadPreferences()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, loaded.Difficulty, "hard")
	testutil.AssertEqual(t, loaded.PlayerColor, ColorBlack)
	testutil.AssertEqual(t, loaded.Depth, 5)

	first, err = s.IsFirstLaunch()
	testutil.AssertNoError(t, err)
	testutil.AssertFalse(t, first)
}

func TestRecordGame(t *testing.T) {
	s := openTestStorage(t)

	results := []GameResult{
		{Won: true, Mode: ModeHumanVsComputer, Difficulty: "easy", Duration: time.Minute},
		{Won: true, Mode: ModeHumanVsComputer, Difficulty: "easy", Duration: time.Minute},
		{Draw: true, Mode: ModeHumanVsHuman, Duration: time.Minute},
		{Mode: ModeHumanVsComputer, Difficulty: "hard", Duration: time.Minute},
	}
	for _, r := range results {
		testutil.AssertNoError(t, s.RecordGame(r))
	}

	stats, err := s.LoadStats()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, stats.GamesPlayed, 4)
	testutil.AssertEqual(t, stats.Wins, 2)
	testutil.AssertEqual(t, stats.Draws, 1)
	testutil.AssertEqual(t, stats.Losses, 1)
	testutil.AssertEqual(t, stats.LongestWinStrk, 2)
	testutil.AssertEqual(t, stats.CurrentStreak, 0)
	testutil.AssertEqual(t, stats.WinsByDiff, map[string]int{"easy": 2})
	testutil.AssertEqual(t, stats.WinsByMode, map[string]int{"hvc": 2})
	testutil.AssertEqual(t, stats.TotalPlayTime, 4*time.Minute)
}

func TestGameRecords(t *testing.T) {
	s := openTestStorage(t)

	start := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	older := &GameRecord{
		Started:  start,
		StartFEN: board.StartFEN,
		Moves:    []string{"e2e4", "e7e5"},
		Result:   "*",
	}
	newer := &GameRecord{
		Started:  start.Add(time.Hour),
		StartFEN: board.StartFEN,
		Moves:    []string{"d2d4"},
		Result:   "1-0",
	}
	testutil.AssertNoError(t, s.SaveGame(older))
	testutil.AssertNoError(t, s.SaveGame(newer))

	if older.ID == "" || older.ID == newer.ID {
		t.Fatalf("expected distinct IDs, got %q and %q", older.ID, newer.ID)
	}

	loaded, err := s.LoadGame(older.ID)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, loaded.Moves, older.Moves)
	testutil.AssertTrue(t, loaded.Started.Equal(start))

	games, err := s.ListGames()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, len(games), 2)
	testutil.AssertEqual(t, games[0].ID, newer.ID)

	testutil.AssertNoError(t, s.DeleteGame(older.ID))
	_, err = s.LoadGame(older.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadGame() after delete error = %v, want ErrNotFound", err)
	}
}

func TestLearnedBook(t *testing.T) {
	s, err := Open("", InMemory())
	testutil.AssertNoError(t, err)
	defer s.Close()

	rec := &GameRecord{
		StartFEN: board.StartFEN,
		Moves:    []string{"c2c4", "e7e5", "b1c3", "g8f6"},
		Result:   "1-0",
	}
	for i := 0; i < 2; i++ {
		n, err := s.LearnGame(rec, 10)
		testutil.AssertNoError(t, err)
		testutil.AssertEqual(t, n, 2)
	}

	// Draws teach nothing.
	n, err := s.LearnGame(&GameRecord{StartFEN: board.StartFEN, Moves: []string{"a2a3"}, Result: "1/2-1/2"}, 10)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, n, 0)

	b := book.Default()
	loaded, err := s.LoadBook(b)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, loaded, 2)

	// Two wins outweigh the built-in 1.e4.
	pos := board.NewPosition()
	move, found := b.Probe(&pos)
	testutil.AssertTrue(t, found)
	testutil.AssertEqual(t, move, board.NewMove(board.C2, board.C4))
	testutil.AssertEqual(t, len(b.ProbeAll(&pos)), 2)

	_, err = s.SaveBookMove("short", board.NewMove(board.E2, board.E4))
	if !errors.Is(err, book.ErrInvalidEntry) {
		t.Errorf("SaveBookMove() error = %v, want ErrInvalidEntry", err)
	}
}

func TestDataPaths(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	t.Setenv(DataDirEnv, dir)

	got, err := GetDatabaseDir()
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, got, filepath.Join(dir, "db"))
	if _, err := os.Stat(got); err != nil {
		t.Errorf("database directory was not created: %v", err)
	}
}

func TestDataDirByPlatform(t *testing.T) {
	home := func() (string, error) { return "/home/p", nil }
	noHome := func() (string, error) { return "", errors.New("no home") }
	env := func(vars map[string]string) func(string) string {
		return func(k string) string { return vars[k] }
	}

	tests := []struct {
		name   string
		goos   string
		getenv func(string) string
		home   func() (string, error)
		want   string
	}{
		{"linux default", "linux", env(nil), home, filepath.Join("/home/p", ".local", "share", appName)},
		{"linux xdg", "linux", env(map[string]string{"XDG_DATA_HOME": "/xdg"}), home, filepath.Join("/xdg", appName)},
		{"darwin", "darwin", env(nil), home, filepath.Join("/home/p", "Library", "Application Support", appName)},
		{"windows appdata", "windows", env(map[string]string{"APPDATA": "/roaming"}), noHome, filepath.Join("/roaming", appName)},
		{"windows fallback", "windows", env(nil), home, filepath.Join("/home/p", "AppData", "Roaming", appName)},
		{"override", "darwin", env(map[string]string{DataDirEnv: "/custom"}), noHome, "/custom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := dataDir(tt.goos, tt.getenv, tt.home)
			testutil.AssertNoError(t, err)
			testutil.AssertEqual(t, got, tt.want)
		})
	}

	_, err := dataDir("linux", env(nil), noHome)
	testutil.AssertError(t, err)
}
