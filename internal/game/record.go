package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/nerdchess/nerdchess/internal/board"
	"github.com/nerdchess/nerdchess/internal/engine"
	"github.com/nerdchess/nerdchess/internal/notation"
	"github.com/nerdchess/nerdchess/internal/storage"
)

// Record returns the game as a storage record. The PGN is left empty when a
// move cannot be expressed under the full rules of chess.
func (g *Game) Record() storage.GameRecord {
	rec := storage.GameRecord{
		Started:  g.started,
		Ended:    time.Now(),
		StartFEN: g.startFEN,
		Result:   g.outcome.Result,
		Reason:   g.outcome.Reason,
		Moves:    make([]string, len(g.history)),
	}
	for i, m := range g.history {
		rec.Moves[i] = m.String()
	}

	switch {
	case g.humans[board.White] && g.humans[board.Black]:
		rec.Mode = storage.ModeHumanVsHuman
	case g.humans[board.Black]:
		rec.Mode = storage.ModeHumanVsComputer
		rec.HumanColor = storage.ColorBlack
	default:
		rec.Mode = storage.ModeHumanVsComputer
		rec.HumanColor = storage.ColorWhite
	}
	if g.engine != nil && rec.Mode == storage.ModeHumanVsComputer {
		rec.Difficulty = g.engine.Difficulty().String()
	}

	white, black := g.playerName(board.White), g.playerName(board.Black)
	pgn, err := notation.PGN(notation.Game{
		FEN:    g.startFEN,
		Moves:  g.history,
		Result: g.outcome.Result,
		Tags: map[string]string{
			"Event": "NerdChess game",
			"Date":  g.started.Format("2006.01.02"),
			"White": white,
			"Black": black,
		},
	})
	if err != nil {
		g.logger.Warn().Err(err).Msg("game has no PGN form")
	} else {
		rec.PGN = pgn
	}
	return rec
}

// LearnPlies bounds how deep into a won game moves are learned as book moves.
const LearnPlies = 12

// Save stores the game in store. Finished games also update the statistics
// of the human player and teach the winner's opening moves to the book.
func (g *Game) Save(store *storage.Storage) (storage.GameRecord, error) {
	rec := g.Record()
	if err := store.SaveGame(&rec); err != nil {
		return rec, err
	}
	if !g.IsOver() {
		return rec, nil
	}

	result := storage.GameResult{
		Draw:       g.outcome.Result == "1/2-1/2",
		Mode:       rec.Mode,
		Difficulty: rec.Difficulty,
		Duration:   rec.Ended.Sub(rec.Started),
	}
	if winner, ok := rec.Winner(); ok && rec.Mode == storage.ModeHumanVsComputer {
		result.Won = winner == rec.HumanColor
	} else if ok {
		// Between two humans the stats follow White.
		result.Won = winner == storage.ColorWhite
	}
	if err := store.RecordGame(result); err != nil {
		return rec, fmt.Errorf("recording stats: %w", err)
	}

	n, err := store.LearnGame(&rec, LearnPlies)
	if err != nil {
		return rec, fmt.Errorf("learning game: %w", err)
	}
	g.logger.Debug().Str("id", rec.ID).Int("learned", n).Msg("game saved")
	return rec, nil
}

func (g *Game) playerName(c board.Color) string {
	if g.humans[c] {
		return "Player"
	}
	return "NerdChess"
}

// Resume replays a stored game. The human plays the record's human colour.
func Resume(eng *engine.Engine, rec *storage.GameRecord, opts ...Option) (*Game, error) {
	human := board.White
	if rec.HumanColor == storage.ColorBlack {
		human = board.Black
	}
	if rec.Mode == storage.ModeHumanVsHuman {
		opts = append(opts, WithHumans(true, true))
	}
	if rec.StartFEN != "" {
		opts = append([]Option{WithFEN(rec.StartFEN)}, opts...)
	}

	g, err := New(eng, human, opts...)
	if err != nil {
		return nil, err
	}
	if !rec.Started.IsZero() {
		g.started = rec.Started
	}
	for _, s := range rec.Moves {
		if err := g.PlayUCI(s); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// ErrNothingToResume is returned by ResumeLatest when no stored game can be
// continued.
var ErrNothingToResume = errors.New("no unfinished game to resume")

// ResumeLatest resumes the newest unfinished game in store. Games against
// the computer are skipped when eng is nil.
func ResumeLatest(store *storage.Storage, eng *engine.Engine, opts ...Option) (*Game, error) {
	games, err := store.ListGames()
	if err != nil {
		return nil, err
	}
	for i := range games {
		if games[i].Result != "*" {
			continue
		}
		if games[i].Mode == storage.ModeHumanVsComputer && eng == nil {
			continue
		}
		return Resume(eng, &games[i], opts...)
	}
	return nil, ErrNothingToResume
}
