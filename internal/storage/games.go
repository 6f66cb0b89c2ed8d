package storage

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/badger/v4"
)

// GameRecord is a finished or interrupted game.
type GameRecord struct {
	ID         string      `json:"id"`
	Started    time.Time   `json:"started"`
	Ended      time.Time   `json:"ended"`
	Mode       GameMode    `json:"mode"`
	HumanColor PlayerColor `json:"human_color"`
	Difficulty string      `json:"difficulty,omitempty"`
	StartFEN   string      `json:"start_fen"`
	Moves      []string    `json:"moves"` // UCI strings
	Result     string      `json:"result"` // "1-0", "0-1", "1/2-1/2" or "*"
	Reason     string      `json:"reason,omitempty"`
	PGN        string      `json:"pgn,omitempty"`
}

// Winner returns the winning colour of the record, and false for draws and
// unfinished games.
func (r *GameRecord) Winner() (PlayerColor, bool) {
	switch r.Result {
	case "1-0":
		return ColorWhite, true
	case "0-1":
		return ColorBlack, true
	}
	return 0, false
}

// recordID derives a stable identifier from the start time and opening.
func recordID(r *GameRecord) string {
	h := xxhash.New()
	_, _ = h.WriteString(r.Started.UTC().Format(time.RFC3339Nano))
	_, _ = h.WriteString(r.StartFEN)
	return strconv.FormatUint(h.Sum64(), 16)
}

// SaveGame stores rec, assigning an ID when it has none. Saving again under
// the same ID replaces the record.
func (s *Storage) SaveGame(rec *GameRecord) error {
	if rec.Started.IsZero() {
		rec.Started = time.Now()
	}
	if rec.ID == "" {
		rec.ID = recordID(rec)
	}
	if err := s.putJSON(prefixGame+rec.ID, rec); err != nil {
		return fmt.Errorf("saving game %s: %w", rec.ID, err)
	}
	s.logger.Debug().Str("id", rec.ID).Int("plies", len(rec.Moves)).Str("result", rec.Result).Msg("game saved")
	return nil
}

// LoadGame returns the game stored under id.
func (s *Storage) LoadGame(id string) (*GameRecord, error) {
	rec := &GameRecord{}
	found, err := s.getJSON(prefixGame+id, rec)
	if err != nil {
		return nil, fmt.Errorf("loading game %s: %w", id, err)
	}
	if !found {
		return nil, fmt.Errorf("game %s: %w", id, ErrNotFound)
	}
	return rec, nil
}

// DeleteGame removes the game stored under id.
func (s *Storage) DeleteGame(id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(prefixGame + id))
	})
}

// ListGames returns every stored game, most recently started first.
func (s *Storage) ListGames() ([]GameRecord, error) {
	var games []GameRecord
	prefix := []byte(prefixGame)

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var rec GameRecord
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				return fmt.Errorf("decoding %s: %w", it.Item().Key(), err)
			}
			games = append(games, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(games, func(i, j int) bool {
		return games[i].Started.After(games[j].Started)
	})
	return games, nil
}
