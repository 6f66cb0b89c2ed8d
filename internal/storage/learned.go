package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/nerdchess/nerdchess/internal/board"
	"github.com/nerdchess/nerdchess/internal/book"
)

// bookKey is "book/<board string>/<uci move>".
func bookKey(boardKey string, m board.Move) []byte {
	return []byte(prefixBook + boardKey + "/" + m.String())
}

// SaveBookMove adds one vote for playing m in the position described by
// boardKey and returns the new weight.
func (s *Storage) SaveBookMove(boardKey string, m board.Move) (uint16, error) {
	if len(boardKey) != 64 || !m.IsValid() {
		return 0, fmt.Errorf("%w: %q %s", book.ErrInvalidEntry, boardKey, m)
	}

	var weight uint16
	err := s.db.Update(func(txn *badger.Txn) error {
		key := bookKey(boardKey, m)
		item, err := txn.Get(key)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
		case err != nil:
			return err
		default:
			if err := item.Value(func(val []byte) error {
				if len(val) == 2 {
					weight = binary.BigEndian.Uint16(val)
				}
				return nil
			}); err != nil {
				return err
			}
		}
		if weight < math.MaxUint16 {
			weight++
		}
		buf := make([]byte, 2)
		binary.BigEndian.PutUint16(buf, weight)
		return txn.Set(key, buf)
	})
	return weight, err
}

// LoadBook adds every learned move to b as a weighted alternative and
// returns the number of moves loaded.
func (s *Storage) LoadBook(b *book.Book) (int, error) {
	n := 0
	prefix := []byte(prefixBook)

	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			rest := strings.TrimPrefix(string(item.Key()), prefixBook)
			boardKey, moveStr, ok := strings.Cut(rest, "/")
			if !ok {
				s.logger.Warn().Str("key", string(item.Key())).Msg("skipping malformed book key")
				continue
			}
			m, err := board.ParseMove(moveStr)
			if err != nil {
				s.logger.Warn().Err(err).Str("key", string(item.Key())).Msg("skipping malformed book move")
				continue
			}

			var weight uint16
			if err := item.Value(func(val []byte) error {
				if len(val) != 2 {
					return fmt.Errorf("%w: weight of %s", book.ErrInvalidEntry, item.Key())
				}
				weight = binary.BigEndian.Uint16(val)
				return nil
			}); err != nil {
				return err
			}

			if err := b.AddWeighted(boardKey, m, weight, false); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	return n, err
}

// LearnGame records the winner's moves from the first maxPlies plies of
// rec as book moves. Draws and unfinished games teach nothing. It returns
// the number of moves recorded.
func (s *Storage) LearnGame(rec *GameRecord, maxPlies int) (int, error) {
	winner, ok := rec.Winner()
	if !ok {
		return 0, nil
	}

	pos, side, err := board.ParseFEN(rec.StartFEN)
	if err != nil {
		return 0, err
	}

	n := 0
	for i, uci := range rec.Moves {
		if i >= maxPlies {
			break
		}
		m, err := board.ParseMove(uci)
		if err != nil {
			return n, fmt.Errorf("ply %d: %w", i+1, err)
		}
		if PlayerColor(side) == winner {
			if _, err := s.SaveBookMove(pos.BoardString(), m); err != nil {
				return n, err
			}
			n++
		}
		pos.MovePiece(m.From, m.To)
		side = side.Other()
	}
	return n, nil
}
