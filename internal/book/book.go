// Package book provides the opening book: a mapping from the 64-character
// board string of a position to the move to play in it.
package book

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/nerdchess/nerdchess/internal/board"
)

// ErrInvalidEntry is returned for a malformed book line or key.
var ErrInvalidEntry = errors.New("invalid book entry")

// Entry represents a single book entry.
type Entry struct {
	Board  string
	Move   board.Move
	Weight uint16
}

// Book represents an opening book. It is safe for concurrent use.
type Book struct {
	mu      sync.RWMutex
	entries map[string][]Entry
}

// New creates an empty book.
func New() *Book {
	return &Book{
		entries: make(map[string][]Entry),
	}
}

// defaultLines are the built-in opening lines, played from the start.
var defaultLines = [][]string{
	{"e2e4", "e7e5", "g1f3", "b8c6", "f1c4", "g8f6"},
	{"d2d4", "d7d5"},
}

// Default returns a book seeded with the built-in lines. Where two lines
// share a position the first line's move is kept.
func Default() *Book {
	b := New()
	for _, line := range defaultLines {
		if err := b.AddLine(line, false); err != nil {
			panic(fmt.Sprintf("book: built-in line %v: %v", line, err))
		}
	}
	return b
}

// AddLine replays moves from the starting position, adding each position
// and the move played in it. Existing entries are kept unless overwrite is
// set.
func (b *Book) AddLine(moves []string, overwrite bool) error {
	pos := board.NewPosition()
	side := board.White
	for i, s := range moves {
		m, err := board.ParseMove(s)
		if err != nil {
			return fmt.Errorf("move %d: %w", i+1, err)
		}
		if !pos.PieceColorAt(m.From, side) || !pos.Destinations(m.From, pos.PieceTypeAt(m.From), side, false).Get(m.To) {
			return fmt.Errorf("move %d %s: %w: illegal move", i+1, s, ErrInvalidEntry)
		}

		key := pos.BoardString()
		if overwrite || !b.Contains(key) {
			if err := b.Add(key, m); err != nil {
				return err
			}
		}

		pos.MovePiece(m.From, m.To)
		side = side.Other()
	}
	return nil
}

// Add sets the move for a board string, replacing any previous entries.
func (b *Book) Add(key string, m board.Move) error {
	return b.AddWeighted(key, m, 1, true)
}

// AddWeighted adds a move with a weight. With replace unset, the move is
// appended to the position's alternatives.
func (b *Book) AddWeighted(key string, m board.Move, weight uint16, replace bool) error {
	if err := validKey(key); err != nil {
		return err
	}
	if !m.IsValid() {
		return fmt.Errorf("%w: invalid move %s", ErrInvalidEntry, m)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	entry := Entry{Board: key, Move: m, Weight: weight}
	if replace {
		b.entries[key] = []Entry{entry}
		return nil
	}
	for i, e := range b.entries[key] {
		if e.Move == m {
			b.entries[key][i].Weight = weight
			return nil
		}
	}
	b.entries[key] = append(b.entries[key], entry)
	return nil
}

// validKey checks that key is a 64-character board string.
func validKey(key string) error {
	if len(key) != 64 {
		return fmt.Errorf("%w: board string has %d characters, want 64", ErrInvalidEntry, len(key))
	}
	for i := 0; i < len(key); i++ {
		if key[i] != '.' && board.PieceFromChar(key[i]) == board.NoPiece {
			return fmt.Errorf("%w: invalid character %q at square %d", ErrInvalidEntry, key[i], i)
		}
	}
	return nil
}

// Contains reports whether the book has an entry for key.
func (b *Book) Contains(key string) bool {
	if b == nil {
		return false
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries[key]) > 0
}

// Probe looks up a position in the book and returns the highest weighted
// move. Equal weights go to the move added first.
func (b *Book) Probe(pos *board.Position) (board.Move, bool) {
	if b == nil {
		return board.NoMove, false
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	entries := b.entries[pos.BoardString()]
	if len(entries) == 0 {
		return board.NoMove, false
	}

	best := entries[0]
	for _, e := range entries[1:] {
		if e.Weight > best.Weight {
			best = e
		}
	}
	return best.Move, true
}

// ProbeAll returns all book moves for the position, sorted by weight.
func (b *Book) ProbeAll(pos *board.Position) []Entry {
	if b == nil {
		return nil
	}

	b.mu.RLock()
	entries := b.entries[pos.BoardString()]
	result := make([]Entry, len(entries))
	copy(result, entries)
	b.mu.RUnlock()

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Weight > result[j].Weight
	})
	return result
}

// Entries returns every entry ordered by board string.
func (b *Book) Entries() []Entry {
	if b == nil {
		return nil
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	keys := make([]string, 0, len(b.entries))
	for k := range b.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var result []Entry
	for _, k := range keys {
		result = append(result, b.entries[k]...)
	}
	return result
}

// Size returns the number of unique positions in the book.
func (b *Book) Size() int {
	if b == nil {
		return 0
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}

// Load reads entries of the form "<board> <from> <to> [weight]", one per
// line. Squares are either indices (0 = a8) or names ("e2"). Blank lines and
// lines starting with '#' are skipped. It returns the number of entries read.
func (b *Book) Load(r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	n := 0
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 3 && len(fields) != 4 {
			return n, fmt.Errorf("line %d: %w: want 3 or 4 fields, got %d", lineNo, ErrInvalidEntry, len(fields))
		}

		from, err := parseSquare(fields[1])
		if err != nil {
			return n, fmt.Errorf("line %d: %w", lineNo, err)
		}
		to, err := parseSquare(fields[2])
		if err != nil {
			return n, fmt.Errorf("line %d: %w", lineNo, err)
		}

		weight := uint16(1)
		if len(fields) == 4 {
			w, err := strconv.ParseUint(fields[3], 10, 16)
			if err != nil {
				return n, fmt.Errorf("line %d: %w: weight %q", lineNo, ErrInvalidEntry, fields[3])
			}
			weight = uint16(w)
		}

		if err := b.AddWeighted(fields[0], board.NewMove(from, to), weight, false); err != nil {
			return n, fmt.Errorf("line %d: %w", lineNo, err)
		}
		n++
	}
	if err := scanner.Err(); err != nil {
		return n, fmt.Errorf("reading book: %w", err)
	}
	return n, nil
}

// WriteTo writes the book in the format read by Load.
func (b *Book) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, e := range b.Entries() {
		n, err := fmt.Fprintf(w, "%s %s %s %d\n", e.Board, e.Move.From, e.Move.To, e.Weight)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// parseSquare accepts a square index or name.
func parseSquare(s string) (board.Square, error) {
	if i, err := strconv.Atoi(s); err == nil {
		if i < 0 || i > 63 {
			return board.NoSquare, fmt.Errorf("%w: square %d out of range", ErrInvalidEntry, i)
		}
		return board.Square(i), nil
	}
	sq, err := board.ParseSquare(s)
	if err != nil {
		return board.NoSquare, fmt.Errorf("%w: %v", ErrInvalidEntry, err)
	}
	return sq, nil
}
