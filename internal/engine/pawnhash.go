package engine

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"

	"github.com/nerdchess/nerdchess/internal/board"
)

// PawnEntry stores a cached pawn structure evaluation.
type PawnEntry struct {
	Key   uint64
	Score int32
	used  bool
}

// PawnTable is a hash table for caching pawn structure evaluations. It is
// not safe for concurrent use; each Searcher owns one.
type PawnTable struct {
	entries []PawnEntry
	mask    uint64
	hits    uint64
	probes  uint64
}

// NewPawnTable creates a new pawn hash table with the given size in MB.
func NewPawnTable(sizeMB int) *PawnTable {
	// Each entry is 16 bytes, round to power of 2
	entrySize := 16
	numEntries := (sizeMB * 1024 * 1024) / entrySize

	// Round down to power of 2
	size := 1
	for size*2 <= numEntries {
		size *= 2
	}

	return &PawnTable{
		entries: make([]PawnEntry, size),
		mask:    uint64(size - 1),
	}
}

// PawnKey hashes the two pawn bitboards.
func PawnKey(p *board.Position) uint64 {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], uint64(p.Pieces[board.WhitePawn]))
	binary.LittleEndian.PutUint64(buf[8:], uint64(p.Pieces[board.BlackPawn]))
	return xxhash.Sum64(buf[:])
}

// Probe looks up a pawn structure evaluation in the hash table.
func (pt *PawnTable) Probe(key uint64) (score int, found bool) {
	pt.probes++
	entry := &pt.entries[key&pt.mask]
	if entry.used && entry.Key == key {
		pt.hits++
		return int(entry.Score), true
	}
	return 0, false
}

// Store saves a pawn structure evaluation in the hash table.
func (pt *PawnTable) Store(key uint64, score int) {
	entry := &pt.entries[key&pt.mask]
	entry.Key = key
	entry.Score = int32(score)
	entry.used = true
}

// HitRate returns the fraction of probes that found an entry.
func (pt *PawnTable) HitRate() float64 {
	if pt.probes == 0 {
		return 0
	}
	return float64(pt.hits) / float64(pt.probes)
}

// Clear clears the pawn hash table.
func (pt *PawnTable) Clear() {
	for i := range pt.entries {
		pt.entries[i] = PawnEntry{}
	}
	pt.hits, pt.probes = 0, 0
}
