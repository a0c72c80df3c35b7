package engine

import (
	"sync/atomic"
	"unsafe"

	"github.com/hailam/megalodon/internal/board"
)

// Bound indicates the type of bound stored in the transposition table.
type Bound uint8

const (
	BoundExact Bound = iota // Exact score
	BoundLower              // Failed high (beta cutoff)
	BoundUpper              // Failed low
)

// Entry is one transposition table slot. Sig holds the full position
// identity so that two positions sharing a slot are never confused.
type Entry struct {
	Depth  int
	Move   board.Move
	Score  float64
	Bound  Bound
	Sig    board.Signature
	Filled bool
}

// Table is a fixed-capacity transposition table addressed by hash modulo
// capacity. One slot per index, depth-preferred replacement, no chaining.
// It is written by one search at a time and needs no locking.
type Table struct {
	entries []Entry

	// Statistics
	hits   atomic.Uint64
	probes atomic.Uint64
}

// entrySize is the in-memory size of one slot.
const entrySize = int(unsafe.Sizeof(Entry{}))

// NewTable creates a table with room for capacity entries (at least one).
func NewTable(capacity int) *Table {
	if capacity < 1 {
		capacity = 1
	}
	return &Table{entries: make([]Entry, capacity)}
}

// NewTableMB creates a table using roughly sizeMB megabytes.
func NewTableMB(sizeMB int) *Table {
	return NewTable(sizeMB * 1024 * 1024 / entrySize)
}

// Capacity returns the number of slots, zero once the table is closed.
func (t *Table) Capacity() int {
	return len(t.entries)
}

// slot returns the index hash maps to. It is false for a closed table.
func (t *Table) slot(hash uint64) (uint64, bool) {
	if len(t.entries) == 0 {
		return 0, false
	}
	return hash % uint64(len(t.entries)), true
}

// Probe returns the entry stored for hash if its signature equals sig.
// A signature mismatch is reported as a plain miss.
func (t *Table) Probe(hash uint64, sig *board.Signature) (Entry, bool) {
	if len(t.entries) == 0 {
		return Entry{}, false
	}
	t.probes.Add(1)

	entry := &t.entries[hash%uint64(len(t.entries))]
	if !entry.Filled || entry.Sig != *sig {
		return Entry{}, false
	}
	t.hits.Add(1)
	return *entry, true
}

// Store writes e into the slot for hash when the slot is empty or e was
// searched at least as deep as the current occupant. It reports whether
// the write happened. The whole slot is replaced.
func (t *Table) Store(hash uint64, e Entry) bool {
	if len(t.entries) == 0 {
		return false
	}
	slot := &t.entries[hash%uint64(len(t.entries))]
	if slot.Filled && e.Depth < slot.Depth {
		return false
	}
	e.Filled = true
	*slot = e
	return true
}

// Clear empties every slot and resets the statistics.
func (t *Table) Clear() {
	clear(t.entries)
	t.hits.Store(0)
	t.probes.Store(0)
}

// Close releases the backing array. Later probes miss and stores are dropped.
func (t *Table) Close() {
	t.entries = nil
}

// HashFull returns the permille of the first thousand slots in use.
func (t *Table) HashFull() int {
	sample := min(1000, len(t.entries))
	if sample == 0 {
		return 0
	}
	used := 0
	for i := 0; i < sample; i++ {
		if t.entries[i].Filled {
			used++
		}
	}
	return used * 1000 / sample
}

// HitRate returns the cache hit rate as a percentage.
func (t *Table) HitRate() float64 {
	probes := t.probes.Load()
	if probes == 0 {
		return 0
	}
	return float64(t.hits.Load()) / float64(probes) * 100
}

// scoreToTT converts a mate score from distance-to-root into distance-to-node
// so that it stays correct when read back at another ply.
func scoreToTT(score float64, ply int) float64 {
	if score > MateScore-MaxPly {
		return score + float64(ply)
	}
	if score < -MateScore+MaxPly {
		return score - float64(ply)
	}
	return score
}

// scoreFromTT reverses scoreToTT.
func scoreFromTT(score float64, ply int) float64 {
	if score > MateScore-MaxPly {
		return score - float64(ply)
	}
	if score < -MateScore+MaxPly {
		return score + float64(ply)
	}
	return score
}
