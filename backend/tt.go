package main

import "sync"

type TTFlag uint8

const (
	TTExact TTFlag = iota
	TTLower
	TTUpper
)

func (f TTFlag) String() string {
	switch f {
	case TTExact:
		return "exact"
	case TTLower:
		return "lower"
	default:
		return "upper"
	}
}

type TTEntry struct {
	Value    float64
	Depth    int
	Flag     TTFlag
	BestMove Move
	HasBest  bool
}

// TranspositionTable memoizes search results keyed by position hash.
// Entries are overwritten unconditionally on re-store; the table grows
// without bound for the duration of one game and is cleared whenever the
// game is reset or reloaded, since stale entries for a discontinuous board
// change would return wrong values.
//
// The search itself is single-threaded, but HTTP stat handlers read the
// table while a worker writes, hence the lock.
type TranspositionTable struct {
	mu      sync.RWMutex
	entries map[uint64]TTEntry
	probes  uint64
	hits    uint64
	stores  uint64
}

type TTStats struct {
	Size   int     `json:"size"`
	Probes uint64  `json:"probes"`
	Hits   uint64  `json:"hits"`
	Stores uint64  `json:"stores"`
	Rate   float64 `json:"hit_rate"`
}

func NewTranspositionTable() *TranspositionTable {
	return &TranspositionTable{entries: make(map[uint64]TTEntry)}
}

func (t *TranspositionTable) Probe(key uint64) (TTEntry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.probes++
	entry, ok := t.entries[key]
	if ok {
		t.hits++
	}
	return entry, ok
}

func (t *TranspositionTable) Store(key uint64, entry TTEntry) {
	t.mu.Lock()
	t.entries[key] = entry
	t.stores++
	t.mu.Unlock()
}

// Clear drops every entry. Allocating a fresh map instead of ranging over
// the old one lets the garbage collector reclaim a large table at once.
func (t *TranspositionTable) Clear() {
	t.mu.Lock()
	t.entries = make(map[uint64]TTEntry)
	t.probes = 0
	t.hits = 0
	t.stores = 0
	t.mu.Unlock()
}

func (t *TranspositionTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

func (t *TranspositionTable) Stats() TTStats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	stats := TTStats{
		Size:   len(t.entries),
		Probes: t.probes,
		Hits:   t.hits,
		Stores: t.stores,
	}
	if stats.Probes > 0 {
		stats.Rate = float64(stats.Hits) / float64(stats.Probes)
	}
	return stats
}
