package search

import "sync/atomic"

// Statistics summarizes one iteration of search, reported back to the
// caller alongside the principal variation.
type Statistics struct {
	Visited      uint64
	Evaluated    uint64
	Terminal     uint64
	Scouted      uint64
	Researched   uint64
	BetaCutoff   uint64
	NullCutoff   uint64
	TTStores     uint64
	TTStoreFails uint64
	TTHits       uint64
	TTSaves      uint64
	PVPlyOrder   [6]uint64
	AllPlyOrder  [6]uint64
}

// Add returns the element-wise sum of two Statistics, used to
// accumulate totals across iterative-deepening iterations.
func (s Statistics) Add(other Statistics) Statistics {
	out := Statistics{
		Visited:      s.Visited + other.Visited,
		Evaluated:    s.Evaluated + other.Evaluated,
		Terminal:     s.Terminal + other.Terminal,
		Scouted:      s.Scouted + other.Scouted,
		Researched:   s.Researched + other.Researched,
		BetaCutoff:   s.BetaCutoff + other.BetaCutoff,
		NullCutoff:   s.NullCutoff + other.NullCutoff,
		TTStores:     s.TTStores + other.TTStores,
		TTStoreFails: s.TTStoreFails + other.TTStoreFails,
		TTHits:       s.TTHits + other.TTHits,
		TTSaves:      s.TTSaves + other.TTSaves,
	}
	for i := range out.PVPlyOrder {
		out.PVPlyOrder[i] = s.PVPlyOrder[i] + other.PVPlyOrder[i]
		out.AllPlyOrder[i] = s.AllPlyOrder[i] + other.AllPlyOrder[i]
	}
	return out
}

// atomicStatistics is Statistics' concurrent-accumulation counterpart:
// every search worker goroutine increments the same set of counters, so
// each field needs to be independently atomic rather than guarded by a
// single mutex that would serialize every node visited.
type atomicStatistics struct {
	visited, evaluated, terminal, scouted, researched atomic.Uint64
	betaCutoff, nullCutoff                             atomic.Uint64
	ttStores, ttStoreFails, ttHits, ttSaves            atomic.Uint64
	pvPlyOrder, allPlyOrder                            [6]atomic.Uint64
}

func recordPlyOrder(order *[6]atomic.Uint64, moveOrder int) {
	if moveOrder >= len(order) {
		moveOrder = len(order) - 1
	}
	order[moveOrder].Add(1)
}

// load snapshots the atomic counters into a plain Statistics for
// reporting.
func (s *atomicStatistics) load() Statistics {
	out := Statistics{
		Visited:      s.visited.Load(),
		Evaluated:    s.evaluated.Load(),
		Terminal:     s.terminal.Load(),
		Scouted:      s.scouted.Load(),
		Researched:   s.researched.Load(),
		BetaCutoff:   s.betaCutoff.Load(),
		NullCutoff:   s.nullCutoff.Load(),
		TTStores:     s.ttStores.Load(),
		TTStoreFails: s.ttStoreFails.Load(),
		TTHits:       s.ttHits.Load(),
		TTSaves:      s.ttSaves.Load(),
	}
	for i := range out.PVPlyOrder {
		out.PVPlyOrder[i] = s.pvPlyOrder[i].Load()
		out.AllPlyOrder[i] = s.allPlyOrder[i].Load()
	}
	return out
}
