package search

import (
	"sync/atomic"
	"testing"

	"github.com/cdbfoster/takkerus-sub000/internal/ann"
	"github.com/cdbfoster/takkerus-sub000/internal/tak"
	"github.com/cdbfoster/takkerus-sub000/internal/tt"
)

func newTestSearchState(table *tt.Table) *SearchState {
	return &SearchState{
		Stats:             &atomicStatistics{},
		Interrupted:       &atomic.Bool{},
		WorkersTerminated: &atomic.Bool{},
		Table:             table,
		KillerMoves:       newDepthKillerMoves(),
		Evaluator:         HandcraftedEvaluator{},
	}
}

func TestFetchFromTTMiss(t *testing.T) {
	s := mustNewState(t, 4)
	search := newTestSearchState(tt.New(4, 64))

	hit := fetchFromTT(search, Node{State: s, RemainingDepth: 3}, ann.Min(), ann.Max())
	if hit.isSave || hit.hasPly {
		t.Fatalf("fetchFromTT() on an empty table = %+v, want a miss", hit)
	}
}

func TestStoreThenFetchLowerBoundCutoff(t *testing.T) {
	s := mustNewState(t, 4)
	search := newTestSearchState(tt.New(4, 64))
	node := Node{State: s, RemainingDepth: 3}
	ply := tak.PlacePly(0, 0, tak.Flatstone)

	cutoff := ann.Evaluation(100)
	storeInTT(search, node, cutoff, cutoff, ply, 3, false)

	hit := fetchFromTT(search, node, ann.Evaluation(50), cutoff)
	if !hit.isSave {
		t.Fatalf("fetchFromTT() = %+v, want a usable Lower-bound cutoff", hit)
	}
	if hit.result.Evaluation != cutoff {
		t.Fatalf("fetchFromTT().result.Evaluation = %v, want %v (beta)", hit.result.Evaluation, cutoff)
	}
	if !hit.result.HasBestPly || hit.result.BestPly != ply {
		t.Fatalf("fetchFromTT().result ply = %+v, want %+v", hit.result, ply)
	}
}

func TestStoreThenFetchUpperBoundNotDeepEnough(t *testing.T) {
	s := mustNewState(t, 4)
	search := newTestSearchState(tt.New(4, 64))
	ply := tak.PlacePly(1, 1, tak.Flatstone)

	storeInTT(search, Node{State: s, RemainingDepth: 2}, ann.Evaluation(10), ann.Evaluation(20), ply, 2, false)

	// A probe that needs a deeper search than what's stored can't be
	// saved from, but should still surface the stored ply as a
	// suggestion for move ordering.
	hit := fetchFromTT(search, Node{State: s, RemainingDepth: 5}, ann.Min(), ann.Max())
	if hit.isSave {
		t.Fatalf("fetchFromTT() = %+v, want isSave=false (insufficient stored depth)", hit)
	}
	if !hit.hasPly || hit.ply != ply {
		t.Fatalf("fetchFromTT() ply = %+v, want %+v as a suggestion", hit, ply)
	}
}

func TestValidPlyRejectsIllegalPly(t *testing.T) {
	s := mustNewState(t, 4)
	illegal := tak.SpreadPly(0, 0, tak.East, tak.Drops(0), false)
	if validPly(s, illegal) {
		t.Fatal("validPly() accepted a spread over an empty square")
	}

	legal := tak.PlacePly(0, 0, tak.Flatstone)
	if !validPly(s, legal) {
		t.Fatal("validPly() rejected a legal opening placement")
	}
}

func TestSearchRunSingleThreadedSmoke(t *testing.T) {
	s := mustNewState(t, 3)
	table := tt.New(3, 256)
	interrupted := &atomic.Bool{}

	result := Run(s, 2, table, HandcraftedEvaluator{}, false, interrupted, 1)

	if !result.HasBestPly {
		t.Fatal("Run() returned no best ply on an opening 3x3 position")
	}
	if result.Statistics.Visited == 0 {
		t.Fatal("Run() reported zero nodes visited")
	}
}

func TestSearchRunRespectsInterrupted(t *testing.T) {
	s := mustNewState(t, 5)
	table := tt.New(5, 256)
	interrupted := &atomic.Bool{}
	interrupted.Store(true)

	// Even with the flag already set going in, a shallow search must
	// still return cleanly rather than hang or panic.
	_ = Run(s, 2, table, HandcraftedEvaluator{}, false, interrupted, 2)
}
