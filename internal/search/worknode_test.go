package search

import (
	"testing"

	"github.com/cdbfoster/takkerus-sub000/internal/tak"
)

func mustNewState(t *testing.T, n int) *tak.State {
	t.Helper()
	s, err := tak.NewState(n, 0)
	if err != nil {
		t.Fatalf("NewState(%d, 0) = %v", n, err)
	}
	return s
}

func TestAdvanceStateSkipsIllegalFalliblePly(t *testing.T) {
	s := mustNewState(t, 4)

	// A spread over an empty square is illegal; as a Fallible
	// transposition-table suggestion it should be skipped rather than
	// aborting the whole generator.
	badSuggestion := tak.SpreadPly(0, 0, tak.East, tak.Drops(0), false)
	g := NewPlyGenerator(s, badSuggestion, true, newKillerMoves())

	_, ply, next, ok := advanceState(s, g)
	if !ok {
		t.Fatal("advanceState() ok = false, want true (the board has legal placements)")
	}
	if ply == badSuggestion {
		t.Fatal("advanceState() returned the illegal tt suggestion instead of skipping it")
	}
	if next == s {
		t.Fatal("advanceState() did not clone state before executing")
	}
}

func TestAdvanceStateExhausted(t *testing.T) {
	s := mustNewState(t, 3)
	g := NewPlyGenerator(s, tak.Ply{}, false, newKillerMoves())

	count := 0
	for {
		_, _, _, ok := advanceState(s, g)
		if !ok {
			break
		}
		count++
		if count > 200 {
			t.Fatal("advanceState() never exhausted on a 3x3 opening position")
		}
	}
}

func TestWorkNodesPublishAndAdvanceLeftmost(t *testing.T) {
	s := mustNewState(t, 4)
	g := NewPlyGenerator(s, tak.Ply{}, false, newKillerMoves())

	w := newWorkNodes()
	wn := workNode{
		generator: g,
		node:      Node{ParentIndex: noParent, State: s, RemainingDepth: 2, NullMoveAllowed: true},
		variables: workNodeVariables{status: workWait},
		results:   newWorkNodeResults(),
	}

	index, _, _, state := w.publishAndAdvanceLeftmost(wn)
	if state == nil {
		t.Fatal("publishAndAdvanceLeftmost() returned a nil state")
	}
	if got := w.nodes.get(index); got == nil {
		t.Fatalf("published node not found at index %d", index)
	}
}

func TestWorkNodesAdvanceOwnedReportsPruned(t *testing.T) {
	s := mustNewState(t, 4)
	g := NewPlyGenerator(s, tak.Ply{}, false, newKillerMoves())

	w := newWorkNodes()
	wn := workNode{
		generator: g,
		node:      Node{ParentIndex: noParent, State: s, RemainingDepth: 2, NullMoveAllowed: true},
		variables: workNodeVariables{status: workPruned},
		results:   newWorkNodeResults(),
	}
	index := w.nodes.push(wn)

	_, _, _, pruned, ok := w.advanceOwned(index)
	if !pruned || ok {
		t.Fatalf("advanceOwned() on a pruned node = pruned=%v ok=%v, want pruned=true ok=false", pruned, ok)
	}
}

func TestPruneChildrenMarksDescendantsRecursively(t *testing.T) {
	s := mustNewState(t, 4)
	newNode := func(parent int) workNode {
		g := NewPlyGenerator(s, tak.Ply{}, false, newKillerMoves())
		return workNode{
			generator: g,
			node:      Node{ParentIndex: parent, State: s, RemainingDepth: 1},
			variables: workNodeVariables{status: workActive},
			results:   newWorkNodeResults(),
		}
	}

	w := newWorkNodes()
	root := w.nodes.push(newNode(noParent))
	child := w.nodes.push(newNode(root))
	grandchild := w.nodes.push(newNode(child))
	unrelated := w.nodes.push(newNode(noParent))

	pruneChildren(w, root)

	if got := w.nodes.get(child).variables.status; got != workPruned {
		t.Fatalf("child status = %v, want workPruned", got)
	}
	if got := w.nodes.get(grandchild).variables.status; got != workPruned {
		t.Fatalf("grandchild status = %v, want workPruned", got)
	}
	if got := w.nodes.get(unrelated).variables.status; got != workActive {
		t.Fatalf("unrelated node status = %v, want unchanged workActive", got)
	}
}

func TestWorkNodeResultsTracksWorkerCount(t *testing.T) {
	r := newWorkNodeResults()
	r.incWorkers()
	r.incWorkers()
	r.decWorkers()

	if got := r.workers(); got != 1 {
		t.Fatalf("workers() = %d, want 1", got)
	}

	r.push(indexedResult{moveOrder: 0, result: BranchResult{HasBestPly: true}})
	if len(r.results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(r.results))
	}
}
