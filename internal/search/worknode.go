package search

import (
	"sync"
	"sync/atomic"

	"github.com/cdbfoster/takkerus-sub000/internal/ann"
	"github.com/cdbfoster/takkerus-sub000/internal/tak"
	"github.com/cdbfoster/takkerus-sub000/internal/tt"
)

// noParent marks a Node with no parent work node (the search root).
const noParent = -1

// Node is one position in the search tree: the state to search from,
// how many plies are left to search, whether a null-move search is
// allowed here (disabled for one ply after a null move, so the engine
// can't pass twice in a row), and the index of the work node that
// spawned it (used to propagate a beta cutoff down to children still in
// progress).
type Node struct {
	ParentIndex     int
	State           *tak.State
	RemainingDepth  int
	NullMoveAllowed bool
}

// BranchResult is what searching a Node produces: the best reply found,
// how deep that line was actually searched, and its evaluation from the
// node's own side to move's perspective.
type BranchResult struct {
	BestPly    tak.Ply
	HasBestPly bool
	Depth      int
	Evaluation ann.Evaluation
}

// SearchState is the read-mostly context shared by every goroutine
// cooperating on one iterative-deepening iteration.
type SearchState struct {
	StartPly          uint16
	Stats             *atomicStatistics
	Interrupted       *atomic.Bool
	WorkersTerminated *atomic.Bool
	Table             *tt.Table
	KillerMoves       *depthKillerMoves
	ExactEval         bool
	Evaluator         Evaluator
}

// workNodeStatus tracks whether other goroutines should pick up a
// published work node's remaining children yet.
type workNodeStatus int

const (
	// workWait: the node's leftmost child is still being searched on
	// the thread that published it (Young Brothers Wait Concept); no
	// other goroutine should touch its siblings yet.
	workWait workNodeStatus = iota
	// workActive: the leftmost child is done; any idle worker may pull
	// the node's remaining children.
	workActive
	// workPruned: an ancestor found a beta cutoff, so every remaining
	// child here is moot.
	workPruned
)

type workNodeVariables struct {
	status workNodeStatus
	alpha  ann.Evaluation
	beta   ann.Evaluation
}

// indexedResult pairs a child's search result with the move order it
// was generated in, so ply-ordering statistics can be recorded even
// though children finish out of order.
type indexedResult struct {
	moveOrder int
	result    BranchResult
}

// workNodeResults collects a work node's finished children as they
// trickle in from whichever goroutines searched them, and tracks how
// many goroutines are still actively working on one so the node's
// owner knows when it's safe to finish up.
type workNodeResults struct {
	mu          sync.Mutex
	cond        *sync.Cond
	results     []indexedResult
	workerCount int
}

func newWorkNodeResults() *workNodeResults {
	r := &workNodeResults{}
	r.cond = sync.NewCond(&r.mu)
	return r
}

func (r *workNodeResults) push(ir indexedResult) {
	r.mu.Lock()
	r.results = append(r.results, ir)
	r.mu.Unlock()
}

func (r *workNodeResults) incWorkers() {
	r.mu.Lock()
	r.workerCount++
	r.mu.Unlock()
}

func (r *workNodeResults) decWorkers() {
	r.mu.Lock()
	r.workerCount--
	r.mu.Unlock()
}

func (r *workNodeResults) workers() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.workerCount
}

// workNode is one in-progress interior node of the search tree,
// published to workNodes so idle goroutines can pick off its
// not-yet-searched children once its leftmost child finishes.
type workNode struct {
	generator *PlyGenerator
	node      Node
	variables workNodeVariables
	results   *workNodeResults
}

// workNodes is the shared pile of published interior nodes: a bag
// protected by a mutex and condition variable, mirroring the original's
// Mutex<Bag<WorkNode>> plus a Condvar idle workers wait on.
type workNodes struct {
	mu       sync.Mutex
	cond     *sync.Cond
	nodes    bag[workNode]
	shutdown bool
}

func newWorkNodes() *workNodes {
	w := &workNodes{}
	w.cond = sync.NewCond(&w.mu)
	return w
}

// pulledWork is one child position ready to search, pulled off of a
// work node's generator.
type pulledWork struct {
	parentIndex    int
	remainingDepth int
	alpha, beta    ann.Evaluation
	moveOrder      int
	ply            tak.Ply
	state          *tak.State
	results        *workNodeResults
}

// publishAndAdvanceLeftmost pushes a freshly-built work node and
// immediately advances its generator for the leftmost child, which the
// publishing goroutine always searches itself (Young Brothers Wait
// Concept). The node is known non-terminal with moves available, so
// the generator must yield at least one ply.
func (w *workNodes) publishAndAdvanceLeftmost(wn workNode) (index, moveOrder int, ply tak.Ply, state *tak.State) {
	w.mu.Lock()
	defer w.mu.Unlock()

	index = w.nodes.push(wn)
	node := w.nodes.get(index)
	mo, p, st, ok := advanceState(node.node.State, node.generator)
	if !ok {
		panic("search: published work node has no legal plies")
	}
	return index, mo, p, st
}

// advanceOwned pulls the next child from the work node at index, for
// use by the goroutine that owns it (the one that published it).
// pruned reports that an ancestor cut this subtree off; ok is false
// once the generator is exhausted.
func (w *workNodes) advanceOwned(index int) (moveOrder int, ply tak.Ply, state *tak.State, pruned, ok bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	node := w.nodes.get(index)
	if node == nil {
		return 0, tak.Ply{}, nil, false, false
	}
	if node.variables.status == workPruned {
		return 0, tak.Ply{}, nil, true, false
	}

	mo, p, st, advanced := advanceState(node.node.State, node.generator)
	return mo, p, st, false, advanced
}

// activate marks a work node Active, letting idle workers pull its
// remaining children, and wakes anyone waiting for work.
func (w *workNodes) activate(index int) {
	w.mu.Lock()
	if node := w.nodes.get(index); node != nil {
		node.variables.status = workActive
	}
	w.cond.Broadcast()
	w.mu.Unlock()
}

// setBounds updates a published work node's alpha/beta window after its
// owner raises alpha, so workers pulling its remaining children search
// with the tightened window.
func (w *workNodes) setBounds(index int, alpha, beta ann.Evaluation) {
	w.mu.Lock()
	if node := w.nodes.get(index); node != nil {
		node.variables.alpha = alpha
		node.variables.beta = beta
	}
	w.mu.Unlock()
}

// pruneAndRemove marks every descendant of index Pruned and removes
// index itself, used when its owner finds a beta cutoff.
func (w *workNodes) pruneAndRemove(index int) {
	w.mu.Lock()
	pruneChildren(w, index)
	w.nodes.remove(index)
	w.mu.Unlock()
}

func (w *workNodes) remove(index int) {
	w.mu.Lock()
	w.nodes.remove(index)
	w.mu.Unlock()
}

// pullWork waits for, and pulls, one child position from whichever
// published work node is Active, for a worker goroutine with nothing
// else to do. shuttingDown reports that the search is winding down and
// the worker should exit.
func (w *workNodes) pullWork() (pulled pulledWork, shuttingDown bool) {
	for {
		w.mu.Lock()

		if w.shutdown {
			w.mu.Unlock()
			return pulledWork{}, true
		}

		index := w.nodes.findIndex(func(wn *workNode) bool { return wn.variables.status == workActive })
		if index < 0 {
			w.cond.Wait()
			w.mu.Unlock()
			continue
		}

		node := w.nodes.get(index)
		moveOrder, ply, state, ok := advanceState(node.node.State, node.generator)
		if !ok {
			// This node's generator is already exhausted; someone else
			// will remove it once its remaining results are in.
			w.mu.Unlock()
			continue
		}

		pulled = pulledWork{
			parentIndex:    node.node.ParentIndex,
			remainingDepth: node.node.RemainingDepth - 1,
			alpha:          node.variables.alpha,
			beta:           node.variables.beta,
			moveOrder:      moveOrder,
			ply:            ply,
			state:          state,
			results:        node.results,
		}
		w.mu.Unlock()
		return pulled, false
	}
}

// close tells worker to stop pulling new work once woken.
func (w *workNodes) close() {
	w.mu.Lock()
	w.shutdown = true
	w.cond.Broadcast()
	w.mu.Unlock()
}

// advanceState pulls the next usable ply from a work node's generator
// and applies it to a fresh copy of state, skipping any Fallible ply
// that turns out to be illegal (a stale transposition-table or killer
// suggestion). Returns ok=false once the generator is exhausted.
func advanceState(state *tak.State, generator *PlyGenerator) (moveOrder int, ply tak.Ply, next *tak.State, ok bool) {
	i := -1
	for {
		i++
		p, fallibility, has := generator.Next()
		if !has {
			return 0, tak.Ply{}, nil, false
		}

		candidate := state.Clone()
		if _, err := candidate.ExecutePly(p); err != nil {
			if fallibility == Fallible {
				continue
			}
			// An Infallible ply should never fail to execute; treat it
			// the same as a stale suggestion rather than panicking, since
			// a generator bug here shouldn't take the whole search down.
			continue
		}

		return i, p, candidate, true
	}
}

// pruneChildren marks every work node descended from parentIndex as
// Pruned, so goroutines already searching them return as soon as they
// next check their status, instead of completing a now-irrelevant
// subtree.
func pruneChildren(nodes *workNodes, parentIndex int) {
	for i := 0; i < nodes.nodes.len(); i++ {
		wn := nodes.nodes.get(i)
		if wn != nil && wn.node.ParentIndex == parentIndex {
			wn.variables.status = workPruned
			pruneChildren(nodes, i)
		}
	}
}
