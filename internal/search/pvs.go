package search

import (
	"github.com/cdbfoster/takkerus-sub000/internal/ann"
	"github.com/cdbfoster/takkerus-sub000/internal/tak"
	"github.com/cdbfoster/takkerus-sub000/internal/tt"
)

// abSearch is the heart of the parallel alpha-beta search: it evaluates
// leaves, probes the transposition table, tries a null-move cutoff, and
// otherwise publishes its position's remaining children to work so idle
// goroutines can help search them once the leftmost one (searched here,
// synchronously) comes back, per the Young Brothers Wait Concept.
func abSearch(search *SearchState, node Node, work *workNodes, alpha, beta ann.Evaluation) BranchResult {
	searchDepth := int(node.State.PlyCount - search.StartPly)

	search.Stats.visited.Add(1)

	pvNode := alpha.NextUp() != beta
	if !pvNode {
		search.Stats.scouted.Add(1)
	}

	_, isTerminal := node.State.Resolution()
	if isTerminal {
		search.Stats.terminal.Add(1)
	}

	if node.RemainingDepth == 0 || isTerminal {
		evaluation := search.Evaluator.Evaluate(node.State)
		search.Stats.evaluated.Add(1)
		return BranchResult{Depth: 0, Evaluation: evaluation}
	}

	hit := fetchFromTT(search, node, alpha, beta)
	if hit.isSave {
		return hit.result
	}

	return abSearchWithSuggestion(search, node, work, alpha, beta, searchDepth, hit.ply, hit.hasPly)
}

func abSearchWithSuggestion(search *SearchState, node Node, work *workNodes, alpha, beta ann.Evaluation, searchDepth int, ttPly tak.Ply, hasTT bool) BranchResult {
	if canUseNullMoveSearch(search, node) {
		if result, cutoff := nullMoveSearch(search, node, work, beta); cutoff {
			return result
		}
	}

	generator := NewPlyGenerator(node.State, ttPly, hasTT, search.KillerMoves.depth(searchDepth))

	results := newWorkNodeResults()
	wn := workNode{
		generator: generator,
		node:      node,
		variables: workNodeVariables{status: workWait, alpha: alpha, beta: beta},
		results:   results,
	}

	index, leftmostMoveOrder, leftmostPly, leftmostState := work.publishAndAdvanceLeftmost(wn)

	leftmostResult := negate(abSearch(search, Node{
		ParentIndex:     index,
		State:           leftmostState,
		RemainingDepth:  node.RemainingDepth - 1,
		NullMoveAllowed: true,
	}, work, negate(beta), negate(alpha)))

	results.push(indexedResult{
		moveOrder: leftmostMoveOrder,
		result: BranchResult{
			BestPly:    leftmostPly,
			HasBestPly: true,
			Depth:      leftmostResult.Depth + 1,
			Evaluation: leftmostResult.Evaluation,
		},
	})

	proc := &resultProcessor{
		search:      search,
		node:        node,
		work:        work,
		index:       index,
		searchDepth: searchDepth,
		alpha:       alpha,
		beta:        beta,
		best:        BranchResult{Evaluation: ann.Min()},
	}

	if done, result := proc.drain(results); done {
		return result
	}

	work.activate(index)

	for {
		moveOrder, ply, state, pruned, ok := work.advanceOwned(index)
		if pruned {
			return BranchResult{Evaluation: proc.alpha, BestPly: proc.best.BestPly, HasBestPly: proc.best.HasBestPly, Depth: proc.best.Depth}
		}
		if !ok {
			break
		}

		next := pvs(search, Node{
			ParentIndex:     index,
			State:           state,
			RemainingDepth:  node.RemainingDepth - 1,
			NullMoveAllowed: true,
		}, work, proc.alpha, proc.beta)

		results.push(indexedResult{
			moveOrder: moveOrder,
			result: BranchResult{
				BestPly:    ply,
				HasBestPly: true,
				Depth:      next.Depth + 1,
				Evaluation: next.Evaluation,
			},
		})

		if done, result := proc.drain(results); done {
			return result
		}
	}

	// The generator is exhausted, so every remaining ply is either
	// searched or being searched by a helper. Wait for them to finish,
	// holding results' lock across the worker-count check and the wait
	// itself so a helper can't finish and signal in the gap between them.
	for {
		results.mu.Lock()
		prune := proc.processLocked(results.results[proc.cursor:])
		proc.cursor = len(results.results)
		interrupted := search.Interrupted.Load()

		if !prune && !interrupted && results.workerCount > 0 {
			results.cond.Wait()
			results.mu.Unlock()
			continue
		}
		results.mu.Unlock()

		if interrupted {
			return BranchResult{Evaluation: proc.alpha, BestPly: proc.best.BestPly, HasBestPly: proc.best.HasBestPly, Depth: proc.best.Depth}
		}
		if prune {
			work.pruneAndRemove(index)
			storeInTT(search, node, proc.alpha, proc.beta, proc.best.BestPly, max(proc.best.Depth, node.RemainingDepth), proc.raisedAlpha)
			return BranchResult{Evaluation: proc.alpha, BestPly: proc.best.BestPly, HasBestPly: proc.best.HasBestPly, Depth: proc.best.Depth}
		}
		break
	}

	work.remove(index)

	if proc.raisedAlpha {
		recordPlyOrder(&search.Stats.pvPlyOrder, proc.bestMoveOrder)
	} else {
		recordPlyOrder(&search.Stats.allPlyOrder, proc.bestMoveOrder)
	}

	storeInTT(search, node, proc.alpha, beta, proc.best.BestPly, max(proc.best.Depth, node.RemainingDepth), proc.raisedAlpha)

	return BranchResult{
		BestPly:    proc.best.BestPly,
		HasBestPly: proc.best.HasBestPly,
		Depth:      proc.best.Depth,
		Evaluation: proc.alpha,
	}
}

// negate flips a BranchResult to the other side's perspective, the Go
// equivalent of negating a child search's return value before folding
// it into the parent's alpha-beta window.
func negate(r BranchResult) BranchResult {
	r.Evaluation = -r.Evaluation
	return r
}

// resultProcessor accumulates a work node's children as they arrive,
// matching pvs.rs's process_results! macro: track the best result seen,
// raise alpha, detect a beta cutoff, and keep the published work node's
// bounds in sync for any helper goroutines.
type resultProcessor struct {
	search      *SearchState
	node        Node
	work        *workNodes
	index       int
	searchDepth int

	alpha, beta   ann.Evaluation
	best          BranchResult
	bestMoveOrder int
	raisedAlpha   bool
	cursor        int
}

// drain locks results, processes everything new, and reports whether
// the caller should return immediately (an interrupt or a beta cutoff).
func (p *resultProcessor) drain(results *workNodeResults) (done bool, out BranchResult) {
	results.mu.Lock()
	fresh := results.results[p.cursor:]
	prune := p.processLocked(fresh)
	p.cursor = len(results.results)
	results.mu.Unlock()

	if p.search.Interrupted.Load() {
		return true, BranchResult{Evaluation: p.alpha, BestPly: p.best.BestPly, HasBestPly: p.best.HasBestPly, Depth: p.best.Depth}
	}

	if prune {
		p.work.pruneAndRemove(p.index)

		storeInTT(p.search, p.node, p.alpha, p.beta, p.best.BestPly, max(p.best.Depth, p.node.RemainingDepth), p.raisedAlpha)

		return true, BranchResult{Evaluation: p.alpha, BestPly: p.best.BestPly, HasBestPly: p.best.HasBestPly, Depth: p.best.Depth}
	}

	return false, BranchResult{}
}

// processLocked folds newly-arrived results into best/alpha, assuming
// results' mutex is already held by the caller. Returns true on a beta
// cutoff.
func (p *resultProcessor) processLocked(fresh []indexedResult) bool {
	updateBounds := false
	prune := false

	for _, ir := range fresh {
		if ir.result.Evaluation > p.best.Evaluation {
			p.best = ir.result
			p.bestMoveOrder = ir.moveOrder
		}

		if ir.result.Evaluation > p.alpha {
			p.alpha = ir.result.Evaluation
			p.raisedAlpha = true
			updateBounds = true

			if p.alpha >= p.beta {
				p.alpha = p.beta
				prune = true
				p.search.Stats.betaCutoff.Add(1)
				p.search.KillerMoves.depth(p.searchDepth).push(p.best.BestPly)
				break
			}
		}
	}

	if updateBounds {
		p.work.setBounds(p.index, p.alpha, p.beta)
	}

	return prune
}

// ttFetch is the outcome of probing the transposition table: either
// nothing useful, a move worth trying first, or a result good enough to
// return without searching any further.
type ttFetch struct {
	hasPly bool
	ply    tak.Ply
	isSave bool
	result BranchResult
}

func fetchFromTT(search *SearchState, node Node, alpha, beta ann.Evaluation) ttFetch {
	entry, ok := search.Table.Get(node.State.Metadata.Hash)
	if !ok {
		return ttFetch{}
	}

	search.Stats.ttHits.Add(1)

	isSave := entry.Depth >= node.RemainingDepth && func() bool {
		switch entry.Bound {
		case tt.Exact:
			return false
		case tt.Upper:
			return entry.Evaluation <= alpha
		case tt.Lower:
			return entry.Evaluation >= beta
		default:
			return false
		}
	}()

	isTerminal := entry.Bound == tt.Exact && entry.Evaluation.IsWin()

	if isSave || (isTerminal && validPly(node.State, entry.Ply)) {
		search.Stats.ttSaves.Add(1)

		eval := entry.Evaluation
		switch entry.Bound {
		case tt.Upper:
			eval = alpha
		case tt.Lower:
			eval = beta
		}

		return ttFetch{isSave: true, result: BranchResult{BestPly: entry.Ply, HasBestPly: true, Depth: entry.Depth, Evaluation: eval}}
	}

	return ttFetch{hasPly: true, ply: entry.Ply}
}

func validPly(state *tak.State, ply tak.Ply) bool {
	clone := state.Clone()
	_, err := clone.ExecutePly(ply)
	return err == nil
}

func storeInTT(search *SearchState, node Node, alpha, beta ann.Evaluation, ply tak.Ply, depth int, raisedAlpha bool) {
	var bound tt.Bound
	switch {
	case alpha == beta:
		bound = tt.Lower
	case raisedAlpha:
		bound = tt.Exact
	default:
		bound = tt.Upper
	}

	inserted := search.Table.Insert(node.State.Metadata.Hash, tt.NewEntry(
		ply,
		alpha,
		bound,
		max(depth, node.RemainingDepth),
		node.State.PlyCount,
	))

	if inserted {
		search.Stats.ttStores.Add(1)
	} else {
		search.Stats.ttStoreFails.Add(1)
	}
}

func canUseNullMoveSearch(search *SearchState, node Node) bool {
	return !search.ExactEval && node.NullMoveAllowed && node.RemainingDepth >= 3
}

// nullMoveSearch passes the turn and searches at a reduced depth with a
// minimal window; a fail-high here means the position is so good that
// even giving the opponent a free move doesn't help them, so the whole
// subtree can be pruned.
func nullMoveSearch(search *SearchState, node Node, work *workNodes, beta ann.Evaluation) (BranchResult, bool) {
	nullState := node.State.Clone()
	nullState.PlyCount++

	scout := negate(abSearch(search, Node{
		ParentIndex:     node.ParentIndex,
		State:           nullState,
		RemainingDepth:  node.RemainingDepth - 3,
		NullMoveAllowed: false,
	}, work, negate(beta), negate(beta).NextUp()))

	if scout.Evaluation >= beta {
		search.Stats.nullCutoff.Add(1)
		scout.Evaluation = beta
		return scout, true
	}

	return BranchResult{}, false
}

// pvs performs a principal-variation search: a cheap null-window scout
// first, trusting move ordering to have already found the best move,
// falling back to a full re-search only if the scout lands inside the
// PV window.
func pvs(search *SearchState, node Node, work *workNodes, alpha, beta ann.Evaluation) BranchResult {
	scout := negate(abSearch(search, node, work, negate(alpha).NextDown(), negate(alpha)))

	if scout.Evaluation > alpha && scout.Evaluation < beta {
		search.Stats.researched.Add(1)
		return negate(abSearch(search, node, work, negate(beta), negate(alpha)))
	}

	return scout
}

// worker runs on every search goroutine besides the one driving the
// root search, pulling whatever published work node is ready for help
// and searching its next child until the search winds down.
func worker(search *SearchState, work *workNodes) {
	for {
		pulled, shuttingDown := work.pullWork()
		if shuttingDown {
			return
		}

		pulled.results.incWorkers()

		result := pvs(search, Node{
			ParentIndex:     pulled.parentIndex,
			State:           pulled.state,
			RemainingDepth:  pulled.remainingDepth,
			NullMoveAllowed: true,
		}, work, pulled.alpha, pulled.beta)

		pulled.results.mu.Lock()
		pulled.results.results = append(pulled.results.results, indexedResult{
			moveOrder: pulled.moveOrder,
			result: BranchResult{
				BestPly:    pulled.ply,
				HasBestPly: true,
				Depth:      result.Depth + 1,
				Evaluation: result.Evaluation,
			},
		})
		pulled.results.workerCount--
		pulled.results.cond.Signal()
		pulled.results.mu.Unlock()
	}
}

