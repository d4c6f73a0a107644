package search

import (
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/cdbfoster/takkerus-sub000/internal/ann"
	"github.com/cdbfoster/takkerus-sub000/internal/tak"
	"github.com/cdbfoster/takkerus-sub000/internal/tt"
)

// Result is the outcome of searching a position to a fixed depth: the
// best reply found and how the search got there.
type Result struct {
	BranchResult
	Statistics Statistics
}

// Run searches state to remainingDepth using threads goroutines
// cooperating over one shared Young Brothers Wait Concept work queue:
// one goroutine drives the root search synchronously while the rest
// help out with whatever published subtree has become Active, per
// worker/abSearch/pvs. threads below 1 is treated as 1.
//
// The killer move table is owned by this call: it starts empty and is
// shared only among this Run's own threads. A caller running several
// Run calls side by side at different depths (as internal/analysis
// does for its auxiliary workers) gets independent killer tables for
// free rather than one diversifying across unrelated depths.
func Run(
	state *tak.State,
	remainingDepth int,
	table *tt.Table,
	evaluator Evaluator,
	exactEval bool,
	interrupted *atomic.Bool,
	threads int,
) Result {
	if threads < 1 {
		threads = 1
	}

	stats := &atomicStatistics{}
	workersTerminated := &atomic.Bool{}

	search := &SearchState{
		StartPly:          state.PlyCount,
		Stats:             stats,
		Interrupted:       interrupted,
		WorkersTerminated: workersTerminated,
		Table:             table,
		KillerMoves:       newDepthKillerMoves(),
		ExactEval:         exactEval,
		Evaluator:         evaluator,
	}

	work := newWorkNodes()

	var helpers errgroup.Group
	for i := 1; i < threads; i++ {
		helpers.Go(func() error {
			worker(search, work)
			return nil
		})
	}

	root := abSearch(search, Node{
		ParentIndex:     noParent,
		State:           state,
		RemainingDepth:  remainingDepth,
		NullMoveAllowed: true,
	}, work, ann.Min(), ann.Max())

	workersTerminated.Store(true)
	work.close()
	_ = helpers.Wait()

	return Result{BranchResult: root, Statistics: stats.load()}
}
