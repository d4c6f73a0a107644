package analysis

import (
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cdbfoster/takkerus-sub000/internal/ann"
	"github.com/cdbfoster/takkerus-sub000/internal/search"
	"github.com/cdbfoster/takkerus-sub000/internal/tak"
	"github.com/cdbfoster/takkerus-sub000/internal/tt"
)

// defaultTableCapacity sizes a PersistentState's table when the
// caller doesn't size it themselves.
const defaultTableCapacity = 10_000_000

// PersistentState carries data gathered during one Analyze call that
// remains useful to a later one on the same game: currently just the
// transposition table.
type PersistentState struct {
	Table *tt.Table
}

// NewPersistentState returns persistent state for boards of the given
// size, with its transposition table sized to hold up to capacity
// entries.
func NewPersistentState(size, capacity int) *PersistentState {
	return &PersistentState{Table: tt.New(size, capacity)}
}

// InterimSender receives one Analysis for every iterative-deepening
// depth completed while a search is in flight, e.g. to emit TEI "info"
// lines as they become available rather than only at the end.
type InterimSender interface {
	Send(Analysis) error
}

// Config configures a call to Analyze. The zero value analyzes with
// no depth or time limit, which only makes sense paired with an
// Interrupted flag some other goroutine will eventually set.
type Config struct {
	// DepthLimit stops iterative deepening after this many plies.
	// Zero means unlimited.
	DepthLimit int
	// TimeLimit stops the search after this much wall-clock time.
	// Zero means unlimited.
	TimeLimit time.Duration
	// EarlyStop, combined with TimeLimit, skips starting an iteration
	// that's predicted to blow through the time limit before it could
	// finish.
	EarlyStop bool
	// TimeControl, if set, derives an additional time budget from a
	// game clock; the smaller of it and TimeLimit applies.
	TimeControl *TimeControl
	// Interrupted is polled throughout the search and can be set by
	// another goroutine (e.g. a TEI "stop" command) to cut it short.
	// If nil, one is allocated internally.
	Interrupted *atomic.Bool
	// PersistentState carries a transposition table across calls. If
	// nil, one is allocated internally and discarded when Analyze
	// returns.
	PersistentState *PersistentState
	// ExactEval disables search shortcuts (like null-move pruning)
	// that can occasionally misjudge a position, for callers that need
	// provably correct results over playing strength.
	ExactEval bool
	// Evaluator scores non-terminal positions. If nil, the handcrafted
	// evaluator is used.
	Evaluator search.Evaluator
	// InterimSender, if set, is sent one Analysis per completed depth.
	InterimSender InterimSender
	// Threads is how many goroutines cooperate on the search: one
	// drives the authoritative iterative-deepening line, and the rest
	// are Lazy-SMP auxiliary workers each searching the same position
	// at a different, deeper offset to diversify move ordering and
	// warm the shared transposition table. Below 1 is treated as 1.
	Threads int
}

// Analysis is the result of analyzing a position to some depth: its
// evaluation, principal variation, and the statistics gathered
// getting there.
type Analysis struct {
	State              *tak.State
	Depth              int
	FinalState         *tak.State
	Evaluation         ann.Evaluation
	PrincipalVariation []tak.Ply
	Stats              search.Statistics
	Time               time.Duration
}

// Analyze iteratively deepens a search of state, stopping at the
// first of: Config.DepthLimit, a time budget running out,
// Config.Interrupted being set, an early-stop time prediction, or a
// forced win or loss being found. It returns the last iteration
// completed before stopping.
func Analyze(cfg Config, state *tak.State) Analysis {
	if cfg.Threads < 1 {
		cfg.Threads = 1
	}
	if cfg.Interrupted == nil {
		cfg.Interrupted = &atomic.Bool{}
	}

	persistent := cfg.PersistentState
	if persistent == nil {
		persistent = NewPersistentState(state.Size, defaultTableCapacity)
	}

	evaluator := cfg.Evaluator
	if evaluator == nil {
		evaluator = search.HandcraftedEvaluator{}
	}

	var timeLimit time.Duration
	haveTimeLimit := cfg.TimeLimit > 0
	if haveTimeLimit {
		timeLimit = cfg.TimeLimit
	}
	if cfg.TimeControl != nil {
		useTime := cfg.TimeControl.GetUseTime(state)
		if !haveTimeLimit || useTime < timeLimit {
			timeLimit = useTime
			haveTimeLimit = true
		}
	}

	if haveTimeLimit {
		interrupt := spawnInterruptTimer(cfg.Interrupted, timeLimit)
		defer interrupt.stop()
	}

	maxDepth := cfg.DepthLimit
	if maxDepth <= 0 {
		maxDepth = maxIterativeDepth
	}

	analysis := Analysis{
		State:      state,
		FinalState: state,
		Evaluation: evaluator.Evaluate(state),
	}

	searchStart := time.Now()
	var iterationTimes []float64

	for iteration := 1; iteration <= maxDepth; iteration++ {
		iterationStart := time.Now()

		var aux errgroup.Group
		for i := 1; i < cfg.Threads; i++ {
			workerDepth := iteration + i
			aux.Go(func() error {
				search.Run(state, workerDepth, persistent.Table, evaluator, cfg.ExactEval, cfg.Interrupted, 1)
				return nil
			})
		}

		root := search.Run(state, iteration, persistent.Table, evaluator, cfg.ExactEval, cfg.Interrupted, 1)
		_ = aux.Wait()

		if cfg.Interrupted.Load() {
			break
		}

		pv, finalState := fetchPV(state, persistent.Table, root.Depth)

		analysis = Analysis{
			State:              state,
			Depth:              root.Depth,
			FinalState:         finalState,
			Evaluation:         root.Evaluation,
			PrincipalVariation: pv,
			Stats:              analysis.Stats.Add(root.Statistics),
			Time:               time.Since(searchStart),
		}

		if cfg.InterimSender != nil {
			_ = cfg.InterimSender.Send(analysis)
		}

		iterationTime := time.Since(iterationStart).Seconds()
		iterationTimes = append(iterationTimes, iterationTime)

		if analysis.Evaluation.IsWin() {
			break
		}

		if haveTimeLimit && cfg.EarlyStop {
			prediction := predictNextIterationTime(iterationTimes, iteration)
			if analysis.Time+time.Duration(prediction*float64(time.Second)) > timeLimit {
				break
			}
		}
	}

	return analysis
}

// maxIterativeDepth bounds an unlimited-depth search so the loop
// variable can't overflow; no Tak position takes anywhere near this
// many plies to resolve.
const maxIterativeDepth = 1 << 16

// predictNextIterationTime estimates how long the next
// iterative-deepening iteration will take, given the time each
// iteration so far has taken (in seconds) and the 1-indexed depth of
// the iteration that just finished. Branching factor tends to differ
// between even and odd plies (whoever is to move), so the ratio of
// each iteration's time to the iteration before it is summed over
// every other iteration only (one parity), divided by the total number
// of iterations and doubled, and the last iteration's time is scaled
// by that average ratio to predict one ply ahead.
func predictNextIterationTime(times []float64, iteration int) float64 {
	n := len(times)
	if n == 0 {
		return 0
	}

	factors := make([]float64, n)
	for i := range factors {
		denominator := times[0]
		if i > 0 {
			denominator = times[i-1]
		}
		factors[i] = times[i] / denominator
	}

	var sum float64
	start := 0
	if iteration%2 == 1 {
		start = 1
	}
	if n == 1 {
		sum = factors[0]
	} else {
		for i := start; i < n; i += 2 {
			sum += factors[i]
		}
		sum /= float64(n)
	}

	return times[n-1] * 2 * sum
}
