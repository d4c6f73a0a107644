// Package tei implements a subset of the Tak Engine Interface
// protocol: a line-oriented command loop an external collaborator
// (a GUI, a test harness, a script) drives over stdin/stdout.
package tei

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cdbfoster/takkerus-sub000/internal/analysis"
	"github.com/cdbfoster/takkerus-sub000/internal/cache"
	"github.com/cdbfoster/takkerus-sub000/internal/search"
	"github.com/cdbfoster/takkerus-sub000/internal/tak"
)

const (
	defaultSize          = 5
	defaultTableCapacity = 1_000_000
)

// senderFunc adapts a plain function to analysis.InterimSender.
type senderFunc func(analysis.Analysis) error

func (f senderFunc) Send(a analysis.Analysis) error { return f(a) }

// Engine dispatches TEI commands against one game in progress at a
// time: it owns the current position, the persistent search state,
// and (while a "go" is in flight) the goroutine running it.
type Engine struct {
	out       io.Writer
	cache     *cache.Cache
	evaluator search.Evaluator

	tableCapacity int
	threads       int

	size  int
	komi  tak.Komi
	state *tak.State

	persistent *analysis.PersistentState

	searching     atomic.Bool
	searchDone    chan struct{}
	stopRequested atomic.Bool
}

// New returns an Engine that writes protocol responses to out. c may
// be nil, in which case no cross-session position cache is used.
// evaluator may be nil, in which case every search falls back to the
// handcrafted evaluator. tableCapacity is the transposition table's
// slot count (zero means defaultTableCapacity); threads is the number
// of Lazy-SMP workers each search uses (zero means 1).
func New(out io.Writer, c *cache.Cache, evaluator search.Evaluator, tableCapacity, threads int) *Engine {
	if tableCapacity <= 0 {
		tableCapacity = defaultTableCapacity
	}
	if threads <= 0 {
		threads = 1
	}

	e := &Engine{
		out:           out,
		cache:         c,
		evaluator:     evaluator,
		tableCapacity: tableCapacity,
		threads:       threads,
	}
	e.newGame(defaultSize, 0)
	return e
}

// Run reads commands from in, one per line, until in is exhausted or
// a "quit" command is seen.
func (e *Engine) Run(in io.Reader) {
	scanner := bufio.NewScanner(in)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "tei":
			e.handleTei()
		case "isready":
			fmt.Fprintln(e.out, "readyok")
		case "setoption":
			e.handleSetOption(args)
		case "teinewgame":
			e.handleNewGame(args)
		case "position":
			e.handlePosition(args)
		case "go":
			e.handleGo(args)
		case "stop":
			e.handleStop()
		case "quit":
			e.handleStop()
			return
		}
	}
}

func (e *Engine) newGame(size int, komi tak.Komi) {
	state, err := tak.NewState(size, komi)
	if err != nil {
		// Only reachable with a size teinewgame should have already
		// rejected; fall back to the last known-good game rather than
		// leaving the engine in a half-initialized state.
		if e.state != nil {
			return
		}
		state, _ = tak.NewState(defaultSize, 0)
		size, komi = defaultSize, 0
	}

	e.size = size
	e.komi = komi
	e.state = state
	e.persistent = analysis.NewPersistentState(size, e.tableCapacity)

	if e.cache != nil {
		_, _ = e.cache.Seed(e.persistent.Table)
	}
}

func (e *Engine) handleTei() {
	fmt.Fprintln(e.out, "id name Takkerus")
	fmt.Fprintln(e.out, "id author Takkerus Contributors")
	fmt.Fprintln(e.out, "option name HalfKomi type spin default 0 min -10 max 10")
	fmt.Fprintln(e.out, "teiok")
}

func (e *Engine) handleSetOption(args []string) {
	name, value := parseNameValue(args)

	if strings.EqualFold(name, "HalfKomi") {
		n, err := strconv.Atoi(value)
		if err != nil {
			fmt.Fprintf(e.out, "info string invalid HalfKomi value %q\n", value)
			return
		}
		e.komi = tak.Komi(n)
	}
}

func parseNameValue(args []string) (name, value string) {
	readingName, readingValue := false, false

	for _, a := range args {
		switch a {
		case "name":
			readingName, readingValue = true, false
		case "value":
			readingName, readingValue = false, true
		default:
			switch {
			case readingName:
				if name != "" {
					name += " "
				}
				name += a
			case readingValue:
				if value != "" {
					value += " "
				}
				value += a
			}
		}
	}

	return name, value
}

func (e *Engine) handleNewGame(args []string) {
	size := defaultSize
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil {
			size = n
		}
	}
	e.newGame(size, e.komi)
}

// handlePosition parses:
//
//	position startpos moves <ply>...
//	position tps <tps> moves <ply>...
func (e *Engine) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}

	var moveStart int

	switch args[0] {
	case "startpos":
		state, err := tak.NewState(e.size, e.komi)
		if err != nil {
			fmt.Fprintf(e.out, "info string invalid startpos: %v\n", err)
			return
		}
		e.state = state

		moveStart = len(args)
		for i, a := range args {
			if a == "moves" {
				moveStart = i + 1
				break
			}
		}

	case "tps":
		tpsEnd := len(args)
		for i, a := range args[1:] {
			if a == "moves" {
				tpsEnd = i + 1
				break
			}
		}

		tpsStr := strings.Join(args[1:tpsEnd], " ")
		state, err := tak.ParseTpsState(tpsStr, e.size)
		if err != nil {
			fmt.Fprintf(e.out, "info string invalid tps: %v\n", err)
			return
		}
		e.state = state

		moveStart = len(args)
		for i, a := range args {
			if a == "moves" {
				moveStart = i + 1
				break
			}
		}

	default:
		return
	}

	for _, plyStr := range args[moveStart:] {
		ply, err := tak.ParsePtn(e.size, plyStr)
		if err != nil {
			fmt.Fprintf(e.out, "info string invalid ply %q: %v\n", plyStr, err)
			return
		}
		if _, err := e.state.ExecutePly(ply); err != nil {
			fmt.Fprintf(e.out, "info string illegal ply %q: %v\n", plyStr, err)
			return
		}
	}
}

// goOptions holds parsed "go" command arguments.
type goOptions struct {
	Depth    int
	MoveTime time.Duration
	WTime    time.Duration
	BTime    time.Duration
	WInc     time.Duration
	BInc     time.Duration
	Infinite bool
}

func parseGoOptions(args []string) goOptions {
	var opts goOptions

	readMillis := func(i int) (time.Duration, bool) {
		if i >= len(args) {
			return 0, false
		}
		ms, err := strconv.Atoi(args[i])
		if err != nil {
			return 0, false
		}
		return time.Duration(ms) * time.Millisecond, true
	}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "depth":
			if i+1 < len(args) {
				opts.Depth, _ = strconv.Atoi(args[i+1])
				i++
			}
		case "movetime":
			if d, ok := readMillis(i + 1); ok {
				opts.MoveTime = d
				i++
			}
		case "wtime":
			if d, ok := readMillis(i + 1); ok {
				opts.WTime = d
				i++
			}
		case "btime":
			if d, ok := readMillis(i + 1); ok {
				opts.BTime = d
				i++
			}
		case "winc":
			if d, ok := readMillis(i + 1); ok {
				opts.WInc = d
				i++
			}
		case "binc":
			if d, ok := readMillis(i + 1); ok {
				opts.BInc = d
				i++
			}
		case "infinite":
			opts.Infinite = true
		}
	}

	return opts
}

func (e *Engine) handleGo(args []string) {
	opts := parseGoOptions(args)

	cfg := analysis.Config{
		PersistentState: e.persistent,
		Interrupted:     &e.stopRequested,
		Evaluator:       e.evaluator,
		Threads:         e.threads,
		InterimSender: senderFunc(func(a analysis.Analysis) error {
			e.sendInfo(a)
			return nil
		}),
	}

	if opts.Depth > 0 {
		cfg.DepthLimit = opts.Depth
	}
	if opts.MoveTime > 0 {
		cfg.TimeLimit = opts.MoveTime
	}

	if !opts.Infinite {
		var ourTime, ourInc time.Duration
		if e.state.ToMove() == tak.White {
			ourTime, ourInc = opts.WTime, opts.WInc
		} else {
			ourTime, ourInc = opts.BTime, opts.BInc
		}
		if ourTime > 0 {
			tc := analysis.TimeControl{Remaining: ourTime, Increment: ourInc}
			cfg.TimeControl = &tc
			cfg.EarlyStop = true
		}
	}

	e.stopRequested.Store(false)
	e.searching.Store(true)
	e.searchDone = make(chan struct{})

	state := e.state

	go func() {
		defer close(e.searchDone)

		result := analysis.Analyze(cfg, state)
		e.searching.Store(false)

		if e.cache != nil && len(result.PrincipalVariation) > 0 {
			_, _ = e.cache.PersistLine(state, e.persistent.Table, result.PrincipalVariation)
		}

		e.sendBestMove(result)
	}()
}

func (e *Engine) sendInfo(a analysis.Analysis) {
	parts := []string{
		fmt.Sprintf("depth %d", a.Depth),
		fmt.Sprintf("seldepth %d", a.Depth),
		fmt.Sprintf("score cp %d", int32(a.Evaluation)),
		fmt.Sprintf("time %d", a.Time.Milliseconds()),
		fmt.Sprintf("nodes %d", a.Stats.Visited),
	}

	if a.Time > 0 {
		nps := uint64(float64(a.Stats.Visited) / a.Time.Seconds())
		parts = append(parts, fmt.Sprintf("nps %d", nps))
	}

	if len(a.PrincipalVariation) > 0 {
		plies := make([]string, len(a.PrincipalVariation))
		for i, p := range a.PrincipalVariation {
			plies[i] = tak.FormatPtn(e.size, p)
		}
		parts = append(parts, "pv "+strings.Join(plies, " "))
	}

	fmt.Fprintf(e.out, "info %s\n", strings.Join(parts, " "))
}

func (e *Engine) sendBestMove(result analysis.Analysis) {
	if len(result.PrincipalVariation) == 0 {
		fmt.Fprintln(e.out, "bestmove 0000")
		return
	}
	fmt.Fprintf(e.out, "bestmove %s\n", tak.FormatPtn(e.size, result.PrincipalVariation[0]))
}

func (e *Engine) handleStop() {
	if e.searching.Load() {
		e.stopRequested.Store(true)
		<-e.searchDone
	}
}
