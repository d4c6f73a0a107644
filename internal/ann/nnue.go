package ann

import (
	"encoding/gob"
	"fmt"
	"os"

	"github.com/cdbfoster/takkerus-sub000/internal/tak"
)

// weightsVersion guards the on-disk format the way the teacher's
// FileHeader.Magic/Version pair does; bumped whenever Network's shape
// changes in a way that would make an old weights file unreadable.
const weightsVersion = 1

type weightsFile struct {
	Version      int
	FeatureCount int
	Network      *Network
}

// Evaluator wraps a Network with a per-ply accumulator stack, mirroring
// the teacher's NNUE Evaluator: Push before trying a move, Pop after
// reverting it, Evaluate to score the current position.
type Evaluator struct {
	boardSize int
	net       *Network
	stack     *AccumulatorStack
}

// NewEvaluator constructs an evaluator for a board of size n. If
// weightsPath is empty, the network is given small deterministic
// random weights instead of trained ones (useful for exercising the
// rest of the engine without a trained net available).
func NewEvaluator(n int, weightsPath string) (*Evaluator, error) {
	net := NewNetwork(FeatureCount(n))

	if weightsPath != "" {
		if err := net.Load(weightsPath); err != nil {
			return nil, err
		}
		if net.FeatureCount != FeatureCount(n) {
			return nil, fmt.Errorf("ann: weights file feature count %d does not match board size %d (want %d)",
				net.FeatureCount, n, FeatureCount(n))
		}
	} else {
		net.InitRandom(12345)
	}

	return &Evaluator{
		boardSize: n,
		net:       net,
		stack:     NewAccumulatorStack(),
	}, nil
}

// Evaluate returns the network's evaluation of s from its side to
// move's perspective, or the resolution score directly if the game has
// already ended.
func (e *Evaluator) Evaluate(s *tak.State) Evaluation {
	if eval, ok := ResolutionEvaluation(s); ok {
		return eval
	}

	acc := e.stack.Current()
	if !acc.Computed {
		e.Refresh(s)
		acc = e.stack.Current()
	}
	return e.net.Forward(acc.Features)
}

// Push saves accumulator state; call before trying a ply.
func (e *Evaluator) Push() { e.stack.Push() }

// Pop restores the previous ply's accumulator; call after reverting a
// ply.
func (e *Evaluator) Pop() { e.stack.Pop() }

// Refresh forces a full recomputation of the current ply's feature
// vector from s.
func (e *Evaluator) Refresh(s *tak.State) {
	acc := e.stack.Current()
	acc.Features = GatherFeatures(s).AsVector(e.boardSize)
	acc.Computed = true
}

// Reset clears the accumulator stack for a new game.
func (e *Evaluator) Reset() { e.stack.Reset() }

// Load reads a network's weights from filename.
func (n *Network) Load(filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("ann: open weights: %w", err)
	}
	defer f.Close()

	var wf weightsFile
	if err := gob.NewDecoder(f).Decode(&wf); err != nil {
		return fmt.Errorf("ann: decode weights: %w", err)
	}
	if wf.Version != weightsVersion {
		return fmt.Errorf("ann: unsupported weights version %d (want %d)", wf.Version, weightsVersion)
	}

	*n = *wf.Network
	return nil
}

// Save writes a network's weights to filename.
func (n *Network) Save(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("ann: create weights: %w", err)
	}
	defer f.Close()

	wf := weightsFile{Version: weightsVersion, FeatureCount: n.FeatureCount, Network: n}
	if err := gob.NewEncoder(f).Encode(&wf); err != nil {
		return fmt.Errorf("ann: encode weights: %w", err)
	}
	return nil
}
