package search

import (
	"github.com/cdbfoster/takkerus-sub000/internal/ann"
	"github.com/cdbfoster/takkerus-sub000/internal/tak"
)

// Evaluator scores a position from its side to move's perspective.
// ann.Evaluate (the handcrafted evaluator) satisfies this through the
// HandcraftedEvaluator adapter below, and *ann.Evaluator (the trained
// network) satisfies it directly through its own Evaluate method, matching
// the original's evaluator trait object that the search holds by
// reference rather than depending on a concrete evaluator type.
type Evaluator interface {
	Evaluate(s *tak.State) ann.Evaluation
}

// HandcraftedEvaluator adapts the stateless ann.Evaluate function into
// an Evaluator.
type HandcraftedEvaluator struct{}

func (HandcraftedEvaluator) Evaluate(s *tak.State) ann.Evaluation { return ann.Evaluate(s) }
