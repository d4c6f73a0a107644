package search

import (
	"testing"

	"github.com/cdbfoster/takkerus-sub000/internal/ann"
	"github.com/cdbfoster/takkerus-sub000/internal/tak"
)

func TestHandcraftedEvaluatorMatchesAnnEvaluate(t *testing.T) {
	s, err := tak.NewState(5, 0)
	if err != nil {
		t.Fatalf("NewState() = %v", err)
	}

	var e Evaluator = HandcraftedEvaluator{}
	if got, want := e.Evaluate(s), ann.Evaluate(s); got != want {
		t.Fatalf("Evaluate() = %v, want %v", got, want)
	}
}
