package ann

import (
	"testing"

	"github.com/cdbfoster/takkerus-sub000/internal/tak"
)

func mustTpsState(t *testing.T, n int, tps string) *tak.State {
	t.Helper()
	s, err := tak.ParseTpsState(tps, n)
	if err != nil {
		t.Fatalf("ParseTpsState(%q, %d) = %v", tps, n, err)
	}
	return s
}

func TestEvaluateMaterial(t *testing.T) {
	s := mustTpsState(t, 6, "x6/x4,2,1/x2,2,2C,1,2/x2,2,x,1,1/x5,1/x6 1 6")

	if got, want := evaluateMaterial(s.Metadata, s.Metadata.P1Pieces), 5*weight.flatstone/6; got != want {
		t.Errorf("p1 material = %d, want %d", got, want)
	}
	if got, want := evaluateMaterial(s.Metadata, s.Metadata.P2Pieces), 4*weight.flatstone/6+1*weight.capstone/6; got != want {
		t.Errorf("p2 material = %d, want %d", got, want)
	}

	s = mustTpsState(t, 6, "x2,21,122,1121S,112S/1S,x,1112,x,2S,x/112C,2S,x,1222221C,2,x/2,x2,1,2121S,x/112,1112111112S,x3,221S/2,2,x2,21,2 1 56")

	if got, want := evaluateMaterial(s.Metadata, s.Metadata.P1Pieces), 3*weight.flatstone/6+4*weight.standingStone/6+1*weight.capstone/6; got != want {
		t.Errorf("p1 material = %d, want %d", got, want)
	}
	if got, want := evaluateMaterial(s.Metadata, s.Metadata.P2Pieces), 8*weight.flatstone/6+4*weight.standingStone/6+1*weight.capstone/6; got != want {
		t.Errorf("p2 material = %d, want %d", got, want)
	}
}

func TestEvaluateResolvedRoadWin(t *testing.T) {
	s := mustTpsState(t, 5, "1,1,1,1,1/x5/x5/x5/x5 2 4")

	eval := Evaluate(s)
	if !eval.IsWin() || eval > 0 {
		t.Fatalf("Evaluate() = %v, want a loss for the side to move", eval)
	}
}

func TestEvaluateInProgressIsSymmetric(t *testing.T) {
	s, err := tak.NewState(5, 0)
	if err != nil {
		t.Fatalf("NewState: %v", err)
	}

	if got := Evaluate(s); got != Zero() {
		t.Fatalf("Evaluate(empty board) = %v, want 0", got)
	}
}
