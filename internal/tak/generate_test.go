package tak

import "testing"

func checkAllGeneratedPliesValidate(t *testing.T, s *State) {
	t.Helper()
	var plies []Ply
	plies = GeneratePlies(s, plies)
	if len(plies) == 0 {
		t.Fatal("expected at least one generated ply")
	}
	for _, ply := range plies {
		validated, err := s.ValidatePly(ply)
		if err != nil {
			t.Fatalf("generated ply %+v failed to validate: %v", ply, err)
		}
		if validated != ply {
			t.Fatalf("generated ply %+v normalized to %+v", ply, validated)
		}
	}
}

func TestGeneratePliesValidOnStartingPosition(t *testing.T) {
	s, err := NewState(5, 0)
	if err != nil {
		t.Fatal(err)
	}
	checkAllGeneratedPliesValidate(t, s)
}

func TestGeneratePliesValidMidgame(t *testing.T) {
	s := mustTpsState(t, 5, "x5/x,1S,x2,1C/x4,1/x,2,2C,x,2/x5 1 4")
	checkAllGeneratedPliesValidate(t, s)
}

// TestGeneratePliesEnumeratesAllPickupSizes guards against generating
// only the maximal carry: from a 3-tall stack with open squares ahead
// of it, every pickup size from 1 through the stack's height should
// produce at least one spread.
func TestGeneratePliesEnumeratesAllPickupSizes(t *testing.T) {
	s, err := NewState(5, 0)
	if err != nil {
		t.Fatal(err)
	}
	s.PlyCount = 2 // Past the opening-ply restriction; White to move.

	stack := NewStack().
		AddPiece(Piece{Color: White, Type: Flatstone}).
		AddPiece(Piece{Color: White, Type: Flatstone}).
		AddPiece(Piece{Color: White, Type: Flatstone})
	s.Board[0][0] = stack

	var plies []Ply
	plies = GeneratePlies(s, plies)

	seenCarry := map[int]bool{}
	for _, ply := range plies {
		if !ply.IsSpread || ply.X != 0 || ply.Y != 0 || ply.Direction != East {
			continue
		}
		carry := 0
		for _, c := range ply.Drops.Counts() {
			carry += c
		}
		seenCarry[carry] = true
	}

	for carry := 1; carry <= 3; carry++ {
		if !seenCarry[carry] {
			t.Errorf("no generated spread carries %d stone(s); got carries %v", carry, seenCarry)
		}
	}
}
