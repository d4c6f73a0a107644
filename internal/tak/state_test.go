package tak

import "testing"

func mustTpsState(t *testing.T, n int, tps string) *State {
	t.Helper()
	s, err := ParseTpsState(tps, n)
	if err != nil {
		t.Fatalf("parse tps %q: %v", tps, err)
	}
	return s
}

func mustPtn(t *testing.T, n int, ptn string) Ply {
	t.Helper()
	p, err := ParsePtn(n, ptn)
	if err != nil {
		t.Fatalf("parse ptn %q: %v", ptn, err)
	}
	return p
}

func TestStateExecuteValidPlies(t *testing.T) {
	s, err := NewState(5, 0)
	if err != nil {
		t.Fatal(err)
	}

	plies := []string{"a5", "a1", "b5", "b1", "Cc1", "c5", "c1>", "e5"}
	for _, ptn := range plies {
		ply := mustPtn(t, 5, ptn)
		if _, err := s.ExecutePly(ply); err != nil {
			t.Fatalf("execute %q: %v", ptn, err)
		}
	}

	if s.PlyCount != uint16(len(plies)) {
		t.Fatalf("ply count: got %d, want %d", s.PlyCount, len(plies))
	}
}

func TestStateExecuteBadCrush(t *testing.T) {
	s, err := NewState(5, 0)
	if err != nil {
		t.Fatal(err)
	}
	s.Board[0][0] = s.Board[0][0].AddPiece(Piece{Color: White, Type: Flatstone})
	s.Board[1][0] = s.Board[1][0].AddPiece(Piece{Color: White, Type: StandingStone})
	s.PlyCount = 4
	s.RecalculateMetadata()

	ply := mustPtn(t, 5, "a1>")
	if _, err := s.ExecutePly(ply); err == nil {
		t.Fatal("expected error spreading a flatstone onto a standing stone")
	}
}

func TestStateRevertValidPlies(t *testing.T) {
	s, err := NewState(5, 0)
	if err != nil {
		t.Fatal(err)
	}

	before := mustTpsState(t, 5, NewTpsFromState(s).String())

	var executed []Ply
	for _, ptn := range []string{"a5", "a1", "b5", "b1", "Cc1", "c5", "c1>", "e5"} {
		ply := mustPtn(t, 5, ptn)
		p, err := s.ExecutePly(ply)
		if err != nil {
			t.Fatalf("execute %q: %v", ptn, err)
		}
		executed = append(executed, p)
	}

	for i := len(executed) - 1; i >= 0; i-- {
		if err := s.RevertPly(executed[i]); err != nil {
			t.Fatalf("revert %d: %v", i, err)
		}
	}

	if !statesEqual(s, before) {
		t.Fatal("reverted state does not match starting state")
	}
}

func TestStateRevertNoPreviousPlies(t *testing.T) {
	s, err := NewState(5, 0)
	if err != nil {
		t.Fatal(err)
	}
	ply := mustPtn(t, 5, "a1")
	if err := s.RevertPly(ply); err != ErrNoPreviousPlies {
		t.Fatalf("got %v, want ErrNoPreviousPlies", err)
	}
}

func TestStateResolutionRoadWin(t *testing.T) {
	s := mustTpsState(t, 5, "1,1,1,1,1/x5/x5/x5/x5 2 4")
	res, ok := s.Resolution()
	if !ok {
		t.Fatal("expected a resolved game")
	}
	if res.Kind != RoadWin || res.Color != White {
		t.Fatalf("got %+v", res)
	}
}

func TestStateResolutionSimultaneousRoadsMoverWins(t *testing.T) {
	// Ply count works out odd (last mover was White), so White wins
	// despite both players having a completed road.
	s := mustTpsState(t, 5, "1,1,1,1,1/2,2,2,2,2/x5/x5/x5 2 4")
	res, ok := s.Resolution()
	if !ok {
		t.Fatal("expected a resolved game")
	}
	if res.Kind != RoadWin || res.Color != White {
		t.Fatalf("got %+v", res)
	}
}

func TestStateResolutionFlatsWin(t *testing.T) {
	s := mustTpsState(t, 5, "1,2,1,2,1/2,1,2,1,2/1,2,1,2,1/2,1,2,1,2/1,2,1,2,1 1 13")
	res, ok := s.Resolution()
	if !ok {
		t.Fatal("expected a resolved game")
	}
	if res.Kind != FlatsWin || res.Color != White {
		t.Fatalf("got %+v", res)
	}
}

func TestStateResolutionDraw(t *testing.T) {
	// Checkerboard fill with a standing stone breaking the last row's
	// flat count into a 12-12 tie, board full, no roads on either side.
	s := mustTpsState(t, 5, "1,2,1,2,1/2,1,2,1,2/1,2,1,2,1/2,1,2,1,2/1,2,1,2,1S 1 13")
	res, ok := s.Resolution()
	if !ok {
		t.Fatal("expected a resolved game")
	}
	if res.Kind != Draw {
		t.Fatalf("got %+v", res)
	}
}

func TestStateResolutionNoneInProgress(t *testing.T) {
	s, err := NewState(5, 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Resolution(); ok {
		t.Fatal("expected no resolution on starting position")
	}
}
