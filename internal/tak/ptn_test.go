package tak

import "testing"

func TestPtnCoordinatesAreInBounds(t *testing.T) {
	p, err := ParsePtn(3, "a1")
	if err != nil || p.X != 0 || p.Y != 0 || p.PieceType != Flatstone {
		t.Fatalf("a1: got %+v, %v", p, err)
	}

	p, err = ParsePtn(3, "c3")
	if err != nil || p.X != 2 || p.Y != 2 {
		t.Fatalf("c3: got %+v, %v", p, err)
	}

	if _, err := ParsePtn(3, "d1"); err == nil {
		t.Fatal("expected invalid file letter error")
	}

	if _, err := ParsePtn(3, "a4"); err == nil {
		t.Fatal("expected invalid rank number error")
	}
}

func TestPtnPlacePieceTypes(t *testing.T) {
	cases := []struct {
		in string
		t  PieceType
	}{
		{"a1", Flatstone},
		{"Fa1", Flatstone},
		{"Sa1", StandingStone},
		{"Ca1", Capstone},
	}
	for _, c := range cases {
		p, err := ParsePtn(3, c.in)
		if err != nil {
			t.Fatalf("%s: %v", c.in, err)
		}
		if p.IsSpread || p.X != 0 || p.Y != 0 || p.PieceType != c.t {
			t.Fatalf("%s: got %+v", c.in, p)
		}
	}
}

func TestPtnSlideDirections(t *testing.T) {
	cases := []struct {
		in  string
		dir Direction
	}{
		{"c3+", North},
		{"c3>", East},
		{"c3-", South},
		{"c3<", West},
	}
	for _, c := range cases {
		p, err := ParsePtn(5, c.in)
		if err != nil {
			t.Fatalf("%s: %v", c.in, err)
		}
		if !p.IsSpread || p.X != 2 || p.Y != 2 || p.Direction != c.dir || p.Drops.Counts()[0] != 1 {
			t.Fatalf("%s: got %+v", c.in, p)
		}
	}
}

func TestPtnSlideAmounts(t *testing.T) {
	if _, err := ParsePtn(5, "a3*"); err == nil {
		t.Fatal("expected error for missing direction before crush marker")
	}
	if _, err := ParsePtn(3, "4a1+"); err == nil {
		t.Fatal("expected invalid carry amount error")
	}

	p, err := ParsePtn(5, "a3>")
	if err != nil || p.X != 0 || p.Y != 2 || p.Direction != East {
		t.Fatalf("a3>: got %+v, %v", p, err)
	}

	p, err = ParsePtn(5, "a3>1")
	if err != nil || p.Drops.Counts()[0] != 1 {
		t.Fatalf("a3>1: got %+v, %v", p, err)
	}

	p, err = ParsePtn(5, "3a3>12")
	if err != nil {
		t.Fatalf("3a3>12: %v", err)
	}
	if counts := p.Drops.Counts(); len(counts) != 2 || counts[0] != 1 || counts[1] != 2 {
		t.Fatalf("3a3>12: got drops %v", counts)
	}

	if _, err := ParsePtn(5, "3a3>22"); err == nil {
		t.Fatal("expected carry/drop mismatch error")
	}
}

func TestPtnSlideBounds(t *testing.T) {
	for _, s := range []string{"a3+", "3a1>111", "a1-", "2b1<11"} {
		if _, err := ParsePtn(3, s); err == nil {
			t.Fatalf("%s: expected out-of-bounds error", s)
		}
	}
}

func TestPtnCrushes(t *testing.T) {
	p, err := ParsePtn(5, "3a3>21*")
	if err != nil {
		t.Fatalf("3a3>21*: %v", err)
	}
	if !p.Crush {
		t.Fatal("expected crush flag set")
	}
	if counts := p.Drops.Counts(); len(counts) != 2 || counts[0] != 2 || counts[1] != 1 {
		t.Fatalf("got drops %v", counts)
	}

	if _, err := ParsePtn(5, "3a3>12*"); err == nil {
		t.Fatal("expected error: cannot crush with more than one stone")
	}
}

func TestPtnFormat(t *testing.T) {
	// FormatPtn always emits the leading carry digit for a spread, even
	// when ParsePtn would have accepted it omitted (defaulting to 1) —
	// so these are not all symmetric round trips.
	cases := []struct{ in, out string }{
		{"a1", "a1"},
		{"Sb2", "Sb2"},
		{"Cc3", "Cc3"},
		{"a3>", "1a3>"},
		{"3a3>21*", "3a3>21*"},
	}
	for _, c := range cases {
		p, err := ParsePtn(5, c.in)
		if err != nil {
			t.Fatalf("%s: %v", c.in, err)
		}
		if got := FormatPtn(5, p); got != c.out {
			t.Fatalf("format %s: got %s, want %s", c.in, got, c.out)
		}
	}
}
