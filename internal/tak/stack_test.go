package tak

import "testing"

func TestStackEmpty(t *testing.T) {
	s := NewStack()
	if !s.IsEmpty() {
		t.Fatal("new stack should be empty")
	}
	if s.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", s.Len())
	}
	if _, ok := s.Top(); ok {
		t.Fatal("Top() on empty stack should return false")
	}
}

func TestStackAddPieceAndGet(t *testing.T) {
	s := NewStack()
	s = s.AddPiece(Piece{Color: White, Type: Flatstone})
	s = s.AddPiece(Piece{Color: Black, Type: Flatstone})
	s = s.AddPiece(Piece{Color: White, Type: Capstone})

	if s.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", s.Len())
	}
	top, ok := s.Top()
	if !ok || top != (Piece{Color: White, Type: Capstone}) {
		t.Fatalf("Top() = %+v, %v", top, ok)
	}

	p1, _ := s.Get(1)
	if p1 != (Piece{Color: Black, Type: Flatstone}) {
		t.Fatalf("Get(1) = %+v, want Black Flatstone (buried pieces are always flat)", p1)
	}
	p2, _ := s.Get(2)
	if p2 != (Piece{Color: White, Type: Flatstone}) {
		t.Fatalf("Get(2) = %+v, want White Flatstone", p2)
	}
}

func TestStackTakeAndDrop(t *testing.T) {
	s := NewStack()
	colors := []Color{White, Black, White, Black, White}
	for _, c := range colors {
		s = s.AddPiece(Piece{Color: c, Type: Flatstone})
	}
	s = s.AddPiece(Piece{Color: Black, Type: Capstone})
	// bottom to top: White Black White Black White Black(Capstone)

	top, rest := s.Take(3)
	if top.Len() != 3 || rest.Len() != 3 {
		t.Fatalf("Take(3) lengths = %d, %d", top.Len(), rest.Len())
	}
	topPiece, _ := top.Top()
	if topPiece.Type != Capstone || topPiece.Color != Black {
		t.Fatalf("taken stack's top = %+v, want Black Capstone", topPiece)
	}

	dropped, remaining := top.Drop(1)
	if dropped.Len() != 1 || remaining.Len() != 2 {
		t.Fatalf("Drop(1) lengths = %d, %d", dropped.Len(), remaining.Len())
	}
	droppedTop, _ := dropped.Top()
	if droppedTop != (Piece{Color: Black, Type: Flatstone}) {
		t.Fatalf("dropped bottom piece = %+v, want Black Flatstone", droppedTop)
	}
	remainingTop, _ := remaining.Top()
	if remainingTop.Type != Capstone {
		t.Fatalf("remaining top type = %v, want Capstone", remainingTop.Type)
	}

	recombined := dropped.Add(remaining)
	if recombined.Len() != 3 {
		t.Fatalf("recombined length = %d, want 3", recombined.Len())
	}
	recombinedTop, _ := recombined.Top()
	if recombinedTop.Type != Capstone {
		t.Fatalf("recombined top = %+v, want Capstone on top", recombinedTop)
	}
}

func TestStackGetPlayerPieces(t *testing.T) {
	s := NewStack()
	for _, c := range []Color{White, White, Black} {
		s = s.AddPiece(Piece{Color: c, Type: Flatstone})
	}
	white, black := s.GetPlayerPieces()
	if white&black != 0 {
		t.Fatal("white/black piece masks should not overlap")
	}
	if CountBits(white)+CountBits(black) != s.Len() {
		t.Fatalf("piece mask bit counts don't add up to stack length")
	}
}

func CountBits(b uint8) int {
	n := 0
	for b != 0 {
		n += int(b & 1)
		b >>= 1
	}
	return n
}
