package bitmap

import "testing"

func TestSet(t *testing.T) {
	cases := []struct {
		x, y int
		want Bitmap
	}{
		{0, 0, 0x10},
		{1, 0, 0x08},
		{1, 1, 0x0100},
		{4, 4, 0x100000},
	}
	for _, c := range cases {
		var b Bitmap
		b = b.Set(5, c.x, c.y)
		if b != c.want {
			t.Errorf("Set(5, %d, %d) = %#x, want %#x", c.x, c.y, uint64(b), uint64(c.want))
		}
	}
}

func TestClear(t *testing.T) {
	cases := []struct {
		x, y int
		want Bitmap
	}{
		{0, 0, 0xFFFFFFFFFFFFFFEF},
		{1, 0, 0xFFFFFFFFFFFFFFF7},
		{1, 1, 0xFFFFFFFFFFFFFEFF},
		{4, 4, 0xFFFFFFFFFFEFFFFF},
	}
	for _, c := range cases {
		b := Bitmap(0xFFFFFFFFFFFFFFFF)
		b = b.Clear(5, c.x, c.y)
		if b != c.want {
			t.Errorf("Clear(5, %d, %d) = %#x, want %#x", c.x, c.y, uint64(b), uint64(c.want))
		}
	}
}

func TestGet(t *testing.T) {
	b := Bitmap(0b0000000110001001010101000)
	if b.Get(5, 0, 0) {
		t.Error("(0,0) should be unset")
	}
	if !b.Get(5, 1, 0) {
		t.Error("(1,0) should be set")
	}
	if !b.Get(5, 0, 1) {
		t.Error("(0,1) should be set")
	}
	if !b.Get(5, 2, 1) {
		t.Error("(2,1) should be set")
	}
	if !b.Get(5, 2, 2) {
		t.Error("(2,2) should be set")
	}
	if b.Get(5, 3, 2) {
		t.Error("(3,2) should be unset")
	}
}

func TestDilate(t *testing.T) {
	cases := []struct {
		in, want Bitmap
	}{
		{0b0000000000001000000000000, 0b0000000100011100010000000},
		{0b1000100000000000000010001, 0b1101110001000001000111011},
		{0b0000000100011100010000000, 0b0010001110111110111000100},
	}
	for _, c := range cases {
		got := c.in.Dilate(5)
		if got != c.want {
			t.Errorf("Dilate(%025b) = %025b, want %025b", uint64(c.in), uint64(got), uint64(c.want))
		}
	}
}

func TestGroups(t *testing.T) {
	b := Bitmap(0b1110011010001100011111000)
	groups := Groups(5, b)

	want := []Bitmap{
		0b0000000000000000000011000,
		0b0000000010001100011100000,
		0b1110011000000000000000000,
	}

	if len(groups) != len(want) {
		t.Fatalf("got %d groups, want %d", len(groups), len(want))
	}
	for i, g := range groups {
		if g != want[i] {
			t.Errorf("group %d = %025b, want %025b", i, uint64(g), uint64(want[i]))
		}
	}
}

func TestBoardMaskAndEdgeMasks(t *testing.T) {
	if BoardMask(5) != 0x01FFFFFF {
		t.Errorf("BoardMask(5) = %#x", uint64(BoardMask(5)))
	}
	edges := EdgeMasks(5)
	want := [4]Bitmap{0x01F00000, 0x00108421, 0x0000001F, 0x01084210}
	if edges != want {
		t.Errorf("EdgeMasks(5) = %v, want %v", edges, want)
	}
}
