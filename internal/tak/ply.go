package tak

import "github.com/cdbfoster/takkerus-sub000/internal/bitmap"

// Direction is one of the four spread directions / board edges.
type Direction = bitmap.Direction

const (
	North = bitmap.North
	East  = bitmap.East
	South = bitmap.South
	West  = bitmap.West
)

// Offset returns the (dx, dy) square delta for a direction.
func Offset(d Direction) (dx, dy int) {
	switch d {
	case North:
		return 0, 1
	case East:
		return 1, 0
	case South:
		return 0, -1
	default: // West
		return -1, 0
	}
}

// Drops is a bit-packed sequence of drop counts for a spread: a run of
// "1" bits separated by "0" runs, read LSB-first, where a drop of count
// d contributes one set bit followed by (d-1) clear bits. For example
// drops [2, 1] (carry 3, drop 2 on the first square then 1 on the
// second) packs to 0b110: the first iterated drop is 2 (trailing run of
// one 1-bit preceded counted from position 1), the second is 1.
type Drops uint8

// NewDrops validates and wraps a raw packed drop byte for a board of
// size n.
func NewDrops(n int, value uint8) (Drops, error) {
	if value == 0 {
		return 0, ErrInvalidDrops("must specify at least one drop")
	}
	if int(value) >= 1<<uint(n) {
		return 0, ErrInvalidDrops("illegal carry amount")
	}
	return Drops(value), nil
}

// NewDropsFromCounts packs a list of per-square drop counts (in travel
// order) into a Drops value.
func NewDropsFromCounts(n int, counts []int) (Drops, error) {
	if len(counts) >= n {
		return 0, ErrInvalidDrops("too many drops")
	}
	if len(counts) == 0 {
		return 0, ErrInvalidDrops("must specify at least one drop")
	}
	sum := 0
	for _, c := range counts {
		if c == 0 {
			return 0, ErrInvalidDrops("invalid drop amount")
		}
		sum += c
	}
	if sum > n {
		return 0, ErrInvalidDrops("illegal carry amount")
	}

	var m uint8
	for i := len(counts) - 1; i >= 0; i-- {
		m <<= 1
		m |= 1
		m <<= uint(counts[i] - 1)
	}
	return Drops(m), nil
}

// Counts returns the drop sequence in travel order.
func (d Drops) Counts() []int {
	var out []int
	v := uint8(d)
	for v > 0 {
		tz := trailingZeros8(v)
		drop := tz + 1
		out = append(out, drop)
		if drop >= 8 {
			v = 0
		} else {
			v >>= uint(drop)
		}
	}
	return out
}

func trailingZeros8(v uint8) int {
	n := 0
	for v&1 == 0 && n < 8 {
		v >>= 1
		n++
	}
	return n
}

// Len returns the number of squares the spread drops onto.
func (d Drops) Len() int {
	n := 0
	v := uint8(d)
	for v != 0 {
		n += int(v & 1)
		v >>= 1
	}
	return n
}

// Carry returns the total number of pieces carried (the sum of all drop
// counts), read off the position of the highest set bit.
func (d Drops) Carry() int {
	v := uint8(d)
	bits := 0
	for v != 0 {
		bits++
		v >>= 1
	}
	return bits
}

// Byte returns the raw packed representation.
func (d Drops) Byte() uint8 { return uint8(d) }

// Ply is a single move: either placing a new piece, or spreading a
// stack in a direction.
type Ply struct {
	IsSpread  bool
	X, Y      int
	PieceType PieceType // meaningful when !IsSpread
	Direction Direction // meaningful when IsSpread
	Drops     Drops     // meaningful when IsSpread
	Crush     bool      // meaningful when IsSpread: true if the final drop crushes a standing stone
}

// PlacePly constructs a placement ply.
func PlacePly(x, y int, t PieceType) Ply {
	return Ply{X: x, Y: y, PieceType: t}
}

// SpreadPly constructs a spread ply.
func SpreadPly(x, y int, dir Direction, drops Drops, crush bool) Ply {
	return Ply{IsSpread: true, X: x, Y: y, Direction: dir, Drops: drops, Crush: crush}
}

// Validate checks only that the ply's coordinates (and, for a spread,
// its endpoint) are in bounds for a board of size n. It does not check
// full legality against a position; that's State.ValidatePly's job.
func (p Ply) Validate(n int) error {
	if p.X < 0 || p.X >= n || p.Y < 0 || p.Y >= n {
		return ErrOutOfBounds
	}
	if p.IsSpread {
		dx, dy := Offset(p.Direction)
		tx := p.X + dx*p.Drops.Len()
		ty := p.Y + dy*p.Drops.Len()
		if tx < 0 || tx >= n || ty < 0 || ty >= n {
			return ErrOutOfBounds
		}
	}
	return nil
}
