package tak

import "github.com/cdbfoster/takkerus-sub000/internal/bitmap"

// Metadata tracks, incrementally, everything about a position that's
// cheaper to maintain alongside each ply than to recompute from the
// board: per-color and per-type piece bitmaps, each color's
// edge-connected road groups (one bitmap per edge, containing every
// piece transitively connected to that edge), the per-square stack
// composition keys used for Zobrist hashing, and the position's
// Zobrist hash itself.
type Metadata struct {
	Size int

	P1Pieces, P2Pieces         bitmap.Bitmap
	Flatstones, StandingStones bitmap.Bitmap
	Capstones                  bitmap.Bitmap
	P1EdgeGroups, P2EdgeGroups [4]bitmap.Bitmap // North, East, South, West
	P1Stacks, P2Stacks         [8][8]uint8      // composition key per square
	Hash                       uint64
}

// NewMetadata returns zeroed metadata for an empty board of size n.
func NewMetadata(n int) *Metadata {
	return &Metadata{Size: n}
}

// expandEdgeGroups dilates each of a color's edge groups once and
// re-unions the corresponding edge mask in, producing the maximal set
// of squares that, if freshly occupied by that color, would extend an
// existing edge-connected group. Must be computed from the metadata
// BEFORE a mutation, and applied to squares touched by the mutation —
// computing it after the mutation would already have baked the new
// square's own connectivity in, corrupting incremental updates for
// squares other than the one just placed.
func expandEdgeGroups(n int, groups [4]bitmap.Bitmap) [4]bitmap.Bitmap {
	edges := bitmap.EdgeMasks(n)
	var out [4]bitmap.Bitmap
	for d := 0; d < 4; d++ {
		out[d] = groups[d].Dilate(n) | edges[d]
	}
	return out
}

// Modifier applies a sequence of square mutations to Metadata,
// pre-computing each color's expanded edge groups once up front so
// that edge-connectivity is tracked correctly across the whole batch
// of mutations a ply performs.
type Modifier struct {
	m                      *Metadata
	p1Expanded, p2Expanded [4]bitmap.Bitmap
}

// Modifier returns a Modifier over m, snapshotting the expanded edge
// groups needed to correctly update edge-connectivity as squares
// change during the ply about to be applied.
func (m *Metadata) Modifier() *Modifier {
	return &Modifier{
		m:          m,
		p1Expanded: expandEdgeGroups(m.Size, m.P1EdgeGroups),
		p2Expanded: expandEdgeGroups(m.Size, m.P2EdgeGroups),
	}
}

// setOnEdges sets (x, y) in any of color's edge groups that the
// pre-mutation expanded edge groups say it now connects to.
func setOnEdges(groups *[4]bitmap.Bitmap, expanded [4]bitmap.Bitmap, n, x, y int) {
	bit := bitmap.Bitmap(0).Set(n, x, y)
	for d := 0; d < 4; d++ {
		if expanded[d]&bit != 0 {
			groups[d] |= bit
		}
	}
}

// clearFromEdges unconditionally clears (x, y) from every one of a
// color's edge groups. It does not re-derive connectivity for any
// other square: a spread only ever vacates the squares it starts from,
// and any square that stays occupied keeps whatever edge-group bits it
// already earned when it was set.
func clearFromEdges(groups *[4]bitmap.Bitmap, n, x, y int) {
	bit := bitmap.Bitmap(0).Set(n, x, y)
	for d := 0; d < 4; d++ {
		groups[d] &^= bit
	}
}

// PlacePiece records a new piece placed on a previously empty square.
func (mo *Modifier) PlacePiece(p Piece, x, y int) {
	m := mo.m
	bit := bitmap.Bitmap(0).Set(m.Size, x, y)

	if p.Color == White {
		m.P1Pieces |= bit
		setOnEdges(&m.P1EdgeGroups, mo.p1Expanded, m.Size, x, y)
	} else {
		m.P2Pieces |= bit
		setOnEdges(&m.P2EdgeGroups, mo.p2Expanded, m.Size, x, y)
	}

	switch p.Type {
	case Flatstone:
		m.Flatstones |= bit
	case StandingStone:
		m.StandingStones |= bit
	case Capstone:
		m.Capstones |= bit
	}

	newStack := NewStackFromPiece(p)
	white, black := newStack.GetPlayerPieces()
	m.P1Stacks[x][y] = white
	m.P2Stacks[x][y] = black

	hashStack(m, x, y, emptyStack, newStack)
}

// SetStack replaces a square's full contents, from oldStack to stack
// (the square may become empty, change top type, or change composition
// — this covers every case a spread's source and destination squares
// can land in, unlike PlacePiece which only handles a placement onto
// empty). The caller must pass the square's actual prior contents so
// the Zobrist hash can be updated incrementally.
func (mo *Modifier) SetStack(oldStack, stack Stack, x, y int) {
	m := mo.m
	bit := bitmap.Bitmap(0).Set(m.Size, x, y)

	hashStack(m, x, y, oldStack, stack)

	top, ok := stack.Top()
	if !ok {
		m.P1Pieces &^= bit
		m.P2Pieces &^= bit
		m.Flatstones &^= bit
		m.StandingStones &^= bit
		m.Capstones &^= bit
		m.P1Stacks[x][y] = 0
		m.P2Stacks[x][y] = 0
		clearFromEdges(&mo.p1Expanded, m.Size, x, y)
		clearFromEdges(&mo.p2Expanded, m.Size, x, y)
		clearFromEdges(&m.P1EdgeGroups, m.Size, x, y)
		clearFromEdges(&m.P2EdgeGroups, m.Size, x, y)
		return
	}

	white, black := stack.GetPlayerPieces()
	m.P1Stacks[x][y] = white
	m.P2Stacks[x][y] = black

	switch top.Type {
	case Flatstone:
		m.Flatstones |= bit
		m.StandingStones &^= bit
		m.Capstones &^= bit
	case StandingStone:
		m.Flatstones &^= bit
		m.StandingStones |= bit
		m.Capstones &^= bit
	case Capstone:
		m.Flatstones &^= bit
		m.StandingStones &^= bit
		m.Capstones |= bit
	}

	if top.Color == White {
		m.P1Pieces |= bit
		m.P2Pieces &^= bit
		setOnEdges(&m.P1EdgeGroups, mo.p1Expanded, m.Size, x, y)
		clearFromEdges(&m.P2EdgeGroups, m.Size, x, y)
	} else {
		m.P2Pieces |= bit
		m.P1Pieces &^= bit
		setOnEdges(&m.P2EdgeGroups, mo.p2Expanded, m.Size, x, y)
		clearFromEdges(&m.P1EdgeGroups, m.Size, x, y)
	}
}

// Recalculate rebuilds metadata from scratch given the full board. Used
// after parsing a TPS position, where incremental construction isn't
// available.
func Recalculate(n int, board [][]Stack) *Metadata {
	m := NewMetadata(n)
	mo := m.Modifier()
	for x := 0; x < n; x++ {
		for y := 0; y < n; y++ {
			if !board[x][y].IsEmpty() {
				mo.SetStack(emptyStack, board[x][y], x, y)
			}
		}
	}
	m.Hash = zobristHashBoard(n, board)
	return m
}
