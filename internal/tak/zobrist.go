package tak

import (
	"math/rand"
	"sync"
)

// zobristKeys holds the random key tables for one board size.
type zobristKeys struct {
	blackToMove  uint64
	topPieces    [][][6]uint64   // [x][y][pieceIndex 0..5]
	stackHeights [][][101]uint64 // [x][y][height 0..100]
	stackPieces  [][][256]uint64 // [x][y][composition key 0..255]
}

func newZobristKeys(n int, seed int64) *zobristKeys {
	r := rand.New(rand.NewSource(seed))
	k := &zobristKeys{
		blackToMove:  r.Uint64(),
		topPieces:    make([][][6]uint64, n),
		stackHeights: make([][][101]uint64, n),
		stackPieces:  make([][][256]uint64, n),
	}
	for x := 0; x < n; x++ {
		k.topPieces[x] = make([][6]uint64, n)
		k.stackHeights[x] = make([][101]uint64, n)
		k.stackPieces[x] = make([][256]uint64, n)
		for y := 0; y < n; y++ {
			for i := 0; i < 6; i++ {
				k.topPieces[x][y][i] = r.Uint64()
			}
			for i := 0; i < 101; i++ {
				k.stackHeights[x][y][i] = r.Uint64()
			}
			for i := 0; i < 256; i++ {
				k.stackPieces[x][y][i] = r.Uint64()
			}
		}
	}
	return k
}

var (
	zobristOnce  [9]sync.Once
	zobristTable [9]*zobristKeys
)

// zobristSeed is fixed rather than time-based: the hash only needs to
// be stable within a process (and across a test run), never across
// processes or versions, matching the original's reliance on a
// process-lifetime-stable lazily-initialized random table.
const zobristSeed = 0x7a6f62726973740a

func keysFor(n int) *zobristKeys {
	zobristOnce[n].Do(func() {
		zobristTable[n] = newZobristKeys(n, zobristSeed+int64(n))
	})
	return zobristTable[n]
}

// squareHash returns a square's Zobrist contribution, or 0 if empty.
// The stack_pieces key always reads the stack's black-piece composition
// mask, regardless of which color actually owns the square's top piece
// — matching the original's hashing function exactly.
func squareHash(n, x, y int, stack Stack) uint64 {
	if stack.IsEmpty() {
		return 0
	}
	keys := keysFor(n)
	top, _ := stack.Top()
	_, black := stack.GetPlayerPieces()
	h := keys.topPieces[x][y][pieceIndex(top)]
	h ^= keys.stackHeights[x][y][clampHeight(stack.Len())]
	h ^= keys.stackPieces[x][y][black]
	return h
}

// hashStack folds a square's change from oldStack to newStack into
// m.Hash, removing the outgoing contribution and adding the incoming
// one.
func hashStack(m *Metadata, x, y int, oldStack, newStack Stack) {
	m.Hash ^= squareHash(m.Size, x, y, oldStack)
	m.Hash ^= squareHash(m.Size, x, y, newStack)
}

func clampHeight(h int) int {
	if h > 100 {
		return 100
	}
	return h
}

// zobristHashBoard computes a position's hash from scratch, used after
// parsing a TPS string where no incremental history exists.
func zobristHashBoard(n int, board [][]Stack) uint64 {
	var hash uint64
	for x := 0; x < n; x++ {
		for y := 0; y < n; y++ {
			hash ^= squareHash(n, x, y, board[x][y])
		}
	}
	return hash
}

// HashToMove XORs in the black-to-move key. Nothing in this package
// calls it: ExecutePly, RevertPly and RecalculateMetadata leave the
// side to move out of Hash.
func (m *Metadata) HashToMove() {
	m.Hash ^= keysFor(m.Size).blackToMove
}
