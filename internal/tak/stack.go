package tak

import "math/bits"

// MaxStackHeight is the tallest stack representable by Stack's uint32
// backing (32 bits minus the 3 reserved for the top piece's type minus
// the leading sentinel bit). The original implementation offers a
// "deep-stacks" build with a wider backing word; this port always uses
// the narrower, default-feature width.
const MaxStackHeight = 32 - 4

// Stack is a bit-packed representation of the pieces on one square.
// Bit layout, LSB to MSB:
//
//	[3 bits: top piece type][n bits: colors, bit i = color of the piece
//	at depth i from the top, 0=White 1=Black][1 sentinel bit marking the
//	top of occupancy]
//
// Every piece below the top is implicitly a Flatstone: a standing
// stone or capstone can only ever be the top of a stack.
type Stack uint32

// emptyStack is the zero-height stack: the sentinel bit sits directly
// above an all-zero 3-bit type field.
const emptyStack Stack = 0b1000

// NewStack returns an empty stack.
func NewStack() Stack {
	return emptyStack
}

// NewStackFromPiece returns a one-piece stack.
func NewStackFromPiece(p Piece) Stack {
	return emptyStack.AddPiece(p)
}

// IsEmpty reports whether the stack has no pieces.
func (s Stack) IsEmpty() bool {
	return s == emptyStack
}

// Len returns the number of pieces in the stack.
func (s Stack) Len() int {
	return lenImpl(s)
}

// lenImpl computes stack height from the sentinel bit's position: the
// sentinel sits at bit index 3+n.
func lenImpl(s Stack) int {
	pos := 31 - bits.LeadingZeros32(uint32(s))
	return pos - 3
}

func colorsField(s Stack, n int) Stack {
	if n == 0 {
		return 0
	}
	return (s >> 3) & (Stack(1)<<uint(n) - 1)
}

// TopPieceType returns the type of the top piece; only valid when the
// stack is non-empty.
func (s Stack) TopPieceType() PieceType {
	return PieceType(s & 0b111)
}

// TopColor returns the color of the top piece; only valid when the
// stack is non-empty.
func (s Stack) TopColor() Color {
	return Color(colorsField(s, lenImpl(s)) & 1)
}

// Top returns the top piece and true, or the zero Piece and false if
// the stack is empty.
func (s Stack) Top() (Piece, bool) {
	if s.IsEmpty() {
		return Piece{}, false
	}
	return Piece{Color: s.TopColor(), Type: s.TopPieceType()}, true
}

// LastPieceType returns the top piece's type, or false if the stack is
// empty.
func (s Stack) LastPieceType() (PieceType, bool) {
	if s.IsEmpty() {
		return 0, false
	}
	return s.TopPieceType(), true
}

// Get returns the piece at the given depth from the top (0 = top).
func (s Stack) Get(index int) (Piece, bool) {
	n := lenImpl(s)
	if index < 0 || index >= n {
		return Piece{}, false
	}
	color := Color((colorsField(s, n) >> uint(index)) & 1)
	if index == 0 {
		return Piece{Color: color, Type: s.TopPieceType()}, true
	}
	return Piece{Color: color, Type: Flatstone}, true
}

// AddPiece pushes a single piece onto the top of the stack.
func (s Stack) AddPiece(p Piece) Stack {
	n := lenImpl(s)
	colors := colorsField(s, n)
	newColors := (colors << 1) | Stack(p.Color)
	n1 := n + 1
	return (Stack(1) << uint(n1+3)) | (newColors << 3) | Stack(p.Type)
}

// Add places `top` onto the top of s (used when two partial carries are
// recombined); the total height must not exceed MaxStackHeight.
func (s Stack) Add(top Stack) Stack {
	if top.IsEmpty() {
		return s
	}
	if s.IsEmpty() {
		return top
	}
	n, topLen := lenImpl(s), lenImpl(top)
	if n+topLen > MaxStackHeight {
		panic("tak: stack exceeds maximum height")
	}
	sColors := colorsField(s, n)
	topColors := colorsField(top, topLen)
	combined := topColors | (sColors << uint(topLen))
	total := n + topLen
	return (Stack(1) << uint(total+3)) | (combined << 3) | Stack(top.TopPieceType())
}

// Take removes and returns the top `count` pieces as their own Stack
// (with its own sentinel), leaving the bottom part as `rest`.
func (s Stack) Take(count int) (top, rest Stack) {
	n := lenImpl(s)
	if count <= 0 {
		return emptyStack, s
	}
	if count > n {
		count = n
	}
	colors := colorsField(s, n)

	takenColors := colors & (Stack(1)<<uint(count) - 1)
	top = (Stack(1) << uint(count+3)) | (takenColors << 3) | Stack(s.TopPieceType())

	restLen := n - count
	if restLen == 0 {
		return top, emptyStack
	}
	restColors := colors >> uint(count)
	rest = (Stack(1) << uint(restLen+3)) | (restColors << 3) | Stack(Flatstone)
	return top, rest
}

// Drop removes and returns the bottom `count` pieces of the stack as
// their own Stack, leaving the top part as `rest`. Used to peel pieces
// off a carried stack as a spread walks across the board: the bottom of
// the carry is dropped first, at the nearest square.
func (s Stack) Drop(count int) (dropped, rest Stack) {
	n := lenImpl(s)
	if count <= 0 {
		return emptyStack, s
	}
	if count > n {
		count = n
	}
	colors := colorsField(s, n)
	restLen := n - count

	if restLen > 0 {
		restColors := colors & (Stack(1)<<uint(restLen) - 1)
		rest = (Stack(1) << uint(restLen+3)) | (restColors << 3) | Stack(s.TopPieceType())
	} else {
		rest = emptyStack
	}

	droppedColors := colors >> uint(restLen)
	var droppedTop PieceType
	if restLen > 0 {
		droppedTop = Flatstone
	} else {
		droppedTop = s.TopPieceType()
	}
	dropped = (Stack(1) << uint(count+3)) | (droppedColors << 3) | Stack(droppedTop)
	return dropped, rest
}

// GetPlayerPieces returns two bitmasks, one bit per piece from the top
// (bit 0) down, identifying which of the stack's pieces belong to White
// and to Black respectively. Only the low 8 bits are meaningful — this
// is the per-square "stack composition" key fed into the Zobrist hash
// and the evaluator's captured-flats feature, and both only track the
// top 8 pieces of a stack, matching the original's 256-entry
// stack_pieces table.
func (s Stack) GetPlayerPieces() (white, black uint8) {
	n := lenImpl(s)
	if n > 8 {
		n = 8
	}
	colors := uint8(colorsField(s, lenImpl(s)) & 0xFF)
	for i := 0; i < n; i++ {
		bit := uint8(1) << uint(i)
		if colors&bit == 0 {
			white |= bit
		} else {
			black |= bit
		}
	}
	return white, black
}

// CompositionKey returns the low 8 bits of the stack's color field,
// used to index the Zobrist stack_pieces table.
func (s Stack) CompositionKey() uint8 {
	n := lenImpl(s)
	return uint8(colorsField(s, n) & 0xFF)
}

// Iter returns the stack's pieces from top to bottom.
func (s Stack) Iter() []Piece {
	n := lenImpl(s)
	pieces := make([]Piece, n)
	for i := 0; i < n; i++ {
		p, _ := s.Get(i)
		pieces[i] = p
	}
	return pieces
}
