package tak

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cdbfoster/takkerus-sub000/internal/bitmap"
)

// reserveCounts gives the starting flatstone/capstone counts per player
// for each supported board size.
var reserveCounts = map[int][2]uint8{
	3: {10, 0},
	4: {15, 0},
	5: {21, 1},
	6: {30, 1},
	7: {40, 2},
	8: {50, 2},
}

// Komi is a half-komi value: the flat-count bonus awarded to Black at
// a flats resolution, in units of half a point.
type Komi int8

// ParseKomi parses a komi value given as an integer or half-integer
// string ("2", "2.5", "-1.5"); only whole and half komi are supported.
func ParseKomi(s string) (Komi, error) {
	if period := strings.IndexByte(s, '.'); period >= 0 {
		whole, err := strconv.ParseInt(s[:period], 10, 8)
		if err != nil {
			return 0, fmt.Errorf("tak: invalid komi %q", s)
		}
		full := 2 * whole
		var half int64
		switch s[period+1:] {
		case "0":
			half = 0
		case "5":
			half = 1
		default:
			return 0, fmt.Errorf("tak: only half komi are supported (*.0 or *.5)")
		}
		sign := int64(1)
		if full < 0 {
			sign = -1
		}
		return Komi(full + sign*half), nil
	}
	whole, err := strconv.ParseInt(s, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("tak: invalid komi %q", s)
	}
	return Komi(2 * whole), nil
}

// AsHalfKomi returns the raw half-komi value.
func (k Komi) AsHalfKomi() int8 { return int8(k) }

// Neg returns the opposite komi.
func (k Komi) Neg() Komi { return -k }

func (k Komi) String() string {
	whole := int8(k) / 2
	half := int8(k) % 2 * 5
	if half < 0 {
		half = -half
	}
	if half > 0 {
		return fmt.Sprintf("%d.%d", whole, half)
	}
	return strconv.Itoa(int(whole))
}

var ErrNoPreviousPlies = errors.New("tak: no plies to revert")

// State is a complete Tak position: reserves, board, ply count, komi,
// and incrementally-maintained metadata.
type State struct {
	Size int

	P1Flatstones, P1Capstones uint8
	P2Flatstones, P2Capstones uint8

	// Board is indexed [x][y], column-major left-to-right, rows
	// bottom-to-top, matching the bitmap package's bit ordering.
	Board [][]Stack

	PlyCount uint16
	Komi     Komi

	Metadata *Metadata
}

// StartingReserves returns the flatstone and capstone reserve counts
// each player begins a game of the given board size with.
func StartingReserves(n int) (flatstones, capstones uint8, ok bool) {
	counts, ok := reserveCounts[n]
	return counts[0], counts[1], ok
}

// NewState returns the starting position for a board of the given size.
func NewState(n int, komi Komi) (*State, error) {
	counts, ok := reserveCounts[n]
	if !ok {
		return nil, fmt.Errorf("tak: invalid board size %d", n)
	}
	board := make([][]Stack, n)
	for x := range board {
		board[x] = make([]Stack, n)
		for y := range board[x] {
			board[x][y] = emptyStack
		}
	}
	return &State{
		Size:         n,
		P1Flatstones: counts[0],
		P1Capstones:  counts[1],
		P2Flatstones: counts[0],
		P2Capstones:  counts[1],
		Board:        board,
		Komi:         komi,
		Metadata:     NewMetadata(n),
	}, nil
}

// Clone returns a deep copy of s, safe to mutate independently of the
// original. Used by the parallel search to hand each branch its own
// position instead of sharing one mutable State across goroutines.
func (s *State) Clone() *State {
	board := make([][]Stack, len(s.Board))
	for x := range s.Board {
		board[x] = make([]Stack, len(s.Board[x]))
		copy(board[x], s.Board[x])
	}
	metadata := *s.Metadata

	clone := *s
	clone.Board = board
	clone.Metadata = &metadata
	return &clone
}

// ToMove returns the player whose turn it is.
func (s *State) ToMove() Color {
	if s.PlyCount%2 == 0 {
		return White
	}
	return Black
}

func (s *State) reserves(color Color) (flatstones, capstones *uint8) {
	if color == White {
		return &s.P1Flatstones, &s.P1Capstones
	}
	return &s.P2Flatstones, &s.P2Capstones
}

// openingColor returns which color's reserve a placement actually
// draws from: Tak's first two plies of the game each place the
// opponent's piece, so the mover and the piece's owner differ there.
func openingColor(mover Color, plyCount uint16) Color {
	if plyCount >= 2 {
		return mover
	}
	return mover.Opponent()
}

// ValidatePly checks a ply for legality against the current position,
// returning a normalized copy (a spread that lands on a standing
// stone in a way that satisfies every crush condition has its Crush
// flag forced on, matching the engine's tolerant PTN parsing).
func (s *State) ValidatePly(ply Ply) (Ply, error) {
	if err := ply.Validate(s.Size); err != nil {
		return ply, err
	}

	mover := s.ToMove()

	if !ply.IsSpread {
		if !s.Board[ply.X][ply.Y].IsEmpty() {
			return ply, illegal("board space is occupied")
		}

		color := openingColor(mover, s.PlyCount)
		flatstones, capstones := s.reserves(color)
		count := flatstones
		if ply.PieceType == Capstone {
			count = capstones
		}
		if *count == 0 {
			return ply, illegal("insufficient reserve for placement")
		}
		return ply, nil
	}

	stack := s.Board[ply.X][ply.Y]
	if stack.IsEmpty() {
		return ply, illegal("board space is empty")
	}
	top, _ := stack.Top()
	if top.Color != mover {
		return ply, illegal("cannot move an opponent's piece")
	}

	counts := ply.Drops.Counts()
	carryTotal := 0
	for _, c := range counts {
		carryTotal += c
	}
	if carryTotal > stack.Len() {
		return ply, illegal("illegal carry amount")
	}

	dx, dy := Offset(ply.Direction)
	tx, ty := ply.X, ply.Y
	validCrush := false
	for i, d := range counts {
		tx += dx
		ty += dy
		target := s.Board[tx][ty]
		t, ok := target.LastPieceType()
		switch {
		case !ok || t == Flatstone:
			// Clear to spread onto.
		case t == Capstone:
			return ply, illegal("cannot spread onto a capstone")
		case t == StandingStone:
			validCrush = i == len(counts)-1 && top.Type == Capstone && d == 1
			if !validCrush {
				return ply, illegal("cannot spread onto a standing stone")
			}
			ply.Crush = true
		}
	}

	if ply.Crush && !validCrush {
		return ply, illegal("spread is not a crushing move, but the crush flag was set")
	}

	return ply, nil
}

// ExecutePly validates and applies a ply, returning the (possibly
// crush-normalized) ply that was actually executed.
func (s *State) ExecutePly(ply Ply) (Ply, error) {
	ply, err := s.ValidatePly(ply)
	if err != nil {
		return ply, err
	}

	mover := s.ToMove()
	mo := s.Metadata.Modifier()

	if !ply.IsSpread {
		color := openingColor(mover, s.PlyCount)
		flatstones, capstones := s.reserves(color)
		count := flatstones
		if ply.PieceType == Capstone {
			count = capstones
		}
		*count--

		piece := Piece{Color: color, Type: ply.PieceType}
		s.Board[ply.X][ply.Y] = s.Board[ply.X][ply.Y].AddPiece(piece)
		mo.PlacePiece(piece, ply.X, ply.Y)
	} else {
		counts := ply.Drops.Counts()
		carryTotal := 0
		for _, c := range counts {
			carryTotal += c
		}

		old := s.Board[ply.X][ply.Y]
		carry, rest := old.Take(carryTotal)
		s.Board[ply.X][ply.Y] = rest
		mo.SetStack(old, rest, ply.X, ply.Y)

		dx, dy := Offset(ply.Direction)
		tx, ty := ply.X, ply.Y
		for _, d := range counts {
			tx += dx
			ty += dy
			var dropped Stack
			dropped, carry = carry.Drop(d)
			old := s.Board[tx][ty]
			s.Board[tx][ty] = old.Add(dropped)
			mo.SetStack(old, s.Board[tx][ty], tx, ty)
		}
	}

	s.PlyCount++
	return ply, nil
}

// RevertPly undoes the most recently executed ply, which must be
// passed back exactly as ExecutePly returned it.
func (s *State) RevertPly(ply Ply) error {
	if err := ply.Validate(s.Size); err != nil {
		return err
	}
	if s.PlyCount == 0 {
		return ErrNoPreviousPlies
	}

	mover := s.ToMove().Opponent()
	mo := s.Metadata.Modifier()

	if !ply.IsSpread {
		color := mover
		if s.PlyCount <= 2 {
			color = mover.Opponent()
		}
		piece := Piece{Color: color, Type: ply.PieceType}

		stack := s.Board[ply.X][ply.Y]
		if stack.Len() != 1 {
			return illegal("stack is not a single stone")
		}
		top, _ := stack.Top()
		if top != piece {
			return illegal("piece mismatch")
		}

		flatstones, capstones := s.reserves(color)
		count := flatstones
		if ply.PieceType == Capstone {
			count = capstones
		}
		*count++

		_, rest := stack.Take(1)
		s.Board[ply.X][ply.Y] = rest
		mo.SetStack(stack, rest, ply.X, ply.Y)
	} else {
		counts := ply.Drops.Counts()
		dropCount := len(counts)

		dx, dy := Offset(ply.Direction)
		tx, ty := ply.X+dx, ply.Y+dy
		for _, d := range counts[:dropCount-1] {
			stack := s.Board[tx][ty]
			if stack.Len() < d {
				return illegal("not enough stones in stack")
			}
			t, _ := stack.LastPieceType()
			if t != Flatstone {
				return illegal("non-flatstone in drop path")
			}
			tx += dx
			ty += dy
		}

		finalDrop := counts[dropCount-1]
		endStack := s.Board[tx][ty]
		if endStack.Len() < finalDrop {
			return illegal("not enough stones in stack")
		}
		if ply.Crush {
			t, _ := endStack.LastPieceType()
			if t != Capstone {
				return illegal("only capstones can crush")
			}
		}

		var carry Stack = emptyStack
		for i := dropCount - 1; i >= 0; i-- {
			d := counts[i]
			stack := s.Board[tx][ty]
			taken, rest := stack.Take(d)
			s.Board[tx][ty] = rest
			mo.SetStack(stack, rest, tx, ty)
			carry = taken.Add(carry)
			tx -= dx
			ty -= dy
		}

		start := s.Board[ply.X][ply.Y]
		s.Board[ply.X][ply.Y] = start.Add(carry)
		mo.SetStack(start, s.Board[ply.X][ply.Y], ply.X, ply.Y)

		if ply.Crush {
			ctx := ply.X + dx*dropCount
			cty := ply.Y + dy*dropCount
			endStack := s.Board[ctx][cty]
			top, _ := endStack.Top()
			top.Type = StandingStone
			_, rest := endStack.Take(1)
			rest = rest.AddPiece(top)
			old := s.Board[ctx][cty]
			s.Board[ctx][cty] = rest
			mo.SetStack(old, rest, ctx, cty)
		}
	}

	s.PlyCount--
	return nil
}

// ResolutionKind distinguishes how a finished game ended.
type ResolutionKind int

const (
	RoadWin ResolutionKind = iota
	FlatsWin
	Draw
)

// Resolution describes the outcome of a finished game.
type Resolution struct {
	Kind   ResolutionKind
	Color  Color // meaningful for RoadWin and FlatsWin
	Spread int8  // meaningful for FlatsWin: winner's flat count minus loser's
	Komi   Komi  // meaningful for FlatsWin
}

func (r Resolution) String() string {
	var token string
	switch r.Kind {
	case RoadWin:
		token = "R"
	case FlatsWin:
		token = "F"
	default:
		return "1/2-1/2"
	}
	if r.Color == White {
		return token + "-0"
	}
	return "0-" + token
}

// Resolution reports the outcome of the game at the current position,
// or false if the game is still in progress.
func (s *State) Resolution() (Resolution, bool) {
	spansBoard := func(b bitmap.Bitmap) bool {
		edges := bitmap.EdgeMasks(s.Size)
		for _, group := range bitmap.Groups(s.Size, b) {
			if (group&edges[North] != 0 && group&edges[South] != 0) ||
				(group&edges[West] != 0 && group&edges[East] != 0) {
				return true
			}
		}
		return false
	}

	m := s.Metadata
	p1Road := m.P1Pieces & (m.Flatstones | m.Capstones)
	p2Road := m.P2Pieces & (m.Flatstones | m.Capstones)

	p1Spans := spansBoard(p1Road)
	p2Spans := spansBoard(p2Road)

	switch {
	case p1Spans && p2Spans:
		if s.PlyCount%2 == 1 {
			return Resolution{Kind: RoadWin, Color: White}, true
		}
		return Resolution{Kind: RoadWin, Color: Black}, true
	case p1Spans:
		return Resolution{Kind: RoadWin, Color: White}, true
	case p2Spans:
		return Resolution{Kind: RoadWin, Color: Black}, true
	}

	boardFull := (m.P1Pieces | m.P2Pieces) == bitmap.BoardMask(s.Size)
	if s.P1Flatstones+s.P1Capstones == 0 || s.P2Flatstones+s.P2Capstones == 0 || boardFull {
		p1Flats := int8(bitmap.CountOnes(m.P1Pieces & m.Flatstones))
		p2Flats := int8(bitmap.CountOnes(m.P2Pieces & m.Flatstones))

		p1Score := 2 * p1Flats
		p2Score := 2*p2Flats + s.Komi.AsHalfKomi()

		switch {
		case p1Score > p2Score:
			return Resolution{Kind: FlatsWin, Color: White, Spread: p1Flats - p2Flats, Komi: s.Komi.Neg()}, true
		case p2Score > p1Score:
			return Resolution{Kind: FlatsWin, Color: Black, Spread: p2Flats - p1Flats, Komi: s.Komi}, true
		default:
			return Resolution{Kind: Draw}, true
		}
	}

	return Resolution{}, false
}

// RecalculateMetadata rebuilds Metadata from the current board from
// scratch, used after directly mutating Board (e.g. after parsing a
// TPS position).
func (s *State) RecalculateMetadata() {
	s.Metadata = Recalculate(s.Size, s.Board)
}
