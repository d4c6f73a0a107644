package tak

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Tps is a parsed Tak Positional System string: the board (in TPS's
// own top-row-first order), the player to move, and the move number.
type Tps struct {
	Board  [][]Stack // [row from top][column], before remapping to State's bottom-up layout
	ToMove Color
	Turn   int
}

var boardElementRe = regexp.MustCompile(`^(?:(?P<space>x(?P<repeat>\d)?)|(?P<stack>[12]+[SC]?))(?:(?P<end>[,/])|$)`)

var (
	spaceIdx, repeatIdx, stackIdx, endIdx int
)

func init() {
	for i, name := range boardElementRe.SubexpNames() {
		switch name {
		case "space":
			spaceIdx = i
		case "repeat":
			repeatIdx = i
		case "stack":
			stackIdx = i
		case "end":
			endIdx = i
		}
	}
}

// ParseTps parses a raw TPS string (without the surrounding `[TPS "..."]`
// PTN tag wrapper) into its board/player/turn components.
func ParseTps(s string) (*Tps, error) {
	segments := strings.Split(s, " ")
	if len(segments) < 1 || segments[0] == "" {
		return nil, &TpsError{Reason: "expected board"}
	}

	board := [][]Stack{{}}
	remaining := segments[0]

loop:
	for {
		m := boardElementRe.FindStringSubmatch(remaining)
		if m == nil {
			break
		}

		row := len(board) - 1
		switch {
		case m[spaceIdx] != "":
			count := 1
			if r := m[repeatIdx]; r != "" {
				count, _ = strconv.Atoi(r)
			}
			for i := 0; i < count; i++ {
				board[row] = append(board[row], emptyStack)
			}
		case m[stackIdx] != "":
			stack, err := parseTpsStack(m[stackIdx])
			if err != nil {
				return nil, err
			}
			board[row] = append(board[row], stack)
		}

		remaining = remaining[len(m[0]):]

		switch m[endIdx] {
		case "/":
			board = append(board, []Stack{})
		case ",":
		default:
			break loop
		}
	}

	for _, row := range board {
		if len(row) != len(board) {
			return nil, &TpsError{Reason: fmt.Sprintf("column count does not equal row count: %d", len(board))}
		}
	}

	if len(segments) < 2 {
		return nil, &TpsError{Reason: "expected player"}
	}
	var toMove Color
	switch segments[1] {
	case "1":
		toMove = White
	case "2":
		toMove = Black
	default:
		return nil, &TpsError{Reason: fmt.Sprintf("invalid player: %s", segments[1])}
	}

	if len(segments) < 3 {
		return nil, &TpsError{Reason: "expected turn"}
	}
	turn, err := strconv.Atoi(segments[2])
	if err != nil || turn == 0 {
		return nil, &TpsError{Reason: fmt.Sprintf("invalid turn: %s", segments[2])}
	}

	return &Tps{Board: board, ToMove: toMove, Turn: turn}, nil
}

// parseTpsStack parses a stack run like "212121C": each digit is a
// piece color (bottom of the stack first), with an optional trailing
// S or C describing the topmost piece's type.
func parseTpsStack(s string) (Stack, error) {
	stack := emptyStack
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		var color Color
		switch runes[i] {
		case '1':
			color = White
		case '2':
			color = Black
		default:
			return emptyStack, &TpsError{Reason: "invalid stack"}
		}
		t := Flatstone
		if i+1 < len(runes) {
			switch runes[i+1] {
			case 'S':
				t = StandingStone
			case 'C':
				t = Capstone
			}
		}
		stack = stack.AddPiece(Piece{Color: color, Type: t})
		if t != Flatstone {
			i++
		}
	}
	return stack, nil
}

// ToState converts a parsed Tps into a full State for a board of size
// n, remapping TPS's top-row-first board into the engine's bottom-up
// layout, deriving the ply count from the turn number and side to
// move, and decrementing reserves for every piece already on the
// board.
func (tps *Tps) ToState(n int) (*State, error) {
	size := len(tps.Board)
	if size != n {
		return nil, &TpsError{Reason: fmt.Sprintf("TPS board size doesn't match state board size: %d != %d", size, n)}
	}

	state, err := NewState(n, 0)
	if err != nil {
		return nil, err
	}

	for x := 0; x < n; x++ {
		for y := 0; y < n; y++ {
			state.Board[x][y] = tps.Board[n-y-1][x]
		}
	}

	if tps.ToMove == White {
		state.PlyCount = uint16((tps.Turn - 1) * 2)
	} else {
		state.PlyCount = uint16((tps.Turn-1)*2 + 1)
	}

	for x := 0; x < n; x++ {
		for y := 0; y < n; y++ {
			for _, piece := range state.Board[x][y].Iter() {
				flatstones, capstones := state.reserves(piece.Color)
				count := flatstones
				if piece.Type == Capstone {
					count = capstones
				}
				if *count == 0 {
					return nil, &TpsError{Reason: fmt.Sprintf("%s has too many pieces", piece.Color)}
				}
				*count--
			}
		}
	}

	state.RecalculateMetadata()

	return state, nil
}

// ParseTpsState parses a TPS string directly into a State of size n.
func ParseTpsState(s string, n int) (*State, error) {
	tps, err := ParseTps(s)
	if err != nil {
		return nil, err
	}
	return tps.ToState(n)
}

// NewTpsFromState converts a State into its Tps representation.
func NewTpsFromState(s *State) *Tps {
	n := s.Size
	board := make([][]Stack, n)
	for y := 0; y < n; y++ {
		board[y] = make([]Stack, n)
		for x := 0; x < n; x++ {
			board[y][x] = s.Board[x][n-y-1]
		}
	}
	return &Tps{
		Board:  board,
		ToMove: s.ToMove(),
		Turn:   int(s.PlyCount)/2 + 1,
	}
}

func (t *Tps) String() string {
	var b strings.Builder

	for y := 0; y < len(t.Board); y++ {
		if y != 0 {
			b.WriteByte('/')
		}

		firstWrite := true
		emptyCount := 0
		for x := 0; x < len(t.Board[y]); x++ {
			stack := t.Board[y][x]
			if stack.IsEmpty() {
				emptyCount++
				continue
			}

			if !firstWrite {
				b.WriteByte(',')
			}
			if emptyCount > 0 {
				b.WriteByte('x')
				if emptyCount > 1 {
					b.WriteString(strconv.Itoa(emptyCount))
				}
				b.WriteByte(',')
				emptyCount = 0
			}

			pieces := stack.Iter() // top to bottom
			for i := len(pieces) - 1; i >= 0; i-- {
				p := pieces[i]
				if p.Color == White {
					b.WriteByte('1')
				} else {
					b.WriteByte('2')
				}
				switch p.Type {
				case StandingStone:
					b.WriteByte('S')
				case Capstone:
					b.WriteByte('C')
				}
			}

			firstWrite = false
		}

		if emptyCount > 0 {
			if !firstWrite {
				b.WriteByte(',')
			}
			b.WriteByte('x')
			if emptyCount > 1 {
				b.WriteString(strconv.Itoa(emptyCount))
			}
		}
	}

	if t.ToMove == White {
		fmt.Fprintf(&b, " 1 %d", t.Turn)
	} else {
		fmt.Fprintf(&b, " 2 %d", t.Turn)
	}

	return b.String()
}
