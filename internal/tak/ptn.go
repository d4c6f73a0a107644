package tak

import (
	"strings"
)

func ptnErr(reason string) error {
	return &PtnError{Reason: reason}
}

// ParsePtn parses a single ply in Portable Tak Notation for a board of
// size n, e.g. "a1", "Sc3", "3a3>21*".
func ParsePtn(n int, s string) (Ply, error) {
	runes := []rune(s)
	if len(runes) == 0 {
		return Ply{}, ptnErr("input too short")
	}

	var pieceType *PieceType
	var grab *int
	i := 0

	next := runes[i]
	switch next {
	case 'F':
		t := Flatstone
		pieceType = &t
		i++
	case 'S':
		t := StandingStone
		pieceType = &t
		i++
	case 'C':
		t := Capstone
		pieceType = &t
		i++
	default:
		if d, ok := digitValue(next, 10); ok {
			if d == 0 || int(d) > n {
				return Ply{}, ptnErr("invalid carry amount")
			}
			g := int(d)
			grab = &g
			i++
		}
	}
	if i >= len(runes) {
		return Ply{}, ptnErr("input too short")
	}

	colDigit, ok := digitValue(runes[i], 10+n)
	if !ok || colDigit < 10 {
		return Ply{}, ptnErr("invalid file letter")
	}
	column := int(colDigit - 10)
	i++

	if i >= len(runes) {
		return Ply{}, ptnErr("input too short")
	}
	rowDigit, ok := digitValue(runes[i], 10)
	if !ok || rowDigit == 0 || int(rowDigit) > n {
		return Ply{}, ptnErr("invalid rank number")
	}
	row := int(rowDigit - 1)
	i++

	if i >= len(runes) {
		if grab != nil {
			return Ply{}, ptnErr("carry amount specified without direction")
		}
		t := Flatstone
		if pieceType != nil {
			t = *pieceType
		}
		return PlacePly(column, row, t), nil
	}

	var direction Direction
	switch runes[i] {
	case '+':
		direction = North
	case '>':
		direction = East
	case '-':
		direction = South
	case '<':
		direction = West
	default:
		return Ply{}, ptnErr("expected a direction")
	}
	i++

	var dropAmounts []int
	crush := false
	for ; i < len(runes); i++ {
		c := runes[i]
		if d, ok := digitValue(c, 10); ok && d > 0 {
			dropAmounts = append(dropAmounts, int(d))
		} else if c == '*' {
			crush = true
		} else if c == '?' || c == '!' {
			continue
		} else {
			return Ply{}, ptnErr("invalid drop amount")
		}
	}

	if len(dropAmounts) == 0 {
		if grab != nil {
			dropAmounts = append(dropAmounts, *grab)
		} else {
			dropAmounts = append(dropAmounts, 1)
		}
	}

	if crush && dropAmounts[len(dropAmounts)-1] != 1 {
		return Ply{}, &PlyError{Reason: "cannot crush with more than one stone"}
	}

	dropSquares := len(dropAmounts)
	outOfBounds := false
	switch direction {
	case North:
		outOfBounds = row+dropSquares >= n
	case East:
		outOfBounds = column+dropSquares >= n
	case South:
		outOfBounds = dropSquares > row
	case West:
		outOfBounds = dropSquares > column
	}
	if outOfBounds {
		return Ply{}, &PlyError{Reason: "cannot slide out of bounds"}
	}

	sum := 0
	for _, d := range dropAmounts {
		sum += d
	}
	wantCarry := 1
	if grab != nil {
		wantCarry = *grab
	}
	if sum != wantCarry {
		return Ply{}, ptnErr("carry and drop amounts don't match")
	}

	drops, err := NewDropsFromCounts(n, dropAmounts)
	if err != nil {
		return Ply{}, err
	}

	return SpreadPly(column, row, direction, drops, crush), nil
}

// digitValue mirrors Rust's char::to_digit(radix): returns the value of
// c as a digit in the given radix (up to 36), and whether c is valid in
// that radix.
func digitValue(c rune, radix int) (uint32, bool) {
	var v uint32
	switch {
	case c >= '0' && c <= '9':
		v = uint32(c - '0')
	case c >= 'a' && c <= 'z':
		v = uint32(c-'a') + 10
	case c >= 'A' && c <= 'Z':
		v = uint32(c-'A') + 10
	default:
		return 0, false
	}
	if int(v) >= radix {
		return 0, false
	}
	return v, true
}

// FormatPtn renders a ply in Portable Tak Notation for a board of size
// n.
func FormatPtn(n int, p Ply) string {
	var b strings.Builder

	if !p.IsSpread {
		switch p.PieceType {
		case StandingStone:
			b.WriteByte('S')
		case Capstone:
			b.WriteByte('C')
		}
		b.WriteRune(fileLetter(p.X))
		b.WriteRune(rankDigit(p.Y))
		return b.String()
	}

	counts := p.Drops.Counts()
	carry := 0
	for _, c := range counts {
		carry += c
	}
	b.WriteRune(rune('0' + carry))
	b.WriteRune(fileLetter(p.X))
	b.WriteRune(rankDigit(p.Y))

	switch p.Direction {
	case North:
		b.WriteByte('+')
	case East:
		b.WriteByte('>')
	case South:
		b.WriteByte('-')
	case West:
		b.WriteByte('<')
	}

	if len(counts) > 1 {
		for _, d := range counts {
			b.WriteRune(rune('0' + d))
		}
	}

	if p.Crush {
		b.WriteByte('*')
	}

	return b.String()
}

func fileLetter(x int) rune {
	return rune('a' + x)
}

func rankDigit(y int) rune {
	return rune('1' + y)
}
