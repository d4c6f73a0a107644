package tak

// GeneratePlies appends every pseudo-legal ply available to the side to
// move in s to out, and returns the extended slice. "Pseudo-legal"
// here means everything ValidatePly would accept: placements only
// fill empty squares and respect the opening-ply restriction and
// reserve counts, and spreads only consider directions, carry sizes,
// and drop combinations that don't run off the board or through a
// standing stone or capstone.
func GeneratePlies(s *State, out []Ply) []Ply {
	mover := s.ToMove()
	n := s.Size

	if s.PlyCount < 2 {
		for x := 0; x < n; x++ {
			for y := 0; y < n; y++ {
				if s.Board[x][y].IsEmpty() {
					out = append(out, PlacePly(x, y, Flatstone))
				}
			}
		}
		return out
	}

	_, moverCapstones := s.reserves(mover)

	for x := 0; x < n; x++ {
		for y := 0; y < n; y++ {
			stack := s.Board[x][y]
			if stack.IsEmpty() {
				out = append(out, PlacePly(x, y, Flatstone))
				out = append(out, PlacePly(x, y, StandingStone))
				if *moverCapstones > 0 {
					out = append(out, PlacePly(x, y, Capstone))
				}
				continue
			}

			top, _ := stack.Top()
			if top.Color != mover {
				continue
			}

			for _, dir := range [4]Direction{North, East, South, West} {
				out = appendSpreadsInDirection(out, s, x, y, dir, stack, top)
			}
		}
	}

	return out
}

// appendSpreadsInDirection casts from (x, y) in dir until the edge of
// the board or a blocking piece (a standing stone or capstone that
// isn't the final square of a capstone crush), then enumerates every
// way to pick up 1..pickupSize of the stack's top pieces and drop them
// within that distance.
func appendSpreadsInDirection(out []Ply, s *State, x, y int, dir Direction, stack Stack, top Piece) []Ply {
	n := s.Size
	dx, dy := Offset(dir)

	distance := 0
	tx, ty := x, y
	for {
		tx += dx
		ty += dy
		if tx < 0 || tx >= n || ty < 0 || ty >= n {
			break
		}
		distance++
		t, ok := s.Board[tx][ty].LastPieceType()
		if ok && (t == StandingStone || t == Capstone) {
			break
		}
	}
	if distance == 0 {
		return out
	}

	pickupSize := stack.Len()
	if pickupSize > n {
		pickupSize = n
	}

	for carry := 1; carry <= pickupSize; carry++ {
		for combo := range dropCombos(carry, distance) {
			ex := x + dx*len(combo)
			ey := y + dy*len(combo)
			targetType, hasTarget := s.Board[ex][ey].LastPieceType()

			unblocked := !hasTarget || targetType == Flatstone
			crush := hasTarget && targetType == StandingStone && top.Type == Capstone && combo[len(combo)-1] == 1
			if !unblocked && !crush {
				continue
			}

			drops, err := NewDropsFromCounts(n, combo)
			if err != nil {
				continue
			}
			out = append(out, SpreadPly(x, y, dir, drops, crush))
		}
	}

	return out
}

// dropCombos enumerates every composition of count (an ordered sequence
// of positive per-square drop counts summing to count) with at most
// maxLen parts. It calls yield with each composition in travel order.
func dropCombos(count, maxLen int) func(yield func([]int) bool) {
	return func(yield func([]int) bool) {
		if count == 0 {
			return
		}
		var combo []int
		var recurse func(remaining int) bool
		recurse = func(remaining int) bool {
			if len(combo) >= maxLen {
				return true
			}
			for first := 1; first <= remaining; first++ {
				combo = append(combo, first)
				if remaining-first == 0 {
					if !yield(append([]int(nil), combo...)) {
						combo = combo[:len(combo)-1]
						return false
					}
				} else if !recurse(remaining - first) {
					combo = combo[:len(combo)-1]
					return false
				}
				combo = combo[:len(combo)-1]
			}
			return true
		}
		recurse(count)
	}
}
