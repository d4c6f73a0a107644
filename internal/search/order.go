package search

import (
	"github.com/cdbfoster/takkerus-sub000/internal/bitmap"
	"github.com/cdbfoster/takkerus-sub000/internal/tak"
)

// Fallibility tells a caller how to apply a generated ply: a Fallible
// ply comes from outside the current position (a transposition-table
// suggestion or a killer move recalled from a sibling node) and may no
// longer be legal here, so it must be validated before use. An
// Infallible ply was generated directly from the current position and
// is always legal.
type Fallibility int

const (
	Fallible Fallibility = iota
	Infallible
)

// stage identifies which part of the move order a PlyGenerator is
// currently producing plies from.
type stage int

const (
	stagePlacementWin stage = iota
	stageTtPly
	stageKillers
	stageAllPlies
	stageFinished
)

// PlyGenerator produces a position's plies in a staged best-guess order
// for alpha-beta search: an immediate winning placement first (if one
// exists), then a transposition-table suggestion, then up to two killer
// moves recalled from sibling nodes at the same depth, then every
// remaining ply scored and sorted by a set of road-building heuristics.
// Every stage skips plies already produced by an earlier one.
type PlyGenerator struct {
	state  *tak.State
	ttPly  tak.Ply
	hasTT  bool
	killer *killerMoves

	cur   stage
	used  []tak.Ply
	plies []scoredPly
}

// NewPlyGenerator returns a PlyGenerator over state. ttPly, if present,
// is tried right after an immediate winning placement; killer is the
// killer-move buffer for the search depth state was reached at.
func NewPlyGenerator(state *tak.State, ttPly tak.Ply, hasTT bool, killer *killerMoves) *PlyGenerator {
	return &PlyGenerator{
		state:  state,
		ttPly:  ttPly,
		hasTT:  hasTT,
		killer: killer,
		cur:    stagePlacementWin,
	}
}

func (g *PlyGenerator) containsUsed(p tak.Ply) bool {
	for _, u := range g.used {
		if u == p {
			return true
		}
	}
	return false
}

// Next returns the next ply in order, along with its fallibility, or
// ok=false once every stage is exhausted.
func (g *PlyGenerator) Next() (ply tak.Ply, fallibility Fallibility, ok bool) {
	if g.cur == stagePlacementWin {
		g.cur = stageTtPly
		if p, found := placementWin(g.state); found {
			g.used = append(g.used, p)
			return p, Infallible, true
		}
	}

	if g.cur == stageTtPly {
		g.cur = stageKillers
		if g.hasTT && !g.containsUsed(g.ttPly) {
			g.used = append(g.used, g.ttPly)
			return g.ttPly, Fallible, true
		}
	}

	if g.cur == stageKillers {
		for {
			p, found := g.killer.pop()
			if !found {
				g.cur = stageAllPlies
				break
			}
			if !g.containsUsed(p) {
				g.used = append(g.used, p)
				return p, Fallible, true
			}
		}
	}

	if g.cur == stageAllPlies {
		if g.plies == nil {
			g.plies = generateAllPlies(g.state, g.used)
			// Ordering doesn't matter much this early in the game.
			if g.state.PlyCount >= 6 {
				scorePlies(g.state, g.plies)
			}
			sortScoredPliesDescending(g.plies)
		}
		if len(g.plies) > 0 {
			p := g.plies[0].ply
			g.plies = g.plies[1:]
			return p, Infallible, true
		}
		g.cur = stageFinished
	}

	return tak.Ply{}, 0, false
}

// placementWin returns a placement that completes a road for the side
// to move, if one exists: the side to move always has a reserve of
// either flatstones or capstones (the game ends otherwise), so trying a
// flatstone first and falling back to a capstone covers every case.
func placementWin(s *tak.State) (tak.Ply, bool) {
	m := s.Metadata

	allPieces := m.P1Pieces | m.P2Pieces
	roadPieces := m.Flatstones | m.Capstones

	mover := s.ToMove()
	var playerRoadPieces bitmap.Bitmap
	var flatstones uint8
	if mover == tak.White {
		playerRoadPieces = roadPieces & m.P1Pieces
		flatstones = s.P1Flatstones
	} else {
		playerRoadPieces = roadPieces & m.P2Pieces
		flatstones = s.P2Flatstones
	}
	blockingPieces := allPieces &^ playerRoadPieces

	threats := placementThreatMap(s.Size, playerRoadPieces, blockingPieces)
	if threats == 0 {
		return tak.Ply{}, false
	}

	pieceType := tak.Flatstone
	if flatstones == 0 {
		pieceType = tak.Capstone
	}

	bits := bitmap.Bits(threats)
	x, y := bitmap.Coordinates(s.Size, bits[0])
	return tak.PlacePly(x, y, pieceType), true
}

type scoredPly struct {
	score uint32
	ply   tak.Ply
}

func sortScoredPliesDescending(plies []scoredPly) {
	// Insertion sort: move orders are small (rarely more than a few
	// hundred plies) and this keeps equal-score plies in their
	// generation order, matching the original's stable pop-from-end
	// consumption of an ascending sort.
	for i := 1; i < len(plies); i++ {
		p := plies[i]
		j := i - 1
		for j >= 0 && plies[j].score < p.score {
			plies[j+1] = plies[j]
			j--
		}
		plies[j+1] = p
	}
}

// generateAllPlies enumerates every ply available to the side to move,
// skipping anything already in used. Standing stone and capstone
// placements and all spreads are withheld until the fourth ply: this
// early in the game a flatstone is always the stronger choice, and
// skipping the rest shrinks the move order search has to sort.
func generateAllPlies(s *tak.State, used []tak.Ply) []scoredPly {
	var out []scoredPly

	contains := func(p tak.Ply) bool {
		for _, u := range used {
			if u == p {
				return true
			}
		}
		return false
	}

	n := s.Size
	empty := bitmap.BoardMask(n) &^ (s.Metadata.P1Pieces | s.Metadata.P2Pieces)

	mover := s.ToMove()
	flatstones, capstones := s.P1Flatstones, s.P1Capstones
	if mover == tak.Black {
		flatstones, capstones = s.P2Flatstones, s.P2Capstones
	}

	if s.PlyCount >= 4 {
		if flatstones > 0 {
			for _, bit := range bitmap.Bits(empty) {
				x, y := bitmap.Coordinates(n, bit)
				p := tak.PlacePly(x, y, tak.StandingStone)
				if !contains(p) {
					out = append(out, scoredPly{ply: p})
				}
			}
		}

		for _, p := range generateSpreads(s) {
			if !contains(p) {
				out = append(out, scoredPly{ply: p})
			}
		}

		if capstones > 0 {
			for _, bit := range bitmap.Bits(empty) {
				x, y := bitmap.Coordinates(n, bit)
				p := tak.PlacePly(x, y, tak.Capstone)
				if !contains(p) {
					out = append(out, scoredPly{ply: p})
				}
			}
		}
	}

	if flatstones > 0 {
		for _, bit := range bitmap.Bits(empty) {
			x, y := bitmap.Coordinates(n, bit)
			p := tak.PlacePly(x, y, tak.Flatstone)
			if !contains(p) {
				out = append(out, scoredPly{ply: p})
			}
		}
	}

	return out
}

// generateSpreads returns every spread available to the side to move,
// reusing tak.GeneratePlies (which already restricts spreads to stacks
// the mover controls) and filtering out placements.
func generateSpreads(s *tak.State) []tak.Ply {
	all := tak.GeneratePlies(s, nil)
	out := all[:0]
	for _, p := range all {
		if p.IsSpread {
			out = append(out, p)
		}
	}
	return out
}

// Scoring bit flags, greatest to least significant: a capstone
// placement that creates a road threat outranks everything, a bare
// standing stone placement outranks nothing.
const (
	scoreRoadThreat                    uint32 = 1 << 11
	scoreRoadThreatCapstone            uint32 = 1 << 10
	scoreFlatstone                     uint32 = 1 << 9
	scoreBlockerNearOpponentRoad       uint32 = 1 << 8
	scoreBlockerCapstoneNearOpponent   uint32 = 1 << 7
	scoreCapstone                      uint32 = 1 << 6
	scoreSpread                        uint32 = 1 << 5
	scoreSpreadIncreasesFlatCountDelta uint32 = 1 << 4
	scoreSpreadDoesntRevealOpponent    uint32 = 1 << 3
	scoreSpreadCapstone                uint32 = 1 << 2
	scoreSpreadStandingStone           uint32 = 1 << 1
	scoreStandingStone                 uint32 = 1 << 0
)

// scorePlies assigns each ply a score used to order the search: roughly,
// placements that threaten a road outrank other placements, which
// outrank spreads that don't give the opponent's stones better
// position, which outrank spreads that do.
func scorePlies(s *tak.State, plies []scoredPly) {
	n := s.Size
	m := s.Metadata

	allPieces := m.P1Pieces | m.P2Pieces
	mover := s.ToMove()

	var playerPieces bitmap.Bitmap
	if mover == tak.White {
		playerPieces = m.P1Pieces
	} else {
		playerPieces = m.P2Pieces
	}
	opponentPieces := allPieces &^ playerPieces
	opponentFlatstones := opponentPieces & m.Flatstones

	roadPieces := (m.Flatstones | m.Capstones) & playerPieces
	blockingPieces := allPieces &^ roadPieces

	edges := bitmap.EdgeMasks(n)
	left := bitmap.FloodFill(n, edges[tak.West]&roadPieces, roadPieces).Dilate(n) | edges[tak.West]
	right := bitmap.FloodFill(n, edges[tak.East]&roadPieces, roadPieces).Dilate(n) | edges[tak.East]
	top := bitmap.FloodFill(n, edges[tak.North]&roadPieces, roadPieces).Dilate(n) | edges[tak.North]
	bottom := bitmap.FloodFill(n, edges[tak.South]&roadPieces, roadPieces).Dilate(n) | edges[tak.South]

	// Squares that already complete a road before any new placement; a
	// placement threatens a road only if it adds a square beyond these.
	existingThreats := ((left & right) | (top & bottom)) &^ blockingPieces

	// Inlines placementThreatMap around a single new bit, so scoring
	// doesn't re-run a full flood fill per candidate ply.
	threatensRoad := func(bit bitmap.Bitmap) bool {
		dilated := bit.Dilate(n)

		nextLeft, nextRight, nextTop, nextBottom := left, right, top, bottom
		if bit&left != 0 {
			nextLeft |= dilated
		}
		if bit&right != 0 {
			nextRight |= dilated
		}
		if bit&top != 0 {
			nextTop |= dilated
		}
		if bit&bottom != 0 {
			nextBottom |= dilated
		}

		horizontal := nextLeft & nextRight
		vertical := nextTop & nextBottom
		threats := (horizontal | vertical) &^ blockingPieces
		return threats&^existingThreats != 0
	}

	for i := range plies {
		p := &plies[i]
		ply := p.ply

		if !ply.IsSpread {
			switch ply.PieceType {
			case tak.Flatstone:
				p.score |= scoreFlatstone
			case tak.StandingStone:
				p.score |= scoreStandingStone
			case tak.Capstone:
				p.score |= scoreCapstone
			}

			if ply.PieceType == tak.Capstone || ply.PieceType == tak.Flatstone {
				bit := bitmap.Bitmap(0).Set(n, ply.X, ply.Y)
				if threatensRoad(bit) {
					p.score |= scoreRoadThreat
					if ply.PieceType == tak.Capstone {
						p.score |= scoreRoadThreatCapstone
					}
				}
			}

			if ply.PieceType == tak.Capstone || ply.PieceType == tak.StandingStone {
				bit := bitmap.Bitmap(0).Set(n, ply.X, ply.Y)
				neighbors := bit.Dilate(n) &^ bit
				if neighbors&opponentFlatstones != 0 {
					p.score |= scoreBlockerNearOpponentRoad
					if ply.PieceType == tak.Capstone {
						p.score |= scoreBlockerCapstoneNearOpponent
					}
				}
			}
			continue
		}

		p.score |= scoreSpread

		stack := s.Board[ply.X][ply.Y]
		switch stack.TopPieceType() {
		case tak.Capstone:
			p.score |= scoreSpreadCapstone
		case tak.StandingStone:
			p.score |= scoreSpreadStandingStone
		}

		counts := ply.Drops.Counts()
		carryTotal := 0
		for _, c := range counts {
			carryTotal += c
		}

		deltaFlatCountDelta := 0
		revealsOpponent := false

		if stack.Len() > carryTotal {
			revealed, _ := stack.Get(carryTotal)
			if revealed.Color != mover {
				deltaFlatCountDelta--
				revealsOpponent = true
			} else {
				deltaFlatCountDelta++
			}
		}

		dx, dy := tak.Offset(ply.Direction)
		tx, ty := ply.X, ply.Y
		carry := carryTotal
		for _, drop := range counts {
			tx += dx
			ty += dy
			target := s.Board[tx][ty]
			if covered, ok := target.Top(); ok && covered.Type == tak.Flatstone {
				if covered.Color == mover {
					deltaFlatCountDelta--
				} else {
					deltaFlatCountDelta++
				}
			}

			carry -= drop
			if carry == 0 {
				break
			}

			// The stone that ends up on top of this square is the one
			// just below the remaining carry, counted from the
			// original stack's top.
			dropped, _ := stack.Get(carry)
			if dropped.Color == mover {
				deltaFlatCountDelta++
			} else {
				deltaFlatCountDelta--
				revealsOpponent = true
			}
		}

		if deltaFlatCountDelta > 0 {
			p.score |= scoreSpreadIncreasesFlatCountDelta
		}
		if !revealsOpponent {
			p.score |= scoreSpreadDoesntRevealOpponent
		}
	}
}
