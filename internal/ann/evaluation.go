// Package ann implements position evaluation: a handcrafted,
// weighted-feature Evaluation and a shallow feed-forward network
// evaluator built on the same positional features.
package ann

import (
	"math/bits"
	"strconv"

	"github.com/cdbfoster/takkerus-sub000/internal/bitmap"
	"github.com/cdbfoster/takkerus-sub000/internal/tak"
)

// EvalType is the underlying integer type of an Evaluation.
type EvalType = int32

const (
	win          EvalType = 100_000
	winThreshold EvalType = 99_000
)

// Evaluation is a signed position score from the perspective of the
// side to move: positive favors the mover, negative favors the
// opponent.
type Evaluation EvalType

// Zero is the neutral evaluation.
func Zero() Evaluation { return 0 }

// Win is the evaluation of an immediate win.
func Win() Evaluation { return Evaluation(win) }

// Lose is the evaluation of an immediate loss.
func Lose() Evaluation { return -Win() }

// Max is the largest representable evaluation, reserved as a search
// sentinel (kept one below the type's true max so negation never
// overflows).
func Max() Evaluation { return Evaluation(1<<31 - 2) }

// Min is the smallest representable evaluation.
func Min() Evaluation { return Evaluation(-(1<<31 - 2)) }

// IsWin reports whether an evaluation represents a forced win or loss
// rather than a material/positional judgment.
func (e Evaluation) IsWin() bool {
	v := EvalType(e)
	if v < 0 {
		v = -v
	}
	return v > winThreshold
}

func (e Evaluation) String() string { return strconv.Itoa(int(e)) }

// NextUp returns the smallest evaluation greater than e, used to build
// a minimal null window [e, e.NextUp()) for a scout search.
func (e Evaluation) NextUp() Evaluation { return e + 1 }

// NextDown returns the largest evaluation less than e, the other edge
// of a minimal null window.
func (e Evaluation) NextDown() Evaluation { return e - 1 }

type weights struct {
	flatstone      EvalType
	standingStone  EvalType
	capstone       EvalType
	roadGroup      EvalType
	roadSlice      EvalType
	hardFlat       EvalType
	softFlat       EvalType
}

var weight = weights{
	flatstone:     2000,
	standingStone: 1000,
	capstone:      1500,
	roadGroup:     -500,
	roadSlice:     250,
	hardFlat:      500,
	softFlat:      -250,
}

// ResolutionEvaluation returns the (ply-count-adjusted) win, loss, or
// draw score for a finished position, from the perspective of the side
// to move, along with true. It returns false for a game still in
// progress. The ply-count adjustment prefers a faster win and a slower
// loss when two lines both resolve the game.
func ResolutionEvaluation(s *tak.State) (Evaluation, bool) {
	res, ok := s.Resolution()
	if !ok {
		return 0, false
	}

	switch res.Kind {
	case tak.RoadWin, tak.FlatsWin:
		if res.Color == s.ToMove() {
			return Win() - Evaluation(s.PlyCount), true
		}
		return Lose() + Evaluation(s.PlyCount), true
	default:
		return Zero() - Evaluation(s.PlyCount), true
	}
}

// Evaluate scores s from the perspective of the side to move: a
// finished game returns a (ply-count-adjusted) win, loss, or draw
// score, and an in-progress game returns a weighted sum of material,
// road connectivity, and captured-flat features.
func Evaluate(s *tak.State) Evaluation {
	if eval, ok := ResolutionEvaluation(s); ok {
		return eval
	}

	toMove := s.ToMove()
	m := s.Metadata

	p1Eval := evaluateMaterial(m, m.P1Pieces)
	p2Eval := evaluateMaterial(m, m.P2Pieces)

	roadPieces := m.Flatstones | m.Capstones
	p1RoadPieces := roadPieces & m.P1Pieces
	p2RoadPieces := roadPieces & m.P2Pieces

	p1Eval += evaluateRoadGroups(s.Size, p1RoadPieces)
	p2Eval += evaluateRoadGroups(s.Size, p2RoadPieces)

	p1Eval += evaluateRoadSlices(s.Size, p1RoadPieces)
	p2Eval += evaluateRoadSlices(s.Size, p2RoadPieces)

	p1Eval += evaluateCapturedFlats(s.Size, m.P1Pieces, &m.P1Stacks, &m.P2Stacks)
	p2Eval += evaluateCapturedFlats(s.Size, m.P2Pieces, &m.P2Stacks, &m.P1Stacks)

	if toMove == tak.White {
		return Evaluation(p1Eval - p2Eval)
	}
	return Evaluation(p2Eval - p1Eval)
}

func evaluateMaterial(m *tak.Metadata, pieces bitmap.Bitmap) EvalType {
	n := EvalType(m.Size)
	eval := EvalType(bitmap.CountOnes(pieces&m.Flatstones)) * weight.flatstone / n
	eval += EvalType(bitmap.CountOnes(pieces&m.StandingStones)) * weight.standingStone / n
	eval += EvalType(bitmap.CountOnes(pieces&m.Capstones)) * weight.capstone / n
	return eval
}

// sizeWeight scales roadGroup's base weight by what fraction of the
// board a group of the given span covers.
func sizeWeight(n, span int) EvalType {
	return weight.roadGroup * EvalType(span) / EvalType(n)
}

func evaluateRoadGroups(n int, roadPieces bitmap.Bitmap) EvalType {
	var eval EvalType
	for _, group := range bitmap.Groups(n, roadPieces) {
		eval += sizeWeight(n, bitmap.Width(n, group))
		eval += sizeWeight(n, bitmap.Height(n, group))
	}
	return eval
}

func evaluateRoadSlices(n int, roadPieces bitmap.Bitmap) EvalType {
	var eval EvalType
	edges := bitmap.EdgeMasks(n)

	rowMask := edges[tak.North]
	for i := 0; i < n; i++ {
		if roadPieces&rowMask != 0 {
			eval += weight.roadSlice / EvalType(n)
		}
		rowMask >>= uint(n)
	}

	columnMask := edges[tak.West]
	for i := 0; i < n; i++ {
		if roadPieces&columnMask != 0 {
			eval += weight.roadSlice / EvalType(n)
		}
		columnMask >>= 1
	}

	return eval
}

func evaluateCapturedFlats(n int, pieces bitmap.Bitmap, playerStacks, opponentStacks *[8][8]uint8) EvalType {
	var hardFlats, softFlats EvalType
	for _, bit := range bitmap.Bits(pieces) {
		x, y := bitmap.Coordinates(n, bit)
		hardFlats += EvalType(bits.OnesCount8(playerStacks[x][y])) - 1
		softFlats += EvalType(bits.OnesCount8(opponentStacks[x][y]))
	}
	return hardFlats*weight.hardFlat/EvalType(n) + softFlats*weight.softFlat/EvalType(n)
}
