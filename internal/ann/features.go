package ann

import (
	"math/bits"

	"github.com/cdbfoster/takkerus-sub000/internal/bitmap"
	"github.com/cdbfoster/takkerus-sub000/internal/tak"
)

// PlayerFeatures holds one side's half of a gathered feature vector.
//
// The original feature set reduces flatstone/capstone positions by the
// board's symmetry group (rotations/reflections) before handing them to
// the network, to cut the input width and let the net generalize across
// equivalent positions. Since Go's board size is a runtime value rather
// than a const generic, that per-size symmetry table isn't built here;
// flatstone/capstone positions are passed through per-square instead.
// The network still learns over the same underlying information, just
// with a wider, size-dependent input layer.
type PlayerFeatures struct {
	ReserveFlatstones float32
	ReserveCapstones  float32
	Friendlies        [3]float32 // pieces of player's own color under a flat, standing stone, or capstone
	Captives          [3]float32 // pieces of the opponent's color under those same types
	FlatstonePositions []float32 // one entry per square, 1 where this player has a flatstone
	CapstonePositions  []float32
	RoadGroups             float32
	LinesOccupied          float32
	CriticalSquares        float32
	StandingStoneSurround  float32 // enemy flatstones orthogonally adjacent to this player's standing stones
	CapstoneSurround       float32 // enemy flatstones orthogonally adjacent to this player's capstones
}

// Features is a full gathered feature vector for a position.
type Features struct {
	WhiteToMove float32
	Fcd         float32 // flat count differential, player minus opponent
	Player      PlayerFeatures
	Opponent    PlayerFeatures
}

// FeatureCount returns the width of the feature vector for a board of
// size n.
func FeatureCount(n int) int {
	return 1 + 1 + 2*playerFeatureCount(n)
}

func playerFeatureCount(n int) int {
	return 2 + 3 + 3 + n*n + n*n + 1 + 1 + 1 + 1 + 1
}

// GatherFeatures builds the feature vector for s from the perspective
// of its side to move (Player) versus the opponent (Opponent).
func GatherFeatures(s *tak.State) *Features {
	n := s.Size
	m := s.Metadata

	toMove := s.ToMove()

	var playerPieces, opponentPieces bitmap.Bitmap
	var playerFlatstones, playerCapstones, playerStandingStones bitmap.Bitmap
	var opponentFlatstones, opponentCapstones, opponentStandingStones bitmap.Bitmap
	var playerReserveFlats, playerReserveCaps, opponentReserveFlats, opponentReserveCaps uint8
	var playerStacks, opponentStacks *[8][8]uint8

	if toMove == tak.White {
		playerPieces, opponentPieces = m.P1Pieces, m.P2Pieces
		playerReserveFlats, playerReserveCaps = s.P1Flatstones, s.P1Capstones
		opponentReserveFlats, opponentReserveCaps = s.P2Flatstones, s.P2Capstones
		playerStacks, opponentStacks = &m.P1Stacks, &m.P2Stacks
	} else {
		playerPieces, opponentPieces = m.P2Pieces, m.P1Pieces
		playerReserveFlats, playerReserveCaps = s.P2Flatstones, s.P2Capstones
		opponentReserveFlats, opponentReserveCaps = s.P1Flatstones, s.P1Capstones
		playerStacks, opponentStacks = &m.P2Stacks, &m.P1Stacks
	}

	playerFlatstones = playerPieces & m.Flatstones
	playerStandingStones = playerPieces & m.StandingStones
	playerCapstones = playerPieces & m.Capstones
	opponentFlatstones = opponentPieces & m.Flatstones
	opponentStandingStones = opponentPieces & m.StandingStones
	opponentCapstones = opponentPieces & m.Capstones

	f := &Features{
		Fcd: float32(bitmap.CountOnes(playerFlatstones) - bitmap.CountOnes(opponentFlatstones)),
	}
	if toMove == tak.White {
		f.WhiteToMove = 1
	}

	f.Player = gatherPlayerFeatures(n, playerReserveFlats, playerReserveCaps,
		playerFlatstones, playerStandingStones, playerCapstones,
		opponentFlatstones, opponentStandingStones, opponentCapstones,
		playerStacks, opponentStacks)
	f.Opponent = gatherPlayerFeatures(n, opponentReserveFlats, opponentReserveCaps,
		opponentFlatstones, opponentStandingStones, opponentCapstones,
		playerFlatstones, playerStandingStones, playerCapstones,
		opponentStacks, playerStacks)

	return f
}

func gatherPlayerFeatures(
	n int,
	reserveFlats, reserveCaps uint8,
	flatstones, standingStones, capstones bitmap.Bitmap,
	enemyFlatstones, enemyStandingStones, enemyCapstones bitmap.Bitmap,
	ownStacks, enemyStacks *[8][8]uint8,
) PlayerFeatures {
	startingFlats, startingCaps, _ := tak.StartingReserves(n)

	pf := PlayerFeatures{
		ReserveFlatstones:  float32(reserveFlats) / float32(startingFlats),
		FlatstonePositions: make([]float32, n*n),
		CapstonePositions:  make([]float32, n*n),
	}
	if startingCaps > 0 {
		pf.ReserveCapstones = float32(reserveCaps) / float32(startingCaps)
	}

	for _, bit := range bitmap.Bits(flatstones) {
		x, y := bitmap.Coordinates(n, bit)
		pf.FlatstonePositions[y*n+x] = 1
		pf.Friendlies[0] += float32(bits.OnesCount8(ownStacks[x][y])) - 1
		pf.Captives[0] += float32(bits.OnesCount8(enemyStacks[x][y]))
	}
	for _, bit := range bitmap.Bits(standingStones) {
		x, y := bitmap.Coordinates(n, bit)
		pf.Friendlies[1] += float32(bits.OnesCount8(ownStacks[x][y])) - 1
		pf.Captives[1] += float32(bits.OnesCount8(enemyStacks[x][y]))
	}
	for _, bit := range bitmap.Bits(capstones) {
		x, y := bitmap.Coordinates(n, bit)
		pf.CapstonePositions[y*n+x] = 1
		pf.Friendlies[2] += float32(bits.OnesCount8(ownStacks[x][y])) - 1
		pf.Captives[2] += float32(bits.OnesCount8(enemyStacks[x][y]))
	}

	roadPieces := flatstones | capstones
	pf.RoadGroups = float32(len(bitmap.Groups(n, roadPieces)))

	edges := bitmap.EdgeMasks(n)
	rowMask := edges[tak.North]
	for i := 0; i < n; i++ {
		if roadPieces&rowMask != 0 {
			pf.LinesOccupied++
		}
		rowMask >>= uint(n)
	}
	columnMask := edges[tak.West]
	for i := 0; i < n; i++ {
		if roadPieces&columnMask != 0 {
			pf.LinesOccupied++
		}
		columnMask >>= 1
	}

	pf.CriticalSquares = float32(countPlacementThreats(n, roadPieces, enemyFlatstones|enemyStandingStones|enemyCapstones|standingStones|capstones))

	for _, bit := range bitmap.Bits(standingStones) {
		x, y := bitmap.Coordinates(n, bit)
		pf.StandingStoneSurround += float32(countOrthogonalNeighbors(n, x, y, enemyFlatstones))
	}
	for _, bit := range bitmap.Bits(capstones) {
		x, y := bitmap.Coordinates(n, bit)
		pf.CapstoneSurround += float32(countOrthogonalNeighbors(n, x, y, enemyFlatstones))
	}

	return pf
}

// countPlacementThreats counts empty, unblocked squares orthogonally
// adjacent to at least one of roadPieces, a cheap direct-adjacency
// stand-in for the original's dedicated placement_threat_map bitmap
// routine. It does not check whether a placement there would connect
// two opposite edges.
func countPlacementThreats(n int, roadPieces, blockingPieces bitmap.Bitmap) int {
	empties := bitmap.BoardMask(n) &^ (roadPieces | blockingPieces)
	count := 0
	for _, bit := range bitmap.Bits(empties) {
		x, y := bitmap.Coordinates(n, bit)
		if countOrthogonalNeighbors(n, x, y, roadPieces) > 0 {
			count++
		}
	}
	return count
}

func countOrthogonalNeighbors(n, x, y int, pieces bitmap.Bitmap) int {
	count := 0
	for _, d := range [4]tak.Direction{tak.North, tak.East, tak.South, tak.West} {
		dx, dy := tak.Offset(d)
		nx, ny := x+dx, y+dy
		if nx < 0 || nx >= n || ny < 0 || ny >= n {
			continue
		}
		if pieces.Get(n, nx, ny) {
			count++
		}
	}
	return count
}

// AsVector flattens f into a single slice in a fixed, stable field
// order matching FeatureCount(n).
func (f *Features) AsVector(n int) []float32 {
	v := make([]float32, 0, FeatureCount(n))
	v = append(v, f.WhiteToMove, f.Fcd)
	v = appendPlayerVector(v, &f.Player)
	v = appendPlayerVector(v, &f.Opponent)
	return v
}

func appendPlayerVector(v []float32, pf *PlayerFeatures) []float32 {
	v = append(v, pf.ReserveFlatstones, pf.ReserveCapstones)
	v = append(v, pf.Friendlies[:]...)
	v = append(v, pf.Captives[:]...)
	v = append(v, pf.FlatstonePositions...)
	v = append(v, pf.CapstonePositions...)
	v = append(v, pf.RoadGroups, pf.LinesOccupied, pf.CriticalSquares,
		pf.StandingStoneSurround, pf.CapstoneSurround)
	return v
}
