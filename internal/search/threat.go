package search

import (
	"github.com/cdbfoster/takkerus-sub000/internal/bitmap"
	"github.com/cdbfoster/takkerus-sub000/internal/tak"
)

// placementThreatMap returns every empty square where placing one more
// road piece for roadPieces' owner would connect two opposite edges:
// flood-fill each edge through roadPieces, dilate each side by one
// step, and intersect the two sides' reaches, in each of the two
// (horizontal and vertical) directions, discarding anything a blocking
// piece already occupies.
func placementThreatMap(n int, roadPieces, blockingPieces bitmap.Bitmap) bitmap.Bitmap {
	edges := bitmap.EdgeMasks(n)

	left := bitmap.FloodFill(n, edges[tak.West]&roadPieces, roadPieces)
	right := bitmap.FloodFill(n, edges[tak.East]&roadPieces, roadPieces)
	horizontal := (left.Dilate(n) | edges[tak.West]) & (right.Dilate(n) | edges[tak.East])

	top := bitmap.FloodFill(n, edges[tak.North]&roadPieces, roadPieces)
	bottom := bitmap.FloodFill(n, edges[tak.South]&roadPieces, roadPieces)
	vertical := (top.Dilate(n) | edges[tak.North]) & (bottom.Dilate(n) | edges[tak.South])

	return (horizontal | vertical) &^ blockingPieces
}
