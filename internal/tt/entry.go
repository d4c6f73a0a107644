package tt

import (
	"fmt"

	"github.com/cdbfoster/takkerus-sub000/internal/ann"
	"github.com/cdbfoster/takkerus-sub000/internal/tak"
)

// Bound records whether a stored evaluation is exact, or a cutoff
// bound left over from alpha-beta pruning that only tells one side of
// the true value.
type Bound uint8

const (
	Lower Bound = iota
	Upper
	Exact
)

const (
	maxEntryDepth    = 32
	maxEntryPlyCount = 511
)

// Entry is one transposition table record: a best or refutation ply
// for a position, its evaluation, and enough search metadata to judge
// how useful it still is to a later probe.
type Entry struct {
	Ply        tak.Ply
	Evaluation ann.Evaluation
	Bound      Bound
	Depth      int
	PlyCount   uint16
}

// NewEntry builds an Entry, enforcing the limits the packed
// representation can hold: depth in [1, 32], ply count in [0, 511].
func NewEntry(ply tak.Ply, evaluation ann.Evaluation, bound Bound, depth int, plyCount uint16) Entry {
	if depth <= 0 || depth > maxEntryDepth {
		panic(fmt.Sprintf("tt: entry depth %d out of range [1, %d]", depth, maxEntryDepth))
	}
	if plyCount > maxEntryPlyCount {
		panic(fmt.Sprintf("tt: entry ply count %d out of range [0, %d]", plyCount, maxEntryPlyCount))
	}
	return Entry{Ply: ply, Evaluation: evaluation, Bound: bound, Depth: depth, PlyCount: plyCount}
}

// score orders entries for replacement: total ply depth reached takes
// priority, then bound tightness, then the individual search depth.
func (e Entry) score() uint32 {
	return (uint32(e.Depth)+uint32(e.PlyCount))<<16 | uint32(e.Bound)<<8 | uint32(e.Depth)
}

func (e Entry) pack() uint64 {
	info := uint16(e.Bound)<<14 | uint16(e.Depth-1)<<9 | e.PlyCount
	pp := packPly(e.Ply).toUint16()
	return uint64(pp) | uint64(info)<<16 | uint64(uint32(e.Evaluation))<<32
}

func unpackEntry(n int, data uint64) (Entry, error) {
	pp := packedPlyFromUint16(uint16(data))
	info := uint16(data >> 16)
	eval := ann.Evaluation(int32(uint32(data >> 32)))

	ply, err := unpackPly(n, pp)
	if err != nil {
		return Entry{}, err
	}

	return Entry{
		Ply:        ply,
		Evaluation: eval,
		Bound:      Bound((info >> 14) & 0x03),
		Depth:      int((info>>9)&0x1F) + 1,
		PlyCount:   info & 0x01FF,
	}, nil
}
