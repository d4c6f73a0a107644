package analysis

import (
	"github.com/cdbfoster/takkerus-sub000/internal/tak"
	"github.com/cdbfoster/takkerus-sub000/internal/tt"
)

// fetchPV walks table from state's position along each stored best
// ply, up to maxDepth plies or until the position resolves, and
// returns the line together with the state it leads to. A short PV
// (the table runs out, or a ply no longer applies to the position it
// was stored against) is tolerated and simply truncates the line
// rather than erroring; the caller already has a best ply for the
// root even if the rest of the table has been evicted.
func fetchPV(state *tak.State, table *tt.Table, maxDepth int) ([]tak.Ply, *tak.State) {
	pv := make([]tak.Ply, 0, maxDepth)
	current := state.Clone()

	for {
		entry, ok := table.Get(current.Metadata.Hash)
		if !ok {
			break
		}

		if _, err := current.ExecutePly(entry.Ply); err != nil {
			break
		}

		pv = append(pv, entry.Ply)

		if len(pv) == maxDepth {
			break
		}
		if _, done := current.Resolution(); done {
			break
		}
	}

	return pv, current
}
