package analysis

import (
	"time"

	"github.com/cdbfoster/takkerus-sub000/internal/tak"
)

// defaultMoveHorizon is how many more moves a game is assumed to last
// when none is given, spreading the remaining clock evenly over that
// many moves.
const defaultMoveHorizon = 30

// TimeControl describes a clock: time left on it, the increment
// awarded per move, and how many moves are assumed to remain.
type TimeControl struct {
	Remaining   time.Duration
	Increment   time.Duration
	MoveHorizon int
}

// GetUseTime returns how long to spend on the next move: the
// remaining time divided evenly over the move horizon, plus the
// increment gained for making this move. state is accepted to match
// the original's signature but isn't otherwise needed by this
// formula.
func (tc TimeControl) GetUseTime(_ *tak.State) time.Duration {
	horizon := tc.MoveHorizon
	if horizon <= 0 {
		horizon = defaultMoveHorizon
	}

	return tc.Remaining/time.Duration(horizon) + tc.Increment
}
