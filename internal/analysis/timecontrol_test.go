package analysis

import (
	"testing"
	"time"

	"github.com/cdbfoster/takkerus-sub000/internal/tak"
)

func TestGetUseTimeDividesByMoveHorizon(t *testing.T) {
	s, err := tak.NewState(5, 0)
	if err != nil {
		t.Fatalf("NewState() = %v", err)
	}

	tc := TimeControl{
		Remaining:   30 * time.Second,
		Increment:   time.Second,
		MoveHorizon: 10,
	}

	got := tc.GetUseTime(s)
	want := 3*time.Second + time.Second
	if got != want {
		t.Fatalf("GetUseTime() = %v, want %v", got, want)
	}
}

func TestGetUseTimeDefaultsMoveHorizon(t *testing.T) {
	s, err := tak.NewState(5, 0)
	if err != nil {
		t.Fatalf("NewState() = %v", err)
	}

	tc := TimeControl{Remaining: 60 * time.Second}

	got := tc.GetUseTime(s)
	want := 60 * time.Second / defaultMoveHorizon
	if got != want {
		t.Fatalf("GetUseTime() = %v, want %v (default horizon %d)", got, want, defaultMoveHorizon)
	}
}
