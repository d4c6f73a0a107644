package search

import (
	"sync"

	"github.com/cdbfoster/takkerus-sub000/internal/tak"
)

// killerCapacity is the number of killer moves remembered per ply
// depth: enough to catch the two most recent cutoff-causing plies
// without the buffer itself costing much to maintain.
const killerCapacity = 2

// killerMoves is a small fixed-capacity LIFO buffer of plies that have
// recently caused a beta cutoff at some ply depth. Pushing past
// capacity drops the oldest entry; popping returns the most recently
// pushed ply first. Every node at the same relative depth shares one of
// these across every search goroutine, so access is mutex-guarded.
type killerMoves struct {
	mu    sync.Mutex
	items []tak.Ply
}

func newKillerMoves() *killerMoves {
	return &killerMoves{}
}

func (k *killerMoves) push(p tak.Ply) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.items = append(k.items, p)
	if len(k.items) > killerCapacity {
		k.items = k.items[len(k.items)-killerCapacity:]
	}
}

func (k *killerMoves) pop() (tak.Ply, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if len(k.items) == 0 {
		return tak.Ply{}, false
	}
	last := len(k.items) - 1
	p := k.items[last]
	k.items = k.items[:last]
	return p, true
}

// depthKillerMoves holds one killerMoves buffer per relative search
// depth, shared across every node searched at that depth during a
// single search so a cutoff found at one node can help order a
// sibling's.
type depthKillerMoves struct {
	mu     sync.Mutex
	depths []*killerMoves
}

func newDepthKillerMoves() *depthKillerMoves {
	return &depthKillerMoves{}
}

func (d *depthKillerMoves) depth(depth int) *killerMoves {
	d.mu.Lock()
	defer d.mu.Unlock()
	for len(d.depths) <= depth {
		d.depths = append(d.depths, newKillerMoves())
	}
	return d.depths[depth]
}
