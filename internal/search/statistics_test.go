package search

import (
	"sync/atomic"
	"testing"
)

func TestStatisticsAddIsElementWise(t *testing.T) {
	a := Statistics{Visited: 1, BetaCutoff: 2, PVPlyOrder: [6]uint64{1, 0, 0, 0, 0, 0}}
	b := Statistics{Visited: 10, BetaCutoff: 20, PVPlyOrder: [6]uint64{0, 1, 0, 0, 0, 0}}

	got := a.Add(b)

	if got.Visited != 11 || got.BetaCutoff != 22 {
		t.Fatalf("Add() = %+v, want Visited=11 BetaCutoff=22", got)
	}
	want := [6]uint64{1, 1, 0, 0, 0, 0}
	if got.PVPlyOrder != want {
		t.Fatalf("Add().PVPlyOrder = %v, want %v", got.PVPlyOrder, want)
	}
}

func TestAtomicStatisticsLoadMatchesIncrements(t *testing.T) {
	s := &atomicStatistics{}
	s.visited.Add(3)
	s.ttHits.Add(1)
	recordPlyOrder(&s.pvPlyOrder, 0)
	recordPlyOrder(&s.pvPlyOrder, 2)

	got := s.load()
	if got.Visited != 3 || got.TTHits != 1 {
		t.Fatalf("load() = %+v, want Visited=3 TTHits=1", got)
	}
	if got.PVPlyOrder[0] != 1 || got.PVPlyOrder[2] != 1 {
		t.Fatalf("load().PVPlyOrder = %v, want index 0 and 2 incremented", got.PVPlyOrder)
	}
}

func TestRecordPlyOrderClampsToLastBucket(t *testing.T) {
	var order [6]atomic.Uint64
	recordPlyOrder(&order, 50)

	if order[len(order)-1].Load() != 1 {
		t.Fatalf("recordPlyOrder(50) did not land in the overflow bucket")
	}
}
