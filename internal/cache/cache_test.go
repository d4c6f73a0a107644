package cache

import (
	"testing"

	"github.com/cdbfoster/takkerus-sub000/internal/ann"
	"github.com/cdbfoster/takkerus-sub000/internal/tak"
	"github.com/cdbfoster/takkerus-sub000/internal/tt"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()

	c, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() = %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCacheGetMiss(t *testing.T) {
	c := openTestCache(t)

	if _, found, err := c.Get(12345); err != nil || found {
		t.Fatalf("Get() on empty cache = found=%v err=%v, want found=false err=nil", found, err)
	}
}

func TestCachePutThenGet(t *testing.T) {
	c := openTestCache(t)

	ply := tak.PlacePly(0, 0, tak.Flatstone)
	entry := tt.NewEntry(ply, ann.Evaluation(42), tt.Exact, 4, 0)

	if err := c.Put(7, entry); err != nil {
		t.Fatalf("Put() = %v", err)
	}

	got, found, err := c.Get(7)
	if err != nil || !found {
		t.Fatalf("Get() = found=%v err=%v, want found=true err=nil", found, err)
	}
	if got != entry {
		t.Fatalf("Get() = %+v, want %+v", got, entry)
	}
}

func TestCacheSeedPopulatesTable(t *testing.T) {
	c := openTestCache(t)

	ply := tak.PlacePly(1, 1, tak.Flatstone)
	entry := tt.NewEntry(ply, ann.Evaluation(10), tt.Exact, 3, 0)
	if err := c.Put(99, entry); err != nil {
		t.Fatalf("Put() = %v", err)
	}

	table := tt.New(5, 64)
	n, err := c.Seed(table)
	if err != nil {
		t.Fatalf("Seed() = %v", err)
	}
	if n != 1 {
		t.Fatalf("Seed() inserted %d entries, want 1", n)
	}

	got, ok := table.Get(99)
	if !ok || got != entry {
		t.Fatalf("table.Get(99) = %+v, %v; want %+v, true", got, ok, entry)
	}
}

func TestCachePersistLineStoresEntriesAlongPV(t *testing.T) {
	c := openTestCache(t)

	s, err := tak.NewState(4, 0)
	if err != nil {
		t.Fatalf("NewState() = %v", err)
	}

	table := tt.New(4, 64)
	ply := tak.PlacePly(0, 0, tak.Flatstone)
	table.Insert(s.Metadata.Hash, tt.NewEntry(ply, ann.Evaluation(1), tt.Exact, 2, s.PlyCount))

	n, err := c.PersistLine(s, table, []tak.Ply{ply})
	if err != nil {
		t.Fatalf("PersistLine() = %v", err)
	}
	if n != 1 {
		t.Fatalf("PersistLine() persisted %d entries, want 1", n)
	}

	got, found, err := c.Get(s.Metadata.Hash)
	if err != nil || !found || got.Ply != ply {
		t.Fatalf("Get() after PersistLine = %+v found=%v err=%v", got, found, err)
	}
}
