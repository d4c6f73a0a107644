// Package tt implements a lock-free, fixed-capacity transposition
// table keyed by Zobrist hash, shared across search goroutines without
// a mutex.
package tt

import "sync/atomic"

// maxProbeDepth bounds how far Insert/Get will linearly probe past a
// hash's home slot before giving up (on Insert, replacing the weakest
// entry seen instead).
const maxProbeDepth = 5

// slot is one table row: a key/data pair stored so that a torn read
// (the data half updated but not yet the key half, or vice versa)
// never presents as a valid, wrongly-keyed entry. Store always writes
// data before key; Load always reads key before data, so a non-zero
// key guarantees its paired data is the entry that produced it.
type slot struct {
	key  atomic.Uint64
	data atomic.Uint64
}

type loadedSlot struct {
	hash  uint64
	entry Entry
}

func (s *slot) load(n int) (loadedSlot, bool) {
	key := s.key.Load()
	if key == 0 {
		return loadedSlot{}, false
	}
	data := s.data.Load()
	entry, err := unpackEntry(n, data)
	if err != nil {
		return loadedSlot{}, false
	}
	return loadedSlot{hash: key ^ data, entry: entry}, true
}

func (s *slot) store(hash uint64, entry Entry) {
	data := entry.pack()
	key := hash ^ data

	// Data is stored before the key so that load() never sees a
	// non-zero key paired with an entry that doesn't belong to it.
	s.data.Store(data)
	s.key.Store(key)
}

// Table is a transposition table for a single board size, sized to a
// fixed slot capacity at construction and shared by value across
// goroutines via pointer; all methods are safe for concurrent use.
type Table struct {
	size   int
	length atomic.Int64
	slots  []slot
}

// New returns an empty table sized for boards of the given size, with
// room for capacity entries.
func New(size, capacity int) *Table {
	return &Table{size: size, slots: make([]slot, capacity)}
}

// Len returns the number of occupied slots.
func (t *Table) Len() int { return int(t.length.Load()) }

// Capacity returns the table's fixed slot count.
func (t *Table) Capacity() int { return len(t.slots) }

func (t *Table) index(hash uint64) int {
	return int(hash % uint64(len(t.slots)))
}

func (t *Table) nextIndex(i int) int {
	i++
	if i >= len(t.slots) {
		return 0
	}
	return i
}

// Insert stores entry under hash, probing forward from hash's home
// slot up to maxProbeDepth times. An empty slot is always taken, a
// slot with the same hash is overwritten only if entry scores at
// least as well, and if every probed slot is occupied by a different
// hash, the lowest-scoring one is evicted. Insert returns false only
// when a same-hash slot held a higher-scoring entry.
func (t *Table) Insert(hash uint64, entry Entry) bool {
	startIndex := t.index(hash)
	currentIndex := startIndex
	targetIndex := startIndex
	var targetScore uint32 = ^uint32(0)

	entryScore := entry.score()

	for i := 0; i < maxProbeDepth; i++ {
		loaded, ok := t.slots[currentIndex].load(t.size)
		if ok {
			slotScore := loaded.entry.score()

			if hash != loaded.hash {
				if slotScore < targetScore {
					targetIndex = currentIndex
					targetScore = slotScore
				}
			} else if entryScore >= slotScore {
				t.slots[currentIndex].store(hash, entry)
				return true
			} else {
				return false
			}
		} else {
			targetIndex = currentIndex
			t.length.Add(1)
			break
		}

		currentIndex = t.nextIndex(currentIndex)
	}

	t.slots[targetIndex].store(hash, entry)
	return true
}

// Get returns the entry stored for hash, probing forward the same way
// Insert does.
func (t *Table) Get(hash uint64) (Entry, bool) {
	currentIndex := t.index(hash)

	for i := 0; i < maxProbeDepth; i++ {
		loaded, ok := t.slots[currentIndex].load(t.size)
		if !ok {
			return Entry{}, false
		}
		if loaded.hash == hash {
			return loaded.entry, true
		}
		currentIndex = t.nextIndex(currentIndex)
	}

	return Entry{}, false
}
