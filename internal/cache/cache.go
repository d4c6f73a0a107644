// Package cache persists analyzed positions across process runs, so a
// long-running TEI session (or the next one, on the same machine)
// doesn't have to re-derive lines it's already searched. It is not an
// opening book: every entry was produced by this engine's own search,
// never from external game data.
package cache

import (
	"encoding/binary"
	"encoding/json"

	"github.com/dgraph-io/badger/v4"

	"github.com/cdbfoster/takkerus-sub000/internal/tak"
	"github.com/cdbfoster/takkerus-sub000/internal/tt"
)

// keyPrefix namespaces every position entry this package writes,
// leaving room for other key families in the same database later
// without a collision.
const keyPrefix = "pos:"

// Cache wraps a BadgerDB database of Zobrist-hash-keyed transposition
// entries.
type Cache struct {
	db *badger.DB
}

// Open opens (creating if necessary) a cache database rooted at dir.
func Open(dir string) (*Cache, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Cache{db: db}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

func positionKey(hash uint64) []byte {
	b := make([]byte, len(keyPrefix)+8)
	copy(b, keyPrefix)
	binary.BigEndian.PutUint64(b[len(keyPrefix):], hash)
	return b
}

// Get returns the entry stored for hash, if any.
func (c *Cache) Get(hash uint64) (tt.Entry, bool, error) {
	var entry tt.Entry
	found := false

	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(positionKey(hash))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}

		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		})
	})

	return entry, found, err
}

// Put stores entry under hash, overwriting any previous entry there.
func (c *Cache) Put(hash uint64, entry tt.Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(positionKey(hash), data)
	})
}

// Seed pre-populates table with every position this cache has on
// record, so a fresh in-memory transposition table starts warm
// instead of empty. The TEI engine runs it each time it creates a
// fresh table for a new game.
func (c *Cache) Seed(table *tt.Table) (int, error) {
	n := 0

	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(opts.Prefix); it.ValidForPrefix(opts.Prefix); it.Next() {
			item := it.Item()
			hash := binary.BigEndian.Uint64(item.Key()[len(keyPrefix):])

			var entry tt.Entry
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			}); err != nil {
				return err
			}

			if table.Insert(hash, entry) {
				n++
			}
		}
		return nil
	})

	return n, err
}

// PersistLine walks state forward along pv, looking each resulting
// position up in table and, if the search left an entry there,
// writing it to the cache. It's meant to run after an analysis
// completes, so the positions actually reached by its principal
// variation survive into the next session even though the in-memory
// table itself doesn't.
func (c *Cache) PersistLine(state *tak.State, table *tt.Table, pv []tak.Ply) (int, error) {
	current := state.Clone()
	n := 0

	for _, ply := range pv {
		entry, ok := table.Get(current.Metadata.Hash)
		if ok {
			if err := c.Put(current.Metadata.Hash, entry); err != nil {
				return n, err
			}
			n++
		}

		if _, err := current.ExecutePly(ply); err != nil {
			break
		}
	}

	return n, nil
}
