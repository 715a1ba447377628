// In-memory index and staleness accounting.
//
// The index is an ordered map from key to the pointer of the latest
// set record for that key. Alongside it lives the staleness ledger:
// for each generation, how many of its bytes no longer contribute to
// the live state (overwritten sets, erased sets, tombstones, unreadable
// tails). The compactor uses the ledger to decide what to rewrite.
//
// keydir is not safe for concurrent use on its own; the store's lock
// discipline guarantees exclusive access for mutation and shared access
// for lookup.
package kiln

import "github.com/google/btree"

// btreeDegree is the node fan-out of the index tree.
const btreeDegree = 32

type indexEntry struct {
	key string
	ptr pointer
}

func entryLess(a, b indexEntry) bool {
	return a.key < b.key
}

type keydir struct {
	tree *btree.BTreeG[indexEntry]

	// stale maps generation -> bytes reclaimable by compaction.
	// total is always the sum of all values in stale.
	stale map[uint64]int64
	total int64
}

func newKeydir() *keydir {
	return &keydir{
		tree:  btree.NewG(btreeDegree, entryLess),
		stale: make(map[uint64]int64),
	}
}

// get returns the pointer for key, if the key is live.
func (kd *keydir) get(key string) (pointer, bool) {
	entry, ok := kd.tree.Get(indexEntry{key: key})
	if !ok {
		return pointer{}, false
	}
	return entry.ptr, true
}

// insert maps key to ptr, returning the previous pointer if the key
// was already live.
func (kd *keydir) insert(key string, ptr pointer) (pointer, bool) {
	old, ok := kd.tree.ReplaceOrInsert(indexEntry{key: key, ptr: ptr})
	if !ok {
		return pointer{}, false
	}
	return old.ptr, true
}

// remove erases key, returning the previous pointer if the key was
// live.
func (kd *keydir) remove(key string) (pointer, bool) {
	old, ok := kd.tree.Delete(indexEntry{key: key})
	if !ok {
		return pointer{}, false
	}
	return old.ptr, true
}

// ascend visits every live (key, pointer) pair in key order. The
// visitor returns false to stop early.
func (kd *keydir) ascend(visit func(key string, ptr pointer) bool) {
	kd.tree.Ascend(func(entry indexEntry) bool {
		return visit(entry.key, entry.ptr)
	})
}

func (kd *keydir) len() int {
	return kd.tree.Len()
}

// markStale credits n bytes of generation gen as reclaimable.
func (kd *keydir) markStale(gen uint64, n int64) {
	kd.stale[gen] += n
	kd.total += n
}

// retire drops a generation from the ledger after compaction deleted
// its file, subtracting its contribution from the total.
func (kd *keydir) retire(gen uint64) {
	kd.total -= kd.stale[gen]
	delete(kd.stale, gen)
}
