package index

import (
	"sort"
	"sync"

	"github.com/cuemby/quilldb/pkg/mvcc"
	"github.com/cuemby/quilldb/pkg/predicate"
	"github.com/cuemby/quilldb/pkg/types"
)

// committedEntry is one (key, row id) pair in the committed store,
// stamped with the commit id it became visible at.
type committedEntry struct {
	Key   types.Value
	RowID int64
	CID   int64
}

// pendingEntry is one (key, row id) pair a single transaction has
// inserted but not yet committed.
type pendingEntry struct {
	Key   types.Value
	RowID int64
}

// DiskOp is one (key, row id) pair handed to a disk agent's
// InsertMany/RemoveMany at commit time (§4.6 disk mirror).
type DiskOp struct {
	Key   types.Value
	RowID int64
}

// Agent is the disk-mirror contract an index's committed store is
// pushed through at commit time. pkg/diskindex.Agent implements it; a
// bare *index.Index with no attached Agent simply never mirrors to
// disk.
type Agent interface {
	InsertMany(ops []DiskOp) error
	RemoveMany(ops []DiskOp) error
}

// Index is index_t (§3.5, §4.6): a key schema, a committed store kept
// sorted by key for range search, and per-transaction pending inserts
// and deletes. Indexes never fail functionally — a search against a
// missing key just returns no rows — so every method here is a total
// function over its arguments.
type Index struct {
	mu     sync.Mutex
	Name   string
	Schema KeySchema

	committed []committedEntry // sorted ascending by Key, then RowID

	pendingInsert map[int64][]pendingEntry // txn id -> inserted-not-committed
	pendingDelete map[int64]map[int64]bool // txn id -> row id -> marked
}

// New creates an empty index over schema.
func New(name string, schema KeySchema) *Index {
	return &Index{
		Name:          name,
		Schema:        schema,
		pendingInsert: make(map[int64][]pendingEntry),
		pendingDelete: make(map[int64]map[int64]bool),
	}
}

func less(a, b types.Value) bool { return types.Compare(a, b) == types.Less }

// lowerBound returns the index of the first committed entry whose key
// is >= value (or len(committed) if none).
func (ix *Index) lowerBound(value types.Value) int {
	n := len(ix.committed)
	return sort.Search(n, func(i int) bool { return !less(ix.committed[i].Key, value) })
}

// upperBound returns the index of the first committed entry whose key
// is > value (or len(committed) if none).
func (ix *Index) upperBound(value types.Value) int {
	n := len(ix.committed)
	return sort.Search(n, func(i int) bool { return less(value, ix.committed[i].Key) })
}

// Insert implements index_t.insert (§4.6): a direct write (txn.ID ==
// 0) lands straight in the committed store at txn.CommitID (defaulted
// to 1, the smallest valid commit id, if the caller left it zero);
// otherwise it queues as a pending insert under txn.ID.
func (ix *Index) Insert(key types.Value, rowID int64, txn mvcc.Transaction) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if txn.ID == 0 {
		cid := txn.CommitID
		if cid <= 0 {
			cid = 1
		}
		ix.insertCommittedLocked(committedEntry{Key: key, RowID: rowID, CID: cid})
		return
	}
	ix.pendingInsert[txn.ID] = append(ix.pendingInsert[txn.ID], pendingEntry{Key: key, RowID: rowID})
}

func (ix *Index) insertCommittedLocked(e committedEntry) {
	i := sort.Search(len(ix.committed), func(i int) bool {
		c := types.Compare(ix.committed[i].Key, e.Key)
		return c == types.More || (c == types.Equal && ix.committed[i].RowID > e.RowID)
	})
	ix.committed = append(ix.committed, committedEntry{})
	copy(ix.committed[i+1:], ix.committed[i:])
	ix.committed[i] = e
}

// MarkDelete implements index_t.mark_delete (§4.6): a direct delete
// (txn.ID == 0) removes the matching committed entry immediately;
// otherwise the row id is marked pending-delete under txn.ID, staying
// visible to every other reader until commit.
func (ix *Index) MarkDelete(key types.Value, rowID int64, txn mvcc.Transaction) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if txn.ID == 0 {
		ix.removeCommittedLocked(rowID)
		return
	}
	m := ix.pendingDelete[txn.ID]
	if m == nil {
		m = make(map[int64]bool)
		ix.pendingDelete[txn.ID] = m
	}
	m[rowID] = true
}

func (ix *Index) removeCommittedLocked(rowID int64) {
	out := ix.committed[:0]
	for _, e := range ix.committed {
		if e.RowID == rowID {
			continue
		}
		out = append(out, e)
	}
	ix.committed = out
}

// CommitInsert implements index_t.commit_insert: every pending insert
// under txn.ID moves into the committed store at txn.CommitID. It
// returns the moved entries so the caller can mirror them to the
// index's disk agent.
func (ix *Index) CommitInsert(txn mvcc.Transaction) []DiskOp {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	pending := ix.pendingInsert[txn.ID]
	delete(ix.pendingInsert, txn.ID)
	if len(pending) == 0 {
		return nil
	}
	cid := txn.CommitID
	if cid <= 0 {
		cid = 1
	}
	ops := make([]DiskOp, 0, len(pending))
	for _, p := range pending {
		ix.insertCommittedLocked(committedEntry{Key: p.Key, RowID: p.RowID, CID: cid})
		ops = append(ops, DiskOp{Key: p.Key, RowID: p.RowID})
	}
	return ops
}

// CommitDelete implements index_t.commit_delete: every committed entry
// whose row id was marked pending-delete under txn.ID is removed from
// the committed store. It returns the removed entries for the disk
// mirror's RemoveMany.
func (ix *Index) CommitDelete(txn mvcc.Transaction) []DiskOp {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	marked := ix.pendingDelete[txn.ID]
	delete(ix.pendingDelete, txn.ID)
	if len(marked) == 0 {
		return nil
	}
	var ops []DiskOp
	out := ix.committed[:0]
	for _, e := range ix.committed {
		if marked[e.RowID] {
			ops = append(ops, DiskOp{Key: e.Key, RowID: e.RowID})
			continue
		}
		out = append(out, e)
	}
	ix.committed = out
	return ops
}

// RevertInsert implements index_t.revert_insert: every pending insert
// under txnID is dropped without ever reaching the committed store.
func (ix *Index) RevertInsert(txnID int64) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	delete(ix.pendingInsert, txnID)
}

// RevertDelete clears the pending-delete marks left by txnID, leaving
// their rows visible again. Not named in §4.6's index_t operation
// list, but required to keep the index consistent with table.Table's
// symmetric RevertDeletes when an Update's delete half must be undone
// along with its insert half.
func (ix *Index) RevertDelete(txnID int64) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	delete(ix.pendingDelete, txnID)
}

// Search implements index_t.search (§4.6, dispatch table of §4.6):
// returns every row id visible to (start_time, txn) whose key
// satisfies `key <op> value`.
func (ix *Index) Search(op predicate.CompareOp, value types.Value, txn mvcc.Transaction) []int64 {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	var ids []int64
	visit := func(e committedEntry) {
		if e.CID > txn.StartTime {
			return
		}
		if m := ix.pendingDelete[txn.ID]; m != nil && m[e.RowID] {
			return
		}
		ids = append(ids, e.RowID)
	}

	lo, hi := ix.lowerBound(value), ix.upperBound(value)
	switch op {
	case predicate.Eq: // find(value)
		for _, e := range ix.committed[lo:hi] {
			visit(e)
		}
	case predicate.Ne: // lower_bound(value) ∪ upper_bound(value): everything outside find's range
		for i, e := range ix.committed {
			if i >= lo && i < hi {
				continue
			}
			visit(e)
		}
	case predicate.Gt: // upper_bound(value)
		for _, e := range ix.committed[hi:] {
			visit(e)
		}
	case predicate.Lt: // lower_bound(value)
		for _, e := range ix.committed[:lo] {
			visit(e)
		}
	case predicate.Gte: // find ∪ upper_bound
		for _, e := range ix.committed[lo:] {
			visit(e)
		}
	case predicate.Lte: // lower_bound ∪ find
		for _, e := range ix.committed[:hi] {
			visit(e)
		}
	}

	for _, p := range ix.pendingInsert[txn.ID] {
		if satisfies(op, p.Key, value) {
			ids = append(ids, p.RowID)
		}
	}
	return ids
}

func satisfies(op predicate.CompareOp, key, value types.Value) bool {
	c := types.Compare(key, value)
	switch op {
	case predicate.Eq:
		return c == types.Equal
	case predicate.Ne:
		return c != types.Equal
	case predicate.Gt:
		return c == types.More
	case predicate.Gte:
		return c != types.Less
	case predicate.Lt:
		return c == types.Less
	case predicate.Lte:
		return c != types.More
	default:
		return false
	}
}

// SeedCommitted inserts one entry directly into the committed store at
// cid 1, for rebuilding an Index from its disk agent's LoadAll at
// startup (§4.6 "index rebuild"). Unlike Insert, it never touches
// pending state since a freshly opened index has no in-flight
// transactions yet.
func (ix *Index) SeedCommitted(key types.Value, rowID int64) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.insertCommittedLocked(committedEntry{Key: key, RowID: rowID, CID: 1})
}

// Len returns the number of committed entries, for diagnostics and
// tests.
func (ix *Index) Len() int {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return len(ix.committed)
}
