package mvcc

// RowVersion is the per-slot version state: an insert that is either
// committed at InsertCID or pending under InsertTxn, and an optional
// delete in the same shape. CommitID fields are > 0 once committed; 0
// means "not committed". A slot with InsertCID == 0 and InsertTxn == 0
// has never been written (or was erased by RevertAppend) and carries
// no row.
type RowVersion struct {
	InsertCID int64
	InsertTxn int64
	DeleteCID int64
	DeleteTxn int64
}

func (r RowVersion) hasInsert() bool { return r.InsertCID != 0 || r.InsertTxn != 0 }
func (r RowVersion) hasDelete() bool { return r.DeleteCID != 0 || r.DeleteTxn != 0 }

// Chain is the version-chain state for one block of row slots — the
// 1024-row unit a segment carries (§3.4). Slot indices are local to
// the chain (segment-relative), not table-wide row ids.
type Chain struct {
	rows []RowVersion
}

// NewChain allocates a Chain covering capacity row slots, all initially
// unwritten.
func NewChain(capacity int) *Chain {
	return &Chain{rows: make([]RowVersion, capacity)}
}

// Len returns the chain's row-slot capacity.
func (c *Chain) Len() int { return len(c.rows) }

// AppendPending marks slots [start, start+count) as inserted, pending
// under txnID. Used by the transactional append path (§4.5).
func (c *Chain) AppendPending(start, count int, txnID int64) {
	for i := start; i < start+count; i++ {
		c.rows[i] = RowVersion{InsertTxn: txnID}
	}
}

// AppendCommitted marks slots [start, start+count) as inserted,
// already committed at cid. Used by the non-transactional append path
// and by WAL physical replay, which recreates rows already known to
// have succeeded once.
func (c *Chain) AppendCommitted(start, count int, cid int64) {
	if cid <= 0 {
		panic("mvcc: AppendCommitted requires cid > 0")
	}
	for i := start; i < start+count; i++ {
		c.rows[i] = RowVersion{InsertCID: cid}
	}
}

// CommitAppend finalizes a pending append, moving slots
// [start, start+count) from pending-by-txn to committed-at-cid. Slots
// not pending under any txn are left untouched.
func (c *Chain) CommitAppend(start, count int, cid int64) {
	if cid <= 0 {
		panic("mvcc: CommitAppend requires cid > 0")
	}
	for i := start; i < start+count; i++ {
		if c.rows[i].InsertTxn != 0 {
			c.rows[i].InsertCID = cid
			c.rows[i].InsertTxn = 0
		}
	}
}

// RevertAppend erases the version slot entirely for
// [start, start+count), as if the rows had never been inserted.
func (c *Chain) RevertAppend(start, count int) {
	for i := start; i < start+count; i++ {
		c.rows[i] = RowVersion{}
	}
}

// DeleteRows marks each of rows as pending-delete-by txnID (or,
// txnID == 0, committed-delete directly at the transaction's
// commit_id — used by the non-transactional delete path). It returns
// the count of rows actually marked, skipping any already under a
// committed or pending delete.
func (c *Chain) DeleteRows(rows []int, txnID, directCID int64) int {
	n := 0
	for _, r := range rows {
		if c.rows[r].hasDelete() {
			continue
		}
		if txnID == 0 {
			c.rows[r].DeleteCID = directCID
		} else {
			c.rows[r].DeleteTxn = txnID
		}
		n++
	}
	return n
}

// CommitAllDeletes finalizes every slot pending-delete under txnID,
// moving it to committed-delete at cid (§4.6 commit_delete semantics
// applied at the chain level).
func (c *Chain) CommitAllDeletes(txnID, cid int64) {
	if cid <= 0 {
		panic("mvcc: CommitAllDeletes requires cid > 0")
	}
	for i := range c.rows {
		if c.rows[i].DeleteTxn == txnID {
			c.rows[i].DeleteCID = cid
			c.rows[i].DeleteTxn = 0
		}
	}
}

// RevertDeletes clears the pending-delete mark for every slot pending
// under txnID, leaving the row visible again.
func (c *Chain) RevertDeletes(txnID int64) {
	for i := range c.rows {
		if c.rows[i].DeleteTxn == txnID {
			c.rows[i].DeleteTxn = 0
		}
	}
}

// Visible implements the §3.4/§4.5 visibility predicate for slot i
// under txn.
func (c *Chain) Visible(i int, txn Transaction) bool {
	r := c.rows[i]
	insertOK := (r.InsertCID > 0 && r.InsertCID <= txn.StartTime) ||
		(r.InsertTxn != 0 && r.InsertTxn == txn.ID)
	if !insertOK {
		return false
	}
	deleteOK := !(r.DeleteCID > 0 && r.DeleteCID <= txn.StartTime) &&
		!(r.DeleteTxn != 0 && r.DeleteTxn == txn.ID)
	return deleteOK
}

// IsTombstoned reports whether slot i carries a committed delete,
// meaning compaction may drop it permanently.
func (c *Chain) IsTombstoned(i int) bool {
	return c.rows[i].DeleteCID > 0
}

// CommittedDeletedCount returns the number of slots carrying a
// committed delete, used to drive the maybe_cleanup 30% threshold.
func (c *Chain) CommittedDeletedCount() int {
	n := 0
	for _, r := range c.rows {
		if r.DeleteCID > 0 {
			n++
		}
	}
	return n
}

// Cleanup drops version history entirely covered by lowestActiveStart:
// a committed insert with no delete becomes "always visible" (kept as
// InsertCID 1, the smallest valid commit id, so future Visible checks
// short-circuit without re-reading the original cid), and a row with a
// committed delete at or before lowestActiveStart is reclaimed
// entirely (zeroed), matching §4.5's cleanup_versions contract. It
// returns the count of slots reclaimed so the caller can keep
// committed_row_count consistent.
func (c *Chain) Cleanup(lowestActiveStart int64) (reclaimed int) {
	for i := range c.rows {
		r := &c.rows[i]
		if r.DeleteCID > 0 && r.DeleteCID <= lowestActiveStart {
			*r = RowVersion{}
			reclaimed++
			continue
		}
		if r.InsertCID > 0 && r.InsertCID <= lowestActiveStart && !r.hasDelete() {
			r.InsertCID = 1
		}
	}
	return reclaimed
}
