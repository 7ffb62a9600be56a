package mvcc

// Transaction is the transaction_data the visibility rule is evaluated
// against: an identity, the start_time a reader's visibility is pinned
// to, and the commit_id assigned when (and only when) it commits.
type Transaction struct {
	ID        int64
	StartTime int64
	CommitID  int64
}

// Passive builds the transaction data a lock-free reader uses: it sees
// only data committed at or before startTime and has no identity of
// its own to match against pending writes.
func Passive(startTime int64) Transaction {
	return Transaction{ID: 0, StartTime: startTime, CommitID: 0}
}

// IsPassive reports whether t is a read-only, non-participating
// transaction (id 0).
func (t Transaction) IsPassive() bool { return t.ID == 0 }
