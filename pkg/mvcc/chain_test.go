package mvcc

import "testing"

func TestVisibilityOwnUncommittedWrite(t *testing.T) {
	c := NewChain(4)
	c.AppendPending(0, 1, 7) // txn 7 inserts row 0, not yet committed

	self := Transaction{ID: 7, StartTime: 10}
	other := Transaction{ID: 8, StartTime: 10}

	if !c.Visible(0, self) {
		t.Error("a transaction must see its own pending insert")
	}
	if c.Visible(0, other) {
		t.Error("a pending insert must be invisible to other transactions")
	}
}

func TestVisibilityAfterCommit(t *testing.T) {
	c := NewChain(4)
	c.AppendPending(0, 1, 7)
	c.CommitAppend(0, 1, 25)

	before := Transaction{ID: 0, StartTime: 20}
	after := Transaction{ID: 0, StartTime: 25}

	if c.Visible(0, before) {
		t.Error("reader started before commit must not see the row")
	}
	if !c.Visible(0, after) {
		t.Error("reader started at or after commit must see the row")
	}
}

func TestRevertAppendErasesSlot(t *testing.T) {
	c := NewChain(4)
	c.AppendPending(0, 1, 7)
	c.RevertAppend(0, 1)

	txn := Transaction{ID: 7, StartTime: 10}
	if c.Visible(0, txn) {
		t.Error("reverted slot must not be visible even to the inserting transaction")
	}
}

func TestDeleteVisibilityTieBreak(t *testing.T) {
	c := NewChain(4)
	c.AppendCommitted(0, 1, 1)
	c.DeleteRows([]int{0}, 7, 0)

	self := Transaction{ID: 7, StartTime: 50}
	other := Transaction{ID: 8, StartTime: 50}

	if c.Visible(0, self) {
		t.Error("a transaction must not see a row it has pending-deleted")
	}
	if !c.Visible(0, other) {
		t.Error("a pending delete must stay invisible (i.e. row stays visible) to other readers until commit")
	}
}

func TestCommitAllDeletesAppliesCID(t *testing.T) {
	c := NewChain(4)
	c.AppendCommitted(0, 2, 1)
	c.DeleteRows([]int{0, 1}, 7, 0)
	c.CommitAllDeletes(7, 30)

	before := Transaction{ID: 0, StartTime: 29}
	after := Transaction{ID: 0, StartTime: 30}
	if !c.Visible(0, before) {
		t.Error("reader before delete commit should still see the row")
	}
	if c.Visible(0, after) {
		t.Error("reader at or after delete commit should not see the row")
	}
}

func TestDeleteRowsSkipsAlreadyDeleted(t *testing.T) {
	c := NewChain(4)
	c.AppendCommitted(0, 1, 1)
	n1 := c.DeleteRows([]int{0}, 7, 0)
	n2 := c.DeleteRows([]int{0}, 8, 0)
	if n1 != 1 {
		t.Fatalf("first delete count = %d, want 1", n1)
	}
	if n2 != 0 {
		t.Fatalf("second delete of same row should be a no-op, got count %d", n2)
	}
}

func TestCleanupReclaimsCommittedDeletes(t *testing.T) {
	c := NewChain(4)
	c.AppendCommitted(0, 1, 1)
	c.DeleteRows([]int{0}, 0, 5)

	reclaimed := c.Cleanup(10)
	if reclaimed != 1 {
		t.Fatalf("reclaimed = %d, want 1", reclaimed)
	}
	if c.CommittedDeletedCount() != 0 {
		t.Error("cleanup should have reclaimed the only committed delete")
	}
}

func TestCleanupLeavesActiveDeletesAlone(t *testing.T) {
	c := NewChain(4)
	c.AppendCommitted(0, 1, 1)
	c.DeleteRows([]int{0}, 0, 100)

	reclaimed := c.Cleanup(10)
	if reclaimed != 0 {
		t.Fatalf("reclaimed = %d, want 0 (delete cid 100 not yet below lowest active start 10)", reclaimed)
	}
}
