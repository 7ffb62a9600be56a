package engine

import (
	"fmt"
	"sync/atomic"

	"github.com/cuemby/quilldb/pkg/metrics"
	"github.com/cuemby/quilldb/pkg/mvcc"
	"github.com/cuemby/quilldb/pkg/types"
	"github.com/cuemby/quilldb/pkg/vector"
	"github.com/cuemby/quilldb/pkg/wal"
)

// directTxn builds the txn.ID == 0 transaction_data table.Table/Index
// treat as an immediately-committed direct write at cid.
func directTxn(cid int64) mvcc.Transaction {
	return mvcc.Transaction{ID: 0, CommitID: cid}
}

// pendingAppend/pendingDelete record one collection's share of a
// transaction's accumulated effect, so Commit/Revert can fan out to
// storage and indexes and Commit can build the transaction's WAL
// record(s) from what was actually accepted.
type pendingAppend struct {
	collection string
	start      int64
	count      int
}

type pendingDelete struct {
	collection string
	ids        []int64
}

// pendingUpdate records one collection's share of a transaction's
// in-place row updates: the rows' (unchanged) ids, their values before
// the overwrite (for Revert), and their values after it (for the WAL
// record Commit writes).
type pendingUpdate struct {
	collection string
	ids        []int64
	prior      *vector.Chunk
	current    *vector.Chunk
}

// txnState is the per-transaction bookkeeping §5 requires between
// Begin and Commit/Revert: every append, update and delete issued
// under the transaction, kept per kind in issue order, so commit can
// log them as WAL records (all appends, then all updates, then all
// deletes) and revert can unwind them.
type txnState struct {
	txn     mvcc.Transaction
	appends []pendingAppend
	updates []pendingUpdate
	deletes []pendingDelete
}

// Begin implements begin_transaction (§4.5): allocate a fresh
// transaction id and pin its visibility snapshot to the current commit
// clock.
func (e *Engine) Begin() mvcc.Transaction {
	txn := mvcc.Transaction{ID: e.nextID(), StartTime: atomic.LoadInt64(&e.commitClock)}
	e.txnMu.Lock()
	e.pending[txn.ID] = &txnState{txn: txn}
	e.txnMu.Unlock()
	return txn
}

// ReadTxn builds a passive, non-participating transaction pinned to
// the engine's current commit clock, for callers that only read (scan,
// fetch, index search) and never register with Begin/Commit/Revert.
func (e *Engine) ReadTxn() mvcc.Transaction {
	return mvcc.Passive(atomic.LoadInt64(&e.commitClock))
}

func (e *Engine) state(txn mvcc.Transaction) (*txnState, error) {
	e.txnMu.Lock()
	defer e.txnMu.Unlock()
	st, ok := e.pending[txn.ID]
	if !ok {
		return nil, fmt.Errorf("engine: transaction %d not active", txn.ID)
	}
	return st, nil
}

// Append implements storage_append/insert_row under a transaction
// (§4.2, §4.6): the chunk goes through the full acceptance pipeline,
// the accepted rows are tagged pending under txn, and every matching
// index gets the same rows as pending inserts.
func (e *Engine) Append(txn mvcc.Transaction, database, collectionName string, chunk *vector.Chunk) (int64, int, error) {
	col, err := e.getCollection(database, collectionName)
	if err != nil {
		return 0, 0, err
	}
	full := fullName(database, collectionName)
	start, count, err := e.storage.AppendTxn(full, chunk, txn)
	if err != nil || count == 0 {
		return start, count, err
	}

	colTypes, err := e.storage.StorageTypes(full)
	if err != nil {
		return start, count, err
	}
	accepted := vector.NewChunk(e.arena, colTypes, count)
	if err := e.storage.Fetch(full, accepted, rangeIDs(start, count)); err != nil {
		return start, count, err
	}
	for row := 0; row < accepted.Cardinality(); row++ {
		vals := make([]types.Value, len(colTypes))
		for c := range colTypes {
			vals[c] = accepted.GetValue(c, row)
		}
		col.indexes.InsertRow(colTypes, vals, start+int64(row), txn)
	}

	st, err := e.state(txn)
	if err != nil {
		return start, count, err
	}
	e.txnMu.Lock()
	st.appends = append(st.appends, pendingAppend{collection: full, start: start, count: count})
	e.txnMu.Unlock()
	return start, count, nil
}

func rangeIDs(start int64, count int) []int64 {
	ids := make([]int64, count)
	for i := range ids {
		ids[i] = start + int64(i)
	}
	return ids
}

// DeleteRows implements storage delete under a transaction (§4.2,
// §4.6): ids are marked pending-delete on the table and on every
// matching index.
func (e *Engine) DeleteRows(txn mvcc.Transaction, database, collectionName string, ids []int64) (int, error) {
	col, err := e.getCollection(database, collectionName)
	if err != nil {
		return 0, err
	}
	full := fullName(database, collectionName)
	colTypes, err := e.storage.StorageTypes(full)
	if err != nil {
		return 0, err
	}
	buf := vector.NewChunk(e.arena, colTypes, len(ids))
	if err := e.storage.Fetch(full, buf, ids); err != nil {
		return 0, err
	}
	n, err := e.storage.DeleteRows(full, ids, txn)
	if err != nil || n == 0 {
		return n, err
	}
	for row := 0; row < buf.Cardinality(); row++ {
		vals := make([]types.Value, len(colTypes))
		for c := range colTypes {
			vals[c] = buf.GetValue(c, row)
		}
		col.indexes.MarkDeleteRow(colTypes, vals, ids[row], txn)
	}

	st, err := e.state(txn)
	if err != nil {
		return n, err
	}
	e.txnMu.Lock()
	st.deletes = append(st.deletes, pendingDelete{collection: full, ids: ids})
	e.txnMu.Unlock()
	return n, nil
}

// Update implements storage_update (§4.2, §4.5): each row named by
// oldIDs is overwritten in place with the matching row of newChunk,
// keeping its original physical row id stable across the update (§3.3,
// scenario 4 of §8), and every matching index drops the row's old key
// and stages its new one under txn.
func (e *Engine) Update(txn mvcc.Transaction, database, collectionName string, oldIDs []int64, newChunk *vector.Chunk) (int, error) {
	col, err := e.getCollection(database, collectionName)
	if err != nil {
		return 0, err
	}
	full := fullName(database, collectionName)
	colTypes, err := e.storage.StorageTypes(full)
	if err != nil {
		return 0, err
	}

	prior, err := e.storage.Update(full, oldIDs, newChunk, txn)
	if err != nil || prior == nil || prior.Cardinality() == 0 {
		return 0, err
	}
	n := prior.Cardinality()
	ids := make([]int64, n)
	for row := 0; row < n; row++ {
		ids[row] = prior.RowIDs.GetValue(row).AsInt64()
	}

	current := vector.NewChunk(e.arena, colTypes, n)
	if err := e.storage.Fetch(full, current, ids); err != nil {
		return n, err
	}
	for row := 0; row < n; row++ {
		oldVals := make([]types.Value, len(colTypes))
		newVals := make([]types.Value, len(colTypes))
		for c := range colTypes {
			oldVals[c] = prior.GetValue(c, row)
			newVals[c] = current.GetValue(c, row)
		}
		col.indexes.MarkDeleteRow(colTypes, oldVals, ids[row], txn)
		col.indexes.InsertRow(colTypes, newVals, ids[row], txn)
	}

	st, err := e.state(txn)
	if err != nil {
		return n, err
	}
	e.txnMu.Lock()
	st.updates = append(st.updates, pendingUpdate{collection: full, ids: ids, prior: prior, current: current})
	e.txnMu.Unlock()
	return n, nil
}

// Commit implements commit_transaction (§4.5): a commit id is assigned
// from the engine's commit clock, the transaction's accumulated
// effects are written to the WAL *before* they become durable-visible
// (§5's ordering guarantee), and only then does storage/index state
// move from pending to committed.
func (e *Engine) Commit(txn mvcc.Transaction) error {
	e.txnMu.Lock()
	st, ok := e.pending[txn.ID]
	delete(e.pending, txn.ID)
	e.txnMu.Unlock()
	if !ok {
		return fmt.Errorf("engine: transaction %d not active", txn.ID)
	}

	cid := atomic.AddInt64(&e.commitClock, 1)
	ctxn := mvcc.Transaction{ID: txn.ID, StartTime: txn.StartTime, CommitID: cid}

	if err := e.logCommit(st, ctxn); err != nil {
		return err
	}

	for _, a := range st.appends {
		if err := e.storage.CommitAppend(a.collection, cid, a.start, a.count); err != nil {
			return err
		}
	}
	for _, d := range st.deletes {
		if err := e.storage.CommitDelete(d.collection, txn.ID, cid); err != nil {
			return err
		}
	}
	// Updates need no table-level commit step: Table.Update already
	// overwrote the rows' cells in place when the transaction issued
	// the update, so the only remaining work is the index commit fan-out
	// below and the WAL record logCommit already wrote.
	for _, full := range e.collectionsTouchedBy(st) {
		col, err := e.collectionByFull(full)
		if err != nil {
			continue
		}
		col.indexes.CommitInsert(ctxn)
		col.indexes.CommitDelete(ctxn)
	}
	metrics.TxnCommitsTotal.Inc()
	return nil
}

// logCommit writes one WAL record per append/update/delete the
// transaction accumulated. It runs before the appends are committed in
// storage and re-fetches each append's accepted chunk with Fetch, which
// ignores MVCC state, so the logged payload matches exactly what the
// acceptance pipeline produced.
func (e *Engine) logCommit(st *txnState, ctxn mvcc.Transaction) error {
	for _, a := range st.appends {
		colTypes, err := e.storage.StorageTypes(a.collection)
		if err != nil {
			return err
		}
		chunk := vector.NewChunk(e.arena, colTypes, a.count)
		if err := e.storage.Fetch(a.collection, chunk, rangeIDs(a.start, a.count)); err != nil {
			return err
		}
		rec, err := wal.Encode(wal.KindAppend, wal.AppendPayload{Collection: a.collection, Chunk: wal.EncodeChunk(chunk)})
		if err != nil {
			return err
		}
		if _, err := e.wal.Append(rec); err != nil {
			return err
		}
		metrics.WALRecordsTotal.WithLabelValues(string(wal.KindAppend)).Inc()
	}
	for _, u := range st.updates {
		rec, err := wal.Encode(wal.KindUpdate, wal.UpdatePayload{Collection: u.collection, RowIDs: u.ids, Chunk: wal.EncodeChunk(u.current)})
		if err != nil {
			return err
		}
		if _, err := e.wal.Append(rec); err != nil {
			return err
		}
		metrics.WALRecordsTotal.WithLabelValues(string(wal.KindUpdate)).Inc()
	}
	for _, d := range st.deletes {
		rec, err := wal.Encode(wal.KindDelete, wal.DeletePayload{Collection: d.collection, RowIDs: d.ids})
		if err != nil {
			return err
		}
		if _, err := e.wal.Append(rec); err != nil {
			return err
		}
		metrics.WALRecordsTotal.WithLabelValues(string(wal.KindDelete)).Inc()
	}
	return nil
}

func (e *Engine) collectionsTouchedBy(st *txnState) []string {
	seen := make(map[string]bool)
	var out []string
	for _, a := range st.appends {
		if !seen[a.collection] {
			seen[a.collection] = true
			out = append(out, a.collection)
		}
	}
	for _, u := range st.updates {
		if !seen[u.collection] {
			seen[u.collection] = true
			out = append(out, u.collection)
		}
	}
	for _, d := range st.deletes {
		if !seen[d.collection] {
			seen[d.collection] = true
			out = append(out, d.collection)
		}
	}
	return out
}

// Revert implements revert_transaction (§4.5): every pending append
// and delete the transaction accumulated is undone on both storage and
// indexes, and no WAL record is ever written for it.
func (e *Engine) Revert(txn mvcc.Transaction) error {
	e.txnMu.Lock()
	st, ok := e.pending[txn.ID]
	delete(e.pending, txn.ID)
	e.txnMu.Unlock()
	if !ok {
		return fmt.Errorf("engine: transaction %d not active", txn.ID)
	}
	for _, a := range st.appends {
		if err := e.storage.RevertAppend(a.collection, a.start, a.count); err != nil {
			return err
		}
	}
	for _, u := range st.updates {
		if err := e.storage.RestoreRows(u.collection, u.prior); err != nil {
			return err
		}
	}
	for _, d := range st.deletes {
		if err := e.storage.RevertDelete(d.collection, txn.ID); err != nil {
			return err
		}
	}
	for _, full := range e.collectionsTouchedBy(st) {
		col, err := e.collectionByFull(full)
		if err != nil {
			continue
		}
		col.indexes.RevertInsert(txn.ID)
		col.indexes.RevertDelete(txn.ID)
	}
	metrics.TxnRevertsTotal.Inc()
	return nil
}
