package index

import (
	"fmt"
	"sync"

	"github.com/cuemby/quilldb/pkg/log"
	"github.com/cuemby/quilldb/pkg/mvcc"
	"github.com/cuemby/quilldb/pkg/predicate"
	"github.com/cuemby/quilldb/pkg/types"
)

// Engine is index_engine_t (§3.5, §4.6): the per-collection bundle of
// indexes, keyed by name. insert_row/mark_delete_row broadcast a row
// to every index whose key schema matches it; commit/revert fan the
// same txn out to every index the engine holds.
type Engine struct {
	mu      sync.Mutex
	arena   *types.Arena
	byName  map[string]*Index
	agents  map[string]Agent
	colName string // collection_full_name this engine is registered under, for logging
}

// NewEngine creates an empty index engine for one collection.
func NewEngine(arena *types.Arena, collectionName string) *Engine {
	return &Engine{
		arena:   arena,
		byName:  make(map[string]*Index),
		agents:  make(map[string]Agent),
		colName: collectionName,
	}
}

// CreateIndex registers a new index under name. It is an error to
// reuse a name already registered.
func (e *Engine) CreateIndex(name string, schema KeySchema) (*Index, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.byName[name]; exists {
		return nil, fmt.Errorf("index: %q already exists on %s", name, e.colName)
	}
	ix := New(name, schema)
	e.byName[name] = ix
	log.WithIndex(name).Debug().Str("collection", e.colName).Msg("index created")
	return ix, nil
}

// DropIndex removes an index and detaches its disk agent, if any.
func (e *Engine) DropIndex(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.byName[name]; !exists {
		return fmt.Errorf("index: %q not found on %s", name, e.colName)
	}
	delete(e.byName, name)
	delete(e.agents, name)
	return nil
}

// HasIndex reports whether name is registered.
func (e *Engine) HasIndex(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.byName[name]
	return ok
}

// Index returns the named index, or false if it is not registered.
func (e *Engine) Index(name string) (*Index, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	ix, ok := e.byName[name]
	return ix, ok
}

// Names returns every registered index name, for rebuild/listing.
func (e *Engine) Names() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.byName))
	for n := range e.byName {
		out = append(out, n)
	}
	return out
}

// AttachAgent wires name's disk mirror. Insert/commit calls after this
// point flush to agent at commit time (§4.6 disk mirror).
func (e *Engine) AttachAgent(name string, agent Agent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.agents[name] = agent
}

func (e *Engine) matching(colTypes []types.ComplexLogicalType) []*Index {
	var out []*Index
	for _, ix := range e.byName {
		if ix.Schema.Matches(colTypes) {
			out = append(out, ix)
		}
	}
	return out
}

// InsertRow implements index_engine_t.insert_row: dispatches one row
// to every index whose key schema matches colTypes.
func (e *Engine) InsertRow(colTypes []types.ComplexLogicalType, row []types.Value, rowID int64, txn mvcc.Transaction) {
	e.mu.Lock()
	matches := e.matching(colTypes)
	e.mu.Unlock()
	for _, ix := range matches {
		key, ok := ix.Schema.ExtractKey(e.arena, colTypes, row)
		if !ok {
			continue
		}
		ix.Insert(key, rowID, txn)
	}
}

// MarkDeleteRow implements index_engine_t.mark_delete_row: the delete
// counterpart of InsertRow.
func (e *Engine) MarkDeleteRow(colTypes []types.ComplexLogicalType, row []types.Value, rowID int64, txn mvcc.Transaction) {
	e.mu.Lock()
	matches := e.matching(colTypes)
	e.mu.Unlock()
	for _, ix := range matches {
		key, ok := ix.Schema.ExtractKey(e.arena, colTypes, row)
		if !ok {
			continue
		}
		ix.MarkDelete(key, rowID, txn)
	}
}

// DiskBatch is one agent's share of a commit's pending disk ops.
type DiskBatch struct {
	IndexName string
	Inserts   []DiskOp
	Deletes   []DiskOp
}

// CommitInsert implements index_engine_t's commit_insert fan-out: every
// index commits its pending inserts under txn, and any index with an
// attached disk agent has the committed batch mirrored. IO failures on
// the disk mirror are logged, not returned — per §4.6/§7 they never
// fail the owning transaction's commit.
func (e *Engine) CommitInsert(txn mvcc.Transaction) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for name, ix := range e.byName {
		ops := ix.CommitInsert(txn)
		if len(ops) == 0 {
			continue
		}
		if agent, ok := e.agents[name]; ok {
			if err := agent.InsertMany(ops); err != nil {
				log.WithIndex(name).Error().Err(err).Msg("disk mirror insert_many failed")
			}
		}
	}
}

// CommitDelete is CommitInsert's delete counterpart.
func (e *Engine) CommitDelete(txn mvcc.Transaction) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for name, ix := range e.byName {
		ops := ix.CommitDelete(txn)
		if len(ops) == 0 {
			continue
		}
		if agent, ok := e.agents[name]; ok {
			if err := agent.RemoveMany(ops); err != nil {
				log.WithIndex(name).Error().Err(err).Msg("disk mirror remove_many failed")
			}
		}
	}
}

// RevertInsert drops txnID's pending inserts across every index.
func (e *Engine) RevertInsert(txnID int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, ix := range e.byName {
		ix.RevertInsert(txnID)
	}
}

// RevertDelete clears txnID's pending-delete marks across every index.
func (e *Engine) RevertDelete(txnID int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, ix := range e.byName {
		ix.RevertDelete(txnID)
	}
}

// Search dispatches to the named index's Search, per §4.6's compare
// table.
func (e *Engine) Search(name string, op predicate.CompareOp, value types.Value, txn mvcc.Transaction) ([]int64, error) {
	ix, ok := e.Index(name)
	if !ok {
		return nil, fmt.Errorf("index: %q not found on %s", name, e.colName)
	}
	return ix.Search(op, value, txn), nil
}
