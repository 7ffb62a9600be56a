package engine

import (
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/cuemby/quilldb/pkg/actor"
	"github.com/cuemby/quilldb/pkg/catalog"
	"github.com/cuemby/quilldb/pkg/diskindex"
	"github.com/cuemby/quilldb/pkg/index"
	"github.com/cuemby/quilldb/pkg/storagemgr"
	"github.com/cuemby/quilldb/pkg/types"
	"github.com/cuemby/quilldb/pkg/wal"
)

// collection bundles one collection's index engine with the disk
// agents attached to it, so DropCollection/Close can tear both down
// together.
type collection struct {
	database string
	name     string
	indexes  *index.Engine
	agents   map[string]*diskindex.Agent
}

// Engine is the wiring layer of §6: a shared storagemgr.Manager, a
// per-collection index.Engine set, a catalog.Store and a wal.Manager.
// It also owns two actor.Mailbox values (storageMB, indexMB), started
// by Open and stopped by Close, but no operation is submitted to them:
// every method runs on its caller's goroutine, and concurrent callers
// are serialized only by the mutexes inside storagemgr.Manager,
// table.Table, index.Engine, index.Index and Engine itself.
type Engine struct {
	dataDir string
	arena   *types.Arena

	storageMB *actor.Mailbox
	storage   *storagemgr.Manager

	indexMB *actor.Mailbox

	mu          sync.Mutex
	collections map[string]*collection // "database/name" -> collection

	cat *catalog.Store
	wal *wal.Manager

	nextTxnID   int64
	commitClock int64

	txnMu   sync.Mutex
	pending map[int64]*txnState
}

func fullName(database, name string) string { return database + "/" + name }

// Open recovers or creates an engine rooted at dataDir: catalog.otbx
// and wal.bolt are opened (created if absent), every catalog-registered
// collection and index is recreated, and the WAL is replayed from its
// earliest retained record so table content — which this engine never
// persists as on-disk row bytes, see storagemgr.LoadStorageDisk — comes
// back from the log rather than the page file.
func Open(dataDir string, arena *types.Arena) (*Engine, error) {
	cat, err := catalog.Open(dataDir)
	if err != nil {
		return nil, fmt.Errorf("engine: open catalog: %w", err)
	}
	walMgr, err := wal.Open(filepath.Join(dataDir, "wal.bolt"))
	if err != nil {
		cat.Close()
		return nil, fmt.Errorf("engine: open wal: %w", err)
	}

	e := &Engine{
		dataDir:     dataDir,
		arena:       arena,
		storageMB:   actor.NewMailbox(64),
		storage:     storagemgr.NewManager(arena),
		indexMB:     actor.NewMailbox(64),
		collections: make(map[string]*collection),
		cat:         cat,
		wal:         walMgr,
		pending:     make(map[int64]*txnState),
	}
	e.storageMB.Start()
	e.indexMB.Start()

	if err := e.recoverFromCatalog(); err != nil {
		e.Close()
		return nil, err
	}
	first, err := e.wal.FirstIndex()
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("engine: wal first index: %w", err)
	}
	if err := e.wal.Replay(first, e, arena); err != nil {
		e.Close()
		return nil, fmt.Errorf("engine: wal replay: %w", err)
	}
	return e, nil
}

func (e *Engine) recoverFromCatalog() error {
	databases, err := e.cat.ListDatabases()
	if err != nil {
		return fmt.Errorf("engine: list databases: %w", err)
	}
	for _, db := range databases {
		colls, err := e.cat.ListCollections(db)
		if err != nil {
			return fmt.Errorf("engine: list collections for %s: %w", db, err)
		}
		for _, cm := range colls {
			columns, err := columnSchemasFromMeta(e.arena, cm.Columns)
			if err != nil {
				return fmt.Errorf("engine: decode columns for %s/%s: %w", cm.Database, cm.Name, err)
			}
			name := fullName(cm.Database, cm.Name)
			var entry *storagemgr.Entry
			if cm.StorageMode == "disk" {
				entry, err = e.storage.CreateStorageDisk(name, columns, cm.Path)
			} else {
				entry, err = e.storage.CreateStorageMemory(name, columns)
			}
			if err != nil {
				return fmt.Errorf("engine: recreate storage %s: %w", name, err)
			}
			_ = entry

			ixEngine := index.NewEngine(e.arena, name)
			col := &collection{database: cm.Database, name: cm.Name, indexes: ixEngine, agents: map[string]*diskindex.Agent{}}
			e.collections[name] = col

			indexMetas, err := e.cat.ListIndexes(cm.Database, cm.Name)
			if err != nil {
				return fmt.Errorf("engine: list indexes for %s: %w", name, err)
			}
			for _, im := range indexMetas {
				schema := index.NewKeySchemaPaths(im.KeyPaths...)
				ix, err := ixEngine.CreateIndex(im.Name, schema)
				if err != nil {
					return fmt.Errorf("engine: recreate index %s: %w", im.Name, err)
				}
				agentDir := filepath.Join(e.dataDir, cm.Database, cm.Name, im.Name)
				agent, err := diskindex.Open(agentDir)
				if err != nil {
					return fmt.Errorf("engine: open disk agent %s: %w", agentDir, err)
				}
				col.agents[im.Name] = agent
				ixEngine.AttachAgent(im.Name, agent)
				ops, err := agent.LoadAll(e.arena)
				if err != nil {
					return fmt.Errorf("engine: load disk agent %s: %w", agentDir, err)
				}
				for _, op := range ops {
					ix.SeedCommitted(op.Key, op.RowID)
				}
			}
		}
	}
	return nil
}

// Close stops both mailboxes and closes the catalog, WAL and every
// disk agent.
func (e *Engine) Close() error {
	e.storageMB.Stop()
	e.indexMB.Stop()
	e.mu.Lock()
	for _, col := range e.collections {
		for _, agent := range col.agents {
			agent.Close()
		}
	}
	e.mu.Unlock()
	if e.wal != nil {
		e.wal.Close()
	}
	if e.cat != nil {
		e.cat.Close()
	}
	return nil
}

func (e *Engine) getCollection(database, name string) (*collection, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	col, ok := e.collections[fullName(database, name)]
	if !ok {
		return nil, fmt.Errorf("engine: collection %s/%s not registered", database, name)
	}
	return col, nil
}

func (e *Engine) nextID() int64 { return atomic.AddInt64(&e.nextTxnID, 1) }
