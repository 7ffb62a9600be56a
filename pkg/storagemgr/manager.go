package storagemgr

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/cuemby/quilldb/pkg/buffer"
	"github.com/cuemby/quilldb/pkg/table"
	"github.com/cuemby/quilldb/pkg/types"
)

// ColumnSchema is one column of a collection's adopted schema: its
// type plus the NOT NULL and DEFAULT metadata the acceptance pipeline
// (§4.3) enforces that table.Table itself does not know about.
type ColumnSchema struct {
	Name    string
	Type    types.ComplexLogicalType
	NotNull bool
	Default *types.Value
}

// Entry is one managed collection: its table plus disk-mode backing,
// if any.
type Entry struct {
	Name    string
	Columns []ColumnSchema
	Table   *table.Table
	Disk    bool
	Path    string
	pool    *buffer.Pool
}

// Manager owns the collection_full_name → Entry registry and performs
// the five-step chunk-acceptance pipeline before handing rows to the
// underlying table (§4.3).
type Manager struct {
	mu      sync.Mutex
	arena   *types.Arena
	entries map[string]*Entry
}

// NewManager creates an empty storage manager.
func NewManager(arena *types.Arena) *Manager {
	return &Manager{arena: arena, entries: make(map[string]*Entry)}
}

// CreateStorageMemory registers a new in-memory table under name. A
// nil/empty columns slice creates a schema-less "computing" table
// (§4.3, §4.2 adopt_schema) that takes its schema from the first
// chunk routed through Append.
func (m *Manager) CreateStorageMemory(name string, columns []ColumnSchema) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.entries[name]; exists {
		return nil, fmt.Errorf("storagemgr: %q already exists", name)
	}
	var tbl *table.Table
	if len(columns) == 0 {
		tbl = table.NewComputingTable(m.arena)
	} else {
		tbl = newTableFromSchema(m.arena, columns)
	}
	e := &Entry{Name: name, Columns: columns, Table: tbl}
	m.entries[name] = e
	return e, nil
}

// CreateStorageDisk opens the .otbx file at path through
// buffer.OpenFileManager, creating its parent directory first, and
// registers a disk-backed table for it.
func (m *Manager) CreateStorageDisk(name string, columns []ColumnSchema, path string) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.entries[name]; exists {
		return nil, fmt.Errorf("storagemgr: %q already exists", name)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storagemgr: create directory for %q: %w", name, err)
	}
	mgr, err := buffer.OpenFileManager(path)
	if err != nil {
		return nil, err
	}
	e := &Entry{
		Name:    name,
		Columns: columns,
		Table:   newTableFromSchema(m.arena, columns),
		Disk:    true,
		Path:    path,
		pool:    buffer.NewPool(mgr, 256),
	}
	m.entries[name] = e
	return e, nil
}

// LoadStorageDisk opens an existing .otbx file and registers it. The
// table starts empty; rebuilding row content from the page file is
// handled by the checkpoint/load pairing in the WAL replay path
// (physical redo from wal_id 0 rebuilds row content after this call).
func (m *Manager) LoadStorageDisk(name string, columns []ColumnSchema, path string) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.entries[name]; exists {
		return nil, fmt.Errorf("storagemgr: %q already exists", name)
	}
	mgr, err := buffer.OpenFileManager(path)
	if err != nil {
		return nil, err
	}
	e := &Entry{
		Name:    name,
		Columns: columns,
		Table:   newTableFromSchema(m.arena, columns),
		Disk:    true,
		Path:    path,
		pool:    buffer.NewPool(mgr, 256),
	}
	m.entries[name] = e
	return e, nil
}

// DropStorage removes name's entry; in disk mode it also deletes the
// backing directory.
func (m *Manager) DropStorage(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[name]
	if !ok {
		return fmt.Errorf("storagemgr: %q not found", name)
	}
	if e.Disk {
		if e.pool != nil {
			e.pool.Close()
		}
		if err := os.RemoveAll(filepath.Dir(e.Path)); err != nil {
			return fmt.Errorf("storagemgr: remove directory for %q: %w", name, err)
		}
	}
	delete(m.entries, name)
	return nil
}

// Get returns the named entry, or false if it does not exist.
func (m *Manager) Get(name string) (*Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[name]
	return e, ok
}

// CheckpointAll flushes every disk-backed table at commit id cid and
// reports whether every registered table is disk-backed — the signal
// the caller uses to decide whether the persisted WAL id may advance
// (§4.3: any in-memory table forces retaining the WAL).
func (m *Manager) CheckpointAll(cid int64) (allDiskBacked bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	allDiskBacked = true
	for _, e := range m.entries {
		if !e.Disk {
			allDiskBacked = false
			continue
		}
		block, aerr := e.pool.Allocate()
		if aerr != nil {
			return false, aerr
		}
		if cerr := e.Table.Checkpoint(poolMetaWriter{pool: e.pool, block: block}); cerr != nil {
			return false, cerr
		}
		if cerr := e.pool.Checkpoint(block); cerr != nil {
			return false, cerr
		}
	}
	return allDiskBacked, nil
}

type poolMetaWriter struct {
	pool  *buffer.Pool
	block buffer.BlockID
}

func (w poolMetaWriter) WriteMeta(meta []byte) error {
	h, err := w.pool.Pin(w.block)
	if err != nil {
		return err
	}
	copy(h.Data, meta)
	return w.pool.Unpin(w.block, true)
}

// MaybeCleanup runs cleanup_versions then compact on name's table if
// its deleted-row ratio exceeds 30% (§4.3).
func (m *Manager) MaybeCleanup(name string, lowestActiveStart int64) error {
	m.mu.Lock()
	e, ok := m.entries[name]
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("storagemgr: %q not found", name)
	}
	if e.Table.DeletedRatio() <= 0.30 {
		return nil
	}
	e.Table.CleanupVersions(lowestActiveStart)
	return e.Table.Compact()
}

// VacuumAll runs MaybeCleanup over every registered collection,
// skipping (and collecting) individual failures rather than aborting
// the whole sweep, since one collection's IO error should not block
// vacuuming the rest (§7 failure isolation).
func (m *Manager) VacuumAll(lowestActiveStart int64) []error {
	m.mu.Lock()
	names := make([]string, 0, len(m.entries))
	for name := range m.entries {
		names = append(names, name)
	}
	m.mu.Unlock()

	var errs []error
	for _, name := range names {
		if err := m.MaybeCleanup(name, lowestActiveStart); err != nil {
			errs = append(errs, fmt.Errorf("storagemgr: vacuum %q: %w", name, err))
		}
	}
	return errs
}

// Names returns every registered collection_full_name, for callers
// (index manager registration, WAL replay) that must enumerate
// collections without reaching into Manager's internals.
func (m *Manager) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.entries))
	for name := range m.entries {
		names = append(names, name)
	}
	return names
}

func newTableFromSchema(arena *types.Arena, columns []ColumnSchema) *table.Table {
	defs := make([]table.ColumnDef, len(columns))
	for i, c := range columns {
		defs[i] = table.ColumnDef{Name: c.Name, Type: c.Type}
	}
	return table.NewTable(arena, defs)
}
