package wal

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	raftboltdb "github.com/hashicorp/raft-boltdb"
	"github.com/hashicorp/raft"

	"github.com/cuemby/quilldb/pkg/log"
	"github.com/cuemby/quilldb/pkg/metrics"
	"github.com/cuemby/quilldb/pkg/types"
)

// Manager is the write-ahead log of §4.4: every record is framed as a
// raft.Log the way WarrenFSM.Apply consumes committed entries, with
// Index doubling as wal_id, but there is no consensus here — raft.Log
// is reused purely as a stable, battle-tested on-disk frame, and
// raftboltdb.BoltStore as its physical store, exactly as manager.go
// wires raftboltdb.NewBoltStore for Warren's raft log.
type Manager struct {
	mu     sync.Mutex
	store  *raftboltdb.BoltStore
	nextID uint64
}

// Open opens or creates the WAL file at path.
func Open(path string) (*Manager, error) {
	store, err := raftboltdb.NewBoltStore(path)
	if err != nil {
		return nil, fmt.Errorf("wal: open %s: %w", path, err)
	}
	last, err := store.LastIndex()
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("wal: last index: %w", err)
	}
	return &Manager{store: store, nextID: last + 1}, nil
}

// Close closes the underlying store.
func (m *Manager) Close() error { return m.store.Close() }

// Append frames rec as a raft.Log and persists it, returning the
// wal_id (log index) it was assigned.
func (m *Manager) Append(rec Record) (int64, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return 0, fmt.Errorf("wal: marshal record: %w", err)
	}
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.mu.Unlock()

	entry := &raft.Log{
		Index:      id,
		Term:       1,
		Type:       raft.LogCommand,
		Data:       data,
		AppendedAt: time.Time{},
	}
	if err := m.store.StoreLog(entry); err != nil {
		return 0, fmt.Errorf("wal: store log %d: %w", id, err)
	}
	return int64(id), nil
}

// FirstIndex and LastIndex expose the store's persisted id range, used
// by the replay driver and by the checkpoint path to decide how much
// of the log a completed checkpoint makes safe to discard.
func (m *Manager) FirstIndex() (int64, error) {
	i, err := m.store.FirstIndex()
	return int64(i), err
}

func (m *Manager) LastIndex() (int64, error) {
	i, err := m.store.LastIndex()
	return int64(i), err
}

// DeleteRange discards persisted records in [min, max], called after a
// checkpoint has made them durable elsewhere (§4.3 checkpoint/truncate
// pairing).
func (m *Manager) DeleteRange(min, max int64) error {
	if max < min {
		return nil
	}
	return m.store.DeleteRange(uint64(min), uint64(max))
}

// Replay walks every record from fromID (inclusive) to the log's tail,
// applying each directly/physically (§4.4: skipping MVCC, dedup and
// NOT-NULL re-checks, since a record only exists because its original
// write already passed them once). A decode or apply failure on one
// record aborts the whole replay — unlike VacuumAll's per-item
// isolation, a torn WAL means the collections after it cannot be
// trusted either.
func (m *Manager) Replay(fromID int64, applier Applier, arena *types.Arena) error {
	last, err := m.store.LastIndex()
	if err != nil {
		return fmt.Errorf("wal: replay: last index: %w", err)
	}
	if fromID < 1 {
		fromID = 1
	}
	for id := uint64(fromID); id <= last; id++ {
		var entry raft.Log
		if err := m.store.GetLog(id, &entry); err != nil {
			if err == raft.ErrLogNotFound {
				continue
			}
			return fmt.Errorf("wal: replay: get log %d: %w", id, err)
		}
		var rec Record
		if err := json.Unmarshal(entry.Data, &rec); err != nil {
			return fmt.Errorf("wal: replay: unmarshal record %d: %w", id, err)
		}
		if err := apply(rec, applier, arena); err != nil {
			log.Errorf(fmt.Sprintf("wal: replay record %d (%s)", id, rec.Kind), err)
			return fmt.Errorf("wal: replay record %d: %w", id, err)
		}
		metrics.WALReplayedRecordsTotal.Inc()
	}
	return nil
}
